package abstraction

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// KMeansClassifier assigns a stage cluster id to a 10-bin equity-distribution
// histogram. Implementations are loaded from the optional kmeans/<stage>/
// artifact directories named in the wire format.
type KMeansClassifier interface {
	Classify(histogram [10]float64) int
}

// NearestCentroid is the on-disk k-means artifact shape: a flat list of
// cluster centroids in 10-dimensional histogram space. Classify returns the
// index of the nearest centroid by Euclidean distance.
type NearestCentroid struct {
	Centroids [][10]float64 `json:"centroids"`
}

// Classify implements KMeansClassifier.
func (n *NearestCentroid) Classify(histogram [10]float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range n.Centroids {
		d := 0.0
		for j := range c {
			diff := c[j] - histogram[j]
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// LoadKMeansClassifiers loads the latest (lexicographically greatest) file
// from each of dir/flop and dir/turn, matching the wire format's "latest
// file wins" convention. River has no k-means artifact: the fast bucket
// strategy is always used there.
func LoadKMeansClassifiers(dir string) (map[Street]KMeansClassifier, error) {
	out := make(map[Street]KMeansClassifier)
	for _, street := range []Street{Flop, Turn} {
		classifier, err := loadLatest(filepath.Join(dir, street.String()))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[street] = classifier
	}
	return out, nil
}

func loadLatest(dir string) (KMeansClassifier, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("abstraction: no kmeans files in %s", dir)
	}
	sort.Strings(names)
	latest := names[len(names)-1]

	data, err := os.ReadFile(filepath.Join(dir, latest))
	if err != nil {
		return nil, err
	}
	var nc NearestCentroid
	if err := json.Unmarshal(data, &nc); err != nil {
		return nil, fmt.Errorf("abstraction: parsing %s: %w", latest, err)
	}
	return &nc, nil
}
