// Command solver trains, evaluates, and queries the heads-up CFR
// blueprint: train runs CFR over an abstracted history.Game and saves a
// blueprint; eval reports the trained strategy's state-space coverage;
// decide replays a scripted event sequence through the live state machine
// and asks the decision service for a recommendation.
package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Train  TrainCmd  `cmd:"" help:"run vanilla CFR and emit a blueprint"`
	Eval   EvalCmd   `cmd:"" help:"inspect a trained blueprint"`
	Decide DecideCmd `cmd:"" help:"recommend an action for a scripted hand"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("solver"),
		kong.Description("heads-up no-limit hold'em CFR solver"),
		kong.UsageOnError(),
	)

	setupLogger(cli.Debug)

	var err error
	switch ctx.Command() {
	case "train":
		err = cli.Train.Run(context.Background())
	case "eval":
		err = cli.Eval.Run(context.Background())
	case "decide":
		err = cli.Decide.Run(context.Background())
	default:
		log.Fatal().Msgf("unknown command: %s", ctx.Command())
	}
	if err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}
