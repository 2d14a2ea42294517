// Command roombarl runs tabular Q-learning agents that humans teach by
// dragging them around a pellet grid.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/experiment"
	"github.com/intdogs/roombarl/utils/logging"
	"github.com/spf13/cobra"
)

var (
	seed       uint64
	logLevel   string
	logFormat  string
	roundsPath string
	round      int
	userID     int
)

func main() {
	root := &cobra.Command{
		Use:           "roombarl",
		Short:         "Human-in-the-loop Q-learning on a pellet grid",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Uint64Var(&seed, "seed", 192382, "Random seed")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")
	root.PersistentFlags().StringVar(&roundsPath, "rounds", "",
		"JSON list of round parameters; defaults are used if empty")
	root.PersistentFlags().IntVar(&round, "round", 1, "Round to run")
	root.PersistentFlags().IntVar(&userID, "user", 0,
		"Participant id choosing the interpretation mode; 0 keeps the "+
			"round's INTERPRET_TYPE")

	root.AddCommand(
		ServeCommand(),
		PretrainCommand(),
		SimulateCommand(),
		RenderCommand(),
		InspectCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*slog.Logger, error) {
	logger, err := logging.New(os.Stderr, logLevel, logging.Format(logFormat))
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

// loadRounds returns the rounds given by --rounds, or a single round of
// default parameters
func loadRounds() (experiment.Rounds, error) {
	if roundsPath == "" {
		return experiment.Rounds{1: experiment.DefaultParameters()}, nil
	}
	return experiment.LoadRounds(roundsPath)
}

// parameters returns the parameters of the round given by --round
func parameters() (experiment.Parameters, error) {
	rounds, err := loadRounds()
	if err != nil {
		return experiment.Parameters{}, err
	}
	params, err := rounds.Round(round)
	if err != nil {
		return experiment.Parameters{}, err
	}
	if userID > 0 {
		params = params.ForUser(userID)
	}
	return params, nil
}

func defaultSpec() environment.Spec {
	return environment.DefaultSpec()
}
