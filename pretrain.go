package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/intdogs/roombarl/experiment"
	"github.com/intdogs/roombarl/experiment/checkpointer"
	"github.com/intdogs/roombarl/experiment/tracker"
	"github.com/intdogs/roombarl/experiment/trackers"
	"github.com/intdogs/roombarl/utils/progressbar"
	"github.com/spf13/cobra"
)

// PretrainCommand trains agents offline with a simulated teacher
func PretrainCommand() *cobra.Command {
	var (
		steps            int
		dropMode         int
		interventionStop int
		outDir           string
		checkpointEvery  int
		simulateEvery    int
		weightedStart    bool
		perAgent         bool
		quiet            bool
	)

	cmd := &cobra.Command{
		Use:   "pretrain",
		Short: "Train agents offline against a simulated teacher",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			params, err := parameters()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			pellets := trackers.NewPellets(filepath.Join(outDir, "pellets.bin"))
			interventions := trackers.NewInterventions(
				filepath.Join(outDir, "interventions.bin"))
			expected, err := trackers.NewExpectedValue(simulateEvery,
				filepath.Join(outDir, "expected.bin"), logger)
			if err != nil {
				return err
			}

			config := experiment.Config{
				Type:             experiment.OnlineExp,
				MaxSteps:         steps,
				Spec:             defaultSpec(),
				Parameters:       params,
				DropMode:         experiment.DropMode(dropMode),
				InterventionStop: interventionStop,
				WeightedStart:    weightedStart,
			}
			opts := []experiment.Option{
				experiment.WithLogger(logger),
				experiment.WithTrackers(pellets, interventions, expected),
			}
			if perAgent {
				for i := 0; i < params.NumAgents; i++ {
					name := fmt.Sprintf("pellets-agent%d.bin", i)
					opts = append(opts, experiment.WithTrackers(tracker.Register(
						trackers.NewPellets(filepath.Join(outDir, name)), i)))
				}
			}
			if checkpointEvery > 0 {
				opts = append(opts, experiment.WithCheckpoints(
					filepath.Join(outDir, "checkpoints"), checkpointEvery,
					".json"))
				if err := os.MkdirAll(filepath.Join(outDir, "checkpoints"),
					0o755); err != nil {
					return err
				}
			}

			exp, err := config.CreateExp(seed, nil, opts...)
			if err != nil {
				return err
			}

			bar := progressbar.NewManualProgressBar(cmd.ErrOrStderr(), 40, steps)
			for {
				ended, err := exp.Step(cmd.Context())
				if err != nil {
					return err
				}
				bar.Increment()
				if !quiet {
					bar.Display()
				}
				if ended {
					break
				}
			}
			if !quiet {
				bar.Close()
			}

			if err := exp.Save(); err != nil {
				return err
			}
			for _, a := range exp.Agents() {
				s, ok := a.(checkpointer.Serializable)
				if !ok {
					continue
				}
				path := filepath.Join(outDir, fmt.Sprintf("agent%d.json", a.ID()))
				if err := s.Save(path); err != nil {
					return err
				}
				logger.Info("saved table", "agent", a.ID(), "path", path)
			}

			session := uuid.New().String()
			out := filepath.Join(outDir, "trajectories.parquet")
			if err := exp.Log().WriteParquet(out, session); err != nil {
				return err
			}

			for _, a := range exp.Agents() {
				v, ok := expected.Last(a.ID())
				if ok {
					fmt.Fprintf(cmd.OutOrStdout(), "agent %d: expected pellets "+
						"%.3f, score %.1f, drags %d\n", a.ID(), v,
						pellets.Scores()[len(pellets.Scores())-1][a.ID()],
						len(exp.Log().Dragged(a.ID())))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1000, "Number of steps to run")
	cmd.Flags().IntVar(&dropMode, "drop-mode", int(experiment.ReturnToStart),
		"Where the teacher drops agents: 1 start, 2 best cell, 3 near "+
			"best cell, 4 worst cell")
	cmd.Flags().IntVar(&interventionStop, "intervention-stop", 0,
		"Step after which the teacher stops intervening; 0 never stops")
	cmd.Flags().StringVar(&outDir, "out", "pretrained", "Output directory")
	cmd.Flags().IntVar(&checkpointEvery, "checkpoint-every", 0,
		"Save tables every n steps; 0 disables checkpoints")
	cmd.Flags().IntVar(&simulateEvery, "simulate-every", 100,
		"Simulate the greedy policies every n steps")
	cmd.Flags().BoolVar(&weightedStart, "weighted-start", false,
		"Start agents on cells in proportion to pellet probability")
	cmd.Flags().BoolVar(&perAgent, "per-agent", false,
		"Also save the pellets of each agent to its own file")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Hide the progress bar")
	return cmd
}
