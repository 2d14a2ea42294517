package main

import (
	"fmt"

	"github.com/intdogs/roombarl/environment/pellet"
	"github.com/intdogs/roombarl/simulator"
	"github.com/spf13/cobra"
)

// SimulateCommand reports the expected pellets collected by the greedy
// policy of saved tables
func SimulateCommand() *cobra.Command {
	var rollouts, horizon int

	cmd := &cobra.Command{
		Use:   "simulate SNAPSHOT...",
		Short: "Simulate the greedy policy of saved tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := newLogger(); err != nil {
				return err
			}
			for _, path := range args {
				l, err := loadSnapshot(path)
				if err != nil {
					return err
				}

				sim := simulator.New(pellet.NewExpectedTable(l.grid), seed,
					simulator.WithRollouts(rollouts, horizon))
				total, err := sim.Simulate(l.policy)
				if err != nil {
					return fmt.Errorf("%v: %w", path, err)
				}
				mean, std, err := sim.Summary(l.policy)
				if err != nil {
					return fmt.Errorf("%v: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%v: expected %.3f "+
					"(per rollout %.3f ± %.3f)\n", path, total, mean, std)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&rollouts, "rollouts", simulator.DefaultRollouts,
		"Number of rollouts")
	cmd.Flags().IntVar(&horizon, "horizon", simulator.DefaultHorizon,
		"Steps per rollout")
	return cmd
}
