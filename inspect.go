package main

import (
	"path/filepath"

	"github.com/intdogs/roombarl/agent/tabular/policy"
	"github.com/intdogs/roombarl/environment/pellet"
	"github.com/intdogs/roombarl/simulator"
	"github.com/intdogs/roombarl/viewer"
	"github.com/spf13/cobra"
)

// InspectCommand browses a saved table in the terminal
func InspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect SNAPSHOT",
		Short: "Browse a saved table in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}

			expected := pellet.NewExpectedTable(l.grid)
			opts := []viewer.Option{
				viewer.WithTitle(filepath.Base(args[0])),
				viewer.WithTeacher(policy.NewTeacher(expected)),
			}
			if v, err := simulator.New(expected, seed).Simulate(l.policy); err == nil {
				opts = append(opts, viewer.WithExpectedValue(v))
			}
			return viewer.Run(viewer.New(l.table, l.policy, opts...))
		},
	}
}
