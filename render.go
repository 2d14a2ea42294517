package main

import (
	"github.com/intdogs/roombarl/render"
	"github.com/spf13/cobra"
)

// RenderCommand draws a saved table and its greedy policy to a PNG
func RenderCommand() *cobra.Command {
	var (
		out      string
		cellSize int
		overlay  bool
	)

	cmd := &cobra.Command{
		Use:   "render SNAPSHOT",
		Short: "Draw a saved table and its greedy policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}
			r, err := render.New(defaultSpec(), cellSize)
			if err != nil {
				return err
			}

			scene := render.Scene{Table: l.table, Policy: l.policy}
			if overlay {
				scene.Grid = l.grid
			}
			return r.SavePNG(out, scene)
		},
	}
	cmd.Flags().StringVar(&out, "out", "qtable.png", "Output PNG")
	cmd.Flags().IntVar(&cellSize, "cell-size", 0,
		"Cell size in pixels; 0 for the default")
	cmd.Flags().BoolVar(&overlay, "pellets", true,
		"Shade cells by pellet probability")
	return cmd
}
