package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/intdogs/roombarl/datalog"
	"github.com/intdogs/roombarl/experiment/checkpointer"
	"github.com/intdogs/roombarl/server"
	"github.com/spf13/cobra"
)

// ServeCommand serves agents to a host over HTTP and websockets
func ServeCommand() *cobra.Command {
	var (
		addr    string
		dataDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve agents and round parameters to a host",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			rounds, err := loadRounds()
			if err != nil {
				return err
			}
			params, err := parameters()
			if err != nil {
				return err
			}

			agents, err := params.CreateAgents(defaultSpec(), seed, logger)
			if err != nil {
				return err
			}
			log := datalog.New(len(agents))
			srv, err := server.New(rounds, agents, log, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt,
				syscall.SIGTERM)
			defer stop()

			httpServer := &http.Server{Addr: addr, Handler: srv.Handler()}
			learners := make(chan struct{})
			go func() {
				defer close(learners)
				srv.Run(ctx)
			}()
			go func() {
				<-ctx.Done()
				shutdown, cancel := context.WithTimeout(context.Background(),
					5*time.Second)
				defer cancel()
				_ = httpServer.Shutdown(shutdown)
			}()

			logger.Info("serving", "addr", addr, "agents", len(agents),
				"interpretation", params.InterpretType)
			if err := httpServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				stop()
				<-learners
				return err
			}
			<-learners

			if dataDir == "" {
				return nil
			}
			out := filepath.Join(dataDir,
				fmt.Sprintf("session-%v.parquet", srv.Session()))
			if err := log.WriteParquet(out, srv.Session().String()); err != nil {
				return err
			}
			logger.Info("wrote trajectories", "path", out)

			for _, a := range agents {
				s, ok := a.(checkpointer.Serializable)
				if !ok {
					continue
				}
				name := checkpointer.FileTimer(filepath.Join(dataDir,
					fmt.Sprintf("agent%d-table", a.ID())), ".json", nil)()
				if err := s.Save(name); err != nil {
					return err
				}
				logger.Info("saved table", "agent", a.ID(), "path", name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8123", "Listen address")
	cmd.Flags().StringVar(&dataDir, "data-dir", "participantData",
		"Directory trajectories are written to on shutdown; empty to skip")
	return cmd
}
