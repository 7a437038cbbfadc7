package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LeventeLantos/message-blast/internal/api"
	"github.com/LeventeLantos/message-blast/internal/scheduler"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var in inputs
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API for one sending session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			st, err := buildStack(cfg, log, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					log.Warn().Err(err).Msg("cleanup")
				}
			}()
			if err := in.apply(st.session); err != nil {
				return err
			}

			ctx := cmd.Context()
			sched := scheduler.New(log)
			h := api.NewHandler(ctx, st.session, sched, cfg.Sending.Mode, log)

			srv := &http.Server{
				Addr:              cfg.Server.Address,
				Handler:           api.Router(h),
				ReadHeaderTimeout: 5 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.Info().
					Str("addr", cfg.Server.Address).
					Str("mode", string(cfg.Sending.Mode)).
					Msg("message-blast listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				sched.Stop()

				shCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
				defer cancel()
				log.Info().Msg("shutting down")
				return srv.Shutdown(shCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&in.contactsPath, "contacts", "", "Preload contacts from a .csv, .yaml or .json file")
	cmd.Flags().StringVar(&in.template, "template", "", "Preload the message template")
	cmd.Flags().StringVar(&in.templateFile, "template-file", "", "Preload the message template from a file")
	cmd.Flags().StringVar(&in.mediaPath, "media", "", "Preload an image or video attachment")
	return cmd
}
