package main

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/LeventeLantos/message-blast/internal/logging"
	"github.com/LeventeLantos/message-blast/internal/scheduler"
	"github.com/LeventeLantos/message-blast/internal/service"
	"github.com/LeventeLantos/message-blast/internal/tui"
)

func newTUICmd() *cobra.Command {
	var (
		in      inputs
		logFile string
	)
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Work through a batch interactively in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}

			// The screen belongs to the program, so logs only go to a file.
			log := zerolog.Nop()
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return err
				}
				defer f.Close()
				if log, err = logging.New(f, cfg.Log.Level, "json"); err != nil {
					return err
				}
			}

			relay := &tui.Relay{}
			st, err := buildStack(cfg, log, io.Discard, service.WithObserver(relay.Observe))
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
			defer sched.Stop()

			p := tea.NewProgram(tui.New(ctx, st.session, sched), tea.WithAltScreen(), tea.WithContext(ctx))
			relay.Attach(p)
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&in.contactsPath, "contacts", "", "Contacts file (.csv, .yaml or .json)")
	cmd.Flags().StringVar(&in.template, "template", "", "Message template")
	cmd.Flags().StringVar(&in.templateFile, "template-file", "", "Read the message template from a file")
	cmd.Flags().StringVar(&in.mediaPath, "media", "", "Image or video to stage for every contact")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Append logs to this file")
	_ = cmd.MarkFlagRequired("contacts")
	return cmd
}
