package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/LeventeLantos/message-blast/internal/model"
	"github.com/LeventeLantos/message-blast/internal/progress"
	"github.com/LeventeLantos/message-blast/internal/service"
)

func newSendCmd() *cobra.Command {
	var (
		in     inputs
		pacing time.Duration
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Run one batch autonomously and print the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("pacing") {
				cfg.Sending.Pacing = pacing
			}

			out := cmd.OutOrStdout()
			printEntry := func(_ string, e model.LogEntry) {
				if !e.Status.Terminal() {
					return
				}
				line := fmt.Sprintf("[%s] %s (%s)", e.Status.Label(), e.Contact.Name, e.Contact.Phone)
				switch {
				case e.Reason != "":
					line += ": " + e.Reason
				case e.Notice != "":
					line += ": " + e.Notice
				}
				fmt.Fprintln(out, line)
			}

			st, err := buildStack(cfg, log, out, service.WithObserver(printEntry))
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

			b, err := st.session.Start()
			if err != nil {
				return err
			}
			orch := st.session.Orchestrator()
			runErr := orch.Run(cmd.Context(), b)

			p := progress.Project(b.Entries())
			fmt.Fprintf(out, "%s actioned, %d failed, %d not reached\n", p, p.Failed, p.Pending)
			if runErr != nil {
				return runErr
			}
			if failed := orch.FailedContacts(b); len(failed) > 0 {
				return fmt.Errorf("%d contacts failed", len(failed))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in.contactsPath, "contacts", "", "Contacts file (.csv, .yaml or .json)")
	cmd.Flags().StringVar(&in.template, "template", "", "Message template, {{name}} and {{phone}} are replaced per contact")
	cmd.Flags().StringVar(&in.templateFile, "template-file", "", "Read the message template from a file")
	cmd.Flags().StringVar(&in.mediaPath, "media", "", "Image or video to stage for every contact")
	cmd.Flags().DurationVar(&pacing, "pacing", 0, "Wait between two contacts, overrides PACING_MS")
	_ = cmd.MarkFlagRequired("contacts")
	return cmd
}
