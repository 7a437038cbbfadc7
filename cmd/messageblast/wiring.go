package main

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/LeventeLantos/message-blast/internal/client"
	"github.com/LeventeLantos/message-blast/internal/config"
	"github.com/LeventeLantos/message-blast/internal/contacts"
	"github.com/LeventeLantos/message-blast/internal/handoff"
	"github.com/LeventeLantos/message-blast/internal/link"
	"github.com/LeventeLantos/message-blast/internal/model"
	"github.com/LeventeLantos/message-blast/internal/service"
)

// stack is everything a command needs to run a session.
type stack struct {
	session *service.Session
	closers []func() error
}

func (s *stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// buildStack wires the orchestrator from cfg. Dry-run links are printed to out.
func buildStack(cfg *config.Config, log zerolog.Logger, out io.Writer, opts ...service.Option) (*stack, error) {
	links, err := link.NewBuilder(cfg.Link.Form, cfg.Link.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("link builder: %w", err)
	}

	st := &stack{}

	var opener client.Opener
	switch cfg.Browser.Opener {
	case config.OpenerDryRun:
		opener = client.NewDryRun(out)
	case config.OpenerTab:
		tb := client.NewTabBrowser(client.TabBrowserConfig{
			Bin:         cfg.Browser.Bin,
			Headless:    cfg.Browser.Headless,
			UserDataDir: cfg.Browser.UserDataDir,
		})
		st.closers = append(st.closers, tb.Close)
		opener = tb
	default:
		opener = client.NewSystemBrowser()
	}

	var (
		clip     handoff.Clipboard
		releaser service.MediaReleaser
	)
	if cfg.Clipboard.Enabled {
		sc := handoff.NewSystemClipboard(cfg.Clipboard.Dir)
		st.closers = append(st.closers, sc.Close)
		clip, releaser = sc, sc
	}

	all := append([]service.Option{
		service.WithHandoff(handoff.New(clip, log)),
		service.WithPacing(cfg.Sending.Pacing),
		service.WithLogger(log),
	}, opts...)

	orch := service.New(links, opener, all...)
	st.session = service.NewSession(orch, releaser)

	log.Debug().
		Str("opener", string(cfg.Browser.Opener)).
		Str("link_form", string(cfg.Link.Form)).
		Bool("clipboard", cfg.Clipboard.Enabled).
		Dur("pacing", cfg.Sending.Pacing).
		Msg("session ready")
	return st, nil
}

// inputs are the optional session presets shared by the commands.
type inputs struct {
	contactsPath string
	template     string
	templateFile string
	mediaPath    string
}

func (in *inputs) apply(s *service.Session) error {
	if in.contactsPath != "" {
		list, err := contacts.Load(in.contactsPath)
		if err != nil {
			return err
		}
		s.SetContacts(list)
	}

	tmpl := in.template
	if in.templateFile != "" {
		if tmpl != "" {
			return errors.New("--template and --template-file are mutually exclusive")
		}
		b, err := os.ReadFile(in.templateFile)
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		tmpl = string(b)
	}
	if tmpl != "" {
		s.SetTemplate(tmpl)
	}

	if in.mediaPath != "" {
		m, err := loadMedia(in.mediaPath)
		if err != nil {
			return err
		}
		if err := s.SetMedia(m); err != nil {
			return err
		}
	}
	return nil
}

func loadMedia(path string) (*model.Media, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read media: %w", err)
	}
	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		return nil, fmt.Errorf("%w: cannot tell the type of %s", model.ErrUnsupportedMedia, filepath.Base(path))
	}
	return model.NewMedia(filepath.Base(path), mt, payload)
}
