package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/LeventeLantos/message-blast/internal/link"
)

type Mode string

const (
	ModeManual     Mode = "manual"
	ModeAutonomous Mode = "autonomous"
)

type OpenerKind string

const (
	OpenerSystem OpenerKind = "system"
	OpenerTab    OpenerKind = "tab"
	OpenerDryRun OpenerKind = "dry-run"
)

type Config struct {
	Server    ServerConfig
	Sending   SendingConfig
	Link      LinkConfig
	Browser   BrowserConfig
	Clipboard ClipboardConfig
	Log       LogConfig
}

type ServerConfig struct {
	Address string
}

type SendingConfig struct {
	Mode   Mode
	Pacing time.Duration
}

type LinkConfig struct {
	Form    link.Form
	BaseURL string
}

type BrowserConfig struct {
	Opener      OpenerKind
	Bin         string
	Headless    bool
	UserDataDir string
}

type ClipboardConfig struct {
	Enabled bool
	Dir     string
}

type LogConfig struct {
	Level  string
	Format string
}

func LoadAll() (*Config, error) {
	var errs []error

	pacingMS, err := getEnvInt("PACING_MS", 2000)
	errs = appendErr(errs, err)
	headless, err := getEnvBool("BROWSER_HEADLESS", false)
	errs = appendErr(errs, err)
	clipEnabled, err := getEnvBool("CLIPBOARD_ENABLED", true)
	errs = appendErr(errs, err)

	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDRESS", "127.0.0.1:8080"),
		},
		Sending: SendingConfig{
			Mode:   Mode(strings.ToLower(getEnv("SEND_MODE", string(ModeManual)))),
			Pacing: time.Duration(pacingMS) * time.Millisecond,
		},
		Link: LinkConfig{
			Form:    link.Form(strings.ToLower(getEnv("LINK_FORM", string(link.FormRecipient)))),
			BaseURL: getEnv("LINK_BASE_URL", link.DefaultBaseURL),
		},
		Browser: BrowserConfig{
			Opener:      OpenerKind(strings.ToLower(getEnv("OPENER", string(OpenerSystem)))),
			Bin:         os.Getenv("BROWSER_BIN"),
			Headless:    headless,
			UserDataDir: os.Getenv("BROWSER_USER_DATA_DIR"),
		},
		Clipboard: ClipboardConfig{
			Enabled: clipEnabled,
			Dir:     os.Getenv("CLIPBOARD_DIR"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "console")),
		},
	}

	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	var errs []error

	switch cfg.Sending.Mode {
	case ModeManual, ModeAutonomous:
	default:
		errs = append(errs, fmt.Errorf("SEND_MODE must be %q or %q, got %q", ModeManual, ModeAutonomous, cfg.Sending.Mode))
	}
	if cfg.Sending.Pacing < 0 {
		errs = append(errs, errors.New("PACING_MS must be >= 0"))
	}
	if !cfg.Link.Form.IsValid() {
		errs = append(errs, fmt.Errorf("LINK_FORM must be %q or %q, got %q", link.FormRecipient, link.FormOpenChat, cfg.Link.Form))
	}
	switch cfg.Browser.Opener {
	case OpenerSystem, OpenerTab, OpenerDryRun:
	default:
		errs = append(errs, fmt.Errorf("OPENER must be one of system, tab, dry-run, got %q", cfg.Browser.Opener))
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be console or json, got %q", cfg.Log.Format))
	}
	if cfg.Server.Address == "" {
		errs = append(errs, errors.New("SERVER_ADDRESS must not be empty"))
	}

	return joinErrors(errs)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid int for env %s: %q", key, v)
	}
	return i, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid bool for env %s: %q", key, v)
	}
	return b, nil
}

func appendErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
