package config

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LeventeLantos/message-blast/internal/link"
)

var envMu sync.Mutex

func TestLoadAll_Defaults(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	cfg, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}

	if cfg.Server.Address != "127.0.0.1:8080" {
		t.Fatalf("unexpected Server.Address default: %q", cfg.Server.Address)
	}
	if cfg.Sending.Mode != ModeManual {
		t.Fatalf("unexpected Sending.Mode default: %q", cfg.Sending.Mode)
	}
	if cfg.Sending.Pacing != 2*time.Second {
		t.Fatalf("unexpected Sending.Pacing default: %v", cfg.Sending.Pacing)
	}
	if cfg.Link.Form != link.FormRecipient {
		t.Fatalf("unexpected Link.Form default: %q", cfg.Link.Form)
	}
	if cfg.Link.BaseURL != link.DefaultBaseURL {
		t.Fatalf("unexpected Link.BaseURL default: %q", cfg.Link.BaseURL)
	}
	if cfg.Browser.Opener != OpenerSystem {
		t.Fatalf("unexpected Browser.Opener default: %q", cfg.Browser.Opener)
	}
	if !cfg.Clipboard.Enabled {
		t.Fatalf("expected clipboard enabled by default")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestLoadAll_Overrides(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("SEND_MODE", "Autonomous")
	t.Setenv("PACING_MS", "4500")
	t.Setenv("LINK_FORM", "open-chat")
	t.Setenv("LINK_BASE_URL", "whatsapp://")
	t.Setenv("OPENER", "tab")
	t.Setenv("BROWSER_BIN", "/usr/bin/chromium")
	t.Setenv("BROWSER_HEADLESS", "true")
	t.Setenv("CLIPBOARD_ENABLED", "false")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Fatalf("unexpected Server.Address: %q", cfg.Server.Address)
	}
	if cfg.Sending.Mode != ModeAutonomous {
		t.Fatalf("unexpected Sending.Mode: %q", cfg.Sending.Mode)
	}
	if cfg.Sending.Pacing != 4500*time.Millisecond {
		t.Fatalf("unexpected Sending.Pacing: %v", cfg.Sending.Pacing)
	}
	if cfg.Link.Form != link.FormOpenChat || cfg.Link.BaseURL != "whatsapp://" {
		t.Fatalf("unexpected Link: %+v", cfg.Link)
	}
	if cfg.Browser.Opener != OpenerTab || cfg.Browser.Bin != "/usr/bin/chromium" || !cfg.Browser.Headless {
		t.Fatalf("unexpected Browser: %+v", cfg.Browser)
	}
	if cfg.Clipboard.Enabled {
		t.Fatalf("expected clipboard disabled")
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("unexpected Log.Format: %q", cfg.Log.Format)
	}
}

func TestLoadAll_InvalidValues(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"invalid PACING_MS", "PACING_MS", "soon"},
		{"negative PACING_MS", "PACING_MS", "-1"},
		{"invalid SEND_MODE", "SEND_MODE", "turbo"},
		{"invalid LINK_FORM", "LINK_FORM", "sms"},
		{"invalid OPENER", "OPENER", "carrier-pigeon"},
		{"invalid BROWSER_HEADLESS", "BROWSER_HEADLESS", "maybe"},
		{"invalid CLIPBOARD_ENABLED", "CLIPBOARD_ENABLED", "nah"},
		{"invalid LOG_FORMAT", "LOG_FORMAT", "xml"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearTestEnv(t)
			t.Setenv(tc.key, tc.val)

			_, err := LoadAll()
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.key) {
				t.Fatalf("expected error mentioning %s, got: %v", tc.key, err)
			}
		})
	}
}

func TestLoadAll_ReportsAllProblems(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)
	t.Setenv("SEND_MODE", "turbo")
	t.Setenv("OPENER", "fax")

	_, err := LoadAll()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	for _, key := range []string{"SEND_MODE", "OPENER"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected error mentioning %s, got: %v", key, err)
		}
	}
}

func TestGetEnv(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	if got := getEnv("NOPE", "default"); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}

	t.Setenv("A", "x")
	if got := getEnv("A", "default"); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	got, err := getEnvInt("MISSING", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}

	t.Setenv("N", "123")
	got, err = getEnvInt("N", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 123 {
		t.Fatalf("expected 123, got %d", got)
	}

	t.Setenv("BAD", "abc")
	_, err = getEnvInt("BAD", 7)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "BAD") {
		t.Fatalf("expected error mentioning BAD, got: %v", err)
	}
}

func TestGetEnvBool(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	got, err := getEnvBool("MISSING", true)
	if err != nil || !got {
		t.Fatalf("expected default true, got %v err=%v", got, err)
	}

	t.Setenv("A", "0")
	got, err = getEnvBool("A", true)
	if err != nil || got {
		t.Fatalf("expected false, got %v err=%v", got, err)
	}
}

func TestJoinErrors(t *testing.T) {
	if err := joinErrors(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	e1 := errors.New("one")
	e2 := errors.New("two")
	err := joinErrors([]error{e1, e2})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	if !errors.Is(err, e1) {
		t.Fatalf("expected errors.Is(err, e1) to be true")
	}
	if !errors.Is(err, e2) {
		t.Fatalf("expected errors.Is(err, e2) to be true")
	}
}

func clearTestEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"SERVER_ADDRESS",
		"SEND_MODE",
		"PACING_MS",
		"LINK_FORM",
		"LINK_BASE_URL",
		"OPENER",
		"BROWSER_BIN",
		"BROWSER_HEADLESS",
		"BROWSER_USER_DATA_DIR",
		"CLIPBOARD_ENABLED",
		"CLIPBOARD_DIR",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"A",
		"N",
		"BAD",
	}
	for _, k := range keys {
		_ = os.Unsetenv(k)
	}
}
