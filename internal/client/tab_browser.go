package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

type TabBrowserConfig struct {
	// Bin is the browser executable. Empty means rod looks one up.
	Bin      string
	Headless bool
	// UserDataDir keeps the chat login between runs of the tool.
	UserDataDir string
}

// TabBrowser drives a single browser tab and navigates it for every send,
// so the chat session stays in one place instead of piling up tabs.
type TabBrowser struct {
	cfg TabBrowserConfig

	mu       sync.Mutex
	launch   *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	isClosed bool
}

func NewTabBrowser(cfg TabBrowserConfig) *TabBrowser {
	return &TabBrowser{cfg: cfg}
}

func (b *TabBrowser) Open(ctx context.Context, uri string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isClosed {
		return errors.New("tab browser is closed")
	}
	if err := b.ensurePage(); err != nil {
		return err
	}

	if err := b.page.Context(ctx).Navigate(uri); err != nil {
		return fmt.Errorf("navigate tab: %w", err)
	}
	if _, err := b.page.Activate(); err != nil {
		return fmt.Errorf("activate tab: %w", err)
	}
	return nil
}

func (b *TabBrowser) ensurePage() error {
	if b.page != nil {
		return nil
	}

	l := launcher.New().Headless(b.cfg.Headless)
	if b.cfg.Bin != "" {
		l = l.Bin(b.cfg.Bin)
	}
	if b.cfg.UserDataDir != "" {
		l = l.UserDataDir(b.cfg.UserDataDir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return fmt.Errorf("open tab: %w", err)
	}

	b.launch = l
	b.browser = browser
	b.page = page
	return nil
}

func (b *TabBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.isClosed = true
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	if b.cfg.UserDataDir == "" {
		// Cleanup also deletes the profile directory, keep a configured one.
		b.launch.Cleanup()
	}
	b.browser, b.page, b.launch = nil, nil, nil
	return err
}
