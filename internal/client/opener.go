package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod/lib/launcher"
)

// Opener performs the one externally visible action of a send: opening the
// chat deep link. It is fire and forget, nothing reports back whether the
// user actually sent the message.
type Opener interface {
	Open(ctx context.Context, uri string) error
}

// ErrNoBrowser is returned when no local browser executable can be found.
var ErrNoBrowser = errors.New("no browser found")

// SystemBrowser hands every link to the locally installed Chromium-family
// browser, which opens a new tab per send.
type SystemBrowser struct {
	lookPath func() (string, bool)
	open     func(string)
}

func NewSystemBrowser() *SystemBrowser {
	return &SystemBrowser{
		lookPath: launcher.LookPath,
		open:     launcher.Open,
	}
}

func (b *SystemBrowser) Open(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := b.lookPath(); !ok {
		return ErrNoBrowser
	}
	b.open(uri)
	return nil
}

// DryRun prints links instead of opening them.
type DryRun struct {
	mu sync.Mutex
	w  io.Writer
}

func NewDryRun(w io.Writer) *DryRun {
	return &DryRun{w: w}
}

func (d *DryRun) Open(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := fmt.Fprintln(d.w, uri); err != nil {
		return fmt.Errorf("dry run open: %w", err)
	}
	return nil
}
