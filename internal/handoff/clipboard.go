package handoff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"github.com/atotto/clipboard"
	imgclip "golang.design/x/clipboard"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/LeventeLantos/message-blast/internal/model"
)

// SystemClipboard puts images on the OS clipboard as PNG image data, ready
// to paste into the chat. Other image formats are converted first. Videos
// are attached by hand.
//
// When the clipboard cannot hold image data, the image is written to a temp
// file and its path is copied as text instead. That still counts as
// unsupported: the user has to attach the file.
type SystemClipboard struct {
	dir         string
	writeImage  func(png []byte) error
	writeText   func(string) error
	unsupported func() bool

	mu     sync.Mutex
	images map[*model.Media][]byte
	files  map[*model.Media]string
}

func NewSystemClipboard(dir string) *SystemClipboard {
	if dir == "" {
		dir = os.TempDir()
	}
	return &SystemClipboard{
		dir:         dir,
		writeImage:  systemImageWriter(),
		writeText:   clipboard.WriteAll,
		unsupported: func() bool { return clipboard.Unsupported },
		images:      make(map[*model.Media][]byte),
		files:       make(map[*model.Media]string),
	}
}

// systemImageWriter initializes the image clipboard on first use. A failed
// init is remembered and reported on every later write.
func systemImageWriter() func([]byte) error {
	var (
		once    sync.Once
		initErr error
	)
	return func(data []byte) error {
		once.Do(func() { initErr = imgclip.Init() })
		if initErr != nil {
			return fmt.Errorf("image clipboard: %w", initErr)
		}
		if imgclip.Write(imgclip.FmtImage, data) == nil {
			return errors.New("image clipboard: write rejected")
		}
		return nil
	}
}

func (c *SystemClipboard) WriteMedia(ctx context.Context, m *model.Media) error {
	if m.Kind != model.Image {
		return fmt.Errorf("%w: %s must be attached manually", ErrUnsupported, m.Kind)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := c.pngFor(m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	imgErr := c.writeImage(data)
	if imgErr == nil {
		return nil
	}

	if c.unsupported() {
		return fmt.Errorf("%w: %v", ErrUnsupported, imgErr)
	}
	path, err := c.fileFor(m)
	if err != nil {
		return err
	}
	if err := c.writeText(path); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, imgErr)
	}
	return fmt.Errorf("%w: %v, file path %s copied instead", ErrUnsupported, imgErr, path)
}

// pngFor converts the payload once per media value.
func (c *SystemClipboard) pngFor(m *model.Media) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if data, ok := c.images[m]; ok {
		return data, nil
	}

	var data []byte
	if m.MimeType == "image/png" {
		data = m.Payload
	} else {
		img, _, err := image.Decode(bytes.NewReader(m.Payload))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", m.MimeType, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		data = buf.Bytes()
	}

	c.images[m] = data
	return data, nil
}

// fileFor writes the payload once per media value and reuses the file for
// every later contact of the batch.
func (c *SystemClipboard) fileFor(m *model.Media) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.files[m]; ok {
		return p, nil
	}

	ext := filepath.Ext(m.Name)
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(m.MimeType); len(exts) > 0 {
			ext = exts[0]
		}
	}

	f, err := os.CreateTemp(c.dir, "messageblast-*"+ext)
	if err != nil {
		return "", fmt.Errorf("stage media: %w", err)
	}
	if _, err := f.Write(m.Payload); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("stage media: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("stage media: %w", err)
	}

	c.files[m] = f.Name()
	return f.Name(), nil
}

// Release drops everything staged for m.
func (c *SystemClipboard) Release(m *model.Media) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.images, m)
	p, ok := c.files[m]
	if !ok {
		return nil
	}
	delete(c.files, m)
	return os.Remove(p)
}

// Close removes every staged file.
func (c *SystemClipboard) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for m, p := range c.files {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
		delete(c.files, m)
	}
	clear(c.images)
	return errors.Join(errs...)
}
