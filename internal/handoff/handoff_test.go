package handoff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeventeLantos/message-blast/internal/model"
)

type fakeClipboard struct {
	err    error
	writes int
}

func (f *fakeClipboard) WriteMedia(ctx context.Context, m *model.Media) error {
	f.writes++
	return f.err
}

func testImage(t *testing.T) *model.Media {
	t.Helper()
	m, err := model.NewMedia("cat.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	return m
}

func TestStage_NoMediaIsStaged(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{}
	h := New(clip, zerolog.Nop())

	out, err := h.Stage(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Staged, out)
	assert.Zero(t, clip.writes)
}

func TestStage_Outcomes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		clip Clipboard
		want Outcome
	}{
		{"written", &fakeClipboard{}, Staged},
		{"unsupported", &fakeClipboard{err: fmt.Errorf("%w: headless", ErrUnsupported)}, Unsupported},
		{"failed", &fakeClipboard{err: errors.New("xclip exited 1")}, Failed},
		{"no clipboard", nil, Unsupported},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New(tc.clip, zerolog.Nop())
			out, _ := h.Stage(context.Background(), testImage(t))
			assert.Equal(t, tc.want, out)
		})
	}
}

// testClipboard returns a SystemClipboard whose OS writers record their
// input. imageErr makes the image write fail.
func testClipboard(t *testing.T, imageErr error) (c *SystemClipboard, images *[][]byte, texts *[]string) {
	t.Helper()

	images, texts = &[][]byte{}, &[]string{}
	c = NewSystemClipboard(t.TempDir())
	c.unsupported = func() bool { return false }
	c.writeImage = func(data []byte) error {
		*images = append(*images, data)
		return imageErr
	}
	c.writeText = func(s string) error {
		*texts = append(*texts, s)
		return nil
	}
	return c, images, texts
}

func TestSystemClipboard_WritesImagePayload(t *testing.T) {
	t.Parallel()

	c, images, texts := testClipboard(t, nil)
	m := testImage(t)

	require.NoError(t, c.WriteMedia(context.Background(), m))
	require.NoError(t, c.WriteMedia(context.Background(), m))

	require.Len(t, *images, 2)
	assert.Equal(t, []byte("png-bytes"), (*images)[0])
	assert.Equal(t, []byte("png-bytes"), (*images)[1])
	assert.Empty(t, *texts)
	assert.Empty(t, c.files)
}

func TestSystemClipboard_ConvertsToPNG(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	m, err := model.NewMedia("cat.jpg", "image/jpeg", buf.Bytes())
	require.NoError(t, err)

	c, images, _ := testClipboard(t, nil)
	require.NoError(t, c.WriteMedia(context.Background(), m))

	require.Len(t, *images, 1)
	decoded, err := png.Decode(bytes.NewReader((*images)[0]))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 3), decoded.Bounds())
}

func TestSystemClipboard_UndecodableImage(t *testing.T) {
	t.Parallel()

	m, err := model.NewMedia("cat.gif", "image/gif", []byte("not a gif"))
	require.NoError(t, err)

	c, images, texts := testClipboard(t, nil)
	err = c.WriteMedia(context.Background(), m)

	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Empty(t, *images)
	assert.Empty(t, *texts)
}

func TestSystemClipboard_FallsBackToFilePath(t *testing.T) {
	t.Parallel()

	c, images, texts := testClipboard(t, errors.New("no X display"))
	m := testImage(t)

	err := c.WriteMedia(context.Background(), m)
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, err.Error(), "copied instead")
	require.ErrorIs(t, c.WriteMedia(context.Background(), m), ErrUnsupported)

	assert.Len(t, *images, 2)
	require.Len(t, *texts, 2)
	assert.Equal(t, (*texts)[0], (*texts)[1])

	data, err := os.ReadFile((*texts)[0])
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, c.Close())
	assert.NoFileExists(t, (*texts)[0])
}

func TestSystemClipboard_NoClipboardAtAll(t *testing.T) {
	t.Parallel()

	c, _, texts := testClipboard(t, errors.New("no X display"))
	c.unsupported = func() bool { return true }

	err := c.WriteMedia(context.Background(), testImage(t))
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Empty(t, *texts)
	assert.Empty(t, c.files)
}

func TestSystemClipboard_VideoUnsupported(t *testing.T) {
	t.Parallel()

	c, images, texts := testClipboard(t, nil)
	m, err := model.NewMedia("clip.mp4", "video/mp4", []byte{1})
	require.NoError(t, err)

	err = c.WriteMedia(context.Background(), m)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Empty(t, *images)
	assert.Empty(t, *texts)
}

func TestSystemClipboard_Release(t *testing.T) {
	t.Parallel()

	c, _, texts := testClipboard(t, errors.New("no X display"))
	m := testImage(t)

	require.ErrorIs(t, c.WriteMedia(context.Background(), m), ErrUnsupported)
	require.Len(t, *texts, 1)
	require.NoError(t, c.Release(m))
	assert.NoFileExists(t, (*texts)[0])
	assert.Empty(t, c.images)
	require.NoError(t, c.Release(m))
}

func TestStage_FilePathFallbackIsNotStaged(t *testing.T) {
	t.Parallel()

	c, _, _ := testClipboard(t, errors.New("no X display"))
	t.Cleanup(func() { _ = c.Close() })
	h := New(c, zerolog.Nop())

	out, err := h.Stage(context.Background(), testImage(t))
	assert.Equal(t, Unsupported, out)
	assert.ErrorIs(t, err, ErrUnsupported)
}
