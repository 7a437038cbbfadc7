package model

import (
	"errors"
	"fmt"
	"mime"
	"strings"
)

var ErrUnsupportedMedia = errors.New("unsupported media type")

type MediaKind string

const (
	Image MediaKind = "image"
	Video MediaKind = "video"
)

// Media is the single optional attachment of a batch. It is never mutated
// after construction.
type Media struct {
	Name     string
	MimeType string
	Kind     MediaKind
	Payload  []byte
}

// NewMedia accepts image/* and video/* payloads only.
func NewMedia(name, mimeType string, payload []byte) (*Media, error) {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMedia, mimeType)
	}

	var kind MediaKind
	switch {
	case strings.HasPrefix(mt, "image/"):
		kind = Image
	case strings.HasPrefix(mt, "video/"):
		kind = Video
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMedia, mt)
	}
	if len(payload) == 0 {
		return nil, errors.New("media payload is empty")
	}

	return &Media{
		Name:     name,
		MimeType: mt,
		Kind:     kind,
		Payload:  payload,
	}, nil
}
