// Package link turns a phone number and a personalized message into a chat
// deep link.
package link

import (
	"fmt"
	"net/url"
	"strings"
)

const DefaultBaseURL = "https://web.whatsapp.com"

type Form string

const (
	// FormRecipient addresses the chat of the given phone number.
	FormRecipient Form = "recipient"
	// FormOpenChat only carries the text, the chat that is currently open receives it.
	FormOpenChat Form = "open-chat"
)

func (f Form) IsValid() bool {
	return f == FormRecipient || f == FormOpenChat
}

type Builder struct {
	form Form
	base string
}

func NewBuilder(form Form, baseURL string) (*Builder, error) {
	if form == "" {
		form = FormRecipient
	}
	if !form.IsValid() {
		return nil, fmt.Errorf("unknown link form %q", form)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid link base url: %w", err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("invalid link base url %q: scheme required", baseURL)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Builder{
		form: form,
		base: baseURL,
	}, nil
}

func (b *Builder) Form() Form { return b.form }

// Build does not validate phone. An empty phone still yields a link and the
// chat application decides what to do with it.
func (b *Builder) Build(phone, text string) string {
	var sb strings.Builder
	sb.WriteString(b.base)
	sb.WriteString("send?")
	if b.form == FormRecipient {
		sb.WriteString("phone=")
		sb.WriteString(phone)
		sb.WriteString("&")
	}
	sb.WriteString("text=")
	sb.WriteString(Encode(text))
	return sb.String()
}

// Encode percent-encodes text for a query value. Spaces become %20 and
// every byte outside [A-Za-z0-9-_.~] is escaped, including !'()*.
func Encode(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
