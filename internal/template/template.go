// Package template personalizes a message for one contact.
package template

import (
	"strings"

	"github.com/LeventeLantos/message-blast/internal/model"
)

const (
	NameToken  = "{{name}}"
	PhoneToken = "{{phone}}"
)

// Render substitutes every {{name}} and {{phone}} in a single left-to-right
// pass. Inserted values are not scanned again and unknown placeholders are
// left as they are.
func Render(tmpl string, c model.Contact) string {
	return strings.NewReplacer(
		NameToken, c.Name,
		PhoneToken, c.Phone,
	).Replace(tmpl)
}

// Placeholders returns the known tokens present in tmpl, in first-seen order.
func Placeholders(tmpl string) []string {
	type hit struct {
		token string
		at    int
	}
	var hits []hit
	for _, tok := range []string{NameToken, PhoneToken} {
		if i := strings.Index(tmpl, tok); i >= 0 {
			hits = append(hits, hit{tok, i})
		}
	}
	if len(hits) == 2 && hits[1].at < hits[0].at {
		hits[0], hits[1] = hits[1], hits[0]
	}

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.token)
	}
	return out
}

func IsBlank(tmpl string) bool {
	return strings.TrimSpace(tmpl) == ""
}
