package model

import "time"

// LogEntry tracks one contact through a batch.
type LogEntry struct {
	Contact   Contact   `json:"contact"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Link is the deep link that was opened for the contact.
	Link string `json:"link,omitempty"`
	// Notice carries non-fatal problems, e.g. an attachment that could not be staged.
	Notice string `json:"notice,omitempty"`
	// Reason is set when Status is Failed.
	Reason string `json:"reason,omitempty"`
}
