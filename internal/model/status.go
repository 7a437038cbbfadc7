package model

type Status string

const (
	Queued  Status = "queued"
	Sending Status = "sending"
	Sent    Status = "sent"
	Failed  Status = "failed"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case Queued, Sending, Sent, Failed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == Sent || s == Failed
}

// Rank orders statuses along the state machine. Sent and Failed share the
// terminal rank.
func (s Status) Rank() int {
	switch s {
	case Queued:
		return 0
	case Sending:
		return 1
	case Sent, Failed:
		return 2
	default:
		return -1
	}
}

// CanMoveTo reports whether s -> next is a forward edge of the state machine.
func (s Status) CanMoveTo(next Status) bool {
	switch s {
	case Queued:
		return next == Sending || next == Sent || next == Failed
	case Sending:
		return next == Sent || next == Failed
	default:
		return false
	}
}

// Label is the user facing name. Sent reads "Actioned": the chat link was
// opened, delivery itself is never observed.
func (s Status) Label() string {
	switch s {
	case Queued:
		return "Waiting"
	case Sending:
		return "Loading"
	case Sent:
		return "Actioned"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}
