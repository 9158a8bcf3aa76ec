package evaluation

import "fmt"

// Status is the decision state of one candidate in one evaluation run.
// A candidate moves from pending to exactly one terminal state.
type Status int

const (
	StatusPending Status = iota
	StatusSelected
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSelected:
		return "selected"
	case StatusRejected:
		return "rejected"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) Terminal() bool {
	return s == StatusSelected || s == StatusRejected
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pending":
		*s = StatusPending
	case "selected":
		*s = StatusSelected
	case "rejected":
		*s = StatusRejected
	default:
		return fmt.Errorf("unknown evaluation status %q", string(text))
	}
	return nil
}
