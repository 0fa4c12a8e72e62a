package registration

import "github.com/rawadhq/rawad/core"

// State identifies one stage of a submission pipeline run.
type State string

const (
	StateValidating State = "validating"
	StateRejected   State = "rejected"
	StateUploading  State = "uploading"
	StatePersisting State = "persisting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Event is one observable transition of a submission pipeline. A pipeline run
// emits zero or more non-terminal events followed by exactly one terminal event.
type Event struct {
	State    State `json:"state"`
	Progress int   `json:"progress,omitempty"` // upload percentage, Uploading only

	// Rejected / Failed
	Error  string            `json:"error,omitempty"`
	Errors []core.FieldError `json:"errors,omitempty"` // field descriptors, Rejected only

	// Succeeded
	Registration *Registration `json:"registration,omitempty"`

	// OrphanKey names the stored object left behind when persistence failed after
	// a successful upload. Logged for reconciliation, never sent to clients.
	OrphanKey string `json:"-"`
}

func (e Event) Terminal() bool {
	switch e.State {
	case StateRejected, StateSucceeded, StateFailed:
		return true
	}
	return false
}
