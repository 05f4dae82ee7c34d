package sim

import "fmt"

// DataError reports a feature stream that breaks the backlog
// recurrence: windows out of order or duplicated. Fatal to the
// scenario; the simulator emits no partial output for it.
type DataError struct {
	WindowID int64
	Reason   string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("feature stream: window %d: %s", e.WindowID, e.Reason)
}
