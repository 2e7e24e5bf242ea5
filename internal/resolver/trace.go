package resolver

// EventKind names a step of a resolution.
type EventKind string

const (
	// EventFree: the candidate was not taken and is returned unchanged.
	EventFree EventKind = "free"
	// EventTaken: the candidate collided with an existing record.
	EventTaken EventKind = "taken"
	// EventAttempt: a custom generator produced a value (Taken tells whether
	// it collided).
	EventAttempt EventKind = "attempt"
	// EventScan: the batch scan finished; Number is the highest occupied
	// suffix number observed.
	EventScan EventKind = "scan"
	// EventRecheck: a suffixed value was checked directly.
	EventRecheck EventKind = "recheck"
	// EventResolved: the final value.
	EventResolved EventKind = "resolved"
)

// Event describes one step of a resolution.
type Event struct {
	Kind    EventKind
	Field   string
	Value   string
	Attempt int
	Number  int
	Taken   bool
}

// Tracer receives resolution events. Implementations must not block.
type Tracer interface {
	Trace(Event)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(Event)

// Trace implements Tracer.
func (f TracerFunc) Trace(e Event) { f(e) }

// Recorder collects events in order. Not safe for concurrent use.
type Recorder struct {
	Events []Event
}

// Trace implements Tracer.
func (r *Recorder) Trace(e Event) { r.Events = append(r.Events, e) }

// Reset discards recorded events.
func (r *Recorder) Reset() { r.Events = nil }
