package scheduler

// EventType classifies a status stream record.
type EventType string

const (
	// EventLog forwards an engine or pipeline log line.
	EventLog EventType = "log"
	// EventProgress reports render progress for one job.
	EventProgress EventType = "progress"
	// EventDone marks a job's successful completion.
	EventDone EventType = "done"
	// EventError marks a job failure. Scheduling continues.
	EventError EventType = "error"
	// EventCancelled marks a job terminated by cancellation. Not a failure.
	EventCancelled EventType = "cancelled"
	// EventAllDone is the final record of a batch run.
	EventAllDone EventType = "all_done"
)

// Event is one record on the batch status stream. Records for different jobs
// interleave arbitrarily; ordering is preserved per sink.
type Event struct {
	Type    EventType
	JobID   string
	Worker  int
	Track   string
	Output  string
	Message string

	// Percent is set on progress events; negative when indeterminate.
	Percent float64
}

// EventSink consumes status records. The scheduler serializes calls, so
// implementations need no locking of their own.
type EventSink func(Event)
