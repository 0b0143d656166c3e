package session

// Event is a session lifecycle event: a name, the model it concerns (zero
// when none) and optional fields.
type Event struct {
	Name    string
	ModelID int64
	Fields  map[string]any
}

// EventPublisher receives events from the session loop. Publish is called
// on the loop goroutine and must not block.
type EventPublisher interface {
	Publish(Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// Event names.
const (
	EventChannelOpen    = "channel_open"
	EventChannelClosed  = "channel_closed"
	EventCatalog        = "catalog"
	EventSelection      = "selection"
	EventRequestSent    = "request_sent"
	EventRequestTimeout = "request_timeout"
	EventStaleResponse  = "stale_response"
	EventBatchDone      = "batch_done"
	EventError          = "error"
)
