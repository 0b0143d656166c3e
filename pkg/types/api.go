package types

// SelectRequest is the body of POST /select. Exactly one field must be set.
type SelectRequest struct {
	// Select a single model by id.
	// example: 3
	ID *int64 `json:"id,omitempty" example:"3"`
	// Select every model in the catalog.
	// example: false
	All bool `json:"all,omitempty" example:"false"`
	// Clear the selection.
	// example: false
	None bool `json:"none,omitempty" example:"false"`
}

// SelectResponse acknowledges a queued selection intent.
type SelectResponse struct {
	// Selection kind that was requested (none, single, all).
	// example: single
	Kind string `json:"kind" example:"single"`
	// Model id for single selections.
	// example: 3
	ID int64 `json:"id,omitempty" example:"3"`
}

// ModelsResponse wraps the catalog returned by GET /models.
type ModelsResponse struct {
	// Models in the order the backend announced them.
	Models []ModelSummary `json:"models"`
}

// SceneResponse describes what is currently placed and how it is framed.
type SceneResponse struct {
	// Placed models in landing order.
	Placed []PlacedModel `json:"placed"`
	// Union of all placed bounding boxes. Absent when nothing is placed.
	Bounds *Bounds `json:"bounds,omitempty"`
	// Camera and key light pose.
	View View `json:"view"`
	// Models of the current batch still being parsed.
	// example: 0
	Parsing int `json:"parsing" example:"0"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is the session snapshot served by GET /status and streamed by GET /events.
type StatusResponse struct {
	// Unique id of this viewer session.
	// example: 7f1c2a9e-4b1e-4c33-9a55-0c4a7d2f1e10
	SessionID string `json:"session_id" example:"7f1c2a9e-4b1e-4c33-9a55-0c4a7d2f1e10"`
	// Backend endpoint.
	// example: ws://127.0.0.1:8000/ws
	URL string `json:"url" example:"ws://127.0.0.1:8000/ws"`
	// Whether the channel to the backend is open.
	// example: true
	Connected bool `json:"connected" example:"true"`
	// Whether a catalog frame has been received since start.
	// example: true
	CatalogReceived bool `json:"catalog_received" example:"true"`
	// Current selection.
	Selection Selection `json:"selection"`
	// Model id of the outstanding single-model request, if any.
	// example: 3
	PendingID int64 `json:"pending_id,omitempty" example:"3"`
	// Status line shown to the user.
	// example: Loaded 1 model
	Status string `json:"status" example:"Loaded 1 model"`
	// Most recent error message.
	// example: timeout error (model 3): no response after 5s
	LastError string `json:"last_error,omitempty" example:"timeout error (model 3): no response after 5s"`
	// Kind of the most recent error (connection, protocol, server, decode, parse, timeout).
	// example: timeout
	ErrorKind string `json:"error_kind,omitempty" example:"timeout"`
	// Number of catalog entries.
	// example: 4
	ModelCount int `json:"model_count" example:"4"`
	// Number of placed models.
	// example: 1
	PlacedCount int `json:"placed_count" example:"1"`
	// Selection/scene generation counter.
	// example: 12
	Epoch uint64 `json:"epoch" example:"12"`
	// Seconds since the session started.
	// example: 42
	UptimeSeconds int64 `json:"uptime_seconds" example:"42"`
	// Time the snapshot was taken (unix seconds).
	// example: 1700000000
	UpdatedUnix int64 `json:"updated_unix" example:"1700000000"`
}
