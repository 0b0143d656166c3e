package protocol

// Actions understood by the backend.
const (
	ActionGetAll  = "get_all"
	ActionGetByID = "get_by_id"
)

// Request is an outbound frame. ID is only sent with get_by_id.
type Request struct {
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
}

// GetAll asks for the full catalog.
func GetAll() Request { return Request{Action: ActionGetAll} }

// GetByID asks for a single model.
func GetByID(id int64) Request { return Request{Action: ActionGetByID, ID: id} }
