package types

// Selection kinds.
const (
	SelectionNone   = "none"
	SelectionSingle = "single"
	SelectionAll    = "all"
)

// Selection is what the user asked to see.
type Selection struct {
	// none, single or all.
	// example: single
	Kind string `json:"kind" example:"single"`
	// Model id when Kind is single.
	// example: 3
	ID int64 `json:"id,omitempty" example:"3"`
}

// ModelSummary is one catalog entry without its payload.
type ModelSummary struct {
	// example: 3
	ID int64 `json:"id" example:"3"`
	// example: Cube
	Name string `json:"name,omitempty" example:"Cube"`
	// Display label used in selection lists.
	// example: 3: Cube
	Label string `json:"label" example:"3: Cube"`
	// Whether the catalog entry carried model data.
	// example: true
	HasPayload bool `json:"has_payload" example:"true"`
}

// Vec3 is an x, y, z triple.
type Vec3 [3]float32

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// PlacedModel is a model present in the scene.
type PlacedModel struct {
	// example: 3
	ID int64 `json:"id" example:"3"`
	// Slot index; the model sits at x = slot * spacing.
	// example: 0
	Slot int `json:"slot" example:"0"`
	// World-space bounds.
	Bounds Bounds `json:"bounds"`
}

// View is the camera and key light pose.
type View struct {
	Target   Vec3    `json:"target"`
	Camera   Vec3    `json:"camera"`
	Distance float32 `json:"distance" example:"5"`
	KeyLight Vec3    `json:"key_light"`
}
