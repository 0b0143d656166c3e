package scene

import "cogentcore.org/core/math32"

// Handle identifies an object inserted into a Surface.
type Handle uint64

// View is the camera and key light pose framing the placed models.
type View struct {
	Target   math32.Vector3
	Camera   math32.Vector3
	Distance float32
	KeyLight math32.Vector3
}

// Surface is the render target. The composer only inserts, releases and
// re-aims; drawing is the surface's business.
type Surface interface {
	Insert(id int64, obj *Object, at math32.Vector3) Handle
	Release(h Handle)
	SetView(v View)
}
