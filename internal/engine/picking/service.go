package picking

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/midgard-gallery/internal/engine/camera"
)

// Hit is the result of a successful pick.
type Hit struct {
	Owner    string
	Mesh     uuid.UUID
	Distance float32
	Point    mgl32.Vec3
}

type collider struct {
	mesh  uuid.UUID
	box   AABB
	owner string
}

// Service resolves rays to the artwork that owns the nearest mesh.
//
// Several meshes may share one owner (frame, canvas and label of the same
// artwork). Meshes with an empty owner are occluders: they block picks but
// never resolve to anything.
type Service struct {
	colliders []collider
}

// NewService creates an empty picking service.
func NewService() *Service {
	return &Service{}
}

// Add registers a mesh. An empty owner marks an occluder.
func (s *Service) Add(mesh uuid.UUID, box AABB, owner string) {
	s.colliders = append(s.colliders, collider{mesh: mesh, box: box, owner: owner})
}

// AddMesh registers box under a fresh mesh id and returns it.
func (s *Service) AddMesh(box AABB, owner string) uuid.UUID {
	id := uuid.New()
	s.Add(id, box, owner)
	return id
}

// Remove drops one mesh.
func (s *Service) Remove(mesh uuid.UUID) {
	s.filter(func(c collider) bool { return c.mesh != mesh })
}

// RemoveOwner drops every mesh of owner.
func (s *Service) RemoveOwner(owner string) {
	s.filter(func(c collider) bool { return c.owner != owner })
}

func (s *Service) filter(keep func(collider) bool) {
	out := s.colliders[:0]
	for _, c := range s.colliders {
		if keep(c) {
			out = append(out, c)
		}
	}
	for i := len(out); i < len(s.colliders); i++ {
		s.colliders[i] = collider{}
	}
	s.colliders = out
}

// Clear removes every mesh.
func (s *Service) Clear() {
	s.colliders = nil
}

// Len returns the number of registered meshes.
func (s *Service) Len() int {
	return len(s.colliders)
}

// Owner returns the owner registered for mesh.
func (s *Service) Owner(mesh uuid.UUID) (string, bool) {
	for _, c := range s.colliders {
		if c.mesh == mesh {
			return c.owner, true
		}
	}
	return "", false
}

// Pick returns the owner of the nearest mesh hit by r. A miss, or a nearest
// hit on an occluder, returns ok == false.
func (s *Service) Pick(r Ray) (Hit, bool) {
	var (
		best  Hit
		found bool
	)
	for _, c := range s.colliders {
		t, ok := r.IntersectAABB(c.box)
		if !ok || t < 0 {
			continue
		}
		if !found || t < best.Distance {
			best = Hit{Owner: c.owner, Mesh: c.mesh, Distance: t}
			found = true
		}
	}
	if !found || best.Owner == "" {
		return Hit{}, false
	}
	best.Point = r.At(best.Distance)
	return best, true
}

// PickFrom casts from the camera: through the screen centre when the pointer
// is locked, through pixel (x, y) otherwise.
func (s *Service) PickFrom(cam *camera.FirstPerson, x, y float32, locked bool) (Hit, bool) {
	inv := cam.ViewProjection().Inv()
	if locked {
		return s.Pick(CenterRay(inv))
	}
	w, h := cam.Viewport()
	return s.Pick(ScreenToRay(x, y, float32(w), float32(h), inv))
}
