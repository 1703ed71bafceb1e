package lod

import "image"

// Uploader moves decoded images into GPU memory. It is only called on the
// render goroutine.
type Uploader interface {
	Upload(img *image.RGBA) (uint32, error)
	Release(id uint32)
}

// Texture is a resident, GPU-uploadable texture for one tier.
type Texture struct {
	Tier   Tier
	Width  int
	Height int
	ID     uint32

	release  func(uint32)
	disposed bool
}

// Dispose releases the GPU texture. Calling it again does nothing.
func (t *Texture) Dispose() {
	if t == nil || t.disposed {
		return
	}
	t.disposed = true
	if t.release != nil {
		t.release(t.ID)
	}
}

// Disposed reports whether the texture has been released.
func (t *Texture) Disposed() bool {
	return t != nil && t.disposed
}

// Bytes estimates GPU memory used by the texture (RGBA8, no mipmaps).
func (t *Texture) Bytes() int64 {
	return int64(t.Width) * int64(t.Height) * 4
}
