package scene

import "image"

// Texture is a named pixel buffer bound to a material slot.
type Texture struct {
	Name     string
	Image    *image.NRGBA
	disposed bool
}

// NewTexture wraps img.
func NewTexture(name string, img *image.NRGBA) *Texture {
	return &Texture{Name: name, Image: img}
}

// Dispose releases the pixel buffer. Materials still referencing the texture
// see a nil Image afterwards.
func (t *Texture) Dispose() {
	if t == nil {
		return
	}
	t.Image = nil
	t.disposed = true
}

// Disposed reports whether Dispose has been called.
func (t *Texture) Disposed() bool {
	return t != nil && t.disposed
}

// Size returns the edge length of a square texture, or 0 once disposed.
func (t *Texture) Size() int {
	if t == nil || t.Image == nil {
		return 0
	}
	return t.Image.Rect.Dx()
}
