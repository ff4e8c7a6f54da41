package texgen

import (
	"fmt"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"

	"avatar-morph/internal/scene"
)

// Format is an export encoding.
type Format string

const (
	FormatWebP Format = "webp"
	FormatTGA  Format = "tga"
)

// ParseFormat accepts "webp" or "tga", case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatWebP, FormatTGA:
		return f, nil
	case "":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("texgen: unknown format %q", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode writes tex in format f.
func Encode(w io.Writer, tex *scene.Texture, f Format) error {
	if tex == nil || tex.Disposed() {
		return fmt.Errorf("texgen: encode: texture released")
	}
	switch f {
	case FormatTGA:
		return EncodeTGA(w, tex)
	default:
		return EncodeWebP(w, tex)
	}
}

// EncodeWebP writes tex as lossless WebP.
func EncodeWebP(w io.Writer, tex *scene.Texture) error {
	if err := nativewebp.Encode(w, tex.Image, nil); err != nil {
		return fmt.Errorf("texgen: webp %s: %w", tex.Name, err)
	}
	return nil
}

// EncodeTGA writes tex as uncompressed TGA.
func EncodeTGA(w io.Writer, tex *scene.Texture) error {
	if err := tga.Encode(w, tex.Image); err != nil {
		return fmt.Errorf("texgen: tga %s: %w", tex.Name, err)
	}
	return nil
}
