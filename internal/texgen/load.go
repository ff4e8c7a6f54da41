package texgen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"

	"avatar-morph/internal/scene"
)

// Load reads an exported map back from a .webp or .tga file. The texture is
// named after the file without its extension.
func Load(path string) (*scene.Texture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texgen: read %s: %w", path, err)
	}

	// TGA has no magic bytes to sniff, so dispatch on the extension.
	var img image.Image
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case FormatWebP.Ext():
		img, err = webp.Decode(bytes.NewReader(raw))
	case FormatTGA.Ext():
		img, err = tga.Decode(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("texgen: unknown extension: %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("texgen: decode %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return scene.NewTexture(name, toNRGBA(img)), nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// no alpha channel
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
			}
		}
	}
	return dst
}
