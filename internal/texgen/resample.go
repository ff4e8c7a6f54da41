package texgen

import (
	"image"

	"golang.org/x/image/draw"
)

// resample scales a square map to size with CatmullRom. Maps are opaque so
// no alpha premultiplication is needed. size <= 0 or equal returns img.
func resample(img *image.NRGBA, size int) *image.NRGBA {
	if size <= 0 || img.Bounds().Dx() == size {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
