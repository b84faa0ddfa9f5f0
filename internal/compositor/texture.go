package compositor

import "image"

// SolidTexture returns one color everywhere. Useful as a placeholder and in
// tests.
type SolidTexture struct {
	Color RGB
}

func (t SolidTexture) Sample(_, _ float64) RGB {
	return t.Color
}

// ImageTexture samples a decoded image with nearest-neighbor lookup. v runs
// bottom-up, matching the projection's NDC orientation, so row order is
// flipped.
type ImageTexture struct {
	Img image.Image
}

func (t ImageTexture) Sample(u, v float64) RGB {
	bounds := t.Img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w == 0 || h == 0 {
		return RGB{}
	}

	x := bounds.Min.X + int(clamp(u, 0, 1)*float64(w-1)+0.5)
	y := bounds.Min.Y + int(clamp(1-v, 0, 1)*float64(h-1)+0.5)

	r, g, b, _ := t.Img.At(x, y).RGBA()
	return RGB{
		R: float64(r) / 0xffff,
		G: float64(g) / 0xffff,
		B: float64(b) / 0xffff,
	}
}
