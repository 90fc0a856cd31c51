package domain

import (
	"image"
)

// EncodeRaster packs the normalized velocity field into a north-up RGBA data
// texture, one pixel per cell: R=u byte, G=v byte, B=255 where valid else 0,
// A=255. The result's Pix buffer is the exact row-major RGBA byte layout.
func EncodeRaster(g *Grid, n *Normalized) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, n.Cols, n.Rows))
	for y := 0; y < n.Rows; y++ {
		src := g.SourceRow(y)
		for x := 0; x < n.Cols; x++ {
			k := n.At(src, x)
			var valid uint8
			if n.Valid[k] {
				valid = 255
			}
			off := img.PixOffset(x, y)
			img.Pix[off+0] = n.UScaled[k]
			img.Pix[off+1] = n.VScaled[k]
			img.Pix[off+2] = valid
			img.Pix[off+3] = 255
		}
	}
	return img
}

// DecodeChannel maps a texture byte back onto r, the way the map client does.
func DecodeChannel(b uint8, r Range) float64 {
	return float64(b)/255*(r[1]-r[0]) + r[0]
}
