// Package hostimage provides a strided 8-bit grayscale image in host memory,
// the host side of device transfers.
package hostimage

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Gray is a grayscale image with one byte per pixel. The pixel at (x, y)
// is Data()[y*RowSize()+x]; bytes between Width and RowSize are padding.
type Gray struct {
	width   uint32
	height  uint32
	rowSize uint32
	pix     []byte
}

// New allocates an unpadded width x height image.
func New(width, height uint32) *Gray {
	return NewPadded(width, height, width)
}

// NewPadded allocates a width x height image whose rows are rowSize bytes
// apart. rowSize below width is raised to width.
func NewPadded(width, height, rowSize uint32) *Gray {
	rowSize = max(rowSize, width)
	return &Gray{
		width:   width,
		height:  height,
		rowSize: rowSize,
		pix:     make([]byte, int(rowSize)*int(height)),
	}
}

// FromPixels wraps pix as a width x height image with the given row size.
// pix is used directly, not copied.
func FromPixels(width, height, rowSize uint32, pix []byte) (*Gray, error) {
	if rowSize < width {
		return nil, fmt.Errorf("hostimage: row size %d < width %d", rowSize, width)
	}
	if height > 0 && width > 0 {
		need := int(height-1)*int(rowSize) + int(width)
		if len(pix) < need {
			return nil, fmt.Errorf("hostimage: %d bytes for %dx%d with row size %d, need %d",
				len(pix), width, height, rowSize, need)
		}
	}
	return &Gray{width: width, height: height, rowSize: rowSize, pix: pix}, nil
}

// FromImage converts any image to grayscale, keeping its size.
func FromImage(src image.Image) *Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return &Gray{
		width:   uint32(b.Dx()),
		height:  uint32(b.Dy()),
		rowSize: uint32(dst.Stride),
		pix:     dst.Pix,
	}
}

// Scaled converts src to grayscale and resamples it to width x height.
func Scaled(src image.Image, width, height uint32) *Gray {
	dst := image.NewGray(image.Rect(0, 0, int(width), int(height)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return &Gray{width: width, height: height, rowSize: uint32(dst.Stride), pix: dst.Pix}
}

// Width returns the width in pixels. A nil image has width 0.
func (g *Gray) Width() uint32 {
	if g == nil {
		return 0
	}
	return g.width
}

// Height returns the height in pixels. A nil image has height 0.
func (g *Gray) Height() uint32 {
	if g == nil {
		return 0
	}
	return g.height
}

// RowSize returns the byte distance between consecutive rows.
func (g *Gray) RowSize() uint32 {
	if g == nil {
		return 0
	}
	return g.rowSize
}

// Data returns the pixel buffer, starting at the first pixel of the first row.
func (g *Gray) Data() []byte {
	if g == nil {
		return nil
	}
	return g.pix
}

// Empty reports whether the image has no pixels.
func (g *Gray) Empty() bool {
	return g == nil || g.width == 0 || g.height == 0
}

// Row returns the width visible pixels of row y.
func (g *Gray) Row(y int) []byte {
	start := y * int(g.rowSize)
	return g.pix[start : start+int(g.width)]
}

// At returns the pixel at (x, y).
func (g *Gray) At(x, y int) uint8 {
	return g.pix[y*int(g.rowSize)+x]
}

// Set sets the pixel at (x, y).
func (g *Gray) Set(x, y int, v uint8) {
	g.pix[y*int(g.rowSize)+x] = v
}

// Pixels returns the visible pixels packed row after row, without padding.
func (g *Gray) Pixels() []byte {
	out := make([]byte, 0, int(g.width)*int(g.height))
	for y := 0; y < int(g.height); y++ {
		out = append(out, g.Row(y)...)
	}
	return out
}

// Image returns an *image.Gray sharing the pixel buffer.
func (g *Gray) Image() *image.Gray {
	return &image.Gray{
		Pix:    g.pix,
		Stride: int(g.rowSize),
		Rect:   image.Rect(0, 0, int(g.width), int(g.height)),
	}
}
