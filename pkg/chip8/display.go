package chip8

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"

	"gochip8/pkg/grid"
)

const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Frame is the monochrome display, indexed [row][column]. It is a value type,
// so a copy handed to a consumer is never affected by later drawing.
type Frame [DisplayHeight][DisplayWidth]bool

// Default colors for rendered frames.
var (
	PixelOn  color.Color = colornames.White
	PixelOff color.Color = colornames.Black
)

func (f *Frame) clear() {
	*f = Frame{}
}

// drawSprite XORs the rows onto the frame at (x, y), wrapping on both axes.
// It reports whether any lit pixel was switched off.
func (f *Frame) drawSprite(x, y byte, rows []byte) bool {
	collision := false
	for dy, bits := range rows {
		py := (int(y) + dy) % DisplayHeight
		for dx := 0; dx < 8; dx++ {
			if bits&(0x80>>dx) == 0 {
				continue
			}
			px := (int(x) + dx) % DisplayWidth
			if f[py][px] {
				collision = true
			}
			f[py][px] = !f[py][px]
		}
	}
	return collision
}

// Lit returns the number of pixels switched on.
func (f *Frame) Lit() int {
	n := 0
	for i := 0; i < DisplayWidth*DisplayHeight; i++ {
		if f.Pixel(i) {
			n++
		}
	}
	return n
}

// Pixel returns the pixel at the given row-major index.
func (f *Frame) Pixel(index int) bool {
	x, y := grid.GetGridCoords(index, DisplayWidth)
	return f[y][x]
}

// RGBA decodes the frame into a 64×32 RGBA8888 byte slice
// (length 64*32*4 = 8192).
func (f *Frame) RGBA(on, off color.Color) []byte {
	onR, onG, onB, onA := rgba8(on)
	offR, offG, offB, offA := rgba8(off)

	pixels := make([]byte, DisplayWidth*DisplayHeight*4)
	for y := range f {
		for x, lit := range f[y] {
			i := grid.GetIndex(x, y, DisplayWidth) * 4
			p := pixels[i : i+4]
			if lit {
				p[0], p[1], p[2], p[3] = onR, onG, onB, onA
			} else {
				p[0], p[1], p[2], p[3] = offR, offG, offB, offA
			}
		}
	}
	return pixels
}

func rgba8(c color.Color) (r, g, b, a byte) {
	cr, cg, cb, ca := c.RGBA()
	return byte(cr >> 8), byte(cg >> 8), byte(cb >> 8), byte(ca >> 8)
}

// Image returns the frame scaled by an integer factor with nearest-neighbour
// sampling, so pixels stay square.
func (f *Frame) Image(scale int, on, off color.Color) *image.RGBA {
	src := &image.RGBA{
		Pix:    f.RGBA(on, off),
		Stride: DisplayWidth * 4,
		Rect:   image.Rect(0, 0, DisplayWidth, DisplayHeight),
	}
	if scale <= 1 {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, DisplayWidth*scale, DisplayHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SavePNG encodes the frame as a PNG and writes it to filename.
func (f *Frame) SavePNG(filename string, scale int) error {
	img := f.Image(scale, PixelOn, PixelOff)
	out, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// String renders the frame as text, one line per row, '#' for lit pixels.
func (f *Frame) String() string {
	var sb strings.Builder
	sb.Grow((DisplayWidth + 1) * DisplayHeight)
	for y := range f {
		for x := range f[y] {
			if f[y][x] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
