// Package paint composites cached submap slices into one canvas. Each slice
// raster is placed with an affine transform derived from its submap pose and
// slice pose projected into the ground plane, then blended over the canvas.
package paint

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ROBOTIS-GIT/cartographer-ros/internal/occupancy"
)

// DrawTexture converts fetched intensity/alpha cell arrays into the slice
// raster blended by PaintSlices. Intensity lands in R, the observed marker in
// G and the blend weight in A. A cell is observed unless both its intensity
// and alpha are zero.
func DrawTexture(intensity, alpha []byte, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			var observed uint8
			if intensity[i] != 0 || alpha[i] != 0 {
				observed = 255
			}
			o := img.PixOffset(x, y)
			img.Pix[o+0] = intensity[i]
			img.Pix[o+1] = observed
			img.Pix[o+2] = 0
			img.Pix[o+3] = alpha[i]
		}
	}
	return img
}

// Painter implements occupancy.Painter.
type Painter struct{}

func New() *Painter { return &Painter{} }

// worldFromTexel maps source pixel coordinates of one slice (x right, y down)
// into world coordinates (y up), given the combined submap-and-slice pose.
type worldFromTexel struct {
	cos, sin float64 // yaw of the combined pose
	tx, ty   float64 // world translation of the combined pose
	s        float64 // slice resolution, world units per texel
}

func (m worldFromTexel) apply(u, v float64) (float64, float64) {
	// Texel rows grow downward, so the local frame point is (u*s, -v*s).
	return m.tx + m.s*(m.cos*u+m.sin*v), m.ty + m.s*(m.sin*u-m.cos*v)
}

// PaintSlices composites every textured slice into one canvas at the given
// cell resolution and reports where the world origin landed on it, in cells.
// Slices whose texture has not been fetched yet are skipped. With no textured
// slice at all the returned frame is empty (zero size).
func (p *Painter) PaintSlices(slices map[occupancy.SubmapID]occupancy.SubmapSlice, resolution float64) *occupancy.CompositeFrame {
	type placed struct {
		img *image.NRGBA
		m   worldFromTexel
	}
	var textured []placed

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, slice := range slices {
		tex := slice.Texture
		if tex == nil {
			continue
		}
		combined := slice.Pose.Mul(tex.SlicePose)
		yaw := combined.Yaw()
		m := worldFromTexel{
			cos: math.Cos(yaw), sin: math.Sin(yaw),
			tx: combined.Translation.X, ty: combined.Translation.Y,
			s: tex.Resolution,
		}
		w, h := float64(tex.Width), float64(tex.Height)
		for _, c := range [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}} {
			x, y := m.apply(c[0], c[1])
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
		textured = append(textured, placed{img: tex.Pixels, m: m})
	}
	if len(textured) == 0 {
		return &occupancy.CompositeFrame{}
	}

	// The epsilon keeps float noise in the bounds from ceiling an extra cell.
	const eps = 1e-6
	width := int(math.Ceil((maxX-minX)/resolution - eps))
	height := int(math.Ceil((maxY-minY)/resolution - eps))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))

	for _, pl := range textured {
		// Compose pixel-from-world with world-from-texel. Canvas rows grow
		// downward from maxY: px=(wx-minX)/res, py=(maxY-wy)/res.
		m := pl.m
		aff := f64.Aff3{
			m.s * m.cos / resolution, m.s * m.sin / resolution, (m.tx - minX) / resolution,
			-m.s * m.sin / resolution, m.s * m.cos / resolution, (maxY - m.ty) / resolution,
		}
		xdraw.NearestNeighbor.Transform(canvas, aff, pl.img, pl.img.Bounds(), xdraw.Over, nil)
	}

	frame := &occupancy.CompositeFrame{
		OriginX: -minX / resolution,
		OriginY: maxY / resolution,
		Width:   width,
		Height:  height,
		Pixels:  make([]uint32, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := canvas.PixOffset(x, y)
			r, g, b, a := canvas.Pix[o+0], canvas.Pix[o+1], canvas.Pix[o+2], canvas.Pix[o+3]
			frame.Pixels[y*width+x] = uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
		}
	}
	return frame
}
