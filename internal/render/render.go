// Package render rasterises an editor scene into an image for the widget.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/hoppxi/brux/internal/editor"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type Style struct {
	Background color.RGBA
	Grid       color.RGBA
	Label      color.RGBA
	Curve      color.RGBA
	Handle     color.RGBA
	Cursor     color.RGBA
	CurveWidth float64
	HandleRing float64
}

var DefaultStyle = Style{
	Background: color.RGBA{0xff, 0xff, 0xff, 0xff},
	Grid:       color.RGBA{0xdd, 0xdd, 0xdd, 0xff},
	Label:      color.RGBA{0x88, 0x88, 0x88, 0xff},
	Curve:      color.RGBA{0x55, 0x55, 0x55, 0xff},
	Handle:     color.RGBA{0x11, 0xaa, 0xaa, 0xff},
	Cursor:     color.RGBA{0xff, 0x11, 0x11, 0xff},
	CurveWidth: 2,
	HandleRing: 2,
}

const gridHours = 6

type Renderer struct {
	Style Style
	// Supersample draws at N× and scales down for smoother curves. 0 or 1
	// draws directly.
	Supersample int
	Labels      bool
}

func New() *Renderer {
	return &Renderer{Style: DefaultStyle, Supersample: 2, Labels: true}
}

// Render draws scene into a new image of the scene's size.
func (r *Renderer) Render(scene editor.Scene) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, scene.Width, scene.Height))
	if scene.Width <= 0 || scene.Height <= 0 {
		return out
	}

	ss := r.Supersample
	if ss < 1 {
		ss = 1
	}

	canvas := out
	if ss > 1 {
		canvas = image.NewRGBA(image.Rect(0, 0, scene.Width*ss, scene.Height*ss))
	}
	r.paint(canvas, scene, float64(ss))

	if ss > 1 {
		draw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	}

	if r.Labels {
		r.labels(out, scene)
	}
	return out
}

// WritePNG renders scene and atomically replaces path with the result.
func (r *Renderer) WritePNG(scene editor.Scene, path string) error {
	img := r.Render(scene)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create render dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close image: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func (r *Renderer) paint(img *image.RGBA, scene editor.Scene, scale float64) {
	st := r.Style
	draw.Draw(img, img.Bounds(), image.NewUniform(st.Background), image.Point{}, draw.Src)

	w, h := float64(scene.Width), float64(scene.Height)
	for hour := gridHours; hour < 24; hour += gridHours {
		x := math.Round(w * float64(hour) / 24 * scale)
		line(img, x, 0, x, h*scale, scale, st.Grid)
	}

	for i := 1; i < len(scene.Polyline); i++ {
		a, b := scene.Polyline[i-1], scene.Polyline[i]
		line(img, a.X*scale, a.Y*scale, b.X*scale, b.Y*scale, st.CurveWidth*scale, st.Curve)
	}

	for _, hr := range scene.Handles {
		c := hr.Min.Add(hr.Max).Div(2)
		radius := float64(hr.Dx()) / 2
		ring(img, float64(c.X)*scale, float64(c.Y)*scale, radius*scale, st.HandleRing*scale, st.Handle)
	}

	if scene.Cursor != nil {
		cur := scene.Cursor
		x := cur.From.X * scale
		fillRect(img, int(x), int(cur.From.Y*scale), int(x)+int(scale), int(cur.To.Y*scale), st.Cursor)
	}
}

func (r *Renderer) labels(img *image.RGBA, scene editor.Scene) {
	if scene.Height < basicfont.Face7x13.Height*2 {
		return
	}
	for hour := 0; hour < 24; hour += gridHours {
		x := int(math.Round(float64(scene.Width) * float64(hour) / 24))
		text(img, x+3, scene.Height-3, fmt.Sprintf("%02d", hour), r.Style.Label)
	}
}

func text(img *image.RGBA, x, y int, s string, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// line stamps width×width squares along the segment.
func line(img *image.RGBA, x0, y0, x1, y1, width float64, c color.RGBA) {
	dx, dy := x1-x0, y1-y0
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	half := width / 2
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x, y := x0+t*dx, y0+t*dy
		fillRect(img, int(math.Floor(x-half+0.5)), int(math.Floor(y-half+0.5)),
			int(math.Floor(x+half+0.5)), int(math.Floor(y+half+0.5)), c)
	}
}

func ring(img *image.RGBA, cx, cy, radius, width float64, c color.RGBA) {
	inner, outer := radius-width/2, radius+width/2
	b := image.Rect(int(cx-outer)-1, int(cy-outer)-1, int(cx+outer)+2, int(cy+outer)+2).Intersect(img.Rect)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			if d >= inner && d <= outer {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// fillRect fills the half-open rectangle [x0,x1)×[y0,y1), clipped to img.
func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	b := image.Rect(x0, y0, x1, y1).Intersect(img.Rect)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
