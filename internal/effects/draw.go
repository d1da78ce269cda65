package effects

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// rgb holds an opaque color; alpha is supplied per draw call.
type rgb struct {
	r, g, b uint8
}

// parseColor reads a "#RRGGBB" string, falling back to white on malformed
// input so a bad config value degrades visibly instead of failing the build.
func parseColor(value string) rgb {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(value) != 6 {
		return rgb{255, 255, 255}
	}
	parsed, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return rgb{255, 255, 255}
	}
	return rgb{uint8(parsed >> 16), uint8(parsed >> 8), uint8(parsed)}
}

// blendPixel composites c at opacity a over the existing pixel using straight
// alpha. Out-of-bounds coordinates are ignored.
func blendPixel(img *image.RGBA, x, y int, c rgb, a float64) {
	if a <= 0 {
		return
	}
	if a > 1 {
		a = 1
	}
	if !(image.Point{X: x, Y: y}).In(img.Rect) {
		return
	}
	existing := img.RGBAAt(x, y)
	ea := float64(existing.A) / 255.0
	outA := a + ea*(1-a)
	if outA <= 0 {
		return
	}
	blendChannel := func(src uint8, dst uint8) uint8 {
		v := (float64(src)*a + float64(dst)*ea*(1-a)) / outA
		return uint8(math.Round(math.Min(255, math.Max(0, v))))
	}
	img.SetRGBA(x, y, color.RGBA{
		R: blendChannel(c.r, existing.R),
		G: blendChannel(c.g, existing.G),
		B: blendChannel(c.b, existing.B),
		A: uint8(math.Round(outA * 255)),
	})
}

// fillRect blends an axis-aligned square of the given side length centered
// loosely on (x, y).
func fillRect(img *image.RGBA, x, y, side int, c rgb, a float64) {
	for dy := 0; dy < side; dy++ {
		for dx := 0; dx < side; dx++ {
			blendPixel(img, x+dx, y+dy, c, a)
		}
	}
}

// strokeLine blends a line of the given thickness from (x0, y0) to (x1, y1)
// by stamping thickness-sized squares along it.
func strokeLine(img *image.RGBA, x0, y0, x1, y1, thickness int, c rgb, a float64) {
	dx := float64(x1 - x0)
	dy := float64(y1 - y0)
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps < 1 {
		steps = 1
	}
	half := thickness / 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		px := x0 + int(math.Round(dx*t))
		py := y0 + int(math.Round(dy*t))
		fillRect(img, px-half, py-half, thickness, c, a)
	}
}

// fillRadialGradient blends a disc whose opacity falls off linearly from
// centerAlpha at the center to zero at radius r.
func fillRadialGradient(img *image.RGBA, cx, cy, r int, c rgb, centerAlpha float64) {
	if r <= 0 || centerAlpha <= 0 {
		return
	}
	minX, maxX := cx-r, cx+r
	minY, maxY := cy-r, cy+r
	if minX < img.Rect.Min.X {
		minX = img.Rect.Min.X
	}
	if minY < img.Rect.Min.Y {
		minY = img.Rect.Min.Y
	}
	if maxX > img.Rect.Max.X-1 {
		maxX = img.Rect.Max.X - 1
	}
	if maxY > img.Rect.Max.Y-1 {
		maxY = img.Rect.Max.Y - 1
	}
	rf := float64(r)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			d := math.Hypot(float64(x-cx), float64(y-cy))
			if d >= rf {
				continue
			}
			blendPixel(img, x, y, c, centerAlpha*(1-d/rf))
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
