package effects

import (
	"fmt"
	"image"
	"math"
	"math/rand"

	"clipforge/internal/config"
)

const rainLoopSeconds = 4

type rainGenerator struct {
	params config.Rain
}

func newRainGenerator(params config.Rain) rainGenerator {
	if params.Count < 200 {
		params.Count = 200
	}
	if params.Length < 5 {
		params.Length = 5
	}
	if params.Thickness < 1 {
		params.Thickness = 1
	}
	return rainGenerator{params: params}
}

func (g rainGenerator) kind() Kind       { return KindRain }
func (g rainGenerator) loopSeconds() int { return rainLoopSeconds }

func (g rainGenerator) signature() string {
	p := g.params
	return fmt.Sprintf("n=%d|L=%d|th=%d|a=%.1f|v=%.1f|c=%s|o=%d",
		p.Count, p.Length, p.Thickness, p.AngleDeg, p.Speed, p.Color, p.Opacity)
}

type drop struct {
	x, y     int
	velocity float64
}

// build seeds every drop over an extended canvas; positions advance linearly
// with time and wrap modulo the extended width/height so the loop tiles.
func (g rainGenerator) build(rnd *rand.Rand, width, height int) frameFunc {
	p := g.params
	col := parseColor(p.Color)
	opacity := math.Max(0.05, math.Min(1, float64(p.Opacity)/100))
	angle := p.AngleDeg * math.Pi / 180
	dx := int(float64(p.Length) * math.Cos(angle))
	dy := int(float64(p.Length)*math.Sin(angle)) + 1

	drops := make([]drop, p.Count)
	for i := range drops {
		drops[i] = drop{
			x:        rnd.Intn(2*width) - width/2,
			y:        rnd.Intn(2*height) - height/2,
			velocity: p.Speed * (0.7 + 0.6*rnd.Float64()),
		}
	}

	spanX := width + width/2
	spanY := height + height/2
	return func(img *image.RGBA, t float64) {
		for _, d := range drops {
			x := mod(d.x+int(d.velocity*math.Cos(angle)*t), spanX) - width/4
			y := mod(d.y+int(d.velocity*math.Sin(angle)*t), spanY) - height/4
			strokeLine(img, x, y, x+dx, y+dy, p.Thickness, col, opacity)
		}
	}
}

// mod is a floored modulo, keeping wrapped positions non-negative.
func mod(v, span int) int {
	v %= span
	if v < 0 {
		v += span
	}
	return v
}
