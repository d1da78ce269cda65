package effects

import (
	"fmt"
	"image"
	"math"
	"math/rand"

	"clipforge/internal/config"
)

const smokeLoopSeconds = 6

type smokeGenerator struct {
	params config.Smoke
}

func newSmokeGenerator(params config.Smoke) smokeGenerator {
	if params.Density < 30 {
		params.Density = 30
	}
	return smokeGenerator{params: params}
}

func (g smokeGenerator) kind() Kind       { return KindSmoke }
func (g smokeGenerator) loopSeconds() int { return smokeLoopSeconds }

func (g smokeGenerator) signature() string {
	p := g.params
	return fmt.Sprintf("d=%d|v=%.1f|c=%s|o=%d", p.Density, p.Speed, p.Color, p.Opacity)
}

type puff struct {
	x, y   int
	radius int
	vx, vy float64
	phase  float64
}

// build scatters soft radial puffs over an extended canvas; each drifts with
// a fixed velocity and breathes with a sinusoid phased per puff.
func (g smokeGenerator) build(rnd *rand.Rand, width, height int) frameFunc {
	p := g.params
	col := parseColor(p.Color)
	opacity := math.Max(0.05, math.Min(1, float64(p.Opacity)/100))

	puffs := make([]puff, p.Density)
	for i := range puffs {
		angle := rnd.Float64() * 2 * math.Pi
		puffs[i] = puff{
			x:      rnd.Intn(width+width/2) - width/4,
			y:      rnd.Intn(height+height/2) - height/4,
			radius: 28 + rnd.Intn(83),
			vx:     math.Cos(angle) * p.Speed,
			vy:     math.Sin(angle) * p.Speed * 0.5,
			phase:  rnd.Float64() * 2 * math.Pi,
		}
	}

	spanX := width + width/2
	spanY := height + height/2
	return func(img *image.RGBA, t float64) {
		for _, pf := range puffs {
			x := mod(pf.x+int(pf.vx*t), spanX) - width/4
			y := mod(pf.y+int(pf.vy*t), spanY) - height/4
			breath := 0.55*(0.5+0.5*math.Sin(2*math.Pi*t/smokeLoopSeconds+pf.phase)) + 0.45
			alpha := clamp01(breath) * opacity * 0.35
			fillRadialGradient(img, x, y, pf.radius, col, alpha)
		}
	}
}
