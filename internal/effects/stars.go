package effects

import (
	"fmt"
	"image"
	"math"
	"math/rand"

	"clipforge/internal/config"
)

const starsLoopSeconds = 6

type starsGenerator struct {
	params config.Stars
}

func newStarsGenerator(params config.Stars) starsGenerator {
	if params.Count < 30 {
		params.Count = 30
	}
	if params.Size < 1 {
		params.Size = 1
	}
	if params.Pulse < 0 {
		params.Pulse = 0
	}
	return starsGenerator{params: params}
}

func (g starsGenerator) kind() Kind       { return KindStars }
func (g starsGenerator) loopSeconds() int { return starsLoopSeconds }

func (g starsGenerator) signature() string {
	p := g.params
	return fmt.Sprintf("n=%d|s=%d|p=%d|c=%s|o=%d|ramp=%.2f",
		p.Count, p.Size, p.Pulse, p.Color, p.Opacity, p.IntroSec)
}

type star struct {
	x, y  int
	size  int
	born  float64
	life  float64
	phase float64
}

// build samples every star's position and lifecycle once so the 6 second
// sequence tiles seamlessly: each star fades in and out entirely within the
// loop window.
func (g starsGenerator) build(rnd *rand.Rand, width, height int) frameFunc {
	p := g.params
	col := parseColor(p.Color)
	opacity := math.Max(0.05, math.Min(1, float64(p.Opacity)/100))
	pulse := float64(p.Pulse) / 100

	stars := make([]star, p.Count)
	for i := range stars {
		life := 0.8 + rnd.Float64()*1.2
		stars[i] = star{
			x:     rnd.Intn(width),
			y:     rnd.Intn(height),
			size:  p.Size + rnd.Intn(p.Size+1),
			life:  life,
			born:  0.2 + rnd.Float64()*math.Max(0, starsLoopSeconds-life-0.2),
			phase: rnd.Float64() * 2 * math.Pi,
		}
	}

	return func(img *image.RGBA, t float64) {
		ramp := 1.0
		if p.IntroSec > 0 {
			ramp = clamp01(t / p.IntroSec)
		}
		for _, s := range stars {
			if t < s.born || t > s.born+s.life {
				continue
			}
			lt := (t - s.born) / s.life
			fade := math.Sin(math.Pi * lt)
			twinkle := 0.5 + 0.5*math.Sin(2*math.Pi*t/starsLoopSeconds+s.phase)
			twinkle = (1 - pulse) + pulse*twinkle
			alpha := clamp01(fade*twinkle) * opacity * ramp
			if alpha <= 0.001 {
				continue
			}
			side := int(math.Round(float64(s.size) * (0.6 + 0.4*ramp)))
			if side < 1 {
				side = 1
			}
			fillRect(img, s.x-side/2, s.y-side/2, side, col, alpha)
		}
	}
}
