package filtergraph

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"clipforge/internal/config"
)

// visualizerStage captures the pads and geometry produced by the spectrum
// analysis chain.
type visualizerStage struct {
	upper  string // pad of the upright rendering
	lower  string // pad of the flipped mirror copy, "" when not mirrored
	height int    // height of one rendering
	yTop   int    // y position of the upper rendering
}

// addVisualizerStage appends the audio spectrum chains. The audio stream is
// resampled to a clean timeline, analyzed into an alpha-carrying image
// stream, and tinted via a channel mixer. Mirrored configurations split the
// stream and flip the second copy.
func addVisualizerStage(g *Graph, vz config.Visualizer, width, height int) visualizerStage {
	bars := vz.Bars
	if bars < 8 {
		bars = 8
	}
	if bars > 256 {
		bars = 256
	}
	winSize := analysisWindow(bars)

	var vizHeight, yTop int
	if vz.Mirror {
		vizHeight = height / 2
		if !vz.Fullscreen {
			vizHeight = clampInt(vz.Height, 40, height/2)
		}
		baseline := int(float64(height) * (0.5 + float64(vz.YOffset)/200))
		baseline = clampInt(baseline, vizHeight, height-vizHeight)
		yTop = baseline - vizHeight
	} else {
		vizHeight = height
		if !vz.Fullscreen {
			vizHeight = clampInt(vz.Height, 40, height)
		}
		yTop = (height - vizHeight) * (vz.YOffset + 100) / 200
		yTop = clampInt(yTop, 0, height-vizHeight)
	}

	mode := "bar"
	if vz.Mode == "line" {
		mode = "line"
	}
	r, gch, b := colorComponents(vz.Color)
	opacity := float64(clampInt(vz.Opacity, 0, 100)) / 100

	g.AddLinear("0:a", "audsrc",
		NewFilter("aresample", Arg("async", 1), Arg("first_pts", 0)),
		NewFilter("asetpts", "PTS-STARTPTS"))
	g.AddLinear("audsrc", "viz_wave",
		NewFilter("showfreqs",
			Arg("size", fmt.Sprintf("%dx%d", width, vizHeight)),
			Arg("mode", mode),
			Arg("fscale", fscale(vz.Scale)),
			Arg("win_size", winSize),
			Arg("colors", "white")),
		NewFilter("format", "rgba"),
		NewFilter("colorchannelmixer",
			Arg("rr", fmt.Sprintf("%.3f", r)),
			Arg("gg", fmt.Sprintf("%.3f", gch)),
			Arg("bb", fmt.Sprintf("%.3f", b)),
			Arg("aa", fmt.Sprintf("%.3f", opacity))))

	stage := visualizerStage{upper: "viz_up", height: vizHeight, yTop: yTop}
	if vz.Mirror {
		g.Add(Chain{
			Inputs:  []string{"viz_wave"},
			Filters: []Filter{NewFilter("split", "2")},
			Outputs: []string{"viz_up", "viz_m"},
		})
		g.AddLinear("viz_m", "viz_dn", NewFilter("vflip"), NewFilter("format", "rgba"))
		stage.lower = "viz_dn"
	} else {
		g.AddLinear("viz_wave", "viz_up", NewFilter("format", "rgba"))
	}
	return stage
}

// analysisWindow picks a power-of-two FFT window sized to resolve the
// requested bar count, clamped to the engine's supported range.
func analysisWindow(bars int) int {
	window := 1 << int(math.Round(math.Log2(float64(bars*32))))
	return clampInt(window, 256, 16384)
}

func fscale(scale string) string {
	switch scale {
	case "lin":
		return "lin"
	case "sqrt":
		return "sqrt"
	default:
		return "log"
	}
}

// colorComponents splits a "#RRGGBB" string into 0..1 channel weights,
// defaulting to white.
func colorComponents(value string) (float64, float64, float64) {
	hexPart := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hexPart) == 3 {
		var expanded strings.Builder
		for _, c := range hexPart {
			expanded.WriteRune(c)
			expanded.WriteRune(c)
		}
		hexPart = expanded.String()
	}
	if len(hexPart) != 6 {
		return 1, 1, 1
	}
	parsed, err := strconv.ParseUint(hexPart, 16, 32)
	if err != nil {
		return 1, 1, 1
	}
	return float64(parsed>>16) / 255, float64(parsed>>8&0xFF) / 255, float64(parsed&0xFF) / 255
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
