package filtergraph

import (
	"fmt"
	"math"

	"clipforge/internal/config"
)

// Motion kinds supported by the background camera stage.
const (
	MotionPanLR   = "pan-lr"
	MotionPanRL   = "pan-rl"
	MotionPanUp   = "pan-up"
	MotionPanDown = "pan-down"
	MotionZoomIn  = "zoom-in"
	MotionZoomOut = "zoom-out"
	MotionRotate  = "rotate"
	MotionShake   = "shake"
)

// addMotionStage appends the camera-motion chains for the configured kind and
// returns the output pad. Every expression is a periodic function of elapsed
// time t, so the apparent speed is independent of the frame rate. The
// background is first overscanned so crop windows can travel without showing
// the frame edge.
func addMotionStage(g *Graph, mv config.Motion, in string, width, height, fps int) (string, error) {
	if !mv.Enabled {
		return in, nil
	}

	overscan := 1 + math.Min(0.50, mv.Amount/200)
	scaledW := int(math.Round(float64(width) * overscan))
	scaledH := int(math.Round(float64(height) * overscan))
	g.AddLinear(in, "bg_s",
		NewFilter("scale", Arg("w", scaledW), Arg("h", scaledH), Arg("flags", "bicubic")))

	hz := math.Max(0.02, mv.Speed/200)
	const out = "bgm"

	switch mv.Kind {
	case MotionPanLR, MotionPanRL:
		sign := ""
		if mv.Kind == MotionPanRL {
			sign = "-"
		}
		travel := int(float64(width)*0.15 + mv.Amount*1.5)
		x := fmt.Sprintf("(iw-%d)/2 + min((iw-%d)/2\\,%d)*%ssin(2*PI*%.4f*t)", width, width, travel, sign, hz)
		g.AddLinear("bg_s", out,
			NewFilter("crop", Arg("w", width), Arg("h", height), ExprArg("x", x), ExprArg("y", fmt.Sprintf("(ih-%d)/2", height))),
			NewFilter("format", "rgba"))
	case MotionPanUp, MotionPanDown:
		sign := "-"
		if mv.Kind == MotionPanDown {
			sign = ""
		}
		travel := int(float64(height)*0.15 + mv.Amount*1.5)
		y := fmt.Sprintf("(ih-%d)/2 + min((ih-%d)/2\\,%d)*%ssin(2*PI*%.4f*t)", height, height, travel, sign, hz)
		g.AddLinear("bg_s", out,
			NewFilter("crop", Arg("w", width), Arg("h", height), ExprArg("x", fmt.Sprintf("(iw-%d)/2", width)), ExprArg("y", y)),
			NewFilter("format", "rgba"))
	case MotionZoomIn, MotionZoomOut:
		amp := math.Min(0.40, mv.Amount/100)
		if mv.Kind == MotionZoomOut {
			amp = -amp
		}
		zoomHz := math.Max(0.02, mv.Speed/400)
		g.AddLinear("bg_s", out,
			NewFilter("zoompan",
				ExprArg("z", fmt.Sprintf("1+%.4f*sin(2*PI*%.4f*t)", amp, zoomHz)),
				ExprArg("x", "(iw-iw/zoom)/2"),
				ExprArg("y", "(ih-ih/zoom)/2"),
				Arg("d", 1),
				Arg("fps", fps),
				Arg("s", fmt.Sprintf("%dx%d", width, height))),
			NewFilter("format", "rgba"))
	case MotionRotate:
		rad := math.Max(0, mv.RotateDeg) * math.Pi / 180
		rotHz := math.Max(0.01, mv.RotateHz)
		g.AddLinear("bg_s", "bg_r",
			NewFilter("rotate",
				ExprArg("a", fmt.Sprintf("%.5f*sin(2*PI*%.4f*t)", rad, rotHz)),
				Arg("fillcolor", "black@1")))
		g.AddLinear("bg_r", out,
			NewFilter("crop", Arg("w", width), Arg("h", height), ExprArg("x", fmt.Sprintf("(iw-%d)/2", width)), ExprArg("y", fmt.Sprintf("(ih-%d)/2", height))),
			NewFilter("format", "rgba"))
	case MotionShake:
		px := math.Max(1, mv.ShakePx)
		shakeHz := math.Max(0.05, mv.ShakeHz)
		g.AddLinear("bg_s", out,
			NewFilter("crop",
				Arg("w", width), Arg("h", height),
				ExprArg("x", fmt.Sprintf("(iw-%d)/2 + %.1f*sin(2*PI*%.4f*t)", width, px, shakeHz)),
				ExprArg("y", fmt.Sprintf("(ih-%d)/2 + %.1f*cos(2*PI*%.4f*t)", height, px, shakeHz))),
			NewFilter("format", "rgba"))
	default:
		return "", fmt.Errorf("unknown motion kind %q", mv.Kind)
	}
	return out, nil
}
