package filtergraph

import (
	"fmt"
	"log/slog"
	"strconv"

	"clipforge/internal/capability"
	"clipforge/internal/config"
	"clipforge/internal/effects"
	"clipforge/internal/logging"
	"clipforge/internal/services"
)

// Request describes one render job's inputs.
type Request struct {
	AudioPath      string
	BackgroundPath string // "" renders over a solid color
	Effects        []effects.Sequence
	OutputPath     string

	// DurationSec caps the output length when positive.
	DurationSec int

	// LoopAudio loops the audio input to fill DurationSec. Used when a
	// single track backs a longer render instead of a prebuilt album mix.
	LoopAudio bool
}

// Invocation is a fully compiled engine command line.
type Invocation struct {
	Args        []string // arguments for the engine binary, output path last
	FilterGraph string
	Encoder     Encoder

	// HardwarePath is true when frames stay resident on the accelerator.
	HardwarePath bool
	ScaleFilter  string // hardware scaler in use, "" on the software path
}

// Compile assembles the filter graph and engine arguments for one job.
//
// Path selection: the visualizer and every cached effect require alpha
// blending, which the hardware overlay primitive does not reliably support.
// The software path is therefore chosen whenever any alpha stage is active,
// regardless of probed capability; the hardware path serves alpha-free
// configurations only. A primitive rejected by the engine at run time is a
// job error, never a downgrade-and-retry.
func Compile(cfg *config.Config, req Request, snap capability.Snapshot, logger *slog.Logger) (Invocation, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "filtergraph")

	width, height, fps := cfg.Render.Width, cfg.Render.Height, cfg.Render.FPS
	hasBackground := req.BackgroundPath != ""
	alphaActive := cfg.Visualizer.Enabled || len(req.Effects) > 0

	wantHardware := cfg.Render.Hardware == "nvidia" || cfg.Render.Hardware == "auto"
	useHardware := wantHardware && snap.HWOverlay && !alphaActive
	if wantHardware && snap.HWOverlay && alphaActive {
		logger.Info("hardware overlay available but alpha blending active, using software path")
	}

	var g Graph

	bgPad := addBackgroundStage(&g, width, height, fps, hasBackground)
	bgPad, err := addMotionStage(&g, cfg.Motion, bgPad, width, height, fps)
	if err != nil {
		return Invocation{}, services.Wrap(services.ErrValidation, "filtergraph", "compile", "motion stage", err)
	}

	last := bgPad
	if useHardware {
		last = addHardwareFinal(&g, snap, bgPad, width, height)
	} else {
		if cfg.Visualizer.Enabled {
			stage := addVisualizerStage(&g, cfg.Visualizer, width, height)
			g.Add(Chain{
				Inputs:  []string{last, stage.upper},
				Filters: []Filter{NewFilter("overlay", Arg("x", 0), Arg("y", stage.yTop), Arg("shortest", 1)), NewFilter("format", "rgba")},
				Outputs: []string{"v_up"},
			})
			last = "v_up"
			if stage.lower != "" {
				g.Add(Chain{
					Inputs:  []string{last, stage.lower},
					Filters: []Filter{NewFilter("overlay", Arg("x", 0), Arg("y", stage.yTop+stage.height), Arg("shortest", 1)), NewFilter("format", "rgba")},
					Outputs: []string{"v_dn"},
				})
				last = "v_dn"
			}
		}

		inputBase := 1
		if hasBackground {
			inputBase = 2
		}
		for i, seq := range req.Effects {
			out := fmt.Sprintf("v_%s", seq.Kind)
			g.Add(Chain{
				Inputs:  []string{last, fmt.Sprintf("%d:v", inputBase+i)},
				Filters: []Filter{NewFilter("overlay", Arg("x", 0), Arg("y", 0), Arg("shortest", 1)), NewFilter("format", "rgba")},
				Outputs: []string{out},
			})
			last = out
		}

		g.AddLinear(last, "vout",
			NewFilter("scale", Arg("w", width), Arg("h", height)),
			NewFilter("fps", strconv.Itoa(fps)),
			NewFilter("format", "yuv420p"))
		last = "vout"
	}

	encoder := selectEncoder(cfg.Render.Hardware, cfg.Render.Quality)

	inv := Invocation{
		FilterGraph:  g.String(),
		Encoder:      encoder,
		HardwarePath: useHardware,
	}
	if useHardware {
		inv.ScaleFilter = snap.HWScaleFilter
	}
	inv.Args = buildArgs(cfg, req, inv, fps)

	pathName := "software"
	if useHardware {
		pathName = "hardware"
	}
	scaleName := inv.ScaleFilter
	if scaleName == "" {
		scaleName = "host"
	}
	logger.Info("render path selected",
		logging.String("path", pathName),
		logging.String("scale", scaleName),
		logging.String("encoder", encoder.Codec))
	return inv, nil
}

// addBackgroundStage appends the looped/scaled/cropped background source, or
// a solid color generator when no image is supplied, returning its pad.
func addBackgroundStage(g *Graph, width, height, fps int, hasBackground bool) string {
	if !hasBackground {
		g.Add(Chain{
			Filters: []Filter{
				NewFilter("color", Arg("color", "black"), Arg("size", fmt.Sprintf("%dx%d", width, height)), Arg("rate", fps)),
				NewFilter("format", "rgba"),
			},
			Outputs: []string{"bg"},
		})
		return "bg"
	}
	g.AddLinear("1:v", "bg_raw",
		NewFilter("scale", Arg("w", width), Arg("h", height), Arg("force_original_aspect_ratio", "increase")),
		NewFilter("crop", Arg("w", width), Arg("h", height)),
		NewFilter("fps", strconv.Itoa(fps)),
		NewFilter("format", "rgba"))
	g.AddLinear("bg_raw", "bg", NewFilter("setpts", "PTS-STARTPTS"))
	return "bg"
}

// addHardwareFinal uploads the composed background to the accelerator and
// scales there when a hardware scaler exists, else downloads for host-side
// format normalization.
func addHardwareFinal(g *Graph, snap capability.Snapshot, in string, width, height int) string {
	g.AddLinear(in, "bg_gpu", NewFilter("format", "rgba"), NewFilter("hwupload_cuda"))
	if snap.HWScaleFilter != "" {
		g.AddLinear("bg_gpu", "vout",
			NewFilter(snap.HWScaleFilter, Arg("w", width), Arg("h", height), Arg("format", "nv12")))
	} else {
		g.AddLinear("bg_gpu", "vout", NewFilter("hwdownload"), NewFilter("format", "yuv420p"))
	}
	return "vout"
}

func buildArgs(cfg *config.Config, req Request, inv Invocation, fps int) []string {
	logLevel := "error"
	if cfg.Render.Verbose {
		logLevel = "info"
	}
	args := []string{"-y", "-hide_banner", "-nostats", "-loglevel", logLevel, "-progress", "pipe:1"}

	// Device init is a global option and must precede the inputs. No -hwaccel
	// decode flags: every input decodes on the host and the graph uploads
	// frames itself via hwupload_cuda.
	if inv.HardwarePath {
		args = append(args, "-init_hw_device", "cuda=cuda:0", "-filter_hw_device", "cuda")
	}

	if req.LoopAudio && req.DurationSec > 0 {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args, "-i", req.AudioPath)

	if req.BackgroundPath != "" {
		args = append(args, "-loop", "1", "-framerate", strconv.Itoa(fps), "-i", req.BackgroundPath)
	}

	for _, seq := range req.Effects {
		args = append(args,
			"-stream_loop", "-1",
			"-framerate", strconv.Itoa(seq.FrameRate),
			"-f", "image2",
			"-i", seq.Pattern())
	}

	args = append(args, "-filter_complex", inv.FilterGraph)
	args = append(args, "-map", "[vout]", "-map", "0:a", "-shortest")
	args = append(args, "-c:v", inv.Encoder.Codec)
	args = append(args, inv.Encoder.Options...)
	args = append(args, "-c:a", "aac", "-b:a", "192k", "-movflags", "+faststart")

	if !inv.HardwarePath || inv.ScaleFilter == "" {
		args = append(args, "-pix_fmt", "yuv420p")
	}
	if req.DurationSec > 0 {
		args = append(args, "-t", strconv.Itoa(req.DurationSec))
	}
	if cfg.Render.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(cfg.Render.Threads))
	}
	return append(args, req.OutputPath)
}
