package config

const (
	defaultMusicDir       = "~/music"
	defaultBackgroundsDir = "~/backgrounds"
	defaultOutputDir      = "~/renders"
	defaultCacheDir       = "~/.cache/clipforge"
	defaultLogDir         = "~/.local/share/clipforge/logs"
	defaultStateDir       = "~/.local/share/clipforge/state"

	defaultWidth    = 1920
	defaultHeight   = 1080
	defaultFPS      = 30
	defaultHardware = "auto"
	defaultQuality  = "balanced"
	defaultWorkers  = 1
	defaultThreads  = 0

	defaultVisualizerMode    = "bar"
	defaultVisualizerScale   = "log"
	defaultVisualizerBars    = 96
	defaultVisualizerColor   = "#FFFFFF"
	defaultVisualizerOpacity = 90

	defaultMotionKind = "pan-lr"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MusicDir:       defaultMusicDir,
			BackgroundsDir: defaultBackgroundsDir,
			OutputDir:      defaultOutputDir,
			CacheDir:       defaultCacheDir,
			LogDir:         defaultLogDir,
			StateDir:       defaultStateDir,
		},
		Render: Render{
			Width:    defaultWidth,
			Height:   defaultHeight,
			FPS:      defaultFPS,
			Hardware: defaultHardware,
			Quality:  defaultQuality,
			Workers:  defaultWorkers,
			Threads:  defaultThreads,
		},
		Visualizer: Visualizer{
			Enabled: true,
			Mode:    defaultVisualizerMode,
			Scale:   defaultVisualizerScale,
			Bars:    defaultVisualizerBars,
			Height:  defaultHeight / 2,
			Mirror:  true,
			Color:   defaultVisualizerColor,
			Opacity: defaultVisualizerOpacity,
		},
		Motion: Motion{
			Kind:      defaultMotionKind,
			Amount:    20,
			Speed:     40,
			RotateDeg: 8,
			RotateHz:  0.1,
			ShakePx:   6,
			ShakeHz:   1.2,
		},
		Effects: Effects{
			Stars: Stars{Count: 700, Size: 2, Pulse: 40, Color: "#FFFFFF", Opacity: 85, IntroSec: 0.7},
			Rain:  Rain{Count: 1200, Length: 40, Thickness: 2, AngleDeg: 15, Speed: 160, Color: "#9BE2FF", Opacity: 55},
			Smoke: Smoke{Density: 90, Speed: 18, Color: "#A0A0A0", Opacity: 40},
		},
		Batch: Batch{
			Policy:    "single",
			GroupSize: 1,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
