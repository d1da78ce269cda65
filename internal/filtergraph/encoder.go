package filtergraph

import "fmt"

const targetBitrate = 10_000_000

// Encoder holds the codec selection and its rate-control options.
type Encoder struct {
	Codec    string
	Options  []string
	Hardware bool
}

var nvencPresets = map[string]string{
	"speed":    "p3",
	"balanced": "p5",
	"quality":  "p7",
}

var x264Presets = map[string]string{
	"speed":    "fast",
	"balanced": "medium",
	"quality":  "slow",
}

// selectEncoder picks codec and rate control from the hardware preference
// and quality preset. "auto" assumes NVENC is worth trying; a missing encoder
// surfaces as a job error at invocation time, never as a silent downgrade.
func selectEncoder(hardware, quality string) Encoder {
	bitrate := fmt.Sprint(targetBitrate)
	maxrate := fmt.Sprint(targetBitrate * 13 / 10)
	bufsize := fmt.Sprint(targetBitrate * 2)

	switch hardware {
	case "nvidia", "auto":
		preset, ok := nvencPresets[quality]
		if !ok {
			preset = "p5"
		}
		return Encoder{
			Codec:    "h264_nvenc",
			Hardware: true,
			Options: []string{
				"-preset", preset,
				"-rc", "vbr_hq",
				"-b:v", bitrate,
				"-maxrate", maxrate,
				"-bufsize", bufsize,
			},
		}
	case "amd":
		return Encoder{
			Codec:    "h264_amf",
			Hardware: true,
			Options:  []string{"-quality", "quality", "-b:v", bitrate},
		}
	case "intel":
		return Encoder{
			Codec:    "h264_qsv",
			Hardware: true,
			Options:  []string{"-global_quality", "20", "-b:v", bitrate},
		}
	default:
		preset, ok := x264Presets[quality]
		if !ok {
			preset = "medium"
		}
		return Encoder{
			Codec:   "libx264",
			Options: []string{"-preset", preset, "-crf", "19"},
		}
	}
}
