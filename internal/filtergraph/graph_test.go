package filtergraph

import "testing"

func TestChainSerialization(t *testing.T) {
	chain := Chain{
		Inputs: []string{"0:a"},
		Filters: []Filter{
			NewFilter("aresample", Arg("async", 1), Arg("first_pts", 0)),
			NewFilter("asetpts", "PTS-STARTPTS"),
		},
		Outputs: []string{"audsrc"},
	}
	want := "[0:a]aresample=async=1:first_pts=0,asetpts=PTS-STARTPTS[audsrc]"
	if got := chain.String(); got != want {
		t.Fatalf("unexpected chain: got %q want %q", got, want)
	}
}

func TestGraphJoinsChainsWithSemicolons(t *testing.T) {
	var g Graph
	g.AddLinear("", "bg", NewFilter("color", Arg("color", "black"), Arg("size", "64x36"), Arg("rate", 30)))
	g.AddLinear("bg", "vout", NewFilter("format", "yuv420p"))

	want := "color=color=black:size=64x36:rate=30[bg];[bg]format=yuv420p[vout]"
	if got := g.String(); got != want {
		t.Fatalf("unexpected graph: got %q want %q", got, want)
	}
	if !g.Contains("color") || g.Contains("overlay") {
		t.Fatal("Contains lookup mismatch")
	}
}

func TestFilterWithoutArgs(t *testing.T) {
	if got := NewFilter("vflip").String(); got != "vflip" {
		t.Fatalf("unexpected serialization: %q", got)
	}
}

func TestAnalysisWindowClamped(t *testing.T) {
	cases := map[int]int{
		8:   256,
		96:  4096,
		256: 8192,
	}
	for bars, want := range cases {
		if got := analysisWindow(bars); got != want {
			t.Fatalf("analysisWindow(%d) = %d, want %d", bars, got, want)
		}
	}
}
