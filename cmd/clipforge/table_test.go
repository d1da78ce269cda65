package main

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"Name", "Count"},
		[][]string{{"stars", "30"}, {"rain"}},
		2)
	for _, want := range []string{"NAME", "COUNT", "stars", "30", "rain"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected table to contain %q, got:\n%s", want, out)
		}
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	width := utf8.RuneCountInString(lines[0])
	for _, line := range lines[1:] {
		if utf8.RuneCountInString(line) != width {
			t.Fatalf("ragged table row %q:\n%s", line, out)
		}
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}); out != "" {
		t.Fatalf("expected empty output without headers, got %q", out)
	}
}
