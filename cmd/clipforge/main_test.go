package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	musicDir   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		musicDir:   filepath.Join(base, "music"),
	}
	writeTestConfig(t, env)
	if err := os.MkdirAll(env.musicDir, 0o755); err != nil {
		t.Fatalf("create music dir: %v", err)
	}
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
music_dir = %q
backgrounds_dir = %q
output_dir = %q
cache_dir = %q
log_dir = %q
state_dir = %q

[render]
width = 64
height = 36
fps = 5
hardware = "none"
`,
		env.musicDir,
		filepath.Join(env.baseDir, "backgrounds"),
		filepath.Join(env.baseDir, "output"),
		filepath.Join(env.baseDir, "cache"),
		filepath.Join(env.baseDir, "logs"),
		filepath.Join(env.baseDir, "state"),
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func seedTracks(t *testing.T, env *cliTestEnv, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(env.musicDir, name)
		if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
			t.Fatalf("write track %s: %v", name, err)
		}
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got %q", needle, haystack)
	}
}

func TestCLIPlanCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	seedTracks(t, env, "alpha.mp3", "beta.mp3", "gamma.mp3")

	out, _, err := runCLI(t, []string{"plan"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "Library: 3 tracks")
	requireContains(t, out, "Alpha")
	requireContains(t, out, "single")
	requireContains(t, out, "Resume position after this batch: 1 of 3")
}

func TestCLIPlanCommandEmptyLibrary(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"plan"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "Nothing left to render")
}

func TestCLIStateShowAndReset(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"state", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("state show: %v", err)
	}
	requireContains(t, out, "Resume position")
	requireContains(t, out, "No runs recorded")

	out, _, err = runCLI(t, []string{"state", "reset"}, env.configPath)
	if err != nil {
		t.Fatalf("state reset: %v", err)
	}
	requireContains(t, out, "Resume position reset")
}

func TestCLIEffectsBuildWithoutEnabledEffects(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"effects", "build"}, env.configPath)
	if err != nil {
		t.Fatalf("effects build: %v", err)
	}
	requireContains(t, out, "No effects enabled")
}

func TestCLIEffectsBuildAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	appendConfig(t, env, "\n[effects.stars]\nenabled = true\ncount = 40\n")

	out, _, err := runCLI(t, []string{"effects", "build"}, env.configPath)
	if err != nil {
		t.Fatalf("effects build: %v", err)
	}
	requireContains(t, out, "stars")

	out, _, err = runCLI(t, []string{"effects", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("effects clear: %v", err)
	}
	requireContains(t, out, "Cleared effect sequences")
}

func TestCLIConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, env.configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --overwrite must refuse.
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, env.configPath); err == nil {
		t.Fatal("expected init to refuse overwriting an existing file")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, env.configPath); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestCLIConfigShowAndPath(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "music_dir")
	requireContains(t, out, env.musicDir)

	out, _, err = runCLI(t, []string{"config", "path"}, env.configPath)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, out, env.configPath)
}

func TestCLIProbeCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"probe"}, env.configPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	requireContains(t, out, "Engine binary")
	requireContains(t, out, "Hardware overlay")
}

func TestCLIRejectsInvalidConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	appendConfig(t, env, "\n[batch]\npolicy = \"shuffle\"\n")

	if _, _, err := runCLI(t, []string{"plan"}, env.configPath); err == nil {
		t.Fatal("expected invalid batch policy to be rejected")
	}
}

func appendConfig(t *testing.T, env *cliTestEnv, extra string) {
	t.Helper()
	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(extra); err != nil {
		t.Fatalf("append config: %v", err)
	}
}
