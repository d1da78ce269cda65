// Package effects generates and caches the procedural overlay frame
// sequences (stars, rain, smoke). Sequences are deterministic: the cache key
// is a hash of the generator parameters plus output geometry, and the
// particle generator is seeded from that hash, never from the clock. Two
// machines with the same configuration produce byte-identical frames.
package effects

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"clipforge/internal/config"
	"clipforge/internal/fileutil"
	"clipforge/internal/logging"
	"clipforge/internal/services"
)

// Kind identifies one procedural overlay generator.
type Kind string

const (
	KindStars Kind = "stars"
	KindRain  Kind = "rain"
	KindSmoke Kind = "smoke"
)

// completeMarker is written as the last file of a sequence. Its absence means
// the directory is a partial build and must be regenerated.
const completeMarker = "complete"

// Sequence is a handle to a generated frame sequence on disk.
type Sequence struct {
	Kind       Kind
	Dir        string // contains f_0000.png .. f_NNNN.png
	FrameRate  int
	FrameCount int
	LoopSec    int
}

// Pattern returns the engine input pattern for the sequence.
func (s Sequence) Pattern() string {
	return filepath.Join(s.Dir, "f_%04d.png")
}

// generator renders one overlay kind. signature returns the canonical
// parameter string fed into the cache key; build samples every particle from
// the seeded source once and returns a per-frame draw function.
type generator interface {
	kind() Kind
	loopSeconds() int
	signature() string
	build(rnd *rand.Rand, width, height int) frameFunc
}

// frameFunc draws the overlay state at elapsed time t onto a transparent
// frame.
type frameFunc func(img *image.RGBA, t float64)

// Cache generates frame sequences under a root directory, reusing completed
// sequences across runs and processes.
type Cache struct {
	root   string
	logger *slog.Logger
}

// NewCache returns a cache rooted at dir.
func NewCache(dir string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{root: dir, logger: logging.NewComponentLogger(logger, "effects")}
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// EnsureAll generates every enabled effect for the given configuration and
// returns the sequences in overlay order (stars, rain, smoke).
func (c *Cache) EnsureAll(ctx context.Context, cfg *config.Config) ([]Sequence, error) {
	width, height, fps := cfg.Render.Width, cfg.Render.Height, cfg.Render.FPS
	var sequences []Sequence
	if cfg.Effects.Stars.Enabled {
		seq, err := c.ensure(ctx, newStarsGenerator(cfg.Effects.Stars), width, height, fps)
		if err != nil {
			return nil, err
		}
		sequences = append(sequences, seq)
	}
	if cfg.Effects.Rain.Enabled {
		seq, err := c.ensure(ctx, newRainGenerator(cfg.Effects.Rain), width, height, fps)
		if err != nil {
			return nil, err
		}
		sequences = append(sequences, seq)
	}
	if cfg.Effects.Smoke.Enabled {
		seq, err := c.ensure(ctx, newSmokeGenerator(cfg.Effects.Smoke), width, height, fps)
		if err != nil {
			return nil, err
		}
		sequences = append(sequences, seq)
	}
	return sequences, nil
}

// EnsureStars generates (or reuses) the star-field sequence.
func (c *Cache) EnsureStars(ctx context.Context, params config.Stars, width, height, fps int) (Sequence, error) {
	return c.ensure(ctx, newStarsGenerator(params), width, height, fps)
}

// EnsureRain generates (or reuses) the rain sequence.
func (c *Cache) EnsureRain(ctx context.Context, params config.Rain, width, height, fps int) (Sequence, error) {
	return c.ensure(ctx, newRainGenerator(params), width, height, fps)
}

// EnsureSmoke generates (or reuses) the smoke sequence.
func (c *Cache) EnsureSmoke(ctx context.Context, params config.Smoke, width, height, fps int) (Sequence, error) {
	return c.ensure(ctx, newSmokeGenerator(params), width, height, fps)
}

func (c *Cache) ensure(ctx context.Context, gen generator, width, height, fps int) (Sequence, error) {
	key := sequenceKey(gen, width, height, fps)
	dir := filepath.Join(c.root, fmt.Sprintf("seq_%s_%s", gen.kind(), key))
	seq := Sequence{
		Kind:       gen.kind(),
		Dir:        filepath.Join(dir, "frames"),
		FrameRate:  fps,
		FrameCount: fps * gen.loopSeconds(),
		LoopSec:    gen.loopSeconds(),
	}

	if _, err := os.Stat(filepath.Join(dir, completeMarker)); err == nil {
		c.logger.Debug("effect sequence cached", logging.String("kind", string(gen.kind())), logging.String("dir", dir))
		return seq, nil
	}

	// A directory without the marker is a leftover from a crashed build.
	// Remove it now so the rename below cannot settle on partial output.
	if _, err := os.Stat(dir); err == nil {
		if err := os.RemoveAll(dir); err != nil {
			return Sequence{}, services.Wrap(services.ErrTransient, "effects", "ensure", "remove partial sequence", err)
		}
	}

	tmp := dir + ".tmp-" + uuid.NewString()
	if err := c.generate(ctx, gen, tmp, width, height, fps, seq.FrameCount); err != nil {
		_ = os.RemoveAll(tmp)
		return Sequence{}, err
	}
	if err := fileutil.RenameOrReuse(tmp, dir); err != nil {
		return Sequence{}, services.Wrap(services.ErrTransient, "effects", "ensure", "install frame sequence", err)
	}
	c.logger.Info("effect sequence built",
		logging.String("kind", string(gen.kind())),
		logging.Int("frames", seq.FrameCount),
		logging.String("dir", dir))
	return seq, nil
}

func (c *Cache) generate(ctx context.Context, gen generator, dir string, width, height, fps, frameCount int) error {
	framesDir := filepath.Join(dir, "frames")
	if err := fileutil.EnsureDir(framesDir); err != nil {
		return services.Wrap(services.ErrTransient, "effects", "generate", "create sequence directory", err)
	}

	seed := sequenceSeed(gen, width, height, fps)
	draw := gen.build(rand.New(rand.NewSource(seed)), width, height)

	bounds := image.Rect(0, 0, width, height)
	for f := 0; f < frameCount; f++ {
		if err := ctx.Err(); err != nil {
			return services.Wrap(services.ErrCancelled, "effects", "generate", "sequence build interrupted", err)
		}
		img := image.NewRGBA(bounds)
		draw(img, float64(f)/float64(fps))
		if err := writePNG(filepath.Join(framesDir, fmt.Sprintf("f_%04d.png", f)), img); err != nil {
			return services.Wrap(services.ErrTransient, "effects", "generate", "write frame", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, completeMarker), nil, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "effects", "generate", "write completion marker", err)
	}
	return nil
}

// Clear removes every cached sequence.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache root: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if len(name) < 4 || name[:4] != "seq_" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(c.root, name)); err != nil {
			return fmt.Errorf("remove %q: %w", name, err)
		}
	}
	return nil
}

func sequenceKey(gen generator, width, height, fps int) string {
	sum := sequenceHash(gen, width, height, fps)
	return hex.EncodeToString(sum[:8])
}

func sequenceSeed(gen generator, width, height, fps int) int64 {
	sum := sequenceHash(gen, width, height, fps)
	return int64(binary.BigEndian.Uint64(sum[8:16]))
}

func sequenceHash(gen generator, width, height, fps int) [sha256.Size]byte {
	canonical := fmt.Sprintf("%s|%dx%d|fps=%d|loop=%d|%s",
		gen.kind(), width, height, fps, gen.loopSeconds(), gen.signature())
	return sha256.Sum256([]byte(canonical))
}

func writePNG(path string, img *image.RGBA) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(file, img); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
