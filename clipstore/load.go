package clipstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet/anyconv"
	"github.com/unixpickle/anyvec"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// A LoadError is returned when a clip directory cannot be
// turned into a usable corpus.
type LoadError struct {
	// Path is the file or directory that failed.
	Path string
	Err  error
}

// Error returns the error message.
func (l *LoadError) Error() string {
	return fmt.Sprintf("load clips: %s: %s", l.Path, l.Err)
}

// Unwrap returns the underlying error.
func (l *LoadError) Unwrap() error {
	return l.Err
}

// Options configures Load.
type Options struct {
	// ImageSize is the side length every frame is resized
	// to.
	ImageSize int

	// Creator stores the decoded clips.
	Creator anyvec.Creator

	// Logger receives progress messages.
	// If nil, nothing is logged.
	Logger *zap.Logger

	// MaxGos limits the number of clips decoded at once.
	// If 0, runtime.GOMAXPROCS is used.
	MaxGos int
}

// Load decodes every file in dir, in name order.
//
// Symbolic links are followed.
// Any entry which does not resolve to a regular file,
// such as a sub-directory, is a *LoadError.
//
// Files ending in .gif are decoded directly.
// Any other file is decoded with ffmpeg, which must be on
// the PATH.
func Load(ctx context.Context, dir string, opts Options) (*Corpus, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxGos := opts.MaxGos
	if maxGos <= 0 {
		maxGos = runtime.GOMAXPROCS(0)
	}

	paths, err := clipPaths(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, &LoadError{Path: dir, Err: errors.New("no clips found")}
	}
	logger.Info("decoding clips", zap.String("dir", dir), zap.Int("files", len(paths)))

	clips := make([]*Clip, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxGos)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			clip, err := loadClip(gctx, path, &opts)
			if err != nil {
				return &LoadError{Path: path, Err: err}
			}
			logger.Debug("decoded clip", zap.String("path", path),
				zap.Int("frames", clip.Frames))
			clips[i] = clip
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	corpus := &Corpus{Clips: clips}
	logger.Info("loaded clips", zap.Int("clips", corpus.Len()),
		zap.Ints("lengths", corpus.Lengths()))
	return corpus, nil
}

// clipPaths lists every entry of dir, following symbolic
// links.
// Entries which are not regular files are rejected.
func clipPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Path: dir, Err: err}
	}
	var res []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		if !info.Mode().IsRegular() {
			return nil, &LoadError{Path: path, Err: errors.New("not a regular file")}
		}
		res = append(res, path)
	}
	sort.Strings(res)
	return res, nil
}

func loadClip(ctx context.Context, path string, opts *Options) (*Clip, error) {
	var frames *rawFrames
	var err error
	if filepath.Ext(path) == ".gif" {
		frames, err = decodeGIF(path)
	} else {
		frames, err = decodeFFmpeg(ctx, path)
	}
	if err != nil {
		return nil, err
	}
	if frames.Count() == 0 {
		return nil, errors.New("clip has no frames")
	}
	return frames.Clip(opts.Creator, opts.ImageSize), nil
}

// rawFrames stores decoded RGB bytes for a clip at its
// native resolution.
type rawFrames struct {
	Width  int
	Height int
	Pixels []byte
}

func (r *rawFrames) Count() int {
	if r.Width == 0 || r.Height == 0 {
		return 0
	}
	return len(r.Pixels) / (r.Width * r.Height * Channels)
}

// Clip normalizes the pixels and resizes every frame to
// size*size.
func (r *rawFrames) Clip(c anyvec.Creator, size int) *Clip {
	values := make([]float64, len(r.Pixels))
	for i, p := range r.Pixels {
		values[i] = float64(p) / 255
	}
	data := c.MakeVectorData(c.MakeNumericList(values))
	if r.Width != size || r.Height != size {
		layer := &anyconv.Resize{
			Depth:        Channels,
			InputWidth:   r.Width,
			InputHeight:  r.Height,
			OutputWidth:  size,
			OutputHeight: size,
		}
		data = layer.Apply(anydiff.NewConst(data), r.Count()).Output()
	}
	return &Clip{
		Frames: r.Count(),
		Width:  size,
		Height: size,
		Data:   data,
	}
}
