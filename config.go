// Package vidgan trains generative adversarial networks
// on short video clips.
//
// A generated video is driven by a latent code with two
// parts: a content vector which is constant for the whole
// clip, and a motion vector which a recurrent network
// produces for every frame.
// Frames are decoded one at a time by a convolutional
// generator and judged by an image discriminator and a
// video discriminator.
//
// The sub-packages implement the pieces: clipstore loads
// training clips, window crops temporal windows, vidnet
// provides the networks, latent composes latent codes,
// and gan runs the adversarial updates.
package vidgan

import (
	"fmt"
	"os"
	"strconv"
)

// CPUProfileEnv is the environment variable which turns on
// CPU profiling, e.g. VIDGAN_CPU_PROFILE=1.
const CPUProfileEnv = "VIDGAN_CPU_PROFILE"

// These are the default hyperparameters.
const (
	DefaultBatchSize   = 16
	DefaultWindowSize  = 16
	DefaultImageSize   = 96
	DefaultChannels    = 3
	DefaultContentDim  = 50
	DefaultMotionDim   = 10
	DefaultNoiseDim    = 100
	DefaultHiddenSize  = 100
	DefaultGenFilters  = 64
	DefaultDiscFilters = 64
	DefaultIterations  = 100
	DefaultLogInterval = 10

	DefaultLearningRate = 0.0002
	DefaultBeta1        = 0.5
	DefaultBeta2        = 0.999

	DefaultDataDir = "resized_data"
)

// Config stores every hyperparameter of a training run.
//
// There are no command-line flags or configuration files;
// programs start from DefaultConfig and tests shrink the
// result as needed.
type Config struct {
	// DataDir is the directory of training clips.
	DataDir string

	// BatchSize is the number of videos per batch.
	BatchSize int

	// WindowSize is the number of frames (T) in every
	// real or generated training window.
	WindowSize int

	// ImageSize is the width and height of every frame.
	ImageSize int

	// Channels is the number of color channels per pixel.
	Channels int

	// ContentDim and MotionDim are the sizes of the two
	// halves of the per-frame latent code.
	ContentDim int
	MotionDim  int

	// NoiseDim is the size of the per-frame Gaussian noise
	// fed to the motion encoder.
	NoiseDim int

	// HiddenSize is the state size of the motion encoder.
	HiddenSize int

	// GenFilters and DiscFilters are the base filter
	// counts for the generator and the discriminators.
	GenFilters  int
	DiscFilters int

	LearningRate float64
	Beta1        float64
	Beta2        float64

	// Iterations is the fixed number of training steps.
	Iterations int

	// LogInterval is the number of iterations between
	// status reports.
	LogInterval int

	// UseGPU requests GPU execution.
	UseGPU bool

	// CPUProfile enables CPU profiling for the whole run.
	// The profile is written to the working directory.
	// It is set from CPUProfileEnv by LoadEnv.
	CPUProfile bool

	// Seed seeds the single random generator shared by
	// every component.
	Seed int64
}

// DefaultConfig creates a Config with the default
// hyperparameters.
func DefaultConfig() *Config {
	return &Config{
		DataDir:      DefaultDataDir,
		BatchSize:    DefaultBatchSize,
		WindowSize:   DefaultWindowSize,
		ImageSize:    DefaultImageSize,
		Channels:     DefaultChannels,
		ContentDim:   DefaultContentDim,
		MotionDim:    DefaultMotionDim,
		NoiseDim:     DefaultNoiseDim,
		HiddenSize:   DefaultHiddenSize,
		GenFilters:   DefaultGenFilters,
		DiscFilters:  DefaultDiscFilters,
		LearningRate: DefaultLearningRate,
		Beta1:        DefaultBeta1,
		Beta2:        DefaultBeta2,
		Iterations:   DefaultIterations,
		LogInterval:  DefaultLogInterval,
	}
}

// LatentDim returns the size of a per-frame latent code.
func (c *Config) LatentDim() int {
	return c.ContentDim + c.MotionDim
}

// FrameSize returns the number of components in a single
// frame tensor.
func (c *Config) FrameSize() int {
	return c.ImageSize * c.ImageSize * c.Channels
}

// LoadEnv applies overrides from the environment.
//
// An empty or unset variable keeps the current value.
func (c *Config) LoadEnv() error {
	if v := os.Getenv(CPUProfileEnv); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", CPUProfileEnv, err)
		}
		c.CPUProfile = enabled
	}
	return nil
}
