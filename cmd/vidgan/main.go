// Command vidgan trains a video GAN on the clips in
// resized_data.
package main

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/pkg/profile"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/vidgan"
	"github.com/unixpickle/vidgan/clipstore"
	"github.com/unixpickle/vidgan/gan"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		essentials.Die(err)
	}
	defer logger.Sync()

	cfg := vidgan.DefaultConfig()
	if err := cfg.LoadEnv(); err != nil {
		essentials.Die(err)
	}
	if cfg.Channels != clipstore.Channels {
		essentials.Die(fmt.Sprintf("unsupported channel count: %d", cfg.Channels))
	}

	defer startProfiler(cfg, ".").Stop()

	creator, err := vidgan.NewCreator(cfg.UseGPU)
	if err != nil {
		essentials.Die(err)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	logger.Info("loading clips", zap.String("dir", cfg.DataDir))
	corpus, err := clipstore.Load(context.Background(), cfg.DataDir, clipstore.Options{
		ImageSize: cfg.ImageSize,
		Creator:   creator,
		Logger:    logger,
	})
	if err != nil {
		essentials.Die(err)
	}

	logger.Info("creating networks", zap.Int64("seed", cfg.Seed))
	trainer := &gan.Trainer{
		Engine:      gan.NewEngine(cfg, creator, rng, corpus, logger),
		Iterations:  cfg.Iterations,
		LogInterval: cfg.LogInterval,
		StatusFunc: func(s gan.Status) {
			fmt.Println(s)
		},
		Logger: logger,
	}
	if _, err := trainer.Run(); err != nil {
		essentials.Die(err)
	}
}

type stopper interface {
	Stop()
}

type nopStopper struct{}

func (nopStopper) Stop() {}

// startProfiler starts a CPU profile in dir if cfg asks for
// one.
func startProfiler(cfg *vidgan.Config, dir string) stopper {
	if !cfg.CPUProfile {
		return nopStopper{}
	}
	return profile.Start(profile.CPUProfile, profile.ProfilePath(dir),
		profile.NoShutdownHook, profile.Quiet)
}
