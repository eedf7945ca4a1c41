package gan

import (
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/vidgan"
	"github.com/unixpickle/vidgan/clipstore"
	"github.com/unixpickle/vidgan/latent"
	"github.com/unixpickle/vidgan/vidnet"
	"github.com/unixpickle/vidgan/window"
	"go.uber.org/zap"
)

const (
	realLabel = 0.9
	fakeLabel = 0
)

// Losses stores the losses from one training step.
type Losses struct {
	DiReal float64
	DiFake float64
	DvReal float64
	DvFake float64
	Gi     float64
	Gv     float64
}

// Di returns the total image discriminator loss.
func (l Losses) Di() float64 {
	return l.DiReal + l.DiFake
}

// Dv returns the total video discriminator loss.
func (l Losses) Dv() float64 {
	return l.DvReal + l.DvFake
}

// A RealBatch is a batch of training data.
type RealBatch struct {
	// Video is a batch of frame-major videos.
	Video anyvec.Vector

	// Image contains one frame from every video.
	Image anyvec.Vector

	// Frame is the index of the frame in Image.
	Frame int
}

// An Engine performs adversarial training steps.
type Engine struct {
	Corpus   *clipstore.Corpus
	Composer *latent.Composer

	Generator *Network
	Encoder   *Network
	DiscImage *Network
	DiscVideo *Network

	BatchSize  int
	WindowSize int
	ImageSize  int

	// Rand is the only source of randomness used during
	// training.
	Rand *rand.Rand

	Logger *zap.Logger

	selector *vidnet.FrameSelector
}

// NewEngine creates randomly initialized networks using
// the hyper-parameters in cfg.
//
// All initial weights are drawn from rng, which is also
// used for every subsequent training step.
func NewEngine(cfg *vidgan.Config, c anyvec.Creator, rng *rand.Rand,
	corpus *clipstore.Corpus, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gru := vidnet.NewGRU(c, rng, cfg.NoiseDim, cfg.HiddenSize, cfg.MotionDim)
	gen := vidnet.NewGeneratorImage(c, rng, cfg.LatentDim(), cfg.ImageSize, cfg.Channels,
		cfg.GenFilters)
	di := vidnet.NewDiscriminatorImage(c, rng, cfg.ImageSize, cfg.Channels, cfg.DiscFilters)
	dv := vidnet.NewDiscriminatorVideo(c, rng, cfg.WindowSize, cfg.ImageSize, cfg.Channels,
		cfg.DiscFilters)
	return &Engine{
		Corpus:   corpus,
		Composer: &latent.Composer{
			Encoder:    gru,
			ContentDim: cfg.ContentDim,
			MotionDim:  cfg.MotionDim,
			NoiseDim:   cfg.NoiseDim,
		},
		Generator:  NewNetwork("generator_image", gen, gen.Parameters(), cfg),
		Encoder:    NewNetwork("motion_encoder", nil, gru.Parameters(), cfg),
		DiscImage:  NewNetwork("discriminator_image", di, di.Parameters(), cfg),
		DiscVideo:  NewNetwork("discriminator_video", dv, dv.Parameters(), cfg),
		BatchSize:  cfg.BatchSize,
		WindowSize: cfg.WindowSize,
		ImageSize:  cfg.ImageSize,
		Rand:       rng,
		Logger:     logger,
	}
}

// Networks returns all four networks in update order.
func (e *Engine) Networks() []*Network {
	return []*Network{e.DiscVideo, e.DiscImage, e.Generator, e.Encoder}
}

// Step runs a full training iteration.
func (e *Engine) Step() (Losses, error) {
	var losses Losses
	realBatch, err := e.RealBatch()
	if err != nil {
		return losses, err
	}
	fake, err := e.FakeBatch()
	if err != nil {
		return losses, err
	}
	e.UpdateDiscriminators(realBatch, fake, &losses)
	e.UpdateGenerators(fake, &losses)
	e.Logger.Debug("training step",
		zap.Float64("loss_di", losses.Di()),
		zap.Float64("loss_dv", losses.Dv()),
		zap.Float64("loss_gi", losses.Gi),
		zap.Float64("loss_gv", losses.Gv))
	return losses, nil
}

// RealBatch samples a batch of windows from the corpus.
func (e *Engine) RealBatch() (*RealBatch, error) {
	videos := make([]anyvec.Vector, e.BatchSize)
	var frameSize int
	for i := range videos {
		clip := e.Corpus.SampleClip(e.Rand)
		if clip.Width != e.ImageSize || clip.Height != e.ImageSize {
			panic("clip size does not match image size")
		}
		frameSize = clip.FrameSize()
		var err error
		videos[i], err = window.Trim(e.Rand, clip.Data, frameSize, e.WindowSize)
		if err != nil {
			return nil, err
		}
	}
	video := videos[0].Creator().Concat(videos...)
	frame := e.Rand.Intn(e.WindowSize)
	image := e.selectFrame(anydiff.NewConst(video), frameSize, frame)
	return &RealBatch{
		Video: video,
		Image: image.Output(),
		Frame: frame,
	}, nil
}

// FakeBatch generates a batch of videos, keeping the
// computation graph so that the generators can be
// trained.
func (e *Engine) FakeBatch() (*FakeBatch, error) {
	frames := e.Corpus.SampleLength(e.Rand)
	code := e.Composer.Sample(e.Rand, e.BatchSize, frames)
	start, err := window.Offset(e.Rand, frames, e.WindowSize)
	if err != nil {
		return nil, err
	}
	trimmed := window.TrimRes(code.Res, e.BatchSize, frames, code.FrameSize(), start,
		e.WindowSize)

	// Every frame of every video is generated in one batch.
	// The output is already in frame-major video order.
	video := e.Generator.Apply(trimmed, e.BatchSize*e.WindowSize)
	frameSize := video.Output().Len() / (e.BatchSize * e.WindowSize)
	image := e.selectFrame(video, frameSize, e.Rand.Intn(e.WindowSize))
	return &FakeBatch{Video: video, Image: image}, nil
}

// UpdateDiscriminators trains both discriminators to
// tell real data from generated data.
//
// Generated data is detached, so the generators receive no
// gradients.
func (e *Engine) UpdateDiscriminators(r *RealBatch, f *FakeBatch, losses *Losses) {
	losses.DvReal, losses.DvFake = e.updateDiscriminator(e.DiscVideo, r.Video, f.Video)
	losses.DiReal, losses.DiFake = e.updateDiscriminator(e.DiscImage, r.Image, f.Image)
}

func (e *Engine) updateDiscriminator(d *Network, realIn anyvec.Vector,
	fakeIn anydiff.Res) (realLoss, fakeLoss float64) {
	d.ZeroGrad()

	loss := bceLoss(d.Apply(anydiff.NewConst(realIn), e.BatchSize), realLabel, e.BatchSize)
	realLoss = floatValue(loss.Output())
	backward(loss, nil, false, d)

	loss = bceLoss(d.Apply(Detach(fakeIn), e.BatchSize), fakeLabel, e.BatchSize)
	fakeLoss = floatValue(loss.Output())
	backward(loss, nil, false, d)

	d.Step()
	return
}

// UpdateGenerators trains the frame generator and motion
// encoder to fool both discriminators.
//
// The video loss is propagated first with the fake graph
// retained, then the image loss releases it.
func (e *Engine) UpdateGenerators(fake *FakeBatch, losses *Losses) {
	e.Generator.ZeroGrad()
	e.Encoder.ZeroGrad()

	loss := bceLoss(e.DiscVideo.Apply(fake.Video, e.BatchSize), realLabel, e.BatchSize)
	losses.Gv = floatValue(loss.Output())
	backward(loss, fake, true, e.Generator, e.Encoder)

	loss = bceLoss(e.DiscImage.Apply(fake.Image, e.BatchSize), realLabel, e.BatchSize)
	losses.Gi = floatValue(loss.Output())
	backward(loss, fake, false, e.Generator, e.Encoder)

	e.Generator.Step()
	e.Encoder.Step()
}

// selectFrame picks a frame from a batch of windows,
// reusing the cached frame mappers while the batch shape
// stays the same.
func (e *Engine) selectFrame(in anydiff.Res, frameSize, frame int) anydiff.Res {
	s := e.selector
	if s == nil || s.Batch != e.BatchSize || s.Frames != e.WindowSize ||
		s.FrameSize != frameSize {
		s = &vidnet.FrameSelector{
			Batch:     e.BatchSize,
			Frames:    e.WindowSize,
			FrameSize: frameSize,
		}
		e.selector = s
	}
	return s.Select(in, frame)
}
