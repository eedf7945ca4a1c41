// Package latent builds the per-frame latent codes which
// drive the frame generator.
//
// A latent code joins a content vector, which is fixed for
// the whole video, with a motion vector for every frame.
// Motion vectors come from a recurrent encoder run over
// per-frame Gaussian noise.
package latent

import (
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/vidgan/vidnet"
)

// A Composer produces latent codes.
type Composer struct {
	// Encoder maps NoiseDim-dimensional noise vectors to
	// MotionDim-dimensional motion vectors.
	Encoder *vidnet.GRU

	ContentDim int
	MotionDim  int
	NoiseDim   int
}

// A Code is a batch of per-frame latent vectors.
//
// The code is batch-major, with Frames vectors per sample.
// Each vector stores ContentDim content components followed
// by MotionDim motion components.
type Code struct {
	Batch      int
	Frames     int
	ContentDim int
	MotionDim  int

	// Content is the (Batch, ContentDim) content noise.
	Content anyvec.Vector

	// Motion is the time-major (Frames, Batch, MotionDim)
	// output of the encoder.
	Motion anydiff.Res

	// Res is the full (Batch, Frames, ContentDim+MotionDim)
	// code.
	// Gradients flow back into the encoder.
	Res anydiff.Res
}

// FrameSize returns the number of components in a single
// frame's latent vector.
func (c *Code) FrameSize() int {
	return c.ContentDim + c.MotionDim
}

// Sample draws fresh content and motion noise from rng and
// composes a code for batch videos of frames frames.
func (c *Composer) Sample(rng *rand.Rand, batch, frames int) *Code {
	cr := c.creator()
	content := cr.MakeVector(batch * c.ContentDim)
	anyvec.Rand(content, anyvec.Normal, rng)
	noise := make([]anyvec.Vector, frames)
	for t := range noise {
		noise[t] = cr.MakeVector(batch * c.NoiseDim)
		anyvec.Rand(noise[t], anyvec.Normal, rng)
	}
	return c.Compose(content, noise)
}

// Compose builds a code from (Batch, ContentDim) content
// noise and a time-major list of (Batch, NoiseDim) motion
// noise vectors.
//
// The encoder starts from a zero state on every call.
func (c *Composer) Compose(content anyvec.Vector, noise []anyvec.Vector) *Code {
	if len(noise) == 0 {
		panic("at least one frame is required")
	}
	if content.Len()%c.ContentDim != 0 {
		panic("invalid content size")
	}
	batch := content.Len() / c.ContentDim
	frames := len(noise)

	motion := vidnet.PackSeq(c.Encoder.Apply(noiseSeq(c.creator(), noise, batch, c.NoiseDim)))
	joined := anydiff.Concat(anydiff.NewConst(content), motion)

	// The joined vector stores all of the content, followed
	// by the time-major motion vectors.
	motionStart := batch * c.ContentDim
	table := make([]int, 0, batch*frames*(c.ContentDim+c.MotionDim))
	for b := 0; b < batch; b++ {
		for t := 0; t < frames; t++ {
			for i := 0; i < c.ContentDim; i++ {
				table = append(table, b*c.ContentDim+i)
			}
			offset := motionStart + (t*batch+b)*c.MotionDim
			for i := 0; i < c.MotionDim; i++ {
				table = append(table, offset+i)
			}
		}
	}

	return &Code{
		Batch:      batch,
		Frames:     frames,
		ContentDim: c.ContentDim,
		MotionDim:  c.MotionDim,
		Content:    content,
		Motion:     motion,
		Res:        vidnet.Gather(joined, table),
	}
}

func (c *Composer) creator() anyvec.Creator {
	return c.Encoder.Output.Weights.Vector.Creator()
}

func noiseSeq(c anyvec.Creator, noise []anyvec.Vector, batch, size int) anyseq.Seq {
	seqs := make([][]anyvec.Vector, batch)
	for _, step := range noise {
		if step.Len() != batch*size {
			panic("invalid noise size")
		}
		for b := range seqs {
			seqs[b] = append(seqs[b], step.Slice(b*size, (b+1)*size))
		}
	}
	return anyseq.ConstSeqList(c, seqs)
}
