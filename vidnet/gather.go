// Package vidnet provides the neural networks used to
// generate and judge videos, along with a few tensor
// re-arrangement primitives for video batches.
//
// All image tensors are row-major depth-minor, matching
// anyconv.
// Video tensors are frame-major, with one image tensor per
// frame.
package vidnet

import (
	"sync"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anyvec"
)

// Gather produces a vector whose i-th component is the
// table[i]-th component of in.
//
// Components may be gathered more than once, in which case
// their gradients are summed during back-propagation.
func Gather(in anydiff.Res, table []int) anydiff.Res {
	c := in.Output().Creator()
	return GatherMapped(in, c.MakeMapper(in.Output().Len(), table))
}

// GatherMapped is like Gather, but with a pre-built mapper
// which can be reused across calls.
func GatherMapped(in anydiff.Res, m anyvec.Mapper) anydiff.Res {
	if in.Output().Len() != m.InSize() {
		panic("incorrect input size")
	}
	out := in.Output().Creator().MakeVector(m.OutSize())
	m.Map(in.Output(), out)
	return &gatherRes{
		In:     in,
		Mapper: m,
		OutVec: out,
	}
}

// SelectFrame extracts the same frame from every video in
// a batch, producing a batch of images.
//
// A FrameSelector should be used instead when the same
// shapes are selected repeatedly.
func SelectFrame(in anydiff.Res, batch, frames, frameSize, frame int) anydiff.Res {
	s := &FrameSelector{Batch: batch, Frames: frames, FrameSize: frameSize}
	return s.Select(in, frame)
}

// A FrameSelector extracts frames from batches of a fixed
// shape, caching one mapper per frame index.
type FrameSelector struct {
	Batch     int
	Frames    int
	FrameSize int

	lock    sync.Mutex
	mappers map[int]anyvec.Mapper
}

// Select extracts the given frame from every video in in.
func (f *FrameSelector) Select(in anydiff.Res, frame int) anydiff.Res {
	if in.Output().Len() != f.Batch*f.Frames*f.FrameSize {
		panic("incorrect input size")
	}
	if frame < 0 || frame >= f.Frames {
		panic("frame index out of range")
	}
	return GatherMapped(in, f.mapper(in.Output().Creator(), frame))
}

func (f *FrameSelector) mapper(c anyvec.Creator, frame int) anyvec.Mapper {
	f.lock.Lock()
	defer f.lock.Unlock()
	if m, ok := f.mappers[frame]; ok {
		return m
	}
	table := make([]int, 0, f.Batch*f.FrameSize)
	for b := 0; b < f.Batch; b++ {
		offset := (b*f.Frames + frame) * f.FrameSize
		for i := 0; i < f.FrameSize; i++ {
			table = append(table, offset+i)
		}
	}
	if f.mappers == nil {
		f.mappers = map[int]anyvec.Mapper{}
	}
	m := c.MakeMapper(f.Batch*f.Frames*f.FrameSize, table)
	f.mappers[frame] = m
	return m
}

// PackSeq joins the timesteps of a sequence batch into a
// single time-major vector.
//
// Every sequence in the batch must be present at every
// timestep.
func PackSeq(s anyseq.Seq) anydiff.Res {
	var packed []anyvec.Vector
	for _, b := range s.Output() {
		if b.NumPresent() != len(b.Present) {
			panic("all sequences must be present")
		}
		packed = append(packed, b.Packed)
	}
	if len(packed) == 0 {
		panic("empty sequence")
	}
	return &packRes{
		Seq:    s,
		OutVec: packed[0].Creator().Concat(packed...),
	}
}

type gatherRes struct {
	In     anydiff.Res
	Mapper anyvec.Mapper
	OutVec anyvec.Vector
}

func (g *gatherRes) Output() anyvec.Vector {
	return g.OutVec
}

func (g *gatherRes) Vars() anydiff.VarSet {
	return g.In.Vars()
}

func (g *gatherRes) Propagate(u anyvec.Vector, grad anydiff.Grad) {
	if !grad.Intersects(g.In.Vars()) {
		return
	}
	down := u.Creator().MakeVector(g.Mapper.InSize())
	g.Mapper.MapTranspose(u, down)
	g.In.Propagate(down, grad)
}

type packRes struct {
	Seq    anyseq.Seq
	OutVec anyvec.Vector
}

func (p *packRes) Output() anyvec.Vector {
	return p.OutVec
}

func (p *packRes) Vars() anydiff.VarSet {
	return p.Seq.Vars()
}

func (p *packRes) Propagate(u anyvec.Vector, grad anydiff.Grad) {
	var upstream []*anyseq.Batch
	var offset int
	for _, b := range p.Seq.Output() {
		size := b.Packed.Len()
		upstream = append(upstream, &anyseq.Batch{
			Packed:  u.Slice(offset, offset+size),
			Present: b.Present,
		})
		offset += size
	}
	p.Seq.Propagate(upstream, grad)
}
