package vidnet

import (
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyvec"
)

// GRU is a gated recurrent unit followed by a linear
// read-out layer.
//
// For input x and previous state h, a timestep computes
//
//     z  := sigmoid(Wz*x + Uz*h)
//     r  := sigmoid(Wr*x + Ur*h)
//     h' := (1-z)*h + z*tanh(Wh*x + Uh*(r*h))
//     y  := Wo*h'
//
// The start state is always zero.
type GRU struct {
	InCount     int
	HiddenCount int
	OutCount    int

	UpdateInput *anynet.FC
	UpdateState *anynet.FC
	ResetInput  *anynet.FC
	ResetState  *anynet.FC
	CandInput   *anynet.FC
	CandState   *anynet.FC
	Output      *anynet.FC
}

// NewGRU creates a randomized GRU.
func NewGRU(c anyvec.Creator, rng *rand.Rand, in, hidden, out int) *GRU {
	return &GRU{
		InCount:     in,
		HiddenCount: hidden,
		OutCount:    out,
		UpdateInput: newFC(c, rng, in, hidden),
		UpdateState: newFC(c, rng, hidden, hidden),
		ResetInput:  newFC(c, rng, in, hidden),
		ResetState:  newFC(c, rng, hidden, hidden),
		CandInput:   newFC(c, rng, in, hidden),
		CandState:   newFC(c, rng, hidden, hidden),
		Output:      newFC(c, rng, hidden, out),
	}
}

// Block returns an anyrnn.Block which runs the GRU.
func (g *GRU) Block() *anyrnn.FuncBlock {
	return &anyrnn.FuncBlock{
		Func:      g.step,
		MakeStart: g.start,
	}
}

// Apply runs the GRU over a batch of input sequences,
// starting from a zero state.
func (g *GRU) Apply(in anyseq.Seq) anyseq.Seq {
	return anyrnn.Map(in, g.Block())
}

// Parameters returns the parameters of every gate and of
// the read-out layer.
func (g *GRU) Parameters() []*anydiff.Var {
	var res []*anydiff.Var
	for _, fc := range g.layers() {
		res = append(res, fc.Parameters()...)
	}
	return res
}

func (g *GRU) layers() []*anynet.FC {
	return []*anynet.FC{
		g.UpdateInput, g.UpdateState,
		g.ResetInput, g.ResetState,
		g.CandInput, g.CandState,
		g.Output,
	}
}

func (g *GRU) start(n int) anydiff.Res {
	c := g.Output.Weights.Vector.Creator()
	return anydiff.NewConst(c.MakeVector(n * g.HiddenCount))
}

func (g *GRU) step(in, state anydiff.Res, n int) (out, newState anydiff.Res) {
	update := anydiff.Sigmoid(anydiff.Add(
		g.UpdateInput.Apply(in, n),
		g.UpdateState.Apply(state, n),
	))
	reset := anydiff.Sigmoid(anydiff.Add(
		g.ResetInput.Apply(in, n),
		g.ResetState.Apply(state, n),
	))
	cand := anydiff.Tanh(anydiff.Add(
		g.CandInput.Apply(in, n),
		g.CandState.Apply(anydiff.Mul(reset, state), n),
	))
	newState = anydiff.Pool(update, func(update anydiff.Res) anydiff.Res {
		return anydiff.Add(
			anydiff.Mul(anydiff.Complement(update), state),
			anydiff.Mul(update, cand),
		)
	})
	out = g.Output.Apply(newState, n)
	return
}
