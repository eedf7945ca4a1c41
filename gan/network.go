// Package gan trains a video generator against an image
// discriminator and a video discriminator.
package gan

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/vidgan"
)

// A Network bundles a trainable model with its gradient
// accumulator and optimizer.
type Network struct {
	Name string

	// Layer evaluates the network.
	// It may be nil for networks which are evaluated by
	// other means, such as a recurrent encoder.
	Layer anynet.Layer

	Params []*anydiff.Var

	// Grad accumulates gradients for Params across
	// backward passes until it is zeroed.
	Grad anydiff.Grad

	Transformer anysgd.Transformer
	Rater       anysgd.Rater

	// NumSteps is the number of optimizer steps taken so
	// far.
	NumSteps int
}

// NewNetwork creates a Network with an Adam optimizer
// configured by cfg.
func NewNetwork(name string, layer anynet.Layer, params []*anydiff.Var,
	cfg *vidgan.Config) *Network {
	return &Network{
		Name:   name,
		Layer:  layer,
		Params: params,
		Grad:   anydiff.NewGrad(params...),
		Transformer: &anysgd.Adam{
			DecayRate1: cfg.Beta1,
			DecayRate2: cfg.Beta2,
		},
		Rater: anysgd.ConstRater(cfg.LearningRate),
	}
}

// Apply evaluates the network on a batch.
func (n *Network) Apply(in anydiff.Res, batch int) anydiff.Res {
	if n.Layer == nil {
		panic(fmt.Sprintf("network %s has no layer", n.Name))
	}
	return n.Layer.Apply(in, batch)
}

// ZeroGrad resets the gradient accumulator.
func (n *Network) ZeroGrad() {
	for _, vec := range n.Grad {
		vec.Set(vec.Creator().MakeVector(vec.Len()))
	}
}

// Step applies one optimizer update using the accumulated
// gradient.
//
// The accumulator itself is left untouched.
func (n *Network) Step() {
	grad := copyGrad(n.Grad)
	if n.Transformer != nil {
		grad = n.Transformer.Transform(grad)
	}
	rate := n.Rater.Rate(float64(n.NumSteps))
	for _, vec := range grad {
		grad.Scale(vec.Creator().MakeNumeric(-rate))
		break
	}
	grad.AddToVars()
	n.NumSteps++
}

// Detach copies the value of r into a constant, so that
// nothing downstream can propagate gradients into r.
func Detach(r anydiff.Res) anydiff.Res {
	return anydiff.NewConst(r.Output().Copy())
}

// A FakeBatch is a batch of generated data along with the
// computation graph that produced it.
//
// Backward passes through the graph must declare whether
// the graph is retained for a later pass.
// Once a pass releases the graph, it may not be used again.
type FakeBatch struct {
	// Video is a batch of frame-major videos.
	Video anydiff.Res

	// Image contains one frame from every video.
	Image anydiff.Res

	released bool
}

// backward propagates a scalar loss and accumulates the
// result into the gradients of nets, and nothing else.
//
// If graph is non-nil, the loss depends on it, and retain
// determines if the graph may be used again.
func backward(loss anydiff.Res, graph *FakeBatch, retain bool, nets ...*Network) {
	if graph != nil {
		if graph.released {
			panic("backward through released graph")
		}
		if !retain {
			graph.released = true
		}
	}
	grad := anydiff.Grad{}
	for _, net := range nets {
		for v, vec := range net.Grad {
			grad[v] = vec
		}
	}
	if len(grad) == 0 {
		return
	}
	c := loss.Output().Creator()
	upstream := c.MakeVector(loss.Output().Len())
	upstream.AddScalar(c.MakeNumeric(1))
	loss.Propagate(upstream, grad)
}

func copyGrad(g anydiff.Grad) anydiff.Grad {
	res := anydiff.Grad{}
	for v, vec := range g {
		res[v] = vec.Copy()
	}
	return res
}

// bceLoss computes the mean sigmoid cross-entropy between
// a batch of logits and a constant label.
func bceLoss(logits anydiff.Res, label float64, batch int) anydiff.Res {
	c := logits.Output().Creator()
	target := c.MakeVector(logits.Output().Len())
	target.AddScalar(c.MakeNumeric(label))
	costs := anynet.SigmoidCE{}.Cost(anydiff.NewConst(target), logits, batch)
	return anydiff.Scale(anydiff.Sum(costs), c.MakeNumeric(1/float64(batch)))
}

func floatValue(vec anyvec.Vector) float64 {
	switch sum := anyvec.Sum(vec).(type) {
	case float32:
		return float64(sum)
	case float64:
		return sum
	default:
		panic(fmt.Sprintf("unsupported numeric type: %T", sum))
	}
}
