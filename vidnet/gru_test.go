package vidnet

import (
	"math/rand"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anydifftest"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/anyvec64"
)

func TestGRUShapes(t *testing.T) {
	c := anyvec32.DefaultCreator{}
	g := NewGRU(c, rand.New(rand.NewSource(1)), 3, 4, 2)
	if len(g.Parameters()) != 14 {
		t.Errorf("expected 14 parameters, but got %d", len(g.Parameters()))
	}
	out := PackSeq(g.Apply(testNoiseSeq(c, 2, 5, 3)))
	if out.Output().Len() != 5*2*2 {
		t.Errorf("unexpected output length: %d", out.Output().Len())
	}
}

func TestGRUProp(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	g := NewGRU(c, rand.New(rand.NewSource(1)), 3, 4, 2)
	seq := testNoiseSeq(c, 2, 3, 3)
	checker := &anydifftest.ResChecker{
		F: func() anydiff.Res {
			return PackSeq(g.Apply(seq))
		},
		V: g.Parameters(),
	}
	checker.FullCheck(t)
}

func TestGRUZeroStart(t *testing.T) {
	c := anyvec32.DefaultCreator{}
	g := NewGRU(c, rand.New(rand.NewSource(1)), 3, 4, 2)
	seq := testNoiseSeq(c, 2, 4, 3)

	// Running the same noise twice must give the same
	// outputs, since no state survives between calls.
	out1 := PackSeq(g.Apply(seq)).Output().Copy()
	out2 := PackSeq(g.Apply(seq)).Output()
	out1.Sub(out2)
	if anyvec.AbsMax(out1).(float32) != 0 {
		t.Error("outputs depend on a previous call")
	}
}

func testNoiseSeq(c anyvec.Creator, batch, steps, size int) anyseq.Seq {
	seqs := make([][]anyvec.Vector, batch)
	for i := range seqs {
		for j := 0; j < steps; j++ {
			vec := c.MakeVector(size)
			anyvec.Rand(vec, anyvec.Normal, nil)
			seqs[i] = append(seqs[i], vec)
		}
	}
	return anyseq.ConstSeqList(c, seqs)
}
