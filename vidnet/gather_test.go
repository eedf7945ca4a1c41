package vidnet

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anydifftest"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
)

func TestGatherOutput(t *testing.T) {
	in := anydiff.NewConst(anyvec32.MakeVectorData([]float32{1, 2, 3, 4}))
	out := Gather(in, []int{3, 0, 0, 2})
	require.Equal(t, []float32{4, 1, 1, 3}, out.Output().Data().([]float32))
}

func TestGatherProp(t *testing.T) {
	vec := anyvec32.MakeVector(6)
	anyvec.Rand(vec, anyvec.Normal, nil)
	v := anydiff.NewVar(vec)
	checker := &anydifftest.ResChecker{
		F: func() anydiff.Res {
			return Gather(v, []int{5, 1, 1, 0, 3, 1})
		},
		V: []*anydiff.Var{v},
	}
	checker.FullCheck(t)
}

func TestSelectFrame(t *testing.T) {
	// Two videos, three frames, two components per frame.
	in := anydiff.NewConst(anyvec32.MakeVectorData([]float32{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}))
	out := SelectFrame(in, 2, 3, 2, 1)
	require.Equal(t, []float32{3, 4, 9, 10}, out.Output().Data().([]float32))
}

func TestSelectFrameOutOfRange(t *testing.T) {
	in := anydiff.NewConst(anyvec32.MakeVector(12))
	require.Panics(t, func() {
		SelectFrame(in, 2, 3, 2, 3)
	})
}

func TestFrameSelectorCache(t *testing.T) {
	selector := &FrameSelector{Batch: 2, Frames: 3, FrameSize: 2}
	in := anydiff.NewConst(anyvec32.MakeVectorData([]float32{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}))
	for i := 0; i < 2; i++ {
		out := selector.Select(in, 1)
		require.Equal(t, []float32{3, 4, 9, 10}, out.Output().Data().([]float32))
	}
	require.Len(t, selector.mappers, 1)

	out := selector.Select(in, 2)
	require.Equal(t, []float32{5, 6, 11, 12}, out.Output().Data().([]float32))
	require.Len(t, selector.mappers, 2)
	require.Panics(t, func() {
		selector.Select(anydiff.NewConst(anyvec32.MakeVector(6)), 0)
	})
}

func TestFrameSelectorProp(t *testing.T) {
	selector := &FrameSelector{Batch: 2, Frames: 3, FrameSize: 2}
	vec := anyvec32.MakeVector(12)
	anyvec.Rand(vec, anyvec.Normal, nil)
	v := anydiff.NewVar(vec)
	checker := &anydifftest.ResChecker{
		F: func() anydiff.Res {
			return selector.Select(v, 2)
		},
		V: []*anydiff.Var{v},
	}
	checker.FullCheck(t)
}
