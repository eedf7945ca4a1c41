package window

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anydifftest"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"pgregory.net/rapid"
)

func TestOffsetBoundaries(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 10; i++ {
		start, err := Offset(rng, 17, 16)
		require.NoError(t, err)
		require.Equal(t, 0, start)
	}

	_, err := Offset(rng, 16, 16)
	var windowErr *InvalidWindowError
	require.True(t, errors.As(err, &windowErr))
	require.Equal(t, 16, windowErr.Frames)
	require.Equal(t, 16, windowErr.Window)

	_, err = Offset(rng, 3, 16)
	require.Error(t, err)
}

func TestOffsetProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.IntRange(1, 32).Draw(rt, "size")
		total := rapid.IntRange(size+1, size+64).Draw(rt, "total")
		seed := rapid.Int64().Draw(rt, "seed")
		start, err := Offset(rand.New(rand.NewSource(seed)), total, size)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if start < 0 || start > total-size-1 {
			rt.Fatalf("offset %d out of [0, %d]", start, total-size-1)
		}
	})
}

func TestOffsetCoverage(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		start, err := Offset(rng, 8, 4)
		require.NoError(t, err)
		seen[start] = true
	}
	require.Equal(t, map[int]bool{0: true, 1: true, 2: true, 3: true}, seen)
}

func TestTrimContained(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		frameSize := rapid.IntRange(1, 5).Draw(rt, "frameSize")
		size := rapid.IntRange(1, 10).Draw(rt, "size")
		total := rapid.IntRange(size+1, size+20).Draw(rt, "total")
		seed := rapid.Int64().Draw(rt, "seed")

		data := make([]float32, total*frameSize)
		for i := range data {
			data[i] = float32(i)
		}
		out, err := Trim(rand.New(rand.NewSource(seed)), anyvec32.MakeVectorData(data),
			frameSize, size)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		cropped := out.Data().([]float32)
		if len(cropped) != size*frameSize {
			rt.Fatalf("expected %d components but got %d", size*frameSize, len(cropped))
		}
		start := int(cropped[0])
		if start%frameSize != 0 {
			rt.Fatalf("window starts mid-frame at %d", start)
		}
		for i, x := range cropped {
			if int(x) != start+i {
				rt.Fatalf("window is not contiguous at %d", i)
			}
		}
		if start/frameSize+size > total-1 {
			rt.Fatalf("window leaves no trailing frame")
		}
	})
}

func TestTrimTooShort(t *testing.T) {
	vec := anyvec32.MakeVector(4 * 3)
	_, err := Trim(rand.New(rand.NewSource(1)), vec, 3, 4)
	var windowErr *InvalidWindowError
	require.True(t, errors.As(err, &windowErr))
}

func TestTrimResOutput(t *testing.T) {
	// Two samples, four frames, one component per frame.
	in := anydiff.NewConst(anyvec32.MakeVectorData([]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}))
	out := TrimRes(in, 2, 4, 1, 1, 2)
	require.Equal(t, []float32{2, 3, 6, 7}, out.Output().Data().([]float32))

	require.Panics(t, func() {
		TrimRes(in, 2, 4, 1, 3, 2)
	})
}

func TestTrimResProp(t *testing.T) {
	vec := anyvec32.MakeVector(2 * 5 * 3)
	anyvec.Rand(vec, anyvec.Normal, nil)
	v := anydiff.NewVar(vec)
	checker := &anydifftest.ResChecker{
		F: func() anydiff.Res {
			return TrimRes(v, 2, 5, 3, 1, 3)
		},
		V: []*anydiff.Var{v},
	}
	checker.FullCheck(t)
}
