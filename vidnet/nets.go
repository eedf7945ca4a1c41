package vidnet

import (
	"math"
	"math/rand"

	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyconv"
	"github.com/unixpickle/anyvec"
)

const (
	maxFilterShift   = 3
	minDiscSize      = 4
	maxGeneratorBase = 6
)

// NewGeneratorImage creates a network which decodes a
// batch of latent vectors into a batch of images.
//
// The network projects each latent vector to a small
// feature map, then alternates bilinear upsampling and 3x3
// convolutions until the map reaches imageSize.
// Outputs are squashed into [0, 1] to match pixel values.
func NewGeneratorImage(c anyvec.Creator, rng *rand.Rand, latentDim, imageSize, channels,
	filters int) anynet.Net {
	base, upsamples := generatorBase(imageSize)
	depth := filters << uint(minInt(upsamples, maxFilterShift))
	res := anynet.Net{
		newFC(c, rng, latentDim, base*base*depth),
		anyconv.NewBatchNorm(c, depth),
		anynet.ReLU,
	}
	size := base
	for i := 0; i < upsamples; i++ {
		outDepth := maxInt(depth/2, filters)
		res = append(res,
			&anyconv.Resize{
				Depth:        depth,
				InputWidth:   size,
				InputHeight:  size,
				OutputWidth:  size * 2,
				OutputHeight: size * 2,
			},
			samePadding(size*2, depth),
			newConv(c, rng, size*2+2, depth, 3, 1, outDepth),
			anyconv.NewBatchNorm(c, outDepth),
			anynet.ReLU,
		)
		size *= 2
		depth = outDepth
	}
	return append(res,
		samePadding(size, depth),
		newConv(c, rng, size+2, depth, 3, 1, channels),
		anynet.Sigmoid,
	)
}

// NewDiscriminatorImage creates a network which maps a
// batch of images to a batch of logits, one per image.
func NewDiscriminatorImage(c anyvec.Creator, rng *rand.Rand, imageSize, channels,
	filters int) anynet.Net {
	return discriminatorTrunk(c, rng, imageSize, channels, filters)
}

// NewDiscriminatorVideo creates a network which maps a
// batch of frame-major videos to a batch of logits, one
// per video.
//
// The frames of each video are stacked with a FrameStack
// before being fed to a convolutional trunk.
func NewDiscriminatorVideo(c anyvec.Creator, rng *rand.Rand, frames, imageSize, channels,
	filters int) anynet.Net {
	stack := &FrameStack{
		Frames: frames,
		Width:  imageSize,
		Height: imageSize,
		Depth:  channels,
	}
	trunk := discriminatorTrunk(c, rng, imageSize, stack.OutputDepth(), filters)
	return append(anynet.Net{stack}, trunk...)
}

func discriminatorTrunk(c anyvec.Creator, rng *rand.Rand, size, depth, filters int) anynet.Net {
	var res anynet.Net
	outDepth := filters
	for i := 0; size > minDiscSize && size%2 == 0; i++ {
		res = append(res,
			samePadding(size, depth),
			newConv(c, rng, size+2, depth, 4, 2, outDepth),
		)
		if i > 0 {
			res = append(res, anyconv.NewBatchNorm(c, outDepth))
		}
		res = append(res, anynet.ReLU)
		size /= 2
		depth = outDepth
		outDepth = minInt(outDepth*2, filters<<maxFilterShift)
	}
	return append(res, newFC(c, rng, size*size*depth, 1))
}

// generatorBase finds the size of the generator's first
// feature map and the number of 2x upsamples needed to
// reach imageSize.
func generatorBase(imageSize int) (base, upsamples int) {
	base = imageSize
	for base > maxGeneratorBase && base%2 == 0 {
		base /= 2
		upsamples++
	}
	return
}

func samePadding(size, depth int) *anyconv.Padding {
	return &anyconv.Padding{
		InputWidth:    size,
		InputHeight:   size,
		InputDepth:    depth,
		PaddingTop:    1,
		PaddingRight:  1,
		PaddingBottom: 1,
		PaddingLeft:   1,
	}
}

func newConv(c anyvec.Creator, rng *rand.Rand, inSize, inDepth, filterSize, stride,
	filters int) *anyconv.Conv {
	res := &anyconv.Conv{
		FilterCount:  filters,
		FilterWidth:  filterSize,
		FilterHeight: filterSize,
		StrideX:      stride,
		StrideY:      stride,
		InputWidth:   inSize,
		InputHeight:  inSize,
		InputDepth:   inDepth,
	}
	res.InitZero(c)
	normalizer := 1 / math.Sqrt(float64(filterSize*filterSize*inDepth))
	anyvec.Rand(res.Filters.Vector, anyvec.Normal, rng)
	res.Filters.Vector.Scale(c.MakeNumeric(normalizer))
	return res
}

func newFC(c anyvec.Creator, rng *rand.Rand, in, out int) *anynet.FC {
	res := anynet.NewFCZero(c, in, out)
	anyvec.Rand(res.Weights.Vector, anyvec.Normal, rng)
	res.Weights.Vector.Scale(c.MakeNumeric(1 / math.Sqrt(float64(in))))
	return res
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
