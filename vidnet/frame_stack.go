package vidnet

import (
	"sync"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var f FrameStack
	serializer.RegisterTypedDeserializer(f.SerializerType(), DeserializeFrameStack)
}

// A FrameStack layer turns a batch of videos into a batch
// of images by stacking frames along the depth axis.
//
// Each input video has Frames frames of Width x Height x
// Depth.
// Each output image is Width x Height with a depth of
// Frames*Depth, where the component for channel z of frame
// t is stored at depth t*Depth+z.
// This lets a 2D convolution see every frame of a window
// at once.
type FrameStack struct {
	Frames int
	Width  int
	Height int
	Depth  int

	mappingLock sync.Mutex
	mappers     map[int]anyvec.Mapper
}

// DeserializeFrameStack deserializes a FrameStack.
func DeserializeFrameStack(d []byte) (*FrameStack, error) {
	var frames, w, h, depth serializer.Int
	if err := serializer.DeserializeAny(d, &frames, &w, &h, &depth); err != nil {
		return nil, essentials.AddCtx("deserialize FrameStack", err)
	}
	return &FrameStack{
		Frames: int(frames),
		Width:  int(w),
		Height: int(h),
		Depth:  int(depth),
	}, nil
}

// OutputDepth returns the depth of the stacked images.
func (f *FrameStack) OutputDepth() int {
	return f.Frames * f.Depth
}

// Apply applies the layer to a batch of videos.
func (f *FrameStack) Apply(in anydiff.Res, batch int) anydiff.Res {
	if in.Output().Len() != batch*f.Frames*f.Width*f.Height*f.Depth {
		panic("incorrect input size")
	}
	return GatherMapped(in, f.mapper(in.Output().Creator(), batch))
}

// mapper returns the gather mapper for a batch size,
// building it on first use.
func (f *FrameStack) mapper(c anyvec.Creator, batch int) anyvec.Mapper {
	f.mappingLock.Lock()
	defer f.mappingLock.Unlock()
	if m, ok := f.mappers[batch]; ok {
		return m
	}
	frameSize := f.Width * f.Height * f.Depth
	videoSize := frameSize * f.Frames
	table := make([]int, 0, batch*videoSize)
	for b := 0; b < batch; b++ {
		for pixel := 0; pixel < f.Width*f.Height; pixel++ {
			for t := 0; t < f.Frames; t++ {
				offset := b*videoSize + t*frameSize + pixel*f.Depth
				for z := 0; z < f.Depth; z++ {
					table = append(table, offset+z)
				}
			}
		}
	}
	if f.mappers == nil {
		f.mappers = map[int]anyvec.Mapper{}
	}
	m := c.MakeMapper(batch*videoSize, table)
	f.mappers[batch] = m
	return m
}

// SerializerType returns the unique ID used to serialize
// a FrameStack with the serializer package.
func (f *FrameStack) SerializerType() string {
	return "github.com/unixpickle/vidgan/vidnet.FrameStack"
}

// Serialize serializes the layer.
func (f *FrameStack) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		serializer.Int(f.Frames),
		serializer.Int(f.Width),
		serializer.Int(f.Height),
		serializer.Int(f.Depth),
	)
}
