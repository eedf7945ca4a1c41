package clipstore

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"os"
	"os/exec"
	"strings"

	"github.com/unixpickle/essentials"
)

func decodeGIF(path string) (*rawFrames, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, essentials.AddCtx("decode gif", err)
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() && len(g.Image) > 0 {
		bounds = g.Image[0].Bounds()
	}
	res := &rawFrames{Width: bounds.Dx(), Height: bounds.Dy()}

	// Frames may only cover part of the canvas, so each one
	// is drawn over what its predecessors left behind.
	canvas := image.NewRGBA(bounds)
	var saved *image.RGBA
	for i, frame := range g.Image {
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			saved = image.NewRGBA(bounds)
			copy(saved.Pix, canvas.Pix)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				px := canvas.RGBAAt(x, y)
				res.Pixels = append(res.Pixels, px.R, px.G, px.B)
			}
		}

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}
	return res, nil
}

func decodeFFmpeg(ctx context.Context, path string) (*rawFrames, error) {
	width, height, err := probeSize(ctx, path)
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", "-v", "error", "-i", path,
		"-f", "rawvideo", "-pix_fmt", "rgb24", "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, essentials.AddCtx("run ffmpeg",
			fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String())))
	}
	return newRawFrames(width, height, out)
}

// newRawFrames wraps packed RGB bytes, checking that they
// hold a whole number of width*height frames.
func newRawFrames(width, height int, pixels []byte) (*rawFrames, error) {
	if len(pixels)%(width*height*Channels) != 0 {
		return nil, fmt.Errorf("decoded %d bytes, which is not a whole number of %dx%d frames",
			len(pixels), width, height)
	}
	return &rawFrames{Width: width, Height: height, Pixels: pixels}, nil
}

func probeSize(ctx context.Context, path string) (width, height int, err error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=width,height", "-of", "csv=p=0:s=x", path)
	out, err := cmd.Output()
	if err != nil {
		return 0, 0, essentials.AddCtx("run ffprobe", err)
	}
	line := strings.TrimSpace(string(out))
	if _, err := fmt.Sscanf(line, "%dx%d", &width, &height); err != nil {
		return 0, 0, essentials.AddCtx("parse ffprobe output "+line, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid video size: %dx%d", width, height)
	}
	return
}
