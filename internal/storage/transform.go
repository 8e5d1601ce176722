package storage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // register decoders for the stdlib-based transforms
	"image/png"

	"github.com/h2non/bimg"
)

// ErrBadDimensions is returned when a crop or round-corners request carries
// non-positive dimensions.
var ErrBadDimensions = errors.New("invalid transformation dimensions")

// Grayscale converts an image to black and white. libvips does this natively
// through the colourspace option.
func Grayscale(data []byte) ([]byte, error) {
	return bimg.NewImage(data).Process(bimg.Options{
		Interpretation: bimg.InterpretationBW,
	})
}

// Crop cuts the image to width x height around its center.
func Crop(data []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrBadDimensions
	}
	return bimg.NewImage(data).Process(bimg.Options{
		Width:   width,
		Height:  height,
		Crop:    true,
		Gravity: bimg.GravityCentre,
	})
}

// Sepia applies the classic sepia tone matrix pixel by pixel. libvips has no
// direct sepia operation, so this one decodes with the stdlib and re-encodes
// as JPEG via bimg to keep the output format consistent with Grayscale/Crop.
func Sepia(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := src.At(x, y).RGBA()
			rf, gf, bf := float64(r>>8), float64(g>>8), float64(b>>8)
			dst.SetRGBA(x, y, color.RGBA{
				R: clamp(0.393*rf + 0.769*gf + 0.189*bf),
				G: clamp(0.349*rf + 0.686*gf + 0.168*bf),
				B: clamp(0.272*rf + 0.534*gf + 0.131*bf),
				A: uint8(a >> 8),
			})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return bimg.NewImage(buf.Bytes()).Convert(bimg.JPEG)
}

// RoundCorners masks the image corners with the given radius and returns a
// PNG, since the result needs an alpha channel.
func RoundCorners(data []byte, radius int) ([]byte, error) {
	if radius <= 0 {
		return nil, ErrBadDimensions
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if radius > w/2 {
		radius = w / 2
	}
	if radius > h/2 {
		radius = h / 2
	}

	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	// Knock out every pixel whose corner-circle distance exceeds the radius.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if outsideCorner(x, y, w, h, radius) {
				dst.SetRGBA(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func outsideCorner(x, y, w, h, r int) bool {
	var cx, cy int
	switch {
	case x < r && y < r:
		cx, cy = r, r
	case x >= w-r && y < r:
		cx, cy = w-r-1, r
	case x < r && y >= h-r:
		cx, cy = r, h-r-1
	case x >= w-r && y >= h-r:
		cx, cy = w-r-1, h-r-1
	default:
		return false
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy > r*r
}

func clamp(v float64) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Thumbnail produces a square center-cropped thumbnail, used for avatars.
func Thumbnail(data []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrBadDimensions
	}
	return bimg.NewImage(data).Process(bimg.Options{
		Width:   size,
		Height:  size,
		Crop:    true,
		Gravity: bimg.GravityCentre,
	})
}
