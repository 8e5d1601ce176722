package storage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestCrop_BadDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 10}, {10, 0}, {-1, 10}} {
		if _, err := Crop(nil, dims[0], dims[1]); !errors.Is(err, ErrBadDimensions) {
			t.Errorf("dims %v: expected ErrBadDimensions, got %v", dims, err)
		}
	}
}

func TestRoundCorners(t *testing.T) {
	data := testPNG(t, 40, 40)
	out, err := RoundCorners(data, 10)
	if err != nil {
		t.Fatalf("RoundCorners returned error: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a decodable image: %v", err)
	}
	// Corner pixel is knocked out, center stays opaque.
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("expected transparent corner, got alpha %d", a)
	}
	if _, _, _, a := img.At(20, 20).RGBA(); a == 0 {
		t.Error("expected opaque center")
	}
}

func TestRoundCorners_RadiusClamped(t *testing.T) {
	// A radius larger than half the image is clamped instead of failing.
	data := testPNG(t, 20, 20)
	if _, err := RoundCorners(data, 500); err != nil {
		t.Fatalf("RoundCorners returned error: %v", err)
	}
}

func TestRoundCorners_BadRadius(t *testing.T) {
	if _, err := RoundCorners(nil, 0); !errors.Is(err, ErrBadDimensions) {
		t.Errorf("expected ErrBadDimensions, got %v", err)
	}
}

func TestRoundCorners_BadInput(t *testing.T) {
	if _, err := RoundCorners([]byte("not an image"), 5); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestOutsideCorner(t *testing.T) {
	// 100x100 image, radius 10: the exact corner is outside, the circle
	// center and the image middle are inside.
	if !outsideCorner(0, 0, 100, 100, 10) {
		t.Error("expected (0,0) to be outside")
	}
	if outsideCorner(10, 10, 100, 100, 10) {
		t.Error("expected circle center to be inside")
	}
	if outsideCorner(50, 50, 100, 100, 10) {
		t.Error("expected image center to be inside")
	}
	if !outsideCorner(99, 0, 100, 100, 10) {
		t.Error("expected (99,0) to be outside")
	}
}

func TestClamp(t *testing.T) {
	if clamp(300) != 255 {
		t.Errorf("expected 255, got %d", clamp(300))
	}
	if clamp(127.4) != 127 {
		t.Errorf("expected 127, got %d", clamp(127.4))
	}
	if clamp(0) != 0 {
		t.Errorf("expected 0, got %d", clamp(0))
	}
}
