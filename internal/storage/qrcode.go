package storage

import (
	"context"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRCodeFor encodes the image URL into a 256px QR PNG, stores it next to the
// image objects and returns the public URL of the code.
func (s *Store) QRCodeFor(ctx context.Context, imageID uint64, imageURL string) (string, error) {
	png, err := qrcode.Encode(imageURL, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	key := fmt.Sprintf("qrcodes/%d.png", imageID)
	return s.Upload(ctx, key, png, "image/png")
}

// DeleteQRCode removes the stored QR code object for an image.
func (s *Store) DeleteQRCode(ctx context.Context, imageID uint64) error {
	return s.Delete(ctx, fmt.Sprintf("qrcodes/%d.png", imageID))
}
