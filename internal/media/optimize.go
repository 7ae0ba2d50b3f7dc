package media

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	maxImageSide = 800
	jpegQuality  = 80
)

// OptimizeImage decodes data, fits it within 800x800 keeping aspect ratio and
// re-encodes it as JPEG.
func OptimizeImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	fitted := imaging.Fit(img, maxImageSide, maxImageSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
