package intake

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// maxImageDimension bounds the longest side of an image sent to the
// vision backend. Phone cameras produce 4000px photos; the backend
// reads text fine at this size and the upload stays small.
const maxImageDimension = 1600

const jpegQuality = 85

// normalizeReceiptImage decodes a channel photo, scales it down when
// either side exceeds the dimension bound, and re-encodes it as JPEG so
// the backend always sees one color mode regardless of what the sender
// uploaded.
func normalizeReceiptImage(raw []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image has empty bounds")
	}

	dstW, dstH := w, h
	if w > maxImageDimension || h > maxImageDimension {
		if w >= h {
			dstW = maxImageDimension
			dstH = h * maxImageDimension / w
		} else {
			dstH = maxImageDimension
			dstW = w * maxImageDimension / h
		}
		if dstW < 1 {
			dstW = 1
		}
		if dstH < 1 {
			dstH = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}
