package ocrdriver

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/lucianoflow8/FlowTracking-Backend/internal/amount"
)

const (
	tileCols = 4
	tileRows = 6
)

// VisualAmountFallback is the last-resort amount recovery pass: it tiles the
// Mercado Pago header region (x 4%-70%, y 8%-48% of the image) into a 4x6
// grid, OCRs every tile through three preprocess variants
// and two page segmentation modes, and runs the amount finder over each
// tile's text. It returns the largest plausible amount found across tiles,
// since the tile containing the headline amount is unknown ahead of time.
func VisualAmountFallback(data []byte) (float64, bool) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, false
	}

	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 20)

	variants := []image.Image{
		gray,
		binarize(gray, 200),
		dilate(adaptiveThreshold(gray, 21, 10), 1),
	}
	modes := []gosseract.PageSegMode{gosseract.PSM_SINGLE_BLOCK, gosseract.PSM_SPARSE_TEXT}

	w := gray.Bounds().Dx()
	h := gray.Bounds().Dy()
	// Region of interest: the header area where the headline amount sits.
	roiX0, roiX1 := int(0.04*float64(w)), int(0.70*float64(w))
	roiY0, roiY1 := int(0.08*float64(h)), int(0.48*float64(h))
	tileW := (roiX1 - roiX0) / tileCols
	tileH := (roiY1 - roiY0) / tileRows

	best := 0.0
	found := false

	for row := 0; row < tileRows; row++ {
		for col := 0; col < tileCols; col++ {
			x0, y0 := roiX0+col*tileW, roiY0+row*tileH
			x1, y1 := x0+tileW, y0+tileH
			if col == tileCols-1 {
				x1 = roiX1
			}
			if row == tileRows-1 {
				y1 = roiY1
			}
			if x1 <= x0 || y1 <= y0 {
				continue
			}
			rect := image.Rect(x0, y0, x1, y1)

			for _, variant := range variants {
				cropped := imaging.Crop(variant, rect)
				for _, mode := range modes {
					text, err := ocrImage(cropped, "0123456789RpARSIDRidri.,:()/- $", mode)
					if err != nil || text == "" {
						continue
					}
					if v, ok := amount.Find(text); ok && v > best {
						best = v
						found = true
					}
				}
			}
		}
	}

	return best, found
}
