// Package ocrdriver turns raw receipt media (images or PDFs) into text,
// running a multi-pass OCR strategy over noisy WhatsApp screenshots.
package ocrdriver

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ledongthuc/pdf"
	"github.com/otiai10/gosseract/v2"
)

// ErrUnsupportedMedia is returned when the mimetype is neither a supported
// image format nor "application/pdf".
var ErrUnsupportedMedia = errors.New("ocrdriver: unsupported media type")

// ErrEmptyText is returned when every OCR/extraction pass yields nothing.
var ErrEmptyText = errors.New("ocrdriver: no text recovered from media")

// TextFromMedia extracts text from a receipt attachment. PDFs go through
// direct text-layer extraction; everything else is treated as a raster
// image and run through the multi-pass OCR pipeline.
func TextFromMedia(data []byte, mimeType string) (string, error) {
	if mimeType == "application/pdf" {
		text, err := textFromPDF(data)
		if err != nil {
			return "", fmt.Errorf("ocrdriver: pdf extraction: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return "", ErrEmptyText
		}
		return text, nil
	}

	if !strings.HasPrefix(mimeType, "image/") {
		return "", ErrUnsupportedMedia
	}

	text, err := runAllOCRPasses(data)
	if err != nil {
		return "", fmt.Errorf("ocrdriver: image ocr: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

func textFromPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// runAllOCRPasses loads the image bytes, preprocesses several variants, and
// OCRs each with gosseract, aggregating every pass's output into one string
// that downstream amount/field extraction can scan.
func runAllOCRPasses(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 15)
	gray = imaging.Sharpen(gray, 0.7)
	if gray.Bounds().Dy() < 900 {
		gray = imaging.Resize(gray, 0, 1300, imaging.Lanczos)
	}
	base := binarize(gray, 210)
	adv := adaptiveThreshold(gray, 15, 7)
	adv = dilate(adv, 1)

	var variants []string

	if t, err := ocrImage(base, "0123456789RpARSIDRidri.,:()/- ", gosseract.PSM_AUTO); err == nil {
		variants = append(variants, t)
	}
	if t, err := ocrImage(base, "0123456789., ", gosseract.PSM_AUTO); err == nil {
		variants = append(variants, t)
	}
	if t, err := ocrImage(gray, "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyzRpARSIDRidri.,:()/- $", gosseract.PSM_AUTO); err == nil {
		variants = append(variants, t)
	}

	half := gray.Bounds().Dy() / 2
	if half > 50 {
		top := imaging.Crop(gray, image.Rect(0, 0, gray.Bounds().Dx(), half))
		if t, err := ocrImage(top, "0123456789RpARSIDRidri.,:()/- $", gosseract.PSM_AUTO); err == nil {
			variants = append(variants, t)
		}
	}

	inv := imaging.Invert(gray)
	if t, err := ocrImage(inv, "0123456789RpARSIDRidri.,:()/- $", gosseract.PSM_AUTO); err == nil {
		variants = append(variants, t)
	}

	if t, err := ocrImage(adv, "0123456789RpARSIDRidri.,:()/- $", gosseract.PSM_AUTO); err == nil {
		variants = append(variants, t)
	}

	for _, mode := range []gosseract.PageSegMode{gosseract.PSM_SINGLE_BLOCK, gosseract.PSM_SPARSE_TEXT} {
		if t, err := ocrImage(gray, "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyzRpARSIDRidri.,:()/- $", mode); err == nil {
			variants = append(variants, t)
		}
	}

	aggregate := strings.Join(variants, "\n")
	log.Printf("ocrdriver: ran %d passes, aggregate length=%d", len(variants), len(aggregate))
	return aggregate, nil
}

// ocrImage saves img to a temp PNG (gosseract only reads from disk) and runs
// a single OCR pass with the given whitelist and page segmentation mode.
func ocrImage(img image.Image, whitelist string, mode gosseract.PageSegMode) (string, error) {
	tmp, err := os.CreateTemp("", "receipt-ocr-*.png")
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(path)

	if err := imaging.Save(img, path); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage("spa", "eng"); err != nil {
		return "", err
	}
	if err := client.SetWhitelist(whitelist); err != nil {
		return "", err
	}
	if err := client.SetPageSegMode(mode); err != nil {
		return "", err
	}
	if err := client.SetImage(path); err != nil {
		return "", err
	}
	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return normalizeOCRText(text), nil
}

func normalizeOCRText(t string) string {
	t = strings.ReplaceAll(t, "\t", " ")
	lines := strings.Split(t, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.Join(lines, "\n")
}
