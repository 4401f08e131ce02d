package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
)

const IllustrationSize = 512

// WhitenBackgroundFeathered pushes near-white background pixels to pure white,
// blending between lowerThreshold and upperThreshold luminance so edges stay soft.
// The central centralProtectionRatio share of the picture, where the garment
// sits, is left untouched.
func WhitenBackgroundFeathered(imageBytes []byte, lowerThreshold, upperThreshold uint8, centralProtectionRatio float64) ([]byte, error) {
	if lowerThreshold >= upperThreshold {
		return nil, fmt.Errorf("lowerThreshold must be less than upperThreshold")
	}
	if centralProtectionRatio < 0.0 || centralProtectionRatio > 1.0 {
		return nil, fmt.Errorf("centralProtectionRatio must be between 0.0 and 1.0")
	}

	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Max.X, bounds.Max.Y
	newImg := image.NewRGBA(bounds)

	protectedWidth := int(float64(width) * centralProtectionRatio)
	protectedHeight := int(float64(height) * centralProtectionRatio)
	x0 := (width - protectedWidth) / 2
	y0 := (height - protectedHeight) / 2
	x1 := x0 + protectedWidth
	y1 := y0 + protectedHeight

	transitionRange := float64(upperThreshold - lowerThreshold)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			originalColor := img.At(x, y)

			if x >= x0 && x < x1 && y >= y0 && y < y1 {
				newImg.Set(x, y, originalColor)
				continue
			}

			r, g, b, a := originalColor.RGBA()
			r8 := uint8(r >> 8)
			g8 := uint8(g >> 8)
			b8 := uint8(b >> 8)
			a8 := uint8(a >> 8)

			luminance := 0.299*float64(r8) + 0.587*float64(g8) + 0.114*float64(b8)

			if luminance <= float64(lowerThreshold) {
				newImg.Set(x, y, originalColor)
			} else if luminance >= float64(upperThreshold) {
				newImg.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: a8})
			} else {
				// linear blend towards white
				blendFactor := (luminance - float64(lowerThreshold)) / transitionRange
				newR := uint8(math.Round(float64(r8)*(1.0-blendFactor) + 255.0*blendFactor))
				newG := uint8(math.Round(float64(g8)*(1.0-blendFactor) + 255.0*blendFactor))
				newB := uint8(math.Round(float64(b8)*(1.0-blendFactor) + 255.0*blendFactor))

				newImg.Set(x, y, color.RGBA{R: newR, G: newG, B: newB, A: a8})
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, newImg); err != nil {
		return nil, fmt.Errorf("failed to encode image to png: %w", err)
	}
	return buf.Bytes(), nil
}

// NormalizeIllustration whitens the background of a generated item picture and
// fits it into a square thumbnail on a white canvas, encoded as PNG.
func NormalizeIllustration(imageBytes []byte) ([]byte, error) {
	whitened, err := WhitenBackgroundFeathered(imageBytes, 200, 245, 0.6)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(whitened))
	if err != nil {
		return nil, fmt.Errorf("failed to decode whitened image: %w", err)
	}
	fitted := imaging.Fit(img, IllustrationSize, IllustrationSize, imaging.Lanczos)
	canvas := imaging.New(IllustrationSize, IllustrationSize, color.White)
	canvas = imaging.PasteCenter(canvas, fitted)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode illustration: %w", err)
	}
	return buf.Bytes(), nil
}
