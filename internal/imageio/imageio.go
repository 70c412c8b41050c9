// Package imageio converts user-supplied image files into the flat
// 28x28 grayscale vectors the classifier expects, and renders such
// vectors as terminal ASCII art.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"golang.org/x/image/draw"

	"github.com/nagbansi/deep-learning-v2-pytorch/internal/dataset"
)

// LoadGrayscale decodes a PNG or JPEG file, scales it to 28x28 and
// returns the 784 luminance values in [0, 1].
//
// MNIST digits are bright strokes on a dark background; a photo or a
// sketch drawn in a paint program is usually the opposite. Pass invert
// to flip the polarity.
func LoadGrayscale(path string, invert bool) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	dst := image.NewGray(image.Rect(0, 0, dataset.ImageSize, dataset.ImageSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	pixels := make([]float32, dataset.NumPixels)
	for y := 0; y < dataset.ImageSize; y++ {
		for x := 0; x < dataset.ImageSize; x++ {
			g := color.GrayModel.Convert(dst.At(x, y)).(color.Gray)
			v := float32(g.Y) / 255.0
			if invert {
				v = 1.0 - v
			}
			pixels[y*dataset.ImageSize+x] = v
		}
	}
	return pixels, nil
}

// Standardize shifts and scales pixels in place with the dataset's
// per-pixel statistics, mirroring the training-time preprocessing.
func Standardize(pixels []float32, mean, std float32) {
	for i := range pixels {
		pixels[i] = (pixels[i] - mean) / std
	}
}

// asciiRamp maps dark to bright, left to right.
const asciiRamp = " .:-=+*#%@"

// ASCII renders a flat 28x28 [0, 1] image as terminal art, one rune
// per pixel.
func ASCII(pixels []float32) string {
	var b strings.Builder
	for y := 0; y < dataset.ImageSize; y++ {
		for x := 0; x < dataset.ImageSize; x++ {
			v := pixels[y*dataset.ImageSize+x]
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			idx := int(v * float32(len(asciiRamp)-1))
			b.WriteByte(asciiRamp[idx])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
