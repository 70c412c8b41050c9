package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// IDX magic numbers for the two file kinds used by MNIST-style datasets.
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// readIDXImages reads an MNIST image file in IDX format.
//
// Layout:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes (28)
//	number of cols: 4 bytes (28)
//	pixel data: unsigned bytes (0-255)
func readIDXImages(filename string) ([][]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return decodeIDXImages(file)
}

func decodeIDXImages(r io.Reader) ([][]byte, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != idxImagesMagic {
		return nil, fmt.Errorf("invalid magic number: got %d, want %d", magic, idxImagesMagic)
	}

	var numImages, numRows, numCols uint32
	if err := binary.Read(r, binary.BigEndian, &numImages); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &numRows); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &numCols); err != nil {
		return nil, err
	}
	if numRows != ImageSize || numCols != ImageSize {
		return nil, fmt.Errorf("unexpected image dimensions: got %dx%d, want %dx%d",
			numRows, numCols, ImageSize, ImageSize)
	}

	imageSize := int(numRows * numCols)
	images := make([][]byte, numImages)
	for i := range images {
		images[i] = make([]byte, imageSize)
		if _, err := io.ReadFull(r, images[i]); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
	}
	return images, nil
}

// readIDXLabels reads an MNIST label file in IDX format.
//
// Layout:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes (0-9)
func readIDXLabels(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return decodeIDXLabels(file)
}

func decodeIDXLabels(r io.Reader) ([]byte, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != idxLabelsMagic {
		return nil, fmt.Errorf("invalid magic number: got %d, want %d", magic, idxLabelsMagic)
	}

	var numLabels uint32
	if err := binary.Read(r, binary.BigEndian, &numLabels); err != nil {
		return nil, err
	}

	labels := make([]byte, numLabels)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	for i, l := range labels {
		if l > 9 {
			return nil, fmt.Errorf("label out of range [0, 9] at index %d: %d", i, l)
		}
	}
	return labels, nil
}
