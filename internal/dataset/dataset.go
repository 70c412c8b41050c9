// Package dataset downloads and decodes MNIST-style image datasets and
// turns them into Born tensor batches.
//
// The package only does glue work: file fetching, IDX decoding, pixel
// scaling and batching. All tensor storage and math belongs to the
// framework.
package dataset

import (
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/born-ml/born/tensor"
)

// Image geometry shared by MNIST and Fashion-MNIST.
const (
	ImageSize  = 28
	NumPixels  = ImageSize * ImageSize
	NumClasses = 10
)

// Dataset holds a decoded split: one flattened [0, 1] (optionally
// standardized) pixel vector per sample plus its class index.
type Dataset struct {
	Images  [][]float32 // [num_samples][784]
	Labels  []int32     // [num_samples], values 0-9
	Classes []string    // label index -> class name
}

// Load reads the train or test split of a source from dir.
//
// Pixels are scaled from 0-255 to [0, 1]. With standardize set, they
// are additionally shifted and scaled by the source's per-pixel mean
// and standard deviation, matching the common tutorial preprocessing.
func Load(dir string, src Source, train, standardize bool) (*Dataset, error) {
	imageFile, labelFile := files(train)

	imagesRaw, err := readIDXImages(filepath.Join(dir, imageFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	labelsRaw, err := readIDXLabels(filepath.Join(dir, labelFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}
	if len(imagesRaw) != len(labelsRaw) {
		return nil, fmt.Errorf("image count (%d) != label count (%d)", len(imagesRaw), len(labelsRaw))
	}

	d := &Dataset{
		Images:  make([][]float32, len(imagesRaw)),
		Labels:  make([]int32, len(labelsRaw)),
		Classes: src.Classes,
	}
	for i, raw := range imagesRaw {
		pixels := make([]float32, NumPixels)
		for j, p := range raw {
			pixels[j] = float32(p) / 255.0
			if standardize {
				pixels[j] = (pixels[j] - src.Mean) / src.Std
			}
		}
		d.Images[i] = pixels
		d.Labels[i] = int32(labelsRaw[i])
	}
	return d, nil
}

// Len returns the number of samples in the dataset.
func (d *Dataset) Len() int {
	return len(d.Images)
}

// Split carves off the last valRatio fraction of the dataset as a
// validation set. The split is positional; shuffle at batching time.
func (d *Dataset) Split(valRatio float32) (train, val *Dataset) {
	splitIdx := int(float32(d.Len()) * (1.0 - valRatio))
	train = &Dataset{
		Images:  d.Images[:splitIdx],
		Labels:  d.Labels[:splitIdx],
		Classes: d.Classes,
	}
	val = &Dataset{
		Images:  d.Images[splitIdx:],
		Labels:  d.Labels[splitIdx:],
		Classes: d.Classes,
	}
	return train, val
}

// Batch is one mini-batch, already materialized as framework tensors.
type Batch[B tensor.Backend] struct {
	Images *tensor.Tensor[float32, B] // [batch_size, 784]
	Labels *tensor.Tensor[int32, B]   // [batch_size]
	Size   int
}

// Batches splits the dataset into mini-batches of framework tensors.
//
// With shuffle set, samples are reordered with a seeded Fisher-Yates
// shuffle so epochs are reproducible for a given seed. Images and
// labels are permuted through the same index table and can never
// desynchronize. The final batch may be smaller than batchSize.
func Batches[B tensor.Backend](d *Dataset, batchSize int, shuffle bool, seed int64, backend B) ([]*Batch[B], error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be > 0, got %d", batchSize)
	}
	numSamples := d.Len()
	if numSamples != len(d.Labels) {
		return nil, fmt.Errorf("images and labels length mismatch")
	}

	indices := make([]int, numSamples)
	for i := range indices {
		indices[i] = i
	}
	if shuffle {
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(numSamples, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	numBatches := (numSamples + batchSize - 1) / batchSize
	batches := make([]*Batch[B], 0, numBatches)

	for start := 0; start < numSamples; start += batchSize {
		end := start + batchSize
		if end > numSamples {
			end = numSamples
		}
		size := end - start

		pixels := make([]float32, 0, size*NumPixels)
		labels := make([]int32, 0, size)
		for _, idx := range indices[start:end] {
			pixels = append(pixels, d.Images[idx]...)
			labels = append(labels, d.Labels[idx])
		}

		images, err := tensor.FromSlice(pixels, tensor.Shape{size, NumPixels}, backend)
		if err != nil {
			return nil, fmt.Errorf("failed to create images tensor: %w", err)
		}
		targets, err := tensor.FromSlice(labels, tensor.Shape{size}, backend)
		if err != nil {
			return nil, fmt.Errorf("failed to create labels tensor: %w", err)
		}

		batches = append(batches, &Batch[B]{
			Images: images,
			Labels: targets,
			Size:   size,
		})
	}
	return batches, nil
}
