// Package model defines the feed-forward classifier used by both
// lessons. The network itself is a plain composition of Born layers;
// nothing here computes gradients or touches raw tensor math.
package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"

	"github.com/nagbansi/deep-learning-v2-pytorch/internal/dataset"
)

// DefaultHidden matches the tutorial architecture: 784 -> 128 -> 64 -> 10.
var DefaultHidden = []int{128, 64}

// Classifier is a fully connected network over flattened 28x28 images.
//
// Each hidden layer is Linear followed by ReLU; the output layer
// produces raw logits over the ten classes. CrossEntropyLoss applies
// the softmax internally, so Forward must not.
type Classifier[B tensor.Backend] struct {
	hidden []int
	net    *nn.Sequential[B]
}

// New builds a classifier with the given hidden layer sizes.
// An empty slice falls back to DefaultHidden.
func New[B tensor.Backend](hidden []int, backend B) *Classifier[B] {
	if len(hidden) == 0 {
		hidden = DefaultHidden
	}

	net := nn.NewSequential[B]()
	in := dataset.NumPixels
	for _, h := range hidden {
		net.Add(nn.NewLinear(in, h, backend))
		net.Add(nn.NewReLU[B]())
		in = h
	}
	net.Add(nn.NewLinear(in, dataset.NumClasses, backend))

	return &Classifier[B]{
		hidden: append([]int(nil), hidden...),
		net:    net,
	}
}

// Forward computes class logits for a batch of flattened images.
//
// Accepts [batch_size, 784] or a single [784] sample, which is
// promoted to a batch of one.
func (c *Classifier[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) == 1 {
		input = input.Reshape(1, dataset.NumPixels)
	} else if len(shape) != 2 || shape[1] != dataset.NumPixels {
		panic(fmt.Sprintf("Classifier: input must have shape [batch_size, %d] or [%d], got %v",
			dataset.NumPixels, dataset.NumPixels, shape))
	}
	return c.net.Forward(input)
}

// Parameters returns all trainable parameters for the optimizer.
func (c *Classifier[B]) Parameters() []*nn.Parameter[B] {
	return c.net.Parameters()
}

// StateDict exposes the underlying Sequential state for serialization.
func (c *Classifier[B]) StateDict() map[string]*tensor.RawTensor {
	return c.net.StateDict()
}

// LoadStateDict restores parameters saved by StateDict.
func (c *Classifier[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return c.net.LoadStateDict(stateDict)
}

// Hidden returns the hidden layer sizes the network was built with.
func (c *Classifier[B]) Hidden() []int {
	return append([]int(nil), c.hidden...)
}

// NumParameters counts the trainable scalars in the network.
func (c *Classifier[B]) NumParameters() int {
	total := 0
	for _, param := range c.Parameters() {
		count := 1
		for _, dim := range param.Tensor().Shape() {
			count *= dim
		}
		total += count
	}
	return total
}

// Checkpoint metadata keys written by Save.
const (
	MetaDataset     = "dataset"
	MetaHidden      = "hidden"
	MetaStandardize = "standardize"
)

// Save writes the classifier to a .born checkpoint. The dataset name,
// architecture and preprocessing flag travel in the file metadata so
// evaluate/predict can rebuild an identical pipeline before loading
// weights.
func Save[B tensor.Backend](c *Classifier[B], path, datasetName string, standardize bool) error {
	metadata := map[string]string{
		MetaDataset:     datasetName,
		MetaHidden:      formatHidden(c.hidden),
		MetaStandardize: strconv.FormatBool(standardize),
	}
	return nn.Save[B](c, path, "Classifier", metadata)
}

// LoadCheckpoint rebuilds a classifier from a .born checkpoint written
// by Save and returns it together with the checkpoint metadata.
//
// The architecture is taken from the caller (it is part of the training
// config); the file's recorded architecture is cross-checked so a
// checkpoint can never be silently loaded into a mismatched network.
func LoadCheckpoint[B tensor.Backend](path string, hidden []int, backend B) (*Classifier[B], map[string]string, error) {
	if len(hidden) == 0 {
		hidden = DefaultHidden
	}
	c := New(hidden, backend)

	header, err := nn.Load[B](path, backend, c)
	if err != nil {
		return nil, nil, fmt.Errorf("load checkpoint %s: %w", path, err)
	}

	if want := header.Metadata[MetaHidden]; want != "" && want != formatHidden(hidden) {
		return nil, nil, fmt.Errorf("checkpoint %s was trained with hidden layers [%s], got [%s]",
			path, want, formatHidden(hidden))
	}
	return c, header.Metadata, nil
}

// ParseHidden parses a comma-separated list of hidden layer sizes,
// e.g. "128,64".
func ParseHidden(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	hidden := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid hidden layer size %q: %w", p, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("hidden layer size must be > 0, got %d", n)
		}
		hidden = append(hidden, n)
	}
	return hidden, nil
}

func formatHidden(hidden []int) string {
	parts := make([]string, len(hidden))
	for i, h := range hidden {
		parts[i] = strconv.Itoa(h)
	}
	return strings.Join(parts, ",")
}
