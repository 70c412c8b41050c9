package dataset

import "fmt"

// Local (decompressed) file names shared by both sources.
const (
	trainImagesFile = "train-images-idx3-ubyte"
	trainLabelsFile = "train-labels-idx1-ubyte"
	testImagesFile  = "t10k-images-idx3-ubyte"
	testLabelsFile  = "t10k-labels-idx1-ubyte"
)

// Source describes where a dataset lives and how to interpret it.
//
// Both built-in sources use the classic MNIST IDX layout: four gzipped
// files (train/test images and labels) of 28x28 grayscale images with
// labels 0-9.
type Source struct {
	// Name identifies the source ("mnist" or "fashion").
	Name string

	// BaseURL is the HTTP mirror the four .gz files are fetched from.
	BaseURL string

	// Classes maps label index to a human-readable class name.
	Classes []string

	// Mean and Std are the per-pixel statistics used for optional
	// standardization after scaling pixels to [0, 1].
	Mean float32
	Std  float32

	// digests maps remote file name to the sha256 of the gzip payload.
	// An empty map (or missing entry) disables verification for that file.
	digests map[string]string
}

// MNIST is the classic handwritten digits dataset (LeCun et al.).
//
// The original yann.lecun.com host frequently rejects anonymous
// downloads, so the CVDF mirror on Google Cloud Storage is used instead.
var MNIST = Source{
	Name:    "mnist",
	BaseURL: "https://storage.googleapis.com/cvdf-datasets/mnist/",
	Classes: []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"},
	Mean:    0.1307,
	Std:     0.3081,
	digests: map[string]string{
		trainImagesFile + ".gz": "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609",
		trainLabelsFile + ".gz": "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c",
		testImagesFile + ".gz":  "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6",
		testLabelsFile + ".gz":  "f7ae60f92e00ec6debd23a6088c31dbd2371eca3ffa0defaefb259924204aec6",
	},
}

// FashionMNIST is Zalando's drop-in MNIST replacement: ten clothing
// categories in the same IDX format. The upstream mirror publishes no
// sha256 digests, so downloads are not verified.
var FashionMNIST = Source{
	Name:    "fashion",
	BaseURL: "http://fashion-mnist.s3-website.eu-central-1.amazonaws.com/",
	Classes: []string{
		"T-shirt/top", "Trouser", "Pullover", "Dress", "Coat",
		"Sandal", "Shirt", "Sneaker", "Bag", "Ankle boot",
	},
	Mean: 0.2860,
	Std:  0.3530,
}

// SourceByName resolves a dataset name from config or the command line.
func SourceByName(name string) (Source, error) {
	switch name {
	case MNIST.Name:
		return MNIST, nil
	case FashionMNIST.Name:
		return FashionMNIST, nil
	default:
		return Source{}, fmt.Errorf("unknown dataset %q (want %q or %q)", name, MNIST.Name, FashionMNIST.Name)
	}
}

// files returns the local file names for the train or test split.
func files(train bool) (images, labels string) {
	if train {
		return trainImagesFile, trainLabelsFile
	}
	return testImagesFile, testLabelsFile
}
