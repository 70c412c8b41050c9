package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSplit writes IDX files for one dataset split into dir.
func writeSplit(t *testing.T, dir string, train bool, images [][]byte, labels []byte) {
	t.Helper()
	imageFile, labelFile := files(train)
	require.NoError(t, os.WriteFile(filepath.Join(dir, imageFile), buildIDXImages(images), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, labelFile), buildIDXLabels(labels), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeSplit(t, dir, true,
		[][]byte{testImage(0), testImage(255), testImage(128)},
		[]byte{1, 2, 3},
	)

	d, err := Load(dir, MNIST, true, false)
	require.NoError(t, err)

	assert.Equal(t, 3, d.Len())
	assert.Equal(t, []int32{1, 2, 3}, d.Labels)
	assert.Equal(t, MNIST.Classes, d.Classes)

	// Pixels scale 0-255 -> [0, 1].
	assert.Equal(t, float32(0), d.Images[0][0])
	assert.Equal(t, float32(1), d.Images[1][0])
	assert.InDelta(t, 128.0/255.0, d.Images[2][0], 1e-6)
}

func TestLoadStandardize(t *testing.T) {
	dir := t.TempDir()
	writeSplit(t, dir, false, [][]byte{testImage(255)}, []byte{0})

	d, err := Load(dir, MNIST, false, true)
	require.NoError(t, err)

	want := (1.0 - MNIST.Mean) / MNIST.Std
	assert.InDelta(t, want, d.Images[0][0], 1e-5)
}

func TestLoadCountMismatch(t *testing.T) {
	dir := t.TempDir()
	writeSplit(t, dir, true, [][]byte{testImage(0), testImage(1)}, []byte{0})

	_, err := Load(dir, MNIST, true, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image count")
}

func TestSplit(t *testing.T) {
	d := Synthetic(10) // 100 samples
	train, val := d.Split(0.2)

	assert.Equal(t, 80, train.Len())
	assert.Equal(t, 20, val.Len())
	assert.Equal(t, d.Len(), train.Len()+val.Len())
}

func TestBatches(t *testing.T) {
	backend := cpu.New()
	d := Synthetic(1) // 10 samples

	batches, err := Batches(d, 4, false, 0, backend)
	require.NoError(t, err)

	// 10 samples at batch size 4: 4 + 4 + 2.
	require.Len(t, batches, 3)
	assert.Equal(t, 4, batches[0].Size)
	assert.Equal(t, 2, batches[2].Size)
	assert.True(t, batches[0].Images.Shape().Equal(tensor.Shape{4, NumPixels}))
	assert.True(t, batches[2].Labels.Shape().Equal(tensor.Shape{2}))

	// Without shuffling, labels keep dataset order.
	assert.Equal(t, []int32{0, 1, 2, 3}, batches[0].Labels.Data())
}

func TestBatchesShuffleReproducible(t *testing.T) {
	backend := cpu.New()
	d := Synthetic(4) // 40 samples

	a, err := Batches(d, 8, true, 7, backend)
	require.NoError(t, err)
	b, err := Batches(d, 8, true, 7, backend)
	require.NoError(t, err)
	c, err := Batches(d, 8, true, 8, backend)
	require.NoError(t, err)

	assert.Equal(t, a[0].Labels.Data(), b[0].Labels.Data(), "same seed must give same order")
	assert.NotEqual(t, a[0].Labels.Data(), c[0].Labels.Data(), "different seed should reorder")
}

func TestBatchesShuffleKeepsPairs(t *testing.T) {
	backend := cpu.New()
	d := Synthetic(2) // 20 samples, label k has its band at row 2k

	batches, err := Batches(d, 5, true, 99, backend)
	require.NoError(t, err)

	for _, batch := range batches {
		labels := batch.Labels.Data()
		pixels := batch.Images.Data()
		for i, label := range labels {
			// The first lit pixel of the synthetic pattern reveals the class.
			row := 2 * int(label)
			idx := i*NumPixels + row*ImageSize + 4
			assert.Greater(t, pixels[idx], float32(0), "image desynchronized from label %d", label)
		}
	}
}

func TestBatchesRejectsBadSize(t *testing.T) {
	backend := cpu.New()
	_, err := Batches(Synthetic(1), 0, false, 0, backend)
	require.Error(t, err)
}

func TestSourceByName(t *testing.T) {
	src, err := SourceByName("fashion")
	require.NoError(t, err)
	assert.Equal(t, FashionMNIST.BaseURL, src.BaseURL)
	assert.Len(t, src.Classes, NumClasses)

	_, err = SourceByName("cifar")
	require.Error(t, err)
}

func TestSynthetic(t *testing.T) {
	d := Synthetic(3)
	assert.Equal(t, 30, d.Len())
	for i, label := range d.Labels {
		assert.Equal(t, int32(i%NumClasses), label)
	}
}
