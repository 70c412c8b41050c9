package dataset

// Synthetic builds a small fake dataset with one crude pattern per
// class: class k lights up a horizontal band starting at row 2k. The
// patterns carry enough signal for a classifier to separate them, which
// makes the full training pipeline runnable without any downloads.
func Synthetic(samplesPerClass int) *Dataset {
	n := samplesPerClass * NumClasses
	d := &Dataset{
		Images:  make([][]float32, n),
		Labels:  make([]int32, n),
		Classes: MNIST.Classes,
	}

	for i := 0; i < n; i++ {
		class := i % NumClasses
		pixels := make([]float32, NumPixels)

		startRow := class * 2
		for row := startRow; row < startRow+6 && row < ImageSize; row++ {
			for col := 4; col < ImageSize-4; col++ {
				pixels[row*ImageSize+col] = 0.9
			}
		}
		// Vary intensity slightly between repeats of the same class so
		// batches are not byte-identical.
		jitter := float32(i/NumClasses%5) * 0.02
		for j := range pixels {
			if pixels[j] > 0 {
				pixels[j] -= jitter
			}
		}

		d.Images[i] = pixels
		d.Labels[i] = int32(class)
	}
	return d
}
