// Package metrics accumulates training throughput numbers and
// classification quality measures for the progress output.
package metrics

import "time"

// Window accumulates per-batch timing stats across one epoch.
type Window struct {
	samples  int
	data     time.Duration
	compute  time.Duration
	steps    int
	lastLoss float64
}

// Record adds one batch measurement to the window.
func (w *Window) Record(batchSize int, dataTime, computeTime time.Duration, loss float64) {
	w.samples += batchSize
	w.data += dataTime
	w.compute += computeTime
	w.steps++
	w.lastLoss = loss
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{}
	total := w.data + w.compute
	if total > 0 {
		snap.ImagesPerSec = float64(w.samples) / total.Seconds()
	}
	if w.steps > 0 {
		snap.AvgDataMS = (w.data.Seconds() * 1000) / float64(w.steps)
		snap.AvgComputeMS = (w.compute.Seconds() * 1000) / float64(w.steps)
	}
	snap.LastLoss = w.lastLoss

	*w = Window{}
	return snap
}

// Snapshot represents loggable throughput metrics.
type Snapshot struct {
	ImagesPerSec float64
	AvgDataMS    float64
	AvgComputeMS float64
	LastLoss     float64
}

// Confusion is a square confusion matrix over class indices.
// Rows are true classes, columns are predicted classes.
type Confusion struct {
	counts [][]int
}

// NewConfusion creates an empty numClasses x numClasses matrix.
func NewConfusion(numClasses int) *Confusion {
	counts := make([][]int, numClasses)
	for i := range counts {
		counts[i] = make([]int, numClasses)
	}
	return &Confusion{counts: counts}
}

// Observe records one (true label, predicted label) pair.
// Out-of-range labels are ignored.
func (c *Confusion) Observe(label, predicted int) {
	if label < 0 || label >= len(c.counts) || predicted < 0 || predicted >= len(c.counts) {
		return
	}
	c.counts[label][predicted]++
}

// ObserveBatch records a batch of label/prediction pairs.
func (c *Confusion) ObserveBatch(labels, predicted []int32) {
	n := len(labels)
	if len(predicted) < n {
		n = len(predicted)
	}
	for i := 0; i < n; i++ {
		c.Observe(int(labels[i]), int(predicted[i]))
	}
}

// Count returns the number of samples with the given true label that
// were predicted as the given class.
func (c *Confusion) Count(label, predicted int) int {
	return c.counts[label][predicted]
}

// Total returns the number of observed samples.
func (c *Confusion) Total() int {
	total := 0
	for _, row := range c.counts {
		for _, n := range row {
			total += n
		}
	}
	return total
}

// Accuracy returns the overall fraction of correct predictions, 0 when
// nothing has been observed.
func (c *Confusion) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	correct := 0
	for i := range c.counts {
		correct += c.counts[i][i]
	}
	return float64(correct) / float64(total)
}

// ClassAccuracy returns (correct, total, fraction) for one true class.
// The fraction is 0 when the class never occurred.
func (c *Confusion) ClassAccuracy(label int) (correct, total int, acc float64) {
	for predicted, n := range c.counts[label] {
		total += n
		if predicted == label {
			correct = n
		}
	}
	if total > 0 {
		acc = float64(correct) / float64(total)
	}
	return correct, total, acc
}
