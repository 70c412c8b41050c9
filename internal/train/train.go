// Package train runs the tape-based training loop: forward pass, loss,
// backward pass, optimizer step, repeated over shuffled mini-batches.
// Every numeric operation is delegated to the framework; this package
// only sequences the calls.
package train

import (
	"fmt"
	"time"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/optim"
	"github.com/born-ml/born/tensor"

	"github.com/nagbansi/deep-learning-v2-pytorch/internal/config"
	"github.com/nagbansi/deep-learning-v2-pytorch/internal/dataset"
	"github.com/nagbansi/deep-learning-v2-pytorch/internal/metrics"
	"github.com/nagbansi/deep-learning-v2-pytorch/internal/model"
)

// EpochStats summarizes one epoch for the progress output.
type EpochStats struct {
	Epoch       int
	Loss        float32
	Accuracy    float32
	ValLoss     float32
	ValAccuracy float32
	Throughput  metrics.Snapshot
	Duration    time.Duration
}

// Trainer drives gradient descent for a classifier on an
// autodiff-wrapped backend.
type Trainer[B tensor.Backend] struct {
	backend   *autodiff.Backend[B]
	model     *model.Classifier[*autodiff.Backend[B]]
	criterion *nn.CrossEntropyLoss[*autodiff.Backend[B]]
	optimizer optim.Optimizer
	cfg       *config.Config
}

// New builds a trainer with the optimizer named in the config.
func New[B tensor.Backend](
	m *model.Classifier[*autodiff.Backend[B]],
	backend *autodiff.Backend[B],
	cfg *config.Config,
) (*Trainer[B], error) {
	var optimizer optim.Optimizer
	switch cfg.Optimizer {
	case config.OptimizerSGD:
		optimizer = optim.NewSGD(m.Parameters(), optim.SGDConfig{
			LR:       cfg.LR,
			Momentum: cfg.Momentum,
		}, backend)
	case config.OptimizerAdam:
		optimizer = optim.NewAdam(m.Parameters(), optim.AdamConfig{
			LR:    cfg.LR,
			Betas: [2]float32{0.9, 0.999},
			Eps:   1e-8,
		}, backend)
	default:
		return nil, fmt.Errorf("unknown optimizer %q", cfg.Optimizer)
	}

	return &Trainer[B]{
		backend:   backend,
		model:     m,
		criterion: nn.NewCrossEntropyLoss(backend),
		optimizer: optimizer,
		cfg:       cfg,
	}, nil
}

// Optimizer exposes the optimizer, mainly so callers can report the
// current learning rate.
func (t *Trainer[B]) Optimizer() optim.Optimizer {
	return t.optimizer
}

// Run trains for the configured number of epochs, validating after
// each one. The progress callback (if non-nil) fires once per epoch.
//
// Batches are reshuffled every epoch with a seed derived from the
// configured one, so a run is reproducible end to end.
func (t *Trainer[B]) Run(trainSet, valSet *dataset.Dataset, progress func(EpochStats)) ([]EpochStats, error) {
	if trainSet.Len() == 0 {
		return nil, fmt.Errorf("training set is empty")
	}

	// Gradient recording stays on for the whole run; validation pauses
	// it batch-free via Evaluate.
	t.backend.Tape().StartRecording()
	defer t.backend.Tape().StopRecording()

	var valBatches []*dataset.Batch[*autodiff.Backend[B]]
	if valSet != nil && valSet.Len() > 0 {
		// Larger batches for validation: forward-only, no tape cost.
		vb, err := dataset.Batches(valSet, 256, false, 0, t.backend)
		if err != nil {
			return nil, fmt.Errorf("failed to create validation batches: %w", err)
		}
		valBatches = vb
	}

	history := make([]EpochStats, 0, t.cfg.Epochs)
	var window metrics.Window

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		epochStart := time.Now()

		dataStart := time.Now()
		batches, err := dataset.Batches(trainSet, t.cfg.BatchSize, true, t.cfg.Seed+int64(epoch), t.backend)
		if err != nil {
			return nil, fmt.Errorf("failed to create train batches: %w", err)
		}
		dataPerBatch := time.Since(dataStart) / time.Duration(len(batches))

		loss, acc := t.trainEpoch(batches, dataPerBatch, &window)

		stats := EpochStats{
			Epoch:      epoch,
			Loss:       loss,
			Accuracy:   acc,
			Throughput: window.Snapshot(),
			Duration:   time.Since(epochStart),
		}
		if len(valBatches) > 0 {
			stats.ValLoss, stats.ValAccuracy = t.Validate(valBatches)
		}

		history = append(history, stats)
		if progress != nil {
			progress(stats)
		}
	}
	return history, nil
}

// trainEpoch runs one full pass over the training batches.
func (t *Trainer[B]) trainEpoch(
	batches []*dataset.Batch[*autodiff.Backend[B]],
	dataPerBatch time.Duration,
	window *metrics.Window,
) (avgLoss, accuracy float32) {
	totalLoss := float32(0.0)
	totalCorrect := 0
	totalSamples := 0

	for _, batch := range batches {
		start := time.Now()

		t.optimizer.ZeroGrad()

		// Forward pass, recorded on the tape.
		logits := t.model.Forward(batch.Images)
		loss := t.criterion.Forward(logits, batch.Labels)
		lossValue := loss.Raw().AsFloat32()[0]

		// Backward pass: seed the scalar loss with gradient 1.
		outputGrad, err := tensor.NewRaw(loss.Shape(), loss.DType(), t.backend.Device())
		if err != nil {
			panic(err)
		}
		outputGrad.AsFloat32()[0] = 1.0
		grads := t.backend.Tape().Backward(outputGrad, t.backend)

		t.optimizer.Step(grads)
		t.backend.Tape().Clear()

		totalLoss += lossValue
		acc := nn.Accuracy(logits, batch.Labels)
		totalCorrect += int(acc*float32(batch.Size) + 0.5)
		totalSamples += batch.Size

		window.Record(batch.Size, dataPerBatch, time.Since(start), float64(lossValue))
	}

	return totalLoss / float32(len(batches)), float32(totalCorrect) / float32(totalSamples)
}

// Validate evaluates the model on the given batches with gradient
// recording paused, restoring the previous recording state afterwards.
func (t *Trainer[B]) Validate(batches []*dataset.Batch[*autodiff.Backend[B]]) (avgLoss, accuracy float32) {
	wasRecording := t.backend.Tape().IsRecording()
	t.backend.Tape().StopRecording()
	defer func() {
		if wasRecording {
			t.backend.Tape().StartRecording()
		}
	}()

	return Evaluate(t.model, t.criterion, batches)
}

// Evaluate computes average loss and accuracy over batches with plain
// forward passes. It works on any backend; with an autodiff backend the
// caller is responsible for pausing recording first.
func Evaluate[B tensor.Backend](
	m *model.Classifier[B],
	criterion *nn.CrossEntropyLoss[B],
	batches []*dataset.Batch[B],
) (avgLoss, accuracy float32) {
	if len(batches) == 0 {
		return 0, 0
	}

	totalLoss := float32(0.0)
	totalCorrect := 0
	totalSamples := 0

	for _, batch := range batches {
		logits := m.Forward(batch.Images)
		loss := criterion.Forward(logits, batch.Labels)
		totalLoss += loss.Raw().AsFloat32()[0]

		acc := nn.Accuracy(logits, batch.Labels)
		totalCorrect += int(acc*float32(batch.Size) + 0.5)
		totalSamples += batch.Size
	}

	return totalLoss / float32(len(batches)), float32(totalCorrect) / float32(totalSamples)
}

// Confusion runs the model over batches and tallies a confusion matrix
// of true versus predicted classes.
func Confusion[B tensor.Backend](
	m *model.Classifier[B],
	batches []*dataset.Batch[B],
) *metrics.Confusion {
	cm := metrics.NewConfusion(dataset.NumClasses)
	for _, batch := range batches {
		logits := m.Forward(batch.Images)
		predicted := logits.Argmax(1)
		cm.ObserveBatch(batch.Labels.Data(), predicted.Data())
	}
	return cm
}
