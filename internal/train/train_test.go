package train

import (
	"math"
	"testing"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagbansi/deep-learning-v2-pytorch/internal/config"
	"github.com/nagbansi/deep-learning-v2-pytorch/internal/dataset"
	"github.com/nagbansi/deep-learning-v2-pytorch/internal/model"
)

type testBackend = *autodiff.Backend[*cpu.Backend]

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Epochs = 2
	cfg.BatchSize = 20
	cfg.Hidden = []int{16}
	cfg.LR = 0.1
	cfg.Momentum = 0.9
	return cfg
}

func TestNewRejectsUnknownOptimizer(t *testing.T) {
	backend := autodiff.New(cpu.New())
	classifier := model.New[testBackend](nil, backend)

	cfg := testConfig()
	cfg.Optimizer = "rmsprop"
	_, err := New(classifier, backend, cfg)
	require.Error(t, err)
}

func TestRunTrainsOnSyntheticData(t *testing.T) {
	backend := autodiff.New(cpu.New())
	cfg := testConfig()
	classifier := model.New[testBackend](cfg.Hidden, backend)

	trainer, err := New(classifier, backend, cfg)
	require.NoError(t, err)

	trainSet, valSet := dataset.Synthetic(10).Split(0.2)

	var calls int
	history, err := trainer.Run(trainSet, valSet, func(s EpochStats) { calls++ })
	require.NoError(t, err)

	require.Len(t, history, cfg.Epochs)
	assert.Equal(t, cfg.Epochs, calls)

	for _, s := range history {
		assert.False(t, math.IsNaN(float64(s.Loss)), "epoch %d loss is NaN", s.Epoch)
		assert.False(t, math.IsInf(float64(s.Loss), 0), "epoch %d loss is Inf", s.Epoch)
		assert.GreaterOrEqual(t, s.Accuracy, float32(0))
		assert.LessOrEqual(t, s.Accuracy, float32(1))
		assert.GreaterOrEqual(t, s.ValAccuracy, float32(0))
		assert.LessOrEqual(t, s.ValAccuracy, float32(1))
	}

	// The synthetic patterns are trivially separable: training loss
	// should move in the right direction across two epochs.
	assert.LessOrEqual(t, history[len(history)-1].Loss, history[0].Loss+0.1)
}

func TestRunRejectsEmptyTrainSet(t *testing.T) {
	backend := autodiff.New(cpu.New())
	cfg := testConfig()
	classifier := model.New[testBackend](cfg.Hidden, backend)

	trainer, err := New(classifier, backend, cfg)
	require.NoError(t, err)

	empty := &dataset.Dataset{Classes: dataset.MNIST.Classes}
	_, err = trainer.Run(empty, nil, nil)
	require.Error(t, err)
}

func TestValidateRestoresRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	cfg := testConfig()
	classifier := model.New[testBackend](cfg.Hidden, backend)

	trainer, err := New(classifier, backend, cfg)
	require.NoError(t, err)

	batches, err := dataset.Batches(dataset.Synthetic(2), 10, false, 0, backend)
	require.NoError(t, err)

	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	loss, acc := trainer.Validate(batches)
	assert.True(t, backend.Tape().IsRecording(), "recording state must be restored")
	assert.Equal(t, 0, backend.Tape().NumOps(), "validation must not record on the tape")
	assert.False(t, math.IsNaN(float64(loss)))
	assert.GreaterOrEqual(t, acc, float32(0))
	assert.LessOrEqual(t, acc, float32(1))
}

func TestEvaluateAndConfusion(t *testing.T) {
	backend := cpu.New()
	classifier := model.New([]int{16}, backend)

	d := dataset.Synthetic(4)
	batches, err := dataset.Batches(d, 8, false, 0, backend)
	require.NoError(t, err)

	loss, acc := Evaluate(classifier, nn.NewCrossEntropyLoss(backend), batches)
	assert.False(t, math.IsNaN(float64(loss)))
	assert.GreaterOrEqual(t, acc, float32(0))
	assert.LessOrEqual(t, acc, float32(1))

	cm := Confusion(classifier, batches)
	assert.Equal(t, d.Len(), cm.Total())
	assert.InDelta(t, float64(acc), cm.Accuracy(), 0.02)
}

func TestEvaluateEmptyBatches(t *testing.T) {
	backend := cpu.New()
	classifier := model.New([]int{16}, backend)

	loss, acc := Evaluate(classifier, nn.NewCrossEntropyLoss(backend), nil)
	assert.Equal(t, float32(0), loss)
	assert.Equal(t, float32(0), acc)
}
