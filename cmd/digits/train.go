package main

import (
	"fmt"
	"strings"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/cpu"
	"github.com/spf13/cobra"

	"github.com/nagbansi/deep-learning-v2-pytorch/internal/config"
	"github.com/nagbansi/deep-learning-v2-pytorch/internal/dataset"
	"github.com/nagbansi/deep-learning-v2-pytorch/internal/model"
	"github.com/nagbansi/deep-learning-v2-pytorch/internal/train"
)

// trainBackend is the backend every lesson trains on: the CPU compute
// backend wrapped with the gradient tape.
type trainBackend = *autodiff.Backend[*cpu.Backend]

func trainCmd() *cobra.Command {
	var (
		configPath string
		hiddenSpec string
		synthetic  bool
		overrides  config.Overrides
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a classifier and save it as a .born checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if hiddenSpec != "" {
				hidden, err := model.ParseHidden(hiddenSpec)
				if err != nil {
					return err
				}
				overrides.Hidden = hidden
			}
			cfg.ApplyOverrides(overrides)
			if err := cfg.Validate(); err != nil {
				return err
			}

			src, err := dataset.SourceByName(cfg.Dataset)
			if err != nil {
				return err
			}

			// Load data.
			var trainSet, valSet, testSet *dataset.Dataset
			if synthetic {
				fmt.Println("📊 Using synthetic data (embedded test patterns)")
				trainSet, valSet = dataset.Synthetic(16).Split(cfg.ValRatio)
			} else {
				if err := src.Download(cmd.Context(), cfg.DataDir); err != nil {
					return err
				}
				all, err := dataset.Load(cfg.DataDir, src, true, cfg.Standardize)
				if err != nil {
					return err
				}
				trainSet, valSet = all.Split(cfg.ValRatio)
				testSet, err = dataset.Load(cfg.DataDir, src, false, cfg.Standardize)
				if err != nil {
					return err
				}
			}
			fmt.Printf("📊 Dataset %s: %d train, %d val samples\n", src.Name, trainSet.Len(), valSet.Len())

			// Build model and trainer.
			backend := autodiff.New(cpu.New())
			classifier := model.New[trainBackend](cfg.Hidden, backend)
			arch := []string{"784"}
			for _, h := range cfg.Hidden {
				arch = append(arch, fmt.Sprint(h))
			}
			arch = append(arch, "10")
			fmt.Printf("🧠 Model: %s (%d parameters)\n",
				strings.Join(arch, " -> "), classifier.NumParameters())
			fmt.Printf("⚙️  Optimizer: %s (lr=%g), batch size %d, %d epochs\n",
				cfg.Optimizer, cfg.LR, cfg.BatchSize, cfg.Epochs)

			trainer, err := train.New(classifier, backend, cfg)
			if err != nil {
				return err
			}

			// Train.
			fmt.Println("\n🎓 Training...")
			history, err := trainer.Run(trainSet, valSet, func(s train.EpochStats) {
				fmt.Printf("Epoch %2d/%d: Loss=%.4f, Train Acc=%.2f%%, Val Loss=%.4f, Val Acc=%.2f%% (%.0f img/s)\n",
					s.Epoch, cfg.Epochs, s.Loss, s.Accuracy*100, s.ValLoss, s.ValAccuracy*100,
					s.Throughput.ImagesPerSec)
			})
			if err != nil {
				return err
			}
			final := history[len(history)-1]
			fmt.Printf("✅ Training complete: final val accuracy %.2f%%\n", final.ValAccuracy*100)

			// Report held-out test accuracy when real data was used.
			if testSet != nil {
				testBatches, err := dataset.Batches(testSet, 256, false, 0, backend)
				if err != nil {
					return err
				}
				testLoss, testAcc := trainer.Validate(testBatches)
				fmt.Printf("🎯 Test set: loss %.4f, accuracy %.2f%%\n", testLoss, testAcc*100)
			}

			// Save checkpoint.
			if cfg.Checkpoint != "" {
				if err := model.Save(classifier, cfg.Checkpoint, src.Name, cfg.Standardize); err != nil {
					return fmt.Errorf("save checkpoint: %w", err)
				}
				fmt.Printf("💾 Saved checkpoint to %s\n", cfg.Checkpoint)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (flags override it)")
	cmd.Flags().StringVar(&overrides.Dataset, "dataset", "", "Dataset to train on (mnist or fashion)")
	cmd.Flags().StringVar(&overrides.DataDir, "data", "", "Directory containing dataset files")
	cmd.Flags().IntVar(&overrides.Epochs, "epochs", 0, "Number of training epochs")
	cmd.Flags().IntVar(&overrides.BatchSize, "batch", 0, "Batch size for training")
	cmd.Flags().StringVar(&overrides.Optimizer, "optimizer", "", "Optimizer (sgd or adam)")
	cmd.Flags().Float64Var(&overrides.LR, "lr", 0, "Learning rate")
	cmd.Flags().Int64Var(&overrides.Seed, "seed", 0, "Shuffle seed")
	cmd.Flags().StringVar(&hiddenSpec, "hidden", "", "Hidden layer sizes, e.g. 128,64")
	cmd.Flags().StringVar(&overrides.Checkpoint, "checkpoint", "", "Output path for the trained model")
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "Train on embedded synthetic patterns (no download)")
	return cmd
}
