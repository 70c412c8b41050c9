package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/nn"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nagbansi/deep-learning-v2-pytorch/internal/dataset"
	"github.com/nagbansi/deep-learning-v2-pytorch/internal/metrics"
	"github.com/nagbansi/deep-learning-v2-pytorch/internal/model"
	"github.com/nagbansi/deep-learning-v2-pytorch/internal/train"
)

func evaluateCmd() *cobra.Command {
	var (
		checkpoint string
		dataDir    string
		hiddenSpec string
		confusion  bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a trained checkpoint on the held-out test set",
		RunE: func(cmd *cobra.Command, args []string) error {
			hidden, err := model.ParseHidden(hiddenSpec)
			if err != nil {
				return err
			}

			// Evaluation is forward-only, no tape needed.
			backend := cpu.New()
			classifier, meta, err := model.LoadCheckpoint(checkpoint, hidden, backend)
			if err != nil {
				return err
			}

			src, err := dataset.SourceByName(meta[model.MetaDataset])
			if err != nil {
				return fmt.Errorf("checkpoint %s: %w", checkpoint, err)
			}
			standardize, _ := strconv.ParseBool(meta[model.MetaStandardize])

			if err := src.Download(cmd.Context(), dataDir); err != nil {
				return err
			}
			testSet, err := dataset.Load(dataDir, src, false, standardize)
			if err != nil {
				return err
			}
			batches, err := dataset.Batches(testSet, 256, false, 0, backend)
			if err != nil {
				return err
			}

			fmt.Printf("🎯 Evaluating %s on %s test set (%d samples)\n", checkpoint, src.Name, testSet.Len())
			loss, acc := train.Evaluate(classifier, nn.NewCrossEntropyLoss(backend), batches)
			cm := train.Confusion(classifier, batches)

			fmt.Printf("\nLoss: %.4f\nAccuracy: %.2f%%\n\n", loss, acc*100)

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"CLASS", "CORRECT", "TOTAL", "ACCURACY"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			for i, name := range src.Classes {
				correct, total, classAcc := cm.ClassAccuracy(i)
				table.Append([]string{
					name,
					strconv.Itoa(correct),
					strconv.Itoa(total),
					fmt.Sprintf("%.2f%%", classAcc*100),
				})
			}
			table.Render()

			if confusion {
				fmt.Println("\nConfusion matrix (rows: true class, columns: predicted):")
				printConfusion(cm, src.Classes)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&checkpoint, "checkpoint", "model.born", "Checkpoint to evaluate")
	cmd.Flags().StringVar(&dataDir, "data", "data", "Directory containing dataset files")
	cmd.Flags().StringVar(&hiddenSpec, "hidden", "", "Hidden layer sizes the checkpoint was trained with")
	cmd.Flags().BoolVar(&confusion, "confusion", false, "Print the full confusion matrix")
	return cmd
}

func printConfusion(cm *metrics.Confusion, classes []string) {
	table := tablewriter.NewWriter(os.Stdout)
	header := append([]string{""}, classes...)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetBorder(false)
	for i, name := range classes {
		row := []string{name}
		for j := range classes {
			row = append(row, strconv.Itoa(cm.Count(i, j)))
		}
		table.Append(row)
	}
	table.Render()
}
