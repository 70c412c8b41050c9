package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/tensor"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nagbansi/deep-learning-v2-pytorch/internal/dataset"
	"github.com/nagbansi/deep-learning-v2-pytorch/internal/imageio"
	"github.com/nagbansi/deep-learning-v2-pytorch/internal/model"
)

func predictCmd() *cobra.Command {
	var (
		checkpoint string
		imagePath  string
		hiddenSpec string
		invert     bool
		showImage  bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Classify a single PNG or JPEG image with a trained checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			hidden, err := model.ParseHidden(hiddenSpec)
			if err != nil {
				return err
			}

			backend := cpu.New()
			classifier, meta, err := model.LoadCheckpoint(checkpoint, hidden, backend)
			if err != nil {
				return err
			}
			src, err := dataset.SourceByName(meta[model.MetaDataset])
			if err != nil {
				return fmt.Errorf("checkpoint %s: %w", checkpoint, err)
			}

			pixels, err := imageio.LoadGrayscale(imagePath, invert)
			if err != nil {
				return err
			}
			if showImage {
				fmt.Println(imageio.ASCII(pixels))
			}
			if standardize, _ := strconv.ParseBool(meta[model.MetaStandardize]); standardize {
				imageio.Standardize(pixels, src.Mean, src.Std)
			}

			input, err := tensor.FromSlice(pixels, tensor.Shape{1, dataset.NumPixels}, backend)
			if err != nil {
				return err
			}
			logits := classifier.Forward(input)
			probs := logits.Softmax(1).Data()

			type candidate struct {
				class string
				prob  float32
			}
			ranked := make([]candidate, len(probs))
			for i, p := range probs {
				ranked[i] = candidate{class: src.Classes[i], prob: p}
			}
			sort.Slice(ranked, func(i, j int) bool { return ranked[i].prob > ranked[j].prob })

			fmt.Printf("🔮 Prediction: %s (%.1f%%)\n\n", ranked[0].class, ranked[0].prob*100)

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"CLASS", "PROBABILITY"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			for _, c := range ranked {
				table.Append([]string{c.class, fmt.Sprintf("%.2f%%", c.prob*100)})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&checkpoint, "checkpoint", "model.born", "Checkpoint to predict with")
	cmd.Flags().StringVar(&imagePath, "image", "", "PNG or JPEG image to classify")
	cmd.Flags().StringVar(&hiddenSpec, "hidden", "", "Hidden layer sizes the checkpoint was trained with")
	cmd.Flags().BoolVar(&invert, "invert", false, "Invert image polarity (for dark-on-light drawings)")
	cmd.Flags().BoolVar(&showImage, "show", false, "Print the processed 28x28 input as ASCII art")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}
