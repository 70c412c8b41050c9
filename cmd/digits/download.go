package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nagbansi/deep-learning-v2-pytorch/internal/dataset"
)

func downloadCmd() *cobra.Command {
	var (
		datasetName string
		dataDir     string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download and unpack a dataset into the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := dataset.SourceByName(datasetName)
			if err != nil {
				return err
			}

			fmt.Printf("📦 Fetching %s into %s ...\n", src.Name, dataDir)
			if err := src.Download(cmd.Context(), dataDir); err != nil {
				return err
			}
			fmt.Println("✅ Dataset ready")
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetName, "dataset", dataset.MNIST.Name, "Dataset to fetch (mnist or fashion)")
	cmd.Flags().StringVar(&dataDir, "data", "data", "Directory to cache dataset files in")
	return cmd
}
