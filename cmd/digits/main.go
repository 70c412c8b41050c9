// Command digits is a two-lesson walkthrough of training feed-forward
// image classifiers with the Born ML framework: the classic MNIST
// handwritten digits and Zalando's Fashion-MNIST. It downloads the
// data, trains a small fully connected network, evaluates it and runs
// single-image predictions, leaning on the framework for every tensor,
// gradient and optimizer step.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "digits",
		Short:         "Train and evaluate handwritten-digit classifiers with the Born ML framework",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(
		downloadCmd(),
		trainCmd(),
		evaluateCmd(),
		predictCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
