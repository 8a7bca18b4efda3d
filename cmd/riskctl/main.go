// Command riskctl scores patient inputs against the bundled artifacts
// from the terminal and checks a classifier against labeled data.
package main

import (
	"fmt"
	"os"

	"github.com/liamcoop/healthrisk/config"
	"github.com/liamcoop/healthrisk/internal/logger"
	"github.com/liamcoop/healthrisk/predict"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	scalerPath string
	modelPath  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "riskctl",
		Short:         "Score diabetes risk inputs with the pre-fit artifacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Keep stdout for command output
			logger.SetOutput(cmd.ErrOrStderr())
			if opts.verbose {
				logger.SetLevel(logger.LevelDebug)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.scalerPath, "scaler", config.DefaultScalerPath, "path to the scaler artifact")
	cmd.PersistentFlags().StringVar(&opts.modelPath, "model", config.DefaultModelPath, "path to the classifier artifact")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newPredictCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))

	return cmd
}

func (o *rootOptions) pipeline() (*predict.Pipeline, error) {
	a, err := predict.LoadArtifacts(o.scalerPath, o.modelPath)
	if err != nil {
		return nil, err
	}
	return predict.NewPipelineFromArtifacts(a), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
