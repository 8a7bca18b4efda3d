package main

import (
	"fmt"

	"github.com/liamcoop/healthrisk/advice"
	"github.com/liamcoop/healthrisk/form"
	"github.com/spf13/cobra"
)

func newPredictCmd(root *rootOptions) *cobra.Command {
	values := make([]float64, len(form.Fields))

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the risk label for one patient",
		Long: `Runs one patient through the scaler and classifier and prints the
label together with the precautions for that label. Omitted flags take
the same defaults as the web form.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, f := range form.Fields {
				if err := f.Check(values[i], cmd.Flag(f.Name).Value.String()); err != nil {
					return err
				}
			}

			in, err := form.FromVector(values)
			if err != nil {
				return err
			}

			p, err := root.pipeline()
			if err != nil {
				return err
			}

			label, err := p.Predict(in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "label: %s\n", label)
			fmt.Fprintln(out, advice.ResultMessage(label))
			fmt.Fprintln(out)
			fmt.Fprint(out, advice.Render(label, true).Text())
			return nil
		},
	}

	for i, f := range form.Fields {
		usage := f.Label
		if f.Unit != "" {
			usage += " (" + f.Unit + ")"
		}
		cmd.Flags().Float64Var(&values[i], f.Name, f.Default, usage)
	}

	return cmd
}
