package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/liamcoop/healthrisk/internal/logger"
	"github.com/liamcoop/healthrisk/predict"
	"github.com/spf13/cobra"
)

// ErrInvertedConvention is returned by check when the classifier agrees
// with the labels more often after swapping the class meanings
var ErrInvertedConvention = errors.New("classifier scores better with class 0 as at_risk")

// checkReport summarizes a labeled run
type checkReport struct {
	Rows     int
	Correct  int
	AtRisk   int
	Inverted int
}

func (r checkReport) Accuracy() float64 {
	if r.Rows == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Rows)
}

func (r checkReport) InvertedAccuracy() float64 {
	if r.Rows == 0 {
		return 0
	}
	return float64(r.Inverted) / float64(r.Rows)
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the class convention against labeled data",
		Long: `Scores every row of a labeled CSV file (eight features followed by the
0/1 outcome, optional header) and reports accuracy with class 1 read as
at_risk and with the meanings swapped. Exits non-zero when the swapped
reading scores better.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := root.pipeline()
			if err != nil {
				return err
			}

			f, err := os.Open(dataPath)
			if err != nil {
				return fmt.Errorf("failed to open labeled data: %w", err)
			}
			defer f.Close()

			report, err := runCheck(p, f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rows: %d (at_risk predicted: %d)\n", report.Rows, report.AtRisk)
			fmt.Fprintf(out, "accuracy (1 = at_risk): %.4f\n", report.Accuracy())
			fmt.Fprintf(out, "accuracy (0 = at_risk): %.4f\n", report.InvertedAccuracy())

			if report.Inverted > report.Correct {
				return ErrInvertedConvention
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "labeled CSV file")
	if err := cmd.MarkFlagRequired("data"); err != nil {
		panic(fmt.Sprintf("riskctl: %v", err))
	}

	return cmd
}

// runCheck scores each labeled row. A first row whose outcome column is
// not a number is treated as a header.
func runCheck(p *predict.Pipeline, r io.Reader) (checkReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = predict.FeatureCount + 1
	reader.TrimLeadingSpace = true

	var report checkReport
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return report, fmt.Errorf("failed to read labeled data: %w", err)
		}

		outcome, err := strconv.Atoi(strings.TrimSpace(record[predict.FeatureCount]))
		if err != nil {
			if line == 1 {
				logger.Debug("skipping header row", "columns", strings.Join(record, ","))
				continue
			}
			return report, fmt.Errorf("line %d: invalid outcome %q", line, record[predict.FeatureCount])
		}

		expected, err := predict.LabelForClass(outcome)
		if err != nil {
			return report, fmt.Errorf("line %d: %w", line, err)
		}

		row := make([]float64, predict.FeatureCount)
		for i := range row {
			row[i], err = strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
			if err != nil {
				return report, fmt.Errorf("line %d: invalid %s %q", line, predict.FeatureNames[i], record[i])
			}
		}

		label, err := p.PredictRow(row)
		if err != nil {
			return report, fmt.Errorf("line %d: %w", line, err)
		}

		report.Rows++
		if label == predict.AtRisk {
			report.AtRisk++
		}
		if label == expected {
			report.Correct++
		} else {
			report.Inverted++
		}
	}

	logger.Info("labeled check complete", "rows", report.Rows, "correct", report.Correct)
	return report, nil
}
