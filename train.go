package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/felixbrock/flightprice/internal/logging"
	"github.com/felixbrock/flightprice/internal/model"
	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the fare model from a CSV dataset",
	Long: `Label-encodes the categorical columns, fits a linear regression on a seeded
train split and writes the model artifact. A running server picks the new
artifact up without a restart.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().String("data", "", "CSV dataset with the fare columns and price")
	trainCmd.Flags().String("out", "", "Where to write the model artifact (defaults to MODEL_PATH)")
	trainCmd.Flags().Float64("test-size", model.DefaultTrainOptions().TestSize, "Fraction of rows held out for scoring")
	trainCmd.Flags().Int64("seed", model.DefaultTrainOptions().Seed, "Shuffle seed for the train/test split")
	trainCmd.Flags().Bool("plain", false, "Print the report as plain markdown")
	_ = trainCmd.MarkFlagRequired("data")
}

func runTrain(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.LogLevel); err != nil {
		return err
	}

	flags := cmd.Flags()
	dataPath, _ := flags.GetString("data")
	out, _ := flags.GetString("out")
	if out == "" {
		out = cfg.ModelPath
	}
	testSize, _ := flags.GetFloat64("test-size")
	seed, _ := flags.GetInt64("seed")
	plain, _ := flags.GetBool("plain")

	ds, err := model.LoadCSVFile(dataPath)
	if err != nil {
		return err
	}
	slog.Info("Dataset loaded", "path", dataPath, "rows", len(ds.Fares))

	m, err := model.Train(ds, model.TrainOptions{TestSize: testSize, Seed: seed})
	if err != nil {
		return err
	}
	if err := model.Save(out, m); err != nil {
		return err
	}
	slog.Info("Model saved", "path", out)

	return printReport(cmd.OutOrStdout(), trainReport(m, out), plain)
}

func trainReport(m *model.Model, out string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Model trained\n\nSaved to `%s`.\n\n", out)
	b.WriteString("| Metric | Value |\n| --- | --- |\n")
	fmt.Fprintf(&b, "| Training rows | %d |\n", m.Metrics.TrainRows)
	fmt.Fprintf(&b, "| Test rows | %d |\n", m.Metrics.TestRows)
	if m.Metrics.TestRows > 0 {
		fmt.Fprintf(&b, "| R² | %.4f |\n", m.Metrics.R2)
		fmt.Fprintf(&b, "| RMSE | %.2f |\n", m.Metrics.RMSE)
	}

	b.WriteString("\n## Coefficients\n\n| Feature | Coefficient | Classes |\n| --- | --- | --- |\n")
	fmt.Fprintf(&b, "| (intercept) | %.4f | |\n", m.Regression.Intercept)
	for i, feature := range m.Features {
		classes := ""
		if enc, ok := m.Encoders[feature]; ok {
			classes = fmt.Sprintf("%d", len(enc.Classes))
		}
		fmt.Fprintf(&b, "| %s | %.4f | %s |\n", feature, m.Regression.Coef[i], classes)
	}
	return b.String()
}

func printReport(w io.Writer, markdown string, plain bool) error {
	if plain {
		_, err := io.WriteString(w, markdown)
		return err
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	rendered, err := r.Render(markdown)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, rendered)
	return err
}
