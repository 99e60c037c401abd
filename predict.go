package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixbrock/flightprice/internal/client"
	"github.com/felixbrock/flightprice/internal/domain"
	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Ask a running server for a fare",
	Args:  cobra.NoArgs,
	RunE:  runPredict,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent predictions stored by a running server",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(predictCmd, historyCmd)
	for _, c := range []*cobra.Command{predictCmd, historyCmd} {
		c.Flags().String("server", "http://localhost:8000", "Server base URL")
	}

	f := predictCmd.Flags()
	f.String("airline", "", "Airline, e.g. Vistara")
	f.String("flight", "", "Flight code, e.g. UK-706")
	f.String("from", "", "Source city")
	f.String("to", "", "Destination city")
	f.String("departure", "", "Departure time slot, e.g. Morning")
	f.String("arrival", "", "Arrival time slot, e.g. Night")
	f.String("stops", "zero", "Number of stops (zero, one, two_or_more)")
	f.String("class", "Economy", "Cabin class")
	f.Float64("duration", 0, "Flight duration in hours")
	f.Int("days-left", 0, "Days between booking and departure")
	for _, name := range []string{"airline", "flight", "from", "to", "departure", "arrival", "duration", "days-left"} {
		_ = predictCmd.MarkFlagRequired(name)
	}

	historyCmd.Flags().Int("limit", 20, "Number of predictions to list")
	historyCmd.Flags().Bool("plain", false, "Print the table as plain markdown")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	str := func(name string) string {
		v, _ := f.GetString(name)
		return strings.TrimSpace(v)
	}
	duration, _ := f.GetFloat64("duration")
	daysLeft, _ := f.GetInt("days-left")

	res, err := client.New(str("server")).Predict(cmd.Context(), domain.FlightData{
		Airline:         str("airline"),
		Flight:          str("flight"),
		SourceCity:      str("from"),
		DepartureTime:   str("departure"),
		Stops:           str("stops"),
		ArrivalTime:     str("arrival"),
		DestinationCity: str("to"),
		FlightClass:     str("class"),
		Duration:        duration,
		DaysLeft:        daysLeft,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%.2f %s\n", res.PredictedPrice, res.Currency)
	return err
}

func runHistory(cmd *cobra.Command, _ []string) error {
	server, _ := cmd.Flags().GetString("server")
	limit, _ := cmd.Flags().GetInt("limit")
	plain, _ := cmd.Flags().GetBool("plain")

	records, err := client.New(server).Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return printReport(cmd.OutOrStdout(), historyReport(records), plain)
}

func historyReport(records []domain.Prediction) string {
	if len(records) == 0 {
		return "No predictions stored yet.\n"
	}

	cell := strings.NewReplacer("|", "\\|", "\n", " ")
	var b strings.Builder
	b.WriteString("| When | Airline | Route | Class | Days left | Price |\n")
	b.WriteString("| --- | --- | --- | --- | ---: | ---: |\n")
	for _, p := range records {
		fmt.Fprintf(&b, "| %s | %s | %s → %s | %s | %d | %.2f %s |\n",
			p.CreatedAt.Local().Format(time.DateTime),
			cell.Replace(p.Input.Airline),
			cell.Replace(p.Input.SourceCity),
			cell.Replace(p.Input.DestinationCity),
			cell.Replace(p.Input.FlightClass),
			p.Input.DaysLeft,
			p.Price,
			p.Currency)
	}
	return b.String()
}
