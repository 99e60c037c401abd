package model

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/felixbrock/flightprice/internal/domain"
)

// CategoricalColumns are label-encoded before fitting, in feature order.
var CategoricalColumns = []string{
	"airline",
	"flight",
	"source_city",
	"departure_time",
	"stops",
	"arrival_time",
	"destination_city",
	"class",
}

// FeatureOrder is the column order the regression is fitted on.
var FeatureOrder = append(append([]string{}, CategoricalColumns...), "duration", "days_left")

const TargetColumn = "price"

var ErrUnknownColumn = errors.New("unknown column")

type Dataset struct {
	Fares []domain.Fare
}

// LoadCSV reads a fare dataset. Columns are matched by header name; an
// unnamed leading index column is ignored.
func LoadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("dataset: empty file")
		}
		return nil, fmt.Errorf("dataset: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" || strings.HasPrefix(name, "Unnamed:") {
			continue
		}
		index[name] = i
	}
	for _, col := range append(append([]string{}, FeatureOrder...), TargetColumn) {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("dataset: missing column %q", col)
		}
	}

	ds := &Dataset{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line, err)
		}

		fare, err := toFare(record, index)
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line, err)
		}
		ds.Fares = append(ds.Fares, fare)
	}

	return ds, nil
}

func LoadCSVFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("Error occured", "path", path, "err", err)
		}
	}()

	return LoadCSV(file)
}

func toFare(record []string, index map[string]int) (domain.Fare, error) {
	field := func(name string) string {
		return strings.TrimSpace(record[index[name]])
	}

	duration, err := strconv.ParseFloat(field("duration"), 64)
	if err != nil {
		return domain.Fare{}, fmt.Errorf("duration: %w", err)
	}
	// pandas writes integer columns as floats once they have been touched
	daysLeft, err := strconv.ParseFloat(field("days_left"), 64)
	if err != nil {
		return domain.Fare{}, fmt.Errorf("days_left: %w", err)
	}
	if daysLeft != math.Trunc(daysLeft) || math.Abs(daysLeft) > math.MaxInt32 {
		return domain.Fare{}, fmt.Errorf("days_left: %v is not a whole number of days", daysLeft)
	}
	price, err := strconv.ParseFloat(field(TargetColumn), 64)
	if err != nil {
		return domain.Fare{}, fmt.Errorf("price: %w", err)
	}
	if !isFinite(duration) || !isFinite(price) {
		return domain.Fare{}, errors.New("duration and price must be finite")
	}

	return domain.Fare{
		Flight: domain.FlightData{
			Airline:         field("airline"),
			Flight:          field("flight"),
			SourceCity:      field("source_city"),
			DepartureTime:   field("departure_time"),
			Stops:           field("stops"),
			ArrivalTime:     field("arrival_time"),
			DestinationCity: field("destination_city"),
			FlightClass:     field("class"),
			Duration:        duration,
			DaysLeft:        int(daysLeft),
		},
		Price: price,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
