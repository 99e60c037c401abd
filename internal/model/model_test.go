package model

import (
	"fmt"
	"strings"
	"testing"

	"github.com/felixbrock/flightprice/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = ",airline,flight,source_city,departure_time,stops,arrival_time,destination_city,class,duration,days_left,price\n"

// fareCSV builds rows whose price is an exact linear function of the encoded
// features, so a fitted model must reproduce it.
func fareCSV(rows int) string {
	airlines := []string{"AirAsia", "Indigo", "Vistara"}
	classes := []string{"Business", "Economy"}
	var b strings.Builder
	b.WriteString(header)
	for i := 0; i < rows; i++ {
		airline := i % 3
		class := (i / 3) % 2
		duration := 1.5 + float64(i%7)
		days := 1 + (i*5)%49
		price := 1000 + 250*float64(airline) - 4000*float64(class) + 120*duration - 30*float64(days)
		fmt.Fprintf(&b, "%d,%s,F-%d,Delhi,Morning,zero,Night,Mumbai,%s,%.2f,%d,%.2f\n",
			i, airlines[airline], i%2, classes[class], duration, days, price)
	}
	return b.String()
}

func TestLabelEncoderSortsAndDeduplicates(t *testing.T) {
	enc := FitLabelEncoder([]string{"Vistara", "AirAsia", "Vistara", "Indigo"})
	assert.Equal(t, []string{"AirAsia", "Indigo", "Vistara"}, enc.Classes)

	i, ok := enc.Transform("Vistara")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = enc.Transform("SpiceJet")
	assert.False(t, ok)
	assert.Equal(t, 0, enc.TransformOrFirst("SpiceJet"))
}

func TestFitLinearRegressionRecoversExactPlane(t *testing.T) {
	x := [][]float64{{0, 1}, {1, 0}, {2, 3}, {3, 5}, {4, 4}, {5, 9}}
	y := make([]float64, len(x))
	for i, row := range x {
		y[i] = 2 + 3*row[0] + 0.5*row[1]
	}

	reg, err := FitLinearRegression(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 2, reg.Intercept, 1e-6)
	assert.InDelta(t, 3, reg.Coef[0], 1e-6)
	assert.InDelta(t, 0.5, reg.Coef[1], 1e-6)

	got, err := reg.Predict([]float64{10, 10})
	require.NoError(t, err)
	assert.InDelta(t, 37, got, 1e-6)
}

func TestFitLinearRegressionZeroesConstantColumn(t *testing.T) {
	x := [][]float64{{1, 7}, {2, 7}, {3, 7}, {4, 7}}
	y := []float64{3, 5, 7, 9}

	reg, err := FitLinearRegression(x, y)
	require.NoError(t, err)
	assert.Equal(t, 0.0, reg.Coef[1])
	got, err := reg.Predict([]float64{5, 7})
	require.NoError(t, err)
	assert.InDelta(t, 11, got, 1e-6)
}

func TestFitLinearRegressionKeepsRareIndicator(t *testing.T) {
	const n = 100000
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		wide := float64(i % 1500)
		rare := 0.0
		if i < 3 {
			rare = 1
		}
		x[i] = []float64{wide, rare}
		y[i] = 500 + 2*wide + 1000*rare
	}

	reg, err := FitLinearRegression(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 500, reg.Intercept, 1e-4)
	assert.InDelta(t, 2, reg.Coef[0], 1e-6)
	assert.InDelta(t, 1000, reg.Coef[1], 1e-4)
}

func TestFitLinearRegressionSplitsCollinearColumns(t *testing.T) {
	x := [][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}}
	y := []float64{5, 10, 15, 20}

	reg, err := FitLinearRegression(x, y)
	require.NoError(t, err)
	got, err := reg.Predict([]float64{5, 10})
	require.NoError(t, err)
	assert.InDelta(t, 25, got, 1e-6)
}

func TestLinearRegressionRejectsNonFinitePrediction(t *testing.T) {
	reg := &LinearRegression{Intercept: 1, Coef: []float64{10}}
	_, err := reg.Predict([]float64{1e308})
	assert.ErrorIs(t, err, ErrNotFinite)
}

func TestFitLinearRegressionRejectsEmptyInput(t *testing.T) {
	_, err := FitLinearRegression(nil, nil)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestLoadCSVDropsIndexColumn(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader(fareCSV(4)))
	require.NoError(t, err)
	require.Len(t, ds.Fares, 4)

	first := ds.Fares[0]
	assert.Equal(t, "AirAsia", first.Flight.Airline)
	assert.Equal(t, "Business", first.Flight.FlightClass)
	assert.Equal(t, 1, first.Flight.DaysLeft)
	assert.InDelta(t, 1.5, first.Flight.Duration, 1e-9)
}

func TestLoadCSVReportsMissingColumn(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("airline,price\nIndigo,10\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "flight"`)
}

func TestLoadCSVReportsLineOfBadRow(t *testing.T) {
	data := header + "0,Indigo,F-1,Delhi,Morning,zero,Night,Mumbai,Economy,abc,3,100\n"
	_, err := LoadCSV(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "duration")
}

func TestLoadCSVRejectsFractionalDaysLeft(t *testing.T) {
	data := header + "0,Indigo,F-1,Delhi,Morning,zero,Night,Mumbai,Economy,2.5,3.7,100\n"
	_, err := LoadCSV(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "days_left")

	data = header + "0,Indigo,F-1,Delhi,Morning,zero,Night,Mumbai,Economy,2.5,3.0,100\n"
	ds, err := LoadCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Fares[0].Flight.DaysLeft)
}

func TestLoadCSVRejectsNonFinitePrice(t *testing.T) {
	data := header + "0,Indigo,F-1,Delhi,Morning,zero,Night,Mumbai,Economy,2.5,3,Inf\n"
	_, err := LoadCSV(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestTrainPredictsTrainingPlane(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader(fareCSV(60)))
	require.NoError(t, err)

	m, err := Train(ds, DefaultTrainOptions())
	require.NoError(t, err)
	assert.Equal(t, 48, m.Metrics.TrainRows)
	assert.Equal(t, 12, m.Metrics.TestRows)
	assert.InDelta(t, 1, m.Metrics.R2, 1e-6)
	assert.Equal(t, FeatureOrder, m.Features)

	got, err := m.Predict(domain.FlightData{
		Airline: "Vistara", Flight: "F-0", SourceCity: "Delhi", DepartureTime: "Morning",
		Stops: "zero", ArrivalTime: "Night", DestinationCity: "Mumbai", FlightClass: "Economy",
		Duration: 2.5, DaysLeft: 10,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1000+500-4000+300-300, got, 1e-4)
}

func TestTrainIsDeterministicForSeed(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader(fareCSV(30)))
	require.NoError(t, err)

	a, err := Train(ds, DefaultTrainOptions())
	require.NoError(t, err)
	b, err := Train(ds, DefaultTrainOptions())
	require.NoError(t, err)
	assert.Equal(t, a.Regression, b.Regression)
	assert.Equal(t, a.Metrics, b.Metrics)
}

func TestPredictFallsBackForUnseenLabel(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader(fareCSV(30)))
	require.NoError(t, err)
	m, err := Train(ds, DefaultTrainOptions())
	require.NoError(t, err)

	known := domain.FlightData{
		Airline: "AirAsia", Flight: "F-0", SourceCity: "Delhi", DepartureTime: "Morning",
		Stops: "zero", ArrivalTime: "Night", DestinationCity: "Mumbai", FlightClass: "Business",
		Duration: 3, DaysLeft: 5,
	}
	unseen := known
	unseen.Airline = "SpiceJet"

	want, err := m.Predict(known)
	require.NoError(t, err)
	got, err := m.Predict(unseen)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-9)
}

func TestPredictRejectsOverflowingInput(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader(fareCSV(30)))
	require.NoError(t, err)
	m, err := Train(ds, DefaultTrainOptions())
	require.NoError(t, err)

	_, err = m.Predict(domain.FlightData{Airline: "Indigo", Duration: 1e308, DaysLeft: 3})
	assert.ErrorIs(t, err, ErrNotFinite)
}

func TestTrainKeepsOneTrainingRow(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader(fareCSV(1)))
	require.NoError(t, err)

	m, err := Train(ds, TrainOptions{TestSize: 0.5, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Metrics.TrainRows)
	assert.Equal(t, 0, m.Metrics.TestRows)
}

func TestClassesRejectsUnknownColumn(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader(fareCSV(6)))
	require.NoError(t, err)
	m, err := Train(ds, DefaultTrainOptions())
	require.NoError(t, err)

	classes, err := m.Classes("airline")
	require.NoError(t, err)
	assert.Equal(t, []string{"AirAsia", "Indigo", "Vistara"}, classes)

	_, err = m.Classes("price")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	var none *Model
	_, err = none.Classes("airline")
	assert.ErrorIs(t, err, ErrNoModel)
}
