package domain

import "time"

const Currency = "INR"

// FlightData is one flight as submitted by the prediction form.
type FlightData struct {
	Airline         string  `json:"airline"`
	Flight          string  `json:"flight"`
	SourceCity      string  `json:"source_city"`
	DepartureTime   string  `json:"departure_time"`
	Stops           string  `json:"stops"`
	ArrivalTime     string  `json:"arrival_time"`
	DestinationCity string  `json:"destination_city"`
	FlightClass     string  `json:"flight_class"`
	Duration        float64 `json:"duration"`
	DaysLeft        int     `json:"days_left"`
}

// Categorical returns the value of a categorical column by its dataset name.
// The dataset calls the cabin column "class"; the API calls it "flight_class".
func (f FlightData) Categorical(column string) (string, bool) {
	switch column {
	case "airline":
		return f.Airline, true
	case "flight":
		return f.Flight, true
	case "source_city":
		return f.SourceCity, true
	case "departure_time":
		return f.DepartureTime, true
	case "stops":
		return f.Stops, true
	case "arrival_time":
		return f.ArrivalTime, true
	case "destination_city":
		return f.DestinationCity, true
	case "class":
		return f.FlightClass, true
	}
	return "", false
}

// Fare is a training observation: a flight and the price it sold for.
type Fare struct {
	Flight FlightData
	Price  float64
}

type Prediction struct {
	Id        string     `json:"id"`
	Input     FlightData `json:"input"`
	Price     float64    `json:"predicted_price"`
	Currency  string     `json:"currency"`
	CreatedAt time.Time  `json:"created_at"`
}
