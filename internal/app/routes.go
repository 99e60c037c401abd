package app

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixbrock/flightprice/internal/components"
	"github.com/felixbrock/flightprice/internal/domain"
	"github.com/felixbrock/flightprice/internal/model"
	"github.com/google/uuid"
)

const (
	maxBodyBytes        = 64 << 10
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	noModelMessage      = "Model files not found. Please run train first."
)

// optionRoutes list the known labels of a column for the form's dropdowns.
var optionRoutes = []struct {
	path   string
	column string
	key    string
}{
	{"/airlines", "airline", "airlines"},
	{"/cities", "source_city", "cities"},
	{"/departure_times", "departure_time", "departure_times"},
	{"/stops", "stops", "stops"},
	{"/arrival_times", "arrival_time", "arrival_times"},
	{"/classes", "class", "classes"},
}

type flightReq struct {
	Airline         *string  `json:"airline"`
	Flight          *string  `json:"flight"`
	SourceCity      *string  `json:"source_city"`
	DepartureTime   *string  `json:"departure_time"`
	Stops           *string  `json:"stops"`
	ArrivalTime     *string  `json:"arrival_time"`
	DestinationCity *string  `json:"destination_city"`
	FlightClass     *string  `json:"flight_class"`
	Duration        *float64 `json:"duration"`
	DaysLeft        *int     `json:"days_left"`
}

func (f flightReq) toFlightData() (domain.FlightData, error) {
	var missing []string
	str := func(name string, v *string) string {
		if v == nil {
			missing = append(missing, name)
			return ""
		}
		return *v
	}

	data := domain.FlightData{
		Airline:         str("airline", f.Airline),
		Flight:          str("flight", f.Flight),
		SourceCity:      str("source_city", f.SourceCity),
		DepartureTime:   str("departure_time", f.DepartureTime),
		Stops:           str("stops", f.Stops),
		ArrivalTime:     str("arrival_time", f.ArrivalTime),
		DestinationCity: str("destination_city", f.DestinationCity),
		FlightClass:     str("flight_class", f.FlightClass),
	}
	if f.Duration == nil {
		missing = append(missing, "duration")
	} else {
		data.Duration = *f.Duration
	}
	if f.DaysLeft == nil {
		missing = append(missing, "days_left")
	} else {
		data.DaysLeft = *f.DaysLeft
	}

	if len(missing) > 0 {
		return domain.FlightData{}, fmt.Errorf("field required: %s", strings.Join(missing, ", "))
	}
	return data, nil
}

type predictResp struct {
	Id             string  `json:"id"`
	PredictedPrice float64 `json:"predicted_price"`
	Currency       string  `json:"currency"`
}

func (a *App) index(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	return &ComponentResponse{
		Component:   components.Document(components.Title, components.PageShell()),
		Code:        http.StatusOK,
		Message:     "OK",
		ContentType: "text/html; charset=utf-8",
	}
}

func (a *App) notFound(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	return get404().page(nil)
}

func (a *App) methodNotAllowed(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	return get405().page(nil)
}

// form serves the embedded prediction form. http.FileServer would redirect
// /index.html to /, which is the shell itself.
func (a *App) form(w http.ResponseWriter, r *http.Request) {
	content, err := fs.ReadFile(a.Assets, strings.TrimPrefix(components.FormPath, "/"))
	if err != nil {
		var resp *ComponentResponse
		if errors.Is(err, fs.ErrNotExist) {
			resp = get404().page(err)
		} else {
			resp = get500().page(err)
		}
		ComponentHandler(func(http.ResponseWriter, *http.Request) *ComponentResponse { return resp }).ServeHTTP(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "index.html", time.Time{}, bytes.NewReader(content))
}

func (a *App) apiRoot(w http.ResponseWriter, r *http.Request) *JSONResponse {
	return ok(map[string]string{"message": "Flight Price Prediction API"})
}

func (a *App) predict(w http.ResponseWriter, r *http.Request) *JSONResponse {
	m, loaded := a.Models.Current()
	if !loaded {
		a.Metrics.prediction("unavailable")
		return fail(http.StatusServiceUnavailable, noModelMessage, model.ErrNoModel)
	}

	content, err := Read(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		a.Metrics.prediction("invalid")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fail(http.StatusRequestEntityTooLarge, "Request body too large", err)
		}
		return fail(http.StatusUnprocessableEntity, "Request body is required", err)
	}

	req, err := ReadJSON[flightReq](content)
	if err != nil {
		a.Metrics.prediction("invalid")
		return fail(http.StatusUnprocessableEntity, fmt.Sprintf("Invalid request body: %s", err.Error()), err)
	}
	flight, err := req.toFlightData()
	if err != nil {
		a.Metrics.prediction("invalid")
		return fail(http.StatusUnprocessableEntity, err.Error(), err)
	}

	price, err := m.Predict(flight)
	if err != nil {
		a.Metrics.prediction("error")
		return fail(http.StatusInternalServerError, fmt.Sprintf("Prediction error: %s", err.Error()), err)
	}

	prediction := domain.Prediction{
		Id:        uuid.NewString(),
		Input:     flight,
		Price:     price,
		Currency:  domain.Currency,
		CreatedAt: time.Now().UTC(),
	}
	if a.Predictions != nil {
		if err := a.Predictions.Insert(r.Context(), prediction); err != nil {
			// History is best effort; the caller still gets the price.
			slog.WarnContext(r.Context(), "Prediction not stored", "err", err, "request_id", RequestID(r.Context()))
		}
	}

	a.Metrics.prediction("ok")
	return ok(predictResp{Id: prediction.Id, PredictedPrice: price, Currency: prediction.Currency})
}

func (a *App) options(column string, key string) JSONHandler {
	return func(w http.ResponseWriter, r *http.Request) *JSONResponse {
		m, loaded := a.Models.Current()
		if !loaded {
			return fail(http.StatusServiceUnavailable, noModelMessage, model.ErrNoModel)
		}
		classes, err := m.Classes(column)
		if err != nil {
			return fail(http.StatusInternalServerError, err.Error(), err)
		}
		return ok(map[string][]string{key: classes})
	}
}

func (a *App) history(w http.ResponseWriter, r *http.Request) *JSONResponse {
	if a.Predictions == nil {
		return fail(http.StatusNotFound, "Prediction history is disabled", nil)
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return fail(http.StatusUnprocessableEntity, "limit must be a positive integer", err)
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := a.Predictions.Recent(r.Context(), limit)
	if err != nil {
		return fail(http.StatusInternalServerError, "Could not read prediction history", err)
	}
	return ok(map[string][]domain.Prediction{"predictions": records})
}

func (a *App) health(w http.ResponseWriter, r *http.Request) *JSONResponse {
	_, loaded := a.Models.Current()
	return ok(map[string]any{"status": "ok", "model_loaded": loaded})
}
