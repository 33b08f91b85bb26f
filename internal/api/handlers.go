package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/virajparmaj/turbine-nox-wise/internal/emit"
	"github.com/virajparmaj/turbine-nox-wise/internal/nox"
)

// ValidationError describes a request rejected at the transport
// boundary, before reaching the prediction service.
type ValidationError struct {
	Reason  string
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required fields: " + strings.Join(e.Missing, ", ")
	}
	return e.Reason
}

// sensorReadingWire decodes a request body. Pointer fields distinguish
// absent keys from legitimate zero values.
type sensorReadingWire struct {
	AT   *float64 `json:"AT"`
	AP   *float64 `json:"AP"`
	AH   *float64 `json:"AH"`
	AFDP *float64 `json:"AFDP"`
	GTEP *float64 `json:"GTEP"`
	TIT  *float64 `json:"TIT"`
	TAT  *float64 `json:"TAT"`
	CDP  *float64 `json:"CDP"`
	TEY  *float64 `json:"TEY"`
}

func (wire sensorReadingWire) toReading() (nox.SensorReading, error) {
	var missing []string
	need := func(name string, v *float64) float64 {
		if v == nil {
			missing = append(missing, name)
			return 0
		}
		return *v
	}
	reading := nox.SensorReading{
		AT:   need("AT", wire.AT),
		AP:   need("AP", wire.AP),
		AH:   need("AH", wire.AH),
		AFDP: need("AFDP", wire.AFDP),
		GTEP: need("GTEP", wire.GTEP),
		TIT:  need("TIT", wire.TIT),
		TAT:  need("TAT", wire.TAT),
		CDP:  need("CDP", wire.CDP),
		TEY:  need("TEY", wire.TEY),
	}
	if len(missing) > 0 {
		return nox.SensorReading{}, &ValidationError{Missing: missing}
	}
	return reading, nil
}

// decodeReading parses a reading and enforces the strict contract:
// exactly the nine sensor fields, all numeric. Unknown keys are
// rejected so client drift surfaces instead of being ignored.
func decodeReading(body io.Reader) (nox.SensorReading, error) {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	var wire sensorReadingWire
	if err := dec.Decode(&wire); err != nil {
		return nox.SensorReading{}, &ValidationError{Reason: "invalid request body: " + err.Error()}
	}
	// Decode stops after the first value; anything after it is not a
	// reading.
	if err := dec.Decode(new(json.RawMessage)); err != io.EOF {
		return nox.SensorReading{}, &ValidationError{Reason: "invalid request body: unexpected data after reading"}
	}
	return wire.toReading()
}

type predictionResponse struct {
	NOXPred float64 `json:"NOX_pred"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string   `json:"status"`
	Bands   []string `json:"bands"`
	UptimeS float64  `json:"uptime_s"`
}

type bandModelInfo struct {
	Band         string   `json:"band"`
	Model        string   `json:"model"`
	Features     []string `json:"features"`
	NumFeatures  int      `json:"num_features"`
	ModelVersion string   `json:"model_version,omitempty"`
	TrainedAt    string   `json:"trained_at,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps service errors onto transport statuses. Everything the
// service returns is a server-side fault (validation never gets that
// far), and none of it is retryable.
func statusFor(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// handlePredict returns the handler for one band's route. The band is
// fixed at registration; bodies and outcomes follow one shared path.
func (s *Server) handlePredict(band nox.Band) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()

		reading, err := decodeReading(r.Body)
		if err != nil {
			s.metrics.ValidationFailuresInc()
			log.Warn().
				Err(err).
				Str("band", band.String()).
				Str("request_id", requestID).
				Msg("rejected prediction request")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := s.svc.Predict(r.Context(), reading, band)
		if err != nil {
			log.Error().
				Err(err).
				Str("band", band.String()).
				Str("request_id", requestID).
				Msg("prediction failed")
			writeError(w, statusFor(err), err.Error())
			return
		}

		s.publisher.Publish(emit.Event{
			RequestID: requestID,
			Band:      band.String(),
			NOxPred:   result.NOx,
			Reading:   reading,
			Ts:        time.Now().UTC(),
		})

		writeJSON(w, http.StatusOK, predictionResponse{NOXPred: result.NOx})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	bands := make([]string, 0, len(nox.Bands()))
	for _, band := range nox.Bands() {
		bands = append(bands, band.String())
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Bands:   bands,
		UptimeS: time.Since(s.started).Seconds(),
	})
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	infos := make([]bandModelInfo, 0, len(nox.Bands()))
	for _, band := range nox.Bands() {
		meta, err := s.features.MetadataFor(band)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		mdl, err := s.models.ModelFor(band)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		infos = append(infos, bandModelInfo{
			Band:         band.String(),
			Model:        mdl.Name(),
			Features:     meta.Features,
			NumFeatures:  mdl.NumFeatures(),
			ModelVersion: meta.ModelVersion,
			TrainedAt:    meta.TrainedAt,
		})
	}
	writeJSON(w, http.StatusOK, infos)
}
