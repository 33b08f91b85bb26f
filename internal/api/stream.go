package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/virajparmaj/turbine-nox-wise/internal/emit"
	"github.com/virajparmaj/turbine-nox-wise/internal/nox"
)

const (
	streamReadLimit    = 64 * 1024 // max inbound frame size
	streamReadTimeout  = 60 * time.Second
	streamWriteTimeout = 10 * time.Second
)

// handleStream upgrades the connection and scores one reading per
// inbound frame for the band fixed at upgrade time. Malformed frames
// get an error frame back and keep the session open; idle sessions hit
// the read deadline and are reaped.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	bandParam := r.URL.Query().Get("band")
	band, err := nox.ParseBand(bandParam)
	if err != nil {
		s.metrics.ValidationFailuresInc()
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown band %q", bandParam))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own response.
		log.Warn().Err(err).Msg("stream upgrade failed")
		return
	}
	defer conn.Close()

	s.metrics.StreamSessionsAdd(1)
	defer s.metrics.StreamSessionsAdd(-1)

	conn.SetReadLimit(streamReadLimit)
	log.Info().
		Str("band", band.String()).
		Str("remote", conn.RemoteAddr().String()).
		Msg("stream session opened")

	for {
		if err := conn.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
			return
		}
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("band", band.String()).Msg("stream session ended")
			}
			return
		}

		resp := s.scoreFrame(r, band, frame)
		if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
			return
		}
		if err := conn.WriteJSON(resp); err != nil {
			log.Warn().Err(err).Str("band", band.String()).Msg("stream write failed")
			return
		}
	}
}

func (s *Server) scoreFrame(r *http.Request, band nox.Band, frame []byte) any {
	reading, err := decodeReading(bytes.NewReader(frame))
	if err != nil {
		s.metrics.ValidationFailuresInc()
		return errorResponse{Error: err.Error()}
	}

	result, err := s.svc.Predict(r.Context(), reading, band)
	if err != nil {
		log.Error().Err(err).Str("band", band.String()).Msg("stream prediction failed")
		return errorResponse{Error: err.Error()}
	}

	s.publisher.Publish(emit.Event{
		RequestID: uuid.NewString(),
		Band:      band.String(),
		NOxPred:   result.NOx,
		Reading:   reading,
		Ts:        time.Now().UTC(),
	})

	return predictionResponse{NOXPred: result.NOx}
}
