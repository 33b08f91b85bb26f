package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialStream(t *testing.T, ts *httptest.Server, band string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/predict_stream?band=" + band
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(frame, &body))
	return body
}

func TestStreamPredicts(t *testing.T) {
	srv, publisher := newTestServer(t, Config{StreamEnabled: true}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialStream(t, ts, "full")
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(validBody)))
	body := readFrame(t, conn)
	pred, ok := body["NOX_pred"]
	require.True(t, ok, "frame must carry NOX_pred")
	assert.IsType(t, float64(0), pred)
	assert.Equal(t, 1, publisher.count())

	// A second frame on the same session scores too.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(validBody)))
	second := readFrame(t, conn)
	assert.Equal(t, pred, second["NOX_pred"])
}

func TestStreamMalformedFrameKeepsSessionOpen(t *testing.T) {
	srv, _ := newTestServer(t, Config{StreamEnabled: true}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialStream(t, ts, "130_136")
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"TIT": 1100`)))
	body := readFrame(t, conn)
	assert.Contains(t, body, "error")

	// Session survives the bad frame.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(validBody)))
	body = readFrame(t, conn)
	assert.Contains(t, body, "NOX_pred")
}

func TestStreamUnknownBand(t *testing.T) {
	srv, _ := newTestServer(t, Config{StreamEnabled: true}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/predict_stream?band=90_100"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStreamCleanClose(t *testing.T) {
	srv, _ := newTestServer(t, Config{StreamEnabled: true}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialStream(t, ts, "160p")
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	require.NoError(t, conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)))
	conn.Close()
}
