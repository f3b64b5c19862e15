package server_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bevalen/tune-energy-ocr-ui/internal/batch"
	"github.com/bevalen/tune-energy-ocr-ui/internal/server"
)

type captureRunner struct {
	got chan batch.Request
}

func (r *captureRunner) Run(_ context.Context, req batch.Request) (batch.Summary, error) {
	r.got <- req
	return batch.Summary{}, nil
}

func newTestServer() (*server.Server, *captureRunner) {
	runner := &captureRunner{got: make(chan batch.Request, 1)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return server.New(runner, logger), runner
}

func post(t *testing.T, srv *server.Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/batches", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, req)
	return w
}

func TestTriggerAcceptsValidRequest(t *testing.T) {
	srv, runner := newTestServer()

	w := post(t, srv, `{"customer":"Acme","location_id":"site-42","location_address":"1 Main St","email":"ops@acme.test"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())

	select {
	case req := <-runner.got:
		assert.Equal(t, "Acme", req.Customer)
		assert.Equal(t, "site-42", req.LocationID)
	case <-time.After(2 * time.Second):
		t.Fatal("batch was never started")
	}
	srv.Wait()
}

func TestTriggerRejectsMalformedJSON(t *testing.T) {
	srv, runner := newTestServer()

	w := post(t, srv, `{"customer": "Acme",`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON body")
	assert.Empty(t, runner.got)
}

func TestTriggerRejectsMissingFields(t *testing.T) {
	srv, runner := newTestServer()

	w := post(t, srv, `{"customer":"Acme","location_id":"site-42"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email is required")
	assert.Empty(t, runner.got)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}
