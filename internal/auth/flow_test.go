package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPendingRequestComplete(t *testing.T) {
	flow := NewFlow()
	req := flow.Begin()
	require.NotEmpty(t, req.ID)

	go req.Complete("the-code")

	code, err := req.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, "the-code", code)
}

func TestPendingRequestDeny(t *testing.T) {
	flow := NewFlow()
	req := flow.Begin()

	go req.Deny("access_denied")

	_, err := req.Wait(context.Background())
	require.ErrorIs(t, err, ErrDenied)
	require.Contains(t, err.Error(), "access_denied")
}

func TestPendingRequestResolvesOnce(t *testing.T) {
	flow := NewFlow()
	req := flow.Begin()

	req.Complete("first")
	req.Complete("second")
	req.Deny("late")
	req.Cancel()

	code, err := req.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, "first", code)
}

func TestBeginCancelsPrevious(t *testing.T) {
	flow := NewFlow()
	first := flow.Begin()
	second := flow.Begin()

	require.NotEqual(t, first.ID, second.ID)
	require.Same(t, second, flow.Current())

	_, err := first.Wait(context.Background())
	require.ErrorIs(t, err, ErrCancelled)
}

func TestWaitContextCancel(t *testing.T) {
	flow := NewFlow()
	req := flow.Begin()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := req.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallbackCompletesPending(t *testing.T) {
	flow := NewFlow()
	req := flow.Begin()

	server := NewCallbackServer("127.0.0.1:0", flow, zerolog.Nop())

	rec := httptest.NewRecorder()
	server.handleCallback(rec, httptest.NewRequest(http.MethodGet, "/callback?code=cb-code", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	code, err := req.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, "cb-code", code)
}

func TestCallbackDeniesPending(t *testing.T) {
	flow := NewFlow()
	req := flow.Begin()

	server := NewCallbackServer("127.0.0.1:0", flow, zerolog.Nop())

	rec := httptest.NewRecorder()
	server.handleCallback(rec, httptest.NewRequest(http.MethodGet, "/callback?error=access_denied", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	_, err := req.Wait(context.Background())
	require.ErrorIs(t, err, ErrDenied)
}

func TestCallbackWithoutPending(t *testing.T) {
	server := NewCallbackServer("127.0.0.1:0", NewFlow(), zerolog.Nop())

	rec := httptest.NewRecorder()
	server.handleCallback(rec, httptest.NewRequest(http.MethodGet, "/callback?code=x", nil))

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCallbackMissingCode(t *testing.T) {
	flow := NewFlow()
	flow.Begin()
	server := NewCallbackServer("127.0.0.1:0", flow, zerolog.Nop())

	rec := httptest.NewRecorder()
	server.handleCallback(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
