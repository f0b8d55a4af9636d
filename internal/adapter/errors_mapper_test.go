package adapter

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func responseWith(t *testing.T, statusCode int, body string) *resty.Response {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	resp, err := resty.New().R().Get(srv.URL)
	require.NoError(t, err)
	return resp
}

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "ok", status: http.StatusOK},
		{name: "no content", status: http.StatusNoContent},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":{"code":400,"message":"bad key","status":"INVALID_ARGUMENT"}}`, wantErr: ErrBadRequest, wantMsg: "INVALID_ARGUMENT: bad key"},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, body: "denied", wantErr: ErrForbidden, wantMsg: "denied"},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "conflict", status: http.StatusConflict, wantErr: ErrConflict},
		{name: "internal", status: http.StatusInternalServerError, wantErr: ErrInternalServerError},
		{name: "bad gateway", status: http.StatusBadGateway, wantErr: ErrBadGateway},
		{name: "unavailable", status: http.StatusServiceUnavailable, wantErr: ErrUnavailable},
		{name: "unmapped", status: http.StatusTeapot, wantMsg: "http 418"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapHTTPError(responseWith(t, tt.status, tt.body))

			if tt.wantErr == nil && tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: gone", errorMessage([]byte(`{"error":{"message":"gone","status":"NOT_FOUND"}}`)))
	assert.Equal(t, "gone", errorMessage([]byte(`{"error":{"message":"gone"}}`)))
	assert.Equal(t, "plain text", errorMessage([]byte("  plain text\n")))
	assert.Equal(t, "", errorMessage(nil))
}

func TestMapGRPCError(t *testing.T) {
	assert.NoError(t, mapGRPCError(nil))

	plain := errors.New("dial failed")
	assert.Same(t, plain, mapGRPCError(plain))

	tests := []struct {
		code    codes.Code
		wantErr error
	}{
		{codes.InvalidArgument, ErrBadRequest},
		{codes.FailedPrecondition, ErrBadRequest},
		{codes.Unauthenticated, ErrUnauthorized},
		{codes.PermissionDenied, ErrForbidden},
		{codes.NotFound, ErrNotFound},
		{codes.AlreadyExists, ErrConflict},
		{codes.Aborted, ErrConflict},
		{codes.Internal, ErrInternalServerError},
		{codes.Unavailable, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			src := status.Error(tt.code, "boom")
			err := mapGRPCError(src)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, src)
		})
	}

	deadline := status.Error(codes.DeadlineExceeded, "slow")
	assert.Equal(t, deadline, mapGRPCError(deadline))
}
