package keystore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MKhiriev/go-cred-stash/internal/adapter"
	"github.com/MKhiriev/go-cred-stash/internal/config"
	"github.com/MKhiriev/go-cred-stash/internal/logger"
	"github.com/MKhiriev/go-cred-stash/internal/mock"
	"github.com/MKhiriev/go-cred-stash/internal/utils"
	"github.com/MKhiriev/go-cred-stash/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestKeyStore(t *testing.T) (*KeyStore, *mock.MockTransport) {
	t.Helper()
	ctrl := gomock.NewController(t)
	transport := mock.NewMockTransport(ctrl)
	return NewWithTransport(transport, logger.Nop()), transport
}

func credentialsKey(t *testing.T, name string) models.Key {
	t.Helper()
	k, err := models.NewKey("Credentials", name)
	require.NoError(t, err)
	return k
}

// ── Get ──────────────────────────────────────────────────────────────────────

func TestKeyStore_Get_Found(t *testing.T) {
	ks, transport := newTestKeyStore(t)
	ctx := context.Background()

	transport.EXPECT().
		Lookup(ctx, credentialsKey(t, "db_password")).
		Return(models.NewCipherEntity("Credentials", "db_password", []byte("s3cr3t")), true, nil)

	content, ok, err := ks.Get(ctx, "Credentials", "db_password")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("s3cr3t"), content)
}

func TestKeyStore_Get_NotFound(t *testing.T) {
	ks, transport := newTestKeyStore(t)
	ctx := context.Background()

	transport.EXPECT().Lookup(ctx, gomock.Any()).Return(models.Entity{}, false, nil)

	content, ok, err := ks.Get(ctx, "Credentials", "nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, content)
}

func TestKeyStore_Get_NoCipherProperty(t *testing.T) {
	ks, transport := newTestKeyStore(t)
	ctx := context.Background()

	transport.EXPECT().Lookup(ctx, gomock.Any()).Return(models.Entity{
		Key:        credentialsKey(t, "legacy"),
		Properties: models.Properties{"other": {Value: []byte("x")}},
	}, true, nil)

	content, ok, err := ks.Get(ctx, "Credentials", "legacy")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, content)
}

func TestKeyStore_Get_NilCipherIsEmpty(t *testing.T) {
	ks, transport := newTestKeyStore(t)
	ctx := context.Background()

	transport.EXPECT().Lookup(ctx, gomock.Any()).Return(models.Entity{
		Key:        credentialsKey(t, "empty"),
		Properties: models.Properties{models.CipherProperty: {}},
	}, true, nil)

	content, ok, err := ks.Get(ctx, "Credentials", "empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, content)
	assert.Empty(t, content)
}

func TestKeyStore_Get_TransportError(t *testing.T) {
	ks, transport := newTestKeyStore(t)
	ctx := context.Background()

	transport.EXPECT().Lookup(ctx, gomock.Any()).Return(models.Entity{}, false, adapter.ErrForbidden)

	_, ok, err := ks.Get(ctx, "Credentials", "db_password")
	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrForbidden)
	assert.False(t, ok)
}

func TestKeyStore_Get_EmptyNameSkipsTransport(t *testing.T) {
	ks, _ := newTestKeyStore(t)

	_, _, err := ks.Get(context.Background(), "Credentials", "")
	assert.ErrorIs(t, err, adapter.ErrInvalidArgument)
	assert.ErrorIs(t, err, models.ErrInvalidKey)
}

func TestKeyStore_Get_DefaultKind(t *testing.T) {
	ks, transport := newTestKeyStore(t)
	ks.defaultKind = "Secrets"
	ctx := context.Background()

	want, err := models.NewKey("Secrets", "token")
	require.NoError(t, err)
	transport.EXPECT().Lookup(ctx, want).Return(models.Entity{}, false, nil)

	_, _, err = ks.Get(ctx, "", "token")
	require.NoError(t, err)
}

// ── Put ──────────────────────────────────────────────────────────────────────

func TestKeyStore_Put(t *testing.T) {
	ks, transport := newTestKeyStore(t)
	ctx := context.Background()

	transport.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, e models.Entity) error {
			assert.Equal(t, credentialsKey(t, "db_password"), e.Key)
			require.Len(t, e.Properties, 1)
			p := e.Properties[models.CipherProperty]
			assert.Equal(t, []byte("s3cr3t"), p.Value)
			assert.True(t, p.ExcludeFromIndexes)
			return nil
		},
	)

	require.NoError(t, ks.Put(ctx, "Credentials", "db_password", []byte("s3cr3t")))
}

func TestKeyStore_Put_NilContent(t *testing.T) {
	ks, transport := newTestKeyStore(t)
	ctx := context.Background()

	transport.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, e models.Entity) error {
			p := e.Properties[models.CipherProperty]
			assert.NotNil(t, p.Value)
			assert.Empty(t, p.Value)
			return nil
		},
	)

	require.NoError(t, ks.Put(ctx, "Credentials", "empty", nil))
}

func TestKeyStore_Put_EmptyNameSkipsTransport(t *testing.T) {
	ks, _ := newTestKeyStore(t)

	err := ks.Put(context.Background(), "Credentials", "", []byte("x"))
	assert.ErrorIs(t, err, adapter.ErrInvalidArgument)
}

func TestKeyStore_Put_TransportError(t *testing.T) {
	ks, transport := newTestKeyStore(t)
	ctx := context.Background()

	transport.EXPECT().Upsert(ctx, gomock.Any()).Return(adapter.ErrUnavailable)

	err := ks.Put(ctx, "Credentials", "db_password", []byte("x"))
	assert.ErrorIs(t, err, adapter.ErrUnavailable)
	assert.Contains(t, err.Error(), "Credentials/db_password")
}

// ── List ─────────────────────────────────────────────────────────────────────

func TestKeyStore_List(t *testing.T) {
	ks, transport := newTestKeyStore(t)
	ctx := context.Background()

	transport.EXPECT().Query(ctx, "Credentials").Return([]models.Entity{
		models.NewCipherEntity("Credentials", "b", nil),
		models.NewCipherEntity("Credentials", "a", nil),
	}, nil)

	names, err := ks.List(ctx, "Credentials")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names)
}

func TestKeyStore_List_Empty(t *testing.T) {
	ks, transport := newTestKeyStore(t)
	ctx := context.Background()

	transport.EXPECT().Query(ctx, config.DefaultKind).Return(nil, nil)

	names, err := ks.List(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)
}

func TestKeyStore_List_TransportError(t *testing.T) {
	ks, transport := newTestKeyStore(t)
	ctx := context.Background()

	transport.EXPECT().Query(ctx, "Credentials").Return(nil, adapter.ErrUnauthorized)

	_, err := ks.List(ctx, "Credentials")
	assert.ErrorIs(t, err, adapter.ErrUnauthorized)
}

// ── Close ────────────────────────────────────────────────────────────────────

func TestKeyStore_Close(t *testing.T) {
	ks, transport := newTestKeyStore(t)
	ctx := context.Background()

	transport.EXPECT().Close().Return(nil).Times(1)

	require.NoError(t, ks.Close())
	require.NoError(t, ks.Close())

	_, _, err := ks.Get(ctx, "Credentials", "a")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, ks.Put(ctx, "Credentials", "a", nil), ErrClosed)
	_, err = ks.List(ctx, "Credentials")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestKeyStore_Close_Error(t *testing.T) {
	ks, transport := newTestKeyStore(t)

	transport.EXPECT().Close().Return(errors.New("boom"))

	err := ks.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

// ── logging ──────────────────────────────────────────────────────────────────

func TestKeyStore_TraceID(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mock.NewMockTransport(ctrl)

	var buf bytes.Buffer
	log := &logger.Logger{Logger: zerolog.New(&buf).Level(zerolog.DebugLevel)}
	ks := NewWithTransport(transport, log)

	ctx := utils.WithTraceID(context.Background(), "trace-123")
	transport.EXPECT().Lookup(ctx, gomock.Any()).Return(models.Entity{}, false, nil)

	_, _, err := ks.Get(ctx, "Credentials", "a")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"trace_id":"trace-123"`)
	assert.Contains(t, out, `"op":"get"`)
	assert.NotContains(t, out, "s3cr3t")
}

// ── New ──────────────────────────────────────────────────────────────────────

func TestNew_NativeDetectsProject(t *testing.T) {
	// The emulator needs no credentials and the connection is dialed lazily.
	t.Setenv("DATASTORE_EMULATOR_HOST", "localhost:8081")
	t.Setenv("DATASTORE_PROJECT_ID", "emulated-project")

	ks, err := New(context.Background(), config.Keystore{}, nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultKind, ks.defaultKind)
	require.NoError(t, ks.Close())
}

func writeCredentials(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
}

const authorizedUserCredentials = `{
	"type": "authorized_user",
	"client_id": "client.apps.googleusercontent.com",
	"client_secret": "secret",
	"refresh_token": "refresh"
}`

func TestNew_REST(t *testing.T) {
	writeCredentials(t, authorizedUserCredentials)

	ks, err := New(context.Background(), config.Keystore{
		ProjectID:   "test-project",
		RESTAPI:     true,
		Endpoint:    config.DefaultEndpoint,
		DefaultKind: "Secrets",
	}, logger.Nop())
	require.NoError(t, err)
	defer func() { _ = ks.Close() }()

	assert.Equal(t, "Secrets", ks.defaultKind)
}

func TestNew_RESTWithoutProject(t *testing.T) {
	writeCredentials(t, authorizedUserCredentials)

	_, err := New(context.Background(), config.Keystore{
		RESTAPI:  true,
		Endpoint: config.DefaultEndpoint,
	}, logger.Nop())
	assert.ErrorIs(t, err, ErrNoProject)
}
