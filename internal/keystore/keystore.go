// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package keystore stores and retrieves ciphertext blobs in Google Cloud
// Datastore by (kind, name).
//
// A [KeyStore] holds one [adapter.Transport] chosen at construction: the
// native Datastore client by default, or the REST transport when
// config.Keystore.RESTAPI is set. Every entity carries a single unindexed
// "cipher" property; the keystore never interprets its contents.
package keystore

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/MKhiriev/go-cred-stash/internal/adapter"
	"github.com/MKhiriev/go-cred-stash/internal/config"
	"github.com/MKhiriev/go-cred-stash/internal/logger"
	"github.com/MKhiriev/go-cred-stash/internal/utils"
	"github.com/MKhiriev/go-cred-stash/models"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// DatastoreScope is the OAuth2 scope requested for the REST transport.
const DatastoreScope = "https://www.googleapis.com/auth/datastore"

const userAgent = "go-cred-stash"

// KeyStore is a facade over a Datastore transport. It is safe for
// concurrent use.
type KeyStore struct {
	transport   adapter.Transport
	defaultKind string
	traceIDs    *utils.UUIDGenerator
	logger      *logger.Logger
	closed      atomic.Bool
}

// New builds a KeyStore from cfg.
//
// In REST mode ambient credentials are resolved with
// google.FindDefaultCredentials; the project id falls back to the one found
// in the credentials when cfg.ProjectID is empty. Otherwise the native
// Datastore client is created for cfg.ProjectID and cfg.Namespace; an empty
// project is detected by the client library.
func New(ctx context.Context, cfg config.Keystore, log *logger.Logger) (*KeyStore, error) {
	if log == nil {
		log = logger.Nop()
	}

	var (
		transport adapter.Transport
		err       error
	)
	if cfg.RESTAPI {
		transport, err = newRESTTransport(ctx, cfg, log)
	} else {
		transport, err = newNativeTransport(ctx, cfg, log)
	}
	if err != nil {
		return nil, err
	}

	ks := NewWithTransport(transport, log)
	if cfg.DefaultKind != "" {
		ks.defaultKind = cfg.DefaultKind
	}
	return ks, nil
}

func newRESTTransport(ctx context.Context, cfg config.Keystore, log *logger.Logger) (adapter.Transport, error) {
	creds, err := google.FindDefaultCredentials(ctx, DatastoreScope)
	if err != nil {
		return nil, fmt.Errorf("find default credentials: %w", err)
	}

	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return nil, ErrNoProject
	}

	log.Debug().Str("project", projectID).Str("endpoint", cfg.Endpoint).Msg("using datastore REST transport")

	transport, err := adapter.NewRESTTransport(ctx, adapter.RESTConfig{
		Endpoint:  cfg.Endpoint,
		ProjectID: projectID,
		Namespace: cfg.Namespace,
		Timeout:   cfg.RequestTimeout,
	}, creds.TokenSource, log.GetChildLogger())
	if err != nil {
		return nil, fmt.Errorf("create REST transport: %w", err)
	}
	return transport, nil
}

func newNativeTransport(ctx context.Context, cfg config.Keystore, log *logger.Logger) (adapter.Transport, error) {
	if cfg.ProjectID == "" {
		log.Debug().Msg("using native datastore client, project detected from environment")
	} else {
		log.Debug().Str("project", cfg.ProjectID).Msg("using native datastore client")
	}

	transport, err := adapter.NewNativeTransport(ctx, adapter.NativeConfig{
		ProjectID: cfg.ProjectID,
		Namespace: cfg.Namespace,
	}, log.GetChildLogger(), option.WithUserAgent(userAgent))
	if err != nil {
		return nil, fmt.Errorf("create native transport: %w", err)
	}
	return transport, nil
}

// NewWithTransport builds a KeyStore over an existing transport. Empty kinds
// fall back to [config.DefaultKind].
func NewWithTransport(transport adapter.Transport, log *logger.Logger) *KeyStore {
	if log == nil {
		log = logger.Nop()
	}
	return &KeyStore{
		transport:   transport,
		defaultKind: config.DefaultKind,
		traceIDs:    utils.NewUUIDGenerator(),
		logger:      log,
	}
}

// Get returns the ciphertext stored under (kind, name).
//
// A missing entity, or one without a cipher property, is reported as
// ok == false with a nil error.
func (k *KeyStore) Get(ctx context.Context, kind, name string) (content []byte, ok bool, err error) {
	kind = k.kindOrDefault(kind)
	log := k.opLogger(ctx, "get").With().Str("kind", kind).Str("name", name).Logger()

	if k.closed.Load() {
		return nil, false, ErrClosed
	}

	key, err := models.NewKey(kind, name)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", adapter.ErrInvalidArgument, err)
	}

	entity, found, err := k.transport.Lookup(ctx, key)
	if err != nil {
		log.Err(err).Msg("lookup failed")
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	if !found {
		log.Debug().Msg("entity not found")
		return nil, false, nil
	}

	content, ok = entity.Cipher()
	if !ok {
		log.Warn().Msg("entity has no cipher property")
		return nil, false, nil
	}
	if content == nil {
		content = []byte{}
	}

	log.Debug().Int("size", len(content)).Msg("entity found")
	return content, true, nil
}

// Put stores content under (kind, name), replacing any previous value.
// Nil content is stored as an empty blob.
func (k *KeyStore) Put(ctx context.Context, kind, name string, content []byte) error {
	kind = k.kindOrDefault(kind)
	log := k.opLogger(ctx, "put").With().Str("kind", kind).Str("name", name).Logger()

	if k.closed.Load() {
		return ErrClosed
	}

	entity := models.NewCipherEntity(kind, name, content)
	if err := entity.Key.Validate(); err != nil {
		return fmt.Errorf("%w: %w", adapter.ErrInvalidArgument, err)
	}

	if err := k.transport.Upsert(ctx, entity); err != nil {
		log.Err(err).Msg("upsert failed")
		return fmt.Errorf("put %s: %w", entity.Key, err)
	}

	log.Debug().Int("size", len(content)).Msg("entity stored")
	return nil
}

// List returns the names of every entity of kind, in the order the
// provider returned them.
func (k *KeyStore) List(ctx context.Context, kind string) ([]string, error) {
	kind = k.kindOrDefault(kind)
	log := k.opLogger(ctx, "list").With().Str("kind", kind).Logger()

	if k.closed.Load() {
		return nil, ErrClosed
	}

	entities, err := k.transport.Query(ctx, kind)
	if err != nil {
		log.Err(err).Msg("query failed")
		return nil, fmt.Errorf("list %q: %w", kind, err)
	}

	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name())
	}

	log.Debug().Int("count", len(names)).Msg("entities listed")
	return names, nil
}

// Close releases the transport. Calling Close more than once is a no-op.
func (k *KeyStore) Close() error {
	if !k.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := k.transport.Close(); err != nil {
		return fmt.Errorf("close transport: %w", err)
	}
	return nil
}

func (k *KeyStore) kindOrDefault(kind string) string {
	if kind == "" {
		return k.defaultKind
	}
	return kind
}

// opLogger tags log entries of one operation with the caller's trace id, or a
// fresh one when the context carries none.
func (k *KeyStore) opLogger(ctx context.Context, op string) *logger.Logger {
	traceID, ok := utils.GetTraceIDFromContext(ctx)
	if !ok {
		traceID = k.traceIDs.Generate()
	}
	return &logger.Logger{Logger: k.logger.WithTraceID(traceID).With().Str("op", op).Logger()}
}
