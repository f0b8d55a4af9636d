// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport layer between the keystore and
// Google Cloud Datastore.
//
// The primary abstraction is [Transport], which performs three primitive
// operations: point lookup by key, non-transactional upsert of a single
// entity, and a kind-scoped query. Two implementations are shipped:
//   - [NewNativeTransport] wraps the cloud.google.com/go/datastore client;
//   - [NewRESTTransport] talks to the Datastore JSON API directly over HTTPS
//     with a bearer token from an oauth2.TokenSource.
//
// Both implementations exchange [models.Entity] values with raw byte
// property values; the REST transport base64-encodes them on the wire.
//
// Transport failures are mapped onto the sentinel errors in errors.go so that
// callers can use [errors.Is] regardless of the implementation; the original
// error is kept in the chain.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-cred-stash/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/transport_mock.go -package=mock

// Transport performs single round-trip operations against a Datastore
// database. Implementations hold one long-lived client or session and are
// safe for concurrent use.
type Transport interface {
	// Lookup reads the entity stored under key. A missing entity is reported
	// as found == false with a nil error. Returns [ErrInvalidArgument]
	// (wrapped) before any network call if key is empty or malformed.
	Lookup(ctx context.Context, key models.Key) (entity models.Entity, found bool, err error)

	// Upsert creates or wholesale replaces entity without conflict detection.
	// Returns [ErrInvalidArgument] (wrapped) before any network call if the
	// entity has no valid key or no properties.
	Upsert(ctx context.Context, entity models.Entity) error

	// Query returns every entity of kind in the order the provider returned
	// them. Returns [ErrInvalidArgument] (wrapped) if kind is empty.
	Query(ctx context.Context, kind string) ([]models.Entity, error)

	// Close releases the underlying client or session.
	Close() error
}
