// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// EnvPrefix is prepended to every environment variable read by [parseEnv].
const EnvPrefix = "GCREDSTASH_"

const (
	DefaultEndpoint       = "https://datastore.googleapis.com"
	DefaultRequestTimeout = 30 * time.Second
	DefaultKind           = "Credentials"
	DefaultLocationID     = "global"
	DefaultLogLevel       = "info"
)

// StructuredConfig is the top-level configuration container. It is populated
// by merging values from environment variables, command-line flags, and an
// optional JSON file.
type StructuredConfig struct {
	// Keystore holds the Datastore connection and transport settings.
	Keystore Keystore

	// KMS holds the default key identifiers used by the encryption layer.
	KMS KMS

	// Log holds logger settings.
	Log Log

	// JSONFilePath is the optional path to a JSON configuration file.
	// Env: GCREDSTASH_CONFIG
	JSONFilePath string `env:"CONFIG"`
}

// Keystore configures where and how ciphertext entities are stored.
type Keystore struct {
	// ProjectID is the Google Cloud project that owns the Datastore database.
	// In REST mode it may be left empty, in which case the project of the
	// ambient credentials is used.
	// Env: GCREDSTASH_GCP_PROJECT_ID
	ProjectID string `env:"GCP_PROJECT_ID"`

	// RESTAPI selects the hand-built REST transport instead of the native
	// Datastore client.
	// Env: GCREDSTASH_KEYSTORE_REST_API
	RESTAPI Toggle `env:"KEYSTORE_REST_API"`

	// Namespace is the Datastore namespace entities are written to.
	// Env: GCREDSTASH_DATASTORE_NAMESPACE
	Namespace string `env:"DATASTORE_NAMESPACE"`

	// Endpoint is the base URL of the Datastore JSON API (REST mode only).
	// Env: GCREDSTASH_DATASTORE_ENDPOINT
	Endpoint string `env:"DATASTORE_ENDPOINT"`

	// RequestTimeout bounds a single REST round trip.
	// Env: GCREDSTASH_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// DefaultKind is used when a caller passes an empty kind.
	// Env: GCREDSTASH_DEFAULT_DATASTORE_KIND
	DefaultKind string `env:"DEFAULT_DATASTORE_KIND"`
}

// KMS holds the default Cloud KMS identifiers. They are consumed as plain
// values; the keystore never calls KMS itself.
type KMS struct {
	// Env: GCREDSTASH_DEFAULT_KEY_RING_ID
	KeyRingID string `env:"DEFAULT_KEY_RING_ID"`
	// Env: GCREDSTASH_DEFAULT_LOCATION_ID
	LocationID string `env:"DEFAULT_LOCATION_ID"`
	// Env: GCREDSTASH_DEFAULT_CRYPTO_KEY_ID
	CryptoKeyID string `env:"DEFAULT_CRYPTO_KEY_ID"`
}

// Log holds logger settings.
type Log struct {
	// Level is a zerolog level name (debug, info, warn, error).
	// Env: GCREDSTASH_LOG_LEVEL
	Level string `env:"LOG_LEVEL"`
}

// CryptoKeyName returns the fully-qualified Cloud KMS resource name of the
// default crypto key in projectID.
func (k KMS) CryptoKeyName(projectID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/keyRings/%s/cryptoKeys/%s",
		projectID, k.LocationID, k.KeyRingID, k.CryptoKeyID)
}

// Defaults returns the values applied to fields no source has set.
func Defaults() *StructuredConfig {
	return &StructuredConfig{
		Keystore: Keystore{
			Endpoint:       DefaultEndpoint,
			RequestTimeout: DefaultRequestTimeout,
			DefaultKind:    DefaultKind,
		},
		KMS: KMS{
			LocationID: DefaultLocationID,
		},
		Log: Log{
			Level: DefaultLogLevel,
		},
	}
}

// GetStructuredConfig loads, merges, and validates the configuration from
// environment variables, command-line flags and the JSON file (path resolved
// from the first two), in that order.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
