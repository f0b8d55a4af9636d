// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEnvKeys = []string{
	"GCREDSTASH_CONFIG",
	"GCREDSTASH_GCP_PROJECT_ID",
	"GCREDSTASH_KEYSTORE_REST_API",
	"GCREDSTASH_DATASTORE_NAMESPACE",
	"GCREDSTASH_DATASTORE_ENDPOINT",
	"GCREDSTASH_REQUEST_TIMEOUT",
	"GCREDSTASH_DEFAULT_DATASTORE_KIND",
	"GCREDSTASH_DEFAULT_KEY_RING_ID",
	"GCREDSTASH_DEFAULT_LOCATION_ID",
	"GCREDSTASH_DEFAULT_CRYPTO_KEY_ID",
	"GCREDSTASH_LOG_LEVEL",
}

// setEnvVars clears every GCREDSTASH_ variable for the duration of the test
// and then sets vars.
func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, k := range allEnvKeys {
		if old, ok := os.LookupEnv(k); ok {
			require.NoError(t, os.Unsetenv(k))
			t.Cleanup(func() { _ = os.Setenv(k, old) })
		}
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestParseEnv_AllFields(t *testing.T) {
	// Arrange
	setEnvVars(t, map[string]string{
		"GCREDSTASH_CONFIG":                 "/path/to/config.json",
		"GCREDSTASH_GCP_PROJECT_ID":         "my-project",
		"GCREDSTASH_KEYSTORE_REST_API":      "yes",
		"GCREDSTASH_DATASTORE_NAMESPACE":    "prod",
		"GCREDSTASH_DATASTORE_ENDPOINT":     "http://localhost:8081",
		"GCREDSTASH_REQUEST_TIMEOUT":        "5s",
		"GCREDSTASH_DEFAULT_DATASTORE_KIND": "Secrets",
		"GCREDSTASH_DEFAULT_KEY_RING_ID":    "ring",
		"GCREDSTASH_DEFAULT_LOCATION_ID":    "europe-west1",
		"GCREDSTASH_DEFAULT_CRYPTO_KEY_ID":  "key",
		"GCREDSTASH_LOG_LEVEL":              "debug",
	})

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)

	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)
	assert.Equal(t, "my-project", cfg.Keystore.ProjectID)
	assert.True(t, bool(cfg.Keystore.RESTAPI))
	assert.Equal(t, "prod", cfg.Keystore.Namespace)
	assert.Equal(t, "http://localhost:8081", cfg.Keystore.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Keystore.RequestTimeout)
	assert.Equal(t, "Secrets", cfg.Keystore.DefaultKind)
	assert.Equal(t, "ring", cfg.KMS.KeyRingID)
	assert.Equal(t, "europe-west1", cfg.KMS.LocationID)
	assert.Equal(t, "key", cfg.KMS.CryptoKeyID)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParseEnv_Empty(t *testing.T) {
	setEnvVars(t, nil)

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestParseEnv_RESTAPISpellings(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"t", true},
		{"TRUE", true},
		{"y", true},
		{"Yes", true},
		{"0", false},
		{"no", false},
		{"false", false},
		{"on", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			setEnvVars(t, map[string]string{"GCREDSTASH_KEYSTORE_REST_API": tt.value})

			cfg := &StructuredConfig{}
			require.NoError(t, parseEnv(cfg))
			assert.Equal(t, tt.want, bool(cfg.Keystore.RESTAPI))
		})
	}
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	setEnvVars(t, map[string]string{"GCREDSTASH_REQUEST_TIMEOUT": "not-a-duration"})

	err := parseEnv(&StructuredConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error getting env configs")
}
