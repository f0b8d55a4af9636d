package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk JSON layout of [StructuredConfig].
type StructuredJSONConfig struct {
	Keystore struct {
		ProjectID      string   `json:"project_id"`
		RESTAPI        bool     `json:"rest_api"`
		Namespace      string   `json:"namespace"`
		Endpoint       string   `json:"endpoint"`
		RequestTimeout Duration `json:"request_timeout"`
		DefaultKind    string   `json:"default_kind"`
	} `json:"keystore,omitempty"`

	KMS struct {
		KeyRingID   string `json:"key_ring_id"`
		LocationID  string `json:"location_id"`
		CryptoKeyID string `json:"crypto_key_id"`
	} `json:"kms,omitempty"`

	Log struct {
		Level string `json:"level"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Keystore: Keystore{
			ProjectID:      jsonCfg.Keystore.ProjectID,
			RESTAPI:        Toggle(jsonCfg.Keystore.RESTAPI),
			Namespace:      jsonCfg.Keystore.Namespace,
			Endpoint:       jsonCfg.Keystore.Endpoint,
			RequestTimeout: time.Duration(jsonCfg.Keystore.RequestTimeout),
			DefaultKind:    jsonCfg.Keystore.DefaultKind,
		},
		KMS: KMS{
			KeyRingID:   jsonCfg.KMS.KeyRingID,
			LocationID:  jsonCfg.KMS.LocationID,
			CryptoKeyID: jsonCfg.KMS.CryptoKeyID,
		},
		Log: Log{
			Level: jsonCfg.Log.Level,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
