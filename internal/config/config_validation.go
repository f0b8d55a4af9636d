// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
)

// validate checks that the merged [StructuredConfig] can be used to build a
// keystore.
func (cfg *StructuredConfig) validate() error {
	ks := cfg.Keystore

	if ks.RequestTimeout < 0 {
		return fmt.Errorf("%w: negative request timeout", ErrInvalidKeystoreConfigs)
	}

	if ks.DefaultKind == "" {
		return fmt.Errorf("%w: empty default kind", ErrInvalidKeystoreConfigs)
	}

	u, err := url.Parse(ks.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: endpoint %q must include scheme and host", ErrInvalidKeystoreConfigs, ks.Endpoint)
	}

	if _, err = zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLogConfigs, err)
	}

	return nil
}
