// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKey is returned when a key path is empty, has an odd number of
// kind/name tokens, or contains an empty kind or name.
var ErrInvalidKey = errors.New("invalid datastore key")

// PathElement is a single (kind, name) pair of a datastore key path.
type PathElement struct {
	Kind string
	Name string
}

// Key identifies a single entity. The keystore always uses a one-element
// path, but ancestor paths are carried through both transports unchanged.
type Key struct {
	Path []PathElement
}

// NewKey builds a Key from a flat list of alternating kind and name tokens,
// consumed two at a time:
//
//	NewKey("Credentials", "db_password")
//	NewKey("Team", "ops", "Credentials", "db_password")
func NewKey(parts ...string) (Key, error) {
	if len(parts) == 0 || len(parts)%2 != 0 {
		return Key{}, fmt.Errorf("%w: expected a non-empty even number of tokens, got %d", ErrInvalidKey, len(parts))
	}

	path := make([]PathElement, 0, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		path = append(path, PathElement{Kind: parts[i], Name: parts[i+1]})
	}

	key := Key{Path: path}
	if err := key.Validate(); err != nil {
		return Key{}, err
	}
	return key, nil
}

// Validate reports whether the key has at least one element and every
// element has both a kind and a name.
func (k Key) Validate() error {
	if len(k.Path) == 0 {
		return fmt.Errorf("%w: empty path", ErrInvalidKey)
	}
	for i, el := range k.Path {
		if el.Kind == "" || el.Name == "" {
			return fmt.Errorf("%w: element %d has empty kind or name", ErrInvalidKey, i)
		}
	}
	return nil
}

// Kind returns the kind of the leaf element, or "" for an empty key.
func (k Key) Kind() string {
	if len(k.Path) == 0 {
		return ""
	}
	return k.Path[len(k.Path)-1].Kind
}

// Name returns the name of the leaf element, or "" for an empty key.
func (k Key) Name() string {
	if len(k.Path) == 0 {
		return ""
	}
	return k.Path[len(k.Path)-1].Name
}

func (k Key) String() string {
	parts := make([]string, 0, len(k.Path))
	for _, el := range k.Path {
		parts = append(parts, el.Kind+"/"+el.Name)
	}
	return strings.Join(parts, "/")
}
