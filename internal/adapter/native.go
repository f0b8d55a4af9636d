// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/datastore"
	"github.com/MKhiriev/go-cred-stash/internal/logger"
	"github.com/MKhiriev/go-cred-stash/models"
	"google.golang.org/api/option"
)

// datastoreClient is the subset of the Datastore client used by the native
// transport.
type datastoreClient interface {
	Get(ctx context.Context, key *datastore.Key, dst interface{}) error
	Put(ctx context.Context, key *datastore.Key, src interface{}) (*datastore.Key, error)
	QueryKind(ctx context.Context, kind, namespace string, dst *[]datastore.PropertyList) ([]*datastore.Key, error)
	Close() error
}

// sdkClient adapts *datastore.Client to datastoreClient.
type sdkClient struct {
	*datastore.Client
}

// QueryKind runs a query for every entity of kind in namespace.
func (c sdkClient) QueryKind(ctx context.Context, kind, namespace string, dst *[]datastore.PropertyList) ([]*datastore.Key, error) {
	return c.GetAll(ctx, datastore.NewQuery(kind).Namespace(namespace), dst)
}

// NativeConfig configures [NewNativeTransport].
type NativeConfig struct {
	ProjectID string
	Namespace string
}

type nativeTransport struct {
	client    datastoreClient
	namespace string
	logger    *logger.Logger
}

// NewNativeTransport constructs a [Transport] backed by the
// cloud.google.com/go/datastore client. Credentials are resolved by the SDK
// (Application Default Credentials, or DATASTORE_EMULATOR_HOST); opts are
// passed to datastore.NewClient unchanged.
//
// An empty cfg.ProjectID lets the SDK detect the project from the
// environment, the credentials or the metadata server.
func NewNativeTransport(ctx context.Context, cfg NativeConfig, log *logger.Logger, opts ...option.ClientOption) (Transport, error) {
	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = datastore.DetectProjectID
	}

	client, err := datastore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create datastore client: %w", err)
	}

	return newNativeTransport(sdkClient{client}, cfg.Namespace, log), nil
}

func newNativeTransport(client datastoreClient, namespace string, log *logger.Logger) *nativeTransport {
	if log == nil {
		log = logger.Nop()
	}
	return &nativeTransport{client: client, namespace: namespace, logger: log}
}

// Lookup implements [Transport]. datastore.ErrNoSuchEntity is reported as
// found == false.
func (n *nativeTransport) Lookup(ctx context.Context, key models.Key) (models.Entity, bool, error) {
	if err := validateKey(key); err != nil {
		return models.Entity{}, false, err
	}

	n.logger.Debug().Str("op", "get").Stringer("key", key).Msg("datastore request")

	var props datastore.PropertyList
	err := n.client.Get(ctx, toDatastoreKey(key, n.namespace), &props)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return models.Entity{}, false, nil
	}
	if err != nil {
		return models.Entity{}, false, fmt.Errorf("get %s: %w", key, mapGRPCError(err))
	}

	return models.Entity{Key: key, Properties: fromPropertyList(props)}, true, nil
}

// Upsert implements [Transport].
func (n *nativeTransport) Upsert(ctx context.Context, entity models.Entity) error {
	if err := validateEntity(entity); err != nil {
		return err
	}

	n.logger.Debug().Str("op", "put").Stringer("key", entity.Key).Msg("datastore request")

	props := toPropertyList(entity.Properties)
	if _, err := n.client.Put(ctx, toDatastoreKey(entity.Key, n.namespace), &props); err != nil {
		return fmt.Errorf("put %s: %w", entity.Key, mapGRPCError(err))
	}
	return nil
}

// Query implements [Transport].
func (n *nativeTransport) Query(ctx context.Context, kind string) ([]models.Entity, error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}

	n.logger.Debug().Str("op", "query").Str("kind", kind).Msg("datastore request")

	var lists []datastore.PropertyList
	keys, err := n.client.QueryKind(ctx, kind, n.namespace, &lists)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", kind, mapGRPCError(err))
	}
	if len(keys) != len(lists) {
		return nil, fmt.Errorf("query %q: %w: %d keys for %d entities", kind, ErrContractViolation, len(keys), len(lists))
	}

	entities := make([]models.Entity, 0, len(keys))
	for i, k := range keys {
		entities = append(entities, models.Entity{Key: fromDatastoreKey(k), Properties: fromPropertyList(lists[i])})
	}
	return entities, nil
}

// Close implements [Transport].
func (n *nativeTransport) Close() error {
	return n.client.Close()
}

func toDatastoreKey(key models.Key, namespace string) *datastore.Key {
	var parent *datastore.Key
	for _, el := range key.Path {
		k := datastore.NameKey(el.Kind, el.Name, parent)
		k.Namespace = namespace
		parent = k
	}
	return parent
}

func fromDatastoreKey(k *datastore.Key) models.Key {
	var path []models.PathElement
	for ; k != nil; k = k.Parent {
		path = append([]models.PathElement{{Kind: k.Kind, Name: k.Name}}, path...)
	}
	return models.Key{Path: path}
}

func toPropertyList(properties models.Properties) datastore.PropertyList {
	props := make(datastore.PropertyList, 0, len(properties))
	for name, p := range properties {
		props = append(props, datastore.Property{
			Name:    name,
			Value:   p.Value,
			NoIndex: p.ExcludeFromIndexes,
		})
	}
	return props
}

// fromPropertyList keeps blob properties only. Values of other types are
// written by other tools and are not part of the keystore's entities.
func fromPropertyList(props datastore.PropertyList) models.Properties {
	properties := make(models.Properties, len(props))
	for _, p := range props {
		raw, ok := p.Value.([]byte)
		if !ok {
			continue
		}
		properties[p.Name] = models.Property{Value: raw, ExcludeFromIndexes: p.NoIndex}
	}
	return properties
}
