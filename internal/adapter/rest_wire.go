package adapter

import (
	"encoding/base64"
	"fmt"

	"github.com/MKhiriev/go-cred-stash/models"
)

// Datastore JSON API (v1) request and response shapes. Only the fields the
// keystore reads or writes are modelled.

const commitModeNonTransactional = "NON_TRANSACTIONAL"

type partitionID struct {
	ProjectID   string `json:"projectId,omitempty"`
	NamespaceID string `json:"namespaceId,omitempty"`
}

type pathElement struct {
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
}

type key struct {
	PartitionID *partitionID  `json:"partitionId,omitempty"`
	Path        []pathElement `json:"path"`
}

type value struct {
	BlobValue          *string `json:"blobValue,omitempty"`
	ExcludeFromIndexes bool    `json:"excludeFromIndexes,omitempty"`
}

type entity struct {
	Key        *key             `json:"key,omitempty"`
	Properties map[string]value `json:"properties,omitempty"`
}

type lookupRequest struct {
	Keys []key `json:"keys"`
}

type entityResult struct {
	Entity *entity `json:"entity,omitempty"`
}

type lookupResponse struct {
	Found   []entityResult `json:"found"`
	Missing []entityResult `json:"missing"`
}

type mutation struct {
	Upsert *entity `json:"upsert,omitempty"`
}

type commitRequest struct {
	Mutations []mutation `json:"mutations"`
	Mode      string     `json:"mode"`
}

type kindExpression struct {
	Name string `json:"name"`
}

type query struct {
	Kind []kindExpression `json:"kind"`
}

type runQueryRequest struct {
	PartitionID *partitionID `json:"partitionId,omitempty"`
	Query       query        `json:"query"`
}

type queryResultBatch struct {
	EntityResults []entityResult `json:"entityResults"`
	MoreResults   string         `json:"moreResults"`
}

type runQueryResponse struct {
	Batch queryResultBatch `json:"batch"`
}

func toWireKey(k models.Key, partition *partitionID) key {
	path := make([]pathElement, 0, len(k.Path))
	for _, el := range k.Path {
		path = append(path, pathElement{Kind: el.Kind, Name: el.Name})
	}
	return key{PartitionID: partition, Path: path}
}

func fromWireKey(k *key) models.Key {
	if k == nil {
		return models.Key{}
	}
	path := make([]models.PathElement, 0, len(k.Path))
	for _, el := range k.Path {
		path = append(path, models.PathElement{Kind: el.Kind, Name: el.Name})
	}
	return models.Key{Path: path}
}

func toWireEntity(e models.Entity, partition *partitionID) *entity {
	wk := toWireKey(e.Key, partition)
	props := make(map[string]value, len(e.Properties))
	for name, p := range e.Properties {
		encoded := base64.StdEncoding.EncodeToString(p.Value)
		props[name] = value{BlobValue: &encoded, ExcludeFromIndexes: p.ExcludeFromIndexes}
	}
	return &entity{Key: &wk, Properties: props}
}

func fromWireEntity(e *entity) (models.Entity, error) {
	props := make(models.Properties, len(e.Properties))
	for name, v := range e.Properties {
		// Values of other types are written by other tools.
		if v.BlobValue == nil {
			continue
		}
		raw, err := decodeBlob(*v.BlobValue)
		if err != nil {
			return models.Entity{}, fmt.Errorf("%w: property %q: %w", ErrUnsupportedValue, name, err)
		}
		props[name] = models.Property{Value: raw, ExcludeFromIndexes: v.ExcludeFromIndexes}
	}
	return models.Entity{Key: fromWireKey(e.Key), Properties: props}, nil
}

// decodeBlob accepts the standard alphabet the API emits and the URL-safe
// alphabet it also accepts on input.
func decodeBlob(s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return raw, nil
	}
	if raw, urlErr := base64.URLEncoding.DecodeString(s); urlErr == nil {
		return raw, nil
	}
	return nil, err
}
