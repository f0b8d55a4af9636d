// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/go-cred-stash/internal/logger"
	"github.com/MKhiriev/go-cred-stash/internal/utils"
	"github.com/MKhiriev/go-cred-stash/models"
	"golang.org/x/oauth2"
)

const (
	lookupPath   = "/v1/projects/{projectId}:lookup"
	commitPath   = "/v1/projects/{projectId}:commit"
	runQueryPath = "/v1/projects/{projectId}:runQuery"
)

// RESTConfig configures [NewRESTTransport].
type RESTConfig struct {
	// Endpoint is the API base URL, e.g. "https://datastore.googleapis.com".
	Endpoint string
	// ProjectID is substituted into every request path.
	ProjectID string
	// Namespace, when set, is sent as the partition of every key and query.
	Namespace string
	// Timeout bounds a single request. Zero disables the client timeout.
	Timeout time.Duration
}

type restTransport struct {
	client    *utils.HTTPClient
	partition *partitionID
	logger    *logger.Logger
}

// NewRESTTransport constructs a [Transport] that talks to the Datastore JSON
// API. The returned transport holds a single authorized HTTP session built
// from ts; every request carries "Authorization: Bearer <token>".
//
// Returns an error if the project id is empty, ts is nil, or the endpoint
// cannot be parsed as a URL.
func NewRESTTransport(ctx context.Context, cfg RESTConfig, ts oauth2.TokenSource, log *logger.Logger) (Transport, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w: empty project id", ErrInvalidArgument)
	}
	if ts == nil {
		return nil, fmt.Errorf("%w: nil token source", ErrInvalidArgument)
	}
	if log == nil {
		log = logger.Nop()
	}

	baseURL, err := normalizeBaseURL(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid datastore endpoint: %w", err)
	}

	client := utils.NewHTTPClient(oauth2.NewClient(ctx, ts))
	client.
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetPathParam("projectId", cfg.ProjectID)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	var partition *partitionID
	if cfg.Namespace != "" {
		partition = &partitionID{ProjectID: cfg.ProjectID, NamespaceID: cfg.Namespace}
	}

	return &restTransport{client: client, partition: partition, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Lookup implements [Transport]. It POSTs a single key to :lookup and
// decodes the one found entity, if any.
func (r *restTransport) Lookup(ctx context.Context, k models.Key) (models.Entity, bool, error) {
	if err := validateKey(k); err != nil {
		return models.Entity{}, false, err
	}

	r.logger.Debug().Str("op", "lookup").Stringer("key", k).Msg("datastore request")

	var out lookupResponse
	if err := r.post(ctx, lookupPath, lookupRequest{Keys: []key{toWireKey(k, r.partition)}}, &out); err != nil {
		return models.Entity{}, false, fmt.Errorf("lookup %s: %w", k, err)
	}

	switch len(out.Found) {
	case 0:
		return models.Entity{}, false, nil
	case 1:
	default:
		return models.Entity{}, false, fmt.Errorf("lookup %s: %w: %d entities found for one key", k, ErrContractViolation, len(out.Found))
	}

	found := out.Found[0].Entity
	if found == nil {
		return models.Entity{}, false, nil
	}

	e, err := fromWireEntity(found)
	if err != nil {
		return models.Entity{}, false, fmt.Errorf("lookup %s: %w", k, err)
	}
	if len(e.Key.Path) == 0 {
		e.Key = k
	}
	return e, true, nil
}

// Upsert implements [Transport]. It POSTs a single non-transactional upsert
// mutation to :commit.
func (r *restTransport) Upsert(ctx context.Context, e models.Entity) error {
	if err := validateEntity(e); err != nil {
		return err
	}

	r.logger.Debug().Str("op", "upsert").Stringer("key", e.Key).Msg("datastore request")

	body := commitRequest{
		Mutations: []mutation{{Upsert: toWireEntity(e, r.partition)}},
		Mode:      commitModeNonTransactional,
	}
	if err := r.post(ctx, commitPath, body, nil); err != nil {
		return fmt.Errorf("commit %s: %w", e.Key, err)
	}
	return nil
}

// Query implements [Transport]. It POSTs a kind query to :runQuery and
// returns the first batch of results in provider order. Further batches are
// not requested.
func (r *restTransport) Query(ctx context.Context, kind string) ([]models.Entity, error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}

	r.logger.Debug().Str("op", "runQuery").Str("kind", kind).Msg("datastore request")

	body := runQueryRequest{
		PartitionID: r.partition,
		Query:       query{Kind: []kindExpression{{Name: kind}}},
	}

	var out runQueryResponse
	if err := r.post(ctx, runQueryPath, body, &out); err != nil {
		return nil, fmt.Errorf("run query %q: %w", kind, err)
	}

	entities := make([]models.Entity, 0, len(out.Batch.EntityResults))
	for _, res := range out.Batch.EntityResults {
		if res.Entity == nil {
			continue
		}
		e, err := fromWireEntity(res.Entity)
		if err != nil {
			return nil, fmt.Errorf("run query %q: %w", kind, err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// Close implements [Transport].
func (r *restTransport) Close() error {
	r.client.GetClient().CloseIdleConnections()
	return nil
}

// post sends body to path and, when out is non-nil, decodes the JSON
// response into it. Non-2xx statuses are mapped by mapHTTPError.
func (r *restTransport) post(ctx context.Context, path string, body, out any) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err = json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
