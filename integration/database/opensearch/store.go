package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/dmitrymomot/fanout/core/pubsub"
)

const (
	kindSubscription = "subscription"
	kindMessage      = "message"
)

// StoreConfig holds the index layout settings for the subscriber store.
type StoreConfig struct {
	// Index is the single index holding both subscription and message
	// documents, discriminated by a "kind" field.
	Index string `env:"PUBSUB_INDEX" envDefault:"pubsub"`

	// Refresh controls index refresh on writes ("true", "false", "wait_for").
	// Defaults to "true" so a publish becomes searchable immediately.
	Refresh string `env:"PUBSUB_INDEX_REFRESH" envDefault:"true"`
}

// Store implements pubsub.SubscriberStore over the OpenSearch search and
// scroll APIs. Topic scans never load the full subscriber set: each page is
// fetched under a server-side scroll context whose keep-alive window must be
// renewed by the next page request.
type Store struct {
	client  *opensearchgo.Client
	index   string
	refresh string
}

// NewStore creates a subscriber store on the given client.
func NewStore(client *opensearchgo.Client, cfg StoreConfig) *Store {
	index := cfg.Index
	if index == "" {
		index = "pubsub"
	}
	refresh := cfg.Refresh
	if refresh == "" {
		refresh = "true"
	}
	return &Store{client: client, index: index, refresh: refresh}
}

type subscriptionDoc struct {
	Kind         string `json:"kind"`
	Topic        string `json:"topic"`
	ConnectionID int64  `json:"connection_id"`
}

type messageDoc struct {
	Kind      string         `json:"kind"`
	Topic     string         `json:"topic"`
	Timestamp int64          `json:"timestamp"`
	Message   map[string]any `json:"message"`
}

type searchResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source subscriptionDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type indexResponse struct {
	ID string `json:"_id"`
}

// Query opens a scroll scan over subscriptions whose topic term equals the
// given value. The wildcard topic is passed through literally; how the index
// treats it is the index's concern.
func (s *Store) Query(ctx context.Context, topic string, pageSize int, keepAlive time.Duration) (pubsub.Page, error) {
	if pageSize <= 0 {
		pageSize = pubsub.DefaultPageSize
	}

	body, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"kind": kindSubscription}},
					map[string]any{"term": map[string]any{"topic": topic}},
				},
			},
		},
		"sort": []any{"_doc"},
	})
	if err != nil {
		return pubsub.Page{}, fmt.Errorf("marshal subscriber query: %w", err)
	}

	res, err := opensearchapi.SearchRequest{
		Index:  []string{s.index},
		Body:   bytes.NewReader(body),
		Scroll: keepAlive,
		Size:   &pageSize,
	}.Do(ctx, s.client)
	if err != nil {
		return pubsub.Page{}, fmt.Errorf("open scroll: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return pubsub.Page{}, fmt.Errorf("%w: open scroll: %s", ErrQueryFailed, res.Status())
	}
	return decodePage(res.Body)
}

// ContinueScroll fetches the next page of an open scan, renewing its
// keep-alive window. A scroll context the cluster no longer knows (aged out
// or already cleared) surfaces as pubsub.ErrScrollExpired.
func (s *Store) ContinueScroll(ctx context.Context, cursor pubsub.ScrollCursor, keepAlive time.Duration) (pubsub.Page, error) {
	res, err := opensearchapi.ScrollRequest{
		ScrollID: string(cursor),
		Scroll:   keepAlive,
	}.Do(ctx, s.client)
	if err != nil {
		return pubsub.Page{}, fmt.Errorf("continue scroll: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return pubsub.Page{}, fmt.Errorf("continue scroll: %w", pubsub.ErrScrollExpired)
	}
	if res.IsError() {
		return pubsub.Page{}, fmt.Errorf("%w: continue scroll: %s", ErrQueryFailed, res.Status())
	}
	return decodePage(res.Body)
}

// ClearScroll releases the server-side scan context. An already-expired
// cursor is not an error.
func (s *Store) ClearScroll(ctx context.Context, cursor pubsub.ScrollCursor) error {
	res, err := opensearchapi.ClearScrollRequest{
		ScrollID: []string{string(cursor)},
	}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("clear scroll: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: clear scroll: %s", ErrQueryFailed, res.Status())
	}
	return nil
}

// IndexMessage writes a message document and returns its store-assigned id.
func (s *Store) IndexMessage(ctx context.Context, msg *pubsub.Message) (string, error) {
	return s.indexDoc(ctx, messageDoc{
		Kind:      kindMessage,
		Topic:     msg.Topic,
		Timestamp: msg.Timestamp,
		Message:   msg.Payload,
	})
}

// PutSubscription records a subscription document and returns its id.
func (s *Store) PutSubscription(ctx context.Context, rec pubsub.SubscriberRecord) (string, error) {
	if rec.Topic == "" {
		return "", pubsub.ErrEmptyTopic
	}
	return s.indexDoc(ctx, subscriptionDoc{
		Kind:         kindSubscription,
		Topic:        rec.Topic,
		ConnectionID: rec.ConnectionID,
	})
}

// DeleteSubscriptions removes every subscription held by connectionID,
// narrowed to one topic when topic is non-empty.
func (s *Store) DeleteSubscriptions(ctx context.Context, topic string, connectionID int64) error {
	filter := []any{
		map[string]any{"term": map[string]any{"kind": kindSubscription}},
		map[string]any{"term": map[string]any{"connection_id": connectionID}},
	}
	if topic != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"topic": topic}})
	}

	body, err := json.Marshal(map[string]any{
		"query": map[string]any{"bool": map[string]any{"filter": filter}},
	})
	if err != nil {
		return fmt.Errorf("marshal delete query: %w", err)
	}

	refresh := true
	res, err := opensearchapi.DeleteByQueryRequest{
		Index:   []string{s.index},
		Body:    bytes.NewReader(body),
		Refresh: &refresh,
	}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("delete subscriptions: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: delete subscriptions: %s", ErrQueryFailed, res.Status())
	}
	return nil
}

func (s *Store) indexDoc(ctx context.Context, doc any) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	res, err := opensearchapi.IndexRequest{
		Index:   s.index,
		Body:    bytes.NewReader(body),
		Refresh: s.refresh,
	}.Do(ctx, s.client)
	if err != nil {
		return "", fmt.Errorf("index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("%w: index document: %s", ErrQueryFailed, res.Status())
	}

	var parsed indexResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode index response: %w", err)
	}
	return parsed.ID, nil
}

func decodePage(body io.Reader) (pubsub.Page, error) {
	var parsed searchResponse
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return pubsub.Page{}, fmt.Errorf("decode scroll response: %w", err)
	}

	page := pubsub.Page{Cursor: pubsub.ScrollCursor(parsed.ScrollID)}
	for _, hit := range parsed.Hits.Hits {
		page.Records = append(page.Records, pubsub.SubscriberRecord{
			ID:           hit.ID,
			Topic:        hit.Source.Topic,
			ConnectionID: hit.Source.ConnectionID,
		})
	}
	return page, nil
}
