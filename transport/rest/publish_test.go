package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fanout/core/logger"
	"github.com/dmitrymomot/fanout/core/pubsub"
	"github.com/dmitrymomot/fanout/transport/rest"
	"github.com/dmitrymomot/fanout/transport/ws"
)

type restStack struct {
	store    *pubsub.MemoryStore
	registry *ws.Registry
	handler  http.Handler
}

func newRESTStack(t *testing.T) *restStack {
	t.Helper()

	store := pubsub.NewMemoryStore()
	registry := ws.NewRegistry()
	driver := pubsub.NewDriver(store, registry, store)
	publisher := pubsub.NewPublisher(store, driver)

	return &restStack{
		store:    store,
		registry: registry,
		handler:  rest.Router(publisher, nil, logger.Discard()),
	}
}

func doPublish(t *testing.T, stack *restStack, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	method := http.MethodGet
	if body != "" {
		method = http.MethodPost
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	stack.handler.ServeHTTP(rec, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	return rec, parsed
}

func TestPublish_EndToEnd(t *testing.T) {
	t.Parallel()

	stack := newRESTStack(t)
	rec, body := doPublish(t, stack, "/_publish?topic=news", `{"a":1}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	require.NotEmpty(t, body["id"])

	stored, ok := stack.store.Message(body["id"].(string))
	require.True(t, ok)
	assert.Equal(t, "news", stored.Topic)
	assert.Equal(t, map[string]any{"a": float64(1)}, stored.Payload)
}

func TestPublish_UnparsableBodyStillSucceeds(t *testing.T) {
	t.Parallel()

	stack := newRESTStack(t)
	rec, body := doPublish(t, stack, "/_publish?topic=news", "definitely not json")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])

	stored, ok := stack.store.Message(body["id"].(string))
	require.True(t, ok)
	assert.Nil(t, stored.Payload, "malformed payloads are stored as null")
}

func TestPublish_TopicDefaultsToWildcard(t *testing.T) {
	t.Parallel()

	stack := newRESTStack(t)
	rec, body := doPublish(t, stack, "/_publish", "")

	require.Equal(t, http.StatusOK, rec.Code)
	stored, ok := stack.store.Message(body["id"].(string))
	require.True(t, ok)
	assert.Equal(t, pubsub.TopicAll, stored.Topic)
}

func TestPublish_TimestampOverride(t *testing.T) {
	t.Parallel()

	stack := newRESTStack(t)
	_, body := doPublish(t, stack, "/_publish?topic=news&timestamp=1700000000000", `{}`)

	stored, ok := stack.store.Message(body["id"].(string))
	require.True(t, ok)
	assert.EqualValues(t, 1700000000000, stored.Timestamp)
}

func TestPublish_RefreshFlag(t *testing.T) {
	t.Parallel()

	stack := newRESTStack(t)

	rec, body := doPublish(t, stack, "/_publish?topic=news&refresh=true", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])

	rec, body = doPublish(t, stack, "/_publish?topic=news&refresh=maybe", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "invalid refresh")
}

func TestPublish_InvalidTimestamp(t *testing.T) {
	t.Parallel()

	stack := newRESTStack(t)
	rec, body := doPublish(t, stack, "/_publish?topic=news&timestamp=yesterday", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "invalid timestamp")
}

func TestHealthProbes(t *testing.T) {
	t.Parallel()

	stack := newRESTStack(t)

	rec := httptest.NewRecorder()
	stack.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())

	rec = httptest.NewRecorder()
	stack.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadiness_FailingDependency(t *testing.T) {
	t.Parallel()

	failing := func(ctx context.Context) error { return errors.New("store down") }
	handler := rest.Readiness(logger.Discard(), failing)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
