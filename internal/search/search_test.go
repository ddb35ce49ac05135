package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/business_site/internal/models"
)

type recorded struct {
	method string
	path   string
	body   string
}

func newFakeCluster(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*elasticsearch.Client, *[]recorded) {
	t.Helper()

	var (
		mu   sync.Mutex
		seen []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, recorded{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handle(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, &seen
}

func TestDocumentFromService(t *testing.T) {
	t.Parallel()

	svc := &models.Service{ID: uuid.New(), CategoryID: uuid.New(), Name: "Cut", Slug: "cut", IsPublished: true}

	assert.True(t, DocumentFromService(svc, true).Published)
	assert.False(t, DocumentFromService(svc, false).Published)

	svc.IsPublished = false
	assert.False(t, DocumentFromService(svc, true).Published)
}

func TestIndex_Put(t *testing.T) {
	t.Parallel()

	client, seen := newFakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	ix := NewIndex(client, "services")
	doc := Document{ID: "svc-1", Name: "Haircut", Published: true}
	require.NoError(t, ix.Put(context.Background(), doc))

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/services/_doc/svc-1", got.path)

	var sent Document
	require.NoError(t, json.Unmarshal([]byte(got.body), &sent))
	assert.Equal(t, doc, sent)
}

func TestIndex_Remove_IgnoresMissing(t *testing.T) {
	t.Parallel()

	client, _ := newFakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})

	require.NoError(t, NewIndex(client, "services").Remove(context.Background(), "svc-1"))
}

func TestIndex_Search(t *testing.T) {
	t.Parallel()

	client, seen := newFakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"hits": {
				"total": {"value": 3},
				"hits": [
					{"_source": {"id": "svc-1", "name": "Haircut", "slug": "haircut", "published": true}},
					{"_source": {"id": "svc-2", "name": "Hair colour", "slug": "hair-colour", "published": true}}
				]
			}
		}`))
	})

	total, docs, err := NewIndex(client, "services").Search(context.Background(), "hair", 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, docs, 2)
	assert.Equal(t, "haircut", docs[0].Slug)
	assert.Equal(t, "svc-2", docs[1].ID)

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	assert.Equal(t, "/services/_search", got.path)
	assert.True(t, strings.Contains(got.body, `"multi_match"`))
	assert.True(t, strings.Contains(got.body, `"published":true`))
}

func TestIndex_Search_ClusterError(t *testing.T) {
	t.Parallel()

	client, _ := newFakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad query"}`))
	})

	_, _, err := NewIndex(client, "services").Search(context.Background(), "hair", 0, 10)
	require.Error(t, err)
}
