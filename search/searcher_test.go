package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestESSearcher(t *testing.T, handler http.HandlerFunc) *ESSearcher {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{server.URL},
	})
	require.NoError(t, err)

	return NewESSearcher(client)
}

func Test_ESSearcher_Search(t *testing.T) {
	var (
		gotPath string
		gotBody map[string]any
	)

	searcher := newTestESSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		_, _ = io.WriteString(w, `{"hits":{"total":{"value":2,"relation":"eq"},"hits":[`+
			`{"_index":"articles","_id":"1","_source":{"title":"first"}},`+
			`{"_index":"articles","_id":"2","_source":{"title":"second"}}]}}`)
	})

	result, err := searcher.Search(context.Background(), "articles", map[string]any{"from": 0, "size": 2})
	require.NoError(t, err)

	assert.Equal(t, "/articles/_search", gotPath)
	assert.Equal(t, map[string]any{"from": float64(0), "size": float64(2)}, gotBody)

	require.EqualValues(t, 2, result.Hits.Total.Value)
	require.Len(t, result.Hits.Hits, 2)
	require.Equal(t, "1", result.Hits.Hits[0].ID)
	require.Equal(t, map[string]any{"title": "second"}, result.Hits.Hits[1].Source)
}

func Test_ESSearcher_ErrorStatus(t *testing.T) {
	searcher := newTestESSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"index_not_found_exception"},"status":404}`)
	})

	_, err := searcher.Search(context.Background(), "missing", map[string]any{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "index_not_found_exception")
}
