package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
)

// Searcher runs a search request body against an index.
type Searcher interface {
	Search(ctx context.Context, index string, body map[string]any) (*Result, error)
}

// Result is the part of a search response the adapter reads.
type Result struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []Hit `json:"hits"`
	} `json:"hits"`
}

// Hit is one matched document.
type Hit struct {
	Index  string         `json:"_index"`
	ID     string         `json:"_id"`
	Source map[string]any `json:"_source"`
}

// ESSearcher implements Searcher over the official Elasticsearch client.
type ESSearcher struct {
	client *elasticsearch.Client
}

func NewESSearcher(client *elasticsearch.Client) *ESSearcher {
	return &ESSearcher{client: client}
}

// Search implements Searcher.
func (s *ESSearcher) Search(ctx context.Context, index string, body map[string]any) (*Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error: %s - %s", res.Status(), string(raw))
	}

	var result Result
	if err = json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

var _ Searcher = (*ESSearcher)(nil)
