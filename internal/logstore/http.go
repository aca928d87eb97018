package logstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPAdapter is the default Adapter implementation: a direct-HTTP client
// over an Elasticsearch-style `_search` REST endpoint, same manual
// http.Client/context/JSON idiom as internal/llm/anthropic.go — no
// official Elasticsearch Go client is pulled in, since the query shape is
// a single fixed `_search` body.
type HTTPAdapter struct {
	baseURL             string
	username            string
	password            string
	defaultIndexPattern string
	client              *http.Client
}

// NewHTTPAdapter builds an adapter against baseURL (e.g.
// "https://es.internal:9200"), authenticating with HTTP basic auth.
// defaultIndexPattern is used when QueryAlerts is called with an empty
// indexPattern (the original's "*" catch-all).
func NewHTTPAdapter(client *http.Client, baseURL, username, password, defaultIndexPattern string) *HTTPAdapter {
	if client == nil {
		client = &http.Client{}
	}
	if defaultIndexPattern == "" {
		defaultIndexPattern = "*"
	}
	return &HTTPAdapter{
		baseURL:             baseURL,
		username:            username,
		password:            password,
		defaultIndexPattern: defaultIndexPattern,
		client:              client,
	}
}

type searchQuery struct {
	Query struct {
		Bool struct {
			Must []map[string]any `json:"must"`
		} `json:"bool"`
	} `json:"query"`
	Size   int              `json:"size"`
	Source []string         `json:"_source"`
	Sort   []map[string]any `json:"sort"`
}

// buildSearchQuery mirrors _query_alerts's must-clause list exactly: a
// @timestamp range over the window, a predicted_value terms filter, a
// probability range, an ml_input existence check, an empty-ml_input
// exclusion, and an optional source.ip term.
func buildSearchQuery(windowMinutes int, minProbability float64, sourceIP string, now time.Time) searchQuery {
	start := now.Add(-time.Duration(windowMinutes) * time.Minute)

	var q searchQuery
	q.Size = 10000
	q.Source = []string{
		"ml_input",
		"ml.prediction.predicted_value",
		"ml.prediction.prediction_probability",
		"agent.name",
		"source.ip",
		"@timestamp",
	}
	q.Sort = []map[string]any{{"@timestamp": map[string]any{"order": "desc"}}}

	q.Query.Bool.Must = []map[string]any{
		{"range": map[string]any{"@timestamp": map[string]any{"gte": start.Format(time.RFC3339), "lte": now.Format(time.RFC3339)}}},
		{"terms": map[string]any{"ml.prediction.predicted_value": []string{"INFO", "WARNING", "ERROR"}}},
		{"range": map[string]any{"ml.prediction.prediction_probability": map[string]any{"gte": minProbability}}},
		{"exists": map[string]any{"field": "ml_input"}},
		{"bool": map[string]any{"must_not": map[string]any{"term": map[string]any{"ml_input.keyword": ""}}}},
	}
	if sourceIP != "" {
		q.Query.Bool.Must = append(q.Query.Bool.Must, map[string]any{"term": map[string]any{"source.ip": sourceIP}})
	}
	return q
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source struct {
				MLInput   string `json:"ml_input"`
				Timestamp string `json:"@timestamp"`
				ML        struct {
					Prediction struct {
						PredictedValue        string  `json:"predicted_value"`
						PredictionProbability float64 `json:"prediction_probability"`
					} `json:"prediction"`
				} `json:"ml"`
				Agent struct {
					Name string `json:"name"`
				} `json:"agent"`
				Source struct {
					IP string `json:"ip"`
				} `json:"source"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// QueryAlerts issues one `_search` request against indexPattern (or the
// adapter's default) and normalizes hits into Records.
func (a *HTTPAdapter) QueryAlerts(ctx context.Context, windowMinutes int, minProbability float64, sourceIP, indexPattern string) ([]Record, error) {
	if indexPattern == "" {
		indexPattern = a.defaultIndexPattern
	}

	query := buildSearchQuery(windowMinutes, minProbability, sourceIP, time.Now().UTC())
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("logstore: marshalling search query: %w", err)
	}

	url := fmt.Sprintf("%s/%s/_search", a.baseURL, indexPattern)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("logstore: building search request: %w", err)
	}
	req.SetBasicAuth(a.username, a.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("logstore: search request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("logstore: reading search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("logstore: search returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("logstore: unmarshalling search response: %w", err)
	}

	records := make([]Record, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		src := hit.Source
		ts, _ := time.Parse(time.RFC3339, src.Timestamp)
		records = append(records, Record{
			SourceIP:    src.Source.IP,
			Agent:       src.Agent.Name,
			Severity:    src.ML.Prediction.PredictedValue,
			Probability: src.ML.Prediction.PredictionProbability,
			MLInput:     src.MLInput,
			Timestamp:   ts,
		})
	}
	return records, nil
}
