package logstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sampleSearchResponseBody() string {
	return `{
		"hits": {
			"hits": [
				{"_source": {
					"ml_input": "nmap port scan detected",
					"@timestamp": "2026-07-29T10:00:00Z",
					"ml": {"prediction": {"predicted_value": "WARNING", "prediction_probability": 0.87}},
					"agent": {"name": "wazuh-agent-01"},
					"source": {"ip": "10.0.0.5"}
				}},
				{"_source": {
					"ml_input": "brute force login attempt",
					"@timestamp": "2026-07-29T10:05:00Z",
					"ml": {"prediction": {"predicted_value": "ERROR", "prediction_probability": 0.95}},
					"agent": {"name": "wazuh-agent-02"},
					"source": {"ip": "10.0.0.6"}
				}}
			]
		}
	}`
}

func TestQueryAlertsParsesHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/_search") {
			t.Fatalf("expected _search endpoint, got %s", r.URL.Path)
		}
		w.Write([]byte(sampleSearchResponseBody()))
	}))
	defer srv.Close()

	adapter := NewHTTPAdapter(nil, srv.URL, "elastic", "secret", "*wazuh*")
	records, err := adapter.QueryAlerts(context.Background(), 60, 0.5, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].SourceIP != "10.0.0.5" || records[0].Severity != "WARNING" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Probability != 0.95 {
		t.Fatalf("unexpected probability: %v", records[1].Probability)
	}
}

func TestQueryAlertsIncludesSourceIPFilterInQuery(t *testing.T) {
	var captured searchQuery
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(`{"hits":{"hits":[]}}`))
	}))
	defer srv.Close()

	adapter := NewHTTPAdapter(nil, srv.URL, "elastic", "secret", "*")
	if _, err := adapter.QueryAlerts(context.Background(), 60, 0.5, "1.2.3.4", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(captured.Query.Bool.Must) != 6 {
		t.Fatalf("expected source.ip term appended, got %d must clauses", len(captured.Query.Bool.Must))
	}
}

func TestQueryAlertsErrorsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	adapter := NewHTTPAdapter(nil, srv.URL, "elastic", "secret", "*")
	if _, err := adapter.QueryAlerts(context.Background(), 60, 0.5, "", ""); err == nil {
		t.Fatal("expected error on 500 status")
	}
}

func TestQueryAlertsReturnsEmptySliceForNoHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hits":{"hits":[]}}`))
	}))
	defer srv.Close()

	adapter := NewHTTPAdapter(nil, srv.URL, "elastic", "secret", "*")
	records, err := adapter.QueryAlerts(context.Background(), 60, 0.5, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected 0 records, got %d", len(records))
	}
}
