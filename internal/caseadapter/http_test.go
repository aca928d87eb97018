package caseadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchReportFromPrimarySource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"ioc_value":   "1.2.3.4",
				"ioc_type":    "ip",
				"raw_data":    map[string]any{"malicious": true},
				"html_report": "<p>bad</p>",
			},
		})
	}))
	defer srv.Close()

	adapter := NewHTTPAdapter(nil, Source{Name: "primary", BaseURL: srv.URL, APIKey: "k"})
	report, err := adapter.FetchReport(context.Background(), "1", "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report == nil || report.IOCValue != "1.2.3.4" {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestFetchReportFallsBackWhenPrimaryEmpty(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"ioc_value": "evil.com", "ioc_type": "domain", "html_report": "<p>x</p>"},
		})
	}))
	defer fallback.Close()

	adapter := NewHTTPAdapter(nil,
		Source{Name: "primary", BaseURL: primary.URL, APIKey: "k"},
		Source{Name: "fallback", BaseURL: fallback.URL, APIKey: "k"},
	)
	report, err := adapter.FetchReport(context.Background(), "1", "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report == nil || report.IOCValue != "evil.com" {
		t.Fatalf("expected fallback report, got %+v", report)
	}
}

func TestFetchReportReturnsNilWhenNoSourceHasData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	adapter := NewHTTPAdapter(nil, Source{Name: "primary", BaseURL: srv.URL, APIKey: "k"})
	report, err := adapter.FetchReport(context.Background(), "1", "10")
	if err != nil || report != nil {
		t.Fatalf("expected (nil, nil), got (%+v, %v)", report, err)
	}
}

func TestPostCommentPrefixesSourceLabel(t *testing.T) {
	var captured commentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	adapter := NewHTTPAdapter(nil, Source{Name: "primary", BaseURL: srv.URL, APIKey: "k"})
	if err := adapter.PostComment(context.Background(), "1", "10", "source:virustotal", "analysis text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Comment == "" {
		t.Fatal("expected comment body to be sent")
	}
}

func TestPostCommentErrorsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	adapter := NewHTTPAdapter(nil, Source{Name: "primary", BaseURL: srv.URL, APIKey: "k"})
	if err := adapter.PostComment(context.Background(), "1", "10", "source:misp", "text"); err == nil {
		t.Fatal("expected error on 500 status")
	}
}

func TestUpdateDescriptionSendsTags(t *testing.T) {
	var captured updateDescriptionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	adapter := NewHTTPAdapter(nil, Source{Name: "primary", BaseURL: srv.URL, APIKey: "k"})
	err := adapter.UpdateDescription(context.Background(), "1", "10", "new section", []string{"smartxdr-analyzed", "risk:high"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(captured.Tags) != 2 {
		t.Fatalf("expected 2 tags sent, got %v", captured.Tags)
	}
}
