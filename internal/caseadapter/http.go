package caseadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Source is one upstream case-management API endpoint (e.g. a primary and
// fallback intel source), grounded on
// original_source/app/services/iris_service.py's IRISService: a bearer
// token, a base URL, and a case/IOC-scoped report endpoint.
type Source struct {
	// Name labels this source for the enrichment comment prefix
	// ("source:<name>" per spec.md §4.8 step 5).
	Name    string
	BaseURL string
	APIKey  string
}

// HTTPAdapter is the default Adapter implementation: a direct-HTTP client
// over one or more Sources, tried in order, same manual http.Client/
// context/JSON idiom as internal/llm/anthropic.go.
type HTTPAdapter struct {
	sources []Source
	client  *http.Client
}

// NewHTTPAdapter builds an adapter over the given sources, tried in the
// order given (so the first is primary, the rest are fallbacks).
func NewHTTPAdapter(client *http.Client, sources ...Source) *HTTPAdapter {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPAdapter{sources: sources, client: client}
}

type iocReportResponse struct {
	Data struct {
		IOCValue    string `json:"ioc_value"`
		IOCType     string `json:"ioc_type"`
		RawData     any    `json:"raw_data"`
		HTMLReport  string `json:"html_report"`
		Description string `json:"ioc_description"`
	} `json:"data"`
}

// FetchReport tries each source in order and returns the first non-empty
// report found. Returns (nil, nil) if every source has nothing, matching
// spec.md §4.8 step 2.
func (a *HTTPAdapter) FetchReport(ctx context.Context, caseID, iocID string) (*Report, error) {
	var lastErr error
	for _, src := range a.sources {
		report, err := a.fetchFromSource(ctx, src, caseID, iocID)
		if err != nil {
			lastErr = err
			continue
		}
		if report != nil {
			return report, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

func (a *HTTPAdapter) fetchFromSource(ctx context.Context, src Source, caseID, iocID string) (*Report, error) {
	url := fmt.Sprintf("%s/case/ioc/%s?cid=%s", src.BaseURL, iocID, caseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("caseadapter: building fetch request for %s: %w", src.Name, err)
	}
	req.Header.Set("Authorization", "Bearer "+src.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("caseadapter: fetch from %s: %w", src.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("caseadapter: reading fetch response from %s: %w", src.Name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("caseadapter: %s returned status %d: %s", src.Name, resp.StatusCode, string(body))
	}

	var parsed iocReportResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("caseadapter: unmarshalling fetch response from %s: %w", src.Name, err)
	}
	if parsed.Data.RawData == nil && parsed.Data.HTMLReport == "" {
		return nil, nil
	}

	return &Report{
		IOCValue:    parsed.Data.IOCValue,
		IOCType:     parsed.Data.IOCType,
		RawData:     parsed.Data.RawData,
		HTMLReport:  parsed.Data.HTMLReport,
		Source:      src.Name,
		Description: parsed.Data.Description,
	}, nil
}

type commentRequest struct {
	Comment string `json:"comment_text"`
}

func (a *HTTPAdapter) PostComment(ctx context.Context, caseID, iocID, sourceLabel, comment string) error {
	if len(a.sources) == 0 {
		return fmt.Errorf("caseadapter: no sources configured")
	}
	src := a.sources[0]
	url := fmt.Sprintf("%s/case/ioc/%s/comments?cid=%s", src.BaseURL, iocID, caseID)

	body, err := json.Marshal(commentRequest{Comment: fmt.Sprintf("[%s]\n\n%s", sourceLabel, comment)})
	if err != nil {
		return fmt.Errorf("caseadapter: marshalling comment: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("caseadapter: building comment request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+src.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("caseadapter: posting comment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("caseadapter: comment post returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

type updateDescriptionRequest struct {
	Description string   `json:"ioc_description"`
	Tags        []string `json:"ioc_tags"`
}

func (a *HTTPAdapter) UpdateDescription(ctx context.Context, caseID, iocID, newSection string, tags []string) error {
	if len(a.sources) == 0 {
		return fmt.Errorf("caseadapter: no sources configured")
	}
	src := a.sources[0]
	url := fmt.Sprintf("%s/case/ioc/%s?cid=%s", src.BaseURL, iocID, caseID)

	body, err := json.Marshal(updateDescriptionRequest{Description: newSection, Tags: tags})
	if err != nil {
		return fmt.Errorf("caseadapter: marshalling description update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("caseadapter: building description update request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+src.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("caseadapter: updating description: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("caseadapter: description update returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
