// Package caseadapter is the out-of-scope case-management collaborator
// contract spec.md §4.8 calls "an external case-management adapter":
// enrichment fetches a third-party IOC report through it, posts the
// resulting analysis as a comment, and optionally rewrites the IOC's
// description.
package caseadapter

import "context"

// Report is a third-party enrichment report for one IOC, fetched from a
// named intel source (e.g. "thehive", "primary").
type Report struct {
	IOCValue   string `json:"ioc_value"`
	IOCType    string `json:"ioc_type"`
	RawData    any    `json:"raw_data"`
	HTMLReport string `json:"html_report"`
	// Source is the name of the Source that supplied this report (e.g.
	// "primary", "fallback"), used for spec.md §4.8's data_source result
	// field and the comment's source-label prefix.
	Source string `json:"source"`
	// Description is the IOC's current description text, if any, so
	// callers can strip a prior SmartXDR analysis section before writing
	// a new one.
	Description string `json:"description,omitempty"`
}

// Adapter is the case-management collaborator. Implementations may
// support a primary and fallback source internally; FetchReport returns
// (nil, nil) when neither source has anything, matching spec.md §4.8
// step 2's "If no report from either source" case.
type Adapter interface {
	// FetchReport retrieves the enrichment report for ioc within case.
	FetchReport(ctx context.Context, caseID, iocID string) (*Report, error)
	// PostComment appends a comment to the IOC, prefixed by a source label
	// identifying which intel source the analysis came from.
	PostComment(ctx context.Context, caseID, iocID, sourceLabel, comment string) error
	// UpdateDescription replaces the IOC's description with newSection and
	// its tag list with tags. The caller composes newSection, including any
	// existing description text to keep; HTTPAdapter does not read or merge
	// the IOC's current description or tags.
	UpdateDescription(ctx context.Context, caseID, iocID, newSection string, tags []string) error
}
