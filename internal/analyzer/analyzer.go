// Package analyzer implements the AnalyzerRegistry and its handlers
// (spec.md §4.6): a process-wide, read-only-after-init mapping from
// analyzer names to normalizers that turn a raw third-party
// threat-intelligence report into a compact summary and a 0-100 risk
// score, grounded on
// original_source/app/services/analyzers/{generic,virustotal,misp}_handler.py.
package analyzer

import "strings"

// Verdict is the coarse classification a Handler's Summarize assigns.
type Verdict string

const (
	VerdictClean      Verdict = "clean"
	VerdictSuspicious Verdict = "suspicious"
	VerdictMalicious  Verdict = "malicious"
	VerdictUnknown    Verdict = "unknown"
)

// Handler normalizes one analyzer's raw report shape. report is whatever
// a JSON-decoded report looks like: map[string]any, []any, string, or nil.
type Handler interface {
	// DisplayName is the human-facing analyzer name.
	DisplayName() string
	// Priority sorts findings emitted to the LLM; higher sorts first.
	Priority() int
	// ExtractStats pulls compact key facts out of a raw report.
	ExtractStats(report any) map[string]any
	// Summarize renders an analyzer entry (with "name", "report", "status"
	// keys) into an LLM-ready summary. May return nil when the report
	// carries nothing worth summarizing.
	Summarize(analyzer map[string]any) map[string]any
	// RiskScore computes a 0-100 risk score from a raw report.
	RiskScore(report any) int
	// IsMalicious reports whether the report should be treated as
	// malicious; the default threshold is risk score >= 50.
	IsMalicious(report any) bool
}

// Entry pairs a handler with the name it's registered under.
type Entry struct {
	Name    string
	Handler Handler
}

// Registry is the process-wide analyzer-name-to-handler mapping.
// Populated once at construction and read-only afterward, matching
// spec.md §5's "AnalyzerRegistry: populated at module load; read-only
// afterward" shared-resource policy.
type Registry struct {
	entries []Entry
}

// NewRegistry builds the registry with the required handlers (generic,
// virustotal, misp) plus any additional handlers supplied, sorted by
// priority descending. Per DESIGN.md's redesign decision, construction is
// an explicit list of (name, Handler) literals rather than the original's
// decorator-based self-registration.
func NewRegistry(extra ...Entry) *Registry {
	entries := []Entry{
		{Name: "virustotal", Handler: VirusTotalHandler{}},
		{Name: "misp", Handler: MISPHandler{}},
	}
	entries = append(entries, extra...)
	entries = append(entries, Entry{Name: "generic", Handler: GenericHandler{}})

	sortByPriorityDescending(entries)
	return &Registry{entries: entries}
}

func sortByPriorityDescending(entries []Entry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Handler.Priority() > entries[j-1].Handler.Priority(); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// Get looks up a handler by name: exact match first, then substring
// match against registered keys (in priority order), falling back to the
// generic handler (always registered last) if nothing matches.
func (r *Registry) Get(name string) Handler {
	lower := strings.ToLower(name)

	for _, e := range r.entries {
		if e.Name == lower {
			return e.Handler
		}
	}
	for _, e := range r.entries {
		if strings.Contains(lower, e.Name) {
			return e.Handler
		}
	}
	for _, e := range r.entries {
		if e.Name == "generic" {
			return e.Handler
		}
	}
	return nil
}

// Entries returns the registered (name, handler) pairs in priority-descending order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

