package chunking

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONToNaturalTextIncludesIPLookup(t *testing.T) {
	raw := `{"id":"dev-1","name":"edge-fw-01","category":"firewall","zone":"dmz","ip":"10.0.0.1","role":"perimeter"}`
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	chunks := JSONToNaturalText(obj, "devices.json")
	if len(chunks) < 3 {
		t.Fatalf("expected overview+ip+zone chunks at least, got %d", len(chunks))
	}

	var foundLookup bool
	for _, c := range chunks {
		if strings.Contains(c, "IP 10.0.0.1 belongs to: edge-fw-01") {
			foundLookup = true
		}
	}
	if !foundLookup {
		t.Error("expected an IP lookup chunk containing the reverse-lookup phrase")
	}
}

func TestIsDeviceRecordRequiresIDAndName(t *testing.T) {
	if IsDeviceRecord(map[string]any{"id": "x"}) {
		t.Error("expected false without name")
	}
	if !IsDeviceRecord(map[string]any{"id": "x", "name": "y"}) {
		t.Error("expected true with both id and name")
	}
}

func TestMitreToNaturalTextPutsIDFirst(t *testing.T) {
	tech := map[string]any{
		"mitre_id":    "T1059",
		"name":        "Command and Scripting Interpreter",
		"tactics":     []any{"Execution"},
		"description": "Adversaries may abuse command interpreters.",
	}
	text := MitreToNaturalText(tech)
	if !strings.HasPrefix(text, "T1059 -") {
		t.Errorf("expected text to start with MITRE ID, got %q", text[:30])
	}
	if !strings.Contains(text, "Tactics: Execution") {
		t.Error("expected tactics line")
	}
}

func TestDataflowToNaturalTextPhaseCount(t *testing.T) {
	raw := `{
		"name": "Ingress Pipeline",
		"phases": [
			{"id":"p1","name":"Capture","description":"Packet capture at the edge"},
			{"id":"p2","name":"Inspect","description":"Deep packet inspection"}
		]
	}`
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	chunks := DataflowToNaturalText(obj, "flow.json")
	if len(chunks) < 3 {
		t.Fatalf("expected summary + 2 phase chunks, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "consists of 2 phases") {
		t.Errorf("expected phase count in summary chunk: %q", chunks[0])
	}
}

func TestIsDataflowAndIsMitreTechnique(t *testing.T) {
	if !IsDataflow(map[string]any{"phases": []any{}}) {
		t.Error("expected IsDataflow true when phases key present")
	}
	if !IsMitreTechnique(map[string]any{"mitre_id": "T1059"}) {
		t.Error("expected IsMitreTechnique true")
	}
}
