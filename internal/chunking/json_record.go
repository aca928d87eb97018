package chunking

import (
	"fmt"
	"strings"
)

// JSONToNaturalText converts a parsed device-record JSON object into a set
// of human-readable chunks: an overview, an IP-first lookup chunk (useful
// for "what device has IP X" questions, reproduced in both English and
// Vietnamese per the original corpus), a zone chunk, an OS chunk, one
// chunk per network interface plus an all-interfaces summary, and chunks
// for services/components/vulnerabilities/capabilities/monitoring/
// data-sources/routing-function/attack-vectors when present.
func JSONToNaturalText(data map[string]any, filename string) []string {
	var texts []string

	id := stringField(data, "id", "unknown")
	name := stringField(data, "name", "Unknown Device")
	category := stringField(data, "category", "Unknown")
	zone := stringField(data, "zone", "Unknown")
	ip := stringField(data, "ip", "N/A")
	role := stringField(data, "role", "Unknown")
	description := stringField(data, "description", "")

	overview := fmt.Sprintf(`Device %s: %s
Type: %s
Role: %s
Zone: %s
IP Address: %s
Management IP: %s
Primary IP: %s
Description: %s
Source: %s

Keywords: %s, %s, IP %s, %s, %s, %s`, id, name, category, role, zone, ip, ip, ip, description, filename,
		name, id, ip, category, zone, role)
	texts = append(texts, overview)

	if ip != "" && ip != "N/A" && ip != "multiple" {
		ipLookup := fmt.Sprintf(`IP Address Lookup:
IP %s belongs to: %s
The IP address %s is assigned to device: %s (ID: %s)
Device with IP %s: %s
%s is the IP of: %s
What device has IP %s? Answer: %s (%s)
IP %s -> %s
Máy có IP %s là: %s
IP %s thuộc về máy: %s
IP %s là của máy: %s

Device Details:
- Name: %s
- ID: %s
- Category: %s
- Role: %s
- Zone: %s`, ip, name, ip, name, id, ip, name, ip, name, ip, name, id, ip, name, ip, name, ip, name, ip, name,
			name, id, category, role, zone)
		texts = append(texts, ipLookup)
	}

	if zone != "" && zone != "Unknown" {
		zoneChunk := fmt.Sprintf(`%s (%s) is part of %s
Category: %s
Located in: %s
IP: %s
Role: %s
This device is part of the %s infrastructure.`, name, id, zone, category, zone, ip, role, zone)
		texts = append(texts, zoneChunk)
	}

	if osInfo := stringField(data, "os", ""); osInfo != "" {
		osChunk := fmt.Sprintf(`Operating System Information for %s:
The operating system of %s is: %s
%s runs on: %s
OS of %s: %s
What OS does %s use? Answer: %s
%s operating system: %s
Hệ điều hành của %s là: %s
%s chạy trên hệ điều hành: %s
OS của máy %s: %s

Device Details:
- Name: %s
- ID: %s
- IP: %s
- Category: %s
- Role: %s
- Operating System: %s

Keywords: %s, OS, operating system, %s, version, software
Source: %s`, name, name, osInfo, name, osInfo, name, osInfo, name, osInfo, name, osInfo, name, osInfo, name, osInfo,
			name, osInfo, name, id, ip, category, role, osInfo, name, osInfo, filename)
		texts = append(texts, osChunk)
	}

	if hasAny(data, "subnet", "ip_range", "vmnet") {
		var b strings.Builder
		fmt.Fprintf(&b, "Network config for %s (ID: %s):\n", name, id)
		if v := stringField(data, "subnet", ""); v != "" {
			fmt.Fprintf(&b, "- Subnet: %s\n", v)
		}
		if v := stringField(data, "ip_range", ""); v != "" {
			fmt.Fprintf(&b, "- IP Range: %s\n", v)
		}
		switch vmnet := data["vmnet"].(type) {
		case []any:
			fmt.Fprintf(&b, "- VMnet: %s\n", strings.Join(toStrings(vmnet), ", "))
		case string:
			fmt.Fprintf(&b, "- VMnet: %s\n", vmnet)
		}
		if v := stringField(data, "gateway", ""); v != "" {
			fmt.Fprintf(&b, "- Gateway: %s\n", v)
		}
		if v := stringField(data, "primary_ip", ""); v != "" {
			fmt.Fprintf(&b, "- Primary IP: %s\n", v)
		}
		texts = append(texts, strings.TrimSpace(b.String()))
	}

	if ifaces, ok := data["interfaces"].([]any); ok && len(ifaces) > 0 {
		texts = append(texts, interfaceChunks(ifaces, name, id, ip, filename)...)
	}

	if v, ok := data["services"].([]any); ok {
		texts = append(texts, fmt.Sprintf("Services running on %s:\n%s", name, strings.Join(toStrings(v), ", ")))
	}
	if v, ok := data["components"].([]any); ok {
		texts = append(texts, fmt.Sprintf("Components of %s:\n%s", name, strings.Join(toStrings(v), ", ")))
	}
	if v, ok := data["vulnerabilities"].([]any); ok && len(v) > 0 {
		texts = append(texts, fmt.Sprintf("Vulnerabilities on %s (ID: %s):\n%s\nThese are intentionally installed vulnerabilities for testing detection capabilities.",
			name, id, strings.Join(toStrings(v), ", ")))
	}
	if v, ok := data["capabilities"].([]any); ok && len(v) > 0 {
		texts = append(texts, fmt.Sprintf("Capabilities of %s:\n%s", name, bulletList(toStrings(v))))
	}
	if v, ok := data["monitoring"].([]any); ok && len(v) > 0 {
		texts = append(texts, fmt.Sprintf("Monitoring for %s:\n%s", name, bulletList(toStrings(v))))
	}
	if v, ok := data["data_sources"].([]any); ok && len(v) > 0 {
		texts = append(texts, fmt.Sprintf("%s collects logs from:\n%s", name, bulletList(toStrings(v))))
	}
	if v := stringField(data, "routing_function", ""); v != "" {
		texts = append(texts, fmt.Sprintf("Routing function of %s:\n%s", name, v))
	}
	if v, ok := data["attack_vectors"].([]any); ok && len(v) > 0 {
		texts = append(texts, fmt.Sprintf("Attack vectors from %s:\n%s", name, bulletList(toStrings(v))))
	}

	return texts
}

func interfaceChunks(ifaces []any, name, id, ip, filename string) []string {
	var chunks []string
	var names []string
	var details []string

	for idx, raw := range ifaces {
		iface, _ := raw.(map[string]any)
		ifName := stringField(iface, "name", "N/A")
		ifIP := stringField(iface, "ip", "N/A")
		ifSubnet := stringField(iface, "subnet", "N/A")
		ifVmnet := stringField(iface, "vmnet", "N/A")
		ifType := stringField(iface, "type", "N/A")
		ifDesc := stringField(iface, "description", "N/A")

		chunks = append(chunks, fmt.Sprintf(`%s (%s) - Interface %d/%d:
Device: %s (IP: %s)
Interface Name: %s
Interface IP: %s
Subnet: %s
VMnet: %s
Type: %s
Description: %s
Source: %s`, name, id, idx+1, len(ifaces), name, ip, ifName, ifIP, ifSubnet, ifVmnet, ifType, ifDesc, filename))

		names = append(names, ifName)
		detail := "- " + ifName
		if ifIP != "N/A" {
			detail += fmt.Sprintf(" (IP: %s)", ifIP)
		}
		if ifType != "N/A" {
			detail += fmt.Sprintf(" [%s]", ifType)
		}
		if ifDesc != "N/A" {
			detail += fmt.Sprintf(": %s", ifDesc)
		}
		details = append(details, detail)
	}

	if len(ifaces) > 1 {
		summary := fmt.Sprintf(`%s (%s) Network Interfaces Summary:
Device: %s
Primary IP: %s
Total Interfaces: %d
Interface Names: %s

All Network Interfaces:
%s

Keywords: %s, interfaces, %s, network cards, NICs
Source: %s`, name, id, name, ip, len(ifaces), strings.Join(names, ", "), strings.Join(details, "\n"), name, strings.Join(names, ", "), filename)
		chunks = append(chunks, summary)
	}
	return chunks
}

// MitreToNaturalText converts a MITRE ATT&CK technique object into a
// single natural-language chunk, putting the technique ID first for
// reliable keyword matching.
func MitreToNaturalText(tech map[string]any) string {
	mitreID := stringField(tech, "mitre_id", "Unknown")
	name := stringField(tech, "name", "Unknown")
	description := stringField(tech, "description", "")
	tactics := toStrings(tech["tactics"])
	platforms := toStrings(tech["platforms"])
	dataSources := toStrings(tech["data_sources"])
	isSub, _ := tech["is_subtechnique"].(bool)

	techType := "Technique"
	if isSub {
		techType = "Sub-technique"
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%s - MITRE ATT&CK %s: %s", mitreID, techType, name))
	parts = append(parts, fmt.Sprintf("MITRE ID: %s", mitreID))
	parts = append(parts, fmt.Sprintf("Technique Name: %s", name))
	parts = append(parts, "")

	if len(tactics) > 0 {
		parts = append(parts, fmt.Sprintf("Tactics: %s", strings.Join(tactics, ", ")))
	}
	if len(platforms) > 0 {
		parts = append(parts, fmt.Sprintf("Platforms: %s", strings.Join(platforms, ", ")))
	}
	if description != "" {
		parts = append(parts, "", fmt.Sprintf("Description: %s", description))
	}
	if len(dataSources) > 0 {
		parts = append(parts, "", "Detection Data Sources:")
		for _, ds := range dataSources {
			parts = append(parts, "  - "+ds)
		}
	}

	parts = append(parts, "")
	keywords := []string{mitreID, name, fmt.Sprintf("technique %s", mitreID)}
	keywords = append(keywords, tactics...)
	parts = append(parts, fmt.Sprintf("Search Keywords: %s", strings.Join(keywords, ", ")))

	return strings.Join(parts, "\n")
}

// DataflowToNaturalText converts a dataflow/pipeline JSON object into a
// phases-summary chunk (answering "how many phases"), one chunk per
// phase, a components summary chunk, and a routing-pipelines chunk.
func DataflowToNaturalText(data map[string]any, filename string) []string {
	var chunks []string

	metadata, _ := data["metadata"].(map[string]any)
	docName := stringField(metadata, "name", stringField(data, "name", "Dataflow"))

	phases, _ := data["phases"].([]any)
	if len(phases) > 0 {
		var list []string
		for i, raw := range phases {
			phase, _ := raw.(map[string]any)
			phaseName := stringField(phase, "name", fmt.Sprintf("Phase %d", i+1))
			phaseDesc := stringField(phase, "description", "")
			if len(phaseDesc) > 150 {
				phaseDesc = phaseDesc[:150]
			}
			list = append(list, fmt.Sprintf("  %d. %s: %s", i+1, phaseName, phaseDesc))
		}

		summary := fmt.Sprintf(`%s

PHASES SUMMARY:
This dataflow pipeline consists of %d phases:

%s

Total number of phases: %d
How many phases? Answer: %d phases

Source: %s
Keywords: phases, pipeline, dataflow, %d phases, workflow stages`, docName, len(phases), strings.Join(list, "\n"), len(phases), len(phases), filename, len(phases))
		chunks = append(chunks, summary)

		for _, raw := range phases {
			phase, _ := raw.(map[string]any)
			phaseID := stringField(phase, "id", "")
			phaseName := stringField(phase, "name", "Unknown Phase")
			phaseDesc := stringField(phase, "description", "")
			edgeIDs := toStrings(phase["edge_ids"])

			edges := "N/A"
			if len(edgeIDs) > 0 {
				edges = strings.Join(edgeIDs, ", ")
			}

			chunks = append(chunks, fmt.Sprintf(`%s - %s

Phase ID: %s
Phase Name: %s
Description: %s

Related Data Flows: %s

Source: %s
Keywords: %s, %s, phase, pipeline stage`, docName, phaseName, phaseID, phaseName, phaseDesc, edges, filename, phaseName, phaseID))
		}
	}

	if nodes, ok := data["nodes"].([]any); ok && len(nodes) > 0 {
		var names []string
		for _, raw := range nodes {
			node, _ := raw.(map[string]any)
			n := stringField(node, "role", stringField(node, "id", ""))
			names = append(names, n)
		}
		shown := names
		suffix := ""
		if len(names) > 20 {
			shown = names[:20]
			suffix = "..."
		}
		chunks = append(chunks, fmt.Sprintf(`%s - Components/Nodes

Total components in this dataflow: %d
Components: %s%s

Source: %s
Keywords: nodes, components, devices, dataflow elements`, docName, len(nodes), strings.Join(shown, ", "), suffix, filename))
	}

	if routing, ok := data["routing_pipelines"].(map[string]any); ok && len(routing) > 0 {
		var lines []string
		for flowName, raw := range routing {
			if nodes, ok := raw.([]any); ok {
				lines = append(lines, fmt.Sprintf("  - %s: %s", flowName, strings.Join(toStrings(nodes), " \u2192 ")))
			}
		}
		chunks = append(chunks, fmt.Sprintf(`%s - Routing Pipelines

Traffic flow paths in this architecture:
%s

Source: %s
Keywords: routing, traffic flow, data path, pipeline`, docName, strings.Join(lines, "\n"), filename))
	}

	return chunks
}

func stringField(m map[string]any, key, def string) string {
	if m == nil {
		return def
	}
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

func hasAny(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func toStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

// IsDeviceRecord reports whether the decoded JSON object looks like a
// device record per §4.2's dispatch rule: it carries both "id" and "name".
func IsDeviceRecord(data map[string]any) bool {
	return hasAny(data, "id") && hasAny(data, "name")
}

// IsMitreTechnique reports whether the decoded JSON object is a MITRE
// ATT&CK technique record.
func IsMitreTechnique(data map[string]any) bool {
	return hasAny(data, "mitre_id")
}

// IsDataflow reports whether the decoded JSON object is a dataflow/
// pipeline record.
func IsDataflow(data map[string]any) bool {
	_, ok := data["phases"].([]any)
	return ok
}
