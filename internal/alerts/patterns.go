package alerts

import "strings"

// attackPatterns is the fixed keyword taxonomy used to auto-detect an
// attack pattern from a log line, reproduced verbatim (order and all) from
// original_source/app/services/alert_summarization_service.py's
// ATTACK_PATTERNS. Order matters: the first pattern whose keyword list
// contains a match wins.
var attackPatterns = []struct {
	name     string
	keywords []string
}{
	{"reconnaissance", []string{"nmap", "syn_scan", "port_scan", "network_scan", "nessus", "scan", "probe", "enum",
		"discovery", "fingerprint", "mapping", "snmp", "dns query", "portscan"}},
	{"brute_force", []string{"brute", "login_attempt", "password", "auth_failed", "unauthorized", "failed login",
		"authentication", "credential", "ssh", "rdp_failed", "login failed", "invalid user"}},
	{"lateral_movement", []string{"lateral", "move", "privilege", "escalation", "lateral_movement", "rdp", "smb",
		"psexec", "wmi", "winrm", "pass the hash", "mimikatz"}},
	{"exfiltration", []string{"exfil", "download", "extract", "data_transfer", "upload", "ftp", "scp", "dns tunnel",
		"large transfer", "outbound"}},
	{"network_attack", []string{"syn flood", "ddos", "dos", "flood", "amplification", "icmp", "fragmentation"}},
	{"malware", []string{"malware", "trojan", "virus", "ransomware", "exploit", "shellcode", "payload", "c2",
		"command and control", "beacon", "backdoor", "dropper"}},
	{"web_attack", []string{"sql injection", "xss", "csrf", "lfi", "rfi", "command injection", "path traversal",
		"http", "web", "request", "response", "403", "404", "500", "uri"}},
	{"blocked_traffic", []string{"block", "deny", "drop", "reject", "filtered", "firewall", "pfsense", "iptables",
		"rule", "default deny", "connection refused"}},
	{"suspicious_traffic", []string{"suspicious", "anomaly", "unusual", "alert", "threat", "warning", "error",
		"detected", "triggered", "signature", "suricata", "zeek", "snort"}},
	{"connection", []string{"connection", "tcp", "udp", "established", "closed", "syn", "fin", "rst", "session",
		"flow", "stream", "packet", "traffic"}},
}

// attackSequence is the escalation sequence checked by detectEscalation,
// in the original's order.
var attackSequence = []string{"reconnaissance", "brute_force", "lateral_movement", "exfiltration"}

// detectPattern auto-detects the attack pattern from an ml_input log line,
// checking patterns in priority order and returning the first match.
// Returns "unknown" when nothing matches.
func detectPattern(mlInput string) string {
	lower := strings.ToLower(mlInput)
	for _, p := range attackPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				return p.name
			}
		}
	}
	return "unknown"
}

// detectEscalation looks for the reconnaissance -> brute_force ->
// lateral_movement -> exfiltration sequence across a set of groups.
// Returns 2 when 2+ sequence stages are present, 1 when exactly one is,
// 0 otherwise.
func detectEscalation(groups []Group) float64 {
	detected := make(map[string]bool)
	for _, g := range groups {
		if g.Pattern != "unknown" {
			detected[g.Pattern] = true
		}
	}
	matches := 0
	for _, stage := range attackSequence {
		if detected[stage] {
			matches++
		}
	}
	switch {
	case matches >= 2:
		return 2.0
	case matches == 1:
		return 1.0
	default:
		return 0.0
	}
}
