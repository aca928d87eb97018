package enrichment

import (
	"net"
	"regexp"
	"strings"
)

var (
	hashPattern = regexp.MustCompile(`^[a-fA-F0-9]{32}$|^[a-fA-F0-9]{40}$|^[a-fA-F0-9]{64}$`)
	domainLabel = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)
)

// ClassifyIOC implements spec.md §4.8's IOC-type classification: IP
// (parses as IPv4/IPv6), hash (32/40/64 hex chars), domain (contains a
// dot, every label passes domain-label validation, and it isn't an IP).
func ClassifyIOC(value string) string {
	value = strings.TrimSpace(value)
	if net.ParseIP(value) != nil {
		return "ip"
	}
	if hashPattern.MatchString(value) {
		return "hash"
	}
	if isDomain(value) {
		return "domain"
	}
	return "unknown"
}

func isDomain(value string) bool {
	if !strings.Contains(value, ".") {
		return false
	}
	labels := strings.Split(value, ".")
	for _, label := range labels {
		if !domainLabel.MatchString(label) {
			return false
		}
	}
	return true
}
