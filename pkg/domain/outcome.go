package domain

import (
	"net/netip"
	"time"
)

// Candidate is a hostname under evaluation as a front, e.g. "cdn.example.com".
type Candidate string

func (c Candidate) String() string { return string(c) }

// Category is the terminal classification of a candidate.
type Category string

const (
	// CategoryWorking means the target was reached through the front and the edge marked the response.
	CategoryWorking Category = "WORKING"
	// CategoryRestricted means the edge answered 403/404: the front works, the origin blocks content.
	CategoryRestricted Category = "RESTRICTED"
	// CategorySubdomainIssue means the front itself could not carry the request.
	CategorySubdomainIssue Category = "SUBDOMAIN_ISSUE"
	// CategoryTargetIssue means the front answered but the target backend looks unhealthy.
	CategoryTargetIssue Category = "TARGET_ISSUE"
	// CategoryDNSFailure means the candidate did not resolve.
	CategoryDNSFailure Category = "DNS_FAILURE"
	// CategoryNotEdgeNetwork means the candidate resolved outside every known edge network.
	CategoryNotEdgeNetwork Category = "NOT_EDGE_NETWORK"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryWorking,
		CategoryRestricted,
		CategoryTargetIssue,
		CategorySubdomainIssue,
		CategoryNotEdgeNetwork,
		CategoryDNSFailure,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c.rank() >= 0
}

// Label returns a short human readable name.
func (c Category) Label() string {
	switch c {
	case CategoryWorking:
		return "working"
	case CategoryRestricted:
		return "restricted"
	case CategorySubdomainIssue:
		return "subdomain issue"
	case CategoryTargetIssue:
		return "target issue"
	case CategoryDNSFailure:
		return "dns failure"
	case CategoryNotEdgeNetwork:
		return "not edge network"
	default:
		return string(c)
	}
}

func (c Category) rank() int {
	for i, cat := range Categories() {
		if cat == c {
			return i
		}
	}

	return -1
}

// ProbeOutcome is the terminal record produced for one candidate. It is never
// mutated once returned by the engine.
type ProbeOutcome struct {
	Candidate Candidate `json:"candidate"`
	Category  Category  `json:"category"`

	// IP is the resolved address; invalid when resolution failed.
	IP netip.Addr `json:"ip"`
	// Provider names the edge network the IP belongs to, when known.
	Provider string `json:"provider,omitempty"`
	// Protocol is the scheme of the attempt that produced the final answer.
	Protocol string `json:"protocol,omitempty"`
	// StatusCode is zero when no HTTP response was received.
	StatusCode int `json:"statusCode,omitempty"`
	// Marker is the value of the edge marker header, if one was observed.
	Marker string `json:"marker,omitempty"`
	// Colo is the edge point of presence parsed from the marker, e.g. "SJC".
	Colo string `json:"colo,omitempty"`

	Elapsed time.Duration `json:"elapsed"`
	Reason  string        `json:"reason"`
}

// Totals counts outcomes per category.
type Totals struct {
	Working        int `json:"working"`
	Restricted     int `json:"restricted"`
	SubdomainIssue int `json:"subdomainIssue"`
	TargetIssue    int `json:"targetIssue"`
	DNSFailure     int `json:"dnsFailure"`
	NotEdgeNetwork int `json:"notEdgeNetwork"`
}

// Add counts one outcome of category c. Unknown categories are ignored.
func (t *Totals) Add(c Category) {
	if p := t.slot(c); p != nil {
		*p++
	}
}

// Count returns the number of outcomes recorded for c.
func (t Totals) Count(c Category) int {
	if p := t.slot(c); p != nil {
		return *p
	}

	return 0
}

// Total returns the number of outcomes across all categories.
func (t Totals) Total() int {
	return t.Working + t.Restricted + t.SubdomainIssue + t.TargetIssue + t.DNSFailure + t.NotEdgeNetwork
}

func (t *Totals) slot(c Category) *int {
	switch c {
	case CategoryWorking:
		return &t.Working
	case CategoryRestricted:
		return &t.Restricted
	case CategorySubdomainIssue:
		return &t.SubdomainIssue
	case CategoryTargetIssue:
		return &t.TargetIssue
	case CategoryDNSFailure:
		return &t.DNSFailure
	case CategoryNotEdgeNetwork:
		return &t.NotEdgeNetwork
	default:
		return nil
	}
}
