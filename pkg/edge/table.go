// Package edge classifies addresses as belonging to a known edge network.
//
// The fast path is a containment test over a static table of CIDR blocks. An
// optional confirmation path asks the host itself and looks for provider
// marker headers, which covers edge customers served from leased blocks.
package edge

import (
	_ "embed"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"go4.org/netipx"
	"gopkg.in/yaml.v3"
)

//go:embed ranges.yaml
var defaultRanges []byte

// Provider describes one edge network.
type Provider struct {
	Name string
	// Markers are response headers only the provider's edge sets.
	Markers []string
	// Server is the token the provider puts in the Server header, if any.
	Server string
}

// Range is one CIDR block of a provider.
type Range struct {
	Provider *Provider
	Prefix   netip.Prefix
}

// Last returns the last address of the block.
func (r Range) Last() netip.Addr { return netipx.PrefixLastIP(r.Prefix) }

// Table is an immutable set of disjoint edge ranges. It is safe for concurrent use.
type Table struct {
	providers []*Provider
	ranges    []Range
}

type tableFile struct {
	Providers []struct {
		Name    string   `yaml:"name"`
		Server  string   `yaml:"server"`
		Markers []string `yaml:"markers"`
		Ranges  []string `yaml:"ranges"`
	} `yaml:"providers"`
}

// Default returns the embedded range table.
func Default() (*Table, error) {
	return Parse(defaultRanges)
}

// Load reads a range table from path, or returns the embedded table when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading range table: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML range table. Prefixes are masked to their network
// address. Invalid blocks, an empty table and overlapping blocks are errors.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding range table: %w", err)
	}

	t := &Table{}
	var seen netipx.IPSetBuilder
	for _, p := range f.Providers {
		if p.Name == "" {
			return nil, errors.New("range table: provider without a name")
		}
		provider := &Provider{Name: p.Name, Server: strings.ToLower(p.Server)}
		for _, m := range p.Markers {
			provider.Markers = append(provider.Markers, strings.ToLower(m))
		}
		t.providers = append(t.providers, provider)

		for _, raw := range p.Ranges {
			prefix, err := netip.ParsePrefix(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("range table: provider %s: %w", p.Name, err)
			}
			prefix = prefix.Masked()

			set, err := seen.IPSet()
			if err != nil {
				return nil, fmt.Errorf("range table: %w", err)
			}
			if set.OverlapsPrefix(prefix) {
				return nil, fmt.Errorf("range table: %s (%s) overlaps another block", prefix, p.Name)
			}
			seen.AddPrefix(prefix)

			t.ranges = append(t.ranges, Range{Provider: provider, Prefix: prefix})
		}
	}

	if len(t.ranges) == 0 {
		return nil, errors.New("range table: no ranges")
	}

	return t, nil
}

// Lookup returns the block containing ip. Blocks are disjoint, so the first
// hit is the only one. IPv4-mapped IPv6 addresses are tested as IPv4.
func (t *Table) Lookup(ip netip.Addr) (Range, bool) {
	if !ip.IsValid() {
		return Range{}, false
	}
	ip = ip.Unmap()

	for _, r := range t.ranges {
		if r.Prefix.Contains(ip) {
			return r, true
		}
	}

	return Range{}, false
}

// IsEdgeNetwork reports whether ip lies inside any block of the table.
func (t *Table) IsEdgeNetwork(ip netip.Addr) bool {
	_, ok := t.Lookup(ip)

	return ok
}

// Ranges returns the blocks in table order.
func (t *Table) Ranges() []Range {
	out := make([]Range, len(t.ranges))
	copy(out, t.ranges)

	return out
}

// Providers returns the providers in table order.
func (t *Table) Providers() []*Provider {
	out := make([]*Provider, len(t.providers))
	copy(out, t.providers)

	return out
}

// Markers returns the union of all providers' marker headers, lower-cased.
func (t *Table) Markers() []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range t.providers {
		for _, m := range p.Markers {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}

	return out
}
