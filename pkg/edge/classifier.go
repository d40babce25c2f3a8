package edge

import (
	"context"
	"net/netip"
)

// Source tells how membership was established.
type Source string

const (
	// SourceCIDR means the address is inside a published block.
	SourceCIDR Source = "cidr"
	// SourceHeader means the host answered with a provider marker.
	SourceHeader Source = "header"
)

// Membership is the classifier's verdict for one address.
type Membership struct {
	Edge     bool
	Provider string
	Source   Source
	// Marker is the header that confirmed membership, for SourceHeader.
	Marker string
	// Prefix is the containing block, for SourceCIDR.
	Prefix netip.Prefix
}

// Classifier runs the CIDR test and, when it is negative and a confirmer is
// configured, the header confirmation.
type Classifier struct {
	table     *Table
	confirmer *Confirmer
}

// NewClassifier returns a classifier over table. A nil confirmer disables the
// header confirmation path.
func NewClassifier(table *Table, confirmer *Confirmer) *Classifier {
	return &Classifier{table: table, confirmer: confirmer}
}

// Table returns the range table the classifier tests against.
func (c *Classifier) Table() *Table { return c.table }

// Classify decides whether ip, resolved from host, belongs to an edge network.
func (c *Classifier) Classify(ctx context.Context, host string, ip netip.Addr) Membership {
	if r, ok := c.table.Lookup(ip); ok {
		return Membership{Edge: true, Provider: r.Provider.Name, Source: SourceCIDR, Prefix: r.Prefix}
	}

	if c.confirmer == nil || !ip.IsValid() {
		return Membership{}
	}

	p, marker, ok := c.confirmer.Confirm(ctx, host, ip)
	if !ok {
		return Membership{}
	}

	return Membership{Edge: true, Provider: p.Name, Source: SourceHeader, Marker: marker}
}
