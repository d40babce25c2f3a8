package prober

import (
	"fmt"
	"strconv"
	"strings"

	"frontscan/pkg/serrors"
)

// Protocol is one attempt variant: a URL scheme and the port dialed on the front.
type Protocol struct {
	Scheme string
	Port   uint16
}

// Default protocol variants.
var (
	HTTPS = Protocol{Scheme: "https", Port: 443} //nolint: gochecknoglobals
	HTTP  = Protocol{Scheme: "http", Port: 80}   //nolint: gochecknoglobals
)

// DefaultProtocols is the attempt order used when none is configured.
func DefaultProtocols() []Protocol {
	return []Protocol{HTTPS, HTTP}
}

func (p Protocol) String() string {
	return p.Scheme + ":" + strconv.Itoa(int(p.Port))
}

// ParseProtocol parses "https", "http" or "scheme:port".
func ParseProtocol(s string) (Protocol, error) {
	scheme, port, hasPort := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")

	var p Protocol
	switch scheme {
	case "https":
		p = HTTPS
	case "http":
		p = HTTP
	default:
		return Protocol{}, serrors.With(serrors.ErrBadRequest, "unknown protocol %q", s)
	}

	if hasPort {
		n, err := strconv.ParseUint(port, 10, 16)
		if err != nil || n == 0 {
			return Protocol{}, serrors.With(serrors.ErrBadRequest, "invalid port in protocol %q", s)
		}
		p.Port = uint16(n)
	}

	return p, nil
}

// ParseProtocols parses a list of protocol specs, keeping order.
func ParseProtocols(specs []string) ([]Protocol, error) {
	out := make([]Protocol, 0, len(specs))
	for _, s := range specs {
		p, err := ParseProtocol(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no protocols: %w", serrors.KindOnly(serrors.ErrBadRequest))
	}

	return out, nil
}
