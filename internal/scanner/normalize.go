package scanner

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var errEmptyHost = errors.New("empty hostname")

// hostProfile maps names for lookup and converts them to their ASCII form.
// Underscores stay allowed since service labels such as _dmarc are common in
// wordlists.
var hostProfile = idna.New( //nolint: gochecknoglobals
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.VerifyDNSLength(true),
)

// NormalizeHost returns the canonical form of a hostname given as a bare
// name, a host:port pair or a URL.
//
// Spellings of the same host normalize to the same string:
//   - surrounding whitespace is trimmed and the name is lower-cased
//   - a scheme, userinfo, path, query and fragment are dropped
//   - a port is dropped
//   - a trailing root dot is dropped
//
// The result must be an IPv4 literal or a valid DNS name. Internationalized
// names are converted to punycode; the ASCII form may only hold letters,
// digits, hyphens and underscores in labels of 1 to 63 characters, not
// starting or ending with a hyphen, 253 characters at most.
func NormalizeHost(raw string) (string, error) {
	host := strings.ToLower(strings.TrimSpace(raw))
	if host == "" {
		return "", errEmptyHost
	}

	if strings.Contains(host, "://") {
		u, err := url.Parse(host)
		if err != nil {
			return "", fmt.Errorf("could not parse URL: %w", err)
		}
		host = u.Hostname()
	} else {
		// drop anything after the authority
		if i := strings.IndexAny(host, "/?#"); i >= 0 {
			host = host[:i]
		}
		if i := strings.LastIndex(host, "@"); i >= 0 {
			host = host[i+1:]
		}
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
	}

	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", errEmptyHost
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if !addr.Is4() {
			return "", fmt.Errorf("%s: only IPv4 literals are supported", host)
		}

		return addr.String(), nil
	}

	return asciiName(host)
}

func asciiName(host string) (string, error) {
	name, err := hostProfile.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%s: %w", host, err)
	}

	// the non-strict profile lets STD3 disallowed characters through
	if i := strings.IndexFunc(name, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' && r != '.'
	}); i >= 0 {
		return "", fmt.Errorf("%s: invalid character %q", host, name[i])
	}

	return name, nil
}
