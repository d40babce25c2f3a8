package candidates

import (
	"strings"

	"frontscan/pkg/domain"
)

// CommonPrefixes are the subdomain labels tried by a quick scan of a domain.
var CommonPrefixes = []string{ //nolint: gochecknoglobals
	"www", "api", "cdn", "static", "mail", "ftp", "blog", "shop",
	"admin", "dev", "staging", "test", "m", "mobile", "app",
}

// Common returns CommonPrefixes expanded under the registrable part of name.
func Common(name string) Static {
	base := ExtractDomain(name)
	out := make(Static, 0, len(CommonPrefixes))
	for _, p := range CommonPrefixes {
		out = append(out, domain.Candidate(p+"."+base))
	}

	return out
}

// ExtractDomain strips a URL scheme and returns the last two labels of name,
// e.g. "https://api.sub.example.com" gives "example.com".
func ExtractDomain(name string) string {
	name = strings.TrimPrefix(name, "http://")
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimSuffix(strings.ToLower(name), ".")

	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return name
	}

	return labels[len(labels)-2] + "." + labels[len(labels)-1]
}
