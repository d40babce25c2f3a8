package scanner_test

import (
	"strings"
	"testing"

	"frontscan/internal/scanner"
)

func TestNormalizeHost(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
		ok   bool
	}{
		{
			name: "lowercase and trim",
			in:   "  CDN.Example.COM ",
			out:  "cdn.example.com",
			ok:   true,
		},
		{
			name: "drop trailing root dot",
			in:   "cdn.example.com.",
			out:  "cdn.example.com",
			ok:   true,
		},
		{
			name: "drop scheme path and query",
			in:   "https://cdn.example.com/path?x=1#frag",
			out:  "cdn.example.com",
			ok:   true,
		},
		{
			name: "drop port",
			in:   "cdn.example.com:8443",
			out:  "cdn.example.com",
			ok:   true,
		},
		{
			name: "drop port and path without scheme",
			in:   "cdn.example.com:443/index.html",
			out:  "cdn.example.com",
			ok:   true,
		},
		{
			name: "underscore label",
			in:   "_dmarc.example.com",
			out:  "_dmarc.example.com",
			ok:   true,
		},
		{
			name: "ipv4 literal",
			in:   "104.16.1.1",
			out:  "104.16.1.1",
			ok:   true,
		},
		{
			name: "single label",
			in:   "localhost",
			out:  "localhost",
			ok:   true,
		},
		{
			name: "internationalized name",
			in:   "Bücher.Example",
			out:  "xn--bcher-kva.example",
			ok:   true,
		},
		{
			name: "internationalized name in URL",
			in:   "https://bücher.example/shop",
			out:  "xn--bcher-kva.example",
			ok:   true,
		},
		{
			name: "punycode kept",
			in:   "xn--bcher-kva.example",
			out:  "xn--bcher-kva.example",
			ok:   true,
		},
		{
			name: "trailing hyphen",
			in:   "cdn-.example.com",
			ok:   false,
		},
		{
			name: "name too long",
			in:   strings.Repeat(strings.Repeat("a", 60)+".", 5) + "com",
			ok:   false,
		},
		{
			name: "punctuation",
			in:   "bad!host.example.com",
			ok:   false,
		},
		{
			name: "ipv6 literal rejected",
			in:   "[2001:db8::1]:443",
			ok:   false,
		},
		{
			name: "space inside",
			in:   "exa mple.com",
			ok:   false,
		},
		{
			name: "empty label",
			in:   "a..example.com",
			ok:   false,
		},
		{
			name: "leading hyphen",
			in:   "-cdn.example.com",
			ok:   false,
		},
		{
			name: "label too long",
			in:   strings.Repeat("a", 64) + ".example.com",
			ok:   false,
		},
		{
			name: "empty",
			in:   "   ",
			ok:   false,
		},
		{
			name: "wildcard",
			in:   "*.example.com",
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := scanner.NormalizeHost(tc.in)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tc.out {
					t.Fatalf("expected %q, got %q", tc.out, got)
				}

				return
			}
			if err == nil {
				t.Fatalf("expected error for %q, got %q", tc.in, got)
			}
		})
	}
}
