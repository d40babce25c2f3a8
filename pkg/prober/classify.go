package prober

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"syscall"

	"frontscan/pkg/domain"
)

// Failure is the kind of transport failure an attempt ended with.
type Failure string

const (
	// FailureNone means an HTTP response was received.
	FailureNone Failure = ""
	// FailureTimeout means connect, handshake or header wait ran out of time.
	FailureTimeout Failure = "timeout"
	// FailureTLS means the TLS handshake failed.
	FailureTLS Failure = "tls"
	// FailureRefused means the front refused the connection.
	FailureRefused Failure = "refused"
	// FailureConnection covers every other transport error.
	FailureConnection Failure = "connection"
)

// Signal is everything the classification policy looks at.
type Signal struct {
	StatusCode int
	Marker     bool
	Failure    Failure
}

// Classify maps a signal to a category. It is a pure function:
//
//   - any transport failure: SubdomainIssue
//   - 403 or 404: Restricted
//   - 1xx, 2xx or 3xx with an edge marker: Working
//   - anything else, including 2xx without a marker: TargetIssue
func Classify(s Signal) domain.Category {
	if s.Failure != FailureNone || s.StatusCode == 0 {
		return domain.CategorySubdomainIssue
	}

	switch {
	case s.StatusCode == 403 || s.StatusCode == 404:
		return domain.CategoryRestricted
	case s.StatusCode >= 100 && s.StatusCode < 400 && s.Marker:
		return domain.CategoryWorking
	default:
		return domain.CategoryTargetIssue
	}
}

// failureOf classifies a transport error.
func failureOf(err error) Failure {
	var netErr net.Error
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return FailureTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		return FailureRefused
	case isTLSError(err):
		return FailureTLS
	default:
		return FailureConnection
	}
}

func isTLSError(err error) bool {
	var (
		recordErr tls.RecordHeaderError
		alertErr  tls.AlertError
		verifyErr *tls.CertificateVerificationError
		authErr   x509.UnknownAuthorityError
		hostErr   x509.HostnameError
	)

	return errors.As(err, &recordErr) ||
		errors.As(err, &alertErr) ||
		errors.As(err, &verifyErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &hostErr) ||
		strings.Contains(err.Error(), "tls: ")
}

var httpsHints = []string{ //nolint: gochecknoglobals
	"plain http request was sent to https port",
	"speaking plain http to an ssl-enabled server port",
	"client sent an http request to an https server",
	"use https",
	"use the https scheme",
}

// wantsHTTPS reports whether a 400 body asks the client to switch to HTTPS.
func wantsHTTPS(body []byte) bool {
	b := strings.ToLower(string(body))
	for _, h := range httpsHints {
		if strings.Contains(b, h) {
			return true
		}
	}

	return false
}
