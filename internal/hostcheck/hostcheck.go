// Package hostcheck validates caller-supplied media server URLs before any
// upstream call is made. The addon is publicly reachable and the server URL
// arrives from untrusted addon configuration, so anything that could steer
// requests at internal infrastructure is rejected up front.
package hostcheck

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrUnsafeURL marks a server URL that failed validation.
var ErrUnsafeURL = errors.New("unsafe server url")

// ValidateServerURL checks that raw is a well-formed absolute http(s) URL
// with a plain host: no embedded credentials, no fragment, and - unless
// allowPrivate is set - no loopback, private-range or link-local address.
// Hostnames are only checked syntactically; DNS rebinding is out of scope
// here and handled by the dial policy of the transport.
func ValidateServerURL(raw string, allowPrivate bool) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsafeURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q is not allowed", ErrUnsafeURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrUnsafeURL)
	}
	if parsed.User != nil {
		return nil, fmt.Errorf("%w: credentials in url", ErrUnsafeURL)
	}
	if parsed.Fragment != "" {
		return nil, fmt.Errorf("%w: fragment in url", ErrUnsafeURL)
	}

	if allowPrivate {
		return parsed, nil
	}

	host := parsed.Hostname()
	if strings.EqualFold(host, "localhost") {
		return nil, fmt.Errorf("%w: loopback host %q", ErrUnsafeURL, host)
	}
	if ip := net.ParseIP(host); ip != nil && !isPublicIP(ip) {
		return nil, fmt.Errorf("%w: non-public address %s", ErrUnsafeURL, ip)
	}
	return parsed, nil
}

// isPublicIP reports whether ip is routable from the public internet.
func isPublicIP(ip net.IP) bool {
	return !(ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified() ||
		ip.IsMulticast())
}
