package domain

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ParseTarget validates that input is an absolute http or https URL and returns it parsed
func ParseTarget(input string) (*url.URL, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrInvalidURLFormat
	}

	u, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURLFormat, err)
	}

	if !u.IsAbs() {
		return nil, ErrInvalidURLFormat
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}

	if u.Hostname() == "" {
		return nil, ErrMissingHost
	}

	return u, nil
}

// Normalize renders u in its canonical href form so equal inputs hash identically.
// The scheme and host are lower-cased, default ports dropped and an empty path becomes "/"
func Normalize(u *url.URL) string {
	n := *u
	n.Scheme = strings.ToLower(n.Scheme)

	host := strings.ToLower(n.Hostname())
	port := n.Port()

	if (n.Scheme == "http" && port == "80") || (n.Scheme == "https" && port == "443") {
		port = ""
	}

	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	if port != "" {
		host = host + ":" + port
	}

	n.Host = host

	if n.Path == "" && n.Opaque == "" {
		n.Path = "/"
	}

	return n.String()
}

// Origin returns the scheme://host[:port] portion of u
func Origin(u *url.URL) *url.URL {
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
}

// Registrable returns the public-suffix-aware registrable domain (eTLD+1) of host.
// IP literals, single-label hosts and bare public suffixes yield an empty string
func Registrable(host string) string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" || IsIPHost(host) {
		return ""
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}

	return etld1
}

// IsIPHost reports whether host is an IPv4 or IPv6 literal
func IsIPHost(host string) bool {
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")

	return net.ParseIP(host) != nil
}
