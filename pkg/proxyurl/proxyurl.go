// Package proxyurl parses and formats forward proxy URLs of the form
// scheme://[user[:password]@]host:port.
//
// A parsed Descriptor is always fully specified: a recognized scheme, a
// non-empty host, and a port inside [1,65535]. Anything less fails with
// ErrInvalidProxyURL. The bare "socks" scheme is accepted on input and
// normalized to "socks5", so downstream consumers never see it.
package proxyurl

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidProxyURL is wrapped by every parse failure.
var ErrInvalidProxyURL = errors.New("invalid proxy URL")

// Schemes a Descriptor can carry after normalization.
const (
	SchemeHTTP   = "http"
	SchemeHTTPS  = "https"
	SchemeSOCKS4 = "socks4"
	SchemeSOCKS5 = "socks5"
)

// Credentials holds percent-decoded proxy credentials.
//
// PasswordSet records whether a password component was present at all, so
// "user@host" and "user:@host" survive a parse/format round trip unchanged.
type Credentials struct {
	Username    string
	Password    string
	PasswordSet bool
}

// Descriptor is a fully specified forward proxy endpoint.
type Descriptor struct {
	Scheme string
	Host   string
	Port   int
	Auth   *Credentials
}

// Parse converts a raw proxy URL string into a Descriptor.
//
// It fails with a wrapped ErrInvalidProxyURL when the string is not a
// well-formed URI, the scheme is not http/https/socks/socks4/socks5, the
// host is empty, or the port is missing or outside [1,65535]. Username and
// password are percent-decoded. Any path, query, or fragment is ignored.
func Parse(raw string) (*Descriptor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidProxyURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProxyURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case SchemeHTTP, SchemeHTTPS, SchemeSOCKS4, SchemeSOCKS5:
	case "socks":
		scheme = SchemeSOCKS5
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxyURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidProxyURL, raw)
	}

	portStr := u.Port()
	if portStr == "" {
		return nil, fmt.Errorf("%w: missing port in %q", ErrInvalidProxyURL, raw)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid port %q", ErrInvalidProxyURL, portStr)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range [1,65535]", ErrInvalidProxyURL, port)
	}

	d := &Descriptor{
		Scheme: scheme,
		Host:   host,
		Port:   port,
	}

	if u.User != nil {
		password, set := u.User.Password()
		d.Auth = &Credentials{
			Username:    u.User.Username(),
			Password:    password,
			PasswordSet: set,
		}
	}

	return d, nil
}

// URL returns the descriptor as a *url.URL with credentials re-encoded.
func (d *Descriptor) URL() *url.URL {
	u := &url.URL{
		Scheme: d.Scheme,
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
	}
	if d.Auth != nil {
		if d.Auth.PasswordSet {
			u.User = url.UserPassword(d.Auth.Username, d.Auth.Password)
		} else {
			u.User = url.User(d.Auth.Username)
		}
	}
	return u
}

// String formats the descriptor back into canonical URL form. Credentials
// are percent-encoded so that special characters round-trip through Parse.
func (d *Descriptor) String() string {
	return d.URL().String()
}

// Redacted returns the canonical URL with any credentials stripped, for
// logs and API responses.
func (d *Descriptor) Redacted() string {
	u := d.URL()
	u.User = nil
	return u.String()
}

// Redact strips credentials from a canonical proxy URL string. Strings that
// do not parse are returned unchanged.
func Redact(canonical string) string {
	d, err := Parse(canonical)
	if err != nil {
		return canonical
	}
	return d.Redacted()
}
