package service

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

var ErrBlockedURL = errors.New("url is not allowed")

var metadataHosts = map[string]struct{}{
	"169.254.169.254":          {},
	"metadata.google.internal": {},
	"metadata.goog":            {},
	"100.100.100.200":          {},
	"fd00:ec2::254":            {},
}

var metadataIPs = []net.IP{
	net.ParseIP("169.254.169.254"),
	net.ParseIP("100.100.100.200"),
	net.ParseIP("fd00:ec2::254"),
}

// CheckFetchURL rejects URLs that must never be fetched on a user's behalf.
// With allowPrivate, loopback and private literals pass but metadata
// endpoints stay blocked.
func CheckFetchURL(raw string, allowPrivate bool) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBlockedURL, err.Error())
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrBlockedURL, u.Scheme)
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrBlockedURL)
	}
	if _, ok := metadataHosts[host]; ok {
		return nil, fmt.Errorf("%w: metadata host %s", ErrBlockedURL, host)
	}

	ip := net.ParseIP(host)
	if ip != nil && isMetadataIP(ip) {
		return nil, fmt.Errorf("%w: metadata host %s", ErrBlockedURL, host)
	}
	if allowPrivate {
		return u, nil
	}

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return nil, fmt.Errorf("%w: %s", ErrBlockedURL, host)
	}
	if ip != nil && isInternalIP(ip) {
		return nil, fmt.Errorf("%w: internal address %s", ErrBlockedURL, host)
	}
	return u, nil
}

func isMetadataIP(ip net.IP) bool {
	for _, m := range metadataIPs {
		if m.Equal(ip) {
			return true
		}
	}
	return false
}

func isInternalIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified() ||
		ip.IsMulticast()
}

// NewGuardedHTTPClient re-checks every resolved address at dial time, so a
// public hostname that resolves to an internal address is refused as well.
func NewGuardedHTTPClient(timeout time.Duration, allowPrivate bool) *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			ip := net.ParseIP(host)
			if ip == nil {
				return fmt.Errorf("%w: unresolved address %s", ErrBlockedURL, address)
			}
			if isMetadataIP(ip) || (!allowPrivate && isInternalIP(ip)) {
				return fmt.Errorf("%w: internal address %s", ErrBlockedURL, host)
			}
			return nil
		},
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			_, err := CheckFetchURL(req.URL.String(), allowPrivate)
			return err
		},
	}
}
