package common

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"
)

// PathID parses a positive int64 path value.
func PathID(r *http.Request, name string) (int64, *AppError) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, NewAppError(http.StatusBadRequest, "Invalid "+name+" in URL path", nil)
	}
	return id, nil
}

func QueryString(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

func QueryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

func QueryInt64Ptr(r *http.Request, name string) (*int64, *AppError) {
	raw := QueryString(r, name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, NewAppError(http.StatusBadRequest, "Invalid "+name+" query parameter", nil)
	}
	return &v, nil
}

func QueryBoolPtr(r *http.Request, name string) (*bool, *AppError) {
	raw := QueryString(r, name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, NewAppError(http.StatusBadRequest, "Invalid "+name+" query parameter", nil)
	}
	return &v, nil
}

// QueryTimePtr accepts RFC 3339 timestamps or plain dates (yyyy-MM-dd).
// When endOfDay is set a plain date covers the whole day.
func QueryTimePtr(r *http.Request, name string, endOfDay bool) (*time.Time, *AppError) {
	raw := QueryString(r, name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, NewAppError(http.StatusBadRequest, "Invalid "+name+" query parameter", nil)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}

var (
	proxyMu        sync.RWMutex
	trustedProxies []netip.Prefix
)

// SetTrustedProxies replaces the proxies whose forwarding headers ClientIP
// honours. Entries are CIDR prefixes or single addresses.
func SetTrustedProxies(entries []string) error {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}

	proxyMu.Lock()
	trustedProxies = prefixes
	proxyMu.Unlock()
	return nil
}

func isTrustedProxy(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	proxyMu.RLock()
	defer proxyMu.RUnlock()
	for _, p := range trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}

// ClientIP returns the address of the client. Forwarding headers are read
// only when the connection comes from a trusted proxy: X-Forwarded-For is
// walked right to left and the first hop that is not a trusted proxy wins,
// then X-Real-IP. Otherwise the remote address is used.
func ClientIP(r *http.Request) string {
	remote := remoteHost(r)
	if !isTrustedProxy(remote) {
		return remote
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		first := ""
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				break
			}
			if !isTrustedProxy(hop) {
				return hop
			}
			first = hop
		}
		if first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		if _, err := netip.ParseAddr(ip); err == nil {
			return ip
		}
	}
	return remote
}
