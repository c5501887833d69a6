package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// ClientIPKey returns a KeyFunc that keys requests by client IP, prefixed
// so independent limiters (global vs auth) do not share windows.
//
// Header precedence: X-Forwarded-For (first valid entry), X-Real-IP, then
// RemoteAddr. Values are parsed and normalized; spoofable garbage falls
// through to the next source.
func ClientIPKey(prefix string) KeyFunc {
	return func(r *http.Request) string {
		if ip := clientIP(r); ip != "" {
			return prefix + ":" + ip
		}
		return ""
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for _, entry := range strings.Split(forwarded, ",") {
			if ip := parseIP(entry); ip != "" {
				return ip
			}
		}
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
