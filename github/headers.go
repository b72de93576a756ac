package github

import (
	"net/http"
	"net/textproto"
	"strings"
)

// Rate limit response headers
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// Headers returns a header's string value, if present
type Headers interface {
	Lookup(name string) (string, bool)
}

// HTTPHeaders adapts http.Header to Headers
type HTTPHeaders http.Header

// Lookup implements Headers
func (h HTTPHeaders) Lookup(name string) (string, bool) {
	values, ok := h[textproto.CanonicalMIMEHeaderKey(name)]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// HeaderMap adapts a plain map to Headers. Names match case-insensitively.
type HeaderMap map[string]string

// Lookup implements Headers
func (m HeaderMap) Lookup(name string) (string, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

func lookupPtr(h Headers, name string) *string {
	v, ok := h.Lookup(name)
	if !ok {
		return nil
	}
	return &v
}

// RateLimitFromHeaders extracts the verbatim rate limit header values
func RateLimitFromHeaders(h Headers) *RateLimitInfo {
	return &RateLimitInfo{
		Limit:     lookupPtr(h, HeaderRateLimitLimit),
		Remaining: lookupPtr(h, HeaderRateLimitRemaining),
		Reset:     lookupPtr(h, HeaderRateLimitReset),
	}
}

func isRateLimited(status int, h Headers) bool {
	if status != http.StatusForbidden {
		return false
	}
	remaining, ok := h.Lookup(HeaderRateLimitRemaining)
	return ok && remaining == "0"
}
