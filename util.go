package rdapclient

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

func trimDotLower(s string) string { return strings.ToLower(strings.TrimPrefix(s, ".")) }

// joinURL appends path segments to an absolute http(s) base URL.
func joinURL(base string, segs ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("not an absolute http(s) URL: %q", base)
	}
	u.Path = path.Join(append([]string{"/", u.Path}, segs...)...)
	return u.String(), nil
}

func lower(s string) string { return strings.ToLower(s) }

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func copyHeaders(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

// maxRetryAfter caps the server's hint so one domain cannot stall a batch.
const maxRetryAfter = 5 * time.Minute

// retryAfter reads Retry-After as delay-seconds or an HTTP-date relative
// to now. Absent, malformed or past values yield zero.
func retryAfter(h http.Header, now time.Time) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	var d time.Duration
	if n, err := strconv.Atoi(v); err == nil {
		d = time.Duration(n) * time.Second
	} else if t, err := http.ParseTime(v); err == nil {
		d = t.Sub(now)
	}
	return min(max(d, 0), maxRetryAfter)
}

// temporary reports whether err or anything it wraps says Temporary().
func temporary(err error) bool {
	type temp interface{ Temporary() bool }
	var te temp
	return errors.As(err, &te) && te.Temporary()
}

// toStringSlice keeps the string members of a decoded JSON array.
func toStringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, x := range arr {
		if s, ok := x.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
