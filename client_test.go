package rdapclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- Backoff ----------

func TestExponentialBackoff_DefaultsAndClamping(t *testing.T) {
	b := ExponentialBackoff(0, 0, 0)
	assert.Equal(t, 100*time.Millisecond, b(1))
	assert.Equal(t, 150*time.Millisecond, b(2))
	assert.LessOrEqual(t, b(10), 2*time.Second)

	b = ExponentialBackoff(200*time.Millisecond, 2.0, 1*time.Second)
	wants := []time.Duration{200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond, 1 * time.Second}
	for i, w := range wants {
		assert.Equal(t, w, b(i+1), "attempt %d", i+1)
	}

	b = ExponentialBackoff(time.Second, 1.05, time.Minute)
	assert.Equal(t, 1050*time.Millisecond, b(2), "small factors are kept")
	assert.Equal(t, 1500*time.Millisecond, ExponentialBackoff(time.Second, 1, time.Minute)(2))
}

func TestNoAndConstantBackoff(t *testing.T) {
	assert.Zero(t, NoBackoff()(3))
	assert.Equal(t, time.Second, ConstantBackoff(time.Second)(7))
	assert.Zero(t, ConstantBackoff(-time.Second)(1))
}

// ---------- ttlCache ----------

func TestTTLCache_GetSet_ExpireAndEvict(t *testing.T) {
	c := newTTLCache[int](time.Minute, 2)
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return base }

	c.Set("a", 1)
	c.Set("b", 2)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// "a" was just touched, so "b" is the LRU victim.
	c.Set("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	assert.Equal(t, 2, c.Len())

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, ok = c.Get("a")
	assert.False(t, ok, "a should be expired")
}

func TestTTLCache_SetForAndResize(t *testing.T) {
	c := newTTLCache[string](time.Minute, 3)
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return base }

	c.SetFor("short", "x", time.Second)
	c.SetFor("long", "y", time.Hour)
	c.now = func() time.Time { return base.Add(time.Minute) }
	_, ok := c.Get("short")
	assert.False(t, ok)
	got, ok := c.Get("long")
	require.True(t, ok)
	assert.Equal(t, "y", got)

	c.SetFor("long", "z", 0)
	_, ok = c.Get("long")
	assert.False(t, ok, "zero ttl drops the entry")

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")
	c.Resize(1)
	assert.Equal(t, 1, c.Len())
	_, ok = c.Get("c")
	assert.True(t, ok, "most recent entry survives a shrink")
}

func TestExpiryFromHeaders(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	h := http.Header{}
	h.Set("Cache-Control", "public, max-age=120")
	assert.Equal(t, 120*time.Second, expiryFromHeaders(h, time.Hour, now))

	h = http.Header{}
	h.Set("Cache-Control", "no-store")
	assert.Zero(t, expiryFromHeaders(h, time.Hour, now))

	h = http.Header{}
	h.Set("Expires", now.Add(90*time.Second).Format(http.TimeFormat))
	assert.Equal(t, 90*time.Second, expiryFromHeaders(h, time.Hour, now))

	assert.Equal(t, time.Hour, expiryFromHeaders(http.Header{}, time.Hour, now))
}

// ---------- helpers ----------

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{" 120 ", 2 * time.Minute},
		{"-5", 0},
		{"soon", 0},
		{"86400", maxRetryAfter},
		{now.Add(45 * time.Second).Format(http.TimeFormat), 45 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
	}
	for _, c := range cases {
		h := make(http.Header)
		if c.in != "" {
			h.Set("Retry-After", c.in)
		}
		assert.Equal(t, c.want, retryAfter(h, now), "Retry-After %q", c.in)
	}
}

func TestCopyHeaders(t *testing.T) {
	src := make(http.Header)
	src.Add("K", "a")
	src.Add("K", "b")
	dst := make(http.Header)
	copyHeaders(dst, src)
	assert.Equal(t, []string{"a", "b"}, dst.Values("K"))
}

func TestJoinURL(t *testing.T) {
	u, err := joinURL("https://rdap.example.com/v1/", "domain", "example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://rdap.example.com/v1/domain/example.com", u)

	_, err = joinURL("rdap.example.com", "domain", "x")
	assert.Error(t, err)
	_, err = joinURL("://bad", "domain", "x")
	assert.Error(t, err)
}

func TestToStringSlice(t *testing.T) {
	assert.Equal(t, []string{"COM", "net"}, toStringSlice([]any{"COM", 1, "net", struct{}{}}))
	assert.Nil(t, toStringSlice("nope"))
}

func TestQueryName(t *testing.T) {
	assert.Equal(t, "example.com", queryName("  Example.COM. "))
	assert.Equal(t, "xn--bcher-kva.example", queryName("bücher.example"))
}

// ---------- StatusError ----------

func TestStatusError_IsAndKind(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", statusErr(BadServer, "example.com", "https://s", cause))

	assert.ErrorIs(t, err, ErrBadServer)
	assert.NotErrorIs(t, err, ErrNetworkRequestGlitch)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, BadServer, KindOf(err))
	assert.Equal(t, StatusKind(0), KindOf(cause))
	assert.Contains(t, err.Error(), "example.com: bad server (https://s): boom")

	assert.False(t, DomainNotFound.Retryable())
	for _, k := range []StatusKind{NoServersFound, UnableToRetrieveListOfServers, NetworkRequestGlitch, BadServer, CouldntParseData, RdapProblem} {
		assert.True(t, k.Retryable(), k.String())
	}
}

// ---------- Registry ----------

const testBootstrap = `{
  "publication": "2026-01-01T00:00:00Z",
  "services": [
    [["COM","net"], ["https://rdap.example/v1/"]],
    [["co.uk"], ["https://second.example/rdap", "https://third.example/rdap"]],
    [["uk"], ["https://uk.example/"]],
    [["empty"], []]
  ]
}`

func mustRegistry(t *testing.T, doc string) *Registry {
	t.Helper()
	reg, err := ParseRegistry(strings.NewReader(doc))
	require.NoError(t, err)
	return reg
}

func TestRegistry_FindServers(t *testing.T) {
	reg := mustRegistry(t, testBootstrap)
	assert.Equal(t, 5, reg.Len())
	assert.Equal(t, 2026, reg.Publication.Year())

	s, ok := reg.FindServers("Example.COM")
	require.True(t, ok)
	assert.Equal(t, []string{"https://rdap.example/v1"}, s)

	s, ok = reg.FindServers("shop.example.co.uk")
	require.True(t, ok)
	assert.Equal(t, "https://second.example/rdap", s[0], "longest suffix wins")

	s, ok = reg.FindServers("example.uk.")
	require.True(t, ok)
	assert.Equal(t, []string{"https://uk.example"}, s)

	s, ok = reg.FindServers("foo.empty")
	assert.True(t, ok, "suffix present")
	assert.Empty(t, s)

	_, ok = reg.FindServers("nosuchtld.zzz")
	assert.False(t, ok)

	var nilReg *Registry
	_, ok = nilReg.FindServers("example.com")
	assert.False(t, ok)
}

func TestParseRegistry_Invalid(t *testing.T) {
	_, err := ParseRegistry(strings.NewReader("not json"))
	assert.ErrorIs(t, err, ErrBootstrapUnavailable)
}

func TestEmbeddedRegistry(t *testing.T) {
	reg, err := EmbeddedRegistry()
	require.NoError(t, err)
	s, ok := reg.FindServers("example.com")
	require.True(t, ok)
	require.NotEmpty(t, s)
	assert.True(t, strings.HasPrefix(s[0], "https://"))
}

func TestLoadRegistry_FetchAndCache(t *testing.T) {
	var hits atomic.Int32
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Cache-Control", "max-age=300")
		_, _ = io.WriteString(w, testBootstrap)
	}))
	defer s.Close()

	c := New(WithBootstrapURL(s.URL), WithUserAgent("test-agent"))
	reg, err := c.LoadRegistry(context.Background())
	require.NoError(t, err)
	_, ok := reg.FindServers("example.net")
	assert.True(t, ok)

	_, err = c.LoadRegistry(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load(), "second load served from memory")

	require.NoError(t, c.RefreshBootstrap(context.Background()))
	assert.EqualValues(t, 2, hits.Load())
}

func TestLoadRegistry_Failures(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer s.Close()

	_, err := New(WithBootstrapURL(s.URL)).LoadRegistry(context.Background())
	assert.ErrorIs(t, err, ErrBootstrapUnavailable)

	s.Close()
	_, err = New(WithBootstrapURL(s.URL)).LoadRegistry(context.Background())
	assert.ErrorIs(t, err, ErrBootstrapUnavailable)
}

// ---------- ParseDomain ----------

func TestParseDomain(t *testing.T) {
	d, err := ParseDomain([]byte(`{"objectClassName":"domain","ldhName":"example.com"}`))
	require.NoError(t, err)
	assert.True(t, d.Validate())
	_, ok := d.FirstEvent("expiration")
	assert.False(t, ok)

	_, err = ParseDomain([]byte(`<html>`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errProtocol)

	_, err = ParseDomain(nil)
	assert.NotErrorIs(t, err, errProtocol)

	for _, body := range []string{
		`{"objectClassName":"entity"}`,
		`{"ldhName":"example.com"}`,
		`{"objectClassName":"domain","events":"soon"}`,
		`{"objectClassName":"domain","events":[{"eventDate":"2030-01-01T00:00:00Z"}]}`,
	} {
		_, err := ParseDomain([]byte(body))
		assert.ErrorIs(t, err, errProtocol, body)
	}
}

func TestRecordFromDomain(t *testing.T) {
	d := &Domain{LDHName: "example.com"}
	d.Events = []Event{
		{EventAction: "registration", EventDate: "1995-08-14T04:00:00Z"},
		{EventAction: "Expiration", EventDate: "2030-08-13T04:00:00Z"},
	}
	rec, err := recordFromDomain(d, "https://s")
	require.NoError(t, err)
	assert.True(t, rec.Registered)
	require.NotNil(t, rec.Expiration)
	assert.Equal(t, time.Date(2030, 8, 13, 4, 0, 0, 0, time.UTC), *rec.Expiration)

	rec, err = recordFromDomain(&Domain{}, "https://s")
	require.NoError(t, err)
	assert.Nil(t, rec.Expiration)

	d.Events[1].EventDate = "next year"
	_, err = recordFromDomain(d, "https://s")
	assert.ErrorIs(t, err, errProtocol)
}

// ---------- Resolve ----------

const domainBody = `{
  "objectClassName": "domain",
  "ldhName": "EXAMPLE.COM",
  "events": [
    {"eventAction": "registration", "eventDate": "1995-08-14T04:00:00Z"},
    {"eventAction": "expiration", "eventDate": "2030-08-13T04:00:00Z"}
  ]
}`

// rdapFixture serves a bootstrap registry pointing at two RDAP handlers.
type rdapFixture struct {
	primary, secondary *httptest.Server
	primaryHits        atomic.Int32
	secondaryHits      atomic.Int32
}

func newRDAPFixture(t *testing.T, primary, secondary http.HandlerFunc) (*rdapFixture, *Registry) {
	t.Helper()
	f := &rdapFixture{}
	f.primary = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.primaryHits.Add(1)
		primary(w, r)
	}))
	t.Cleanup(f.primary.Close)
	f.secondary = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.secondaryHits.Add(1)
		secondary(w, r)
	}))
	t.Cleanup(f.secondary.Close)

	doc := fmt.Sprintf(`{"services":[[["com"],["%s/v1/","%s/v1/"]],[["empty"],[]]]}`, f.primary.URL, f.secondary.URL)
	return f, mustRegistry(t, doc)
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/rdap+json")
	_, _ = io.WriteString(w, domainBody)
}

func TestResolve_Success(t *testing.T) {
	f, reg := newRDAPFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/domain/example.com", r.URL.Path)
		assert.Contains(t, r.Header.Get("Accept"), "application/rdap+json")
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		okHandler(w, r)
	}, okHandler)

	c := New(WithRegistry(reg), WithHeader("X-Test", "yes"))
	rec, err := c.Resolve(context.Background(), "Example.com")
	require.NoError(t, err)
	assert.True(t, rec.Registered)
	assert.Equal(t, SourceRDAP, rec.Source)
	assert.Equal(t, "EXAMPLE.COM", rec.Domain)
	require.NotNil(t, rec.Expiration)
	assert.Equal(t, 2030, rec.Expiration.Year())
	assert.EqualValues(t, 1, f.primaryHits.Load())
	assert.Zero(t, f.secondaryHits.Load())
}

func TestResolve_Classification(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    StatusKind
	}{
		{"404 is not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"errorCode":404,"title":"Not Found"}`)
		}, DomainNotFound},
		{"500 is bad server", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, BadServer},
		{"403 is bad server", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}, BadServer},
		{"html body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "<html>maintenance</html>")
		}, CouldntParseData},
		{"wrong object class", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"objectClassName":"nameserver"}`)
		}, RdapProblem},
		{"malformed event list", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"objectClassName":"domain","events":[{"eventAction":"expiration","eventDate":"soon"}]}`)
		}, RdapProblem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, reg := newRDAPFixture(t, tt.handler, okHandler)
			_, err := New(WithRegistry(reg)).Resolve(context.Background(), "example.com")
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err), err.Error())
			assert.EqualValues(t, 1, f.primaryHits.Load(), "exactly one request")
			assert.Zero(t, f.secondaryHits.Load(), "only servers[0] is tried")
		})
	}
}

func TestResolve_RetryAfterRecorded(t *testing.T) {
	_, reg := newRDAPFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}, okHandler)

	_, err := New(WithRegistry(reg)).Resolve(context.Background(), "example.com")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, BadServer, se.Kind)
	assert.Equal(t, 2*time.Second, se.RetryAfter)
}

func TestResolve_RetryAfterDateUsesClientClock(t *testing.T) {
	clock := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	_, reg := newRDAPFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", clock.Add(90*time.Second).Format(http.TimeFormat))
		w.WriteHeader(http.StatusServiceUnavailable)
	}, okHandler)

	c := New(WithRegistry(reg), WithClock(func() time.Time { return clock }))
	_, err := c.Resolve(context.Background(), "example.com")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, BadServer, se.Kind)
	assert.Equal(t, 90*time.Second, se.RetryAfter)
}

func TestResolve_TransportFailures(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		f, reg := newRDAPFixture(t, okHandler, okHandler)
		f.primary.Close()
		_, err := New(WithRegistry(reg)).Resolve(context.Background(), "example.com")
		assert.ErrorIs(t, err, ErrNetworkRequestGlitch)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		_, reg := newRDAPFixture(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}, okHandler)
		defer close(release)

		_, err := New(WithRegistry(reg), WithTimeout(50*time.Millisecond)).Resolve(context.Background(), "example.com")
		assert.ErrorIs(t, err, ErrNetworkRequestGlitch)
		assert.True(t, isTimeout(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		_, reg := newRDAPFixture(t, okHandler, okHandler)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(WithRegistry(reg)).Resolve(ctx, "example.com")
		assert.ErrorIs(t, err, ErrNetworkRequestGlitch)
	})
}

func TestResolve_DelegationData(t *testing.T) {
	_, reg := newRDAPFixture(t, okHandler, okHandler)
	c := New(WithRegistry(reg))

	_, err := c.Resolve(context.Background(), "nosuchtld.zzz")
	assert.Equal(t, UnableToRetrieveListOfServers, KindOf(err))

	_, err = c.Resolve(context.Background(), "foo.empty")
	assert.Equal(t, NoServersFound, KindOf(err))
}

func TestResolve_BootstrapUnavailable(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer s.Close()

	_, err := New(WithBootstrapURL(s.URL)).Resolve(context.Background(), "example.com")
	assert.Equal(t, UnableToRetrieveListOfServers, KindOf(err))
	assert.ErrorIs(t, err, ErrBootstrapUnavailable)
}

func TestResolve_BadCandidateURL(t *testing.T) {
	reg := mustRegistry(t, `{"services":[[["com"],["rdap.example/no-scheme"]]]}`)
	_, err := New(WithRegistry(reg)).Resolve(context.Background(), "example.com")
	assert.Equal(t, BadServer, KindOf(err))
}

func TestResolve_ServerFallback(t *testing.T) {
	f, reg := newRDAPFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, okHandler)

	rec, err := New(WithRegistry(reg), WithServerFallback(true)).Resolve(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, f.secondary.URL+"/v1", rec.Server)
	assert.EqualValues(t, 1, f.primaryHits.Load())
	assert.EqualValues(t, 1, f.secondaryHits.Load())
}

func TestResolve_ServerFallbackStopsOnNotFound(t *testing.T) {
	f, reg := newRDAPFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, okHandler)

	_, err := New(WithRegistry(reg), WithServerFallback(true)).Resolve(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrDomainNotFound)
	assert.Zero(t, f.secondaryHits.Load())
}
