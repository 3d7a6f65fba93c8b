package rdapclient

import (
	"container/list"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type ttlItem[T any] struct {
	key     string
	val     T
	expires time.Time
}

// ttlCache is a small LRU with per-entry expiry. It only ever lives in
// process memory.
type ttlCache[T any] struct {
	mu  sync.Mutex
	ll  *list.List
	tab map[string]*list.Element
	cap int
	ttl time.Duration
	now func() time.Time
}

func newTTLCache[T any](ttl time.Duration, capacity int) *ttlCache[T] {
	return &ttlCache[T]{ll: list.New(), tab: make(map[string]*list.Element), cap: capacity, ttl: ttl, now: time.Now}
}

func (c *ttlCache[T]) Resize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cap = n
	c.evict()
}

func (c *ttlCache[T]) Get(k string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if el, ok := c.tab[k]; ok {
		it := el.Value.(ttlItem[T])
		if c.now().Before(it.expires) {
			c.ll.MoveToFront(el)
			return it.val, true
		}
		delete(c.tab, k)
		c.ll.Remove(el)
	}
	return zero, false
}

func (c *ttlCache[T]) Set(k string, v T) { c.SetFor(k, v, c.ttl) }

// SetFor stores v with its own lifetime. A non-positive ttl stores nothing.
func (c *ttlCache[T]) SetFor(k string, v T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ttl <= 0 {
		if el, ok := c.tab[k]; ok {
			delete(c.tab, k)
			c.ll.Remove(el)
		}
		return
	}
	it := ttlItem[T]{key: k, val: v, expires: c.now().Add(ttl)}
	if el, ok := c.tab[k]; ok {
		el.Value = it
		c.ll.MoveToFront(el)
		return
	}
	c.tab[k] = c.ll.PushFront(it)
	c.evict()
}

func (c *ttlCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *ttlCache[T]) evict() {
	for c.ll.Len() > c.cap {
		b := c.ll.Back()
		delete(c.tab, b.Value.(ttlItem[T]).key)
		c.ll.Remove(b)
	}
}

// expiryFromHeaders derives a freshness lifetime from Cache-Control and
// Expires, falling back to defTTL.
func expiryFromHeaders(h http.Header, defTTL time.Duration, now time.Time) time.Duration {
	if cc := h.Get("Cache-Control"); cc != "" {
		lcc := lower(cc)
		if strings.Contains(lcc, "no-store") || strings.Contains(lcc, "no-cache") {
			return 0
		}
		for _, p := range strings.Split(lcc, ",") {
			p = strings.TrimSpace(p)
			if v, ok := strings.CutPrefix(p, "max-age="); ok {
				if n, err := strconv.Atoi(v); err == nil && n >= 0 {
					return time.Duration(n) * time.Second
				}
			}
		}
	}
	if exp := h.Get("Expires"); exp != "" {
		if t, err := time.Parse(http.TimeFormat, exp); err == nil {
			if d := t.Sub(now); d > 0 {
				return d
			}
		}
	}
	return defTTL
}
