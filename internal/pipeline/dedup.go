package pipeline

import (
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// DedupMiddleware drops articles whose link was already seen in this
// run. News listings shift while they are paged, so the same story can
// show up at the bottom of page 1 and the top of page 2.
type DedupMiddleware struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDedupMiddleware creates an empty DedupMiddleware.
func NewDedupMiddleware() *DedupMiddleware {
	return &DedupMiddleware{seen: make(map[string]struct{})}
}

func (m *DedupMiddleware) Name() string { return "dedup" }

func (m *DedupMiddleware) Process(a *types.Article) (*types.Article, error) {
	key := CanonicalizeURL(a.URL)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[key]; ok {
		return nil, nil
	}
	m.seen[key] = struct{}{}
	return a, nil
}

// Count returns the number of distinct links seen.
func (m *DedupMiddleware) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}

// CanonicalizeURL normalizes an article link for comparison: lowercase
// scheme and host, no fragment, no default port, sorted query and no
// trailing slash.
func CanonicalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if port := u.Port(); (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = u.Hostname()
	}

	if u.RawQuery != "" {
		params := u.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sorted []string
		for _, k := range keys {
			vals := params[k]
			sort.Strings(vals)
			for _, v := range vals {
				sorted = append(sorted, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		u.RawQuery = strings.Join(sorted, "&")
	}

	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
