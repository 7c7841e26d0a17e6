// Package policy decides which LLM-proposed sources a student may be shown:
// only direct PDF links on academic or open-repository hosts.
package policy

import (
	"net/url"
	"strings"

	"github.com/helixir/research-assistant-service/internal/domain"
)

// DefaultAllowedHosts is the host allow-list used when none is configured.
// An entry starting with "." matches as a suffix; any other entry matches the
// host itself and its subdomains.
var DefaultAllowedHosts = []string{
	".edu",
	"arxiv.org",
	"osf.io",
	"zenodo.org",
	"core.ac.uk",
	"semanticscholar.org",
	"escholarship.org",
	"dash.harvard.edu",
	"stacks.stanford.edu",
	"yalebooks.yale.edu",
}

// Filter applies the host and PDF rules. The zero value is not usable; build
// one with New.
type Filter struct {
	allowed []string
}

// New creates a Filter. An empty list selects DefaultAllowedHosts.
func New(allowedHosts []string) *Filter {
	if len(allowedHosts) == 0 {
		allowedHosts = DefaultAllowedHosts
	}
	allowed := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			allowed = append(allowed, h)
		}
	}
	return &Filter{allowed: allowed}
}

// Host returns the lowercase hostname of rawURL without a leading "www.",
// or "" when rawURL does not parse as an absolute URL.
func Host(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// IsPDF reports whether rawURL looks like a direct PDF link.
func IsPDF(rawURL string) bool {
	u := strings.ToLower(rawURL)
	return strings.HasSuffix(u, ".pdf") || strings.Contains(u, ".pdf?") || strings.Contains(u, "/pdf")
}

// HostAllowed reports whether host matches the allow-list.
func (f *Filter) HostAllowed(host string) bool {
	host = strings.ToLower(host)
	if host == "" {
		return false
	}
	for _, entry := range f.allowed {
		if strings.HasPrefix(entry, ".") {
			if strings.HasSuffix(host, entry) {
				return true
			}
			continue
		}
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}

// AllowSource reports whether rawURL is a direct PDF on an allowed host.
func (f *Filter) AllowSource(rawURL string) bool {
	if !IsPDF(rawURL) {
		return false
	}
	return f.HostAllowed(Host(rawURL))
}

// FilterThemes returns a filtered copy of themes and the number of sources
// dropped. Within each theme sources are deduplicated by URL, a missing host
// is filled from the URL, and sources failing AllowSource are removed.
// Themes left with no sources are dropped. Order is preserved.
func (f *Filter) FilterThemes(themes []domain.ThemeGroup) ([]domain.ThemeGroup, int) {
	out := make([]domain.ThemeGroup, 0, len(themes))
	rejected := 0

	for _, t := range themes {
		seen := make(map[string]struct{}, len(t.Sources))
		kept := make([]domain.ThemeSource, 0, len(t.Sources))

		for _, s := range t.Sources {
			key := strings.TrimSpace(s.URL)
			if key == "" {
				rejected++
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			if !f.AllowSource(key) {
				rejected++
				continue
			}
			s.URL = key
			if s.Host == "" {
				s.Host = Host(key)
			}
			kept = append(kept, s)
		}

		if len(kept) == 0 {
			continue
		}
		t.Sources = kept
		out = append(out, t)
	}

	return out, rejected
}
