// Package origin decides whether a request's declared Origin is
// allowed by the configured cross-origin access policy.
package origin

import "strings"

// wildcardPrefix marks an allow-list entry that matches any subdomain
// of the bare domain that follows it.
const wildcardPrefix = "*."

// Policy is an immutable origin allow-list supporting exact origins
// and "*.domain" subdomain wildcards. Built once at process start and
// shared read-only across requests.
type Policy struct {
	exact     map[string]struct{}
	wildcards []string
}

// NewPolicy builds a Policy from allow-list entries. Exact entries are
// matched verbatim; entries starting with "*." match the bare domain
// itself or any subdomain of it.
func NewPolicy(allowList []string) *Policy {
	p := &Policy{exact: make(map[string]struct{}, len(allowList))}
	for _, entry := range allowList {
		if domain, ok := strings.CutPrefix(entry, wildcardPrefix); ok {
			if domain != "" {
				p.wildcards = append(p.wildcards, domain)
			}
			continue
		}
		p.exact[entry] = struct{}{}
	}
	return p
}

// Allowed reports whether origin is permitted. Empty origins are never
// allowed. Exact matches take priority; wildcard entries match only on
// a dot boundary, so "*.example.com" accepts "https://api.example.com"
// but not "https://evilexample.com".
func (p *Policy) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := p.exact[origin]; ok {
		return true
	}
	for _, domain := range p.wildcards {
		if origin == domain || strings.HasSuffix(origin, "."+domain) {
			return true
		}
	}
	return false
}

// Entries returns the number of configured allow-list entries.
func (p *Policy) Entries() int {
	return len(p.exact) + len(p.wildcards)
}
