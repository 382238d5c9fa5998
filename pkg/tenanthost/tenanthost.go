// Package tenanthost classifies inbound HTTP hosts against the platform root
// domain. It is the single source of truth for extracting a tenant slug from
// a host header; nothing else in the codebase parses hosts.
package tenanthost

import (
	"regexp"
	"strings"
)

type Kind int

const (
	// KindUnknown covers loopback, foreign and malformed hosts.
	KindUnknown Kind = iota
	// KindMarketing is the apex domain or www: the public site, no tenant.
	KindMarketing
	// KindApp is the shared application host (app.<root>).
	KindApp
	// KindTenant is a tenant subdomain; Slug carries the tenant slug.
	KindTenant
)

func (k Kind) String() string {
	switch k {
	case KindMarketing:
		return "marketing"
	case KindApp:
		return "app"
	case KindTenant:
		return "tenant"
	default:
		return "unknown"
	}
}

type Classification struct {
	Kind Kind
	Slug string
}

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidSlug reports whether s is acceptable as a tenant subdomain slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Classify resolves a raw host header against rootDomain. It never errors:
// anything that does not look like a host under rootDomain comes back as
// KindUnknown.
func Classify(host, rootDomain string) Classification {
	host = normalize(host)
	rootDomain = normalize(rootDomain)
	if host == "" || rootDomain == "" {
		return Classification{Kind: KindUnknown}
	}
	// Loopback never carries a tenant.
	if host == "localhost" || strings.HasPrefix(host, "127.") {
		return Classification{Kind: KindUnknown}
	}
	if host == rootDomain || host == "www."+rootDomain {
		return Classification{Kind: KindMarketing}
	}
	if !strings.HasSuffix(host, "."+rootDomain) {
		return Classification{Kind: KindUnknown}
	}
	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return Classification{Kind: KindUnknown}
	}
	slug := labels[0]
	if !ValidSlug(slug) {
		return Classification{Kind: KindUnknown}
	}
	if slug == "app" {
		return Classification{Kind: KindApp}
	}
	return Classification{Kind: KindTenant, Slug: slug}
}

// ResolveSlug returns the tenant slug for host, or "" when the host does not
// address a tenant subdomain.
func ResolveSlug(host, rootDomain string) string {
	c := Classify(host, rootDomain)
	if c.Kind != KindTenant {
		return ""
	}
	return c.Slug
}

func normalize(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	// Strip a port suffix if present. net.SplitHostPort rejects bare hosts,
	// so split manually.
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}
