package tenanthost

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const root = "sanifleet.io"

func TestResolveSlug_EmptyAndLoopbackHosts(t *testing.T) {
	for _, host := range []string{"", "   ", "localhost", "localhost:3200", "127.0.0.1", "127.0.0.1:8080"} {
		require.Empty(t, ResolveSlug(host, root), "host %q", host)
	}
}

func TestResolveSlug_RootAndWwwAreMarketing(t *testing.T) {
	require.Empty(t, ResolveSlug("sanifleet.io", root))
	require.Empty(t, ResolveSlug("www.sanifleet.io", root))

	require.Equal(t, KindMarketing, Classify("sanifleet.io", root).Kind)
	require.Equal(t, KindMarketing, Classify("www.sanifleet.io", root).Kind)
}

func TestResolveSlug_TenantSubdomain(t *testing.T) {
	require.Equal(t, "acme", ResolveSlug("acme.sanifleet.io", root))

	c := Classify("acme.sanifleet.io", root)
	require.Equal(t, KindTenant, c.Kind)
	require.Equal(t, "acme", c.Slug)
}

func TestResolveSlug_MixedCaseIsLowered(t *testing.T) {
	require.Equal(t, "acme", ResolveSlug("ACME.Sanifleet.IO", root))
}

func TestResolveSlug_PortIsStripped(t *testing.T) {
	require.Equal(t, "sub", ResolveSlug("sub.sanifleet.io:8080", root))
}

func TestResolveSlug_InvalidSlugCharacters(t *testing.T) {
	require.Empty(t, ResolveSlug("ac_me.sanifleet.io", root))
}

func TestResolveSlug_ForeignHost(t *testing.T) {
	require.Empty(t, ResolveSlug("acme.other.io", root))
	require.Empty(t, ResolveSlug("evil-sanifleet.io", root))
	require.Equal(t, KindUnknown, Classify("acme.other.io", root).Kind)
}

func TestClassify_AppHost(t *testing.T) {
	c := Classify("app.sanifleet.io", root)
	require.Equal(t, KindApp, c.Kind)
	require.Empty(t, c.Slug)
	require.Empty(t, ResolveSlug("app.sanifleet.io", root))
}

func TestResolveSlug_Idempotent(t *testing.T) {
	first := ResolveSlug("acme.sanifleet.io", root)
	second := ResolveSlug("acme.sanifleet.io", root)
	require.Equal(t, first, second)
	require.Equal(t, "acme", first)
}

func TestValidSlug(t *testing.T) {
	require.True(t, ValidSlug("acme"))
	require.True(t, ValidSlug("acme-2"))
	require.False(t, ValidSlug("Acme"))
	require.False(t, ValidSlug("ac_me"))
	require.False(t, ValidSlug(""))
}
