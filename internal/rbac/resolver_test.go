package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern string
		code    string
		want    bool
	}{
		{"*", "anything.at.all", true},
		{"order.*", "order.read.any", true},
		{"order.*", "order.create", true},
		{"order.*", "payment.read", false},
		{"order.*", "order", false},
		{"order.*", "orders.read", false},
		{"order.read.any", "order.read.any", true},
		{"order.read.any", "order.read.own", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, MatchPattern(tc.pattern, tc.code),
			"pattern %q against %q", tc.pattern, tc.code)
	}
}

func TestResolveRolePermissions(t *testing.T) {
	owner := ResolveRolePermissions(RoleOwner)
	require.ElementsMatch(t, AllPermissions, owner)

	guest := ResolveRolePermissions(RoleGuest)
	require.ElementsMatch(t, []string{PermProductRead, PermCategoryRead, PermReviewRead}, guest)

	require.Nil(t, ResolveRolePermissions("no-such-role"))
}

func TestResolveRolePermissionsExpandsWildcards(t *testing.T) {
	admin := ResolveRolePermissions(RoleAdmin)
	set := make(map[string]struct{}, len(admin))
	for _, p := range admin {
		set[p] = struct{}{}
	}
	require.Contains(t, set, PermCategoryCreate)
	require.Contains(t, set, PermOrderManage)
	require.Contains(t, set, PermSessionRevokeAny)
	// Admin holds audit.read by exact grant but no platform-wide wildcard.
	require.Contains(t, set, PermAuditRead)
	require.Less(t, len(admin), len(AllPermissions))
}

func TestAuthorizeRequiresEveryPermission(t *testing.T) {
	granted := map[string]struct{}{
		PermCategoryRead:   {},
		PermCategoryCreate: {},
	}
	require.True(t, Authorize(nil, granted))
	require.True(t, Authorize([]string{PermCategoryRead}, granted))
	require.True(t, Authorize([]string{PermCategoryRead, PermCategoryCreate}, granted))
	require.False(t, Authorize([]string{PermCategoryRead, PermCategoryDelete}, granted))
	require.False(t, Authorize([]string{PermCategoryRead}, nil))
}

func TestResolver(t *testing.T) {
	r := NewResolver()

	require.True(t, r.HasAll(RoleOwner, []string{PermPaymentRefundFull, PermRbacRoleDelete}))
	require.True(t, r.HasAll(RoleStaff, []string{PermProductCreate, PermInventoryAdjust}))
	require.False(t, r.HasAll(RoleStaff, []string{PermPaymentRefundFull}))
	require.False(t, r.HasAll(RoleCustomer, []string{PermCategoryCreate}))
	require.True(t, r.HasAll(RoleCustomer, []string{PermSessionReadOwn}))
	require.False(t, r.HasAll("unknown", []string{PermProductRead}))
	require.True(t, r.HasAll("unknown", nil))
}
