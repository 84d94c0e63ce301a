package visibility

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"

	"daylog/internal/domain"
)

func TestCanView(t *testing.T) {
	const owner, other int64 = 7, 8

	tests := []struct {
		name    string
		viewer  domain.Viewer
		privacy domain.Privacy
		want    bool
	}{
		{name: "anonymous sees public", viewer: domain.Anonymous(), privacy: domain.PrivacyPublic, want: true},
		{name: "anonymous misses private", viewer: domain.Anonymous(), privacy: domain.PrivacyPrivate, want: false},
		{name: "owner sees public", viewer: domain.AuthenticatedViewer(owner), privacy: domain.PrivacyPublic, want: true},
		{name: "owner sees private", viewer: domain.AuthenticatedViewer(owner), privacy: domain.PrivacyPrivate, want: true},
		{name: "other sees public", viewer: domain.AuthenticatedViewer(other), privacy: domain.PrivacyPublic, want: true},
		{name: "other misses private", viewer: domain.AuthenticatedViewer(other), privacy: domain.PrivacyPrivate, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			activity := domain.Activity{OwnerID: owner, Privacy: tt.privacy}
			require.Equal(t, tt.want, CanView(tt.viewer, activity))
		})
	}
}

func TestCanEdit(t *testing.T) {
	const owner int64 = 7

	for _, privacy := range []domain.Privacy{domain.PrivacyPublic, domain.PrivacyPrivate} {
		activity := domain.Activity{OwnerID: owner, Privacy: privacy}

		require.True(t, CanEdit(domain.AuthenticatedViewer(owner), activity), privacy)
		require.False(t, CanEdit(domain.AuthenticatedViewer(owner+1), activity), privacy)
		require.False(t, CanEdit(domain.Anonymous(), activity), privacy)
	}
}

func TestAnonymousNeverMatchesZeroOwner(t *testing.T) {
	activity := domain.Activity{OwnerID: 0, Privacy: domain.PrivacyPrivate}

	require.False(t, CanView(domain.Anonymous(), activity))
	require.False(t, CanEdit(domain.Anonymous(), activity))
}

func TestEditImpliesView(t *testing.T) {
	property := func(viewerID, ownerID int64, private bool) bool {
		privacy := domain.PrivacyPublic
		if private {
			privacy = domain.PrivacyPrivate
		}
		viewer := domain.AuthenticatedViewer(viewerID)
		activity := domain.Activity{OwnerID: ownerID, Privacy: privacy}

		if CanEdit(viewer, activity) && !CanView(viewer, activity) {
			return false
		}
		// a private activity is visible exactly when it is editable
		if private && CanView(viewer, activity) != CanEdit(viewer, activity) {
			return false
		}
		return true
	}
	require.NoError(t, quick.Check(property, nil))
}
