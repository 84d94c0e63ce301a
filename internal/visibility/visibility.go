// Package visibility decides who may read and edit an activity.
//
// Both checks are pure functions of the viewer and the activity; every read
// and write path in the service layer routes through them.
package visibility

import "daylog/internal/domain"

// CanView reports whether viewer may see activity. Public activities are
// visible to everyone, private ones only to their owner.
func CanView(viewer domain.Viewer, activity domain.Activity) bool {
	if activity.Privacy == domain.PrivacyPublic {
		return true
	}
	return viewer.Is(activity.OwnerID)
}

// CanEdit reports whether viewer owns activity. Privacy has no bearing on edit rights.
func CanEdit(viewer domain.Viewer, activity domain.Activity) bool {
	return viewer.Is(activity.OwnerID)
}
