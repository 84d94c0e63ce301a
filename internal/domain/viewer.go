package domain

// Viewer identifies who is asking. It is built once per request by the
// session gate and passed explicitly into every service call.
type Viewer struct {
	UserID int64
}

// Anonymous returns the viewer used for requests without a valid session.
func Anonymous() Viewer {
	return Viewer{}
}

// AuthenticatedViewer returns a viewer bound to the given user id.
func AuthenticatedViewer(userID int64) Viewer {
	return Viewer{UserID: userID}
}

func (v Viewer) Authenticated() bool {
	return v.UserID > 0
}

// Is reports whether the viewer is authenticated as userID.
func (v Viewer) Is(userID int64) bool {
	return v.Authenticated() && v.UserID == userID
}
