package domain

import "strings"

// CreateActivityInput is the raw create-activity payload as received from a client.
type CreateActivityInput struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=5000"`
	Mood         string   `json:"mood"`
	Category     string   `json:"category"`
	Privacy      string   `json:"privacy"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	LocationText string   `json:"location_text" validate:"max=200"`
}

// ActivityFields holds validated, typed activity content.
type ActivityFields struct {
	Title        string
	Description  string
	Mood         Mood
	Category     Category
	Privacy      Privacy
	Location     *GeoPoint
	LocationText string
}

// Validate trims the text fields and converts the payload into ActivityFields.
// Every failure is reported in a single *ValidationError.
func (in CreateActivityInput) Validate() (ActivityFields, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.LocationText = strings.TrimSpace(in.LocationText)

	verr := &ValidationError{}
	checkStruct(in, verr)

	fields := ActivityFields{
		Title:        in.Title,
		Description:  in.Description,
		LocationText: in.LocationText,
	}
	fields.Mood = parseEnum(verr, "mood", in.Mood, ParseMood)
	fields.Category = parseEnum(verr, "category", in.Category, ParseCategory)
	fields.Privacy = parseEnum(verr, "privacy", in.Privacy, ParsePrivacy)
	fields.Location = checkLocation(in.Latitude, in.Longitude, verr)

	if err := verr.Err(); err != nil {
		return ActivityFields{}, err
	}
	return fields, nil
}

// UpdateActivityInput is a partial edit. Nil fields are left unchanged.
// ClearLocation removes a stored location and cannot be combined with coordinates.
type UpdateActivityInput struct {
	Title         *string  `json:"title" validate:"omitempty,max=200"`
	Description   *string  `json:"description" validate:"omitempty,max=5000"`
	Mood          *string  `json:"mood"`
	Category      *string  `json:"category"`
	Privacy       *string  `json:"privacy"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	ClearLocation bool     `json:"clear_location"`
	LocationText  *string  `json:"location_text" validate:"omitempty,max=200"`
}

// ActivityPatch is the validated form of UpdateActivityInput.
type ActivityPatch struct {
	Title         *string
	Description   *string
	Mood          *Mood
	Category      *Category
	Privacy       *Privacy
	Location      *GeoPoint
	ClearLocation bool
	LocationText  *string
}

func (in UpdateActivityInput) Validate() (ActivityPatch, error) {
	in.Title = trimmed(in.Title)
	in.Description = trimmed(in.Description)
	in.LocationText = trimmed(in.LocationText)

	verr := &ValidationError{}
	if in.Title != nil && *in.Title == "" {
		verr.Add("title", "is required")
	}
	checkStruct(in, verr)

	patch := ActivityPatch{
		Title:         in.Title,
		Description:   in.Description,
		LocationText:  in.LocationText,
		ClearLocation: in.ClearLocation,
	}
	if in.Mood != nil {
		m := parseEnum(verr, "mood", *in.Mood, ParseMood)
		patch.Mood = &m
	}
	if in.Category != nil {
		c := parseEnum(verr, "category", *in.Category, ParseCategory)
		patch.Category = &c
	}
	if in.Privacy != nil {
		p := parseEnum(verr, "privacy", *in.Privacy, ParsePrivacy)
		patch.Privacy = &p
	}
	if in.ClearLocation && (in.Latitude != nil || in.Longitude != nil) {
		verr.Add("clear_location", "cannot be combined with latitude or longitude")
	} else {
		patch.Location = checkLocation(in.Latitude, in.Longitude, verr)
	}

	if err := verr.Err(); err != nil {
		return ActivityPatch{}, err
	}
	return patch, nil
}

// Apply copies the patched fields onto a.
func (p ActivityPatch) Apply(a *Activity) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Mood != nil {
		a.Mood = *p.Mood
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Privacy != nil {
		a.Privacy = *p.Privacy
	}
	switch {
	case p.ClearLocation:
		a.Location = nil
	case p.Location != nil:
		loc := *p.Location
		a.Location = &loc
	}
	if p.LocationText != nil {
		a.LocationText = *p.LocationText
	}
}

// bcrypt ignores input past 72 bytes
const maxPasswordBytes = 72

// RegisterInput is the registration payload.
type RegisterInput struct {
	Username       string `json:"username" validate:"required,max=64"`
	Password       string `json:"password" validate:"required,min=8"`
	DisplayName    string `json:"display_name" validate:"max=120"`
	Bio            string `json:"bio" validate:"max=280"`
	RegisterSecret string `json:"register_secret"`
}

// Validate trims the input in place and checks field constraints.
func (in *RegisterInput) Validate() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Password = strings.TrimSpace(in.Password)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Bio = strings.TrimSpace(in.Bio)
	in.RegisterSecret = strings.TrimSpace(in.RegisterSecret)

	verr := &ValidationError{}
	if strings.ContainsAny(in.Username, " \t\r\n") {
		verr.Add("username", "must not contain whitespace")
	}
	if len(in.Password) > maxPasswordBytes {
		verr.Add("password", "must be at most 72 bytes")
	}
	checkStruct(in, verr)
	return verr.Err()
}

// UpdateProfileInput edits the public profile fields of the current user.
type UpdateProfileInput struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=120"`
	Bio         *string `json:"bio" validate:"omitempty,max=280"`
}

func (in *UpdateProfileInput) Validate() error {
	in.DisplayName = trimmed(in.DisplayName)
	in.Bio = trimmed(in.Bio)

	verr := &ValidationError{}
	checkStruct(in, verr)
	return verr.Err()
}

// ValidatePassword checks a new password against the registration rules.
func ValidatePassword(field, password string) error {
	verr := &ValidationError{}
	switch {
	case len([]rune(password)) < 8:
		verr.Add(field, "must be at least 8 characters")
	case len(password) > maxPasswordBytes:
		verr.Add(field, "must be at most 72 bytes")
	}
	return verr.Err()
}

func parseEnum[T ~string](verr *ValidationError, field, raw string, parse func(string) (T, error)) T {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verr.Add(field, "is required")
		return ""
	}
	v, err := parse(strings.ToLower(raw))
	if err != nil {
		verr.Add(field, "is invalid")
		return ""
	}
	return v
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
