package domain

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func validCreate() CreateActivityInput {
	return CreateActivityInput{
		Title:    "Morning run",
		Mood:     "happy",
		Category: "health",
		Privacy:  "public",
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	return verr.Fields
}

func TestCreateActivityInputValid(t *testing.T) {
	in := validCreate()
	in.Title = "  Morning run  "
	in.Mood = "Happy"
	in.Latitude = ptr(52.52)
	in.Longitude = ptr(13.405)
	in.LocationText = "Tiergarten"

	fields, err := in.Validate()
	require.NoError(t, err)
	require.Equal(t, "Morning run", fields.Title)
	require.Equal(t, MoodHappy, fields.Mood)
	require.Equal(t, CategoryHealth, fields.Category)
	require.Equal(t, PrivacyPublic, fields.Privacy)
	require.Equal(t, &GeoPoint{Lat: 52.52, Lng: 13.405}, fields.Location)
	require.Equal(t, "Tiergarten", fields.LocationText)
}

func TestCreateActivityInputWithoutLocation(t *testing.T) {
	fields, err := validCreate().Validate()
	require.NoError(t, err)
	require.Nil(t, fields.Location)
}

func TestCreateActivityInputGeoBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		lat     *float64
		lng     *float64
		wantErr []string
	}{
		{name: "north east corner", lat: ptr(90.0), lng: ptr(180.0)},
		{name: "south west corner", lat: ptr(-90.0), lng: ptr(-180.0)},
		{name: "origin", lat: ptr(0.0), lng: ptr(0.0)},
		{name: "latitude above range", lat: ptr(91.0), lng: ptr(0.0), wantErr: []string{"latitude"}},
		{name: "longitude below range", lat: ptr(0.0), lng: ptr(-180.5), wantErr: []string{"longitude"}},
		{name: "latitude only", lat: ptr(10.0), wantErr: []string{"longitude"}},
		{name: "longitude only", lng: ptr(10.0), wantErr: []string{"latitude"}},
		{name: "nan latitude", lat: ptr(math.NaN()), lng: ptr(0.0), wantErr: []string{"latitude"}},
		{name: "infinite longitude", lat: ptr(0.0), lng: ptr(math.Inf(1)), wantErr: []string{"longitude"}},
		{name: "both out of range", lat: ptr(-95.0), lng: ptr(200.0), wantErr: []string{"latitude", "longitude"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreate()
			in.Latitude = tt.lat
			in.Longitude = tt.lng

			fields, err := in.Validate()
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				require.NotNil(t, fields.Location)
				require.Equal(t, *tt.lat, fields.Location.Lat)
				require.Equal(t, *tt.lng, fields.Location.Lng)
				return
			}
			got := fieldErrors(t, err)
			require.Len(t, got, len(tt.wantErr))
			for _, field := range tt.wantErr {
				require.Contains(t, got, field)
			}
		})
	}
}

func TestCreateActivityInputReportsEveryField(t *testing.T) {
	in := CreateActivityInput{
		Title:        "   ",
		Description:  strings.Repeat("x", 5001),
		Mood:         "grumpy",
		Category:     "",
		Privacy:      "friends",
		LocationText: strings.Repeat("y", 201),
	}

	_, err := in.Validate()
	got := fieldErrors(t, err)
	require.Equal(t, "is required", got["title"])
	require.Equal(t, "must be at most 5000 characters", got["description"])
	require.Equal(t, "is invalid", got["mood"])
	require.Equal(t, "is required", got["category"])
	require.Equal(t, "is invalid", got["privacy"])
	require.Equal(t, "must be at most 200 characters", got["location_text"])
	require.Contains(t, err.Error(), "validation failed: category: is required")
}

func TestUpdateActivityInputApply(t *testing.T) {
	activity := Activity{
		Title:    "Old",
		Mood:     MoodSad,
		Category: CategoryWork,
		Privacy:  PrivacyPublic,
		Location: &GeoPoint{Lat: 1, Lng: 2},
	}

	patch, err := UpdateActivityInput{
		Title:   ptr(" New "),
		Mood:    ptr("excited"),
		Privacy: ptr("private"),
	}.Validate()
	require.NoError(t, err)
	patch.Apply(&activity)

	require.Equal(t, "New", activity.Title)
	require.Equal(t, MoodExcited, activity.Mood)
	require.Equal(t, CategoryWork, activity.Category)
	require.Equal(t, PrivacyPrivate, activity.Privacy)
	require.Equal(t, &GeoPoint{Lat: 1, Lng: 2}, activity.Location)

	patch, err = UpdateActivityInput{ClearLocation: true}.Validate()
	require.NoError(t, err)
	patch.Apply(&activity)
	require.Nil(t, activity.Location)

	patch, err = UpdateActivityInput{Latitude: ptr(-45.0), Longitude: ptr(170.0)}.Validate()
	require.NoError(t, err)
	patch.Apply(&activity)
	require.Equal(t, &GeoPoint{Lat: -45, Lng: 170}, activity.Location)
}

func TestUpdateActivityInputRejects(t *testing.T) {
	tests := []struct {
		name  string
		in    UpdateActivityInput
		field string
	}{
		{name: "blank title", in: UpdateActivityInput{Title: ptr("  ")}, field: "title"},
		{name: "unknown category", in: UpdateActivityInput{Category: ptr("chores")}, field: "category"},
		{name: "latitude only", in: UpdateActivityInput{Latitude: ptr(10.0)}, field: "longitude"},
		{name: "clear with coordinates", in: UpdateActivityInput{ClearLocation: true, Latitude: ptr(1.0), Longitude: ptr(1.0)}, field: "clear_location"},
		{name: "long description", in: UpdateActivityInput{Description: ptr(strings.Repeat("d", 5001))}, field: "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Validate()
			require.Contains(t, fieldErrors(t, err), tt.field)
		})
	}
}

func TestRegisterInputValidate(t *testing.T) {
	in := RegisterInput{Username: " alice ", Password: "correct horse"}
	require.NoError(t, in.Validate())
	require.Equal(t, "alice", in.Username)

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{name: "missing username", in: RegisterInput{Password: "password123"}, field: "username"},
		{name: "whitespace username", in: RegisterInput{Username: "al ice", Password: "password123"}, field: "username"},
		{name: "short password", in: RegisterInput{Username: "alice", Password: "short"}, field: "password"},
		{name: "long password", in: RegisterInput{Username: "alice", Password: strings.Repeat("p", 73)}, field: "password"},
		{name: "long bio", in: RegisterInput{Username: "alice", Password: "password123", Bio: strings.Repeat("b", 281)}, field: "bio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, fieldErrors(t, tt.in.Validate()), tt.field)
		})
	}
}

func TestParseEnums(t *testing.T) {
	for _, m := range Moods() {
		got, err := ParseMood(string(m))
		require.NoError(t, err)
		require.Equal(t, m, got)
	}
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		require.Equal(t, c, got)
	}
	_, err := ParseMood("")
	require.Error(t, err)
	_, err = ParseCategory("gym")
	require.Error(t, err)
	_, err = ParsePrivacy("friends")
	require.Error(t, err)
}

func TestStorageErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := NewStorageError("insert activity", cause)

	require.ErrorIs(t, err, ErrStorageUnavailable)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "insert activity: disk I/O error", err.Error())
}
