package domain

import (
	"fmt"
	"time"
)

type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodNeutral Mood = "neutral"
	MoodSad     Mood = "sad"
	MoodExcited Mood = "excited"
	MoodTired   Mood = "tired"
)

var moods = []Mood{MoodHappy, MoodNeutral, MoodSad, MoodExcited, MoodTired}

// Moods returns every accepted mood in display order.
func Moods() []Mood {
	return append([]Mood(nil), moods...)
}

func ParseMood(s string) (Mood, error) {
	for _, m := range moods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mood %q", s)
}

type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategorySocial   Category = "social"
	CategoryOther    Category = "other"
)

var categories = []Category{CategoryWork, CategoryPersonal, CategoryHealth, CategorySocial, CategoryOther}

// Categories returns every accepted category in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

func ParsePrivacy(s string) (Privacy, error) {
	switch Privacy(s) {
	case PrivacyPublic, PrivacyPrivate:
		return Privacy(s), nil
	}
	return "", fmt.Errorf("unknown privacy %q", s)
}

// GeoPoint is a WGS84 coordinate pair. A point always carries both values.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// Activity represents a daily activity posted by its owner.
type Activity struct {
	ID           int64
	OwnerID      int64
	OwnerName    string
	Title        string
	Description  string
	Mood         Mood
	Category     Category
	Privacy      Privacy
	Location     *GeoPoint
	LocationText string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Activity) IsPublic() bool {
	return a.Privacy == PrivacyPublic
}

// ActivityFilter narrows activity listings. Zero values mean "any".
// Limit caps the number of items yielded after visibility filtering.
type ActivityFilter struct {
	OwnerID  int64
	Category Category
	Mood     Mood
	Limit    int
}
