package domain

import (
	"time"
	_ "time/tzdata"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

var Themes = []Theme{ThemeLight, ThemeDark, ThemeAuto}

func ParseTheme(value string) (Theme, error) {
	return parseEnum("theme", value, Themes)
}

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageRussian Language = "ru"
	LanguageKazakh  Language = "kk"
)

var Languages = []Language{LanguageEnglish, LanguageRussian, LanguageKazakh}

func ParseLanguage(value string) (Language, error) {
	return parseEnum("language", value, Languages)
}

const DefaultTimezone = "America/New_York"

// Preferences is the per-user UI and notification settings bundle.
type Preferences struct {
	Theme                       Theme    `json:"theme"`
	Language                    Language `json:"language"`
	Timezone                    string   `json:"timezone"`
	EmailNotifications          bool     `json:"emailNotifications"`
	DeadlineReminders           bool     `json:"deadlineReminders"`
	TaskAssignmentNotifications bool     `json:"taskAssignmentNotifications"`
	WeeklyDigest                bool     `json:"weeklyDigest"`
}

// DefaultPreferences returns the bundle used for users who never saved preferences and on reset.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:                       ThemeLight,
		Language:                    LanguageEnglish,
		Timezone:                    DefaultTimezone,
		EmailNotifications:          true,
		DeadlineReminders:           true,
		TaskAssignmentNotifications: true,
		WeeklyDigest:                false,
	}
}

// PreferencesPatch carries a partial update. Nil fields are left untouched.
type PreferencesPatch struct {
	Theme                       *Theme
	Language                    *Language
	Timezone                    *string
	EmailNotifications          *bool
	DeadlineReminders           *bool
	TaskAssignmentNotifications *bool
	WeeklyDigest                *bool
}

// Validate checks each provided enumerated field independently.
func (p PreferencesPatch) Validate() error {
	if p.Theme != nil {
		if _, err := ParseTheme(string(*p.Theme)); err != nil {
			return err
		}
	}
	if p.Language != nil {
		if _, err := ParseLanguage(string(*p.Language)); err != nil {
			return err
		}
	}
	if p.Timezone != nil {
		if !validTimezone(*p.Timezone) {
			return NewError(ErrCodeInvalid, "invalid timezone. Expected an IANA zone name such as "+DefaultTimezone)
		}
	}
	return nil
}

// validTimezone accepts IANA zone names only. "Local" resolves to the host zone and is rejected.
func validTimezone(name string) bool {
	if name == "" || name == "Local" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}

// Apply merges the provided fields over base.
func (p PreferencesPatch) Apply(base Preferences) Preferences {
	if p.Theme != nil {
		base.Theme = *p.Theme
	}
	if p.Language != nil {
		base.Language = *p.Language
	}
	if p.Timezone != nil {
		base.Timezone = *p.Timezone
	}
	if p.EmailNotifications != nil {
		base.EmailNotifications = *p.EmailNotifications
	}
	if p.DeadlineReminders != nil {
		base.DeadlineReminders = *p.DeadlineReminders
	}
	if p.TaskAssignmentNotifications != nil {
		base.TaskAssignmentNotifications = *p.TaskAssignmentNotifications
	}
	if p.WeeklyDigest != nil {
		base.WeeklyDigest = *p.WeeklyDigest
	}
	return base
}
