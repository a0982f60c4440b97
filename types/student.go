package types

import "strings"

// Gender is the optional gender of a student: "F", "M" or empty when unknown.
type Gender string

const (
	GenderFemale  Gender = "F"
	GenderMale    Gender = "M"
	GenderUnknown Gender = ""
)

// Student is one roster entry.
//
// IDs are unique and stable for the lifetime of an editing session. Students are
// created on roster import and are immutable afterwards except through re-import.
type Student struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	First  string `json:"first" yaml:"first"`
	Last   string `json:"last" yaml:"last"`
	Gender Gender `json:"gender" yaml:"gender"`
}

// NameView selects how student names are displayed on rendered plans.
type NameView string

const (
	NameViewFirst NameView = "first"
	NameViewLast  NameView = "last"
	NameViewBoth  NameView = "both"
)

// Valid reports whether v is one of the known name views.
func (v NameView) Valid() bool {
	switch v {
	case NameViewFirst, NameViewLast, NameViewBoth:
		return true
	default:
		return false
	}
}

// DisplayName returns the student's name formatted for the given view.
//
// Falls back to Name, then to the other name part, when the requested part is empty.
func (s Student) DisplayName(view NameView) string {
	first := strings.TrimSpace(s.First)
	last := strings.TrimSpace(s.Last)

	var out string
	switch view {
	case NameViewFirst:
		out = first
	case NameViewLast:
		out = last
	default:
		out = strings.TrimSpace(first + " " + last)
	}

	if out != "" {
		return out
	}
	if s.Name != "" {
		return s.Name
	}

	return strings.TrimSpace(first + " " + last)
}

// FullName returns "First Last", falling back to Name.
func (s Student) FullName() string {
	return s.DisplayName(NameViewBoth)
}
