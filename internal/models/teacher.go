package models

import (
	"strings"

	"github.com/lib/pq"
)

// NormalizeLevel folds a level name to the stored upper-case form.
func NormalizeLevel(level string) string {
	return strings.ToUpper(strings.TrimSpace(level))
}

// Teacher is a read-only directory entry.
type Teacher struct {
	ID       string         `db:"id" json:"id"`
	FullName string         `db:"full_name" json:"full_name"`
	Email    string         `db:"email" json:"email"`
	Levels   pq.StringArray `db:"levels" json:"levels"`
	Active   bool           `db:"active" json:"active"`
}

// TeachesLevel reports whether the teacher is qualified for level.
func (t Teacher) TeachesLevel(level string) bool {
	for _, l := range t.Levels {
		if strings.EqualFold(l, level) {
			return true
		}
	}
	return false
}

// TeacherSummary is returned from availability queries.
type TeacherSummary struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Subject is a read-only subject directory entry.
type Subject struct {
	ID    string `db:"id" json:"id"`
	Code  string `db:"code" json:"code"`
	Name  string `db:"name" json:"name"`
	Level string `db:"level" json:"level"`
}

// TeacherFilter narrows directory listings.
type TeacherFilter struct {
	Level  string
	Active *bool
}
