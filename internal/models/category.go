package models

import (
	"strings"
	"time"
	"unicode"
)

// Category is a lightweight taxonomy entry a record may belong to.
type Category struct {
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCategory(name string) *Category {
	return &Category{
		Name:      name,
		Slug:      Slugify(name),
		CreatedAt: time.Now().UTC(),
	}
}

// Slugify lowercases the name and collapses anything that is not a
// letter or digit into single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
