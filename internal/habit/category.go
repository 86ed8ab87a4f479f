package habit

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrBuiltinCategory  = errors.New("built-in categories cannot be changed or deleted")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidRating    = errors.New("rating must be between 0 and 5")
)

const (
	customPrefix  = "custom_"
	maxNameLength = 20
	defaultColor  = "#007bff"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Custom bool   `json:"isCustom"`
	Hidden bool   `json:"isHidden"`
}

var builtins = []Category{
	{ID: "exercise", Name: "🏃 Exercise", Color: "#059669"},
	{ID: "music", Name: "🥁 Music", Color: "#2563eb"},
	{ID: "reading", Name: "📚 Reading", Color: "#7c3aed"},
	{ID: "work", Name: "💼 Work", Color: "#ea580c"},
	{ID: "hobby", Name: "🎨 Hobby", Color: "#db2777"},
	{ID: "social", Name: "👥 Social", Color: "#0d9488"},
	{ID: "health", Name: "🏥 Health", Color: "#dc2626"},
	{ID: "learning", Name: "🎓 Learning", Color: "#475569"},
}

// Builtins returns a copy of the fixed categories in display order.
func Builtins() []Category {
	return append([]Category(nil), builtins...)
}

func isBuiltin(id string) bool {
	for _, c := range builtins {
		if c.ID == id {
			return true
		}
	}
	return false
}

func newCategoryID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return customPrefix + id, nil
}

// normalize trims the name, fills in the default color and checks both.
func normalize(name, color string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", "", fmt.Errorf("%w: name is longer than %d characters", ErrInvalidCategory, maxNameLength)
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = defaultColor
	}
	if !colorPattern.MatchString(color) {
		return "", "", fmt.Errorf("%w: color %q is not #rrggbb", ErrInvalidCategory, color)
	}
	return name, strings.ToLower(color), nil
}
