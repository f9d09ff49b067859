package orgs

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"restaurant-app/internal/infra/dbx"

	"gorm.io/gorm"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
	validSlug = regexp.MustCompile(`^[a-z0-9-]{3,60}$`)

	ErrInvalidSlug = errors.New("invalid slug")
	ErrSlugTaken   = errors.New("slug already taken")
)

const maxSlugAttempts = 20

// MakeSlug generates a URL-safe base slug from the restaurant name.
// Example: "Casa Pepe" -> "casa-pepe"
func MakeSlug(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	if len(base) > 50 {
		base = strings.Trim(base[:50], "-")
	}
	if len(base) < 3 {
		base = strings.Trim("restaurant-"+base, "-")
	}
	return base
}

func ValidSlug(slug string) bool {
	return validSlug.MatchString(slug)
}

// ResolveSlug returns explicit when given (validated, must be free) or a free
// slug derived from name with a numeric suffix.
//
// pass db in, do NOT import restaurant-app/database here (import cycle).
func ResolveSlug(db *gorm.DB, name string, explicit string) (string, error) {
	explicit = strings.ToLower(strings.TrimSpace(explicit))
	if explicit != "" {
		if !ValidSlug(explicit) {
			return "", ErrInvalidSlug
		}
		taken, err := slugTaken(db, explicit)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrSlugTaken
		}
		return explicit, nil
	}

	base := MakeSlug(name)
	taken, err := slugTaken(db, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for i := 1; i <= maxSlugAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		taken, err := slugTaken(db, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("unable to find available slug for %q: %w", base, ErrSlugTaken)
}

func slugTaken(db *gorm.DB, slug string) (bool, error) {
	var org Organization
	err := db.Select("id").Where("slug = ?", slug).First(&org).Error
	if dbx.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
