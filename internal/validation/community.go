package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var communitySlugRegex = regexp.MustCompile(`^[a-z0-9-]{3,24}$`)

var reservedCommunitySlugs = map[string]struct{}{
	"admin":         {},
	"api":           {},
	"auth":          {},
	"settings":      {},
	"communities":   {},
	"c":             {},
	"users":         {},
	"posts":         {},
	"comments":      {},
	"reviews":       {},
	"itineraries":   {},
	"notifications": {},
	"reports":       {},
	"ws":            {},
	"swagger":       {},
	"metrics":       {},
	"login":         {},
	"signup":        {},
}

// ValidateCommunitySlug validates community slug format and reserved names.
func ValidateCommunitySlug(slug string) error {
	if !communitySlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 3-24 characters and contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}

	if _, exists := reservedCommunitySlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}

	return nil
}

// ValidateRating checks that a review rating is within the 1-5 scale.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}
