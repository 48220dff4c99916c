// Package platform holds the per-platform content rules: caption, hashtag and
// media limits, validation and caption formatting. Nothing here performs I/O.
package platform

import (
	"errors"
	"fmt"

	"github.com/maheshrc27/contentflow/internal/models"
)

const (
	Facebook  = "facebook"
	Instagram = "instagram"
	GMB       = "gmb"
	LinkedIn  = "linkedin"
	Twitter   = "twitter"
)

var ErrUnsupportedPlatform = errors.New("unsupported platform")

type Limits struct {
	MaxCaptionLength      int      `json:"max_caption_length"`
	MaxHashtags           int      `json:"max_hashtags"` // 0 means no limit
	SupportsHashtags      bool     `json:"supports_hashtags"`
	MinImages             int      `json:"min_images"`
	MaxImages             int      `json:"max_images"`
	SupportedAspectRatios []string `json:"supported_aspect_ratios,omitempty"`
	MinAspectRatio        float64  `json:"min_aspect_ratio,omitempty"`
	MaxAspectRatio        float64  `json:"max_aspect_ratio,omitempty"`
}

// Content is the subset of a post the adapters look at.
type Content struct {
	Caption  string             `json:"caption"`
	Hashtags []string           `json:"hashtags"`
	Media    []models.MediaItem `json:"media"`
}

type Issue struct {
	Platform string `json:"platform"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

type ValidationResult struct {
	IsValid  bool    `json:"is_valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

type Adapter interface {
	Name() string
	DisplayName() string
	Limits() Limits
	Validate(c Content) ValidationResult
	FormatCaption(caption string, hashtags []string) string
}

// Names lists every registered platform in display order.
func Names() []string {
	return []string{Facebook, Instagram, GMB, LinkedIn, Twitter}
}

func Lookup(name string) (Adapter, error) {
	switch name {
	case Facebook:
		return facebookAdapter{}, nil
	case Instagram:
		return instagramAdapter{}, nil
	case GMB:
		return gmbAdapter{}, nil
	case LinkedIn:
		return linkedInAdapter{}, nil
	case Twitter:
		return twitterAdapter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, name)
	}
}

func IsSupported(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// ValidateAll runs every target platform's adapter and merges the results.
// The post is valid only when all adapters accept it, so the tightest limit wins.
func ValidateAll(platforms []string, c Content) (ValidationResult, error) {
	merged := ValidationResult{IsValid: true, Errors: []Issue{}, Warnings: []Issue{}}

	if len(platforms) == 0 {
		merged.IsValid = false
		merged.Errors = append(merged.Errors, Issue{Field: "platforms", Message: "at least one platform is required"})
		return merged, nil
	}

	seen := make(map[string]struct{}, len(platforms))
	for _, name := range platforms {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		adapter, err := Lookup(name)
		if err != nil {
			return ValidationResult{}, err
		}

		res := adapter.Validate(c)
		merged.Errors = append(merged.Errors, res.Errors...)
		merged.Warnings = append(merged.Warnings, res.Warnings...)
	}

	merged.IsValid = len(merged.Errors) == 0
	return merged, nil
}

// TightestCaptionLimit is the smallest caption limit among the given platforms.
func TightestCaptionLimit(platforms []string) (int, error) {
	limit := 0
	for _, name := range platforms {
		adapter, err := Lookup(name)
		if err != nil {
			return 0, err
		}
		if l := adapter.Limits().MaxCaptionLength; limit == 0 || l < limit {
			limit = l
		}
	}
	return limit, nil
}
