package platform

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const aspectRatioTolerance = 0.01

// NormalizeHashtag strips leading '#' and any whitespace from a tag.
func NormalizeHashtag(tag string) string {
	tag = strings.TrimLeft(strings.TrimSpace(tag), "#")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, tag)
}

// normalizeHashtags cleans tags, dropping empties and case-insensitive duplicates.
func normalizeHashtags(hashtags []string) []string {
	out := make([]string, 0, len(hashtags))
	seen := make(map[string]struct{}, len(hashtags))
	for _, h := range hashtags {
		tag := NormalizeHashtag(h)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, "#"+tag)
	}
	return out
}

func appendHashtags(caption string, hashtags []string, sep string) string {
	tags := normalizeHashtags(hashtags)
	if len(tags) == 0 {
		return caption
	}
	joined := strings.Join(tags, " ")
	if strings.TrimSpace(caption) == "" {
		return joined
	}
	return caption + sep + joined
}

// checkCommon applies the limits every adapter shares. The caption is measured
// after platform formatting so appended hashtags count against the limit.
func checkCommon(name, display string, l Limits, c Content, formatted string) ValidationResult {
	res := ValidationResult{Errors: []Issue{}, Warnings: []Issue{}}
	fail := func(field, format string, args ...any) {
		res.Errors = append(res.Errors, Issue{Platform: name, Field: field, Message: fmt.Sprintf(format, args...)})
	}
	warn := func(field, format string, args ...any) {
		res.Warnings = append(res.Warnings, Issue{Platform: name, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.Caption) == "" && len(c.Media) == 0 {
		fail("caption", "%s post needs a caption or at least one media item", display)
	}

	if n := utf8.RuneCountInString(formatted); n > l.MaxCaptionLength {
		fail("caption", "caption is %d characters, %s allows at most %d", n, display, l.MaxCaptionLength)
	}

	tags := normalizeHashtags(c.Hashtags)
	switch {
	case !l.SupportsHashtags && len(tags) > 0:
		warn("hashtags", "hashtags are ignored on %s", display)
	case l.MaxHashtags > 0 && len(tags) > l.MaxHashtags:
		fail("hashtags", "%d hashtags given, %s allows at most %d", len(tags), display, l.MaxHashtags)
	}
	if len(tags) < len(c.Hashtags) {
		warn("hashtags", "%d empty or duplicate hashtags were dropped", len(c.Hashtags)-len(tags))
	}

	if len(c.Media) < l.MinImages {
		fail("media", "%s requires at least %d media item(s)", display, l.MinImages)
	}
	if len(c.Media) > l.MaxImages {
		fail("media", "%d media items given, %s allows at most %d", len(c.Media), display, l.MaxImages)
	}

	for i, m := range c.Media {
		if strings.TrimSpace(m.PublishURL()) == "" {
			fail(fmt.Sprintf("media[%d].source_url", i), "media item has no URL")
			continue
		}
		if l.MinAspectRatio == 0 || m.Width <= 0 || m.Height <= 0 {
			continue
		}
		ratio := float64(m.Width) / float64(m.Height)
		if ratio < l.MinAspectRatio-aspectRatioTolerance || ratio > l.MaxAspectRatio+aspectRatioTolerance {
			fail(fmt.Sprintf("media[%d]", i), "aspect ratio %.2f is outside the %s range %.2f to %.2f",
				ratio, display, l.MinAspectRatio, l.MaxAspectRatio)
		}
	}

	res.IsValid = len(res.Errors) == 0
	return res
}
