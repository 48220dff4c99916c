package platform

import "fmt"

type facebookAdapter struct{}

func (facebookAdapter) Name() string        { return Facebook }
func (facebookAdapter) DisplayName() string { return "Facebook" }

func (facebookAdapter) Limits() Limits {
	return Limits{
		MaxCaptionLength: 63206,
		SupportsHashtags: true,
		MaxImages:        10,
	}
}

func (a facebookAdapter) Validate(c Content) ValidationResult {
	res := checkCommon(a.Name(), a.DisplayName(), a.Limits(), c, a.FormatCaption(c.Caption, c.Hashtags))
	if len(c.Media) > 1 {
		for i, m := range c.Media {
			if m.IsVideo() {
				res.Errors = append(res.Errors, Issue{
					Platform: a.Name(),
					Field:    fmt.Sprintf("media[%d]", i),
					Message:  "Facebook multi-photo posts cannot include videos",
				})
			}
		}
		res.IsValid = len(res.Errors) == 0
	}
	return res
}

func (facebookAdapter) FormatCaption(caption string, hashtags []string) string {
	return appendHashtags(caption, hashtags, "\n\n")
}

type instagramAdapter struct{}

func (instagramAdapter) Name() string        { return Instagram }
func (instagramAdapter) DisplayName() string { return "Instagram" }

func (instagramAdapter) Limits() Limits {
	return Limits{
		MaxCaptionLength:      2200,
		MaxHashtags:           30,
		SupportsHashtags:      true,
		MinImages:             1,
		MaxImages:             10,
		SupportedAspectRatios: []string{"1:1", "4:5", "1.91:1"},
		MinAspectRatio:        0.8,
		MaxAspectRatio:        1.91,
	}
}

func (a instagramAdapter) Validate(c Content) ValidationResult {
	res := checkCommon(a.Name(), a.DisplayName(), a.Limits(), c, a.FormatCaption(c.Caption, c.Hashtags))
	if len(c.Media) > 1 {
		for _, m := range c.Media {
			if m.IsVideo() {
				res.Warnings = append(res.Warnings, Issue{
					Platform: Instagram,
					Field:    "media",
					Message:  "videos in a carousel are published as carousel items, not reels",
				})
				break
			}
		}
	}
	return res
}

func (instagramAdapter) FormatCaption(caption string, hashtags []string) string {
	return appendHashtags(caption, hashtags, "\n\n")
}

type gmbAdapter struct{}

func (gmbAdapter) Name() string        { return GMB }
func (gmbAdapter) DisplayName() string { return "Google Business Profile" }

func (gmbAdapter) Limits() Limits {
	return Limits{
		MaxCaptionLength: 1500,
		SupportsHashtags: false,
		MaxImages:        1,
	}
}

func (a gmbAdapter) Validate(c Content) ValidationResult {
	return checkCommon(a.Name(), a.DisplayName(), a.Limits(), c, a.FormatCaption(c.Caption, c.Hashtags))
}

// FormatCaption drops hashtags; Validate reports them as a warning instead.
func (gmbAdapter) FormatCaption(caption string, _ []string) string {
	return caption
}

type linkedInAdapter struct{}

func (linkedInAdapter) Name() string        { return LinkedIn }
func (linkedInAdapter) DisplayName() string { return "LinkedIn" }

func (linkedInAdapter) Limits() Limits {
	return Limits{
		MaxCaptionLength: 3000,
		SupportsHashtags: true,
		MaxImages:        9,
	}
}

func (a linkedInAdapter) Validate(c Content) ValidationResult {
	return checkCommon(a.Name(), a.DisplayName(), a.Limits(), c, a.FormatCaption(c.Caption, c.Hashtags))
}

func (linkedInAdapter) FormatCaption(caption string, hashtags []string) string {
	return appendHashtags(caption, hashtags, "\n\n")
}

type twitterAdapter struct{}

func (twitterAdapter) Name() string        { return Twitter }
func (twitterAdapter) DisplayName() string { return "Twitter" }

func (twitterAdapter) Limits() Limits {
	return Limits{
		MaxCaptionLength: 280,
		SupportsHashtags: true,
		MaxImages:        4,
	}
}

func (a twitterAdapter) Validate(c Content) ValidationResult {
	return checkCommon(a.Name(), a.DisplayName(), a.Limits(), c, a.FormatCaption(c.Caption, c.Hashtags))
}

func (twitterAdapter) FormatCaption(caption string, hashtags []string) string {
	return appendHashtags(caption, hashtags, " ")
}
