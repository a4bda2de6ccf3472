package model

import "strings"

// SocialPlatform describes one supported social network. BaseURL, when set,
// is prefixed to a bare handle; platforms without one expect a full URL.
type SocialPlatform struct {
	Key         string
	Name        string
	Placeholder string
	BaseURL     string
}

// SocialPlatforms is the closed set of supported platforms. Lookup is by Key.
var SocialPlatforms = []SocialPlatform{
	{Key: "instagram", Name: "Instagram", Placeholder: "username", BaseURL: "https://instagram.com/"},
	{Key: "tiktok", Name: "TikTok", Placeholder: "username", BaseURL: "https://tiktok.com/@"},
	{Key: "youtube", Name: "YouTube", Placeholder: "channel URL or @handle"},
	{Key: "twitter", Name: "X / Twitter", Placeholder: "username", BaseURL: "https://x.com/"},
	{Key: "spotify", Name: "Spotify", Placeholder: "profile or playlist URL"},
	{Key: "github", Name: "GitHub", Placeholder: "username", BaseURL: "https://github.com/"},
	{Key: "linkedin", Name: "LinkedIn", Placeholder: "profile URL"},
	{Key: "twitch", Name: "Twitch", Placeholder: "username", BaseURL: "https://twitch.tv/"},
	{Key: "facebook", Name: "Facebook", Placeholder: "profile URL"},
	{Key: "email", Name: "Email", Placeholder: "your@email.com", BaseURL: "mailto:"},
}

// PlatformByKey returns the platform for key, or false when unknown.
func PlatformByKey(key string) (SocialPlatform, bool) {
	for _, p := range SocialPlatforms {
		if p.Key == key {
			return p, true
		}
	}
	return SocialPlatform{}, false
}

// ResolveSocialURL builds the destination URL for a platform and raw user
// input. Bare handles get the platform base URL (leading "@" stripped);
// anything already carrying a scheme passes through; everything else is
// normalized to https.
func (p SocialPlatform) ResolveSocialURL(input string) string {
	value := strings.TrimSpace(input)
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "mailto:") {
		return value
	}
	if p.BaseURL != "" {
		return p.BaseURL + strings.TrimPrefix(value, "@")
	}
	return "https://" + value
}
