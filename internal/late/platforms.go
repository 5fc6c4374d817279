package late

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Accounts are the three platform accounts every post goes to.
type Accounts struct {
	ProfileID string `json:"profile_id"`
	Instagram string `json:"instagram"`
	TikTok    string `json:"tiktok"`
	YouTube   string `json:"youtube"`
}

func (a Accounts) Complete() bool {
	return a.ProfileID != "" && a.Instagram != "" && a.TikTok != "" && a.YouTube != ""
}

// DefaultTikTokSettings publishes publicly with every interaction allowed
// and the consent flags TikTok requires for API posts.
func DefaultTikTokSettings() TikTokSettings {
	return TikTokSettings{
		PrivacyLevel:            "PUBLIC_TO_EVERYONE",
		AllowComment:            true,
		AllowDuet:               true,
		AllowStitch:             true,
		CommercialContentType:   "none",
		ContentPreviewConfirmed: true,
		ExpressConsentGiven:     true,
	}
}

// YouTubeTitle renders "<prefix> - January 02, 2006" for the post date.
func YouTubeTitle(prefix string, date time.Time) string {
	return fmt.Sprintf("%s - %s", prefix, date.Format("January 02, 2006"))
}

// BuildPlatforms returns the instagram, tiktok and youtube targets in that
// order.
func BuildPlatforms(accounts Accounts, youtubeTitle string) []PlatformTarget {
	return []PlatformTarget{
		{
			Platform:  Instagram,
			AccountID: accounts.Instagram,
		},
		{
			Platform:  TikTok,
			AccountID: accounts.TikTok,
			PlatformSpecificData: tikTokData{
				TikTokSettings: DefaultTikTokSettings(),
			},
		},
		{
			Platform:  YouTube,
			AccountID: accounts.YouTube,
			PlatformSpecificData: youTubeData{
				Title:      youtubeTitle,
				Visibility: "public",
			},
		},
	}
}

// ResolveAccounts fills the missing IDs in known by looking the profile up
// by name and then picking the first account per platform.
func (c *Client) ResolveAccounts(ctx context.Context, profileName string, known Accounts) (Accounts, error) {
	if known.Complete() {
		return known, nil
	}

	ret := known
	if ret.ProfileID == "" {
		profile, err := c.ProfileByName(ctx, profileName)
		if err != nil {
			return Accounts{}, err
		}
		if profile == nil {
			return Accounts{}, fmt.Errorf("profile %q not found", profileName)
		}
		ret.ProfileID = profile.ID
	}

	accounts, err := c.ListAccounts(ctx, ret.ProfileID)
	if err != nil {
		return Accounts{}, err
	}
	for _, a := range accounts {
		switch a.Platform {
		case Instagram:
			if ret.Instagram == "" {
				ret.Instagram = a.ID
			}
		case TikTok:
			if ret.TikTok == "" {
				ret.TikTok = a.ID
			}
		case YouTube:
			if ret.YouTube == "" {
				ret.YouTube = a.ID
			}
		}
	}

	if !ret.Complete() {
		return ret, fmt.Errorf("profile %q is missing connected accounts: %s", profileName, ret.missing())
	}
	return ret, nil
}

func (a Accounts) missing() string {
	var out []string
	if a.Instagram == "" {
		out = append(out, string(Instagram))
	}
	if a.TikTok == "" {
		out = append(out, string(TikTok))
	}
	if a.YouTube == "" {
		out = append(out, string(YouTube))
	}
	return strings.Join(out, ", ")
}
