package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"github.com/MimeLyc/latepost/internal/planner"
)

// Campaign is the content a run cycles through: caption templates, the
// hashtag block substituted into them and the YouTube title prefix.
type Campaign struct {
	Captions           []string `json:"captions" validate:"required,min=1,dive,required"`
	Hashtags           string   `json:"hashtags"`
	YouTubeTitlePrefix string   `json:"youtube_title_prefix" validate:"required,max=80"`
}

const link = " Link in bio 📲\n\ndeendecal.com 📲\n\n" + planner.HashtagPlaceholder

var defaultCaptions = []string{
	"Transform your ride with premium Islamic decals! 🚗✨" + link,
	"Show your faith with style! Check out our latest designs 🔥" + link,
	"Quality decals for your car, made with care 🎨" + link,
	"New designs dropping! Get yours today 🚀" + link,
	"Express your identity with our premium decals 💪" + link,
	"Beautiful Islamic decals for your vehicle 🌟" + link,
	"Upgrade your car's look with our latest collection 🎯" + link,
	"Faith meets style! Shop our decals now 🛒" + link,
	"Premium quality, authentic designs ✨" + link,
	"Make a statement with DeenDecal! 🎨" + link,
	"Your car deserves the best! Check out our decals 🚗💎" + link,
	"Islamic decals that last! Quality guaranteed 🔒" + link,
	"New video! See our decals in action 🎥" + link,
	"Stand out with our unique designs 🌈" + link,
	"Shop now and transform your ride today! 🛍️" + link,
	"Quality you can trust, designs you'll love ❤️" + link,
	"Express yourself with our premium decals 🎭" + link,
	"Beautiful designs for beautiful cars 🚙✨" + link,
	"Check out what's new! Fresh designs available now 🆕" + link,
	"Your style, your faith, your decal 🎨" + link,
}

func DefaultCampaign() Campaign {
	return Campaign{
		Captions:           append([]string(nil), defaultCaptions...),
		Hashtags:           "#car #decal #shahada #islam #muslim #metal #emblem #deendecal",
		YouTubeTitlePrefix: "DeenDecal Content",
	}
}

var validate = validator.New()

func (c Campaign) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("campaign %s failed %q validation", fe.Namespace(), fe.Tag())
		}
		return err
	}
	for i, caption := range c.Captions {
		if strings.TrimSpace(caption) == "" {
			return fmt.Errorf("caption %d is empty", i)
		}
		if n := strings.Count(caption, planner.HashtagPlaceholder); n > 1 {
			return fmt.Errorf("caption %d has %d %s placeholders, want at most one", i, n, planner.HashtagPlaceholder)
		}
	}
	return nil
}

// Normalized returns a copy with every caption and the hashtag block in
// Unicode NFC, so captions edited on different systems render the same.
func (c Campaign) Normalized() Campaign {
	out := Campaign{
		Captions:           make([]string, len(c.Captions)),
		Hashtags:           norm.NFC.String(c.Hashtags),
		YouTubeTitlePrefix: norm.NFC.String(c.YouTubeTitlePrefix),
	}
	for i, caption := range c.Captions {
		out.Captions[i] = norm.NFC.String(caption)
	}
	return out
}

// LoadCampaignFile reads a JSON campaign. Fields left empty in the file keep
// their defaults.
func LoadCampaignFile(path string) (Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Campaign{}, err
	}

	var fromFile Campaign
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return Campaign{}, fmt.Errorf("invalid campaign file: %w", err)
	}

	campaign := DefaultCampaign()
	if len(fromFile.Captions) > 0 {
		campaign.Captions = fromFile.Captions
	}
	if strings.TrimSpace(fromFile.Hashtags) != "" {
		campaign.Hashtags = fromFile.Hashtags
	}
	if strings.TrimSpace(fromFile.YouTubeTitlePrefix) != "" {
		campaign.YouTubeTitlePrefix = fromFile.YouTubeTitlePrefix
	}

	campaign = campaign.Normalized()
	if err := campaign.Validate(); err != nil {
		return Campaign{}, err
	}
	return campaign, nil
}

// Campaign returns the configured campaign: the file when CAMPAIGN_FILE is
// set, the built-in defaults otherwise.
func (c *Config) Campaign() (Campaign, error) {
	if c.Schedule.CampaignFile == "" {
		return DefaultCampaign(), nil
	}
	return LoadCampaignFile(c.Schedule.CampaignFile)
}
