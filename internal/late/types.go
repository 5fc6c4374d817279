package late

type Platform string

const (
	Instagram Platform = "instagram"
	TikTok    Platform = "tiktok"
	YouTube   Platform = "youtube"
)

type Profile struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type profilesResponse struct {
	Profiles []Profile `json:"profiles"`
}

type Account struct {
	ID        string   `json:"_id"`
	Platform  Platform `json:"platform"`
	Username  string   `json:"username,omitempty"`
	ProfileID string   `json:"profileId,omitempty"`
}

type accountsResponse struct {
	Accounts []Account `json:"accounts"`
}

// UploadedFile is one entry of the media upload response.
type UploadedFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Type     string `json:"type,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

type uploadResponse struct {
	Files []UploadedFile `json:"files"`
}

// MediaItem references uploaded media inside a post.
type MediaItem struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type PlatformTarget struct {
	Platform             Platform `json:"platform"`
	AccountID            string   `json:"accountId"`
	PlatformSpecificData any      `json:"platformSpecificData,omitempty"`
}

type TikTokSettings struct {
	PrivacyLevel            string `json:"privacy_level"`
	AllowComment            bool   `json:"allow_comment"`
	AllowDuet               bool   `json:"allow_duet"`
	AllowStitch             bool   `json:"allow_stitch"`
	CommercialContentType   string `json:"commercial_content_type"`
	ContentPreviewConfirmed bool   `json:"content_preview_confirmed"`
	ExpressConsentGiven     bool   `json:"express_consent_given"`
}

type tikTokData struct {
	TikTokSettings TikTokSettings `json:"tiktokSettings"`
}

type youTubeData struct {
	Title      string `json:"title"`
	Visibility string `json:"visibility"`
}

// CreatePostRequest is the body of POST /posts.
//
// ScheduledFor is local wall-clock time (YYYY-MM-DDTHH:MM) interpreted in
// Timezone.
type CreatePostRequest struct {
	Content      string           `json:"content"`
	Platforms    []PlatformTarget `json:"platforms"`
	ScheduledFor string           `json:"scheduledFor"`
	Timezone     string           `json:"timezone"`
	MediaItems   []MediaItem      `json:"mediaItems"`
	PublishNow   bool             `json:"publishNow"`
}

type Post struct {
	ID           string `json:"_id"`
	Status       string `json:"status,omitempty"`
	ScheduledFor string `json:"scheduledFor,omitempty"`
}

// CreatePostResponse accepts both the wrapped {"post": {...}} shape and a
// bare post object.
type CreatePostResponse struct {
	Post *Post  `json:"post,omitempty"`
	ID   string `json:"_id,omitempty"`
}

func (r CreatePostResponse) PostID() string {
	if r.Post != nil && r.Post.ID != "" {
		return r.Post.ID
	}
	return r.ID
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
