package late

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		APIKey:  "test-key",
		APIURL:  server.URL,
		Timeout: 5,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	config := &Config{APIKey: "k", APIURL: "https://example.com/api/v1/", Timeout: 30}
	client, err := NewClient(config)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api/v1", client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.Zero(t, client.uploadClient.Timeout, "uploads are bounded per request")

	_, err = NewClient(&Config{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestCreatePost(t *testing.T) {
	var got CreatePostRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"post": {"_id": "6929abcdef012345", "status": "scheduled"}}`))
	})

	accounts := Accounts{ProfileID: "p", Instagram: "ig-1", TikTok: "tt-1", YouTube: "yt-1"}
	req := CreatePostRequest{
		Content:      "hello #tags",
		Platforms:    BuildPlatforms(accounts, "DeenDecal Content - October 17, 2026"),
		ScheduledFor: "2026-10-17T05:42",
		Timezone:     "America/New_York",
		MediaItems:   []MediaItem{{Type: "video", URL: "https://cdn/x.mp4", Filename: "x.mp4"}},
	}

	id, err := client.CreatePost(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "6929abcdef012345", id)

	assert.Equal(t, "2026-10-17T05:42", got.ScheduledFor)
	assert.Equal(t, "America/New_York", got.Timezone)
	assert.False(t, got.PublishNow)
	require.Len(t, got.Platforms, 3)
	assert.Equal(t, Instagram, got.Platforms[0].Platform)
	assert.Equal(t, "tt-1", got.Platforms[1].AccountID)
}

func TestCreatePost_PayloadShape(t *testing.T) {
	var raw map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"_id": "bare-id"}`))
	})

	accounts := Accounts{ProfileID: "p", Instagram: "ig", TikTok: "tt", YouTube: "yt"}
	id, err := client.CreatePost(context.Background(), CreatePostRequest{
		Content:      "c",
		Platforms:    BuildPlatforms(accounts, "T - October 17, 2026"),
		ScheduledFor: "2026-10-17T23:59",
		Timezone:     "UTC",
		MediaItems:   []MediaItem{},
	})
	require.NoError(t, err)
	assert.Equal(t, "bare-id", id)

	assert.Equal(t, false, raw["publishNow"])
	platforms := raw["platforms"].([]any)
	ig := platforms[0].(map[string]any)
	_, hasData := ig["platformSpecificData"]
	assert.False(t, hasData)

	tt := platforms[1].(map[string]any)["platformSpecificData"].(map[string]any)["tiktokSettings"].(map[string]any)
	assert.Equal(t, "PUBLIC_TO_EVERYONE", tt["privacy_level"])
	assert.Equal(t, true, tt["allow_duet"])
	assert.Equal(t, true, tt["express_consent_given"])

	yt := platforms[2].(map[string]any)["platformSpecificData"].(map[string]any)
	assert.Equal(t, "T - October 17, 2026", yt["title"])
	assert.Equal(t, "public", yt["visibility"])
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		headers map[string]string
		check   func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error": "bad key"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnauthorized)
			},
		},
		{
			name:   "forbidden with message",
			status: http.StatusForbidden,
			body:   `{"error": "Post limit reached for your plan"}`,
			check: func(t *testing.T, err error) {
				var fe *ForbiddenError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, "Post limit reached for your plan", fe.Message)
			},
		},
		{
			name:   "forbidden without body",
			status: http.StatusForbidden,
			body:   `not json`,
			check: func(t *testing.T, err error) {
				var fe *ForbiddenError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, "Check your plan limits", fe.Message)
			},
		},
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			headers: map[string]string{"X-RateLimit-Reset": "1792224000"},
			check: func(t *testing.T, err error) {
				var rl *RateLimitError
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, "1792224000", rl.Reset)
				assert.Equal(t, time.Unix(1792224000, 0), rl.ResetAt)
				assert.Contains(t, err.Error(), "rate limit")
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   "upstream down",
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
				assert.Equal(t, "upstream down", apiErr.Body)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.CreatePost(context.Background(), CreatePostRequest{})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(&Config{APIKey: "k", APIURL: url, Timeout: 5})
	require.NoError(t, err)

	_, err = client.CreatePost(context.Background(), CreatePostRequest{})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Op, "/posts")
}

func TestCanceledContextIsNotTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreatePost(ctx, CreatePostRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	var te *TransportError
	assert.False(t, errors.As(err, &te))
}

func TestParseReset(t *testing.T) {
	assert.True(t, parseReset("").IsZero())
	assert.True(t, parseReset("soon").IsZero())
	assert.Equal(t, time.Unix(1700000000, 0), parseReset("1700000000"))
	assert.Equal(t, time.UnixMilli(1700000000123), parseReset("1700000000123"))
	assert.Equal(t, time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC), parseReset("2026-10-17T12:00:00Z").UTC())
}

func TestUploadMedia(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mov")
	require.NoError(t, os.WriteFile(path, []byte("movie-bytes"), 0o644))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/media", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		mr, err := r.MultipartReader()
		if !assert.NoError(t, err) {
			return
		}
		part, err := mr.NextPart()
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, "files", part.FormName())
		assert.Equal(t, "clip.mov", part.FileName())
		assert.Equal(t, "video/quicktime", part.Header.Get("Content-Type"))
		data, err := io.ReadAll(part)
		assert.NoError(t, err)
		assert.Equal(t, "movie-bytes", string(data))

		_, _ = w.Write([]byte(`{"files": [{"url": "https://cdn.example/clip.mov", "filename": "clip-123.mov"}]}`))
	})

	uploaded, err := client.UploadMedia(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/clip.mov", uploaded.URL)
	assert.Equal(t, "clip-123.mov", uploaded.Filename)
}

func TestUploadMedia_FilenameFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write([]byte(`{"files": [{"url": "https://cdn.example/a.mp4"}]}`))
	})

	uploaded, err := client.UploadMedia(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "a.mp4", uploaded.Filename)
}

func TestUploadMedia_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.mp4")
	require.NoError(t, os.WriteFile(path, make([]byte, 3*1024*1024), 0o644))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	})

	_, err := client.UploadMedia(context.Background(), path)
	var tooLarge *PayloadTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(3*1024*1024), tooLarge.Size)
	assert.Contains(t, err.Error(), "3.00MB")
}

func TestUploadMedia_NoFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.webm")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write([]byte(`{"files": []}`))
	})

	_, err := client.UploadMedia(context.Background(), path)
	assert.ErrorIs(t, err, ErrNoFilesReturned)
}

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"a.mp4":       "video/mp4",
		"a.MOV":       "video/quicktime",
		"a.quicktime": "video/quicktime",
		"a.webm":      "video/webm",
		"a.avi":       "video/x-msvideo",
		"a.m4v":       "video/x-m4v",
		"a.mkv":       "video/mp4",
		"noext":       "video/mp4",
	}
	for path, want := range tests {
		assert.Equal(t, want, ContentTypeFor(path), path)
	}
}

func TestResolveAccounts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/profiles":
			_, _ = w.Write([]byte(`{"profiles": [{"_id": "p-1", "name": "other"}, {"_id": "p-4", "name": "deendecal4"}]}`))
		case "/accounts":
			assert.Equal(t, "p-4", r.URL.Query().Get("profileId"))
			_, _ = w.Write([]byte(`{"accounts": [
				{"_id": "ig-4", "platform": "instagram"},
				{"_id": "tt-4", "platform": "tiktok"},
				{"_id": "yt-4", "platform": "youtube"},
				{"_id": "x-4", "platform": "twitter"}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	got, err := client.ResolveAccounts(context.Background(), "deendecal4", Accounts{TikTok: "tt-explicit"})
	require.NoError(t, err)
	assert.Equal(t, Accounts{ProfileID: "p-4", Instagram: "ig-4", TikTok: "tt-explicit", YouTube: "yt-4"}, got)
}

func TestResolveAccounts_Errors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/profiles":
			_, _ = w.Write([]byte(`{"profiles": [{"_id": "p-1", "name": "deendecal4"}]}`))
		case "/accounts":
			_, _ = w.Write([]byte(`{"accounts": [{"_id": "ig-1", "platform": "instagram"}]}`))
		}
	})

	_, err := client.ResolveAccounts(context.Background(), "missing", Accounts{})
	assert.ErrorContains(t, err, `profile "missing" not found`)

	_, err = client.ResolveAccounts(context.Background(), "deendecal4", Accounts{})
	assert.ErrorContains(t, err, "tiktok, youtube")
}

func TestResolveAccounts_CompleteSkipsLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})

	known := Accounts{ProfileID: "p", Instagram: "i", TikTok: "t", YouTube: "y"}
	got, err := client.ResolveAccounts(context.Background(), "any", known)
	require.NoError(t, err)
	assert.Equal(t, known, got)
}

func TestYouTubeTitle(t *testing.T) {
	assert.Equal(t, "DeenDecal Content - October 07, 2026",
		YouTubeTitle("DeenDecal Content", time.Date(2026, time.October, 7, 0, 0, 0, 0, time.UTC)))
}

func TestCreatePost_UnparseableResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("<html>ok</html>"))
	})

	_, err := client.CreatePost(context.Background(), CreatePostRequest{})
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusCreated, respErr.StatusCode)
	assert.Equal(t, "<html>ok</html>", respErr.Body)
}

func TestUploadMedia_UnreadableFile(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.UploadMedia(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"))
	assert.ErrorIs(t, err, ErrUnreadableFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, called, "nothing is sent for a missing file")
}

func TestUploadMedia_SlowUploadIsTransportError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	client.uploadTimeout = func(int64) time.Duration { return 50 * time.Millisecond }

	_, err := client.UploadMedia(context.Background(), path)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, te.Error(), "did not finish within 50ms")
}

func TestUploadTimeout(t *testing.T) {
	base := 2 * time.Minute
	assert.Equal(t, base, UploadTimeout(base, 1024))
	// 1 GiB at 256 KiB/s
	assert.Equal(t, base+4096*time.Second, UploadTimeout(base, 1<<30))
}
