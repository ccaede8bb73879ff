// Package livestream reports whether the parish's YouTube channel is live or
// has a scheduled stream. The public site polls this every page load, so the
// service layer caches results in Redis to stay inside API quota.
package livestream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Status is the client-facing live state. At most one of IsLive/HasUpcoming
// is set; both false means no stream was found.
type Status struct {
	IsLive             bool   `json:"isLive"`
	HasUpcoming        bool   `json:"hasUpcoming"`
	VideoID            string `json:"videoId,omitempty"`
	Title              string `json:"title,omitempty"`
	Thumbnail          string `json:"thumbnail,omitempty"`
	EmbedURL           string `json:"embedUrl,omitempty"`
	WatchURL           string `json:"watchUrl,omitempty"`
	Viewers            string `json:"viewers,omitempty"`
	ScheduledStartTime string `json:"scheduledStartTime,omitempty"`
	Message            string `json:"message,omitempty"`
}

// Client talks to the YouTube Data API v3. BaseURL is overridable for tests.
type Client struct {
	BaseURL string

	apiKey        string
	channelHandle string
	httpc         *http.Client
}

func NewClient(apiKey, channelHandle string) *Client {
	return &Client{
		BaseURL:       defaultBaseURL,
		apiKey:        apiKey,
		channelHandle: channelHandle,
		httpc:         &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether the client has credentials to call the API.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.channelHandle != ""
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title      string `json:"title"`
		Thumbnails struct {
			High struct {
				URL string `json:"url"`
			} `json:"high"`
		} `json:"thumbnails"`
	} `json:"snippet"`
}

type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title      string `json:"title"`
		Thumbnails struct {
			High struct {
				URL string `json:"url"`
			} `json:"high"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	LiveStreamingDetails struct {
		ScheduledStartTime string `json:"scheduledStartTime"`
		ConcurrentViewers  string `json:"concurrentViewers"`
	} `json:"liveStreamingDetails"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube api %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) channelID(ctx context.Context) (string, error) {
	var body struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	params := url.Values{}
	params.Set("part", "id")
	params.Set("forHandle", c.channelHandle)
	if err := c.get(ctx, "/channels", params, &body); err != nil {
		return "", err
	}
	if len(body.Items) == 0 {
		return "", fmt.Errorf("youtube channel %q not found", c.channelHandle)
	}
	return body.Items[0].ID, nil
}

func (c *Client) searchStreams(ctx context.Context, channelID, eventType string) ([]searchItem, error) {
	var body struct {
		Items []searchItem `json:"items"`
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("channelId", channelID)
	params.Set("eventType", eventType)
	params.Set("type", "video")
	params.Set("order", "date")
	params.Set("maxResults", "5")
	if err := c.get(ctx, "/search", params, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

func (c *Client) videoDetails(ctx context.Context, ids []string) ([]videoItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var body struct {
		Items []videoItem `json:"items"`
	}
	params := url.Values{}
	params.Set("part", "snippet,liveStreamingDetails")
	params.Set("id", strings.Join(ids, ","))
	if err := c.get(ctx, "/videos", params, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// Status checks for a live stream first, then falls back to the soonest
// scheduled one.
func (c *Client) Status(ctx context.Context) (Status, error) {
	if !c.Configured() {
		return Status{Message: "livestream not configured"}, nil
	}

	channelID, err := c.channelID(ctx)
	if err != nil {
		return Status{}, err
	}

	live, err := c.searchStreams(ctx, channelID, "live")
	if err != nil {
		return Status{}, err
	}
	if len(live) > 0 {
		videoID := live[0].ID.VideoID
		st := Status{
			IsLive:    true,
			VideoID:   videoID,
			Title:     live[0].Snippet.Title,
			Thumbnail: live[0].Snippet.Thumbnails.High.URL,
			EmbedURL:  "https://www.youtube.com/embed/" + videoID + "?autoplay=1",
			WatchURL:  "https://www.youtube.com/watch?v=" + videoID,
		}
		if details, err := c.videoDetails(ctx, []string{videoID}); err == nil && len(details) > 0 {
			st.Title = details[0].Snippet.Title
			st.Thumbnail = details[0].Snippet.Thumbnails.High.URL
			st.Viewers = details[0].LiveStreamingDetails.ConcurrentViewers
		}
		return st, nil
	}

	upcoming, err := c.searchStreams(ctx, channelID, "upcoming")
	if err != nil {
		return Status{}, err
	}
	if len(upcoming) > 0 {
		ids := make([]string, 0, len(upcoming))
		for _, s := range upcoming {
			ids = append(ids, s.ID.VideoID)
		}
		details, err := c.videoDetails(ctx, ids)
		if err != nil {
			return Status{}, err
		}

		scheduled := details[:0]
		for _, v := range details {
			if v.LiveStreamingDetails.ScheduledStartTime != "" {
				scheduled = append(scheduled, v)
			}
		}
		sort.Slice(scheduled, func(i, j int) bool {
			return scheduled[i].LiveStreamingDetails.ScheduledStartTime < scheduled[j].LiveStreamingDetails.ScheduledStartTime
		})
		if len(scheduled) > 0 {
			next := scheduled[0]
			return Status{
				HasUpcoming:        true,
				VideoID:            next.ID,
				Title:              next.Snippet.Title,
				Thumbnail:          next.Snippet.Thumbnails.High.URL,
				ScheduledStartTime: next.LiveStreamingDetails.ScheduledStartTime,
				WatchURL:           "https://www.youtube.com/watch?v=" + next.ID,
			}, nil
		}
	}

	return Status{Message: "no live or scheduled streams found"}, nil
}
