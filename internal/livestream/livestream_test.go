package livestream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeYouTube serves canned Data API responses keyed by path and eventType.
func fakeYouTube(t *testing.T, live, upcoming string, videos string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "" {
			t.Errorf("missing api key on %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/channels":
			w.Write([]byte(`{"items":[{"id":"UC123"}]}`))
		case "/search":
			switch r.URL.Query().Get("eventType") {
			case "live":
				w.Write([]byte(live))
			case "upcoming":
				w.Write([]byte(upcoming))
			default:
				t.Errorf("unexpected eventType %q", r.URL.Query().Get("eventType"))
			}
		case "/videos":
			w.Write([]byte(videos))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testClient(baseURL string) *Client {
	c := NewClient("test-key", "@SaintKyrillosTN")
	c.BaseURL = baseURL
	return c
}

func TestStatusLive(t *testing.T) {
	srv := fakeYouTube(t,
		`{"items":[{"id":{"videoId":"live1"},"snippet":{"title":"Divine Liturgy","thumbnails":{"high":{"url":"http://img/1"}}}}]}`,
		`{"items":[]}`,
		`{"items":[{"id":"live1","snippet":{"title":"Divine Liturgy (Live)","thumbnails":{"high":{"url":"http://img/1hq"}}},"liveStreamingDetails":{"concurrentViewers":"42"}}]}`,
	)
	defer srv.Close()

	st, err := testClient(srv.URL).Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !st.IsLive || st.HasUpcoming {
		t.Fatalf("expected live status, got %+v", st)
	}
	if st.VideoID != "live1" || st.Viewers != "42" {
		t.Fatalf("unexpected status %+v", st)
	}
	if st.EmbedURL != "https://www.youtube.com/embed/live1?autoplay=1" {
		t.Fatalf("unexpected embed url %q", st.EmbedURL)
	}
	if st.Title != "Divine Liturgy (Live)" {
		t.Fatalf("expected video details title, got %q", st.Title)
	}
}

func TestStatusUpcomingPicksSoonest(t *testing.T) {
	srv := fakeYouTube(t,
		`{"items":[]}`,
		`{"items":[{"id":{"videoId":"u1"},"snippet":{"title":"Vespers"}},{"id":{"videoId":"u2"},"snippet":{"title":"Matins"}}]}`,
		`{"items":[
			{"id":"u1","snippet":{"title":"Vespers","thumbnails":{"high":{"url":"http://img/v"}}},"liveStreamingDetails":{"scheduledStartTime":"2026-03-01T18:00:00Z"}},
			{"id":"u2","snippet":{"title":"Matins","thumbnails":{"high":{"url":"http://img/m"}}},"liveStreamingDetails":{"scheduledStartTime":"2026-03-01T08:00:00Z"}}
		]}`,
	)
	defer srv.Close()

	st, err := testClient(srv.URL).Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if st.IsLive || !st.HasUpcoming {
		t.Fatalf("expected upcoming status, got %+v", st)
	}
	if st.VideoID != "u2" || st.Title != "Matins" {
		t.Fatalf("expected soonest stream, got %+v", st)
	}
	if st.ScheduledStartTime != "2026-03-01T08:00:00Z" {
		t.Fatalf("unexpected start time %q", st.ScheduledStartTime)
	}
}

func TestStatusNoStreams(t *testing.T) {
	srv := fakeYouTube(t, `{"items":[]}`, `{"items":[]}`, `{"items":[]}`)
	defer srv.Close()

	st, err := testClient(srv.URL).Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if st.IsLive || st.HasUpcoming || st.Message == "" {
		t.Fatalf("expected empty status with message, got %+v", st)
	}
}

func TestStatusUnconfigured(t *testing.T) {
	st, err := NewClient("", "").Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if st.IsLive || st.HasUpcoming {
		t.Fatalf("unconfigured client must report offline, got %+v", st)
	}
}
