package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/liftlens/internal/app"
	"github.com/ayusman/liftlens/internal/detector"
	"github.com/ayusman/liftlens/internal/fixtures"
	"github.com/ayusman/liftlens/internal/metrics"
	"github.com/ayusman/liftlens/internal/server"
	"github.com/ayusman/liftlens/internal/server/api"
	"github.com/ayusman/liftlens/internal/store"
	"github.com/ayusman/liftlens/internal/technique"
)

type stack struct {
	ts   *httptest.Server
	feed *server.Feed
}

func newStack(t *testing.T) *stack {
	t.Helper()

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}

	m, reg := metrics.NewTestManagerAndRegistry()
	feed := server.NewFeed(m)
	application := app.New(app.Config{
		Store:     s,
		Detector:  detector.NewMockDetector(),
		Metrics:   m,
		Publisher: feed,
		OutputDir: tmpDir,
	})

	srv := server.New(server.Config{
		App:       application,
		Feed:      feed,
		Metrics:   m,
		Gatherer:  reg,
		UploadDir: tmpDir,
	})
	ts := httptest.NewServer(srv)

	t.Cleanup(func() {
		feed.Close()
		ts.Close()
		application.Close()
	})

	return &stack{ts: ts, feed: feed}
}

func (s *stack) postLandmarks(t *testing.T, exerciseID string, seq []*detector.PoseLandmarks) api.AnalysisResponse {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"exercise_id": exerciseID,
		"frames":      fixtures.Frames(seq),
	})
	if err != nil {
		t.Fatalf("marshal error = %v", err)
	}

	resp, err := s.ts.Client().Post(s.ts.URL+"/api/analyses", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post analysis error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var out api.AnalysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	return out
}

func feedbackFor(r api.AnalysisResponse, aspect string) (technique.FeedbackItem, bool) {
	for _, it := range r.Feedback {
		if it.Aspect == aspect {
			return it, true
		}
	}
	return technique.FeedbackItem{}, false
}

func TestE2E_SquatScenarios(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st := newStack(t)

	tests := []struct {
		name      string
		seq       []*detector.PoseLandmarks
		wantScore technique.Score
		want      map[string]technique.Severity
	}{
		{
			name:      "deep and upright",
			seq:       fixtures.SquatRep(31, 85, 30),
			wantScore: technique.Good,
			want:      map[string]technique.Severity{"depth": technique.OK, "back_position": technique.OK},
		},
		{
			name:      "partial depth",
			seq:       fixtures.SquatRep(31, 105, 30),
			wantScore: technique.NeedsImprovement,
			want:      map[string]technique.Severity{"depth": technique.Warning, "back_position": technique.OK},
		},
		{
			name:      "quarter squat",
			seq:       fixtures.SquatRep(31, 130, 20),
			wantScore: technique.Poor,
			want:      map[string]technique.Severity{"depth": technique.Error},
		},
		{
			name:      "excessive lean",
			seq:       fixtures.SquatRep(31, 85, 60),
			wantScore: technique.Poor,
			want:      map[string]technique.Severity{"depth": technique.OK, "back_position": technique.Error},
		},
		{
			name:      "dropped frames",
			seq:       fixtures.WithGaps(fixtures.SquatRep(31, 85, 30), 5),
			wantScore: technique.Good,
			want:      map[string]technique.Severity{"depth": technique.OK, "back_position": technique.OK},
		},
		{
			name:      "filmed from the front",
			seq:       fixtures.FrontStanding(30),
			wantScore: technique.Poor,
			want:      map[string]technique.Severity{technique.AspectCameraAngle: technique.Error},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := st.postLandmarks(t, "squat", tt.seq)

			if got.OverallScore != tt.wantScore {
				t.Errorf("overall = %s, want %s (%+v)", got.OverallScore, tt.wantScore, got.Feedback)
			}
			for aspect, sev := range tt.want {
				item, ok := feedbackFor(got, aspect)
				if !ok {
					t.Errorf("missing %s feedback in %+v", aspect, got.Feedback)
					continue
				}
				if item.Status != sev {
					t.Errorf("%s = %s, want %s (%s)", aspect, item.Status, sev, item.Message)
				}
			}
		})
	}
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st := newStack(t)
	client := st.ts.Client()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(st.ts.URL, "http")+"/api/live", nil)
	if err != nil {
		t.Fatalf("dial live feed error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for st.feed.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	var created api.AnalysisResponse
	t.Run("CreateAnalysis", func(t *testing.T) {
		created = st.postLandmarks(t, "squat", fixtures.SquatRep(31, 85, 30))
		if created.OverallScore != technique.Good {
			t.Fatalf("overall = %s, want %s", created.OverallScore, technique.Good)
		}
	})

	t.Run("LiveFeed", func(t *testing.T) {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read live message error = %v", err)
		}

		var pushed api.AnalysisResponse
		if err := json.Unmarshal(msg, &pushed); err != nil {
			t.Fatalf("decode live message error = %v", err)
		}
		if pushed.ID != created.ID {
			t.Errorf("pushed id = %s, want %s", pushed.ID, created.ID)
		}
	})

	t.Run("CreateUnsupported", func(t *testing.T) {
		got := st.postLandmarks(t, "bulgarian_split_squat", fixtures.SquatRep(11, 85, 30))
		if got.OverallScore != technique.Poor {
			t.Errorf("overall = %s, want %s", got.OverallScore, technique.Poor)
		}
	})

	t.Run("ListAnalyses", func(t *testing.T) {
		resp, err := client.Get(st.ts.URL + "/api/analyses?exercise_id=squat")
		if err != nil {
			t.Fatalf("list error = %v", err)
		}
		defer resp.Body.Close()

		var list struct {
			Analyses []api.AnalysisResponse `json:"analyses"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if len(list.Analyses) != 1 {
			t.Fatalf("got %d squat analyses, want 1", len(list.Analyses))
		}
		if list.Analyses[0].ID != created.ID {
			t.Errorf("listed id = %s, want %s", list.Analyses[0].ID, created.ID)
		}
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := client.Get(st.ts.URL + "/metrics")
		if err != nil {
			t.Fatalf("metrics error = %v", err)
		}
		defer resp.Body.Close()

		var buf bytes.Buffer
		buf.ReadFrom(resp.Body)
		if !strings.Contains(buf.String(), `liftlens_test_analyses{exercise="squat",score="good"} 1`) {
			t.Errorf("squat analysis not counted in metrics output")
		}
	})

	t.Run("DeleteAnalysis", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, st.ts.URL+"/api/analyses/"+created.ID, nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("delete error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
		}

		resp, err = client.Get(st.ts.URL + "/api/analyses/" + created.ID)
		if err != nil {
			t.Fatalf("get error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})
}
