package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/voyager/internal/planner"
	"github.com/MikeSquared-Agency/voyager/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePlanner struct {
	mu     sync.Mutex
	chunks []string
	err    error
	tasks  []planner.Task
}

func (f *fakePlanner) Run(_ context.Context, task planner.Task, _ string, tap func(string)) (string, error) {
	f.mu.Lock()
	f.tasks = append(f.tasks, task)
	f.mu.Unlock()

	var sb strings.Builder
	for _, c := range f.chunks {
		sb.WriteString(c)
		if tap != nil {
			tap(c)
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return sb.String(), nil
}

func (f *fakePlanner) EstimateBudget(ctx context.Context, r planner.BudgetRequest) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	return f.Run(ctx, planner.TaskBudget, planner.BudgetPrompt(r), nil)
}

func (f *fakePlanner) PlanTrip(ctx context.Context, r planner.TripRequest) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	return f.Run(ctx, planner.TaskTrip, planner.TripPrompt(r), nil)
}

func (f *fakePlanner) RecommendMusic(ctx context.Context, r planner.MusicRequest) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	return f.Run(ctx, planner.TaskMusic, planner.MusicPrompt(r), nil)
}

func newTestServer(p Planner, a Accounts) *Server {
	return NewServer(8760, p, a, discardLogger())
}

func do(t *testing.T, srv *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dest); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

const tripBody = `{"origin":"Bangalore","destination":"Ooty","budget":40000,"travelers":2,"travel_style":"relaxing","duration":2}`

const tripText = "## Day 1\n9:00 AM - Visit Botanical Garden\n1:00 PM: Lunch at Nahar\n\n## Trip Summary\n- Total estimated cost: ₹38,000\n- Cost per person: ₹19,000\n"

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&fakePlanner{}, nil)

	w := do(t, srv, "GET", "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	decodeBody(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(&fakePlanner{}, nil)

	w := do(t, srv, "GET", "/api/v1/status", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	decodeBody(t, w, &body)
	if body["service"] != "voyager" {
		t.Errorf("expected service voyager, got %v", body["service"])
	}
	if body["accounts"] != false {
		t.Errorf("expected accounts false, got %v", body["accounts"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := newTestServer(&fakePlanner{}, nil)

	w := do(t, srv, "GET", "/nonexistent", "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAuthRoutesAbsentWithoutAccounts(t *testing.T) {
	srv := newTestServer(&fakePlanner{}, nil)

	w := do(t, srv, "POST", "/api/v1/auth/signin", `{"username":"a","password":"b"}`, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestPlanTrip(t *testing.T) {
	fp := &fakePlanner{chunks: []string{tripText[:20], tripText[20:]}}
	srv := newTestServer(fp, nil)

	w := do(t, srv, "POST", "/api/v1/trips", tripBody, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp tripResponse
	decodeBody(t, w, &resp)
	if resp.Text != tripText {
		t.Errorf("expected full text, got %q", resp.Text)
	}
	if len(resp.Itinerary) != 1 || len(resp.Itinerary[0].Activities) != 2 {
		t.Fatalf("expected one day with two activities, got %+v", resp.Itinerary)
	}
	if resp.Itinerary[0].Activities[1].Location != "Nahar" {
		t.Errorf("expected location Nahar, got %q", resp.Itinerary[0].Activities[1].Location)
	}
	if !strings.HasPrefix(resp.Summary, "## Trip Summary") {
		t.Errorf("unexpected summary %q", resp.Summary)
	}
	if len(resp.Rows) != 2 || resp.Rows[0].Label != "Total estimated cost" || resp.Rows[0].Value != "₹38,000" {
		t.Errorf("unexpected rows %+v", resp.Rows)
	}
}

func TestEstimateBudget(t *testing.T) {
	fp := &fakePlanner{chunks: []string{"Some costs.\n\n## Summary\n- Total: ₹12,000"}}
	srv := newTestServer(fp, nil)

	body := `{"origin":"Delhi","destination":"Agra","days":2,"travelers":2,"transportation":"public","accommodation":"hotel"}`
	w := do(t, srv, "POST", "/api/v1/budget", body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp budgetResponse
	decodeBody(t, w, &resp)
	if len(resp.Rows) != 1 || resp.Rows[0].Value != "₹12,000" {
		t.Errorf("unexpected rows %+v", resp.Rows)
	}
}

func TestRecommendMusic(t *testing.T) {
	srv := newTestServer(&fakePlanner{chunks: []string{"playlist"}}, nil)

	w := do(t, srv, "POST", "/api/v1/music", `{"genre":"Indie"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp musicResponse
	decodeBody(t, w, &resp)
	if resp.Text != "playlist" {
		t.Errorf("expected playlist, got %q", resp.Text)
	}
}

func TestPlanValidationError(t *testing.T) {
	fp := &fakePlanner{chunks: []string{"x"}}
	srv := newTestServer(fp, nil)

	body := strings.Replace(tripBody, `"budget":40000`, `"budget":10`, 1)
	w := do(t, srv, "POST", "/api/v1/trips", body, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, w, &resp)
	if resp.Fields["budget"] == "" {
		t.Errorf("expected budget field error, got %+v", resp.Fields)
	}
	if len(fp.tasks) != 0 {
		t.Errorf("expected no generation, got %v", fp.tasks)
	}
}

func TestPlanBadJSON(t *testing.T) {
	srv := newTestServer(&fakePlanner{}, nil)

	for _, body := range []string{`{"genre":`, `{"genre":"Pop","extra":1}`} {
		w := do(t, srv, "POST", "/api/v1/music", body, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestPlanUpstreamError(t *testing.T) {
	srv := newTestServer(&fakePlanner{err: errors.New("api error 500: secret detail")}, nil)

	w := do(t, srv, "POST", "/api/v1/music", `{"genre":"Pop"}`, "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret detail") {
		t.Error("upstream detail must not leak to the client")
	}
}

func TestStreamTrip(t *testing.T) {
	fp := &fakePlanner{chunks: []string{"## Day 1\n", "9:00 AM - Visit Fort"}}
	srv := newTestServer(fp, nil)

	w := do(t, srv, "POST", "/api/v1/trips/stream", tripBody, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}

	events := parseEvents(t, w.Body.String())
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %+v", events)
	}
	if events[0].Type != eventChunk || events[0].Data != "## Day 1\n" {
		t.Errorf("unexpected first chunk %+v", events[0])
	}
	if events[1].Type != eventChunk || events[1].Data != "9:00 AM - Visit Fort" {
		t.Errorf("unexpected second chunk %+v", events[1])
	}
	if events[2].Type != eventDone {
		t.Fatalf("expected done event, got %+v", events[2])
	}

	var done tripResponse
	if err := json.Unmarshal([]byte(events[2].Data), &done); err != nil {
		t.Fatalf("done payload: %v", err)
	}
	if done.Text != "## Day 1\n9:00 AM - Visit Fort" || len(done.Itinerary) != 1 {
		t.Errorf("unexpected done payload %+v", done)
	}
}

func TestStreamError(t *testing.T) {
	fp := &fakePlanner{chunks: []string{"partial"}, err: errors.New("boom")}
	srv := newTestServer(fp, nil)

	w := do(t, srv, "POST", "/api/v1/music/stream", `{"genre":"Pop"}`, "")
	events := parseEvents(t, w.Body.String())
	if len(events) != 2 {
		t.Fatalf("expected chunk then error, got %+v", events)
	}
	if events[1].Type != eventError || events[1].Data != upstreamFailure {
		t.Errorf("unexpected error event %+v", events[1])
	}
}

func TestStreamValidationBeforeHeaders(t *testing.T) {
	fp := &fakePlanner{}
	srv := newTestServer(fp, nil)

	w := do(t, srv, "POST", "/api/v1/budget/stream", `{"origin":"Delhi"}`, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error, got %q", ct)
	}
	if len(fp.tasks) != 0 {
		t.Errorf("expected no generation, got %v", fp.tasks)
	}
}

// fakeAccounts keeps profiles and sessions in memory.
type fakeAccounts struct {
	mu       sync.Mutex
	profiles []store.Profile
	sessions map[string]uuid.UUID
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{sessions: map[string]uuid.UUID{}}
}

func (f *fakeAccounts) add(username, role string) (store.Profile, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := store.Profile{ID: uuid.New(), Username: username, Role: role, CreatedAt: time.Now()}
	f.profiles = append(f.profiles, p)
	token := uuid.NewString()
	f.sessions[token] = p.ID
	return p, token
}

func (f *fakeAccounts) find(id uuid.UUID) int {
	for i, p := range f.profiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeAccounts) SignUp(_ context.Context, username, password string) (*store.Session, error) {
	if err := store.ValidateCredentials(username, password); err != nil {
		return nil, err
	}
	f.mu.Lock()
	for _, p := range f.profiles {
		if p.Username == username {
			f.mu.Unlock()
			return nil, store.ErrUsernameTaken
		}
	}
	role := store.RoleUser
	if len(f.profiles) == 0 {
		role = store.RoleAdmin
	}
	f.mu.Unlock()
	p, token := f.add(username, role)
	return &store.Session{Token: token, Profile: p}, nil
}

func (f *fakeAccounts) SignIn(_ context.Context, username, password string) (*store.Session, error) {
	f.mu.Lock()
	var found *store.Profile
	for i := range f.profiles {
		if f.profiles[i].Username == username {
			found = &f.profiles[i]
		}
	}
	f.mu.Unlock()
	if found == nil || password != "secret1" {
		return nil, store.ErrInvalidCredentials
	}
	token := uuid.NewString()
	f.mu.Lock()
	f.sessions[token] = found.ID
	f.mu.Unlock()
	return &store.Session{Token: token, Profile: *found}, nil
}

func (f *fakeAccounts) SignOut(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeAccounts) CurrentUser(_ context.Context, token string) (*store.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.sessions[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	p := f.profiles[f.find(id)]
	return &p, nil
}

func (f *fakeAccounts) GetProfile(_ context.Context, id uuid.UUID) (*store.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	p := f.profiles[i]
	return &p, nil
}

func (f *fakeAccounts) ListProfiles(context.Context) ([]store.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.Profile(nil), f.profiles...), nil
}

func (f *fakeAccounts) UpdateRole(_ context.Context, id uuid.UUID, role string) (*store.Profile, error) {
	if role != store.RoleUser && role != store.RoleAdmin {
		return nil, store.ErrInvalidRole
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	f.profiles[i].Role = role
	p := f.profiles[i]
	return &p, nil
}
