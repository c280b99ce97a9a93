package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"fleetsync-backend/internal/auth"
	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/models"
	"fleetsync-backend/internal/profile"
	"fleetsync-backend/internal/repository"
)

var fixedNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

// fakeProvider keeps accounts in a map.
type fakeProvider struct {
	mu    sync.Mutex
	users map[string]string // email -> password
}

func (p *fakeProvider) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(password) < 6 {
		return nil, auth.ErrWeakPassword
	}
	if _, ok := p.users[email]; ok {
		return nil, auth.ErrEmailTaken
	}
	p.users[email] = password
	return &models.Identity{UID: "uid-" + email, Email: email, Role: "driver"}, nil
}

func (p *fakeProvider) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pw, ok := p.users[email]; !ok || pw != password {
		return nil, auth.ErrInvalidCredentials
	}
	return &models.Identity{UID: "uid-" + email, Email: email, Role: "driver"}, nil
}

func (p *fakeProvider) SignOut(ctx context.Context) error { return nil }

func (p *fakeProvider) Restore(ctx context.Context) (*models.Identity, error) { return nil, nil }

type fakeGeocoder struct{ err error }

func (g fakeGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "MG Road, Bengaluru", nil
}

type fakeNotifier struct {
	alerts []models.EmergencyAlert
	err    error
}

func (n *fakeNotifier) SendEmergencyAlert(ctx context.Context, alert models.EmergencyAlert) error {
	n.alerts = append(n.alerts, alert)
	return n.err
}

type fakeBroadcaster struct {
	messages []interface{}
	toUser   map[string][]interface{}
}

func (b *fakeBroadcaster) BroadcastToRole(role string, data interface{}) int {
	b.messages = append(b.messages, data)
	return 1
}

func (b *fakeBroadcaster) BroadcastToUser(userID string, data interface{}) {
	if b.toUser == nil {
		b.toUser = make(map[string][]interface{})
	}
	b.toUser[userID] = append(b.toUser[userID], data)
}

type testEnv struct {
	handler  http.Handler
	tokens   *auth.Tokens
	store    *livestore.Memory
	repo     *repository.StoreRepository
	notifier *fakeNotifier
	bcast    *fakeBroadcaster
}

func newTestEnv(t *testing.T, geocoder AddressLookup) *testEnv {
	t.Helper()
	tokens, err := auth.NewTokens("test-secret")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	store := livestore.NewMemory()
	t.Cleanup(func() { store.Close() })
	now := func() time.Time { return fixedNow }
	repo := repository.NewStoreRepository(store).WithClock(now)
	notifier := &fakeNotifier{}
	bcast := &fakeBroadcaster{}

	handler := NewRouter(RouterDeps{
		Provider:  &fakeProvider{users: map[string]string{"d1@fleetsync.dev": "secret1"}},
		Tokens:    tokens,
		LiveStore: store,
		Profiles:  profile.NewMemory().WithClock(now),
		Repo:      repo,
		Emergency: EmergencyDeps{
			Repo:        repo,
			Geocoder:    geocoder,
			Notifier:    notifier,
			Broadcaster: bcast,
			Now:         now,
		},
		Now: now,
	})
	return &testEnv{handler: handler, tokens: tokens, store: store, repo: repo, notifier: notifier, bcast: bcast}
}

func (e *testEnv) token(t *testing.T, uid, role string) string {
	t.Helper()
	token, err := e.tokens.Issue(&models.Identity{UID: uid, Email: uid + "@fleetsync.dev", Role: role})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/auth/signup", "", LoginRequest{Email: "new@fleetsync.dev", Password: "hunter22"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	var session LoginResponse
	decode(t, rec, &session)
	if !session.OK || session.Token == "" || session.User.ID != "uid-new@fleetsync.dev" {
		t.Fatalf("unexpected session %+v", session)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/signup", "", LoginRequest{Email: "new@fleetsync.dev", Password: "hunter22"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup: expected 409, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "d1@fleetsync.dev", Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login: expected 401, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/auth/status", session.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", rec.Code)
	}
	var status struct {
		User models.Identity `json:"user"`
	}
	decode(t, rec, &status)
	if status.User.UID != "uid-new@fleetsync.dev" {
		t.Errorf("unexpected status user %+v", status.User)
	}

	if rec := env.do(t, http.MethodGet, "/api/auth/status", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("status without token: expected 401, got %d", rec.Code)
	}
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.token(t, "D1", "driver")

	if rec := env.do(t, http.MethodGet, "/api/driver/profile", token, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 before registration, got %d", rec.Code)
	}

	body := map[string]string{"fullName": "Asha Rao", "vehicleType": "bus", "status": "approved"}
	rec := env.do(t, http.MethodPut, "/api/driver/profile", token, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var p models.DriverProfile
	decode(t, rec, &p)
	if p.UID != "D1" || p.FullName != "Asha Rao" {
		t.Errorf("unexpected profile %+v", p)
	}
	if p.Status != "pending" {
		t.Errorf("drivers must not approve themselves, got status %q", p.Status)
	}
	if !p.CreatedAt.Equal(fixedNow) {
		t.Errorf("unexpected createdAt %s", p.CreatedAt)
	}

	if rec := env.do(t, http.MethodPut, "/api/driver/profile", token, map[string]string{"nickname": "x"}); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field: expected 400, got %d", rec.Code)
	}
}

func TestLocation(t *testing.T) {
	env := newTestEnv(t, nil)
	d1 := env.token(t, "D1", "driver")
	d2 := env.token(t, "D2", "driver")
	admin := env.token(t, "A1", "admin")

	if rec := env.do(t, http.MethodGet, "/api/drivers/D1/location", d1, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 before publish, got %d", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/driver/location", d1, LocationRequest{Latitude: 12.9, Longitude: 77.6})
	if rec.Code != http.StatusOK {
		t.Fatalf("publish: expected 200, got %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/drivers/D1/location", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("read: expected 200, got %d", rec.Code)
	}
	var loc models.DriverLocation
	decode(t, rec, &loc)
	if loc.DriverID != "D1" || loc.CurrentLatitude != 12.9 || loc.CurrentLongitude != 77.6 {
		t.Errorf("unexpected location %+v", loc)
	}
	if loc.LastUpdated != fixedNow.Format(time.RFC3339Nano) {
		t.Errorf("unexpected lastUpdated %s", loc.LastUpdated)
	}

	if rec := env.do(t, http.MethodGet, "/api/drivers/D1/location", d2, nil); rec.Code != http.StatusForbidden {
		t.Errorf("other driver: expected 403, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/driver/location", d1, LocationRequest{Latitude: 123, Longitude: 0}); rec.Code != http.StatusBadRequest {
		t.Errorf("out of range: expected 400, got %d", rec.Code)
	}
}

func TestTrips(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	if err := env.repo.Load(ctx, repository.Fixtures("D1", fixedNow)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	d1 := env.token(t, "D1", "driver")

	rec := env.do(t, http.MethodGet, "/api/driver/trips/active", d1, nil)
	var trips []models.Trip
	decode(t, rec, &trips)
	if len(trips) != 2 {
		t.Fatalf("expected 2 active trips, got %d", len(trips))
	}

	rec = env.do(t, http.MethodPatch, "/api/trips/trip-D1-1/status", d1, map[string]interface{}{"status": "completed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/driver/trips/active", d1, nil)
	decode(t, rec, &trips)
	if len(trips) != 1 || trips[0].ID != "trip-D1-2" {
		t.Errorf("expected only trip-D1-2 active, got %+v", trips)
	}

	d2 := env.token(t, "D2", "driver")
	rec = env.do(t, http.MethodPatch, "/api/trips/trip-D1-2/status", d2, map[string]interface{}{"status": "boarding"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign trip: expected 403, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPatch, "/api/trips/nope/status", d1, map[string]interface{}{"status": "boarding"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing trip: expected 404, got %d", rec.Code)
	}
}

func TestSchedulesRatingsDashboard(t *testing.T) {
	env := newTestEnv(t, nil)
	if err := env.repo.Load(context.Background(), repository.Fixtures("D1", fixedNow)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	d1 := env.token(t, "D1", "driver")

	var schedules []models.Schedule
	decode(t, env.do(t, http.MethodGet, "/api/driver/schedules", d1, nil), &schedules)
	if len(schedules) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(schedules))
	}

	rec := env.do(t, http.MethodPatch, "/api/driver/schedules/shift-D1-1", d1, map[string]string{"status": "maybe"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad status: expected 400, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPatch, "/api/driver/schedules/shift-D1-1", d1, map[string]string{"status": "declined"})
	if rec.Code != http.StatusOK {
		t.Fatalf("decline: expected 200, got %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPut, "/api/driver/ratings/trip-D1-2", d1, RatingRequest{Stars: 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("rate: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPut, "/api/driver/ratings/trip-D1-2", d1, RatingRequest{Stars: 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero stars: expected 400, got %d", rec.Code)
	}

	var summary models.DashboardSummary
	decode(t, env.do(t, http.MethodGet, "/api/driver/dashboard", d1, nil), &summary)
	if summary.RatingCount != 2 || summary.AverageRating != 4 {
		t.Errorf("unexpected rating summary %+v", summary)
	}
	if summary.UpcomingShifts != 1 {
		t.Errorf("expected declined shift excluded, got %d", summary.UpcomingShifts)
	}
}

func TestEmergencyAlert(t *testing.T) {
	env := newTestEnv(t, fakeGeocoder{})
	d1 := env.token(t, "D1", "driver")

	body := EmergencyRequest{Kind: models.EmergencyAccident, Message: "minor collision", Latitude: 12.97, Longitude: 77.59}
	rec := env.do(t, http.MethodPost, "/api/driver/emergency", d1, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	var alert models.EmergencyAlert
	decode(t, rec, &alert)
	if alert.DriverID != "D1" || alert.Address != "MG Road, Bengaluru" || alert.ID == "" {
		t.Errorf("unexpected alert %+v", alert)
	}

	stored, err := env.store.Get(context.Background(), repository.AlertPath("D1", alert.ID))
	if err != nil || stored == nil {
		t.Fatalf("expected stored alert, got %v %v", stored, err)
	}
	if len(env.notifier.alerts) != 1 || len(env.bcast.messages) != 1 {
		t.Errorf("expected one push and one broadcast, got %d/%d", len(env.notifier.alerts), len(env.bcast.messages))
	}
	acks := env.bcast.toUser["D1"]
	if len(acks) != 1 {
		t.Fatalf("expected one ack to the reporting driver, got %d", len(acks))
	}
	ack := acks[0].(map[string]interface{})
	if ack["type"] != "emergency_ack" || ack["data"].(map[string]interface{})["alertId"] != alert.ID {
		t.Errorf("unexpected ack %+v", ack)
	}

	if rec := env.do(t, http.MethodPost, "/api/driver/emergency", d1, EmergencyRequest{Kind: "alien", Message: "x"}); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: expected 400, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/driver/emergency", d1, EmergencyRequest{Kind: models.EmergencyOther, Message: "  "}); rec.Code != http.StatusBadRequest {
		t.Errorf("blank message: expected 400, got %d", rec.Code)
	}
}

func TestEmergencyAlert_SurvivesGeocodeAndPushFailures(t *testing.T) {
	env := newTestEnv(t, fakeGeocoder{err: errors.New("quota exceeded")})
	env.notifier.err = errors.New("fcm down")
	d1 := env.token(t, "D1", "driver")

	body := EmergencyRequest{Kind: models.EmergencyBreakdown, Message: "engine failure", Latitude: 12.97, Longitude: 77.59}
	rec := env.do(t, http.MethodPost, "/api/driver/emergency", d1, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `"address"`) {
		t.Errorf("expected no address, got %s", rec.Body.String())
	}
}
