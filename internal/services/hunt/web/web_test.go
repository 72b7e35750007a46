package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/louisbranch/trailhunt/internal/services/hunt/domain"
	"github.com/louisbranch/trailhunt/internal/services/hunt/engine"
	"github.com/louisbranch/trailhunt/internal/services/hunt/storage/memory"
)

type webFixture struct {
	handler  http.Handler
	store    *memory.Store
	pass     *TeamPass
	advanced chan error
}

func newWebFixture(t *testing.T) webFixture {
	t.Helper()
	store := memory.NewStore()
	advanced := make(chan error, 8)
	e := engine.New(engine.Config{
		Teams:    store,
		Clues:    store,
		Progress: store,
		Tracks:   domain.DefaultTracks(),
		Sleep:    func(ctx context.Context, d time.Duration) error { return nil },
		Logf:     func(string, ...any) {},
		OnAdvanceResult: func(team string, position int, err error) {
			advanced <- err
		},
	})
	key, err := GenerateTeamPassKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	pass, err := NewTeamPass(TeamPassConfig{Key: key})
	if err != nil {
		t.Fatalf("build team pass: %v", err)
	}
	return webFixture{
		handler:  NewHandler(e, pass),
		store:    store,
		pass:     pass,
		advanced: advanced,
	}
}

func (f webFixture) seedClue(t *testing.T, clue domain.Clue) {
	t.Helper()
	if err := f.store.PutClue(context.Background(), clue); err != nil {
		t.Fatalf("seed clue: %v", err)
	}
}

func (f webFixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func (f webFixture) register(t *testing.T, code, name, group string) *http.Cookie {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"code": code, "name": name, "group": group})
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(body))
	w := f.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d body %s", w.Code, w.Body.String())
	}
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == teamPassCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("no team pass cookie issued")
	return nil
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func (f webFixture) waitAdvance(t *testing.T) {
	t.Helper()
	select {
	case err := <-f.advanced:
		if err != nil {
			t.Fatalf("advance write: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for advance write")
	}
}

func TestHuntWithoutIdentityPromptsRegistration(t *testing.T) {
	f := newWebFixture(t)

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/api/hunt?code=1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	view := decodeBody[huntView](t, w)
	if view.State != "registering" {
		t.Fatalf("state = %q, want registering", view.State)
	}
}

func TestHuntInvalidLocator(t *testing.T) {
	f := newWebFixture(t)

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/api/hunt?code=banana", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	payload := decodeBody[map[string]errorView](t, w)
	if payload["error"].Code != "LOCATOR_INVALID" {
		t.Fatalf("code = %q", payload["error"].Code)
	}
	if payload["error"].Message != "Invalid QR code." {
		t.Fatalf("message = %q", payload["error"].Message)
	}
}

func TestRegisterIssuesPassAndGates(t *testing.T) {
	f := newWebFixture(t)
	f.seedClue(t, domain.Clue{Group: domain.GroupRed, Position: 1, Question: "Stored?", Answer: "42"})

	cookie := f.register(t, "1", "Falcons", "red")

	req := httptest.NewRequest(http.MethodGet, "/api/hunt?code=1", nil)
	req.AddCookie(cookie)
	w := f.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	view := decodeBody[huntView](t, w)
	if view.State != "answering" {
		t.Fatalf("state = %q, want answering", view.State)
	}
	if view.Question != "Stored?" {
		t.Fatalf("question = %q", view.Question)
	}
	if view.Progress != "Clue #1 · Falcons" {
		t.Fatalf("progress = %q", view.Progress)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newWebFixture(t)

	body, _ := json.Marshal(map[string]string{"code": "1", "name": "  ", "group": "red"})
	w := f.do(t, httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(body)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	payload := decodeBody[map[string]errorView](t, w)
	if payload["error"].Code != "TEAM_NAME_EMPTY" {
		t.Fatalf("code = %q", payload["error"].Code)
	}
}

func TestAnswerLifecycle(t *testing.T) {
	f := newWebFixture(t)
	f.seedClue(t, domain.Clue{Group: domain.GroupRed, Position: 1, Question: "Q1", Answer: "42", Hint: "Go north"})
	f.seedClue(t, domain.Clue{Group: domain.GroupRed, Position: 2, Question: "Q2", Answer: "X"})
	f.seedClue(t, domain.Clue{Group: domain.GroupRed, Position: 5, Question: "Q5", Answer: "Y"})

	cookie := f.register(t, "1", "Falcons", "red")
	answer := func(code, value string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"code": code, "answer": value})
		req := httptest.NewRequest(http.MethodPost, "/api/answer", bytes.NewReader(body))
		req.AddCookie(cookie)
		return f.do(t, req)
	}

	w := answer("1", "forty-two")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	wrong := decodeBody[answerView](t, w)
	if wrong.Verdict != "try_again" {
		t.Fatalf("verdict = %q", wrong.Verdict)
	}
	if wrong.Message != "Try again!" {
		t.Fatalf("message = %q", wrong.Message)
	}

	right := decodeBody[answerView](t, answer("1", " 42 "))
	if right.Verdict != "correct" {
		t.Fatalf("verdict = %q", right.Verdict)
	}
	if right.Hint != "Go north" {
		t.Fatalf("hint = %q", right.Hint)
	}
	if right.RevealDelayMillis != 600 {
		t.Fatalf("reveal delay = %d, want 600", right.RevealDelayMillis)
	}
	f.waitAdvance(t)

	// The solved clue becomes a read-only hint view.
	req := httptest.NewRequest(http.MethodGet, "/api/hunt?code=1", nil)
	req.AddCookie(cookie)
	solved := decodeBody[huntView](t, f.do(t, req))
	if solved.State != "read_only" {
		t.Fatalf("state = %q, want read_only", solved.State)
	}
	if solved.Hint != "Go north" {
		t.Fatalf("hint = %q", solved.Hint)
	}

	// Skipping ahead names the exact position to solve next.
	req = httptest.NewRequest(http.MethodGet, "/api/hunt?code=5", nil)
	req.AddCookie(cookie)
	blocked := decodeBody[huntView](t, f.do(t, req))
	if blocked.State != "blocked" {
		t.Fatalf("state = %q, want blocked", blocked.State)
	}
	if blocked.Message != "You must solve Clue #2 first." {
		t.Fatalf("message = %q", blocked.Message)
	}

	// Submitting against a gated position is a conflict, not an evaluation.
	w = answer("5", "Y")
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestAnswerDefaultsHint(t *testing.T) {
	f := newWebFixture(t)
	f.seedClue(t, domain.Clue{Group: domain.GroupRed, Position: 1, Question: "Q1", Answer: "42"})

	cookie := f.register(t, "1", "Falcons", "red")
	body, _ := json.Marshal(map[string]string{"code": "1", "answer": "42"})
	req := httptest.NewRequest(http.MethodPost, "/api/answer", bytes.NewReader(body))
	req.AddCookie(cookie)

	out := decodeBody[answerView](t, f.do(t, req))
	if out.Verdict != "correct" {
		t.Fatalf("verdict = %q", out.Verdict)
	}
	if out.Hint != "Well done! Find the next QR code to continue." {
		t.Fatalf("hint = %q", out.Hint)
	}
	f.waitAdvance(t)
}

func TestAnswerWithoutPass(t *testing.T) {
	f := newWebFixture(t)

	body, _ := json.Marshal(map[string]string{"code": "1", "answer": "42"})
	w := f.do(t, httptest.NewRequest(http.MethodPost, "/api/answer", bytes.NewReader(body)))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	payload := decodeBody[map[string]errorView](t, w)
	if payload["error"].Code != "TEAM_UNREGISTERED" {
		t.Fatalf("code = %q", payload["error"].Code)
	}
}

func TestStalePassIsPurged(t *testing.T) {
	f := newWebFixture(t)

	// A pass signed for a team the store no longer knows.
	token, err := f.pass.Issue(domain.Team{Name: "Ghosts", Group: domain.GroupRed})
	if err != nil {
		t.Fatalf("issue pass: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/hunt?code=1", nil)
	req.AddCookie(&http.Cookie{Name: teamPassCookieName, Value: token})
	w := f.do(t, req)

	view := decodeBody[huntView](t, w)
	if view.State != "registering" {
		t.Fatalf("state = %q, want registering", view.State)
	}
	if !view.StaleIdentity {
		t.Fatal("expected stale identity marker")
	}
	assertCookieCleared(t, w)
}

func TestTamperedPassIsPurged(t *testing.T) {
	f := newWebFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/hunt?code=1", nil)
	req.AddCookie(&http.Cookie{Name: teamPassCookieName, Value: "not-a-jwt"})
	w := f.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	view := decodeBody[huntView](t, w)
	if view.State != "registering" {
		t.Fatalf("state = %q, want registering", view.State)
	}
	assertCookieCleared(t, w)
}

func TestAnswerLocalizedPtBR(t *testing.T) {
	f := newWebFixture(t)
	f.seedClue(t, domain.Clue{Group: domain.GroupRed, Position: 1, Question: "Q1", Answer: "42"})

	cookie := f.register(t, "1", "Falcons", "red")
	body, _ := json.Marshal(map[string]string{"code": "1", "answer": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/answer", bytes.NewReader(body))
	req.AddCookie(cookie)
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")

	out := decodeBody[answerView](t, f.do(t, req))
	if out.Message != "Tente de novo!" {
		t.Fatalf("message = %q", out.Message)
	}
}

func TestTeamPassRejectsForeignKey(t *testing.T) {
	f := newWebFixture(t)

	otherKey, err := GenerateTeamPassKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	other, err := NewTeamPass(TeamPassConfig{Key: otherKey})
	if err != nil {
		t.Fatalf("build team pass: %v", err)
	}
	token, err := other.Issue(domain.Team{Name: "Falcons", Group: domain.GroupRed})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := f.pass.Verify(token); err == nil {
		t.Fatal("expected verification failure for foreign signature")
	}
}

func TestTeamPassExpiry(t *testing.T) {
	key, err := GenerateTeamPassKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	now := time.Now()
	pass, err := NewTeamPass(TeamPassConfig{Key: key, TTL: time.Hour, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("build team pass: %v", err)
	}
	token, err := pass.Issue(domain.Team{Name: "Falcons", Group: domain.GroupRed})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := pass.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.TeamName != "Falcons" || claims.Group != domain.GroupRed {
		t.Fatalf("claims = %+v", claims)
	}

	now = now.Add(2 * time.Hour)
	if _, err := pass.Verify(token); err == nil {
		t.Fatal("expected expiry rejection")
	}
}

func assertCookieCleared(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == teamPassCookieName && cookie.MaxAge < 0 {
			return
		}
	}
	t.Fatalf("team pass cookie was not cleared: %v", w.Header().Values("Set-Cookie"))
}
