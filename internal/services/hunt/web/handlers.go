// Package web serves the participant-facing HTTP API for the hunt:
// locator entry, team registration, and answer submission. Identity is
// a signed team-pass cookie; everything else is re-derived per request.
package web

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/message"

	apperrors "github.com/louisbranch/trailhunt/internal/platform/errors"
	errsi18n "github.com/louisbranch/trailhunt/internal/platform/errors/i18n"
	"github.com/louisbranch/trailhunt/internal/services/hunt/engine"
)

type handler struct {
	engine *engine.Engine
	pass   *TeamPass
}

// NewHandler assembles the hunt API routes.
func NewHandler(e *engine.Engine, pass *TeamPass) http.Handler {
	h := &handler{engine: e, pass: pass}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/hunt", h.handleHunt)
	mux.HandleFunc("/api/register", h.handleRegister)
	mux.HandleFunc("/api/answer", h.handleAnswer)

	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return mux
}

// errorView is the wire shape of a failed request.
type errorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// huntView is the wire shape of a gated page load.
type huntView struct {
	State         string     `json:"state"`
	StaleIdentity bool       `json:"stale_identity,omitempty"`
	Team          string     `json:"team,omitempty"`
	Group         string     `json:"group,omitempty"`
	Position      int        `json:"position,omitempty"`
	Allowed       int        `json:"allowed,omitempty"`
	Question      string     `json:"question,omitempty"`
	Progress      string     `json:"progress,omitempty"`
	Hint          string     `json:"hint,omitempty"`
	Message       string     `json:"message,omitempty"`
	Error         *errorView `json:"error,omitempty"`
}

// answerView is the wire shape of a submission outcome.
type answerView struct {
	Verdict           string `json:"verdict"`
	Message           string `json:"message,omitempty"`
	Hint              string `json:"hint,omitempty"`
	RevealDelayMillis int64  `json:"reveal_delay_ms,omitempty"`
}

// identityFromRequest resolves the team-pass cookie. A missing cookie is
// a blank identity; an invalid one is reported so the caller can purge it.
func (h *handler) identityFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(teamPassCookieName)
	if err != nil {
		return "", nil
	}
	claims, err := h.pass.Verify(cookie.Value)
	if err != nil {
		return "", err
	}
	return claims.TeamName, nil
}

// handleHunt runs one page load: GET /api/hunt?code=N.
func (h *handler) handleHunt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	printer, locale := localizer(w, r)

	teamName, err := h.identityFromRequest(r)
	if err != nil {
		// A pass that fails verification is purged, not fatal: the load
		// proceeds anonymously and prompts registration.
		clearTeamPassCookie(w)
	}

	s := h.engine.Load(r.Context(), r.URL.Query().Get("code"), teamName)
	if s.StaleIdentity() {
		clearTeamPassCookie(w)
	}

	if s.State() == engine.StateFailed {
		writeError(w, locale, s.Err())
		return
	}
	writeJSON(w, http.StatusOK, viewFromSession(printer, locale, s))
}

// handleRegister durably registers a team and issues its pass:
// POST /api/register {"code": "...", "name": "...", "group": "..."}.
func (h *handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	printer, locale := localizer(w, r)

	var payload struct {
		Code  string `json:"code"`
		Name  string `json:"name"`
		Group string `json:"group"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	s, err := h.engine.Register(r.Context(), payload.Code, payload.Name, payload.Group)
	if err != nil {
		writeError(w, locale, err)
		return
	}

	token, err := h.pass.Issue(s.Team())
	if err != nil {
		writeError(w, locale, apperrors.Wrap(apperrors.CodeUnknown, "issue team pass", err))
		return
	}
	setTeamPassCookie(w, token, h.pass.ttl)

	if s.State() == engine.StateFailed {
		writeError(w, locale, s.Err())
		return
	}
	writeJSON(w, http.StatusOK, viewFromSession(printer, locale, s))
}

// handleAnswer evaluates one submission: POST /api/answer
// {"code": "...", "answer": "..."}. Requires a valid team pass.
func (h *handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	printer, locale := localizer(w, r)

	teamName, err := h.identityFromRequest(r)
	if err != nil {
		clearTeamPassCookie(w)
		writeError(w, locale, err)
		return
	}
	if teamName == "" {
		writeError(w, locale, apperrors.New(apperrors.CodeTeamUnregistered, "no team pass presented"))
		return
	}

	var payload struct {
		Code   string `json:"code"`
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	s := h.engine.Load(r.Context(), payload.Code, teamName)
	switch s.State() {
	case engine.StateFailed:
		writeError(w, locale, s.Err())
		return
	case engine.StateRegistering:
		clearTeamPassCookie(w)
		writeError(w, locale, apperrors.New(apperrors.CodeTeamUnregistered, "team pass names an unregistered team"))
		return
	case engine.StateBlocked:
		writeError(w, locale, apperrors.WithMetadata(apperrors.CodePositionBlocked,
			"position is gated", map[string]string{"Allowed": strconv.Itoa(s.Allowed())}))
		return
	}

	out := h.engine.Submit(r.Context(), s, payload.Answer)
	view := answerView{Verdict: string(out.Verdict)}
	switch out.Verdict {
	case engine.VerdictCorrect:
		view.Message = printer.Sprintf("hunt.correct")
		view.Hint = strings.TrimSpace(out.Hint)
		if view.Hint == "" {
			view.Hint = printer.Sprintf("hunt.default_hint")
		}
		view.RevealDelayMillis = out.RevealDelay.Milliseconds()
	case engine.VerdictTryAgain:
		view.Message = printer.Sprintf("hunt.try_again")
	}
	writeJSON(w, http.StatusOK, view)
}

// viewFromSession renders a non-failed session for the wire.
func viewFromSession(printer *message.Printer, locale string, s *engine.Session) huntView {
	view := huntView{
		State:         string(s.State()),
		StaleIdentity: s.StaleIdentity(),
	}
	if s.State() == engine.StateRegistering {
		return view
	}

	view.Team = s.Team().Name
	view.Group = string(s.Team().Group)
	view.Position = s.Position()
	view.Allowed = s.Allowed()

	switch s.State() {
	case engine.StateBlocked:
		view.Message = errsi18n.GetCatalog(locale).Format(
			string(apperrors.CodePositionBlocked),
			map[string]string{"Allowed": strconv.Itoa(s.Allowed())},
		)
	case engine.StateReadOnlySolved:
		view.Question = s.Clue().Question
		view.Hint = s.Clue().HintText()
		if view.Hint == "" {
			view.Hint = printer.Sprintf("hunt.default_hint")
		}
		view.Message = errsi18n.GetCatalog(locale).Format(
			string(apperrors.CodePositionAlreadyDone), nil)
		view.Progress = printer.Sprintf("hunt.progress_line", s.Position(), s.Team().Name)
	case engine.StateAnswering:
		view.Question = s.Clue().Question
		view.Progress = printer.Sprintf("hunt.progress_line", s.Position(), s.Team().Name)
	}
	return view
}

// writeError renders a localized error payload with a mapped HTTP status.
func writeError(w http.ResponseWriter, locale string, err error) {
	var domainErr *apperrors.Error
	if !stderrors.As(err, &domainErr) {
		domainErr = apperrors.Wrap(apperrors.CodeUnknown, "request failed", err)
	}

	userMessage := errsi18n.GetCatalog(locale).Format(string(domainErr.Code), domainErr.Metadata)
	st := domainErr.ToGRPCStatus(locale, userMessage)
	status := grpcErrorHTTPStatus(st, http.StatusInternalServerError)

	writeJSON(w, status, map[string]any{
		"error": errorView{Code: string(domainErr.Code), Message: userMessage},
	})
}

// writeJSON writes JSON responses with a consistent content type.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}
