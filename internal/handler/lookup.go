package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/profile-lookup/internal/model"
	"github.com/sakif/profile-lookup/internal/render"
	"github.com/sakif/profile-lookup/internal/service"
)

// OneShot runs a lookup that belongs to no page session.
type OneShot interface {
	LookupOnce(ctx context.Context, raw string) service.Result
}

// LookupHandler serves the JSON API the page script talks to.
type LookupHandler struct {
	sessions Sessions
	oneShot  OneShot
	logger   *slog.Logger
}

// NewLookupHandler creates a LookupHandler.
func NewLookupHandler(sessions Sessions, oneShot OneShot, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{sessions: sessions, oneShot: oneShot, logger: logger}
}

// handleRequest is the body of POST /api/input and POST /api/lookup.
type handleRequest struct {
	Handle string `json:"handle"`
}

// inputResponse is the body returned by POST /api/input.
type inputResponse struct {
	Status render.Status `json:"status"`
}

// lookupResponse is the body returned by POST /api/lookup.
//
// A lookup that ends on the error banner is still a 200: the page asked
// what to show, and the answer is the banner. Kind and Error are set in
// that case.
type lookupResponse struct {
	Accepted bool            `json:"accepted"`
	Source   service.Source  `json:"source,omitempty"`
	Kind     string          `json:"kind,omitempty"`
	Error    string          `json:"error,omitempty"`
	State    render.Snapshot `json:"state"`
}

// HandleInput handles POST /api/input: the input's text changed.
// Responds with the submit control's new status.
func (h *LookupHandler) HandleInput(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFor(r, h.sessions)
	if !ok {
		writeError(w, errNoSession)
		return
	}

	var req handleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, inputResponse{Status: session.Input(req.Handle)})
}

// HandleLookup handles POST /api/lookup: the submit control was activated
// with the given input text.
func (h *LookupHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFor(r, h.sessions)
	if !ok {
		writeError(w, errNoSession)
		return
	}

	var req handleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res := session.Lookup(r.Context(), req.Handle)

	resp := lookupResponse{
		Accepted: res.Accepted,
		Source:   res.Source,
		State:    session.State.Snapshot(),
	}
	if res.Err != nil {
		resp.Kind = res.Err.Kind.String()
		resp.Error = res.Err.BannerText()
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleState handles GET /api/state: what the page currently shows.
func (h *LookupHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFor(r, h.sessions)
	if !ok {
		writeError(w, errNoSession)
		return
	}

	writeJSON(w, http.StatusOK, session.State.Snapshot())
}

// HandleUser handles GET /api/users/{handle}: a lookup outside any page,
// answered with the profile or a mapped error status.
func (h *LookupHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	res := h.oneShot.LookupOnce(r.Context(), chi.URLParam(r, "handle"))
	if res.Err != nil {
		writeError(w, res.Err)
		return
	}

	w.Header().Set("X-Cache", cacheHeader(res.Source))
	writeJSON(w, http.StatusOK, userResponse(res.Profile))
}

func cacheHeader(src service.Source) string {
	if src == service.SourceCache {
		return "HIT"
	}
	return "MISS"
}

// userResponse is the profile as served by GET /api/users/{handle}, with
// the card the page would draw for it.
func userResponse(p *model.Profile) any {
	return struct {
		Profile *model.Profile `json:"profile"`
		Card    render.Card    `json:"card"`
	}{
		Profile: p,
		Card:    render.BuildCard(p),
	}
}
