// Package handler contains HTTP request handlers for the profile lookup page.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming HTTP request (form values, JSON body, cookies)
//  2. Find the page session and call into the service layer
//  3. Write the HTTP response (HTML page, JSON, or a redirect)
//
// Handlers hold no lookup logic of their own: the Controller decides what
// happens, the handlers only translate between it and HTTP.
package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/sakif/profile-lookup/internal/apperror"
	"github.com/sakif/profile-lookup/internal/auth"
	"github.com/sakif/profile-lookup/internal/render"
	"github.com/sakif/profile-lookup/internal/service"
)

// Sessions hands out the page session for a session ID.
type Sessions interface {
	Get(id string) *service.Session
}

// PageHandler serves the lookup page itself.
// Templates are parsed once at startup and reused for every request.
type PageHandler struct {
	templates *template.Template
	sessions  Sessions
	logger    *slog.Logger
}

// pageData is what the page template receives.
type pageData struct {
	Title string
	render.Snapshot
}

// NewPageHandler parses base.html and lookup.html from templateDir.
//
// base.html defines the page skeleton with a {{template "content" .}}
// placeholder; lookup.html fills it with {{define "content"}}.
func NewPageHandler(templateDir string, sessions Sessions, logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := template.ParseFiles(
		filepath.Join(templateDir, "base.html"),
		filepath.Join(templateDir, "lookup.html"),
	)
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		templates: tmpl,
		sessions:  sessions,
		logger:    logger,
	}, nil
}

// HandlePage draws the session's page: input, submit status, error banner
// and profile card.
func (h *PageHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFor(r, h.sessions)
	if !ok {
		h.logger.Error("page requested without a session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Title:    "GitHub Profile Lookup",
		Snapshot: session.State.Snapshot(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HandleSubmit is the form fallback for browsers without JavaScript: it
// runs the lookup for the posted handle and redirects back to the page
// (Post/Redirect/Get), which then shows the card or the banner.
func (h *PageHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFor(r, h.sessions)
	if !ok {
		h.logger.Error("form submitted without a session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	session.Lookup(r.Context(), r.PostForm.Get("handle"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// sessionFor finds the page session named by the request's session cookie.
func sessionFor(r *http.Request, sessions Sessions) (*service.Session, bool) {
	id, ok := auth.SessionIDFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return sessions.Get(id), true
}

// errNoSession is returned by API handlers reached without the session middleware.
var errNoSession = apperror.Internal("no session", errors.New("session middleware not installed"))
