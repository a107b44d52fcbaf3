// Package render turns profiles into what the page shows.
//
// THE SURFACE:
// The page has four regions: the handle input, the submit control (a
// tri-state status), the error banner and the profile card. Surface is the
// capability interface the controller and renderer write to. State is the
// in-memory implementation the HTTP handlers read from when they draw the
// page, and it also remembers the input's text.
package render

import (
	"html/template"
	"sync"
)

// Status is the state of the submit control.
type Status string

const (
	StatusDisabled Status = "disabled"
	StatusReady    Status = "ready"
	StatusLoading  Status = "loading"
)

// Tag is one optional profile attribute rendered as an icon + label + value chip.
type Tag struct {
	Key   string   `json:"key"`
	Icon  []string `json:"icon"`
	Label string   `json:"label"`
	Value string   `json:"value"`
}

// Card is the profile display region.
type Card struct {
	Visible      bool          `json:"visible"`
	Login        string        `json:"login"`
	ProfileURL   string        `json:"profileUrl"`
	FullName     string        `json:"fullName"`
	ShowFullName bool          `json:"showFullName"`
	Bio          template.HTML `json:"bio"`
	ShowBio      bool          `json:"showBio"`
	AvatarURL    string        `json:"avatarUrl"`
	Tags         []Tag         `json:"tags"`
}

// Surface is everything the lookup flow can change on the page.
type Surface interface {
	SetStatus(Status)
	Status() Status
	ShowCard(Card)
	ShowError(msg string)
	HideError()
}

// Snapshot is a point-in-time copy of State.
type Snapshot struct {
	Input  string `json:"input"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
	Card   Card   `json:"card"`
}

// State is a Surface that records what the page should show.
// It is safe for concurrent use: banner timers write to it from their own
// goroutines while handlers read it.
type State struct {
	mu     sync.RWMutex
	input  string
	status Status
	err    string
	card   Card
}

// NewState returns a State with the submit control disabled and nothing shown.
func NewState() *State {
	return &State{status: StatusDisabled}
}

var _ Surface = (*State)(nil)

func (s *State) SetStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *State) ShowCard(c Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.card = c
}

func (s *State) ShowError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

func (s *State) HideError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// SetInput records the text currently in the handle input so the page can
// redraw it.
func (s *State) SetInput(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = raw
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card := s.card
	card.Tags = append([]Tag(nil), s.card.Tags...)

	return Snapshot{
		Input:  s.input,
		Status: s.status,
		Error:  s.err,
		Card:   card,
	}
}
