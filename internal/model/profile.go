// Package model defines the data structures used throughout the application.
package model

// Profile is the portion of the GitHub /users/{handle} response the page
// shows. GitHub returns a much larger object; only these fields are decoded
// and only these fields are written to the cache.
//
// Optional fields come back as JSON null when unset. Decoding null into a
// string leaves it empty, and an empty string (or a zero count) is treated
// as "absent" by the renderer.
//
// NOT-FOUND MARKER:
// The same shape doubles as the cached negative result. A Profile with
// NotFound set carries no other data and serializes as {"notFound":true}.
//
// GitHub API docs: https://docs.github.com/en/rest/users/users#get-a-user
type Profile struct {
	Login     string `json:"login,omitempty"`
	Name      string `json:"name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	HTMLURL   string `json:"html_url,omitempty"`
	Company   string `json:"company,omitempty"`
	Blog      string `json:"blog,omitempty"`
	Location  string `json:"location,omitempty"`
	Email     string `json:"email,omitempty"`
	Followers int    `json:"followers,omitempty"`
	Following int    `json:"following,omitempty"`

	NotFound bool `json:"notFound,omitempty"`
}

// NotFoundMarker returns the sentinel stored in place of a profile when a
// handle is known not to exist.
func NotFoundMarker() *Profile {
	return &Profile{NotFound: true}
}

// IsNotFound reports whether p is a not-found marker. A nil profile counts
// as one: a fetch that produced nothing usable is recorded as not found.
func (p *Profile) IsNotFound() bool {
	return p == nil || p.NotFound
}
