package render

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/sakif/profile-lookup/internal/model"
)

// tagDescriptor says how to pull one optional attribute out of a profile
// and how to label it.
type tagDescriptor struct {
	key   string
	icon  string
	label string
	value func(*model.Profile) string
}

// tagTable is consulted in order; the card shows tags in exactly this order.
var tagTable = []tagDescriptor{
	{key: "company", icon: "fa-solid fa-building", label: "Company", value: func(p *model.Profile) string { return p.Company }},
	{key: "blog", icon: "fa-solid fa-pen", label: "Blog", value: func(p *model.Profile) string { return p.Blog }},
	{key: "location", icon: "fa-solid fa-location-dot", label: "Location", value: func(p *model.Profile) string { return p.Location }},
	{key: "email", icon: "fa-solid fa-envelope", label: "Email", value: func(p *model.Profile) string { return p.Email }},
	{key: "followers", icon: "fa-solid fa-user-group", label: "Followers", value: func(p *model.Profile) string { return count(p.Followers) }},
	{key: "following", icon: "fa-solid fa-user-group", label: "Following", value: func(p *model.Profile) string { return count(p.Following) }},
}

// count renders a counter; zero is treated as absent.
func count(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// Render shows p on s. A not-found marker is ignored: reporting "not found"
// is the caller's job, never the renderer's.
func Render(s Surface, p *model.Profile) {
	if p.IsNotFound() {
		return
	}
	s.ShowCard(BuildCard(p))
}

// BuildCard computes the card for p. The returned tag slice is always new,
// so whatever was shown before is replaced, not appended to.
func BuildCard(p *model.Profile) Card {
	return Card{
		Visible:      true,
		Login:        p.Login,
		ProfileURL:   p.HTMLURL,
		FullName:     p.Name,
		ShowFullName: p.Name != "",
		Bio:          FormatBio(p.Bio),
		ShowBio:      p.Bio != "",
		AvatarURL:    p.AvatarURL,
		Tags:         Tags(p),
	}
}

// Tags returns the tags for every present attribute, in table order.
func Tags(p *model.Profile) []Tag {
	tags := make([]Tag, 0, len(tagTable))
	for _, d := range tagTable {
		v := d.value(p)
		if v == "" {
			continue
		}
		tags = append(tags, Tag{
			Key:   d.key,
			Icon:  strings.Fields(d.icon),
			Label: d.label,
			Value: v,
		})
	}
	return tags
}

// FormatBio escapes bio for HTML and turns each literal "\r\n" into a <br/>.
func FormatBio(bio string) template.HTML {
	escaped := template.HTMLEscapeString(bio)
	return template.HTML(strings.ReplaceAll(escaped, "\r\n", "<br/>"))
}
