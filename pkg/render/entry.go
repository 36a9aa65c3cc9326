// Package render turns journal view models into HTML: the day entry through
// html/template and the page chrome through templ components.
package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"

	"github.com/microcosm-cc/bluemonday"

	"github.com/rubiojr/triplog/pkg/log"
	"github.com/rubiojr/triplog/pkg/ui"
)

const entryTemplate = `{{- if .Found -}}
<h1 class="entry-title">{{unescape .Headings.Main}}</h1>
{{- if .Headings.HasRoute}}
<h2 class="entry-route"><span class="from">{{unescape .Headings.From}}</span> <span class="to">to {{unescape .Headings.To}}</span></h2>
{{- else if .Headings.Sub}}
<h2 class="entry-route">{{unescape .Headings.Sub}}</h2>
{{- end}}
<h3 class="entry-meta"><time datetime="{{.Item.Date}}">{{.Item.Date}}</time>
{{- with .Item.Fields.Weather}} | Weather: {{.}}{{end}}
{{- with .Emoji}} <span class="weather-emoji">{{.}}</span>{{end}}</h3>
{{- if .RestDay}}
<h3 class="rest-day">Rest Day 😴</h3>
{{- else}}
<table class="entry-stats">
<tr><th>Distance</th><td>{{.Stats.Miles}} mi</td><td>{{.Stats.Kilometers}} km</td></tr>
<tr><th>Elevation gain</th><td>{{.Stats.ElevationGainFt}} ft</td><td>{{.Stats.ElevationGainM}} m</td></tr>
<tr><th>Elevation loss</th><td>{{.Stats.ElevationLossFt}} ft</td><td>{{.Stats.ElevationLossM}} m</td></tr>
<tr><th>Flat tires</th><td colspan="2">{{.Stats.Flats}}</td></tr>
</table>
{{- end}}
<hr>
<div class="entry-body">{{.Body}}</div>
{{- else -}}
<div class="content-unavailable">
<h1>Day {{.Day}}</h1>
<p>Content for this day is unavailable.</p>
</div>
{{- end}}
`

var logger = log.ForService("render")

// Titles often carry HTML entities (&#8211;, &#8217;) that the template
// would otherwise escape a second time.
var entryFuncs = template.FuncMap{
	"unescape": html.UnescapeString,
}

// EntryRenderer renders a day's entry. Entry bodies come from the content
// source as HTML; with sanitizing on they are cleaned before the lightbox
// rewrite.
type EntryRenderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
}

type entryData struct {
	ui.ContentView
	Body template.HTML
}

// NewEntryRenderer returns a renderer. sanitize controls whether entry
// bodies go through the HTML policy.
func NewEntryRenderer(sanitize bool) (*EntryRenderer, error) {
	tmpl, err := template.New("entry").Funcs(entryFuncs).Parse(entryTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing entry template: %w", err)
	}
	r := &EntryRenderer{tmpl: tmpl}
	if sanitize {
		r.policy = Policy()
	}
	return r, nil
}

// Policy is the sanitizer applied to entry bodies: user generated content
// plus the media and gallery markup journal entries carry.
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("figure", "figcaption", "video", "source")
	p.AllowAttrs("src", "poster", "type").OnElements("video", "source")
	p.AllowAttrs("controls", "preload", "muted", "loop", "playsinline").OnElements("video")
	p.AllowAttrs("class").OnElements("figure", "img", "video", "a", "div", "span")
	p.AllowAttrs("data-gallery").OnElements("a")
	p.AllowAttrs("loading", "width", "height").OnElements("img")
	return p
}

// Body prepares raw entry markup for display.
func (r *EntryRenderer) Body(markup string) (template.HTML, error) {
	if r.policy != nil {
		markup = r.policy.Sanitize(markup)
	}
	out, err := RewriteLightbox(markup)
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}

// Render returns the HTML for v. A missing entry renders the unavailable
// state. When the body cannot be processed the entry still renders with an
// empty body.
func (r *EntryRenderer) Render(v ui.ContentView) (string, error) {
	data := entryData{ContentView: v}
	if v.Found {
		body, err := r.Body(v.Item.Content)
		if err != nil {
			logger.Warnf("Day %d: %v", v.Day, err)
		}
		data.Body = body
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering day %d: %w", v.Day, err)
	}
	return buf.String(), nil
}
