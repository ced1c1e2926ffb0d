// Package views is the default HTML rendering for impactful. Sites that
// want their own markup pass a different impactful.ViewFuncs to New.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/abdondismas0-hub/impactful"
	"github.com/abdondismas0-hub/impactful/media"
)

// Default returns the built-in views.
func Default() impactful.ViewFuncs {
	return impactful.ViewFuncs{
		Home:           Home,
		Posts:          Posts,
		Post:           Post,
		Library:        Library,
		Videos:         Videos,
		About:          About,
		Search:         Search,
		Contact:        Contact,
		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		AdminAbout:     AdminAbout,
		NotFound:       NotFound,
		ServerError:    ServerError,
	}
}

// html accumulates escaped markup for one page.
type html struct {
	strings.Builder
}

func (h *html) raw(s string) { h.WriteString(s) }

func (h *html) text(s string) { h.WriteString(templ.EscapeString(s)) }

func (h *html) rawf(format string, args ...any) { fmt.Fprintf(h, format, args...) }

// el writes <tag>text</tag> with text escaped.
func (h *html) el(tag, text string) {
	h.rawf("<%s>", tag)
	h.text(text)
	h.rawf("</%s>", tag)
}

// link writes an anchor with an escaped label.
func (h *html) link(href, label string) {
	h.rawf(`<a href="%s">`, attr(href))
	h.text(label)
	h.raw("</a>")
}

// paragraphs writes s as <p> blocks split on blank lines.
func (h *html) paragraphs(s string) {
	for _, block := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		h.raw("<p>")
		h.raw(strings.ReplaceAll(templ.EscapeString(block), "\n", "<br/>"))
		h.raw("</p>")
	}
}

func attr(s string) string {
	return templ.EscapeString(string(templ.URL(s)))
}

func mediaAttr(loc string) string {
	return templ.EscapeString(media.Href(loc))
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

var nav = []struct{ href, label string }{
	{"/", "Home"},
	{"/posts/", "Posts"},
	{"/library/", "Library"},
	{"/videos/", "Videos"},
	{"/about/", "About"},
	{"/contact/", "Contact"},
}

// layout wraps body in the site chrome.
func layout(site impactful.Site, title string, body func(h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var h html
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		h.raw("<title>")
		if title != "" {
			h.text(title + " | ")
		}
		h.text(site.Name)
		h.raw("</title>")
		if site.Description != "" {
			h.rawf(`<meta name="description" content="%s"/>`, templ.EscapeString(site.Description))
		}
		h.raw(`<link rel="stylesheet" href="/static/site.css"/>`)
		h.rawf(`<link rel="alternate" type="application/rss+xml" href="/feed.xml" title="%s"/>`, templ.EscapeString(site.Name))
		h.raw(`</head><body><header><nav>`)
		for _, n := range nav {
			h.link(n.href, n.label)
		}
		h.raw(`<form action="/search/" method="get"><input type="search" name="q" placeholder="Search"/></form>`)
		h.raw(`</nav></header><main>`)
		body(&h)
		h.raw(`</main><footer>`)
		h.rawf("&copy; %d ", time.Now().Year())
		h.text(site.Name)
		h.raw(`</footer></body></html>`)
		_, err := io.WriteString(w, h.String())
		return err
	})
}

// plain renders a bare page without site metadata.
func plain(title string, body func(h *html)) templ.Component {
	return layout(impactful.Site{Name: "Impactful Mind"}, title, body)
}

// NotFound is the 404 page.
func NotFound() templ.Component {
	return plain("Not found", func(h *html) {
		h.el("h1", "Page not found")
		h.raw(`<p><a href="/">Back to the homepage</a></p>`)
	})
}

// ServerError is the 5xx page.
func ServerError() templ.Component {
	return plain("Error", func(h *html) {
		h.el("h1", "Something went wrong")
		h.el("p", "Please try again in a moment.")
	})
}
