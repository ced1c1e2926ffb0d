package impactful

import (
	"encoding/xml"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/abdondismas0-hub/impactful/media"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// sitemapSections are the static public pages listed before the posts.
var sitemapSections = []string{"posts", "library", "videos", "about", "contact"}

func (a *App) renderSitemap(c echo.Context, posts []Post) error {
	base := a.Config.URL
	urls := []sitemapURL{{Loc: BuildURL(base)}}
	for _, s := range sitemapSections {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, s)})
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     PostURL(base, p.ID),
			LastMod: p.DatePosted.UTC().Format("2006-01-02"),
		})
	}
	return renderXML(c, "application/xml; charset=utf-8", sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
}

// absoluteMediaURL resolves a locator against the site URL. Remote
// locators are already absolute.
func absoluteMediaURL(base, loc string) string {
	href := media.Href(loc)
	if media.IsRemote(href) {
		return href
	}
	return strings.TrimSuffix(base, "/") + href
}
