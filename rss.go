package impactful

import (
	"encoding/xml"
	"mime"
	"net/url"
	"os"
	"path"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/abdondismas0-hub/impactful/media"
)

// feedSummaryLen caps the post excerpt placed in each feed item.
const feedSummaryLen = 280

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	PubDate     string        `xml:"pubDate"`
	GUID        string        `xml:"guid"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

func (a *App) renderRSS(c echo.Context, posts []Post) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := PostURL(base, p.ID)
		item := rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: excerpt(p.Content, feedSummaryLen),
			PubDate:     p.DatePosted.UTC().Format(time.RFC1123Z),
			GUID:        postURL,
		}
		if p.ImageFile != "" {
			item.Enclosure = a.enclosure(p.ImageFile)
		}
		items = append(items, item)
	}
	return renderXML(c, "application/rss+xml; charset=utf-8", rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	})
}

// enclosure describes a post image for feed readers. The type comes from
// the file extension; images without a recognisable one are left out.
// Length is the local file size, or 0 when unknown as for remote objects.
func (a *App) enclosure(loc string) *rssEnclosure {
	name := loc
	if media.IsRemote(loc) {
		if u, err := url.Parse(loc); err == nil {
			name = u.Path
		}
	}
	typ := mime.TypeByExtension(path.Ext(name))
	if typ == "" {
		return nil
	}
	enc := &rssEnclosure{URL: absoluteMediaURL(a.Config.URL, loc), Type: typ}
	if !media.IsRemote(loc) {
		if p, err := media.LocalPath(a.Config.UploadDir, loc); err == nil {
			if fi, err := os.Stat(p); err == nil {
				enc.Length = fi.Size()
			}
		}
	}
	return enc
}

// excerpt shortens s to at most n runes, ending on a word boundary.
func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)[:n]
	for i := len(runes) - 1; i > n/2; i-- {
		if runes[i] == ' ' || runes[i] == '\n' {
			runes = runes[:i]
			break
		}
	}
	return string(runes) + "…"
}
