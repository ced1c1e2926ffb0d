package impactful

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/abdondismas0-hub/impactful/media"
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	a.Reader.CountVisit(ctx)
	return Render(c, a.Views.Home(a.Site(), a.Reader.Home(ctx)))
}

func (a *App) handlePosts(c echo.Context) error {
	return Render(c, a.Views.Posts(a.Site(), a.Reader.Posts(c.Request().Context())))
}

func (a *App) handlePost(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}
	res := a.Reader.Post(c.Request().Context(), id)
	if res.Status == Fatal {
		return res.Err
	}
	return Render(c, a.Views.Post(a.Site(), res.Value))
}

func (a *App) handleLibrary(c echo.Context) error {
	return Render(c, a.Views.Library(a.Site(), a.Reader.Library(c.Request().Context())))
}

func (a *App) handleVideos(c echo.Context) error {
	return Render(c, a.Views.Videos(a.Site(), a.Reader.Videos(c.Request().Context())))
}

func (a *App) handleAbout(c echo.Context) error {
	res := a.Reader.About(c.Request().Context())
	if res.Status == Fatal {
		return res.Err
	}
	return Render(c, a.Views.About(a.Site(), res.Value))
}

func (a *App) handleSearch(c echo.Context) error {
	return Render(c, a.Views.Search(a.Site(), a.Reader.Search(c.Request().Context(), c.QueryParam("q"))))
}

func (a *App) handleContact(c echo.Context) error {
	return Render(c, a.Views.Contact(a.Site()))
}

// handleDownload serves a stored file by its locator.
func (a *App) handleDownload(c echo.Context) error {
	name := c.Param("name")
	if u, err := url.PathUnescape(name); err == nil {
		name = u
	}
	return a.serveLocator(c, name)
}

func (a *App) handleBookDownload(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}
	res := a.Reader.Book(c.Request().Context(), id)
	if res.Status != Ok {
		return readError(res.Err)
	}
	return a.serveLocator(c, res.Value.FilePath)
}

func (a *App) handleVideoWatch(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}
	res := a.Reader.Video(c.Request().Context(), id)
	if res.Status != Ok {
		return readError(res.Err)
	}
	return a.serveLocator(c, res.Value.FilePath)
}

// serveLocator redirects to remote locators and streams local ones from the
// upload directory.
func (a *App) serveLocator(c echo.Context, loc string) error {
	if media.IsRemote(loc) {
		return c.Redirect(http.StatusFound, loc)
	}
	path, err := media.LocalPath(a.Config.UploadDir, loc)
	if err != nil {
		return echo.ErrNotFound
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return echo.ErrNotFound
	}
	return c.File(path)
}

// readError turns a failed single-entity read into an HTTP error. A
// degraded store is reported as unavailable rather than missing.
func readError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	return echo.NewHTTPError(http.StatusServiceUnavailable).SetInternal(err)
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.Reader.Posts(c.Request().Context()))
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.Reader.Posts(c.Request().Context()))
}

func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.staticDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	return c.String(http.StatusOK, "User-agent: *\nDisallow: /admin/\nSitemap: "+strings.TrimSuffix(a.Config.URL, "/")+"/sitemap.xml\n")
}

func (a *App) handleHealth(c echo.Context) error {
	if err := a.Store.Ping(c.Request().Context()); err != nil {
		c.Logger().Warnf("health check: %v", err)
		return c.String(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.String(http.StatusOK, "ok")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		he = echo.NewHTTPError(statusFor(err), err.Error())
	}
	if he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	if he.Code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, he.Code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(he, c)
}
