package impactful

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	user, err := a.Accounts.Authenticate(c.Request().Context(), c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			return err
		}
		a.loginLimiter.Record(ip)
		return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
	}
	a.loginLimiter.Reset(ip)
	if err := setAdminSession(c, user.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	ctx := c.Request().Context()
	stats, err := a.Publisher.Stats(ctx)
	if err != nil {
		return err
	}
	posts, err := a.Store.ListPosts(ctx)
	if err != nil {
		return err
	}
	books, err := a.Store.ListBooks(ctx, 0)
	if err != nil {
		return err
	}
	videos, err := a.Store.ListVideos(ctx, 0)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(Dashboard{
		Stats:   stats,
		Posts:   posts,
		Books:   books,
		Videos:  videos,
		Message: msg,
	}, CsrfToken(c)))
}

// adminDone finishes a mutation. Rejected input and storage failures go
// back to the dashboard with the reason; anything else is an HTTP error.
func adminDone(c echo.Context, target string, err error, okMsg string) error {
	msg := okMsg
	if err != nil {
		switch statusFor(err) {
		case http.StatusBadRequest, http.StatusBadGateway, http.StatusUnauthorized:
			c.Logger().Warnf("admin %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
			msg = err.Error()
		case http.StatusNotFound:
			return echo.ErrNotFound
		default:
			return err
		}
	}
	return c.Redirect(http.StatusSeeOther, target+"?msg="+url.QueryEscape(msg))
}

// ---- posts ----

func (a *App) postInput(c echo.Context) (PostInput, error) {
	img, err := formUpload(c, "image", a.Config.MaxUploadBytes)
	if err != nil {
		return PostInput{}, err
	}
	return PostInput{
		Title:      c.FormValue("title"),
		Content:    c.FormValue("content"),
		IsCarousel: checked(c, "is_carousel"),
		Image:      img,
	}, nil
}

func (a *App) handleAdminCreatePost(c echo.Context) error {
	in, err := a.postInput(c)
	if err == nil {
		_, err = a.Publisher.CreatePost(c.Request().Context(), in)
	}
	return adminDone(c, "/admin/", err, "Post created.")
}

func (a *App) handleAdminUpdatePost(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}
	in, err := a.postInput(c)
	if err == nil {
		_, err = a.Publisher.UpdatePost(c.Request().Context(), id, in)
	}
	return adminDone(c, "/admin/", err, "Post updated.")
}

func (a *App) handleAdminDeletePost(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}
	return adminDone(c, "/admin/", a.Publisher.DeletePost(c.Request().Context(), id), "Post deleted.")
}

// ---- books ----

func (a *App) bookInput(c echo.Context) (BookInput, error) {
	file, err := formUpload(c, "file", a.Config.MaxUploadBytes)
	if err != nil {
		return BookInput{}, err
	}
	return BookInput{
		Title:       c.FormValue("title"),
		Author:      c.FormValue("author"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		File:        file,
	}, nil
}

func (a *App) handleAdminCreateBook(c echo.Context) error {
	in, err := a.bookInput(c)
	if err == nil {
		_, err = a.Publisher.CreateBook(c.Request().Context(), in)
	}
	return adminDone(c, "/admin/", err, "Book uploaded.")
}

func (a *App) handleAdminUpdateBook(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}
	in, err := a.bookInput(c)
	if err == nil {
		_, err = a.Publisher.UpdateBook(c.Request().Context(), id, in)
	}
	return adminDone(c, "/admin/", err, "Book updated.")
}

func (a *App) handleAdminDeleteBook(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}
	return adminDone(c, "/admin/", a.Publisher.DeleteBook(c.Request().Context(), id), "Book deleted.")
}

// ---- videos ----

func (a *App) videoInput(c echo.Context) (VideoInput, error) {
	file, err := formUpload(c, "file", a.Config.MaxUploadBytes)
	if err != nil {
		return VideoInput{}, err
	}
	return VideoInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		File:        file,
	}, nil
}

func (a *App) handleAdminCreateVideo(c echo.Context) error {
	in, err := a.videoInput(c)
	if err == nil {
		_, err = a.Publisher.CreateVideo(c.Request().Context(), in)
	}
	return adminDone(c, "/admin/", err, "Video uploaded.")
}

func (a *App) handleAdminUpdateVideo(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}
	in, err := a.videoInput(c)
	if err == nil {
		_, err = a.Publisher.UpdateVideo(c.Request().Context(), id, in)
	}
	return adminDone(c, "/admin/", err, "Video updated.")
}

func (a *App) handleAdminDeleteVideo(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}
	return adminDone(c, "/admin/", a.Publisher.DeleteVideo(c.Request().Context(), id), "Video deleted.")
}

// ---- about ----

func (a *App) handleAdminAbout(c echo.Context) error {
	about, err := a.Publisher.About(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminAbout(about, c.QueryParam("msg"), CsrfToken(c)))
}

func (a *App) handleAdminSaveAbout(c echo.Context) error {
	img, err := formUpload(c, "founder_image", a.Config.MaxUploadBytes)
	if err == nil {
		_, err = a.Publisher.UpdateAbout(c.Request().Context(), AboutInput{
			FounderName: optionalField(c, "founder_name"),
			FounderBio:  optionalField(c, "founder_bio"),
			Mission:     optionalField(c, "mission"),
			Vision:      optionalField(c, "vision"),
			Image:       img,
		})
	}
	return adminDone(c, "/admin/about/", err, "About page updated.")
}

// ---- account ----

func (a *App) handleAdminPassword(c echo.Context) error {
	id, _ := AdminID(c)
	next := c.FormValue("new_password")
	if next != c.FormValue("confirm_password") {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape("Passwords do not match."))
	}
	err := a.Accounts.ChangePassword(c.Request().Context(), id, c.FormValue("current_password"), next)
	if errors.Is(err, ErrInvalidCredentials) {
		err = fmt.Errorf("%w: current password is wrong", ErrInvalid)
	}
	return adminDone(c, "/admin/", err, "Password changed.")
}
