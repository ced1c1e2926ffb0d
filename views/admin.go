package views

import (
	"fmt"

	"github.com/a-h/templ"

	"github.com/abdondismas0-hub/impactful"
)

var adminSite = impactful.Site{Name: "Admin"}

func csrfField(h *html, token string) {
	h.rawf(`<input type="hidden" name="_csrf" value="%s"/>`, templ.EscapeString(token))
}

func message(h *html, msg string) {
	if msg != "" {
		h.raw(`<p class="flash">`)
		h.text(msg)
		h.raw("</p>")
	}
}

func deleteButton(h *html, action, token string) {
	h.rawf(`<form method="post" action="%s" class="inline">`, attr(action))
	csrfField(h, token)
	h.raw(`<button type="submit">Delete</button></form>`)
}

// AdminLogin is the login form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return layout(adminSite, "Login", func(h *html) {
		h.el("h1", "Sign in")
		if showError {
			message(h, "Invalid username or password.")
		}
		h.raw(`<form method="post" action="/admin/login/">`)
		csrfField(h, csrfToken)
		h.raw(`<label>Username <input name="username" autocomplete="username" required/></label>`)
		h.raw(`<label>Password <input type="password" name="password" autocomplete="current-password" required/></label>`)
		h.raw(`<button type="submit">Sign in</button></form>`)
	})
}

// AdminDashboard shows counts, listings and the create forms.
func AdminDashboard(d impactful.Dashboard, csrfToken string) templ.Component {
	return layout(adminSite, "Dashboard", func(h *html) {
		h.el("h1", "Dashboard")
		message(h, d.Message)
		h.rawf(`<ul class="stats"><li>%d posts</li><li>%d books</li><li>%d videos</li><li>%d visits</li></ul>`,
			d.Stats.Posts, d.Stats.Books, d.Stats.Videos, d.Stats.Visitors)
		h.raw(`<p><a href="/admin/about/">Edit about page</a></p>`)

		h.el("h2", "New post")
		h.raw(`<form method="post" action="/admin/posts/" enctype="multipart/form-data">`)
		csrfField(h, csrfToken)
		h.raw(`<input name="title" placeholder="Title" required/><textarea name="content" rows="8"></textarea>`)
		h.raw(`<label><input type="checkbox" name="is_carousel"/> Feature in carousel</label>`)
		h.raw(`<input type="file" name="image" accept="image/*"/><button type="submit">Publish</button></form>`)
		h.raw("<ul>")
		for _, p := range d.Posts {
			h.raw("<li>")
			h.link(fmt.Sprintf("/post/%d/", p.ID), p.Title)
			deleteButton(h, fmt.Sprintf("/admin/posts/%d/delete/", p.ID), csrfToken)
			h.raw("</li>")
		}
		h.raw("</ul>")

		h.el("h2", "Upload book")
		h.raw(`<form method="post" action="/admin/books/" enctype="multipart/form-data">`)
		csrfField(h, csrfToken)
		h.raw(`<input name="title" placeholder="Title" required/><input name="author" placeholder="Author"/>`)
		h.raw(`<input name="category" placeholder="Category"/><textarea name="description" rows="4"></textarea>`)
		h.raw(`<input type="file" name="file" required/><button type="submit">Upload</button></form>`)
		h.raw("<ul>")
		for _, b := range d.Books {
			h.raw("<li>")
			h.text(b.Title)
			deleteButton(h, fmt.Sprintf("/admin/books/%d/delete/", b.ID), csrfToken)
			h.raw("</li>")
		}
		h.raw("</ul>")

		h.el("h2", "Upload video")
		h.raw(`<form method="post" action="/admin/videos/" enctype="multipart/form-data">`)
		csrfField(h, csrfToken)
		h.raw(`<input name="title" placeholder="Title" required/><textarea name="description" rows="4"></textarea>`)
		h.raw(`<input type="file" name="file" accept="video/*" required/><button type="submit">Upload</button></form>`)
		h.raw("<ul>")
		for _, v := range d.Videos {
			h.raw("<li>")
			h.text(v.Title)
			deleteButton(h, fmt.Sprintf("/admin/videos/%d/delete/", v.ID), csrfToken)
			h.raw("</li>")
		}
		h.raw("</ul>")

		h.el("h2", "Change password")
		h.raw(`<form method="post" action="/admin/password/">`)
		csrfField(h, csrfToken)
		h.raw(`<input type="password" name="current_password" placeholder="Current password" required/>`)
		h.raw(`<input type="password" name="new_password" placeholder="New password" required/>`)
		h.raw(`<input type="password" name="confirm_password" placeholder="Repeat new password" required/>`)
		h.raw(`<button type="submit">Change</button></form>`)

		h.raw(`<form method="post" action="/admin/logout/">`)
		csrfField(h, csrfToken)
		h.raw(`<button type="submit">Sign out</button></form>`)
	})
}

// AdminAbout is the founder profile editor. Blank fields keep their value.
func AdminAbout(about impactful.About, msg, csrfToken string) templ.Component {
	return layout(adminSite, "About", func(h *html) {
		h.el("h1", "About page")
		message(h, msg)
		if about.FounderImage != "" {
			h.rawf(`<img src="%s" alt="" width="160"/>`, mediaAttr(about.FounderImage))
		}
		h.raw(`<form method="post" action="/admin/about/" enctype="multipart/form-data">`)
		csrfField(h, csrfToken)
		h.rawf(`<input name="founder_name" value="%s"/>`, templ.EscapeString(about.FounderName))
		for _, f := range []struct{ name, value string }{
			{"founder_bio", about.FounderBio},
			{"mission", about.Mission},
			{"vision", about.Vision},
		} {
			h.rawf(`<textarea name="%s" rows="5">`, f.name)
			h.text(f.value)
			h.raw("</textarea>")
		}
		h.raw(`<input type="file" name="founder_image" accept="image/*"/><button type="submit">Save</button></form>`)
		h.raw(`<p><a href="/admin/">Back to dashboard</a></p>`)
	})
}
