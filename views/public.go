package views

import (
	"fmt"

	"github.com/a-h/templ"

	"github.com/abdondismas0-hub/impactful"
)

func postCard(h *html, p impactful.Post) {
	h.raw(`<article class="post-card">`)
	if p.ImageFile != "" {
		h.rawf(`<img src="%s" alt="" loading="lazy"/>`, mediaAttr(p.ImageFile))
	}
	h.raw("<h3>")
	h.link(fmt.Sprintf("/post/%d/", p.ID), p.Title)
	h.raw("</h3>")
	h.el("time", date(p.DatePosted))
	h.raw("</article>")
}

func bookCard(h *html, b impactful.Book) {
	h.raw(`<article class="book-card">`)
	h.el("h3", b.Title)
	if b.Author != "" {
		h.el("p", "by "+b.Author)
	}
	if b.Category != "" {
		h.raw(`<span class="category">`)
		h.text(b.Category)
		h.raw("</span>")
	}
	if b.Description != "" {
		h.paragraphs(b.Description)
	}
	h.link(fmt.Sprintf("/books/%d/download/", b.ID), "Download")
	h.raw("</article>")
}

func videoCard(h *html, v impactful.Video) {
	h.raw(`<article class="video-card">`)
	h.rawf(`<video controls preload="metadata" src="/videos/%d/watch/"></video>`, v.ID)
	h.el("h3", v.Title)
	if v.Description != "" {
		h.paragraphs(v.Description)
	}
	h.raw("</article>")
}

func section(h *html, title, more string, empty bool, body func()) {
	h.raw("<section>")
	h.el("h2", title)
	if empty {
		h.el("p", "Nothing here yet.")
	} else {
		body()
	}
	if more != "" {
		h.link(more, "See all")
	}
	h.raw("</section>")
}

// Home is the landing page.
func Home(site impactful.Site, page impactful.HomePage) templ.Component {
	return layout(site, "", func(h *html) {
		if len(page.Carousel) > 0 {
			h.raw(`<section class="carousel">`)
			for _, p := range page.Carousel {
				postCard(h, p)
			}
			h.raw("</section>")
		}
		section(h, "Latest posts", "/posts/", len(page.Latest) == 0, func() {
			for _, p := range page.Latest {
				postCard(h, p)
			}
		})
		section(h, "From the library", "/library/", len(page.Books) == 0, func() {
			for _, b := range page.Books {
				bookCard(h, b)
			}
		})
		section(h, "Videos", "/videos/", len(page.Videos) == 0, func() {
			for _, v := range page.Videos {
				videoCard(h, v)
			}
		})
		if page.About != nil {
			h.raw(`<section class="about-teaser">`)
			h.el("h2", page.About.FounderName)
			if page.About.Mission != "" {
				h.paragraphs(page.About.Mission)
			}
			h.link("/about/", "Read more")
			h.raw("</section>")
		}
		h.rawf(`<p class="visitors">%d visits</p>`, page.Visitors)
	})
}

// Posts lists every post.
func Posts(site impactful.Site, posts []impactful.Post) templ.Component {
	return layout(site, "Posts", func(h *html) {
		section(h, "Posts", "", len(posts) == 0, func() {
			for _, p := range posts {
				postCard(h, p)
			}
		})
	})
}

// Post shows one post. post is nil when the database was unavailable.
func Post(site impactful.Site, post *impactful.Post) templ.Component {
	title := "Post"
	if post != nil {
		title = post.Title
	}
	return layout(site, title, func(h *html) {
		if post == nil {
			h.el("p", "This post is temporarily unavailable.")
			return
		}
		h.raw("<article>")
		h.el("h1", post.Title)
		h.el("time", date(post.DatePosted))
		if post.ImageFile != "" {
			h.rawf(`<img src="%s" alt=""/>`, mediaAttr(post.ImageFile))
		}
		h.paragraphs(post.Content)
		h.raw("</article>")
	})
}

// Library lists every book.
func Library(site impactful.Site, books []impactful.Book) templ.Component {
	return layout(site, "Library", func(h *html) {
		section(h, "Library", "", len(books) == 0, func() {
			for _, b := range books {
				bookCard(h, b)
			}
		})
	})
}

// Videos lists every video.
func Videos(site impactful.Site, videos []impactful.Video) templ.Component {
	return layout(site, "Videos", func(h *html) {
		section(h, "Videos", "", len(videos) == 0, func() {
			for _, v := range videos {
				videoCard(h, v)
			}
		})
	})
}

// About shows the founder profile.
func About(site impactful.Site, about *impactful.About) templ.Component {
	return layout(site, "About", func(h *html) {
		if about == nil {
			h.el("h1", "About")
			return
		}
		h.el("h1", about.FounderName)
		if about.FounderImage != "" {
			h.rawf(`<img src="%s" alt=""/>`, mediaAttr(about.FounderImage))
		}
		h.paragraphs(about.FounderBio)
		if about.Mission != "" {
			h.el("h2", "Mission")
			h.paragraphs(about.Mission)
		}
		if about.Vision != "" {
			h.el("h2", "Vision")
			h.paragraphs(about.Vision)
		}
	})
}

// Search shows results for a query.
func Search(site impactful.Site, res impactful.SearchResults) templ.Component {
	return layout(site, "Search", func(h *html) {
		h.raw("<h1>Search")
		if res.Query != "" {
			h.raw(": ")
			h.text(res.Query)
		}
		h.raw("</h1>")
		section(h, "Posts", "", len(res.Posts) == 0, func() {
			for _, p := range res.Posts {
				postCard(h, p)
			}
		})
		section(h, "Books", "", len(res.Books) == 0, func() {
			for _, b := range res.Books {
				bookCard(h, b)
			}
		})
	})
}

// Contact is the static contact page.
func Contact(site impactful.Site) templ.Component {
	return layout(site, "Contact", func(h *html) {
		h.el("h1", "Contact")
		h.el("p", "We would love to hear from you.")
	})
}
