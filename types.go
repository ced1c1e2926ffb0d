package impactful

import "time"

// Post is a blog-style article. Carousel posts feed the homepage banner,
// the rest form the chronological feed.
type Post struct {
	ID         int64     `db:"id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	ImageFile  string    `db:"image_file"` // locator, may be empty
	IsCarousel bool      `db:"is_carousel"`
	DatePosted time.Time `db:"date_posted"`
}

// Book is a downloadable document in the library.
type Book struct {
	ID           int64     `db:"id"`
	Title        string    `db:"title"`
	Author       string    `db:"author"`
	Description  string    `db:"description"`
	Category     string    `db:"category"`
	FilePath     string    `db:"file_path"` // locator, always set
	DateUploaded time.Time `db:"date_uploaded"`
}

// Video is a short clip hosted locally or on the media host.
type Video struct {
	ID           int64     `db:"id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	FilePath     string    `db:"file_path"` // locator, always set
	DateUploaded time.Time `db:"date_uploaded"`
}

// About is the single founder profile row.
type About struct {
	ID           int64     `db:"id"`
	FounderName  string    `db:"founder_name"`
	FounderBio   string    `db:"founder_bio"`
	FounderImage string    `db:"founder_image"` // locator, may be empty
	Mission      string    `db:"mission"`
	Vision       string    `db:"vision"`
	LastUpdated  time.Time `db:"last_updated"`
}

// User is an account that may sign in to the admin area.
type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password"`
	IsAdmin      bool   `db:"is_admin"`
}

// Upload is a file received from an admin form.
type Upload struct {
	Name string
	Data []byte
}

// Present reports whether a file was supplied, even an empty one.
func (u *Upload) Present() bool {
	return u != nil
}

// PostInput carries the admin-editable fields of a post.
type PostInput struct {
	Title      string
	Content    string
	IsCarousel bool
	Image      *Upload
}

// BookInput carries the admin-editable fields of a book.
type BookInput struct {
	Title       string
	Author      string
	Description string
	Category    string
	File        *Upload
}

// VideoInput carries the admin-editable fields of a video.
type VideoInput struct {
	Title       string
	Description string
	File        *Upload
}

// AboutInput is a partial update: nil fields keep their stored value.
type AboutInput struct {
	FounderName *string
	FounderBio  *string
	Mission     *string
	Vision      *string
	Image       *Upload
}

// HomePage is everything the landing page shows.
type HomePage struct {
	Carousel []Post
	Latest   []Post
	Books    []Book
	Videos   []Video
	About    *About
	Visitors int64
}

// SearchResults holds independent matches over posts and books.
type SearchResults struct {
	Query string
	Posts []Post
	Books []Book
}

// DashboardStats are the counts shown on the admin dashboard.
type DashboardStats struct {
	Posts    int
	Books    int
	Videos   int
	Visitors int64
}

// Site is the site-wide metadata handed to every public view.
type Site struct {
	Name        string
	URL         string
	Description string
}

// Dashboard is everything the admin dashboard shows.
type Dashboard struct {
	Stats   DashboardStats
	Posts   []Post
	Books   []Book
	Videos  []Video
	Message string
}
