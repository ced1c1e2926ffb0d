package impactful

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
)

// Status classifies the outcome of a public read.
type Status int

const (
	// Ok means the value came from the store.
	Ok Status = iota
	// Degraded means the store failed and Value is the zero value.
	Degraded
	// Fatal means the error must reach the caller (missing entity,
	// cancelled request).
	Fatal
)

func (s Status) String() string {
	switch s {
	case Ok:
		return "ok"
	case Degraded:
		return "degraded"
	default:
		return "fatal"
	}
}

// Result is the outcome of a public read.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

// Degrade runs fn and applies the public-read policy: store faults become a
// zero value tagged Degraded, while ErrNotFound and context cancellation are
// reported as Fatal.
func Degrade[T any](logger echo.Logger, op string, fn func() (T, error)) Result[T] {
	v, err := fn()
	if err == nil {
		return Result[T]{Value: v, Status: Ok}
	}
	var zero T
	if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Result[T]{Value: zero, Status: Fatal, Err: err}
	}
	logger.Warnf("degraded read %s: %v", op, err)
	return Result[T]{Value: zero, Status: Degraded, Err: err}
}

// Homepage listing sizes.
const (
	homeLatestPosts = 3
	homeBooks       = 3
	homeVideos      = 2
)

// Reader serves anonymous pages. Every method degrades to empty values when
// the store is unavailable so that pages still render.
type Reader struct {
	store  *Store
	cache  *SnapshotCache
	logger echo.Logger
}

// NewReader creates a Reader over store. cache may be nil.
func NewReader(store *Store, cache *SnapshotCache, logger echo.Logger) *Reader {
	return &Reader{store: store, cache: cache, logger: logger}
}

// Home assembles the landing page. Each section degrades independently.
func (r *Reader) Home(ctx context.Context) HomePage {
	if r.cache != nil {
		if page, ok := r.cache.Home(); ok {
			page.Visitors = r.visitors(ctx)
			return page
		}
	}

	carousel := Degrade(r.logger, "carousel posts", func() ([]Post, error) { return r.store.ListCarouselPosts(ctx) })
	latest := Degrade(r.logger, "latest posts", func() ([]Post, error) { return r.store.ListLatestPosts(ctx, homeLatestPosts) })
	books := Degrade(r.logger, "latest books", func() ([]Book, error) { return r.store.ListBooks(ctx, homeBooks) })
	videos := Degrade(r.logger, "latest videos", func() ([]Video, error) { return r.store.ListVideos(ctx, homeVideos) })
	about := r.About(ctx)

	page := HomePage{
		Carousel: carousel.Value,
		Latest:   latest.Value,
		Books:    books.Value,
		Videos:   videos.Value,
		About:    about.Value,
	}
	if r.cache != nil && carousel.Status == Ok && latest.Status == Ok &&
		books.Status == Ok && videos.Status == Ok && about.Status == Ok {
		r.cache.StoreHome(page)
	}
	page.Visitors = r.visitors(ctx)
	return page
}

func (r *Reader) visitors(ctx context.Context) int64 {
	return Degrade(r.logger, "visitor count", func() (int64, error) { return r.store.VisitorCount(ctx) }).Value
}

// Posts returns every post, newest first.
func (r *Reader) Posts(ctx context.Context) []Post {
	return Degrade(r.logger, "posts", func() ([]Post, error) { return r.store.ListPosts(ctx) }).Value
}

// Post returns one post. A missing post is Fatal with ErrNotFound; an
// unavailable store yields a Degraded result with a nil value.
func (r *Reader) Post(ctx context.Context, id int64) Result[*Post] {
	return Degrade(r.logger, "post", func() (*Post, error) {
		p, err := r.store.GetPost(ctx, id)
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
}

// Book returns one book for download resolution.
func (r *Reader) Book(ctx context.Context, id int64) Result[*Book] {
	return Degrade(r.logger, "book", func() (*Book, error) {
		b, err := r.store.GetBook(ctx, id)
		if err != nil {
			return nil, err
		}
		return &b, nil
	})
}

// Video returns one video for playback resolution.
func (r *Reader) Video(ctx context.Context, id int64) Result[*Video] {
	return Degrade(r.logger, "video", func() (*Video, error) {
		v, err := r.store.GetVideo(ctx, id)
		if err != nil {
			return nil, err
		}
		return &v, nil
	})
}

// Library returns every book, newest first.
func (r *Reader) Library(ctx context.Context) []Book {
	return Degrade(r.logger, "books", func() ([]Book, error) { return r.store.ListBooks(ctx, 0) }).Value
}

// Videos returns every video, newest first.
func (r *Reader) Videos(ctx context.Context) []Video {
	return Degrade(r.logger, "videos", func() ([]Video, error) { return r.store.ListVideos(ctx, 0) }).Value
}

// About returns the founder profile, or a nil value when it is missing or
// the store is unavailable.
func (r *Reader) About(ctx context.Context) Result[*About] {
	res := Degrade(r.logger, "about", func() (*About, error) {
		a, err := r.store.GetAbout(ctx)
		if err != nil {
			return nil, err
		}
		return &a, nil
	})
	if errors.Is(res.Err, ErrNotFound) {
		// Seeding normally prevents this; public pages just show nothing.
		return Result[*About]{Status: Ok}
	}
	return res
}

// Search runs independent substring searches over posts and books. An
// empty query returns empty results.
func (r *Reader) Search(ctx context.Context, q string) SearchResults {
	return SearchResults{
		Query: q,
		Posts: Degrade(r.logger, "search posts", func() ([]Post, error) { return r.store.SearchPosts(ctx, q) }).Value,
		Books: Degrade(r.logger, "search books", func() ([]Book, error) { return r.store.SearchBooks(ctx, q) }).Value,
	}
}

// CountVisit increments the visitor counter. Failures are logged and
// otherwise ignored; the counter is informational.
func (r *Reader) CountVisit(ctx context.Context) {
	if _, err := r.store.IncrementVisitors(ctx); err != nil {
		r.logger.Warnf("visitor count: %v", err)
	}
}
