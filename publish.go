package impactful

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/abdondismas0-hub/impactful/media"
)

// Publisher validates admin input and writes entities, storing attached
// media first. Unlike Reader, every failure is returned to the caller.
type Publisher struct {
	store         *Store
	media         media.Store
	uploadDir     string
	cache         *SnapshotCache
	logger        echo.Logger
	imageMaxWidth int
}

// PublisherOptions configures optional Publisher behaviour.
type PublisherOptions struct {
	UploadDir     string         // root for local locators, used when deleting files
	Cache         *SnapshotCache // invalidated after every mutation
	ImageMaxWidth int            // downscale post/about images wider than this; <= 0 disables
}

// NewPublisher creates a Publisher.
func NewPublisher(store *Store, backend media.Store, logger echo.Logger, opts PublisherOptions) *Publisher {
	return &Publisher{
		store:         store,
		media:         backend,
		uploadDir:     opts.UploadDir,
		cache:         opts.Cache,
		logger:        logger,
		imageMaxWidth: opts.ImageMaxWidth,
	}
}

// put stores an upload and wraps any failure in ErrStorage.
func (p *Publisher) put(ctx context.Context, u *Upload, image bool) (string, error) {
	if !u.Present() {
		return "", fmt.Errorf("%w: no file supplied", ErrStorage)
	}
	if len(u.Data) == 0 {
		return "", fmt.Errorf("%w: %s is empty", ErrStorage, u.Name)
	}
	data, name := u.Data, u.Name
	if image {
		data, name = media.Normalize(data, name, p.imageMaxWidth)
	}
	loc, err := p.media.Put(ctx, data, name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if loc == "" {
		return "", fmt.Errorf("%w: backend returned no locator", ErrStorage)
	}
	return loc, nil
}

// discard best-effort removes a local file. Remote objects are never
// deleted and stay orphaned on the media host.
func (p *Publisher) discard(loc string) {
	if err := media.RemoveLocal(p.uploadDir, loc); err != nil {
		p.logger.Warnf("remove media %q: %v", loc, err)
	}
}

func (p *Publisher) changed() {
	p.cache.Invalidate()
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalid)
	}
	return title, nil
}

// ---- posts ----

// CreatePost stores the optional image and inserts the post. When an image
// was supplied but could not be stored nothing is persisted.
func (p *Publisher) CreatePost(ctx context.Context, in PostInput) (Post, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return Post{}, err
	}
	post := Post{Title: title, Content: in.Content, IsCarousel: in.IsCarousel}
	if in.Image.Present() {
		if post.ImageFile, err = p.put(ctx, in.Image, true); err != nil {
			return Post{}, err
		}
	}
	created, err := p.store.CreatePost(ctx, post)
	if err != nil {
		p.discard(post.ImageFile)
		return Post{}, fmt.Errorf("create post: %w", err)
	}
	p.changed()
	return created, nil
}

// UpdatePost overwrites title, content and carousel flag. The image is
// replaced only when a new one was uploaded and stored.
func (p *Publisher) UpdatePost(ctx context.Context, id int64, in PostInput) (Post, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return Post{}, err
	}
	post, err := p.store.GetPost(ctx, id)
	if err != nil {
		return Post{}, err
	}
	old := post.ImageFile
	post.Title, post.Content, post.IsCarousel = title, in.Content, in.IsCarousel
	if in.Image.Present() {
		if post.ImageFile, err = p.put(ctx, in.Image, true); err != nil {
			return Post{}, err
		}
	}
	if err := p.store.UpdatePost(ctx, post); err != nil {
		if post.ImageFile != old {
			p.discard(post.ImageFile)
		}
		return Post{}, fmt.Errorf("update post: %w", err)
	}
	if post.ImageFile != old {
		p.discard(old)
	}
	p.changed()
	return post, nil
}

// DeletePost removes the post and its local image.
func (p *Publisher) DeletePost(ctx context.Context, id int64) error {
	post, err := p.store.DeletePost(ctx, id)
	if err != nil {
		return err
	}
	p.discard(post.ImageFile)
	p.changed()
	return nil
}

// ---- books ----

// CreateBook stores the document and inserts the book. The document is
// mandatory.
func (p *Publisher) CreateBook(ctx context.Context, in BookInput) (Book, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return Book{}, err
	}
	loc, err := p.put(ctx, in.File, false)
	if err != nil {
		return Book{}, err
	}
	book, err := p.store.CreateBook(ctx, Book{
		Title:       title,
		Author:      strings.TrimSpace(in.Author),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		FilePath:    loc,
	})
	if err != nil {
		p.discard(loc)
		return Book{}, fmt.Errorf("create book: %w", err)
	}
	p.changed()
	return book, nil
}

// UpdateBook overwrites the book's fields; the document is replaced only
// when a new one was uploaded and stored.
func (p *Publisher) UpdateBook(ctx context.Context, id int64, in BookInput) (Book, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return Book{}, err
	}
	book, err := p.store.GetBook(ctx, id)
	if err != nil {
		return Book{}, err
	}
	old := book.FilePath
	book.Title = title
	book.Author = strings.TrimSpace(in.Author)
	book.Description = in.Description
	book.Category = strings.TrimSpace(in.Category)
	if in.File.Present() {
		if book.FilePath, err = p.put(ctx, in.File, false); err != nil {
			return Book{}, err
		}
	}
	if err := p.store.UpdateBook(ctx, book); err != nil {
		if book.FilePath != old {
			p.discard(book.FilePath)
		}
		return Book{}, fmt.Errorf("update book: %w", err)
	}
	if book.FilePath != old {
		p.discard(old)
	}
	p.changed()
	return book, nil
}

// DeleteBook removes the book and, for local locators, its document.
func (p *Publisher) DeleteBook(ctx context.Context, id int64) error {
	book, err := p.store.DeleteBook(ctx, id)
	if err != nil {
		return err
	}
	p.discard(book.FilePath)
	p.changed()
	return nil
}

// ---- videos ----

// CreateVideo stores the clip and inserts the video. The clip is mandatory.
func (p *Publisher) CreateVideo(ctx context.Context, in VideoInput) (Video, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return Video{}, err
	}
	loc, err := p.put(ctx, in.File, false)
	if err != nil {
		return Video{}, err
	}
	video, err := p.store.CreateVideo(ctx, Video{Title: title, Description: in.Description, FilePath: loc})
	if err != nil {
		p.discard(loc)
		return Video{}, fmt.Errorf("create video: %w", err)
	}
	p.changed()
	return video, nil
}

// UpdateVideo overwrites the video's fields; the clip is replaced only when
// a new one was uploaded and stored.
func (p *Publisher) UpdateVideo(ctx context.Context, id int64, in VideoInput) (Video, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return Video{}, err
	}
	video, err := p.store.GetVideo(ctx, id)
	if err != nil {
		return Video{}, err
	}
	old := video.FilePath
	video.Title, video.Description = title, in.Description
	if in.File.Present() {
		if video.FilePath, err = p.put(ctx, in.File, false); err != nil {
			return Video{}, err
		}
	}
	if err := p.store.UpdateVideo(ctx, video); err != nil {
		if video.FilePath != old {
			p.discard(video.FilePath)
		}
		return Video{}, fmt.Errorf("update video: %w", err)
	}
	if video.FilePath != old {
		p.discard(old)
	}
	p.changed()
	return video, nil
}

// DeleteVideo removes the video and, for local locators, its clip.
func (p *Publisher) DeleteVideo(ctx context.Context, id int64) error {
	video, err := p.store.DeleteVideo(ctx, id)
	if err != nil {
		return err
	}
	p.discard(video.FilePath)
	p.changed()
	return nil
}

// ---- about ----

// About returns the founder profile, creating it when absent.
func (p *Publisher) About(ctx context.Context) (About, error) {
	a, err := p.store.GetAbout(ctx)
	if err == nil {
		return a, nil
	}
	if err != ErrNotFound {
		return About{}, err
	}
	return p.store.CreateAbout(ctx, About{FounderName: defaultFounderName, FounderBio: defaultFounderBio})
}

// UpdateAbout applies a partial update. Fields left nil keep their value;
// the image changes only when a new one was uploaded and stored.
func (p *Publisher) UpdateAbout(ctx context.Context, in AboutInput) (About, error) {
	a, err := p.About(ctx)
	if err != nil {
		return About{}, err
	}
	if in.FounderName != nil {
		a.FounderName = *in.FounderName
	}
	if in.FounderBio != nil {
		a.FounderBio = *in.FounderBio
	}
	if in.Mission != nil {
		a.Mission = *in.Mission
	}
	if in.Vision != nil {
		a.Vision = *in.Vision
	}
	old := a.FounderImage
	if in.Image.Present() {
		if a.FounderImage, err = p.put(ctx, in.Image, true); err != nil {
			return About{}, err
		}
	}
	saved, err := p.store.SaveAbout(ctx, a)
	if err != nil {
		if a.FounderImage != old {
			p.discard(a.FounderImage)
		}
		return About{}, fmt.Errorf("update about: %w", err)
	}
	if a.FounderImage != old {
		p.discard(old)
	}
	p.changed()
	return saved, nil
}

// ---- dashboard ----

// Stats returns the admin dashboard counts.
func (p *Publisher) Stats(ctx context.Context) (DashboardStats, error) {
	var st DashboardStats
	var err error
	if st.Posts, err = p.store.CountPosts(ctx); err != nil {
		return st, err
	}
	if st.Books, err = p.store.CountBooks(ctx); err != nil {
		return st, err
	}
	if st.Videos, err = p.store.CountVideos(ctx); err != nil {
		return st, err
	}
	if st.Visitors, err = p.store.VisitorCount(ctx); err != nil && err != ErrNotFound {
		return st, err
	}
	return st, nil
}
