package impactful

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abdondismas0-hub/impactful/media"
)

// fakeMedia records uploads and hands out remote locators, or fails.
type fakeMedia struct {
	err  error
	puts []string
}

func (f *fakeMedia) Name() string { return "fake" }

func (f *fakeMedia) Put(ctx context.Context, data []byte, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.puts = append(f.puts, name)
	return "https://cdn.example.com/media/" + name, nil
}

func newTestPublisher(t *testing.T, backend media.Store) (*Publisher, *Store, string) {
	t.Helper()
	s := newTestStore(t)
	dir := filepath.Join(t.TempDir(), "uploads")
	logger := echo.New().Logger
	if backend == nil {
		backend = media.NewLocal(dir, logger)
	}
	p := NewPublisher(s, backend, logger, PublisherOptions{
		UploadDir: dir,
		Cache:     NewSnapshotCache(time.Minute),
	})
	return p, s, dir
}

func upload(name, data string) *Upload {
	return &Upload{Name: name, Data: []byte(data)}
}

func TestCreateBookRequiresFile(t *testing.T) {
	p, s, _ := newTestPublisher(t, nil)
	ctx := context.Background()

	_, err := p.CreateBook(ctx, BookInput{Title: "No file"})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
	if n, _ := s.CountBooks(ctx); n != 0 {
		t.Errorf("CountBooks = %d, want 0", n)
	}
}

func TestCreateRejectsOnStorageFailure(t *testing.T) {
	backend := &fakeMedia{err: errors.New("connection refused")}
	p, _, _ := newTestPublisher(t, backend)
	ctx := context.Background()

	if _, err := p.CreateBook(ctx, BookInput{Title: "B", File: upload("b.pdf", "%PDF")}); !errors.Is(err, media.ErrStore) {
		t.Errorf("CreateBook err = %v, want media.ErrStore", err)
	}
	if _, err := p.CreateVideo(ctx, VideoInput{Title: "V", File: upload("v.mp4", "vid")}); !errors.Is(err, ErrStorage) {
		t.Errorf("CreateVideo err = %v, want ErrStorage", err)
	}
	if _, err := p.CreatePost(ctx, PostInput{Title: "P", Content: "c", Image: upload("p.png", "img")}); !errors.Is(err, ErrStorage) {
		t.Errorf("CreatePost err = %v, want ErrStorage", err)
	}

	st, err := p.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Books != 0 || st.Videos != 0 || st.Posts != 0 {
		t.Errorf("stats = %+v, want nothing persisted", st)
	}
}

func TestCreatePostWithoutImage(t *testing.T) {
	p, _, _ := newTestPublisher(t, &fakeMedia{err: errors.New("unused")})
	post, err := p.CreatePost(context.Background(), PostInput{Title: "  Hello  ", Content: "Body"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.Title != "Hello" || post.ImageFile != "" {
		t.Errorf("post = %+v", post)
	}
}

func TestEmptyUploadIsRejected(t *testing.T) {
	backend := &fakeMedia{}
	p, s, _ := newTestPublisher(t, backend)
	ctx := context.Background()

	if _, err := p.CreatePost(ctx, PostInput{Title: "P", Image: upload("photo.jpg", "")}); !errors.Is(err, ErrStorage) {
		t.Errorf("CreatePost err = %v, want ErrStorage", err)
	}
	vision := "v"
	if _, err := p.UpdateAbout(ctx, AboutInput{Vision: &vision, Image: upload("me.png", "")}); !errors.Is(err, ErrStorage) {
		t.Errorf("UpdateAbout err = %v, want ErrStorage", err)
	}
	if n, _ := s.CountPosts(ctx); n != 0 {
		t.Errorf("CountPosts = %d, want 0", n)
	}
	if len(backend.puts) != 0 {
		t.Errorf("backend received %v", backend.puts)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	p, _, _ := newTestPublisher(t, nil)
	ctx := context.Background()

	if _, err := p.CreatePost(ctx, PostInput{Title: "   "}); !errors.Is(err, ErrInvalid) {
		t.Errorf("CreatePost err = %v, want ErrInvalid", err)
	}
	if _, err := p.CreateBook(ctx, BookInput{File: upload("a.pdf", "x")}); !errors.Is(err, ErrInvalid) {
		t.Errorf("CreateBook err = %v, want ErrInvalid", err)
	}
}

func TestLocalFilesFollowTheirRows(t *testing.T) {
	p, _, dir := newTestPublisher(t, nil)
	ctx := context.Background()

	book, err := p.CreateBook(ctx, BookInput{Title: "Book", File: upload("first.pdf", "one")})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if media.IsRemote(book.FilePath) {
		t.Fatalf("FilePath = %q, want a local locator", book.FilePath)
	}
	first := filepath.Join(dir, book.FilePath)
	if _, err := os.Stat(first); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	updated, err := p.UpdateBook(ctx, book.ID, BookInput{Title: "Book", File: upload("second.pdf", "two")})
	if err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	if updated.FilePath == book.FilePath {
		t.Fatal("expected a new locator after replacing the file")
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Errorf("replaced file still present: %v", err)
	}

	if err := p.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, updated.FilePath)); !os.IsNotExist(err) {
		t.Errorf("deleted book's file still present: %v", err)
	}
}

func TestUpdateKeepsFileWhenNoneUploaded(t *testing.T) {
	p, _, _ := newTestPublisher(t, nil)
	ctx := context.Background()

	video, err := p.CreateVideo(ctx, VideoInput{Title: "Clip", File: upload("clip.mp4", "bytes")})
	if err != nil {
		t.Fatal(err)
	}
	updated, err := p.UpdateVideo(ctx, video.ID, VideoInput{Title: "Clip 2", Description: "d"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.FilePath != video.FilePath || updated.Title != "Clip 2" {
		t.Errorf("updated = %+v", updated)
	}
}

func TestDeleteRemoteLeavesObject(t *testing.T) {
	backend := &fakeMedia{}
	p, s, _ := newTestPublisher(t, backend)
	ctx := context.Background()

	post, err := p.CreatePost(ctx, PostInput{Title: "Remote", Content: "c", Image: upload("pic.gif", "GIF89a")})
	if err != nil {
		t.Fatal(err)
	}
	if !media.IsRemote(post.ImageFile) {
		t.Fatalf("ImageFile = %q, want remote URL", post.ImageFile)
	}
	if err := p.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if _, err := s.GetPost(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("post still present: %v", err)
	}
	if err := p.DeletePost(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeletePost err = %v, want ErrNotFound", err)
	}
}

func TestUpdateAboutIsPartial(t *testing.T) {
	p, s, _ := newTestPublisher(t, nil)
	ctx := context.Background()
	if _, err := s.Seed(ctx, "admin", "x"); err != nil {
		t.Fatal(err)
	}

	mission := "Teach everyone"
	about, err := p.UpdateAbout(ctx, AboutInput{Mission: &mission})
	if err != nil {
		t.Fatalf("UpdateAbout: %v", err)
	}
	if about.Mission != mission || about.FounderName != defaultFounderName || about.FounderBio != defaultFounderBio {
		t.Errorf("about = %+v", about)
	}

	name := "Ada"
	if _, err := p.UpdateAbout(ctx, AboutInput{FounderName: &name}); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetAbout(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.FounderName != "Ada" || got.Mission != mission || got.FounderImage != "" {
		t.Errorf("stored about = %+v", got)
	}
}

func TestUpdateAboutRejectsOnStorageFailure(t *testing.T) {
	p, s, _ := newTestPublisher(t, &fakeMedia{err: errors.New("bucket gone")})
	ctx := context.Background()

	vision := "New vision"
	_, err := p.UpdateAbout(ctx, AboutInput{Vision: &vision, Image: upload("me.png", "img")})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
	got, err := s.GetAbout(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Vision == vision {
		t.Error("text fields must not be saved when the image upload fails")
	}
}

func TestAboutCreatesDefaultProfile(t *testing.T) {
	p, _, _ := newTestPublisher(t, nil)
	ctx := context.Background()

	first, err := p.About(ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.About(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == 0 || first.ID != second.ID {
		t.Errorf("About ids = %d, %d; want one stable row", first.ID, second.ID)
	}
}

func TestMutationsInvalidateCache(t *testing.T) {
	p, _, _ := newTestPublisher(t, &fakeMedia{})
	p.cache.StoreHome(HomePage{})
	if _, ok := p.cache.Home(); !ok {
		t.Fatal("expected cached home")
	}
	if _, err := p.CreatePost(context.Background(), PostInput{Title: "New"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.cache.Home(); ok {
		t.Error("cache should be cleared after a mutation")
	}
}
