package impactful

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// newTestStore opens a fresh SQLite store whose clock advances one minute
// per write, so creation order is also date order.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func mustCreatePost(t *testing.T, s *Store, p Post) Post {
	t.Helper()
	created, err := s.CreatePost(context.Background(), p)
	if err != nil {
		t.Fatalf("CreatePost(%q): %v", p.Title, err)
	}
	return created
}

func mustCreateBook(t *testing.T, s *Store, b Book) Book {
	t.Helper()
	created, err := s.CreateBook(context.Background(), b)
	if err != nil {
		t.Fatalf("CreateBook(%q): %v", b.Title, err)
	}
	return created
}

func titles(posts []Post) string {
	var out []string
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return strings.Join(out, ",")
}

func TestNewStoreIsReopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "impactful.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	mustCreatePost(t, s, Post{Title: "kept", Content: "x"})
	s.Close()

	s, err = NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	v, err := s.GetSetting(context.Background(), "schema_version")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if v == "" || v == "0" {
		t.Fatalf("schema_version = %q, want migrations applied", v)
	}
	n, err := s.CountPosts(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("CountPosts = %d, %v; want 1", n, err)
	}
}

func TestPostRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := mustCreatePost(t, s, Post{Title: "Hello", Content: "Body", ImageFile: "a.jpg", IsCarousel: true})
	if created.ID == 0 {
		t.Fatal("expected an ID")
	}
	got, err := s.GetPost(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.Title != "Hello" || got.Content != "Body" || got.ImageFile != "a.jpg" || !got.IsCarousel {
		t.Errorf("GetPost = %+v", got)
	}
	if !got.DatePosted.Equal(created.DatePosted) {
		t.Errorf("DatePosted = %v, want %v", got.DatePosted, created.DatePosted)
	}

	got.Title, got.ImageFile, got.IsCarousel = "Renamed", "", false
	if err := s.UpdatePost(ctx, got); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	got, _ = s.GetPost(ctx, created.ID)
	if got.Title != "Renamed" || got.ImageFile != "" || got.IsCarousel {
		t.Errorf("after update = %+v", got)
	}

	deleted, err := s.DeletePost(ctx, created.ID)
	if err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if deleted.Title != "Renamed" {
		t.Errorf("DeletePost returned %+v", deleted)
	}
	if _, err := s.GetPost(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost after delete err = %v, want ErrNotFound", err)
	}
}

func TestMissingEntitiesAreNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetPost(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost err = %v", err)
	}
	if _, err := s.DeleteBook(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteBook err = %v", err)
	}
	if err := s.UpdateVideo(ctx, Video{ID: 99, Title: "x", FilePath: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateVideo err = %v", err)
	}
	if _, err := s.GetAbout(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAbout err = %v", err)
	}
}

func TestPostListingsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreatePost(t, s, Post{Title: "p1", Content: "x"})
	mustCreatePost(t, s, Post{Title: "c1", Content: "x", IsCarousel: true})
	mustCreatePost(t, s, Post{Title: "p2", Content: "x"})
	mustCreatePost(t, s, Post{Title: "c2", Content: "x", IsCarousel: true})
	mustCreatePost(t, s, Post{Title: "p3", Content: "x"})
	mustCreatePost(t, s, Post{Title: "p4", Content: "x"})

	tests := []struct {
		name string
		get  func() ([]Post, error)
		want string
	}{
		{"all", func() ([]Post, error) { return s.ListPosts(ctx) }, "p4,p3,c2,p2,c1,p1"},
		{"carousel", func() ([]Post, error) { return s.ListCarouselPosts(ctx) }, "c2,c1"},
		{"latest", func() ([]Post, error) { return s.ListLatestPosts(ctx, 3) }, "p4,p3,p2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := tt.get()
			if err != nil {
				t.Fatal(err)
			}
			if got := titles(posts); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestListBooksLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, title := range []string{"b1", "b2", "b3", "b4"} {
		mustCreateBook(t, s, Book{Title: title, FilePath: title + ".pdf"})
	}

	all, err := s.ListBooks(ctx, 0)
	if err != nil || len(all) != 4 {
		t.Fatalf("ListBooks(0) = %d, %v", len(all), err)
	}
	top, err := s.ListBooks(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 3 || top[0].Title != "b4" || top[2].Title != "b2" {
		t.Errorf("ListBooks(3) = %+v", top)
	}
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreatePost(t, s, Post{Title: "Rise of AI", Content: "machines"})
	mustCreatePost(t, s, Post{Title: "Gardening", Content: "Ai-assisted pruning"})
	mustCreatePost(t, s, Post{Title: "Cooking", Content: "recipes"})
	mustCreatePost(t, s, Post{Title: "100% effort", Content: "percent"})
	mustCreateBook(t, s, Book{Title: "Deep Learning", Author: "Aisha Bello", FilePath: "dl.pdf"})
	mustCreateBook(t, s, Book{Title: "Poems", Author: "Someone", FilePath: "p.pdf"})
	mustCreatePost(t, s, Post{Title: "École Notes", Content: "lessons"})
	mustCreateBook(t, s, Book{Title: "Stories", Author: "Ülkü Şahin", FilePath: "s.pdf"})

	posts, err := s.SearchPosts(ctx, "ai")
	if err != nil {
		t.Fatal(err)
	}
	if got := titles(posts); got != "Gardening,Rise of AI" {
		t.Errorf("SearchPosts(ai) = %s", got)
	}

	books, err := s.SearchBooks(ctx, "AI")
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 || books[0].Title != "Deep Learning" {
		t.Errorf("SearchBooks(AI) = %+v", books)
	}

	for _, q := range []string{"École", "école", "ÉCOLE"} {
		posts, err := s.SearchPosts(ctx, q)
		if err != nil {
			t.Fatal(err)
		}
		if got := titles(posts); got != "École Notes" {
			t.Errorf("SearchPosts(%s) = %q", q, got)
		}
	}
	books, _ = s.SearchBooks(ctx, "ülkü")
	if len(books) != 1 || books[0].Title != "Stories" {
		t.Errorf("SearchBooks(ülkü) = %+v", books)
	}

	posts, _ = s.SearchPosts(ctx, "%")
	if got := titles(posts); got != "100% effort" {
		t.Errorf("SearchPosts(%%) = %s, want literal match", got)
	}

	for _, q := range []string{"", "   "} {
		posts, err := s.SearchPosts(ctx, q)
		if err != nil || len(posts) != 0 {
			t.Errorf("SearchPosts(%q) = %v, %v; want empty", q, posts, err)
		}
		books, err := s.SearchBooks(ctx, q)
		if err != nil || len(books) != 0 {
			t.Errorf("SearchBooks(%q) = %v, %v; want empty", q, books, err)
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Seed(ctx, "admin", hash)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if !res.AdminCreated || !res.AboutCreated || !res.VisitorCreated {
		t.Fatalf("first Seed = %+v, want everything created", res)
	}

	res, err = s.Seed(ctx, "admin", "other-hash")
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if res.AdminCreated || res.AboutCreated || res.VisitorCreated {
		t.Fatalf("second Seed = %+v, want nothing created", res)
	}

	u, err := s.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if u.PasswordHash != hash {
		t.Error("second Seed must not replace the stored hash")
	}
	if u.PasswordHash == "changeme" || !strings.HasPrefix(u.PasswordHash, "$2") {
		t.Errorf("password stored as %q, want a bcrypt hash", u.PasswordHash)
	}
	if !u.IsAdmin {
		t.Error("seeded user should be admin")
	}

	about, err := s.GetAbout(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if about.FounderName != defaultFounderName || about.FounderBio != defaultFounderBio {
		t.Errorf("about = %+v", about)
	}
	if n, err := s.VisitorCount(ctx); err != nil || n != 0 {
		t.Errorf("VisitorCount = %d, %v", n, err)
	}
}

func TestIncrementVisitors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Seed(ctx, "admin", "x"); err != nil {
		t.Fatal(err)
	}
	for i := int64(1); i <= 3; i++ {
		n, err := s.IncrementVisitors(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if n != i {
			t.Errorf("IncrementVisitors = %d, want %d", n, i)
		}
	}
}

func TestIncrementVisitorsWithoutRow(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.IncrementVisitors(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveAbout(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateAbout(ctx, About{FounderName: "Ada", FounderBio: "bio"})
	if err != nil {
		t.Fatal(err)
	}
	first := a.LastUpdated
	a.Mission = "teach"
	saved, err := s.SaveAbout(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if !saved.LastUpdated.After(first) {
		t.Errorf("LastUpdated %v not after %v", saved.LastUpdated, first)
	}
	got, _ := s.GetAbout(ctx)
	if got.Mission != "teach" || got.FounderName != "Ada" {
		t.Errorf("GetAbout = %+v", got)
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if v, err := s.GetSetting(ctx, "missing"); v != "" || err != nil {
		t.Errorf("GetSetting(missing) = %q, %v; want empty", v, err)
	}
	if err := s.SetSetting(ctx, "k", "1"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting(ctx, "k", "2"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.GetSetting(ctx, "k"); v != "2" {
		t.Errorf("GetSetting = %q, want 2", v)
	}
}

func TestLikePattern(t *testing.T) {
	tests := []struct{ in, want string }{
		{"AI", "%ai%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`c:\x`, `%c:\\x%`},
		{"École", "%école%"},
	}
	for _, tt := range tests {
		if got := likePattern(tt.in); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
