// Package media stores uploaded files either on local disk or on a remote
// S3-compatible host and hands back a locator for the stored bytes.
//
// A locator is a plain string. Locators starting with http:// or https://
// are absolute URLs on the remote host; anything else is a filename relative
// to the local upload directory.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ErrStore is returned by every backend when bytes could not be stored.
var ErrStore = errors.New("media: store failed")

// ErrBadLocator is returned when a local locator cannot be resolved safely.
var ErrBadLocator = errors.New("media: invalid locator")

// DownloadPrefix is the route under which local locators are served.
const DownloadPrefix = "/download/"

// Remote drivers.
const (
	DriverMinio = "minio"
	DriverS3    = "s3"
)

// Store is the uniform "store bytes, get back a locator" contract.
type Store interface {
	Put(ctx context.Context, data []byte, originalName string) (string, error)
	Name() string
}

// Config selects and configures the storage backend.
type Config struct {
	UploadDir string
	Remote    RemoteConfig
}

// RemoteConfig describes the remote media host. The host is used only when
// Bucket is set.
type RemoteConfig struct {
	Driver    string // "minio" (default) or "s3"
	Endpoint  string // host[:port] for minio, full URL for s3-compatible endpoints
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string // optional prefix for object URLs
}

// Enabled reports whether uploads go to the remote host.
func (r RemoteConfig) Enabled() bool {
	return strings.TrimSpace(r.Bucket) != ""
}

// Select builds the backend for the process. The choice is fixed for the
// lifetime of the returned Store.
func Select(ctx context.Context, cfg Config, logger echo.Logger) (Store, error) {
	if !cfg.Remote.Enabled() {
		return NewLocal(cfg.UploadDir, logger), nil
	}
	switch strings.ToLower(cfg.Remote.Driver) {
	case "", DriverMinio:
		return NewMinio(cfg.Remote, logger)
	case DriverS3:
		return NewS3(ctx, cfg.Remote, logger)
	default:
		return nil, fmt.Errorf("media: unknown driver %q", cfg.Remote.Driver)
	}
}

var remoteRe = regexp.MustCompile(`(?i)^https?://`)

// IsRemote reports whether loc is an absolute http(s) URL.
func IsRemote(loc string) bool {
	return remoteRe.MatchString(loc)
}

// Href returns the URL a browser should use for loc.
func Href(loc string) string {
	if loc == "" || IsRemote(loc) {
		return loc
	}
	return DownloadPrefix + url.PathEscape(loc)
}

// LocalPath resolves a local locator against root. Locators containing path
// separators or parent references are rejected.
func LocalPath(root, loc string) (string, error) {
	if loc == "" || IsRemote(loc) || loc == "." || loc == ".." ||
		strings.ContainsAny(loc, `/\`) || strings.Contains(loc, "..") {
		return "", ErrBadLocator
	}
	return filepath.Join(root, loc), nil
}

// RemoveLocal deletes the file behind a local locator. Remote locators and
// already-missing files are ignored.
func RemoveLocal(root, loc string) error {
	if loc == "" || IsRemote(loc) {
		return nil
	}
	path, err := LocalPath(root, loc)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

var (
	unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	repeatedDots    = regexp.MustCompile(`\.{2,}`)
)

// SafeName reduces an uploaded filename to a portable base name. The stem
// and extension are cleaned separately so the extension survives a stem
// made only of non-ASCII characters.
func SafeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := filepath.Ext(name)
	stem := cleanNamePart(strings.TrimSuffix(name, ext))
	ext = cleanNamePart(ext)
	if stem == "" {
		stem = "file"
	}
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}

func cleanNamePart(s string) string {
	s = unsafeNameChars.ReplaceAllString(s, "_")
	s = repeatedDots.ReplaceAllString(s, ".")
	return strings.Trim(s, "._")
}

// UniqueName prefixes the sanitized original name with a second-resolution
// timestamp and a short random segment.
func UniqueName(originalName string, now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return now.UTC().Format("20060102150405") + "_" + token + "_" + SafeName(originalName)
}
