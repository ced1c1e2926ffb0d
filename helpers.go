package impactful

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PostURL returns the canonical URL of a post.
func PostURL(base string, id int64) string {
	return BuildURL(base, "post", strconv.FormatInt(id, 10))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", ErrInvalid, raw)
	}
	return id, nil
}

// formUpload reads the multipart file in field. A missing file input, or
// one left unselected, yields nil so callers can tell "no upload" from a
// read failure. A selected but empty file is returned as-is.
func formUpload(c echo.Context, field string, maxBytes int64) (*Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if fh.Filename == "" {
		return nil, nil
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d MB", ErrInvalid, fh.Filename, maxBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &Upload{Name: fh.Filename, Data: data}, nil
}

// optionalField returns a pointer to the trimmed form value, or nil when
// the field was left blank.
func optionalField(c echo.Context, name string) *string {
	v := strings.TrimSpace(c.FormValue(name))
	if v == "" {
		return nil
	}
	return &v
}

func checked(c echo.Context, name string) bool {
	switch strings.ToLower(c.FormValue(name)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
