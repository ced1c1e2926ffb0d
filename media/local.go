package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
)

// Local writes uploads into a directory on disk.
type Local struct {
	dir    string
	logger echo.Logger
	now    func() time.Time
}

// NewLocal creates a Local backend rooted at dir. The directory is created
// lazily on the first Put.
func NewLocal(dir string, logger echo.Logger) *Local {
	return &Local{dir: dir, logger: logger, now: time.Now}
}

// Name implements Store.
func (l *Local) Name() string { return "local" }

// Dir returns the upload root.
func (l *Local) Dir() string { return l.dir }

// Put writes data under a timestamped name and returns that bare filename.
func (l *Local) Put(ctx context.Context, data []byte, originalName string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrStore)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStore, err)
	}
	// MkdirAll tolerates a concurrent creator.
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		l.logger.Errorf("media: create upload dir %s: %v", l.dir, err)
		return "", fmt.Errorf("%w: create upload dir: %v", ErrStore, err)
	}
	name := UniqueName(originalName, l.now())
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		l.logger.Errorf("media: write %s: %v", name, err)
		return "", fmt.Errorf("%w: write file: %v", ErrStore, err)
	}
	return name, nil
}
