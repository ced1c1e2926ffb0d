package impactful

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abdondismas0-hub/impactful/media"
)

// DefaultAdminPassword is the seed password for the first admin account.
// Change it after the first login in any real deployment.
const DefaultAdminPassword = "changeme"

// Config holds all configuration for the site. It is built once at startup
// and passed to the components that need it.
type Config struct {
	Name        string // Site name (default "Impactful Mind")
	URL         string // Canonical URL (default "http://localhost:5000")
	Description string // Site description for RSS and meta tags

	Addr        string // Listen address (default ":5000")
	DatabaseURL string // SQLite path or postgres:// URL (default "data/impactful.db")
	UploadDir   string // Local upload root, kept outside the static dir (default "data/uploads")

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	SeedAdminUsername string // default "admin"
	SeedAdminPassword string // default DefaultAdminPassword

	ImageMaxWidth  int           // Downscale wider post/about images; 0 means 1600, negative disables
	MaxUploadBytes int64         // Per-file upload limit (default 50MB)
	CacheTTL       time.Duration // Homepage snapshot TTL; negative disables (default 1min)

	Media media.RemoteConfig // Remote media host; used only when Media.Bucket is set
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Impactful Mind"
	}
	if c.URL == "" {
		c.URL = "http://localhost:5000"
	}
	if c.Addr == "" {
		c.Addr = ":5000"
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "data/impactful.db"
	}
	if c.UploadDir == "" {
		c.UploadDir = "data/uploads"
	}
	if c.SeedAdminUsername == "" {
		c.SeedAdminUsername = "admin"
	}
	if c.SeedAdminPassword == "" {
		c.SeedAdminPassword = DefaultAdminPassword
	}
	if c.ImageMaxWidth == 0 {
		c.ImageMaxWidth = 1600
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 50 << 20
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = time.Minute
	}
}

// MediaConfig returns the storage selection config.
func (c Config) MediaConfig() media.Config {
	return media.Config{UploadDir: c.UploadDir, Remote: c.Media}
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("impactful: load .env: %v", err)
	}
	return Config{
		Name:              os.Getenv("SITE_NAME"),
		URL:               os.Getenv("SITE_URL"),
		Description:       os.Getenv("SITE_DESCRIPTION"),
		Addr:              os.Getenv("ADDR"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		UploadDir:         os.Getenv("UPLOAD_DIR"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		CookieSecure:      envBool("COOKIE_SECURE", false),
		SeedAdminUsername: os.Getenv("SEED_ADMIN_USERNAME"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
		ImageMaxWidth:     envInt("IMAGE_MAX_WIDTH", 0),
		MaxUploadBytes:    int64(envInt("MAX_UPLOAD_MB", 0)) << 20,
		CacheTTL:          envDuration("CACHE_TTL", 0),
		Media: media.RemoteConfig{
			Driver:    os.Getenv("MEDIA_DRIVER"),
			Endpoint:  os.Getenv("MEDIA_ENDPOINT"),
			AccessKey: os.Getenv("MEDIA_ACCESS_KEY"),
			SecretKey: os.Getenv("MEDIA_SECRET_KEY"),
			Bucket:    os.Getenv("MEDIA_BUCKET"),
			Region:    os.Getenv("MEDIA_REGION"),
			UseSSL:    envBool("MEDIA_USE_SSL", true),
			PublicURL: os.Getenv("MEDIA_PUBLIC_URL"),
		},
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "static").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithMediaStore overrides the storage backend chosen from Config.
func WithMediaStore(s media.Store) Option {
	return func(a *App) {
		a.Media = s
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("impactful: required environment variable %s is not set", key)
	}
	return v
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(EnvOr(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(EnvOr(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(EnvOr(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
