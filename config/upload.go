// config/upload.go
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	// UploadBaseDir is the root of the managed uploads tree.
	UploadBaseDir = "uploads"

	mb = 1024 * 1024
)

// Managed subdirectories, one per media kind.
const (
	AvatarDir    = "avatars"
	CoverDir     = "covers"
	TrackDir     = "tracks"
	ContentDir   = "content"
	PostDir      = "posts"
	WaveformDir  = "waveforms"
	ThumbnailDir = "thumbnails"
)

// UploadPolicy describes what a single multipart form field accepts: which
// MIME type prefixes are allowed, how many bytes at most, and which
// subdirectory accepted files land in.
type UploadPolicy struct {
	Field        string
	Dir          string
	AllowedMIMEs []string
	MaxBytes     int64
}

// Allows reports whether the declared MIME type matches the policy's
// allow-list.
func (p UploadPolicy) Allows(mimeType string) bool {
	for _, prefix := range p.AllowedMIMEs {
		if len(mimeType) >= len(prefix) && mimeType[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// UploadConfig holds the per-field upload policies plus the global media
// validation knobs.
type UploadConfig struct {
	policies map[string]UploadPolicy

	// MaxVideoSeconds is the video duration ceiling. A video probed over
	// this limit is rejected outright.
	MaxVideoSeconds float64

	// ProbeTimeoutSeconds bounds every ffmpeg probe invocation.
	ProbeTimeoutSeconds int

	// WaveformPoints is the length of the amplitude envelope synthesized
	// for audio uploads.
	WaveformPoints int
}

// LoadUploadConfig builds the upload policy table from environment
// variables, falling back to the platform defaults. Ceilings are
// configured in whole megabytes (UPLOAD_MAX_AVATAR_MB, UPLOAD_MAX_COVER_MB,
// UPLOAD_MAX_MEDIA_MB, UPLOAD_MAX_TRACK_MB, UPLOAD_MAX_ATTACHMENT_MB).
func LoadUploadConfig() *UploadConfig {
	cfg := &UploadConfig{
		policies:            make(map[string]UploadPolicy),
		MaxVideoSeconds:     envFloat("UPLOAD_MAX_VIDEO_SECONDS", 40),
		ProbeTimeoutSeconds: envInt("PROBE_TIMEOUT_SECONDS", 15),
		WaveformPoints:      envInt("WAVEFORM_POINTS", 100),
	}

	images := []string{"image/"}
	anyMedia := []string{"image/", "audio/", "video/"}

	for _, p := range []UploadPolicy{
		{Field: "avatar", Dir: AvatarDir, AllowedMIMEs: images, MaxBytes: envInt64("UPLOAD_MAX_AVATAR_MB", 5) * mb},
		{Field: "coverImage", Dir: CoverDir, AllowedMIMEs: images, MaxBytes: envInt64("UPLOAD_MAX_COVER_MB", 5) * mb},
		{Field: "media", Dir: ContentDir, AllowedMIMEs: anyMedia, MaxBytes: envInt64("UPLOAD_MAX_MEDIA_MB", 100) * mb},
		{Field: "track", Dir: TrackDir, AllowedMIMEs: []string{"audio/"}, MaxBytes: envInt64("UPLOAD_MAX_TRACK_MB", 50) * mb},
		{Field: "attachment", Dir: PostDir, AllowedMIMEs: anyMedia, MaxBytes: envInt64("UPLOAD_MAX_ATTACHMENT_MB", 10) * mb},
	} {
		cfg.policies[p.Field] = p
	}

	return cfg
}

// PolicyFor returns the upload policy for a form field name.
func (c *UploadConfig) PolicyFor(field string) (UploadPolicy, bool) {
	p, ok := c.policies[field]
	return p, ok
}

// DirFor resolves the destination subdirectory for an accepted upload.
// The generic "media" field routes by the declared kind: audio lands with
// the tracks, everything else in the content directory.
func (c *UploadConfig) DirFor(field, kind string) string {
	p, ok := c.policies[field]
	if !ok {
		return ContentDir
	}
	if p.Field == "media" && kind == "audio" {
		return TrackDir
	}
	return p.Dir
}

// ManagedDirs lists every directory the storage layer must create at boot.
func (c *UploadConfig) ManagedDirs() []string {
	dirs := []string{
		filepath.Join(UploadBaseDir, AvatarDir),
		filepath.Join(UploadBaseDir, CoverDir),
		filepath.Join(UploadBaseDir, TrackDir),
		filepath.Join(UploadBaseDir, ContentDir),
		filepath.Join(UploadBaseDir, PostDir),
		filepath.Join(UploadBaseDir, WaveformDir),
		filepath.Join(UploadBaseDir, ThumbnailDir),
	}
	return dirs
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}
