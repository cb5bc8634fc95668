// utils/file_utils.go
package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kanya01/freqspace-backend/config"
)

// Base URL for serving files
const FileBaseURL = "/uploads"

// LocalStorage persists uploaded files on the local disk under the managed
// uploads tree. It is the single writer/deleter for every media artifact;
// paths it hands out are relative (e.g. "uploads/tracks/...") and are what
// content records reference.
type LocalStorage struct {
	dirs []string
}

// NewLocalStorage builds a LocalStorage over the configured upload tree.
func NewLocalStorage(cfg *config.UploadConfig) *LocalStorage {
	return &LocalStorage{dirs: cfg.ManagedDirs()}
}

// Init creates every managed upload directory. Called once at process
// start, before serving traffic.
func (s *LocalStorage) Init() error {
	for _, dir := range s.dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create upload directory %s: %v", dir, err)
		}
	}
	return nil
}

// GenerateFilename derives a collision-resistant name for an accepted
// upload: epoch millis plus a random hex suffix plus the original
// extension. The original filename never reaches disk.
func GenerateFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), suffix, ext)
}

// Save writes data into the given managed subdirectory under a generated
// name and returns the stored path.
func (s *LocalStorage) Save(subDir, originalName string, data []byte) (string, error) {
	filename := GenerateFilename(originalName)
	fullPath := filepath.Join(config.UploadBaseDir, subDir, filename)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %v", fullPath, err)
	}
	return fullPath, nil
}

// Delete removes a stored file. Deleting a missing path is not an error;
// concurrent deletes of the same file are safe.
func (s *LocalStorage) Delete(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %v", path, err)
	}
	return nil
}

// Exists reports whether a stored path resolves to a regular file.
func (s *LocalStorage) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CheckUpload applies the intake filter for a single file before any byte
// is written: the declared MIME type must match the field's allow-list and
// the size must be under the field's ceiling.
func CheckUpload(policy config.UploadPolicy, mimeType string, size int64) error {
	if !policy.Allows(mimeType) {
		return ErrInvalidMediaType(fmt.Sprintf(
			"File type %q is not allowed for field %q", mimeType, policy.Field))
	}
	if size > policy.MaxBytes {
		return ErrFileTooLarge(fmt.Sprintf(
			"File too large. Maximum size for %q is %d bytes", policy.Field, policy.MaxBytes))
	}
	return nil
}

// KindFromMIME maps a declared MIME type to a content kind.
func KindFromMIME(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	}
	return ""
}

// CleanupFiles deletes the given paths best-effort. Failures are logged as
// storage inconsistencies for operational cleanup and never propagate: an
// orphaned file is recoverable garbage, an aborted record operation is not.
func (s *LocalStorage) CleanupFiles(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := s.Delete(path); err != nil {
			log.Printf("storage inconsistency: failed to remove %s: %v", path, err)
		}
	}
}
