package utils

import (
	"os"
	"regexp"
	"testing"

	"github.com/kanya01/freqspace-backend/config"
)

// chdirTemp runs the test from a temp directory so the uploads tree never
// touches the working copy.
func chdirTemp(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestGenerateFilename(t *testing.T) {
	pattern := regexp.MustCompile(`^\d+-[0-9a-f]{32}\.mp3$`)

	name := GenerateFilename("My Song (final).MP3")
	if !pattern.MatchString(name) {
		t.Errorf("filename %q does not match expected format", name)
	}
	if GenerateFilename("a.mp3") == GenerateFilename("a.mp3") {
		t.Error("two generated filenames collided")
	}
}

func TestStorageInitCreatesManagedDirs(t *testing.T) {
	chdirTemp(t)
	cfg := config.LoadUploadConfig()
	storage := NewLocalStorage(cfg)

	if err := storage.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, dir := range cfg.ManagedDirs() {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("managed directory %s was not created", dir)
		}
	}
}

func TestStorageSaveDeleteRoundTrip(t *testing.T) {
	chdirTemp(t)
	storage := NewLocalStorage(config.LoadUploadConfig())
	if err := storage.Init(); err != nil {
		t.Fatal(err)
	}

	path, err := storage.Save(config.TrackDir, "song.mp3", []byte("audio bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !storage.Exists(path) {
		t.Fatal("saved file does not exist")
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "audio bytes" {
		t.Errorf("stored content = %q, %v", data, err)
	}

	if err := storage.Delete(path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if storage.Exists(path) {
		t.Error("file still exists after delete")
	}

	// Deleting again must not error.
	if err := storage.Delete(path); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestCleanupFilesIgnoresMissingAndEmpty(t *testing.T) {
	chdirTemp(t)
	storage := NewLocalStorage(config.LoadUploadConfig())
	if err := storage.Init(); err != nil {
		t.Fatal(err)
	}

	path, err := storage.Save(config.CoverDir, "c.jpg", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}

	storage.CleanupFiles(path, "", "uploads/covers/never-existed.jpg")
	if storage.Exists(path) {
		t.Error("cleanup did not remove the file")
	}
}

func TestCheckUpload(t *testing.T) {
	cfg := config.LoadUploadConfig()
	policy, ok := cfg.PolicyFor("track")
	if !ok {
		t.Fatal("missing track policy")
	}

	if err := CheckUpload(policy, "audio/mpeg", 1024); err != nil {
		t.Errorf("valid audio rejected: %v", err)
	}

	err := CheckUpload(policy, "video/mp4", 1024)
	appErr, isApp := AsAppError(err)
	if !isApp || appErr.Type != ErrTypeInvalidMediaType {
		t.Errorf("video on track field = %v, want InvalidMediaType", err)
	}

	err = CheckUpload(policy, "audio/mpeg", policy.MaxBytes+1)
	appErr, isApp = AsAppError(err)
	if !isApp || appErr.Type != ErrTypeFileTooLarge {
		t.Errorf("oversized file = %v, want FileTooLarge", err)
	}

	// Exactly at the ceiling is allowed.
	if err := CheckUpload(policy, "audio/flac", policy.MaxBytes); err != nil {
		t.Errorf("file at exact ceiling rejected: %v", err)
	}
}

func TestKindFromMIME(t *testing.T) {
	cases := map[string]string{
		"image/png":       "image",
		"image/jpeg":      "image",
		"video/mp4":       "video",
		"audio/mpeg":      "audio",
		"audio/wav":       "audio",
		"application/pdf": "",
		"":                "",
	}
	for mime, want := range cases {
		if got := KindFromMIME(mime); got != want {
			t.Errorf("KindFromMIME(%q) = %q, want %q", mime, got, want)
		}
	}
}

func TestParseTags(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"comma separated", "Rock, jazz , rock", []string{"rock", "jazz"}},
		{"json array", `["Lo-Fi","Beats","lo-fi"]`, []string{"lo-fi", "beats"}},
		{"empty", "   ", nil},
		{"capped", "a,b,c,d,e,f,g", []string{"a", "b", "c", "d", "e"}},
		{"blank entries", ",,a,,", []string{"a"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseTags(tc.raw)
			if len(got) != len(tc.want) {
				t.Fatalf("ParseTags(%q) = %v, want %v", tc.raw, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("ParseTags(%q) = %v, want %v", tc.raw, got, tc.want)
				}
			}
		})
	}
}

func TestParseBoolDefault(t *testing.T) {
	if !ParseBoolDefault("true", false) || ParseBoolDefault("false", true) {
		t.Error("literal true/false not honored")
	}
	if !ParseBoolDefault(" TRUE ", false) {
		t.Error("case and whitespace should be tolerated")
	}
	if !ParseBoolDefault("", true) || ParseBoolDefault("yes", false) {
		t.Error("non-literal values should yield the default")
	}
}
