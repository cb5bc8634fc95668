package utils

import (
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWaveformFromPCMLengthAndNormalization(t *testing.T) {
	samples := make([]int16, 8000)
	for i := range samples {
		samples[i] = int16(1000 * math.Sin(float64(i)/20))
	}

	envelope := WaveformFromPCM(samples, 100)
	if len(envelope) != 100 {
		t.Fatalf("envelope length = %d, want 100", len(envelope))
	}

	peak := 0.0
	for i, v := range envelope {
		if v < 0 || v > 1 {
			t.Fatalf("envelope[%d] = %v, outside [0,1]", i, v)
		}
		if v > peak {
			peak = v
		}
	}
	if peak != 1 {
		t.Errorf("peak = %v, want exactly 1 after normalization", peak)
	}
}

func TestWaveformFromPCMDeterministic(t *testing.T) {
	samples := []int16{100, -200, 300, -400, 500, -600, 700, -800}
	a := WaveformFromPCM(samples, 4)
	b := WaveformFromPCM(samples, 4)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("envelope differs at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestWaveformFromPCMShortClip(t *testing.T) {
	envelope := WaveformFromPCM([]int16{1000, 2000}, 100)
	if len(envelope) != 100 {
		t.Fatalf("envelope length = %d, want 100", len(envelope))
	}
	for i := 2; i < 100; i++ {
		if envelope[i] != 0 {
			t.Fatalf("envelope[%d] = %v, want 0 past the end of a short clip", i, envelope[i])
		}
	}
}

func TestWaveformFromPCMSilence(t *testing.T) {
	envelope := WaveformFromPCM(make([]int16, 4000), 100)
	for i, v := range envelope {
		if v != 0 {
			t.Fatalf("envelope[%d] = %v for silence, want 0", i, v)
		}
	}
}

func TestWaveformFromPCMEmpty(t *testing.T) {
	envelope := WaveformFromPCM(nil, 100)
	if len(envelope) != 100 {
		t.Fatalf("envelope length = %d, want 100", len(envelope))
	}
	if WaveformFromPCM([]int16{1}, 0) != nil {
		t.Error("zero points should yield nil")
	}
}

func TestParseProbeDuration(t *testing.T) {
	cases := []struct {
		name    string
		json    string
		want    float64
		wantErr bool
	}{
		{"format duration", `{"format":{"duration":"41.2"}}`, 41.2, false},
		{"stream fallback", `{"format":{},"streams":[{"duration":"12.5"}]}`, 12.5, false},
		{"format preferred", `{"format":{"duration":"30"},"streams":[{"duration":"99"}]}`, 30, false},
		{"no duration", `{"format":{},"streams":[{}]}`, 0, true},
		{"garbage", `not json`, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseProbeDuration(tc.json)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProbeDuration: %v", err)
			}
			if got != tc.want {
				t.Errorf("duration = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestImageDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 640, 480))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	prober := NewFFmpegProber(0)
	w, h, err := prober.ImageDimensions(path)
	if err != nil {
		t.Fatalf("ImageDimensions: %v", err)
	}
	if w != 640 || h != 480 {
		t.Errorf("dimensions = %dx%d, want 640x480", w, h)
	}
}

func TestImageDimensionsRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-image.png")
	if err := os.WriteFile(path, []byte("plain text"), 0644); err != nil {
		t.Fatal(err)
	}

	prober := NewFFmpegProber(0)
	if _, _, err := prober.ImageDimensions(path); err == nil {
		t.Fatal("expected an error for a non-image file")
	}
}

func TestPCMSamples(t *testing.T) {
	samples := pcmSamples([]byte{0x01, 0x00, 0xFF, 0xFF, 0x00})
	if len(samples) != 2 {
		t.Fatalf("samples = %d, want 2 (trailing byte dropped)", len(samples))
	}
	if samples[0] != 1 || samples[1] != -1 {
		t.Errorf("samples = %v, want [1 -1]", samples)
	}
}
