// utils/media_probe.go
package utils

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os"
	"strconv"
	"time"

	// Register decoders for intrinsic-size probing of the common web
	// image formats.
	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// PCM decode parameters for waveform extraction. Mono 8kHz is plenty for a
// 100-point amplitude envelope.
const (
	waveformSampleRate = 8000
	thumbnailWidth     = 320
	thumbnailQuality   = 85
)

// FFmpegProber implements the media metadata extraction contract on top of
// ffmpeg/ffprobe, with every external invocation bounded by Timeout.
type FFmpegProber struct {
	Timeout time.Duration
}

// NewFFmpegProber returns a prober with the given per-probe timeout.
func NewFFmpegProber(timeout time.Duration) *FFmpegProber {
	return &FFmpegProber{Timeout: timeout}
}

// ImageDimensions reads the intrinsic width and height of an image without
// decoding the full pixel data.
func (p *FFmpegProber) ImageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, ErrUnreadableMedia("Could not open image").WithInternal(err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, ErrUnreadableMedia("Could not read image dimensions").WithInternal(err)
	}
	return cfg.Width, cfg.Height, nil
}

// Duration probes the container metadata of an audio or video file and
// returns its duration in seconds. A probe that does not return within the
// timeout is a probe failure: duration unknown.
func (p *FFmpegProber) Duration(path string) (float64, error) {
	probeJSON, err := p.runProbe(path)
	if err != nil {
		return 0, err
	}
	return parseProbeDuration(probeJSON)
}

// Waveform decodes the audio stream to PCM and computes a fixed-length
// normalized amplitude envelope for client-side rendering.
func (p *FFmpegProber) Waveform(path string, points int) ([]float64, error) {
	buf := &bytes.Buffer{}
	err := p.runTimed(fmt.Sprintf("waveform %s", path), func() error {
		return ffmpeg.Input(path).
			Output("pipe:", ffmpeg.KwArgs{
				"format": "s16le",
				"acodec": "pcm_s16le",
				"ac":     1,
				"ar":     strconv.Itoa(waveformSampleRate),
			}).
			Silent(true).
			WithOutput(buf).
			Run()
	})
	if err != nil {
		return nil, ErrUnreadableMedia("Could not decode audio").WithInternal(err)
	}

	samples := pcmSamples(buf.Bytes())
	if len(samples) == 0 {
		return nil, ErrUnreadableMedia("Audio stream is empty")
	}
	return WaveformFromPCM(samples, points), nil
}

// VideoThumbnail grabs a frame one second into a video, resizes it and
// returns it as JPEG bytes.
func (p *FFmpegProber) VideoThumbnail(path string) ([]byte, error) {
	raw := &bytes.Buffer{}
	err := p.runTimed(fmt.Sprintf("thumbnail %s", path), func() error {
		return ffmpeg.Input(path, ffmpeg.KwArgs{"ss": "00:00:01"}).
			Output("pipe:", ffmpeg.KwArgs{"vframes": 1, "format": "image2", "vcodec": "mjpeg"}).
			Silent(true).
			WithOutput(raw).
			Run()
	})
	if err != nil {
		return nil, ErrUnreadableMedia("Could not extract video frame").WithInternal(err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw.Bytes()))
	if err != nil {
		return nil, ErrUnreadableMedia("Could not decode video frame").WithInternal(err)
	}

	// Max width of 320px while maintaining aspect ratio.
	resized := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)

	out := &bytes.Buffer{}
	if err := jpeg.Encode(out, resized, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, ErrUnreadableMedia("Could not encode thumbnail").WithInternal(err)
	}
	return out.Bytes(), nil
}

// runProbe invokes ffprobe under the configured timeout.
func (p *FFmpegProber) runProbe(path string) (string, error) {
	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := ffmpeg.Probe(path)
		done <- result{out, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", ErrUnreadableMedia("Could not probe media file").WithInternal(r.err)
		}
		return r.out, nil
	case <-time.After(p.Timeout):
		return "", ErrUnreadableMedia("Media probe timed out").WithInternal(
			fmt.Errorf("probe of %s exceeded %s", path, p.Timeout))
	}
}

// runTimed bounds an ffmpeg invocation with the configured timeout. The
// underlying process is left to finish on its own if it overruns; its
// result is discarded.
func (p *FFmpegProber) runTimed(op string, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-time.After(p.Timeout):
		return fmt.Errorf("%s exceeded %s", op, p.Timeout)
	}
}

// parseProbeDuration extracts the duration in seconds from ffprobe JSON
// output, preferring the container-level value and falling back to the
// first stream that declares one.
func parseProbeDuration(probeJSON string) (float64, error) {
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
		Streams []struct {
			Duration string `json:"duration"`
		} `json:"streams"`
	}
	if err := json.Unmarshal([]byte(probeJSON), &probe); err != nil {
		return 0, ErrUnreadableMedia("Could not parse probe output").WithInternal(err)
	}

	candidates := []string{probe.Format.Duration}
	for _, s := range probe.Streams {
		candidates = append(candidates, s.Duration)
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if d, err := strconv.ParseFloat(c, 64); err == nil && d > 0 {
			return d, nil
		}
	}
	return 0, ErrUnreadableMedia("Media file has no duration metadata")
}

// pcmSamples reinterprets little-endian 16-bit PCM bytes as samples. A
// trailing odd byte is dropped.
func pcmSamples(data []byte) []int16 {
	n := len(data) / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
	}
	return samples
}

// WaveformFromPCM reduces raw PCM samples to a fixed-length envelope of
// per-block RMS amplitudes normalized to [0,1]. The output length is
// always exactly points; blocks past the end of short clips stay zero.
func WaveformFromPCM(samples []int16, points int) []float64 {
	if points <= 0 {
		return nil
	}
	envelope := make([]float64, points)
	if len(samples) == 0 {
		return envelope
	}

	blockSize := len(samples) / points
	if blockSize == 0 {
		blockSize = 1
	}

	peak := 0.0
	for i := 0; i < points; i++ {
		start := i * blockSize
		if start >= len(samples) {
			break
		}
		end := start + blockSize
		if i == points-1 || end > len(samples) {
			end = len(samples)
		}

		var sum float64
		for _, s := range samples[start:end] {
			v := float64(s)
			sum += v * v
		}
		rms := math.Sqrt(sum / float64(end-start))
		envelope[i] = rms
		if rms > peak {
			peak = rms
		}
	}

	if peak > 0 {
		for i := range envelope {
			envelope[i] /= peak
		}
	}
	return envelope
}
