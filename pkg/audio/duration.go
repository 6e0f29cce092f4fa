package audio

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// assumedBitrate is used for the size-based duration fallback:
// 128 kbps MP3 is roughly 16KB per second.
const assumedBitrate = 128 * 1024 / 8

// transcodeToMP3 converts a WAV file to MP3 with ffmpeg.
func transcodeToMP3(wavPath, mp3Path string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrEncoderMissing
	}

	var stderr bytes.Buffer
	cmd := exec.Command("ffmpeg", "-y", "-i", wavPath,
		"-codec:a", "libmp3lame", "-qscale:a", "2", mp3Path)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg transcode: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Duration returns the length of an audio file in seconds, probing the
// file metadata with ffprobe and falling back to a constant-bitrate
// estimate from the file size when probing is unavailable.
func Duration(path string) int {
	if seconds, err := probeDuration(path); err == nil {
		return seconds
	} else {
		log.Printf("ffprobe failed for %s, estimating from size: %v", path, err)
	}
	return estimateFromSize(path)
}

func probeDuration(path string) (int, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return 0, fmt.Errorf("ffprobe not found: %w", err)
	}

	out, err := exec.Command("ffprobe", "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return int(seconds), nil
}

// estimateFromSize assumes a 128 kbps constant bitrate.
func estimateFromSize(path string) int {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return int(info.Size() / assumedBitrate)
}
