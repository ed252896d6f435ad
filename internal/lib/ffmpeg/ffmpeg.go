package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Duration extracts media duration in seconds via ffprobe.
func Duration(ctx context.Context, file string) (float64, error) {
	const op = "ffmpeg.Duration"

	cmd := exec.CommandContext(
		ctx,
		"ffprobe",            //						call ffprobe
		"-loglevel", "error", //						set loglevel
		"-show_entries", "format=duration", //			set parameter to write
		"-of", "default=noprint_wrappers=1:nokey=1", //	write only the result (without key)
		file, //										target file
	)

	stdout, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	seconds, err := strconv.ParseFloat(strings.Trim(string(stdout), "\n"), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", op, string(stdout), err)
	}

	return seconds, nil
}

// FormatDuration renders seconds as hours:minutes:seconds
// without zero padding.
func FormatDuration(seconds float64) string {
	total := int64(seconds)

	hours := total / 3600
	minutes := total/60 - hours*60
	secs := total % 60

	return fmt.Sprintf("%d:%d:%d", hours, minutes, secs)
}
