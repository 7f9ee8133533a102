// If you are AI: This file locates the ffmpeg binary and assembles its command line.
// Transcoding runs ffmpeg as a child process; nothing here links against libav.

package ffx

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrFFmpegNotAvailable is returned when no executable ffmpeg can be found.
var ErrFFmpegNotAvailable = errors.New("ffmpeg not available")

// Locate resolves the ffmpeg binary. An empty path searches $PATH for "ffmpeg".
// The resolved file must exist and be executable.
func Locate(path string) (string, error) {
	if path == "" {
		found, err := exec.LookPath("ffmpeg")
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrFFmpegNotAvailable, err)
		}
		return found, nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFFmpegNotAvailable, err)
	}
	if fi.IsDir() || fi.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("%w: %s is not executable", ErrFFmpegNotAvailable, path)
	}
	return path, nil
}

// IsAvailable reports whether Locate(path) succeeds.
func IsAvailable(path string) bool {
	_, err := Locate(path)
	return err == nil
}

// Command is one ffmpeg invocation: global flags, one input and any number of outputs.
type Command struct {
	Global  []string
	Input   Input
	Outputs []Output
}

// Args returns the argument vector, without the binary name.
func (c Command) Args() []string {
	args := append([]string{}, c.Global...)
	args = append(args, c.Input.Args()...)
	for _, out := range c.Outputs {
		args = append(args, out.Args()...)
	}
	return args
}
