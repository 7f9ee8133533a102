// If you are AI: This file describes an ffmpeg output and its encoding settings.

package ffx

import "fmt"

// Output is one muxed output file.
type Output struct {
	Path       string
	Format     string
	VideoCodec string
	AudioCodec string
	// Width and Height scale the video when both are set.
	Width        int
	Height       int
	VideoBitrate string
	Options      []string
}

// Args returns the output flags followed by the path.
func (out Output) Args() []string {
	var args []string
	if out.AudioCodec != "" {
		args = append(args, "-c:a", out.AudioCodec)
	}
	if out.VideoCodec != "" {
		args = append(args, "-c:v", out.VideoCodec)
	}
	if out.Width > 0 && out.Height > 0 {
		args = append(args, "-s", fmt.Sprintf("%dx%d", out.Width, out.Height))
	}
	if out.VideoBitrate != "" {
		args = append(args, "-b:v", out.VideoBitrate)
	}
	args = append(args, out.Options...)
	if out.Format != "" {
		args = append(args, "-f", out.Format)
	}
	return append(args, out.Path)
}
