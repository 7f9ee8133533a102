// If you are AI: This file describes an ffmpeg input.

package ffx

// Input is one "-i" source.
type Input struct {
	URL string
	// Format forces the demuxer ("-f"). Empty lets ffmpeg probe.
	Format  string
	Options []string
}

// Args returns the input flags followed by "-i URL".
func (in Input) Args() []string {
	var args []string
	if in.Format != "" {
		args = append(args, "-f", in.Format)
	}
	args = append(args, in.Options...)
	return append(args, "-i", in.URL)
}
