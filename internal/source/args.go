package source

// BuildProbeArgs constructs ffprobe arguments that report the first video
// stream's geometry, rotation, rate and duration as JSON.
func BuildProbeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,avg_frame_rate,duration" +
			":stream_tags=rotate:stream_side_data=rotation:format=duration",
		"-of", "json",
		path,
	}
}

// BuildDecodeArgs constructs ffmpeg arguments that write every video frame
// of path to stdout as packed RGBA, audio and subtitles dropped.
func BuildDecodeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-nostdin",
		"-i", path,
		"-an", "-sn",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	}
}
