package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The test binary doubles as ffmpeg and ffprobe when these are set.
const (
	envFakeFFmpeg  = "PIXELSHELL_FAKE_FFMPEG"
	envFakeFFprobe = "PIXELSHELL_FAKE_FFPROBE"
)

func TestMain(m *testing.M) {
	switch {
	case os.Getenv(envFakeFFmpeg) != "":
		os.Exit(fakeFFmpeg(os.Getenv(envFakeFFmpeg), os.Args[1:]))
	case os.Getenv(envFakeFFprobe) != "":
		fmt.Println(os.Getenv(envFakeFFprobe))
		os.Exit(0)
	}
	os.Exit(m.Run())
}

// fakeFFmpeg writes `mode` frames of the size given by the -vf scale filter.
// mode "fail" exits with an error message instead.
func fakeFFmpeg(mode string, args []string) int {
	if mode == "fail" {
		fmt.Fprintln(os.Stderr, "input.mkv: No such file or directory")
		return 1
	}
	var w, h int
	for i, a := range args {
		if a == "-vf" && i+1 < len(args) {
			scale, _, _ := strings.Cut(args[i+1], ",")
			fmt.Sscanf(scale, "scale=%d:%d", &w, &h)
		}
	}
	n, _ := strconv.Atoi(mode)
	for i := 0; i < n; i++ {
		os.Stdout.Write(bytes.Repeat([]byte{byte(i)}, w*h))
	}
	return 0
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestRawReader_ShortReadEndsInput(t *testing.T) {
	data := append(bytes.Repeat([]byte{1}, 12), 2, 2, 2, 2, 2)
	r, err := NewRawReader(bytes.NewReader(data), 3, 2)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		frame, err := r.Next()
		require.NoError(t, err)
		assert.Len(t, frame, 6)
	}
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, r.Frames())
	assert.Equal(t, 5, r.Partial())
}

func TestRawReader_CleanEnd(t *testing.T) {
	r, err := NewRawReader(bytes.NewReader(make([]byte, 8)), 4, 2)
	require.NoError(t, err)

	_, err = r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, r.Partial())
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("pipe broke") }

func TestRawReader_ReadError(t *testing.T) {
	r, err := NewRawReader(brokenReader{}, 2, 2)
	require.NoError(t, err)
	_, err = r.Next()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestNewRawReader_InvalidSize(t *testing.T) {
	_, err := NewRawReader(bytes.NewReader(nil), 0, 2)
	assert.Error(t, err)
}

func TestFFmpegArgs(t *testing.T) {
	args := FFmpegArgs(FFmpegConfig{Filters: DefaultFilters}, "in.mkv", 1280, 720)
	assert.Equal(t, []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-i", "in.mkv",
		"-vf", "scale=1280:720,format=gray,gblur=sigma=1.0:steps=1,eq=contrast=1000:saturation=0",
		"-f", "rawvideo", "-pix_fmt", "gray", "-",
	}, args)

	args = FFmpegArgs(FFmpegConfig{GPU: true, ExtraArgs: []string{"-t", "10"}}, "in.mp4", 64, 36)
	assert.Equal(t, []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-hwaccel", "cuda",
		"-i", "in.mp4",
		"-vf", "scale=64:36,format=gray",
		"-t", "10",
		"-f", "rawvideo", "-pix_fmt", "gray", "-",
	}, args)
}

func TestStartFFmpeg_ReadsFrames(t *testing.T) {
	t.Setenv(envFakeFFmpeg, "4")

	tr, err := StartFFmpeg(context.Background(), FFmpegConfig{Path: os.Args[0]}, "in.mkv", 8, 6, quietLogger())
	require.NoError(t, err)
	defer tr.Close()

	for i := 0; i < 4; i++ {
		frame, err := tr.Next()
		require.NoError(t, err)
		require.Len(t, frame, 48)
		assert.Equal(t, byte(i), frame[0])
	}
	_, err = tr.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, tr.Wait())
}

func TestStartFFmpeg_ExitErrorIncludesMessage(t *testing.T) {
	t.Setenv(envFakeFFmpeg, "fail")

	tr, err := StartFFmpeg(context.Background(), FFmpegConfig{Path: os.Args[0]}, "in.mkv", 8, 6, quietLogger())
	require.NoError(t, err)

	_, err = tr.Next()
	assert.ErrorIs(t, err, io.EOF)

	err = tr.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such file or directory")
	assert.Equal(t, err, tr.Close())
}

func TestStartFFmpeg_MissingBinary(t *testing.T) {
	_, err := StartFFmpeg(context.Background(), FFmpegConfig{Path: "/nonexistent/ffmpeg"}, "in.mkv", 8, 6, quietLogger())
	assert.Error(t, err)
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want uint16
	}{
		{"30/1", 30},
		{"30000/1001\n", 30},
		{"24000/1001", 24},
		{"60", 60},
		{"59.94", 60},
		{"25/1\n25/1\n", 25},
	}
	for _, tt := range tests {
		got, err := ParseRate(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "abc", "30/0", "0/1", "N/A", "100000"} {
		_, err := ParseRate(bad)
		assert.ErrorIs(t, err, ErrRate, bad)
	}
}

func TestProbeFPS(t *testing.T) {
	t.Setenv(envFakeFFprobe, "30000/1001")

	fps, err := ProbeFPS(context.Background(), os.Args[0], "in.mkv")
	require.NoError(t, err)
	assert.Equal(t, uint16(30), fps)
}
