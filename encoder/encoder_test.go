package encoder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattison/glslide/options"
)

func TestBuildArgs(t *testing.T) {
	inputArgs, outputArgs := buildArgs(1280, 720, 30)

	assert.Equal(t, "rawvideo", inputArgs["f"])
	assert.Equal(t, "rgba", inputArgs["pix_fmt"])
	assert.Equal(t, "1280x720", inputArgs["s"])
	assert.Equal(t, 30, inputArgs["framerate"])

	assert.Equal(t, "libx264", outputArgs["c:v"])
	assert.Equal(t, "yuv420p", outputArgs["pix_fmt"])
	assert.Equal(t, "vflip", outputArgs["vf"])
}

func testOptions(t *testing.T, ffmpegPath string) *options.SlideOptions {
	t.Helper()
	width, height, fps := 8, 8, 30
	output := filepath.Join(t.TempDir(), "out.mp4")
	return &options.SlideOptions{
		Width:      &width,
		Height:     &height,
		FPS:        &fps,
		OutputFile: &output,
		FFMPEGPath: &ffmpegPath,
	}
}

// A dead ffmpeg process must not wedge the producer: Send keeps accepting
// (and discarding) frames until the failure is observed, and Close returns
// the ffmpeg error.
func TestSendDoesNotBlockAfterFfmpegFailure(t *testing.T) {
	e := NewEncoder(testOptions(t, filepath.Join(t.TempDir(), "no-such-ffmpeg")))
	require.NoError(t, e.Start())

	result := make(chan error, 1)
	go func() {
		pixels := make([]byte, 8*8*4)
		for i := 0; i < 32; i++ {
			if !e.Send(&Frame{Pixels: pixels, PTS: int64(i)}) {
				break
			}
		}
		result <- e.Close()
	}()

	select {
	case err := <-result:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("producer still blocked in Send after ffmpeg failed")
	}
}

func TestCloseWithoutFramesReturnsFfmpegError(t *testing.T) {
	e := NewEncoder(testOptions(t, filepath.Join(t.TempDir(), "no-such-ffmpeg")))
	require.NoError(t, e.Start())
	assert.Error(t, e.Close())
}

func TestStartRequiresOutputFile(t *testing.T) {
	opts := testOptions(t, "")
	empty := ""
	opts.OutputFile = &empty
	e := NewEncoder(opts)
	assert.Error(t, e.Start())
}
