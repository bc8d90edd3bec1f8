// Package encoder pipes rendered frames to ffmpeg as rawvideo and muxes
// them into an H.264 file.
package encoder

import (
	"fmt"
	"io"
	"log"
	"sync/atomic"

	"github.com/rpattison/glslide/options"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Frame represents a single rendered video frame's data, ready for encoding.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// Encoder consumes frames from a bounded channel and writes them to an
// ffmpeg process through a pipe. The producer renders, the consumer
// encodes.
type Encoder struct {
	opts       *options.SlideOptions
	frames     chan *Frame
	done       chan error
	pipeWriter *io.PipeWriter
	failed     atomic.Bool
}

func NewEncoder(opts *options.SlideOptions) *Encoder {
	return &Encoder{
		opts:   opts,
		frames: make(chan *Frame, 4),
		done:   make(chan error, 1),
	}
}

// buildArgs assembles the ffmpeg input and output arguments for a raw RGBA
// stream. GL readback is bottom-up, so the output chain vflips.
func buildArgs(width, height, fps int) (inputArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", width, height),
		"framerate": fps,
	}
	outputArgs = ffmpeg.KwArgs{
		"c:v":     "libx264",
		"pix_fmt": "yuv420p",
		"vf":      "vflip",
		"b:v":     "8M",
	}
	return
}

// Start launches the ffmpeg process and the consumer goroutine.
func (e *Encoder) Start() error {
	if *e.opts.OutputFile == "" {
		return fmt.Errorf("no output file specified")
	}

	pipeReader, pipeWriter := io.Pipe()
	e.pipeWriter = pipeWriter

	inputArgs, outputArgs := buildArgs(*e.opts.Width, *e.opts.Height, *e.opts.FPS)
	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(*e.opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()

	if *e.opts.FFMPEGPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(*e.opts.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		if err != nil {
			e.failed.Store(true)
		}
		// ffmpeg is gone. Closing the read side fails any Write still
		// blocked on the pipe so the consumer can resume draining.
		pipeReader.CloseWithError(err)
		errc <- err
	}()

	go e.run(errc)
	return nil
}

// run drains the frame channel into the pipe, then propagates ffmpeg's exit
// status through done. After a write failure it keeps draining and
// discarding so the producer never wedges on a full channel.
func (e *Encoder) run(errc <-chan error) {
	for frame := range e.frames {
		if e.failed.Load() {
			continue
		}
		if _, err := e.pipeWriter.Write(frame.Pixels); err != nil {
			log.Printf("Error writing frame %d to ffmpeg: %v", frame.PTS, err)
			e.failed.Store(true)
		}
	}
	e.pipeWriter.Close()
	e.done <- <-errc
}

// Send queues a frame for encoding, blocking when the encoder is behind. It
// reports false once the encoder has failed, so the producer can stop
// rendering and collect the error from Close.
func (e *Encoder) Send(frame *Frame) bool {
	if e.failed.Load() {
		return false
	}
	e.frames <- frame
	return true
}

// Close signals end of stream and waits for ffmpeg to finish.
func (e *Encoder) Close() error {
	close(e.frames)
	return <-e.done
}
