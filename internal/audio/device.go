package audio

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = 44100
	BufferSize = 1024
)

var ErrDeviceUnavailable = errors.New("audio: output device unavailable")

// Output pulls stereo blocks from a render function.
type Output interface {
	Start(render func(out [][]float32)) error
	Close() error
}

// Device is the default portaudio output, two channels, no input.
type Device struct {
	sampleRate float64
	stream     *portaudio.Stream
}

func NewDevice(sampleRate float64) *Device {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	return &Device{sampleRate: sampleRate}
}

func (d *Device) Start(render func(out [][]float32)) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, d.sampleRate, BufferSize, render)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("%w: open stream: %v", ErrDeviceUnavailable, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("%w: start stream: %v", ErrDeviceUnavailable, err)
	}
	d.stream = stream
	return nil
}

func (d *Device) Close() error {
	if d.stream == nil {
		return nil
	}
	var errs []error
	errs = append(errs, d.stream.Stop(), d.stream.Close(), portaudio.Terminate())
	d.stream = nil
	return errors.Join(errs...)
}
