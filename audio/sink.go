package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gordonklaus/portaudio"
)

// Sink drives a Source from an audio device callback.
type Sink interface {
	Start() error
	Close() error
}

// PortAudioSink plays a Source on the default portaudio output device.
type PortAudioSink struct {
	src    Source
	stream *portaudio.Stream
	buf    []float32
}

func NewPortAudioSink(src Source, sampleRate float64, framesPerBuffer int) (*PortAudioSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	s := &PortAudioSink{
		src: src,
		buf: make([]float32, framesPerBuffer),
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, sampleRate, framesPerBuffer, s.process)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio: open stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

func (s *PortAudioSink) Start() error {
	return s.stream.Start()
}

func (s *PortAudioSink) Close() error {
	err := s.stream.Close()
	portaudio.Terminate()
	return err
}

func (s *PortAudioSink) process(samples [][]float32) {
	n := len(samples[0])
	if len(s.buf) < n {
		// only if the host ignores the requested buffer size
		s.buf = make([]float32, n)
	}
	mono := s.buf[:n]
	s.src.Process(mono)
	for i := range samples {
		copy(samples[i], mono)
	}
}

// OtoSink plays a Source through oto, which pulls float32 little endian
// bytes from it.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
	reader *sourceReader
	mu     sync.Mutex
}

func NewOtoSink(src Source, sampleRate int, framesPerBuffer int) (*OtoSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(framesPerBuffer) * time.Second / time.Duration(sampleRate),
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("oto: %w", err)
	}
	<-ready
	r := &sourceReader{src: src, buf: make([]float32, framesPerBuffer)}
	return &OtoSink{
		ctx:    ctx,
		player: ctx.NewPlayer(r),
		reader: r,
	}, nil
}

func (s *OtoSink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Play()
	return s.ctx.Err()
}

func (s *OtoSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.Close()
}

// sourceReader renders a Source into float32 little endian bytes.
type sourceReader struct {
	src Source
	buf []float32
}

func (r *sourceReader) Read(p []byte) (int, error) {
	n := len(p) / 4
	if len(r.buf) < n {
		r.buf = make([]float32, n)
	}
	samples := r.buf[:n]
	r.src.Process(samples)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return n * 4, nil
}
