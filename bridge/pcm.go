package bridge

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Source yields captured chunks. The returned slice is only valid until the
// next call. A source ends its direction by returning io.EOF.
type Source interface {
	ReadChunk(ctx context.Context) ([]int16, error)
}

// Sink plays processed chunks.
type Sink interface {
	WriteChunk(ctx context.Context, chunk []int16) error
}

// PCMReader reads raw little-endian signed 16-bit mono PCM in chunks.
//
// A trailing partial chunk is returned as is, shorter than the chunk size,
// before io.EOF.
type PCMReader struct {
	r       io.Reader
	raw     []byte
	samples []int16
	done    bool
}

// NewPCMReader reads chunks of chunkSize samples from r.
func NewPCMReader(r io.Reader, chunkSize int) (*PCMReader, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("bridge: chunk size must be > 0, got %d", chunkSize)
	}
	return &PCMReader{
		r:       r,
		raw:     make([]byte, 2*chunkSize),
		samples: make([]int16, chunkSize),
	}, nil
}

// ReadChunk implements Source.
func (p *PCMReader) ReadChunk(ctx context.Context) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.done {
		return nil, io.EOF
	}

	n, err := io.ReadFull(p.r, p.raw)
	switch {
	case errors.Is(err, io.EOF):
		p.done = true
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		p.done = true
	case err != nil:
		return nil, err
	}

	count := n / 2
	if count == 0 {
		return nil, io.EOF
	}
	for i := range count {
		p.samples[i] = int16(binary.LittleEndian.Uint16(p.raw[2*i:]))
	}
	return p.samples[:count], nil
}

// PCMWriter writes chunks as raw little-endian signed 16-bit PCM.
type PCMWriter struct {
	w   io.Writer
	raw []byte
}

// NewPCMWriter writes to w.
func NewPCMWriter(w io.Writer) *PCMWriter {
	return &PCMWriter{w: w}
}

// WriteChunk implements Sink.
func (p *PCMWriter) WriteChunk(ctx context.Context, chunk []int16) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cap(p.raw) < 2*len(chunk) {
		p.raw = make([]byte, 2*len(chunk))
	}
	raw := p.raw[:2*len(chunk)]
	for i, s := range chunk {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(s))
	}
	_, err := p.w.Write(raw)
	return err
}
