package entity

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

var ErrEmptySequence = errors.New("sequence has no embeddings")

// EmbeddingSequence is the per-video training sample: one face embedding
// per sampled frame, flattened row-major as Steps x Dim float32.
type EmbeddingSequence struct {
	VideoID uuid.UUID
	Label   Label
	Steps   int
	Dim     int
	Data    []float32
}

func NewEmbeddingSequence(videoID uuid.UUID, label Label, dim int) *EmbeddingSequence {
	return &EmbeddingSequence{VideoID: videoID, Label: label, Dim: dim}
}

func (s *EmbeddingSequence) Append(embedding []float32) error {
	if len(embedding) != s.Dim {
		return fmt.Errorf("embedding has %d dims, want %d", len(embedding), s.Dim)
	}
	s.Data = append(s.Data, embedding...)
	s.Steps++
	return nil
}

// Step returns the embedding at timestep t. The returned slice aliases
// the sequence buffer.
func (s *EmbeddingSequence) Step(t int) []float32 {
	return s.Data[t*s.Dim : (t+1)*s.Dim]
}

// PadTo extends the sequence to exactly steps timesteps by repeating the
// last embedding, and truncates when the sequence is longer.
func (s *EmbeddingSequence) PadTo(steps int) error {
	if s.Steps == 0 {
		return ErrEmptySequence
	}
	if s.Steps > steps {
		s.Data = s.Data[:steps*s.Dim]
		s.Steps = steps
		return nil
	}
	last := s.Step(s.Steps - 1)
	for s.Steps < steps {
		s.Data = append(s.Data, last...)
		s.Steps++
		last = s.Step(s.Steps - 1)
	}
	return nil
}

func (s *EmbeddingSequence) Validate() error {
	if len(s.Data) != s.Steps*s.Dim {
		return fmt.Errorf("sequence data has %d values, want %d", len(s.Data), s.Steps*s.Dim)
	}
	if !s.Label.Valid() {
		return fmt.Errorf("invalid label %q", s.Label)
	}
	return nil
}

// EncodeData serializes the flattened embeddings as little-endian float32
// for blob storage.
func (s *EmbeddingSequence) EncodeData() []byte {
	buf := make([]byte, 4*len(s.Data))
	for i, v := range s.Data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func DecodeSequenceData(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("sequence blob length %d is not a multiple of 4", len(buf))
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out, nil
}
