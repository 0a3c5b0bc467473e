package file

import (
	"context"
	"encoding/json"
	"io"
)

// Sink writes derived rows as NDJSON, one envelope per row. DeleteJob is a
// no-op: nothing written to the stream can be taken back, which is fine for
// one-shot CLI runs that discard partial output wholesale.
type Sink struct {
	enc *json.Encoder
}

// NewSink creates a Sink writing to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{enc: json.NewEncoder(w)}
}

type rowEnvelope struct {
	Stream string `json:"stream"`
	RowID  string `json:"row_id"`
	Row    any    `json:"row"`
}

// Emit writes one row envelope.
func (s *Sink) Emit(_ context.Context, stream, rowID string, row any) error {
	return s.enc.Encode(rowEnvelope{Stream: stream, RowID: rowID, Row: row})
}

// DeleteJob is a no-op on stream output.
func (s *Sink) DeleteJob(_ context.Context, _ string, _ int) error {
	return nil
}
