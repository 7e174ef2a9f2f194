package heightfield

import (
	"fmt"

	"github.com/udisondev/pathfind/internal/binio"
)

// spanSize is the encoded size of one span.
const spanSize = 12

// WriteHeader encodes the grid header.
func WriteHeader(w *binio.Writer, h Header) {
	w.I32(h.Width)
	w.I32(h.Height)
	w.Vec3(h.BMin)
	w.Vec3(h.BMax)
	w.F32(h.CellSize)
	w.F32(h.CellHeight)
}

// ReadHeader decodes and validates a grid header.
func ReadHeader(r *binio.Reader) (Header, error) {
	h := Header{
		Width:      r.I32(),
		Height:     r.I32(),
		BMin:       r.Vec3(),
		BMax:       r.Vec3(),
		CellSize:   r.F32(),
		CellHeight: r.F32(),
	}
	if err := r.Err(); err != nil {
		return Header{}, fmt.Errorf("read height field header: %w", err)
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// WriteSpans encodes every column as a count followed by its spans.
func (hf *Heightfield) WriteSpans(w *binio.Writer) {
	for _, col := range hf.Columns {
		w.U32(uint32(len(col)))
		for _, s := range col {
			w.U32(s.Min)
			w.U32(s.Max)
			w.U32(s.Area)
		}
	}
}

// ReadSpans decodes the span payload of a grid described by h.
func ReadSpans(r *binio.Reader, h Header) (*Heightfield, error) {
	hf := New(h)
	for i := range hf.Columns {
		n := r.Count(spanSize)
		if n == 0 {
			continue
		}
		col := make([]Span, n)
		for j := range col {
			col[j] = Span{Min: r.U32(), Max: r.U32(), Area: r.U32()}
		}
		hf.Columns[i] = col
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read height field spans: %w", err)
	}
	return hf, nil
}

// SkipSpans advances r over the span payload of a grid described by h.
func SkipSpans(r *binio.Reader, h Header) error {
	columns := int(h.Width) * int(h.Height)
	for range columns {
		r.Skip(r.Count(spanSize) * spanSize)
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("skip height field spans: %w", err)
	}
	return nil
}
