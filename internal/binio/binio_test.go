package binio

import (
	"io"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderWriter(t *testing.T) {
	w := NewWriter()
	w.U8(7)
	w.U16(0xBEEF)
	w.U32(123456)
	w.I32(-5)
	w.F32(1.5)
	w.Vec3(mgl32.Vec3{1, 2, 3})
	w.FixedString("world/tree.m2", 16)
	w.String("key")

	r := NewReader(w.Bytes())
	assert.Equal(t, uint8(7), r.U8())
	assert.Equal(t, uint16(0xBEEF), r.U16())
	assert.Equal(t, uint32(123456), r.U32())
	assert.Equal(t, int32(-5), r.I32())
	assert.Equal(t, float32(1.5), r.F32())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, r.Vec3())
	assert.Equal(t, "world/tree.m2", r.FixedString(16))
	assert.Equal(t, "key", r.String())
	require.NoError(t, r.Err())
	assert.Zero(t, r.Len())
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{1, 2})
	assert.Equal(t, uint32(0), r.U32())
	require.ErrorIs(t, r.Err(), io.ErrUnexpectedEOF)

	// sticky
	assert.Equal(t, uint8(0), r.U8())
	require.ErrorIs(t, r.Err(), io.ErrUnexpectedEOF)
}

func TestReaderCount(t *testing.T) {
	w := NewWriter()
	w.U32(1000)
	w.U32(1)

	r := NewReader(w.Bytes())
	assert.Zero(t, r.Count(4))
	require.ErrorIs(t, r.Err(), io.ErrUnexpectedEOF)
}

func TestReaderSeek(t *testing.T) {
	w := NewWriter()
	w.U32(1)
	w.U32(2)

	r := NewReader(w.Bytes())
	r.Seek(4)
	assert.Equal(t, uint32(2), r.U32())
	r.Seek(9)
	require.Error(t, r.Err())
}
