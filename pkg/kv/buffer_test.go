package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSlice struct {
	data  []byte
	frees int
}

func (s *countingSlice) Data() []byte { return s.data }
func (s *countingSlice) Free()        { s.frees++ }

func TestBufferReleaseOnce(t *testing.T) {
	s := &countingSlice{data: []byte("v1111")}
	b := newBuffer(s)
	require.Equal(t, "v1111", string(b.Bytes()))
	require.Equal(t, 5, b.Len())

	b.Release()
	b.Release()
	assert.Equal(t, 1, s.frees)
	assert.True(t, b.Released())
	assert.Panics(t, func() { b.Bytes() })
}

func TestBufferUTF8(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
		ok   bool
	}{
		{[]byte("héllo"), "héllo", true},
		{[]byte{}, "", true},
		{[]byte{0xff, 0xfe}, "", false},
	}
	for _, tt := range tests {
		b := newBuffer(&countingSlice{data: tt.in})
		got, ok := b.UTF8()
		assert.Equal(t, tt.want, got, "UTF8(%x)", tt.in)
		assert.Equal(t, tt.ok, ok, "UTF8(%x)", tt.in)
		b.Release()
	}
}
