package enginewasm

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"

	odebridge "github.com/odelang/odebridge"
)

// fakeMemory is an in-process stand-in for guest linear memory.
type fakeMemory struct {
	api.Memory
	data []byte
}

func newFakeMemory(size int) *fakeMemory {
	return &fakeMemory{data: make([]byte, size)}
}

func (m *fakeMemory) Definition() api.MemoryDefinition { return nil }
func (m *fakeMemory) Size() uint32                     { return uint32(len(m.data)) }

func (m *fakeMemory) Grow(delta uint32) (uint32, bool) {
	prev := uint32(len(m.data)) / 65536
	m.data = append(m.data, make([]byte, delta*65536)...)
	return prev, true
}

func (m *fakeMemory) in(offset, n uint32) bool {
	return uint64(offset)+uint64(n) <= uint64(len(m.data))
}

func (m *fakeMemory) Read(offset, n uint32) ([]byte, bool) {
	if !m.in(offset, n) {
		return nil, false
	}
	return m.data[offset : offset+n], true
}

func (m *fakeMemory) ReadByte(offset uint32) (byte, bool) {
	if !m.in(offset, 1) {
		return 0, false
	}
	return m.data[offset], true
}

func (m *fakeMemory) ReadUint16Le(offset uint32) (uint16, bool) {
	if !m.in(offset, 2) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(m.data[offset:]), true
}

func (m *fakeMemory) ReadUint32Le(offset uint32) (uint32, bool) {
	if !m.in(offset, 4) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.data[offset:]), true
}

func (m *fakeMemory) ReadUint64Le(offset uint32) (uint64, bool) {
	if !m.in(offset, 8) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(m.data[offset:]), true
}

func (m *fakeMemory) ReadFloat32Le(offset uint32) (float32, bool) {
	v, ok := m.ReadUint32Le(offset)
	return math.Float32frombits(v), ok
}

func (m *fakeMemory) ReadFloat64Le(offset uint32) (float64, bool) {
	v, ok := m.ReadUint64Le(offset)
	return math.Float64frombits(v), ok
}

func (m *fakeMemory) Write(offset uint32, v []byte) bool {
	if !m.in(offset, uint32(len(v))) {
		return false
	}
	copy(m.data[offset:], v)
	return true
}

func (m *fakeMemory) WriteByte(offset uint32, v byte) bool {
	return m.Write(offset, []byte{v})
}

func (m *fakeMemory) WriteUint16Le(offset uint32, v uint16) bool {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return m.Write(offset, b[:])
}

func (m *fakeMemory) WriteUint32Le(offset uint32, v uint32) bool {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return m.Write(offset, b[:])
}

func (m *fakeMemory) WriteUint64Le(offset uint32, v uint64) bool {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return m.Write(offset, b[:])
}

func (m *fakeMemory) WriteFloat32Le(offset uint32, v float32) bool {
	return m.WriteUint32Le(offset, math.Float32bits(v))
}

func (m *fakeMemory) WriteFloat64Le(offset uint32, v float64) bool {
	return m.WriteUint64Le(offset, math.Float64bits(v))
}

func (m *fakeMemory) WriteString(offset uint32, v string) bool {
	return m.Write(offset, []byte(v))
}

func TestReadCString(t *testing.T) {
	mem := newFakeMemory(1024)

	t.Run("short string", func(t *testing.T) {
		copy(mem.data[10:], "Success\x00")
		s, err := readCString(mem, 10)
		require.NoError(t, err)
		assert.Equal(t, "Success", s)
	})

	t.Run("string longer than one window", func(t *testing.T) {
		long := make([]byte, 700)
		for i := range long {
			long[i] = 'a'
		}
		copy(mem.data[0:], long)
		mem.data[700] = 0
		s, err := readCString(mem, 0)
		require.NoError(t, err)
		assert.Len(t, s, 700)
	})

	t.Run("unterminated to end of memory", func(t *testing.T) {
		mem := newFakeMemory(64)
		for i := range mem.data {
			mem.data[i] = 'x'
		}
		_, err := readCString(mem, 0)
		require.Error(t, err)
	})
}

func TestF64RoundTrip(t *testing.T) {
	mem := newFakeMemory(1024)
	vals := []float64{0, 1, -1, 0.1, math.Pi, math.Inf(1)}

	require.NoError(t, writeF64s(mem, 64, vals))

	out := make([]float64, len(vals))
	require.NoError(t, readF64s(mem, 64, out))
	assert.Equal(t, vals, out)

	t.Run("out of bounds", func(t *testing.T) {
		require.Error(t, writeF64s(mem, 1020, vals))
		require.Error(t, readF64s(mem, 1020, out))
	})
}

func TestParseDescriptors(t *testing.T) {
	raw := `[
		{"kind":"Const","name":"","val":0},
		{"kind":"Independent","name":"t","val":null},
		{"kind":"State","name":"x","val":1.5},
		{"kind":"Diff","name":"x","val":null},
		{"kind":"Param","name":"k","val":0.25}
	]`

	regs, err := parseDescriptors(raw)
	require.NoError(t, err)
	require.Len(t, regs, 5)

	assert.Equal(t, odebridge.KindConst, regs[0].Kind)
	assert.Equal(t, odebridge.KindIndependent, regs[1].Kind)
	assert.Nil(t, regs[1].Initial)
	assert.Equal(t, odebridge.KindState, regs[2].Kind)
	require.NotNil(t, regs[2].Initial)
	assert.Equal(t, 1.5, *regs[2].Initial)
	assert.Equal(t, "k", regs[4].Name)

	t.Run("unknown kind", func(t *testing.T) {
		_, err := parseDescriptors(`[{"kind":"Mystery","name":"x"}]`)
		require.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := parseDescriptors(`[{`)
		require.Error(t, err)
	})
}

func TestLoadRejectsInvalidBinary(t *testing.T) {
	_, err := Load(context.Background(), []byte("not a wasm module"), nil)
	require.Error(t, err)
}
