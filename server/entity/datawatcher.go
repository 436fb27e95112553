package entity

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
)

// watcherType enumerates the DataWatcher value variants, in the order given
// by §6's wire-format rule: header byte is (type_id<<5) | (data_id & 0x1F).
type watcherType uint8

const (
	watcherByte watcherType = iota
	watcherShort
	watcherInt
	watcherFloat
	watcherString
	watcherItemSlot
	watcherBlockPos
)

// ItemSlot is the DataWatcher item-stack payload: id, count, damage, and an
// opaque NBT blob (empty when the slot holds no tag compound).
type ItemSlot struct {
	ID     int16
	Count  int8
	Damage int16
	NBT    []byte
}

// BlockPos3 is the three-int32 block-coordinate payload used by watcherBlockPos.
type BlockPos3 struct{ X, Y, Z int32 }

// watcherEntry holds one DataWatcher slot's value, tagged by type.
type watcherEntry struct {
	set    bool
	dirty  bool
	typ    watcherType
	b      int8
	i16    int16
	i32    int32
	f32    float32
	str    string
	item   ItemSlot
	blockP BlockPos3
}

// MaxWatcherID is the exclusive upper bound of dataId, per §3.
const MaxWatcherID = 32

// DataWatcher is the per-entity keyed metadata store of §3: a mapping from
// dataId in [0, 32) to a typed value, with a per-entry dirty flag and a
// cheap any-dirty flag for polling. The owning simulation thread writes;
// network-serialisation readers take the shared lock (§5).
type DataWatcher struct {
	mu       sync.RWMutex
	entries  [MaxWatcherID]watcherEntry
	anyDirty bool
}

// NewDataWatcher returns an empty watcher.
func NewDataWatcher() *DataWatcher { return &DataWatcher{} }

func (w *DataWatcher) set(id int, e watcherEntry) {
	w.mu.Lock()
	e.set, e.dirty = true, true
	w.entries[id] = e
	w.anyDirty = true
	w.mu.Unlock()
}

// SetByte sets an int8-valued entry.
func (w *DataWatcher) SetByte(id int, v int8) { w.set(id, watcherEntry{typ: watcherByte, b: v}) }

// SetShort sets an int16-valued entry.
func (w *DataWatcher) SetShort(id int, v int16) { w.set(id, watcherEntry{typ: watcherShort, i16: v}) }

// SetInt sets an int32-valued entry.
func (w *DataWatcher) SetInt(id int, v int32) { w.set(id, watcherEntry{typ: watcherInt, i32: v}) }

// SetFloat sets a float32-valued entry.
func (w *DataWatcher) SetFloat(id int, v float32) { w.set(id, watcherEntry{typ: watcherFloat, f32: v}) }

// SetString sets a UTF-8 string entry.
func (w *DataWatcher) SetString(id int, v string) {
	w.set(id, watcherEntry{typ: watcherString, str: v})
}

// SetItemSlot sets an item-stack entry.
func (w *DataWatcher) SetItemSlot(id int, v ItemSlot) {
	w.set(id, watcherEntry{typ: watcherItemSlot, item: v})
}

// SetBlockPos sets a block-coordinate entry.
func (w *DataWatcher) SetBlockPos(id int, v BlockPos3) {
	w.set(id, watcherEntry{typ: watcherBlockPos, blockP: v})
}

// AnyDirty reports whether any entry has changed since the last ClearDirty.
func (w *DataWatcher) AnyDirty() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.anyDirty
}

// ClearDirty clears every entry's dirty flag and the any-dirty flag.
func (w *DataWatcher) ClearDirty() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.entries {
		w.entries[i].dirty = false
	}
	w.anyDirty = false
}

// EncodeAll serializes every populated entry into the §6 wire format,
// terminated by the 0x7F sentinel.
func (w *DataWatcher) EncodeAll() []byte {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var buf bytes.Buffer
	for id, e := range w.entries {
		if !e.set {
			continue
		}
		writeWatcherEntry(&buf, id, e)
	}
	buf.WriteByte(0x7F)
	return buf.Bytes()
}

// EncodeDirty serializes only entries whose dirty flag is set.
func (w *DataWatcher) EncodeDirty() []byte {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var buf bytes.Buffer
	for id, e := range w.entries {
		if !e.set || !e.dirty {
			continue
		}
		writeWatcherEntry(&buf, id, e)
	}
	buf.WriteByte(0x7F)
	return buf.Bytes()
}

func writeWatcherEntry(buf *bytes.Buffer, id int, e watcherEntry) {
	buf.WriteByte(byte(e.typ)<<5 | byte(id&0x1F))
	switch e.typ {
	case watcherByte:
		buf.WriteByte(byte(e.b))
	case watcherShort:
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(e.i16))
		buf.Write(b[:])
	case watcherInt:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(e.i32))
		buf.Write(b[:])
	case watcherFloat:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], math.Float32bits(e.f32))
		buf.Write(b[:])
	case watcherString:
		writeVarint(buf, len(e.str))
		buf.WriteString(e.str)
	case watcherItemSlot:
		var b [5]byte
		binary.BigEndian.PutUint16(b[0:2], uint16(e.item.ID))
		b[2] = byte(e.item.Count)
		binary.BigEndian.PutUint16(b[3:5], uint16(e.item.Damage))
		buf.Write(b[:])
		if len(e.item.NBT) == 0 {
			buf.WriteByte(0x00)
		} else {
			buf.Write(e.item.NBT)
		}
	case watcherBlockPos:
		var b [12]byte
		binary.BigEndian.PutUint32(b[0:4], uint32(e.blockP.X))
		binary.BigEndian.PutUint32(b[4:8], uint32(e.blockP.Y))
		binary.BigEndian.PutUint32(b[8:12], uint32(e.blockP.Z))
		buf.Write(b[:])
	}
}

func writeVarint(buf *bytes.Buffer, n int) {
	u := uint32(n)
	for {
		b := byte(u & 0x7F)
		u >>= 7
		if u != 0 {
			buf.WriteByte(b | 0x80)
		} else {
			buf.WriteByte(b)
			return
		}
	}
}

func readVarint(r *bytes.Reader) (int, error) {
	var result uint32
	for shift := uint(0); ; shift += 7 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return int(result), nil
		}
		if shift > 28 {
			return 0, errors.New("entity: varint too long")
		}
	}
}

// DecodeDataWatcher parses the §6 wire format into a fresh DataWatcher.
func DecodeDataWatcher(raw []byte) (*DataWatcher, error) {
	w := NewDataWatcher()
	r := bytes.NewReader(raw)
	for {
		header, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if header == 0x7F {
			return w, nil
		}
		typ := watcherType(header >> 5)
		id := int(header & 0x1F)
		switch typ {
		case watcherByte:
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			w.SetByte(id, int8(b))
		case watcherShort:
			var buf [2]byte
			if _, err := r.Read(buf[:]); err != nil {
				return nil, err
			}
			w.SetShort(id, int16(binary.BigEndian.Uint16(buf[:])))
		case watcherInt:
			var buf [4]byte
			if _, err := r.Read(buf[:]); err != nil {
				return nil, err
			}
			w.SetInt(id, int32(binary.BigEndian.Uint32(buf[:])))
		case watcherFloat:
			var buf [4]byte
			if _, err := r.Read(buf[:]); err != nil {
				return nil, err
			}
			w.SetFloat(id, math.Float32frombits(binary.BigEndian.Uint32(buf[:])))
		case watcherString:
			n, err := readVarint(r)
			if err != nil {
				return nil, err
			}
			buf := make([]byte, n)
			if _, err := r.Read(buf); err != nil {
				return nil, err
			}
			w.SetString(id, string(buf))
		case watcherItemSlot:
			var header5 [5]byte
			if _, err := r.Read(header5[:]); err != nil {
				return nil, err
			}
			slot := ItemSlot{
				ID:     int16(binary.BigEndian.Uint16(header5[0:2])),
				Count:  int8(header5[2]),
				Damage: int16(binary.BigEndian.Uint16(header5[3:5])),
			}
			term, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			if term != 0x00 {
				// A populated NBT tag compound is owned by the (out of
				// scope) item registry's schema; the core only round-trips
				// the empty-tag case.
				return nil, errors.New("entity: item-slot NBT payload is out of the core's decode scope")
			}
			w.SetItemSlot(id, slot)
		case watcherBlockPos:
			var buf [12]byte
			if _, err := r.Read(buf[:]); err != nil {
				return nil, err
			}
			w.SetBlockPos(id, BlockPos3{
				X: int32(binary.BigEndian.Uint32(buf[0:4])),
				Y: int32(binary.BigEndian.Uint32(buf[4:8])),
				Z: int32(binary.BigEndian.Uint32(buf[8:12])),
			})
		default:
			return nil, fmt.Errorf("entity: unknown watcher type %d", typ)
		}
	}
}
