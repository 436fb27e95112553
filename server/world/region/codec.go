package region

import (
	"bytes"

	"github.com/sandertv/gophertunnel/minecraft/nbt"

	"github.com/basaltcore/voxelserver/server/world"
)

// sectionNBT mirrors one entry of the "Sections" list in §6's Chunk NBT
// format.
type sectionNBT struct {
	Y          byte   `nbt:"Y"`
	Blocks     []byte `nbt:"Blocks"`
	Add        []byte `nbt:"Add"`
	Data       []byte `nbt:"Data"`
	BlockLight []byte `nbt:"BlockLight"`
	SkyLight   []byte `nbt:"SkyLight"`
}

// levelNBT mirrors the "Level" compound of §6's Chunk NBT format.
type levelNBT struct {
	XPos             int32        `nbt:"xPos"`
	ZPos             int32        `nbt:"zPos"`
	LastUpdate       int64        `nbt:"LastUpdate"`
	TerrainPopulated byte         `nbt:"TerrainPopulated"`
	Sections         []sectionNBT `nbt:"Sections"`
	Biomes           []byte       `nbt:"Biomes"`
	HeightMap        []int32      `nbt:"HeightMap"`
}

type chunkNBT struct {
	Level levelNBT `nbt:"Level"`
}

// EncodeChunk serializes c into the big-endian NBT Chunk format of §6.
func EncodeChunk(c *world.Chunk) ([]byte, error) {
	out := chunkNBT{Level: levelNBT{
		XPos:             c.Pos.X,
		ZPos:             c.Pos.Z,
		LastUpdate:       c.LastUpdate,
		TerrainPopulated: boolByte(c.IsPopulated),
	}}
	for y := 0; y < world.SectionsPerChunk; y++ {
		sec := c.Sections[y]
		if sec == nil {
			continue
		}
		blocks, add, data := encodeSectionBlocks(sec)
		out.Level.Sections = append(out.Level.Sections, sectionNBT{
			Y:          byte(y),
			Blocks:     blocks,
			Add:        add,
			Data:       data,
			BlockLight: encodeNibbles(sec, sectionLight),
			SkyLight:   encodeNibbles(sec, sectionSky),
		})
	}
	out.Level.Biomes = make([]byte, 256)
	out.Level.HeightMap = make([]int32, 256)
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			out.Level.Biomes[z*16+x] = c.Biome(x, z)
			out.Level.HeightMap[z*16+x] = int32(c.Height(x, z))
		}
	}

	var buf bytes.Buffer
	enc := nbt.NewEncoderWithEncoding(&buf, nbt.BigEndian)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeChunk parses the big-endian NBT Chunk format of §6 back into a
// Chunk. Only the Sections list is read: a chunk in the legacy flat
// Blocks/Data encoding decodes with every block as air.
func DecodeChunk(raw []byte) (*world.Chunk, error) {
	var in chunkNBT
	dec := nbt.NewDecoderWithEncoding(bytes.NewReader(raw), nbt.BigEndian)
	if err := dec.Decode(&in); err != nil {
		return nil, err
	}
	c := world.NewChunk(world.ChunkPos{X: in.Level.XPos, Z: in.Level.ZPos})
	c.LastUpdate = in.Level.LastUpdate
	c.IsPopulated = in.Level.TerrainPopulated != 0

	for _, sec := range in.Level.Sections {
		y := int(sec.Y)
		for ly := 0; ly < 16; ly++ {
			for lz := 0; lz < 16; lz++ {
				for lx := 0; lx < 16; lx++ {
					idx := (ly*16+lz)*16 + lx
					id, meta := decodeBlockCell(sec.Blocks, sec.Add, sec.Data, idx)
					c.SetBlock(lx, y*16+ly, lz, id, meta)
				}
			}
		}
	}
	for z := 0; z < 16 && z*16 < len(in.Level.Biomes)/16+1; z++ {
		for x := 0; x < 16; x++ {
			i := z*16 + x
			if i < len(in.Level.Biomes) {
				c.SetBiome(x, z, in.Level.Biomes[i])
			}
		}
	}
	return c, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

const (
	sectionLight = iota
	sectionSky
)

// encodeSectionBlocks splits the 12-bit id into the legacy Blocks (low 8
// bits, one byte per cell) + Add (high 4 bits, nibble array) representation,
// and the metadata into a nibble array, matching §6.
func encodeSectionBlocks(s *world.Section) (blocks, add, data []byte) {
	blocks = make([]byte, 4096)
	add = make([]byte, 2048)
	data = make([]byte, 2048)
	for y := 0; y < 16; y++ {
		for z := 0; z < 16; z++ {
			for x := 0; x < 16; x++ {
				id, meta := s.Block(x, y, z)
				idx := (y*16+z)*16 + x
				blocks[idx] = byte(id & 0xFF)
				setNibble(add, idx, uint8(id>>8))
				setNibble(data, idx, meta)
			}
		}
	}
	return
}

func encodeNibbles(s *world.Section, which int) []byte {
	out := make([]byte, 2048)
	for y := 0; y < 16; y++ {
		for z := 0; z < 16; z++ {
			for x := 0; x < 16; x++ {
				idx := (y*16+z)*16 + x
				var v uint8
				if which == sectionLight {
					v = s.BlockLight(x, y, z)
				} else {
					v = s.SkyLight(x, y, z)
				}
				setNibble(out, idx, v)
			}
		}
	}
	return out
}

func setNibble(n []byte, i int, v uint8) {
	v &= 0x0F
	idx := i / 2
	if i%2 == 0 {
		n[idx] = (n[idx] & 0xF0) | v
	} else {
		n[idx] = (n[idx] & 0x0F) | (v << 4)
	}
}

func getNibble(n []byte, i int) uint8 {
	if n == nil || i/2 >= len(n) {
		return 0
	}
	b := n[i/2]
	if i%2 == 0 {
		return b & 0x0F
	}
	return b >> 4
}

func decodeBlockCell(blocks, add, data []byte, idx int) (id uint16, meta uint8) {
	var low byte
	if idx < len(blocks) {
		low = blocks[idx]
	}
	high := getNibble(add, idx)
	return uint16(low) | uint16(high)<<8, getNibble(data, idx)
}
