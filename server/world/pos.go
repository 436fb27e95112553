package world

// BlockPos is a block coordinate. Y is clamped to [0, 256) by convention; X and
// Z are permitted the full [-30_000_000, 30_000_000] range described in the
// data model.
type BlockPos [3]int

// X returns the x component of the position.
func (p BlockPos) X() int { return p[0] }

// Y returns the y component of the position.
func (p BlockPos) Y() int { return p[1] }

// Z returns the z component of the position.
func (p BlockPos) Z() int { return p[2] }

// Add returns p+o.
func (p BlockPos) Add(o BlockPos) BlockPos {
	return BlockPos{p[0] + o[0], p[1] + o[1], p[2] + o[2]}
}

// Chunk returns the chunk coordinate that contains p, using the x>>4, z>>4
// shift described in §3.
func (p BlockPos) Chunk() ChunkPos {
	return ChunkPos{int32(p[0] >> 4), int32(p[2] >> 4)}
}

// ChunkPos is a chunk coordinate: chunkX = blockX >> 4, chunkZ = blockZ >> 4.
type ChunkPos struct {
	X, Z int32
}

// Region returns the region coordinate that contains c, using the
// chunkX>>5, chunkZ>>5 shift described in §3.
func (c ChunkPos) Region() RegionPos {
	return RegionPos{c.X >> 5, c.Z >> 5}
}

// RegionPos is a region coordinate holding a 32x32 grid of chunks.
type RegionPos struct {
	X, Z int32
}

// LocalChunk returns the chunk's position within its 32x32 region grid,
// always in [0, 32).
func (c ChunkPos) LocalChunk() (lx, lz int) {
	lx, lz = int(c.X&31), int(c.Z&31)
	return
}
