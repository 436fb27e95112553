package biome

import "github.com/basaltcore/voxelserver/server/world/gen/populate"

// Biome ids, persisted per-column in a chunk's biome array.
const (
	IDOcean uint8 = iota
	IDPlains
	IDDesert
	IDMountains
	IDForest
	IDTaiga
	IDSwamp
	IDRiver
	IDBirchForest
	IDIcePlains
)

// Plains is a flat, temperate grassland with scattered tall grass.
type Plains struct{ grassy }

func (Plains) Populators() []populate.Populator {
	return []populate.Populator{populate.TallGrass{Amount: 12}}
}
func (Plains) ID() uint8             { return IDPlains }
func (Plains) Elevation() (int, int) { return 63, 68 }
func (Plains) Temperature() float64  { return 0.8 }
func (Plains) Rainfall() float64     { return 0.4 }

// Ocean is a deep, gravel-bottomed biome below the water line.
type Ocean struct{ base }

func (Ocean) Populators() []populate.Populator {
	return []populate.Populator{populate.TallGrass{Amount: 5}}
}
func (Ocean) ID() uint8             { return IDOcean }
func (Ocean) Elevation() (int, int) { return 46, 58 }
func (Ocean) Temperature() float64  { return 0.5 }
func (Ocean) Rainfall() float64     { return 0.5 }
func (Ocean) GroundCover() []CoverLayer {
	return []CoverLayer{LayerGravel, LayerGravel, LayerGravel, LayerGravel, LayerGravel}
}

// Desert is a hot, dry, sand-covered biome with no tree cover.
type Desert struct{ sandy }

func (Desert) Populators() []populate.Populator { return nil }
func (Desert) ID() uint8                        { return IDDesert }
func (Desert) Elevation() (int, int)            { return 63, 74 }
func (Desert) Temperature() float64             { return 2.0 }
func (Desert) Rainfall() float64                { return 0.0 }

// Forest is a temperate, wet, oak-dominated woodland.
type Forest struct{ grassy }

func (Forest) Populators() []populate.Populator {
	return []populate.Populator{
		populate.Tree{Type: populate.OakTree{}, BaseAmount: 5},
		populate.TallGrass{Amount: 3},
	}
}
func (Forest) ID() uint8             { return IDForest }
func (Forest) Elevation() (int, int) { return 63, 81 }
func (Forest) Temperature() float64  { return 0.7 }
func (Forest) Rainfall() float64     { return 0.8 }

// Taiga is a cold, wet, spruce-dominated woodland.
type Taiga struct{ snowy }

func (Taiga) Populators() []populate.Populator {
	return []populate.Populator{
		populate.Tree{Type: populate.SpruceTree{}, BaseAmount: 10},
		populate.TallGrass{Amount: 1},
	}
}
func (Taiga) ID() uint8             { return IDTaiga }
func (Taiga) Elevation() (int, int) { return 63, 81 }
func (Taiga) Temperature() float64  { return 0.05 }
func (Taiga) Rainfall() float64     { return 0.8 }

// Swamp is a low, wet, undecorated biome.
type Swamp struct{ grassy }

func (Swamp) Populators() []populate.Populator { return nil }
func (Swamp) ID() uint8                        { return IDSwamp }
func (Swamp) Elevation() (int, int)            { return 62, 63 }
func (Swamp) Temperature() float64             { return 0.8 }
func (Swamp) Rainfall() float64                { return 0.9 }

// Mountains is a tall, temperate, undecorated biome.
type Mountains struct{ grassy }

func (Mountains) Populators() []populate.Populator { return nil }
func (Mountains) ID() uint8                        { return IDMountains }
func (Mountains) Elevation() (int, int)            { return 63, 127 }
func (Mountains) Temperature() float64             { return 0.4 }
func (Mountains) Rainfall() float64                { return 0.5 }

// SmallMountains is a gentler variant of Mountains sharing its id.
type SmallMountains struct{ grassy }

func (SmallMountains) Populators() []populate.Populator { return nil }
func (SmallMountains) ID() uint8                        { return IDMountains }
func (SmallMountains) Elevation() (int, int)            { return 63, 97 }
func (SmallMountains) Temperature() float64             { return 0.4 }
func (SmallMountains) Rainfall() float64                { return 0.5 }

// River is a narrow, low, dirt-bottomed waterway.
type River struct{ base }

func (River) Populators() []populate.Populator {
	return []populate.Populator{populate.TallGrass{Amount: 5}}
}
func (River) ID() uint8             { return IDRiver }
func (River) Elevation() (int, int) { return 58, 62 }
func (River) Temperature() float64  { return 0.5 }
func (River) Rainfall() float64     { return 0.7 }
func (River) GroundCover() []CoverLayer {
	return []CoverLayer{LayerDirt, LayerDirt, LayerDirt, LayerDirt, LayerDirt}
}

// BirchForest is a temperate, birch-dominated woodland.
type BirchForest struct{ grassy }

func (BirchForest) Populators() []populate.Populator {
	return []populate.Populator{populate.Tree{BaseAmount: 10, Type: populate.BirchTree{}}}
}
func (BirchForest) ID() uint8             { return IDBirchForest }
func (BirchForest) Elevation() (int, int) { return 60, 70 }
func (BirchForest) Temperature() float64  { return 0.6 }
func (BirchForest) Rainfall() float64     { return 0.6 }

// IcePlains is a frozen, flat grassland.
type IcePlains struct{ snowy }

func (IcePlains) Populators() []populate.Populator {
	return []populate.Populator{populate.TallGrass{Amount: 5}}
}
func (IcePlains) ID() uint8             { return IDIcePlains }
func (IcePlains) Elevation() (int, int) { return 63, 74 }
func (IcePlains) Temperature() float64  { return 0.05 }
func (IcePlains) Rainfall() float64     { return 0.8 }
