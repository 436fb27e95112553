// Package biome implements the climate-driven biome table and per-biome
// terrain traits (elevation band, ground cover, decoration) consulted by
// package gen while carving and decorating chunks.
package biome

import "github.com/basaltcore/voxelserver/server/world/gen/populate"

// CoverLayer names a ground-cover material in registry-independent terms;
// package gen maps each layer to a concrete block id via populate.BlockIDs.
type CoverLayer int

const (
	// LayerDefault defers to gen's default cover (grass over dirt, or
	// nothing beneath water) rather than overriding it.
	LayerDefault CoverLayer = iota
	LayerTopsoil
	LayerDirt
	LayerSand
	LayerGravel
)

// Biome is one named climate cell of the world: its elevation band, its
// climate coordinates (used by Selector to pick the nearest biome for a
// given temperature/rainfall sample), its ground cover, and the populators
// that decorate it after terrain generation.
type Biome interface {
	// ID is the biome's persisted identifier, stored per-column in a
	// chunk's biome array.
	ID() uint8
	// Elevation returns the min/max surface height this biome contributes
	// to the Gaussian-smoothed elevation field (§4.9).
	Elevation() (min, max int)
	// Temperature and Rainfall place the biome in climate space; Selector
	// picks whichever registered biome is nearest a sampled (t, r) pair.
	Temperature() float64
	Rainfall() float64
	// Populators lists the decorators gen runs over this biome's columns,
	// in addition to the universal ore veins every biome receives.
	Populators() []populate.Populator
	// GroundCover returns the ordered (top-to-bottom) cover layers gen
	// should lay over the carved stone surface. A nil slice means
	// LayerDefault.
	GroundCover() []CoverLayer
}

// base implements the parts of Biome that are identical across every
// concrete biome unless overridden by embedding grassy/snowy/sandy or by
// the biome itself.
type base struct{}

func (base) GroundCover() []CoverLayer { return nil }

// grassy is embedded by biomes whose surface is grass over dirt.
type grassy struct{ base }

func (grassy) GroundCover() []CoverLayer {
	return []CoverLayer{LayerTopsoil, LayerDirt, LayerDirt, LayerDirt}
}

// snowy is embedded by cold biomes; the snow/ice cap itself is applied by
// the tick pipeline's precipitation handling (world.BlockRegistry.Precipitate),
// not by generation, so the cover layers are identical to grassy.
type snowy struct{ grassy }

// sandy is embedded by biomes whose surface is sand over gravel.
type sandy struct{ base }

func (sandy) GroundCover() []CoverLayer {
	return []CoverLayer{LayerSand, LayerSand, LayerSand, LayerSand, LayerGravel}
}
