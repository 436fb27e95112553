// Package entity implements the core entity model of §3: a single Entity
// struct carrying the fields common to every kind, a Kind tag in place of
// the reference inheritance chain (Entity -> LivingBase -> Player|Mob), and
// an Arena that owns the id-indexed slab every world's entity list is drawn
// from.
package entity

import (
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Kind tags the orthogonal entity categories named in §3. It stands in for
// the reference implementation's inheritance chain: a Player or Mob carries
// LivingData, everything else does not.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindMob
	KindArrow
	KindThrowable
	KindFallingBlock
	KindTNT
	KindMinecart
	KindBoat
	KindItem
	KindXPOrb
	KindLightningBolt
	KindHanging
	KindEnderCrystal
)

// MobCategory further splits KindMob entities into the three behavioural
// families named in §3.
type MobCategory uint8

const (
	// MobCreature mobs path-find but are otherwise neutral (e.g. villagers).
	MobCreature MobCategory = iota
	// MobMonster mobs are hostile.
	MobMonster
	// MobAnimal mobs breed.
	MobAnimal
)

// LivingData holds the fields only a Player or Mob carries. A nil LivingData
// on an Entity means it is one of the orthogonal non-living kinds.
type LivingData struct {
	Health, MaxHealth float32
	Mob               MobCategory
}

// BBox is an axis-aligned bounding box expressed as half-extents around an
// entity's position.
type BBox struct {
	HalfWidth, Height float64
}

// Entity is one simulated actor: a unique id, transform, and kind-tagged
// payload. Position/velocity/rotation are guarded by a RWMutex so that
// network-serialisation readers may hold a shared lock while the owning
// simulation thread writes (§5).
type Entity struct {
	id   int64
	uuid uuid.UUID
	kind Kind

	mu         sync.RWMutex
	pos, vel   mgl64.Vec3
	yaw, pitch float64
	onGround   bool

	bbox         BBox
	fireTicks    int32
	fallDistance float64
	dimension    int32

	watcher *DataWatcher
	living  *LivingData

	dead atomic.Bool
}

// New constructs an Entity with the given id (caller-assigned, see
// IDAllocator), kind and bounding box. living is non-nil only for
// KindPlayer/KindMob.
func New(id int64, kind Kind, bbox BBox, living *LivingData) *Entity {
	return &Entity{
		id:      id,
		uuid:    uuid.New(),
		kind:    kind,
		bbox:    bbox,
		living:  living,
		watcher: NewDataWatcher(),
	}
}

// ID returns the entity's globally unique, monotonically allocated id.
func (e *Entity) ID() int64 { return e.id }

// UUID returns the entity's 128-bit universally unique identifier.
func (e *Entity) UUID() uuid.UUID { return e.uuid }

// Kind returns the entity's tagged variant.
func (e *Entity) Kind() Kind { return e.kind }

// Living returns the entity's LivingData and whether it has any (true only
// for KindPlayer and KindMob).
func (e *Entity) Living() (*LivingData, bool) { return e.living, e.living != nil }

// Watcher returns the entity's DataWatcher.
func (e *Entity) Watcher() *DataWatcher { return e.watcher }

// Position returns the entity's current position.
func (e *Entity) Position() mgl64.Vec3 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pos
}

// SetPosition sets the entity's position. Only the owning simulation thread
// may call this.
func (e *Entity) SetPosition(pos mgl64.Vec3) {
	e.mu.Lock()
	e.pos = pos
	e.mu.Unlock()
}

// Velocity returns the entity's current velocity.
func (e *Entity) Velocity() mgl64.Vec3 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vel
}

// SetVelocity sets the entity's velocity.
func (e *Entity) SetVelocity(vel mgl64.Vec3) {
	e.mu.Lock()
	e.vel = vel
	e.mu.Unlock()
}

// Rotation returns the entity's yaw and pitch, in degrees.
func (e *Entity) Rotation() (yaw, pitch float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.yaw, e.pitch
}

// SetRotation sets the entity's yaw and pitch.
func (e *Entity) SetRotation(yaw, pitch float64) {
	e.mu.Lock()
	e.yaw, e.pitch = yaw, pitch
	e.mu.Unlock()
}

// OnGround reports whether the entity is resting on a solid block.
func (e *Entity) OnGround() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.onGround
}

// SetOnGround sets the on-ground flag.
func (e *Entity) SetOnGround(v bool) {
	e.mu.Lock()
	e.onGround = v
	e.mu.Unlock()
}

// BBox returns the entity's bounding box.
func (e *Entity) BBox() BBox { return e.bbox }

// Dimension returns the id of the dimension the entity currently resides in.
func (e *Entity) Dimension() int32 { return atomic.LoadInt32(&e.dimension) }

// SetDimension updates the entity's resident dimension, used when an entity
// crosses a dimension boundary (§5).
func (e *Entity) SetDimension(id int32) { atomic.StoreInt32(&e.dimension, id) }

// FireTicks returns the remaining fire-damage ticks.
func (e *Entity) FireTicks() int32 { return atomic.LoadInt32(&e.fireTicks) }

// SetFireTicks sets the remaining fire-damage ticks.
func (e *Entity) SetFireTicks(t int32) { atomic.StoreInt32(&e.fireTicks, t) }

// FallDistance returns the accumulated fall distance since the entity was
// last on the ground.
func (e *Entity) FallDistance() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.fallDistance
}

// SetFallDistance sets the accumulated fall distance.
func (e *Entity) SetFallDistance(d float64) {
	e.mu.Lock()
	e.fallDistance = d
	e.mu.Unlock()
}

// Dead reports whether the entity has been marked for removal.
func (e *Entity) Dead() bool { return e.dead.Load() }

// Kill marks the entity dead; the owning world removes it at the next
// cleanup pass.
func (e *Entity) Kill() { e.dead.Store(true) }

// IDAllocator is a global, monotonically increasing entity-id counter
// shared across worlds (§5). The zero value is ready to use; ids start
// at 1 so 0 can mean "no entity".
type IDAllocator struct{ next atomic.Int64 }

// Next allocates and returns the next entity id.
func (a *IDAllocator) Next() int64 { return a.next.Add(1) }
