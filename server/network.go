package server

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/basaltcore/voxelserver/server/entity"
	"github.com/basaltcore/voxelserver/server/playerchunk"
	"github.com/basaltcore/voxelserver/server/tracker"
	"github.com/basaltcore/voxelserver/server/world"
)

// NetworkSink is the external protocol layer's contract toward the core:
// every packet the simulation emits arrives as one of these method calls
// rather than a wire frame (§6's emitted-event list: chunk-data,
// block-change, multi-block-change, entity-spawn, entity-destroy,
// entity-move-delta, entity-teleport, entity-metadata, entity-velocity,
// time-update, weather-change, player-list-add, player-list-remove). The
// actual codec that turns these into bytes is out of scope (§1).
type NetworkSink interface {
	ChunkData(to int64, pos world.ChunkPos, c *world.Chunk)
	BlockChange(to int64, pos world.BlockPos, id uint16, meta uint8)
	MultiBlockChange(to int64, origin world.ChunkPos, kind playerchunk.UpdateKind, changes []uint16)
	EntitySpawn(to int64, e *entity.Entity)
	EntityDestroy(to int64, entityID int64)
	// EntityMove carries both the quantised delta and the absolute-teleport
	// cases (tracker.MoveDelta.Teleport distinguishes them), matching the
	// tracker's own Event shape instead of splitting into two methods whose
	// payloads would otherwise be identical.
	EntityMove(to int64, entityID int64, d tracker.MoveDelta)
	EntityMetadata(to int64, entityID int64, encoded []byte)
	EntityVelocity(to int64, entityID int64, vel mgl64.Vec3)
	TimeUpdate(to int64, worldTime int64)
	WeatherChange(to int64, w world.Weather)
	PlayerListAdd(to int64, name string)
	PlayerListRemove(to int64, name string)
}

// NetworkSource is the inbound half: the events a connected player's client
// produces (§6's consumed-event list: player-position, player-look,
// player-dig, player-place, player-interact, player-animation, chat,
// disconnect), delivered to the Server as method calls.
type NetworkSource interface {
	HandlePlayerPosition(playerID int64, pos mgl64.Vec3, onGround bool)
	HandlePlayerLook(playerID int64, yaw, pitch float64)
	HandlePlayerDig(playerID int64, pos world.BlockPos, face int32)
	HandlePlayerPlace(playerID int64, pos world.BlockPos, face int32, item uint16)
	HandlePlayerInteract(playerID int64, targetEntityID int64)
	HandlePlayerAnimation(playerID int64, animation int32)
	HandleChat(playerID int64, message string)
	HandleDisconnect(playerID int64, reason string)
}
