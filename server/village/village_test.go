package village

import (
	"testing"

	"github.com/basaltcore/voxelserver/server/world"
	"github.com/basaltcore/voxelserver/server/world/rng"
)

func TestAddDoorUpdatesCentroidAndRadius(t *testing.T) {
	v := New()
	v.AddDoor(world.BlockPos{0, 64, 0}, 0, 1)
	v.AddDoor(world.BlockPos{10, 64, 0}, 0, 1)
	if v.CenterX != 5 {
		t.Fatalf("CenterX = %d, want 5", v.CenterX)
	}
	if v.Radius != minRadius {
		t.Fatalf("Radius = %d, want floor %d for a small village", v.Radius, minRadius)
	}
}

func TestRadiusGrowsBeyondFloor(t *testing.T) {
	v := New()
	v.AddDoor(world.BlockPos{-100, 64, 0}, 0, 1)
	v.AddDoor(world.BlockPos{100, 64, 0}, 0, 1)
	if v.Radius <= minRadius {
		t.Fatalf("Radius = %d, want > floor %d for a spread-out village", v.Radius, minRadius)
	}
}

func TestTickDropsExpiredDoors(t *testing.T) {
	v := New()
	v.AddDoor(world.BlockPos{0, 64, 0}, 0, 1)
	r := rng.New(1)
	v.Tick(doorExpiryTicks+1, r)
	if !v.Annihilated() {
		t.Fatalf("expected door older than %d ticks to be dropped", doorExpiryTicks)
	}
}

func TestTickDoesNotDropFreshDoors(t *testing.T) {
	v := New()
	v.AddDoor(world.BlockPos{0, 64, 0}, 0, 1)
	r := rng.New(1)
	v.Tick(doorExpiryTicks-1, r)
	if v.Annihilated() {
		t.Fatalf("door within expiry window should not be dropped")
	}
}

func TestAggressorExpires(t *testing.T) {
	v := New()
	v.AddOrRenewAggressor(42)
	r := rng.New(1)
	v.Tick(aggressorExpiryTicks+1, r)
	if len(v.Aggressors) != 0 {
		t.Fatalf("expected aggressor to expire after %d ticks", aggressorExpiryTicks)
	}
}

func TestAggressorRenewed(t *testing.T) {
	v := New()
	v.AddOrRenewAggressor(42)
	v.tick = 100
	v.AddOrRenewAggressor(42)
	if len(v.Aggressors) != 1 {
		t.Fatalf("expected renewing an existing aggressor to not duplicate it, got %d", len(v.Aggressors))
	}
	if v.Aggressors[0].LastSeen != 100 {
		t.Fatalf("LastSeen = %d, want 100", v.Aggressors[0].LastSeen)
	}
}

func TestGolemNotRequestedAtDoorThreshold(t *testing.T) {
	v := New()
	for i := 0; i < golemDoorThreshold; i++ {
		v.AddDoor(world.BlockPos{i * 2, 64, 0}, 0, 1)
	}
	v.Villagers = 100
	r := rng.New(1)
	for i := 0; i < 10000; i++ {
		res := v.Tick(int64(i), r)
		if res.SpawnGolem {
			t.Fatalf("golem requested with only %d doors (threshold %d)", golemDoorThreshold, golemDoorThreshold)
		}
	}
}

func TestGolemEventuallyRequestedAboveThreshold(t *testing.T) {
	v := New()
	for i := 0; i < golemDoorThreshold+5; i++ {
		v.AddDoor(world.BlockPos{i * 2, 64, 0}, 0, 1)
	}
	v.Villagers = 1000
	r := rng.New(1)
	found := false
	for i := int64(0); i < int64(golemChance)*20 && !found; i++ {
		// Keep every door validated, as the village's door scan does;
		// otherwise all doors expire after doorExpiryTicks.
		for d := range v.Doors {
			v.Doors[d].LastValidated = i
		}
		res := v.Tick(i, r)
		if res.SpawnGolem {
			found = true
			if res.GolemKind != MobIronGolem {
				t.Fatalf("GolemKind = %q, want %q", res.GolemKind, MobIronGolem)
			}
			if !v.InRange(res.GolemPos.X(), res.GolemPos.Y(), res.GolemPos.Z()) {
				t.Fatalf("golem spawn position %v outside village radius", res.GolemPos)
			}
		}
	}
	if !found {
		t.Fatalf("expected a golem spawn request within %d ticks", int64(golemChance)*20)
	}
}

func TestGolemCapRespectsVillagerCount(t *testing.T) {
	v := New()
	for i := 0; i < golemDoorThreshold+5; i++ {
		v.AddDoor(world.BlockPos{i * 2, 64, 0}, 0, 1)
	}
	v.Villagers = 5
	v.IronGolems = 1
	r := rng.New(1)
	for i := int64(0); i < int64(golemChance)*20; i++ {
		res := v.Tick(i, r)
		if res.SpawnGolem {
			t.Fatalf("golem requested when IronGolems (%d) already meets Villagers/10 (%d)", v.IronGolems, v.Villagers/10)
		}
	}
}

func TestReputationClamps(t *testing.T) {
	v := New()
	v.ModifyReputation("alice", -1000)
	if got := v.ReputationFor("alice"); got != reputationMin {
		t.Fatalf("ReputationFor = %d, want clamped to %d", got, reputationMin)
	}
	v.ModifyReputation("alice", 1000)
	if got := v.ReputationFor("alice"); got != reputationMax {
		t.Fatalf("ReputationFor = %d, want clamped to %d", got, reputationMax)
	}
}

func TestReputationTooLowThreshold(t *testing.T) {
	v := New()
	v.ModifyReputation("bob", reputationLowThreshold)
	if !v.ReputationTooLow("bob") {
		t.Fatalf("reputation %d should count as too low", reputationLowThreshold)
	}
	v.ModifyReputation("bob", 1)
	if v.ReputationTooLow("bob") {
		t.Fatalf("reputation %d should not count as too low", reputationLowThreshold+1)
	}
}

func TestMatingSeasonCooldown(t *testing.T) {
	v := New()
	if !v.MatingSeason() {
		t.Fatalf("fresh village should be in mating season")
	}
	v.tick = 500
	v.EndMatingSeason()
	if v.MatingSeason() {
		t.Fatalf("mating season should be on cooldown immediately after ending")
	}
	v.tick = 500 + matingCooldownTicks
	if !v.MatingSeason() {
		t.Fatalf("mating season should resume after cooldown elapses")
	}
}

func TestNearestDoor(t *testing.T) {
	v := New()
	v.AddDoor(world.BlockPos{0, 64, 0}, 0, 1)
	v.AddDoor(world.BlockPos{100, 64, 0}, 0, 1)
	d, ok := v.NearestDoor(5, 64, 0)
	if !ok {
		t.Fatalf("expected a nearest door")
	}
	if d.Pos.X() != 0 {
		t.Fatalf("nearest door = %v, want the one at x=0", d.Pos)
	}
}

func TestSiegeStartRequiresNightDoorsAndVillagers(t *testing.T) {
	v := New()
	for i := 0; i < siegeMinDoors; i++ {
		v.AddDoor(world.BlockPos{i * 2, 64, 0}, 0, 1)
	}
	v.Villagers = siegeMinVillagers
	if ShouldStart(v, 0, true) {
		t.Fatalf("siege should not start during daytime")
	}
	if !ShouldStart(v, siegeNightStart+1, true) {
		t.Fatalf("siege should start at night with enough doors and villagers")
	}
	if ShouldStart(v, siegeNightStart+1, false) {
		t.Fatalf("siege should not start without a nearby player")
	}
}

func TestSiegeSpawnsExactlyTwentyZombies(t *testing.T) {
	v := New()
	v.AddDoor(world.BlockPos{0, 64, 0}, 0, 1)
	v.Radius = 40
	s := NewSiege()
	s.Start(siegeNightStart)
	r := rng.New(7)
	count := 0
	for tick := int64(siegeNightStart); tick < siegeNightStart+1000 && s.Active(); tick += siegeSpawnEvery {
		if spawn, ok := s.Tick(v, tick, r); ok {
			count++
			if spawn.Kind != MobZombie {
				t.Fatalf("spawn.Kind = %q, want %q", spawn.Kind, MobZombie)
			}
		}
	}
	if count != siegeTotalZombies {
		t.Fatalf("spawned %d zombies, want exactly %d", count, siegeTotalZombies)
	}
}

func TestIsNightWindow(t *testing.T) {
	if IsNight(0) {
		t.Fatalf("tick 0 should not be night")
	}
	if !IsNight(siegeNightStart) {
		t.Fatalf("tick %d should be night", siegeNightStart)
	}
	if IsNight(siegeNightEnd) {
		t.Fatalf("tick %d should no longer be night", siegeNightEnd)
	}
}
