package spawner

import "testing"

func TestMaxCountsMatchReferenceTable(t *testing.T) {
	cases := map[Category]int{
		Monster:       70,
		Creature:      10,
		WaterCreature: 5,
		Ambient:       15,
	}
	for cat, want := range cases {
		if got := cat.MaxCount(); got != want {
			t.Fatalf("%v.MaxCount() = %d, want %d", cat, got, want)
		}
	}
}

func TestUnderCapScalesWithEligibleChunks(t *testing.T) {
	// Full 256-chunk area: cap is the raw max count.
	if !UnderCap(Monster, 70, 256) {
		t.Fatalf("70 monsters in a full area should still be under the cap of 70")
	}
	if UnderCap(Monster, 71, 256) {
		t.Fatalf("71 monsters in a full area should exceed the cap of 70")
	}
	// A quarter-sized area should scale the cap down proportionally.
	if UnderCap(Monster, 18, 64) {
		t.Fatalf("18 monsters should exceed the scaled cap (70*64/256=17) for a 64-chunk area")
	}
	if !UnderCap(Monster, 17, 64) {
		t.Fatalf("17 monsters should be within the scaled cap for a 64-chunk area")
	}
}

func TestCategoryFlags(t *testing.T) {
	if Monster.Peaceful() {
		t.Fatalf("Monster should not be peaceful")
	}
	if !Creature.Animal() {
		t.Fatalf("Creature should be an animal")
	}
	if !WaterCreature.Water() {
		t.Fatalf("WaterCreature should be water-based")
	}
	if Ambient.Animal() {
		t.Fatalf("Ambient should not be an animal")
	}
}
