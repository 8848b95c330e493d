package service

import (
	"context"
	"errors"
	"testing"

	"go-city/config"
	"go-city/dto"
	"go-city/entities"
	"go-city/repository"
)

type recordingListener struct {
	states []entities.GameState
}

func (l *recordingListener) Broadcast(state entities.GameState) {
	l.states = append(l.states, state)
}

func newTestService(t *testing.T, mode config.PlacementMode) *GameService {
	t.Helper()
	svc := NewGameService(repository.NewMemoryStore(), Options{Mode: mode, Seed: 42})
	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return svc
}

func intPtr(v int) *int { return &v }

func countOccupied(f entities.Field) int {
	return entities.FieldSize - len(f.EmptySlots())
}

func TestInitialState(t *testing.T) {
	svc := newTestService(t, config.PlacementRandom)
	state, err := svc.GetState(context.Background())
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.Turn != 1 || state.Resources != 100 || state.Residents != 10 {
		t.Errorf("unexpected initial counters: %+v", state)
	}
	if len(state.Field.EmptySlots()) != entities.FieldSize {
		t.Errorf("expected empty field, got %v", state.Field)
	}
}

func TestPlaceAtScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, config.PlacementIndex)

	state, err := svc.PlaceAt(ctx, 0, "Farm")
	if err != nil {
		t.Fatalf("first placement: %v", err)
	}
	if state.Resources != 80 || state.Field[0] != "Farm" {
		t.Fatalf("expected resources=80 field[0]=Farm, got %+v", state)
	}

	_, err = svc.PlaceAt(ctx, 0, "Farm")
	if !errors.Is(err, ErrSlotOccupied) {
		t.Fatalf("expected ErrSlotOccupied, got %v", err)
	}
	if err.Error() != "Field already occupied" {
		t.Errorf("unexpected message %q", err.Error())
	}

	after, _ := svc.GetState(ctx)
	if after != state {
		t.Errorf("rejected placement changed state:\n before %+v\n after  %+v", state, after)
	}
}

func TestPlaceAtInvalidIndex(t *testing.T) {
	svc := newTestService(t, config.PlacementIndex)
	for _, index := range []int{-1, 16, 100} {
		if _, err := svc.PlaceAt(context.Background(), index, "Farm"); !errors.Is(err, ErrInvalidIndex) {
			t.Errorf("index %d: expected ErrInvalidIndex, got %v", index, err)
		}
	}
}

func TestPlacementRequiresResources(t *testing.T) {
	ctx := context.Background()
	for _, mode := range []config.PlacementMode{config.PlacementIndex, config.PlacementRandom} {
		svc := newTestService(t, mode)
		if _, err := svc.UpdateState(ctx, dto.UpdateStateRequest{Resources: intPtr(49)}); err != nil {
			t.Fatalf("update: %v", err)
		}
		before, _ := svc.GetState(ctx)

		_, err := svc.PlaceBuilding(ctx, dto.PlaceBuildingBody{
			Building: "Factory", BuildingOK: true, Index: 3, IndexOK: true, HasIndex: true,
		})
		if !errors.Is(err, ErrNotEnoughResources) {
			t.Fatalf("%s: expected ErrNotEnoughResources, got %v", mode, err)
		}
		after, _ := svc.GetState(ctx)
		if after != before {
			t.Errorf("%s: state changed on rejected placement", mode)
		}
	}
}

func TestSuccessfulPlacementDeductsExactCost(t *testing.T) {
	ctx := context.Background()
	names := []string{"Farm", "factory", "RESEARCH LAB", "Shop", "Market", "Town Hall", "House", "Castle"}
	for _, name := range names {
		svc := newTestService(t, config.PlacementRandom)
		if _, err := svc.UpdateState(ctx, dto.UpdateStateRequest{Resources: intPtr(500)}); err != nil {
			t.Fatalf("update: %v", err)
		}
		before, _ := svc.GetState(ctx)
		after, err := svc.PlaceRandom(ctx, name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if want := before.Resources - entities.BuildingCost(name); after.Resources != want {
			t.Errorf("%s: resources %d, want %d", name, after.Resources, want)
		}
		changed := 0
		for i := range after.Field {
			if after.Field[i] != before.Field[i] {
				changed++
				if before.Field[i] != "" || after.Field[i] != name {
					t.Errorf("%s: slot %d went %q -> %q", name, i, before.Field[i], after.Field[i])
				}
			}
		}
		if changed != 1 {
			t.Errorf("%s: expected exactly one slot to change, got %d", name, changed)
		}
	}
}

func TestPlaceRandomNeverPicksOccupied(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, config.PlacementRandom)

	var field entities.Field
	for i := 0; i < entities.FieldSize; i += 2 {
		field[i] = "House"
	}
	if _, err := svc.UpdateState(ctx, dto.UpdateStateRequest{Field: &field, Resources: intPtr(1000)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	for i := 0; i < entities.FieldSize/2; i++ {
		before, _ := svc.GetState(ctx)
		after, err := svc.PlaceRandom(ctx, "Shop")
		if err != nil {
			t.Fatalf("placement %d: %v", i, err)
		}
		for slot := range before.Field {
			if before.Field[slot] != "" && after.Field[slot] != before.Field[slot] {
				t.Fatalf("placement %d overwrote occupied slot %d", i, slot)
			}
		}
		if countOccupied(after.Field) != countOccupied(before.Field)+1 {
			t.Fatalf("placement %d did not fill exactly one slot", i)
		}
	}

	full, _ := svc.GetState(ctx)
	_, err := svc.PlaceRandom(ctx, "Shop")
	if !errors.Is(err, ErrNoEmptySlots) {
		t.Fatalf("expected ErrNoEmptySlots on a full field, got %v", err)
	}
	after, _ := svc.GetState(ctx)
	if after != full {
		t.Error("rejected placement on full field changed state")
	}
}

func TestPlaceBuildingValidation(t *testing.T) {
	tests := []struct {
		name string
		mode config.PlacementMode
		body dto.PlaceBuildingBody
		want error
	}{
		{"non-string building", config.PlacementRandom, dto.PlaceBuildingBody{}, ErrInvalidBuilding},
		{"empty building random", config.PlacementRandom, dto.PlaceBuildingBody{Building: "", BuildingOK: true}, ErrInvalidBuilding},
		{"empty building index", config.PlacementIndex, dto.PlaceBuildingBody{Building: "", BuildingOK: true, Index: 0, IndexOK: true, HasIndex: true}, ErrInvalidBuilding},
		{"missing index", config.PlacementIndex, dto.PlaceBuildingBody{Building: "Farm", BuildingOK: true}, ErrInvalidIndex},
		{"fractional index", config.PlacementIndex, dto.PlaceBuildingBody{Building: "Farm", BuildingOK: true, HasIndex: true}, ErrInvalidIndex},
		{"random ignores index", config.PlacementRandom, dto.PlaceBuildingBody{Building: "Farm", BuildingOK: true, HasIndex: true, Index: 99, IndexOK: true}, nil},
	}
	for _, tt := range tests {
		svc := newTestService(t, tt.mode)
		_, err := svc.PlaceBuilding(context.Background(), tt.body)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestUpdateStateOverwritesOnlyProvidedFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, config.PlacementRandom)

	state, err := svc.UpdateState(ctx, dto.UpdateStateRequest{Turn: intPtr(7), Residents: intPtr(-3)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if state.Turn != 7 || state.Residents != -3 || state.Resources != 100 {
		t.Errorf("unexpected state after partial update: %+v", state)
	}

	got, _ := svc.GetState(ctx)
	if got != state {
		t.Errorf("read after write mismatch: %+v vs %+v", got, state)
	}
}

func TestListenerReceivesMutations(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, config.PlacementIndex)
	l := &recordingListener{}
	svc.SetListener(l)

	if _, err := svc.PlaceAt(ctx, 5, "Farm"); err != nil {
		t.Fatalf("place: %v", err)
	}
	svc.PlaceAt(ctx, 5, "Farm")
	if _, err := svc.UpdateState(ctx, dto.UpdateStateRequest{Turn: intPtr(2)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	svc.UpdateState(ctx, dto.UpdateStateRequest{})

	if len(l.states) != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", len(l.states))
	}
	if l.states[0].Field[5] != "Farm" || l.states[1].Turn != 2 {
		t.Errorf("unexpected broadcast contents: %+v", l.states)
	}
}

func TestLoadRecoversFromEmptyStore(t *testing.T) {
	svc := NewGameService(repository.NewMemoryStore(), Options{})
	state, err := svc.GetState(context.Background())
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state != entities.DefaultGameState() {
		t.Errorf("expected defaults, got %+v", state)
	}
}

func TestEmptyBuildingNameLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	for _, mode := range []config.PlacementMode{config.PlacementIndex, config.PlacementRandom} {
		svc := newTestService(t, mode)
		before, _ := svc.GetState(ctx)

		if _, err := svc.PlaceAt(ctx, 0, ""); !errors.Is(err, ErrInvalidBuilding) {
			t.Errorf("%s: PlaceAt expected ErrInvalidBuilding, got %v", mode, err)
		}
		if _, err := svc.PlaceRandom(ctx, ""); !errors.Is(err, ErrInvalidBuilding) {
			t.Errorf("%s: PlaceRandom expected ErrInvalidBuilding, got %v", mode, err)
		}
		after, _ := svc.GetState(ctx)
		if after != before || len(after.Field.EmptySlots()) != entities.FieldSize {
			t.Errorf("%s: rejected placement changed state: %+v", mode, after)
		}
	}
}
