package world

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func populatedState(t *testing.T) *State {
	t.Helper()
	s := NewState()
	s.Treasury = 6500
	s.SetFlag("invasion_launched", BoolFlag(true))
	s.MarkTriggered("braose_summons")
	s.MarkTriggered("exchequer_audit")
	if _, err := s.StartChain("invasion_plans", []string{"a", "b", "c"}); err != nil {
		t.Fatalf("StartChain: %v", err)
	}
	s.AppendHistory(EventRecord{Day: 3, Location: "winchester", EventID: "merchant_petition", ChoiceID: "grant", Summary: "Granted the charter."})
	if err := s.StartTravel("york", 5); err != nil {
		t.Fatalf("StartTravel: %v", err)
	}
	s.AdvanceDay()
	return s
}

func TestSnapshot_RoundTripIdempotence(t *testing.T) {
	s := populatedState(t)

	sn := s.Snapshot()
	restored, err := FromSnapshot(sn)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	again := restored.Snapshot()

	if !reflect.DeepEqual(sn, again) {
		t.Errorf("snapshot round trip differs:\nfirst:  %+v\nsecond: %+v", sn, again)
	}
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	s := populatedState(t)
	sn := s.Snapshot()

	data, err := json.Marshal(sn)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored, err := FromSnapshot(&back)
	if err != nil {
		t.Fatalf("FromSnapshot after JSON: %v", err)
	}
	if restored.Treasury != s.Treasury || restored.Day != s.Day {
		t.Errorf("restored treasury/day = %d/%d, want %d/%d", restored.Treasury, restored.Day, s.Treasury, s.Day)
	}
	if !restored.Triggered("braose_summons") {
		t.Error("triggered set lost in JSON round trip")
	}
	if len(restored.ActiveChains) != 1 || restored.ActiveChains[0].ChainID != "invasion_plans" {
		t.Error("active chains lost in JSON round trip")
	}
	if v, ok := restored.Flag("invasion_launched"); !ok || !v.Equal(BoolFlag(true)) {
		t.Error("flags lost in JSON round trip")
	}
}

func TestFromSnapshot_RejectsMalformed(t *testing.T) {
	valid := func() *Snapshot { return populatedState(t).Snapshot() }

	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"wrong version", func(sn *Snapshot) { sn.Version = "0.9" }},
		{"negative day", func(sn *Snapshot) { sn.Day = -1 }},
		{"unknown location", func(sn *Snapshot) { sn.Location = "rouen" }},
		{"unknown baron", func(sn *Snapshot) { sn.Barons["simon_de_montfort"] = 50 }},
		{"unknown region", func(sn *Snapshot) { sn.Regions["normandy"] = 50 }},
		{"missing flags", func(sn *Snapshot) { sn.Flags = nil }},
		{"chain cursor out of range", func(sn *Snapshot) { sn.ActiveChains[0].Cursor = 9 }},
		{"duplicate active chain", func(sn *Snapshot) {
			sn.ActiveChains = append(sn.ActiveChains, sn.ActiveChains[0])
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sn := valid()
			tt.mutate(sn)
			if _, err := FromSnapshot(sn); !errors.Is(err, ErrBadSnapshot) {
				t.Errorf("expected ErrBadSnapshot, got %v", err)
			}
		})
	}

	if _, err := FromSnapshot(nil); !errors.Is(err, ErrBadSnapshot) {
		t.Errorf("nil snapshot: expected ErrBadSnapshot, got %v", err)
	}
}

func TestFromSnapshot_Isolation(t *testing.T) {
	s := populatedState(t)
	sn := s.Snapshot()

	restored, err := FromSnapshot(sn)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}

	// Mutating the restored state must not leak into the snapshot.
	restored.Barons["william_marshal"] = 1
	restored.ActiveChains[0].Advance()

	if sn.Barons["william_marshal"] == 1 {
		t.Error("snapshot baron map shares storage with restored state")
	}
	if sn.ActiveChains[0].Cursor != 0 {
		t.Error("snapshot chain shares storage with restored state")
	}
}
