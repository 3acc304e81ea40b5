package events

import (
	"encoding/json"
	"testing"
)

func TestMarshalWrapsInEnvelope(t *testing.T) {
	payload, err := Marshal(WaveStarted{WaveIndex: 2, TotalEnemies: 20})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded struct {
		Type Type            `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	if decoded.Type != TypeWaveStarted {
		t.Errorf("Expected type %q, got %q", TypeWaveStarted, decoded.Type)
	}

	var data WaveStarted
	if err := json.Unmarshal(decoded.Data, &data); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
	if data.WaveIndex != 2 || data.TotalEnemies != 20 {
		t.Errorf("Envelope data mismatched: %+v", data)
	}
}

func TestStateUpdatedOmitsUnsetCorrectFlag(t *testing.T) {
	payload, err := Marshal(StateUpdated{Lives: 5, Score: 10})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	if _, present := decoded.Data["correct"]; present {
		t.Error("Expected the correct flag to be omitted outside answer responses")
	}
	if _, present := decoded.Data["base_breached"]; present {
		t.Error("Expected base_breached to be omitted when false")
	}
}
