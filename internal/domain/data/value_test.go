package data

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValueKinds(t *testing.T) {
	day := time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		value    Value
		kind     Kind
		text     string
		jsonText string
	}{
		{"null", Null(), KindNull, "", "null"},
		{"zero value", Value{}, KindNull, "", "null"},
		{"true", Bool(true), KindBool, "yes", "true"},
		{"false", Bool(false), KindBool, "no", "false"},
		{"number", Number(3.5), KindNumber, "3.5", "3.5"},
		{"integral number", Number(7), KindNumber, "7", "7"},
		{"date", Date(day), KindDate, "2023-03-14", `"2023-03-14"`},
		{"text", Text("LLaMA"), KindText, "LLaMA", `"LLaMA"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.Kind() != tt.kind {
				t.Errorf("kind: expected %s, got %s", tt.kind, tt.value.Kind())
			}
			if tt.value.String() != tt.text {
				t.Errorf("String(): expected %q, got %q", tt.text, tt.value.String())
			}
			out, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(out) != tt.jsonText {
				t.Errorf("json: expected %s, got %s", tt.jsonText, out)
			}
		})
	}
}

func TestValueEqual(t *testing.T) {
	utc := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	shifted := utc.In(time.FixedZone("X", 3600))

	if !Date(utc).Equal(Date(shifted)) {
		t.Error("dates at the same instant should be equal")
	}
	if Number(1).Equal(Text("1")) {
		t.Error("values of different kinds should not be equal")
	}
	if !Null().Equal(Value{}) {
		t.Error("nulls should be equal")
	}
	if Bool(true).Equal(Bool(false)) {
		t.Error("true should not equal false")
	}
}

func TestRowCopyAndPlain(t *testing.T) {
	row := Row{"Score": Number(1), "Open": Null()}
	cp := row.Copy()
	cp["Score"] = Number(2)

	if row["Score"].Number() != 1 {
		t.Error("Copy should not share storage with the original")
	}
	plain := row.Plain()
	if plain["Open"] != nil {
		t.Errorf("expected nil for null cell, got %v", plain["Open"])
	}
	if plain["Score"] != 1.0 {
		t.Errorf("expected 1.0, got %v", plain["Score"])
	}
	if !row.Get("absent").IsNull() {
		t.Error("missing column should read as null")
	}
}
