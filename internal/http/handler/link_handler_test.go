package handler

import (
	"encoding/json"
	"testing"
)

func TestOptionalString_Unmarshal(t *testing.T) {
	type body struct {
		ImageURL OptionalString `json:"image_url"`
	}

	var omitted body
	if err := json.Unmarshal([]byte(`{}`), &omitted); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if omitted.ImageURL.Set {
		t.Fatal("expected omitted field to stay unset")
	}

	var null body
	if err := json.Unmarshal([]byte(`{"image_url": null}`), &null); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !null.ImageURL.Set || null.ImageURL.Value != nil {
		t.Fatal("expected explicit null to be set with nil value")
	}

	var value body
	if err := json.Unmarshal([]byte(`{"image_url": "https://cdn.example.com/a.png"}`), &value); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !value.ImageURL.Set || value.ImageURL.Value == nil || *value.ImageURL.Value != "https://cdn.example.com/a.png" {
		t.Fatalf("expected value to round-trip, got %+v", value.ImageURL)
	}
}
