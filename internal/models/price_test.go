package models

import (
	"encoding/json"
	"testing"
)

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Price
		wantErr bool
	}{
		{in: "15.00", want: 1500},
		{in: "15", want: 1500},
		{in: "15.5", want: 1550},
		{in: "0.99", want: 99},
		{in: ".5", want: 50},
		{in: " 20.00 ", want: 2000},
		{in: "", wantErr: true},
		{in: "-1.00", wantErr: true},
		{in: "1.234", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1.a", wantErr: true},
		{in: ".", wantErr: true},
		{in: "1e3", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParsePrice(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParsePrice(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParsePrice(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPriceJSONAcceptsStringAndNumber(t *testing.T) {
	t.Parallel()

	var body struct {
		A Price `json:"a"`
		B Price `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":"12.50","b":7}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.A != 1250 || body.B != 700 {
		t.Fatalf("got a=%d b=%d", body.A, body.B)
	}

	out, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":"12.50","b":"7.00"}` {
		t.Fatalf("marshal = %s", out)
	}
}

func TestPriceJSONRejectsGarbage(t *testing.T) {
	t.Parallel()

	var p Price
	if err := json.Unmarshal([]byte(`true`), &p); err == nil {
		t.Fatal("expected error for boolean price")
	}
	if err := json.Unmarshal([]byte(`"ten"`), &p); err == nil {
		t.Fatal("expected error for non-numeric price")
	}
}
