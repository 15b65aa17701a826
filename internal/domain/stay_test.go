package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func aug(day int) Date {
	return NewDate(2025, time.August, day)
}

func TestStay_Nights(t *testing.T) {
	tests := []struct {
		name string
		stay Stay
		want int
	}{
		{"three nights", NewStay(aug(1), aug(4)), 3},
		{"one night", NewStay(aug(5), aug(6)), 1},
		{"same day", NewStay(aug(5), aug(5)), 0},
		{"reversed", NewStay(aug(6), aug(5)), -1},
		{"month boundary", NewStay(aug(30), NewDate(2025, time.September, 2)), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stay.Nights(); got != tt.want {
				t.Errorf("expected %d nights, got %d", tt.want, got)
			}
		})
	}
}

func TestStay_Overlaps(t *testing.T) {
	existing := NewStay(aug(1), aug(5))
	tests := []struct {
		name  string
		query Stay
		want  bool
	}{
		{"tail overlap", NewStay(aug(4), aug(6)), true},
		{"starts on checkout", NewStay(aug(5), aug(6)), false},
		{"ends on checkin", NewStay(NewDate(2025, time.July, 30), aug(1)), false},
		{"contained", NewStay(aug(2), aug(3)), true},
		{"containing", NewStay(NewDate(2025, time.July, 30), aug(10)), true},
		{"identical", existing, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := existing.Overlaps(tt.query); got != tt.want {
				t.Errorf("Overlaps(%v) = %v, want %v", tt.query, got, tt.want)
			}
			if got := tt.query.Overlaps(existing); got != tt.want {
				t.Errorf("overlap must be symmetric for %v", tt.query)
			}
		})
	}
}

func TestStay_Covers(t *testing.T) {
	s := NewStay(aug(1), aug(3))
	if !s.Covers(aug(1)) || !s.Covers(aug(2)) {
		t.Error("expected check-in night and following night to be covered")
	}
	if s.Covers(aug(3)) {
		t.Error("check-out day must not be covered")
	}
}

func TestDate_ParseAndJSON(t *testing.T) {
	d, err := ParseDate("2025-08-04")
	if err != nil {
		t.Fatal(err)
	}
	if !d.Equal(aug(4)) {
		t.Fatalf("expected 2025-08-04, got %s", d)
	}

	if _, err := ParseDate("04/08/2025"); err == nil {
		t.Error("expected error for non ISO date")
	}

	data, err := json.Marshal(struct {
		D Date `json:"d"`
	}{d})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"d":"2025-08-04"}` {
		t.Errorf("unexpected json %s", data)
	}

	var back struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.D.Equal(d) {
		t.Errorf("expected %s, got %s", d, back.D)
	}
}

func TestDateOf_UsesOwnLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	late := time.Date(2025, time.August, 1, 23, 30, 0, 0, time.UTC).In(loc)
	if got := DateOf(late); !got.Equal(aug(2)) {
		t.Errorf("expected venue day 2025-08-02, got %s", got)
	}
}
