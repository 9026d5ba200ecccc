package config

import (
	"testing"
	"time"
)

func TestDefaultFPSLimit(t *testing.T) {
	if got := GetFPSLimit(); got != 25 {
		t.Errorf("Expected default FPS limit 25, got %d", got)
	}
}

func TestSetFPSLimitClamping(t *testing.T) {
	defer SetFPSLimit(25)

	cases := []struct {
		in   int
		want int
	}{
		{30, 30},
		{1, 1},
		{0, 1},
		{-5, 1},
		{240, 240},
		{1000, 240},
	}

	for _, c := range cases {
		SetFPSLimit(c.in)
		if got := GetFPSLimit(); got != c.want {
			t.Errorf("SetFPSLimit(%d): expected %d, got %d", c.in, c.want, got)
		}
	}
}

func TestFrameBudget(t *testing.T) {
	defer SetFPSLimit(25)

	SetFPSLimit(25)
	if got := FrameBudget(); got != 40*time.Millisecond {
		t.Errorf("Expected 40ms frame budget at 25 FPS, got %v", got)
	}

	SetFPSLimit(100)
	if got := FrameBudget(); got != 10*time.Millisecond {
		t.Errorf("Expected 10ms frame budget at 100 FPS, got %v", got)
	}
}
