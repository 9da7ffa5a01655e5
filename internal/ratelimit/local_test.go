package ratelimit

import "testing"

func TestKeyedLimiterAllow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      0.001,
			burst:    2,
			calls:    5,
			wantPass: 2,
		},
		{
			name:     "single token",
			rps:      0.001,
			burst:    1,
			calls:    3,
			wantPass: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kl := NewKeyedLimiter(tt.rps, tt.burst)

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if kl.Allow("key") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedLimiterKeysAreIndependent(t *testing.T) {
	kl := NewKeyedLimiter(0.001, 1)

	if !kl.Allow("a") {
		t.Fatal("first call for key a should pass")
	}
	if kl.Allow("a") {
		t.Fatal("second call for key a should be blocked")
	}
	if !kl.Allow("b") {
		t.Fatal("key b should have its own budget")
	}
}
