package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeRefundTiers(t *testing.T) {
	cases := []struct {
		name       string
		total      int64
		fee        int64
		hours      float64
		wantAmount int64
	}{
		{"inside two hours nothing comes back", 1000, 50, 1, 0},
		{"inside a day half minus fee", 1000, 50, 10, 450},
		{"beyond a day full minus fee", 1000, 50, 48, 950},
		{"exactly two hours earns the partial tier", 1000, 50, 2, 450},
		{"exactly 24 hours earns the full tier", 1000, 50, 24, 950},
		{"fee larger than half clamps to zero", 100, 80, 10, 0},
		{"fee larger than total clamps to zero", 100, 200, 48, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amount, reason := ComputeRefund(tc.total, tc.fee, tc.hours)
			assert.Equal(t, tc.wantAmount, amount)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestComputeRefundReasons(t *testing.T) {
	_, reason := ComputeRefund(1000, 50, 1)
	assert.Equal(t, "Non-refundable (less than 2 hours before departure)", reason)

	_, reason = ComputeRefund(1000, 50, 10)
	assert.Equal(t, "Partial refund (less than 24 hours before departure)", reason)

	_, reason = ComputeRefund(1000, 50, 48)
	assert.Equal(t, "Full refund (more than 24 hours before departure)", reason)
}
