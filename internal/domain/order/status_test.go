package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"confirmed to processing", StatusConfirmed, StatusProcessing, true},
		{"processing to shipped", StatusProcessing, StatusShipped, true},
		{"shipped to delivered", StatusShipped, StatusDelivered, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"processing to cancelled", StatusProcessing, StatusCancelled, true},
		{"shipped to cancelled", StatusShipped, StatusCancelled, true},
		{"pending to shipped skips steps", StatusPending, StatusShipped, false},
		{"confirmed to delivered skips steps", StatusConfirmed, StatusDelivered, false},
		{"delivered is terminal", StatusDelivered, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"backwards move rejected", StatusShipped, StatusProcessing, false},
		{"self transition allowed", StatusProcessing, StatusProcessing, true},
		{"terminal self transition allowed", StatusDelivered, StatusDelivered, true},
		{"unknown target", StatusPending, "lost", false},
		{"unknown source", "lost", StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{
		StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled,
	} {
		assert.True(t, ValidStatus(s), string(s))
	}
	assert.False(t, ValidStatus("refunded"))
	assert.False(t, ValidStatus(""))
}
