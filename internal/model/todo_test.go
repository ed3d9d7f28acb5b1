package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{" Completed ", StatusCompleted, false},
		{"done", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusOpposite(t *testing.T) {
	assert.Equal(t, StatusCompleted, StatusPending.Opposite())
	assert.Equal(t, StatusPending, StatusCompleted.Opposite())
	assert.Equal(t, StatusPending, StatusPending.Opposite().Opposite())
}

func TestFilterStatuses(t *testing.T) {
	assert.Equal(t, []Status{StatusPending, StatusCompleted}, FilterAll.Statuses())
	assert.Equal(t, []Status{StatusPending}, FilterPending.Statuses())
	assert.Equal(t, []Status{StatusCompleted}, FilterCompleted.Statuses())

	assert.True(t, FilterAll.Allows(StatusCompleted))
	assert.False(t, FilterPending.Allows(StatusCompleted))
	assert.False(t, FilterCompleted.Allows(StatusPending))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter("PENDING")
	require.NoError(t, err)
	assert.Equal(t, FilterPending, f)

	_, err = ParseFilter("archived")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestStats(t *testing.T) {
	done, pending := Stats([]Todo{
		{ID: 1, Status: StatusPending},
		{ID: 2, Status: StatusCompleted},
		{ID: 3, Status: StatusPending},
	})
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, pending)
}
