package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateArg(t *testing.T) {
	got, err := ParseDateArg("2025-03-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)))

	got, err = ParseDateArg("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseDateArg("today")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0, got.Hour())

	_, err = ParseDateArg("03/01/2025")
	require.Error(t, err)
}

func TestStartOfWeekIsMonday(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"wednesday", time.Date(2025, 9, 3, 15, 30, 0, 0, time.Local), time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local)},
		{"monday stays", time.Date(2025, 9, 1, 8, 0, 0, 0, time.Local), time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local)},
		{"sunday belongs to previous monday", time.Date(2025, 9, 7, 23, 0, 0, 0, time.Local), time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, StartOfWeek(tt.in).Equal(tt.want))
		})
	}
}
