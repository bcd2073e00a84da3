package grades

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForLabel(t *testing.T) {
	tests := []struct {
		label string
		level int
	}{
		{"TPS", 1},
		{"PS", 2},
		{"CP", 5},
		{"CE1 (2e année primaire)", 6},
		{"CM2", 9},
		{"Sixième", 10},
		{"Terminale", 16},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			level, err := LevelForLabel(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.level, level)
		})
	}
}

func TestLevelForLabelUnknown(t *testing.T) {
	_, err := LevelForLabel("Kindergarten")
	assert.Error(t, err)
}

func TestLabelForLevelRoundTrip(t *testing.T) {
	for level := 1; level <= 16; level++ {
		label, err := LabelForLevel(level)
		require.NoError(t, err)

		got, err := LevelForLabel(label)
		require.NoError(t, err)
		assert.Equal(t, level, got)
	}

	_, err := LabelForLevel(17)
	assert.Error(t, err)
}
