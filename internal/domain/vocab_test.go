package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVocabulary_Normalize(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		v, note, ok := ResproutOrgans.Normalize("resprout organ", "Epicormic")
		assert.True(t, ok)
		assert.Equal(t, "Epicormic", v)
		assert.Empty(t, note)
	})

	t.Run("capitalization fallback", func(t *testing.T) {
		v, _, ok := ResproutOrgans.Normalize("resprout organ", "epicormic")
		assert.True(t, ok)
		assert.Equal(t, "Epicormic", v)

		v, _, ok = SeedbankTypes.Normalize("seedbank", "soil-persistent")
		assert.True(t, ok)
		assert.Equal(t, "Soil-persistent", v)
	})

	t.Run("unknown value rejected into a note", func(t *testing.T) {
		v, note, ok := ResproutOrgans.Normalize("resprout organ", "buds")
		assert.False(t, ok)
		assert.Empty(t, v)
		assert.Equal(t, "resprout organ written as buds", note)
	})
}
