// internal/models/catalog_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEveryWhitelistedRankIsValid(t *testing.T) {
	for game, ranks := range RanksByGame {
		for _, r := range ranks {
			assert.True(t, ValidRank(game, r.Value), "rank %q should be valid for %q", r.Value, game)
		}
	}
}

func TestRanksAreNotValidAcrossGames(t *testing.T) {
	assert.True(t, ValidRank(GameValorant, "radiant"))
	assert.False(t, ValidRank(GameCSGO, "radiant"))
	assert.False(t, ValidRank(GameLoL, "predator"))
}

func TestValidGame(t *testing.T) {
	for _, g := range Games() {
		assert.True(t, ValidGame(g))
	}
	assert.False(t, ValidGame("fortnite"))
	assert.False(t, ValidGame(""))
}

func TestValidVibe(t *testing.T) {
	assert.True(t, ValidVibe(VibeChill))
	assert.False(t, ValidVibe("angry"))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "CS:GO", GameLabel(GameCSGO))
	assert.Equal(t, "Ascendant 2", RankLabel(GameValorant, "ascendant2"))
	assert.Equal(t, "Tryhard", VibeLabel(VibeTryhard))
	// Unknown values pass through rather than erroring.
	assert.Equal(t, "mystery", RankLabel(GameValorant, "mystery"))
}
