// internal/models/catalog.go
package models

// Game identifies a supported game. Adding a game means adding its
// entry here plus a rank list in RanksByGame; no code changes.
type Game string

const (
	GameValorant Game = "valorant"
	GameCSGO     Game = "csgo"
	GameApex     Game = "apex"
	GameLoL      Game = "lol"
)

var gameLabels = map[Game]string{
	GameValorant: "Valorant",
	GameCSGO:     "CS:GO",
	GameApex:     "Apex Legends",
	GameLoL:      "League of Legends",
}

// Vibe is the intended play tone of a lobby.
type Vibe string

const (
	VibeSerious     Vibe = "serious"
	VibeChill       Vibe = "chill"
	VibeCompetitive Vibe = "competitive"
	VibeCasual      Vibe = "casual"
	VibeTryhard     Vibe = "tryhard"
)

var vibeLabels = map[Vibe]string{
	VibeSerious:     "Serious",
	VibeChill:       "Chill",
	VibeCompetitive: "Competitive",
	VibeCasual:      "Casual",
	VibeTryhard:     "Tryhard",
}

// Rank is a single selectable rank for a game: the stored value plus
// its human-readable label.
type Rank struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var valorantRanks = []Rank{
	{"iron1", "Iron 1"}, {"iron2", "Iron 2"}, {"iron3", "Iron 3"},
	{"bronze1", "Bronze 1"}, {"bronze2", "Bronze 2"}, {"bronze3", "Bronze 3"},
	{"silver1", "Silver 1"}, {"silver2", "Silver 2"}, {"silver3", "Silver 3"},
	{"gold1", "Gold 1"}, {"gold2", "Gold 2"}, {"gold3", "Gold 3"},
	{"platinum1", "Platinum 1"}, {"platinum2", "Platinum 2"}, {"platinum3", "Platinum 3"},
	{"diamond1", "Diamond 1"}, {"diamond2", "Diamond 2"}, {"diamond3", "Diamond 3"},
	{"ascendant1", "Ascendant 1"}, {"ascendant2", "Ascendant 2"}, {"ascendant3", "Ascendant 3"},
	{"immortal1", "Immortal 1"}, {"immortal2", "Immortal 2"}, {"immortal3", "Immortal 3"},
	{"radiant", "Radiant"},
	{"unranked", "Unranked"},
}

var csgoRanks = []Rank{
	{"0-1k", "0-1k Rating"},
	{"1k-5k", "1k-5k Rating"},
	{"5k-10k", "5k-10k Rating"},
	{"10k-15k", "10k-15k Rating"},
	{"15k-20k", "15k-20k Rating"},
	{"20k+", "20k+ Rating"},
	{"unranked", "Unranked"},
}

var apexRanks = []Rank{
	{"rookie", "Rookie"},
	{"bronze", "Bronze"},
	{"silver", "Silver"},
	{"gold", "Gold"},
	{"platinum", "Platinum"},
	{"diamond", "Diamond"},
	{"master", "Master"},
	{"predator", "Predator"},
	{"unranked", "Unranked"},
}

var lolRanks = []Rank{
	{"iron", "Iron"}, {"bronze", "Bronze"}, {"silver", "Silver"},
	{"gold", "Gold"}, {"platinum", "Platinum"}, {"diamond", "Diamond"},
	{"master", "Master"}, {"grandmaster", "Grandmaster"},
	{"challenger", "Challenger"}, {"unranked", "Unranked"},
}

// RanksByGame is the per-game rank whitelist, ordered low to high.
var RanksByGame = map[Game][]Rank{
	GameValorant: valorantRanks,
	GameCSGO:     csgoRanks,
	GameApex:     apexRanks,
	GameLoL:      lolRanks,
}

// ValidGame reports whether g names a supported game.
func ValidGame(g Game) bool {
	_, ok := RanksByGame[g]
	return ok
}

// ValidVibe reports whether v is a known vibe.
func ValidVibe(v Vibe) bool {
	_, ok := vibeLabels[v]
	return ok
}

// ValidRank reports whether rank appears in the whitelist for game.
func ValidRank(g Game, rank string) bool {
	for _, r := range RanksByGame[g] {
		if r.Value == rank {
			return true
		}
	}
	return false
}

// GameLabel returns the display name of a game, or the raw value if unknown.
func GameLabel(g Game) string {
	if l, ok := gameLabels[g]; ok {
		return l
	}
	return string(g)
}

// VibeLabel returns the display name of a vibe, or the raw value if unknown.
func VibeLabel(v Vibe) string {
	if l, ok := vibeLabels[v]; ok {
		return l
	}
	return string(v)
}

// RankLabel returns the display name of a rank within a game, falling
// back to the raw value for ranks not in the whitelist.
func RankLabel(g Game, rank string) string {
	for _, r := range RanksByGame[g] {
		if r.Value == rank {
			return r.Label
		}
	}
	return rank
}

// Games returns the supported game identifiers in a stable order.
func Games() []Game {
	return []Game{GameValorant, GameCSGO, GameApex, GameLoL}
}
