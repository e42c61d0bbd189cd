// internal/game/constants.go
package game

import "github.com/yamachris/unit-bolt-sub001/internal/models"

const (
	// MaxPlayers is fixed: Unit is a two-player duel.
	MaxPlayers = 2

	// StartingHealth is each player's life total. A revolution removes half
	// of it in one blow.
	StartingHealth = 20

	// HandTarget and ReserveCapacity drive the draw-phase refill.
	HandTarget      = 5
	ReserveCapacity = 2

	// InitialDealCount is how many cards each player is dealt before the
	// setup phase moves two of them to the reserve.
	InitialDealCount = 5

	// KingSacrificeCost, QueenSacrificeCost and JackSacrificeCost are the
	// number of unit cards burned to activate a special card without an
	// activator.
	KingSacrificeCost  = 3
	QueenSacrificeCost = 2
	JackSacrificeCost  = 1

	// QueenHealAmount is granted by a Queen sacrifice; JokerHealAmount by
	// spending a Joker on healing instead of an attack.
	QueenHealAmount = 2
	JokerHealAmount = 3

	// RevolutionDamage is dealt to the opponent when a 10-card Joker-free
	// column completes.
	RevolutionDamage = 10

	// MaxStrategicShuffles bounds the per-game strategic shuffle budget.
	MaxStrategicShuffles = 2

	// JackRearmTurnGap: a used Jack button re-arms once the current turn is
	// a positive even number of turns past the turn it was used on.
	JackRearmTurnGap = 2
)

// attackCategories is the static rank -> category table behind the 12 attack
// buttons of every column. Consuming an attack card disables every button
// sharing its category in the attacker's own column of that suit; a Joker
// substitute suppresses the category of the rank it stands in for.
var attackCategories = map[models.Value]int{
	models.ValueAce:   1,
	models.ValueTwo:   2,
	models.ValueThree: 3,
	models.ValueFour:  4,
	models.ValueFive:  5,
	models.ValueSix:   6,
	models.ValueSeven: 7,
	models.ValueEight: 7,
	models.ValueNine:  7,
	models.ValueTen:   8,
	models.ValueJack:  8,
	models.ValueKing:  8,
}

// buttonRanks is the fixed order the 12 buttons are laid out in.
var buttonRanks = []models.Value{
	models.ValueAce, models.ValueTwo, models.ValueThree, models.ValueFour,
	models.ValueFive, models.ValueSix, models.ValueSeven, models.ValueEight,
	models.ValueNine, models.ValueTen, models.ValueJack, models.ValueKing,
}

// attackRanks are the ranks that arm their button when placed in sequence.
// 7 and 10 hold buttons that never self-arm (defense and revolution ranks);
// the Jack arms through activation rules, the King never attacks.
var attackRanks = map[models.Value]bool{
	models.ValueAce:   true,
	models.ValueTwo:   true,
	models.ValueThree: true,
	models.ValueFour:  true,
	models.ValueFive:  true,
	models.ValueSix:   true,
	models.ValueEight: true,
	models.ValueNine:  true,
}

// jackTargetRanks are the ranks a Jack attack may destroy, and also the ranks
// a Joker attack may target inside the sequence (A, 7 and 10 are immune).
var jackTargetRanks = map[models.Value]bool{
	models.ValueTwo:   true,
	models.ValueThree: true,
	models.ValueFour:  true,
	models.ValueFive:  true,
	models.ValueSix:   true,
	models.ValueEight: true,
	models.ValueNine:  true,
}

// AttackCategory exposes the static category of a rank (0 if the rank has no
// button).
func AttackCategory(v models.Value) int {
	return attackCategories[v]
}
