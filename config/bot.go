package config

// BotDifficulty affects reaction time and decision quality
type BotDifficulty int

const (
	BotDifficultyEasy BotDifficulty = iota
	BotDifficultyNormal
	BotDifficultyHard
)

func (d BotDifficulty) String() string {
	switch d {
	case BotDifficultyEasy:
		return "easy"
	case BotDifficultyHard:
		return "hard"
	}
	return "normal"
}

// ParseBotDifficulty maps a name to a difficulty, defaulting to normal.
func ParseBotDifficulty(name string) BotDifficulty {
	switch name {
	case "easy":
		return BotDifficultyEasy
	case "hard":
		return BotDifficultyHard
	}
	return BotDifficultyNormal
}

// BotDifficultyConfig holds tuning values for bot behavior at a specific difficulty
type BotDifficultyConfig struct {
	ReactionDelay    float64 // seconds between decisions
	AttackRange      int     // distance in px to start punching
	ChaseRange       int     // distance in px to keep walking in
	RetreatThreshold float64 // health fraction to start backing off
	JumpChance       float64 // per decision, while in range
	BlockChance      float64 // per decision, while the opponent attacks
}

// BotConfigData holds all bot-related configuration
type BotConfigData struct {
	Difficulties map[BotDifficulty]BotDifficultyConfig
	Seed         int64
}

// Bot holds bot AI configuration
var Bot BotConfigData

func init() {
	Bot = BotConfigData{
		Seed: 42,
		Difficulties: map[BotDifficulty]BotDifficultyConfig{
			BotDifficultyEasy: {
				ReactionDelay:    0.5,
				AttackRange:      130,
				ChaseRange:       400,
				RetreatThreshold: 0.2,
				JumpChance:       0.02,
				BlockChance:      0.1,
			},
			BotDifficultyNormal: {
				ReactionDelay:    0.25,
				AttackRange:      140,
				ChaseRange:       500,
				RetreatThreshold: 0.3,
				JumpChance:       0.05,
				BlockChance:      0.4,
			},
			BotDifficultyHard: {
				ReactionDelay:    0.08,
				AttackRange:      150,
				ChaseRange:       600,
				RetreatThreshold: 0.15,
				JumpChance:       0.08,
				BlockChance:      0.8,
			},
		},
	}
}
