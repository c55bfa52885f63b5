package domain

import "time"

// Seats is the fixed number of players at a whist table.
const Seats = 4

// TricksPerRound is the number of tricks one full deck produces.
const TricksPerRound = 13

type GameStatus string

const (
	GameStatusActive    GameStatus = "active"
	GameStatusCompleted GameStatus = "completed"
	GameStatusShared    GameStatus = "shared"
)

type GameMode string

const (
	GameModeScoringOnly GameMode = "scoring_only"
	GameModeFullRemote  GameMode = "full_remote"
	GameModeHybrid      GameMode = "hybrid"
)

// RoundMode is "over" when the table bid more than 13 tricks in total,
// "under" otherwise. It decides the bid-0/take-0 bonus.
type RoundMode string

const (
	RoundModeOver  RoundMode = "over"
	RoundModeUnder RoundMode = "under"
)

// Game is the persisted state of one scoring table. Players, Scores and
// PlayerUserIDs are index-aligned: index i is seat i everywhere.
type Game struct {
	ID            string         `json:"id"`
	Players       [Seats]string  `json:"players"`
	Scores        [Seats]int     `json:"scores"`
	CurrentRound  int            `json:"current_round"`
	Status        GameStatus     `json:"status"`
	GameMode      GameMode       `json:"game_mode"`
	OwnerID       *string        `json:"owner_id"`
	Name          *string        `json:"name"`
	PlayerUserIDs [Seats]*string `json:"player_user_ids"`
	IsShared      bool           `json:"is_shared"`
	ShareCode     *string        `json:"share_code"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Round is one committed whist round. Rounds are append-only; once
// persisted a round never changes.
type Round struct {
	ID          int64      `json:"id"`
	GameID      string     `json:"game_id"`
	RoundNumber int        `json:"round_number"`
	Bids        [Seats]int `json:"bids"`
	Tricks      [Seats]int `json:"tricks"`
	Scores      [Seats]int `json:"scores"`
	RoundMode   RoundMode  `json:"round_mode"`
	TrumpSuit   *string    `json:"trump_suit"`
	CreatedBy   *string    `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}
