package models

import "time"

// Player is a leaderboard participant.
type Player struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Score     int       `json:"score" db:"score"`
	Words     []string  `json:"words,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LeaderboardResponse lists the top players and the caller's position.
type LeaderboardResponse struct {
	Players []*Player `json:"players"`
	Rank    int       `json:"rank,omitempty"`
	Player  *Player   `json:"player,omitempty"`
}
