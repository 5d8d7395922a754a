package model

import "time"

// HistoryEntry records a team's rating right after one processed game.
type HistoryEntry struct {
	Team   string    `json:"team"`
	Rating float64   `json:"rating"`
	Date   time.Time `json:"date"`
	GameID string    `json:"game_id"`
	League string    `json:"league"`
}
