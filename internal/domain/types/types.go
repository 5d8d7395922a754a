// Package types contains common types used across the application
package types

// Entry represents a leaderboard entry
type Entry struct {
	Rank      int     `json:"rank"`
	Team      string  `json:"team"`
	League    string  `json:"league"`
	Rating    float64 `json:"rating"`
	Composite float64 `json:"composite"`
	Playstyle string  `json:"playstyle"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Record    string  `json:"record"`
	WinRate   float64 `json:"win_rate"`
}
