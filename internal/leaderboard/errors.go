package leaderboard

import "errors"

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownField    = errors.New("unknown field")
	ErrClosed          = errors.New("store closed")
	ErrEmptyImport     = errors.New("document has neither aiLeaderboardEntries nor aiTools")
)
