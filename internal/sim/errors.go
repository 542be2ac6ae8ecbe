package sim

import "errors"

// ErrInvalidSetup indicates a side does not have enough players to field
// a lineup and a pitcher. No Game is constructed when it is returned.
var ErrInvalidSetup = errors.New("each team needs at least two players")

// ErrGameOver indicates a play was requested on a completed game.
var ErrGameOver = errors.New("game is over")

// ErrUnknownTeam indicates a team id could not be resolved.
var ErrUnknownTeam = errors.New("unknown team")

// ErrScheduleExhausted indicates the season has no unplayed fixtures left.
var ErrScheduleExhausted = errors.New("season schedule exhausted")
