package battle

import "errors"

var (
	ErrSelfChallenge = errors.New("cannot challenge yourself")
	ErrChallengedBot = errors.New("cannot challenge the bot")
	ErrBusy          = errors.New("participant is already in a battle")
	ErrNotYourBattle = errors.New("not your battle")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrUnknownBattle = errors.New("battle not found")
	ErrFinished      = errors.New("battle already finished")
	ErrUnknownAction = errors.New("unknown action")
)
