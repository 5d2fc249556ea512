package room

import "errors"

// Reasons a join can be refused.
var (
	ErrRoomFull       = errors.New("room is full")
	ErrGameInProgress = errors.New("hand in progress and mid-game joins are disabled")
	ErrRoomPrivate    = errors.New("room is private")
	ErrBadPasscode    = errors.New("incorrect passcode")
	ErrRoomClosed     = errors.New("room is closed")
)

// JoinError is returned when a player may not take a seat. Reason is one of
// the Err* sentinels above.
type JoinError struct {
	Reason error
}

func (e *JoinError) Error() string {
	return "join refused: " + e.Reason.Error()
}

func (e *JoinError) Unwrap() error {
	return e.Reason
}

func refuse(reason error) error {
	return &JoinError{Reason: reason}
}
