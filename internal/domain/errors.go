package domain

import "errors"

var (
	// ErrInvalidSettings is returned when quiz settings fall outside their bounds.
	ErrInvalidSettings = errors.New("invalid quiz settings")
	// ErrInvalidChallenge is returned when challenge fields fall outside their bounds.
	ErrInvalidChallenge = errors.New("invalid challenge definition")
	// ErrScopeBusy is returned when a scope already hosts an active session of the same kind.
	ErrScopeBusy = errors.New("scope already has an active session")
	// ErrSessionNotFound is returned when a session id is unknown or already removed.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionInactive is returned when acting on a session that has ended.
	ErrSessionInactive = errors.New("session is not active")
	// ErrParticipantNotFound is returned when a user acts before joining.
	ErrParticipantNotFound = errors.New("participant not found in session")
	// ErrSessionFull is returned when the participant cap has been reached.
	ErrSessionFull = errors.New("session is full")
	// ErrQuizInProgress is returned when joining after the first question has passed.
	ErrQuizInProgress = errors.New("quiz already in progress")
	// ErrNoQuestionsAvailable is returned when the bank yields nothing after filtering.
	ErrNoQuestionsAvailable = errors.New("no questions available")
	// ErrAnswerOutOfRange is returned when an answer index exceeds the option count.
	ErrAnswerOutOfRange = errors.New("answer index out of range")
	// ErrUnknownGameType is returned when no definition matches the requested game.
	ErrUnknownGameType = errors.New("unknown game type")
	// ErrGameClosed is returned when a game event arrives outside its valid window.
	ErrGameClosed = errors.New("game is closed to this action")
	// ErrBoxAlreadyOpened is returned on a duplicate lootbox open.
	ErrBoxAlreadyOpened = errors.New("box already opened")
	// ErrAlreadyClaimed is returned when a prize or reward was claimed before.
	ErrAlreadyClaimed = errors.New("already claimed")
	// ErrChallengeNotFound is returned when a challenge id is unknown or inactive.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrProgressNotFound is returned when a user has no progress for a challenge.
	ErrProgressNotFound = errors.New("challenge progress not found")
	// ErrNotCompleted is returned when claiming a challenge that is not finished.
	ErrNotCompleted = errors.New("challenge not completed")
)
