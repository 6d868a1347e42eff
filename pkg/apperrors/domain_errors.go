package apperrors

var (
	ErrUserNotFound      = NotFound("user not found")
	ErrMatchNotFound     = NotFound("match not found")
	ErrRoomNotFound      = NotFound("chat room not found")
	ErrForbidden         = Forbidden("user is not a participant of this match")
	ErrAlreadyExpressed  = Conflict("interest already expressed for this user")
	ErrInvalidTransition = Conflict("match status transition is not allowed")
	ErrInvalidTarget     = InvalidArg("cannot express interest in yourself")
	ErrInvalidContent    = InvalidArg("message content is empty or too long")
	ErrInvalidID         = InvalidArg("malformed identifier")
	ErrInvalidStatus     = InvalidArg("unknown match status")
	ErrInvalidToken      = Unauthorized("invalid or expired token")
)
