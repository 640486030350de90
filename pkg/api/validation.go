package api

import "fmt"

// Field length limits, checked at the request boundary as ordinary function
// calls rather than declarative annotations.
const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 3
	maxPasswordLen = 100
	minNicknameLen = 3
	maxNicknameLen = 50
)

// Validate checks a LoginRequest. It returns an *APIError describing the
// first validation failure, or nil if the request is valid.
func (r *LoginRequest) Validate() *APIError {
	if err := checkLength("username", r.Username, minUsernameLen, maxUsernameLen); err != nil {
		return err
	}
	return checkLength("password", r.Password, minPasswordLen, maxPasswordLen)
}

// Validate checks a SignupRequest.
func (r *SignupRequest) Validate() *APIError {
	if err := checkLength("username", r.Username, minUsernameLen, maxUsernameLen); err != nil {
		return err
	}
	if err := checkLength("password", r.Password, minPasswordLen, maxPasswordLen); err != nil {
		return err
	}
	return checkLength("nickname", r.Nickname, minNicknameLen, maxNicknameLen)
}

func checkLength(param, value string, min, max int) *APIError {
	if value == "" {
		return NewInvalidRequestError(param, param+" is required")
	}
	if len(value) < min || len(value) > max {
		return NewInvalidRequestError(param,
			fmt.Sprintf("%s must be between %d and %d characters", param, min, max))
	}
	return nil
}
