package api

// LoginRequest carries submitted credentials for POST /api/authenticate.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupRequest carries the fields for POST /api/signup.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// UserResponse is the public view of a user record. The password hash is
// never serialized.
type UserResponse struct {
	Username    string   `json:"username"`
	Nickname    string   `json:"nickname"`
	Activated   bool     `json:"activated"`
	Authorities []string `json:"authorities"`
}
