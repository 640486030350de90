package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/tokengate-dev/tokengate/pkg/auth"
)

// TestFullAuthFlow exercises the complete happy path: signup, authenticate,
// and access a protected endpoint with the issued token.
func TestFullAuthFlow(t *testing.T) {
	signupUser(t, "flowuser", "flowpass")
	tok := loginUser(t, "flowuser", "flowpass")

	resp := getURL(t, testEnv.BaseURL()+"/api/me", tok)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status = %d, body = %s", resp.StatusCode, readBody(t, resp))
	}

	var user struct {
		Username    string   `json:"username"`
		Nickname    string   `json:"nickname"`
		Activated   bool     `json:"activated"`
		Authorities []string `json:"authorities"`
	}
	decodeJSON(t, resp, &user)

	if user.Username != "flowuser" {
		t.Errorf("username = %q, want flowuser", user.Username)
	}
	if !user.Activated {
		t.Error("expected user to be activated")
	}
	if len(user.Authorities) != 1 || user.Authorities[0] != "ROLE_USER" {
		t.Errorf("authorities = %v, want [ROLE_USER]", user.Authorities)
	}
}

// TestProtectedEndpoint_NoToken verifies the gate rejects unauthenticated
// requests to protected paths.
func TestProtectedEndpoint_NoToken(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/api/me", "")
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if !strings.Contains(body, "unauthorized") {
		t.Errorf("body = %s, want unauthorized error type", body)
	}
}

// TestProtectedEndpoint_GarbageToken verifies a malformed bearer token is
// rejected with the same generic unauthorized response.
func TestProtectedEndpoint_GarbageToken(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/api/me", "not-a-jwt")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

// TestBadCredentials_UniformResponse verifies that a wrong password and an
// unknown username are indistinguishable from the outside.
func TestBadCredentials_UniformResponse(t *testing.T) {
	signupUser(t, "uniform", "rightpass")

	wrongPw := postJSON(t, testEnv.BaseURL()+"/api/authenticate", map[string]string{
		"username": "uniform", "password": "wrongpass",
	})
	wrongPwBody := readBody(t, wrongPw)

	unknown := postJSON(t, testEnv.BaseURL()+"/api/authenticate", map[string]string{
		"username": "nosuchuser", "password": "wrongpass",
	})
	unknownBody := readBody(t, unknown)

	if wrongPw.StatusCode != http.StatusUnauthorized || unknown.StatusCode != http.StatusUnauthorized {
		t.Fatalf("statuses = %d / %d, want 401 for both", wrongPw.StatusCode, unknown.StatusCode)
	}
	if wrongPwBody != unknownBody {
		t.Errorf("failure bodies differ: %q vs %q", wrongPwBody, unknownBody)
	}
}

// TestSignup_DuplicateUsername verifies the conflict response.
func TestSignup_DuplicateUsername(t *testing.T) {
	signupUser(t, "duplicate", "firstpass")

	resp := postJSON(t, testEnv.BaseURL()+"/api/signup", map[string]string{
		"username": "duplicate", "password": "otherpass", "nickname": "Dup",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

// TestHello_Unauthenticated verifies the public greeting endpoint stays
// reachable without any credentials.
func TestHello_Unauthenticated(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/api/hello", "")
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "hello") {
		t.Errorf("body = %s, want greeting", body)
	}
}

// TestAdminEndpoint_Authorization verifies role enforcement on the user
// lookup endpoint.
func TestAdminEndpoint_Authorization(t *testing.T) {
	signupUser(t, "plainuser", "plainpass")
	userTok := loginUser(t, "plainuser", "plainpass")

	resp := getURL(t, testEnv.BaseURL()+"/api/users/plainuser", userTok)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("user token: status = %d, want 403", resp.StatusCode)
	}

	adminTok, err := testEnv.Provider.Issue(&auth.Identity{
		Subject:     "admin",
		Authorities: []string{"ROLE_ADMIN"},
	})
	if err != nil {
		t.Fatalf("issuing admin token: %v", err)
	}

	resp = getURL(t, testEnv.BaseURL()+"/api/users/plainuser", adminTok)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin token: status = %d, want 200", resp.StatusCode)
	}
}

// TestToken_Reusable verifies a single token works across multiple requests;
// the service keeps no per-token server state.
func TestToken_Reusable(t *testing.T) {
	signupUser(t, "reuser", "reusepass")
	tok := loginUser(t, "reuser", "reusepass")

	for i := 0; i < 3; i++ {
		resp := getURL(t, testEnv.BaseURL()+"/api/me", tok)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, resp.StatusCode)
		}
	}
}
