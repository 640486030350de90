// Package auth provides stateless authentication and authorization for
// tokengate.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). A configurable default voter decides
// when all authenticators abstain.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from handler
// logic. The middleware injects the decoded identity into the request
// context, where handlers and the RequireAuthority wrapper read it back.
// No server-side session state exists: every request is authenticated
// independently from its bearer token.
package auth
