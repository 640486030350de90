// Package api defines the request/response DTOs of the tokengate HTTP API,
// their validation rules, and the structured error shape shared by all
// endpoints.
package api
