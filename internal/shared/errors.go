package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrUsernameTaken      = fmt.Errorf("username already taken")

	// API and service errors
	ErrAPIRequest    = fmt.Errorf("API request failed")
	ErrUserNotFound  = fmt.Errorf("user not found")
	ErrEntryNotFound = fmt.Errorf("mood entry not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
