// Package api provides an HTTP client for the vehicle-maintenance backend.
//
// The backend is the system of record for users, vehicles, maintenance and
// fuel logs, and reminders. This package only reads those records (plus the
// two profile fields the settings screen writes back), and leaves sign-in
// state to package auth.
//
// # Endpoints
//
//   - POST /auth/token: form-encoded credentials, returns a bearer token
//   - POST /auth/register: create an account
//   - GET/PUT /users/me: profile, including dark_mode and mileage_type
//   - GET /vehicles/: vehicles owned by the user
//   - GET /reminders/, /reminders/upcoming?days=N, /reminders/overdue
//   - GET /maintenance/vehicle/{id}, /fuel/vehicle/{id}
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and a User-Agent
//   - Carry a fresh X-Request-ID so backend logs can be correlated
//   - Send Authorization: Bearer <token> when a token is supplied
//
// Non-2xx responses become *Error. The Detail field is taken from the
// FastAPI error body when present ("detail" as a string, as a list of
// validation errors, or as an object) and falls back to the HTTP status text.
package api
