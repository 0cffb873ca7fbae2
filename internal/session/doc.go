// Package session tracks the authentication status of the running client.
//
// A Store starts in a loading state and moves to authenticated or
// unauthenticated when the identity check for the current attempt completes.
// Attempts are identified by a Ticket; calling Begin (sign-in, sign-out,
// restore) supersedes every earlier ticket, so a slow response for an older
// attempt can never overwrite a newer result.
//
// Authentication errors are not a separate state. ResolveFailed lands the
// same unauthenticated state as ResolveUnauthenticated and keeps the error in
// State.Failure for display on the login screen.
//
// The Resolution counter increments once per landed resolution. Consumers
// that must act exactly once per sign-in (see package prefsync) key on it
// rather than on how often they are asked to look at the state.
package session
