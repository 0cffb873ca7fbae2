// Package auth is the identity collaborator for the session store.
//
// Service performs the blocking calls (restore a saved token, sign in, sign
// up, sign out) and reports each attempt as an Outcome. Callers take a
// session.Ticket before starting the call and land the result with
// Outcome.Resolve, which makes late answers for superseded attempts no-ops.
//
// The saved sign-in lives in a small TOML file written with 0600
// permissions. Stored tokens are checked for JWT expiry before use; the
// signature is never verified client-side.
package auth
