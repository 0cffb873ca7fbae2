// Package ui implements the odo terminal interface with Bubble Tea.
//
// The model is composed in a fixed order. The frame paints the preference
// background and keeps content inside the safe area. Inside it sits the
// navigation guard, and inside the guard the router with the login, garage,
// reminders and settings screens. The guard observes the session store and
// is consulted twice: once for the whole window (a spinner while the first
// sign-in check runs) and once around every protected screen (a redirect
// notice while access is denied).
//
// Calls to the backend never run in Update. Sign-in, sign-out, restore and
// profile saves run as tea.Cmd functions and report back with messages. Auth
// results carry the ticket of the attempt that produced them, and the session
// store drops results whose ticket has been superseded.
//
// The data feed (the background poller in package app) is started when the
// guard grants access and stopped, with its snapshot cleared, when it
// denies access.
package ui
