// Package app is the composition root for odo.
//
// # Overview
//
// Run loads the configuration, opens the JSON log file, builds the backend
// client and hands everything to Compose, then runs the Bubble Tea program
// until the user quits or the context is cancelled.
//
// # Composition
//
// Compose builds the layers in a fixed order, each constructor taking the
// layers outside it as required arguments:
//
//  1. prefs.Store, seeded from the terminal's color scheme
//  2. session.Store, loading, with an implicit first attempt
//  3. prefsync.Synchronizer, subscribed to the session store
//  4. state.Store and the Poller that fills it
//  5. ui.Model: frame, navigation guard and router
//
// Because the synchronizer subscribes before the guard, a user's saved dark
// mode and units are already applied when the guard grants access.
//
// # Polling
//
// The Poller fetches vehicles, reminders, upcoming and overdue reminders with
// the signed-in user's token. It only runs while the guard grants access: the
// UI starts it on Granted and stops it on Denied, and Stop clears the
// snapshot. Failed polls keep the last data, count consecutive failures and
// back off exponentially up to 30 seconds.
//
// # Logging
//
// The terminal belongs to the UI, so log records go to a file
// (~/.local/state/odo/odo.log by default) as JSON through log/slog. Each
// component gets a logger tagged with its name.
package app
