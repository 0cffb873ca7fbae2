// Package state holds the garage data shown behind the navigation guard.
//
// Store is written by the background poller in package app and read by the
// UI on every tick. Update keeps the previous data when a poll fails and
// counts consecutive failures, so a flaky network shows the last known
// vehicles with an offline badge instead of an empty screen. Clear is called
// when the session ends so nothing from one user is visible to the next.
//
// Snapshots are deep enough copies that the UI can sort or filter them
// without locking.
package state
