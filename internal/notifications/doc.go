// Package notifications delivers outcome messages to the user.
//
// The Notifier interface keeps the tracking core free of presentation
// concerns; the ntfy implementation pushes to a configured topic, Noop is
// the default, and Memory records entries for tests.
package notifications
