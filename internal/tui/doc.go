// Package tui asks the device owner whether an unknown desktop peer may pair.
//
// [TerminalPrompter] renders a Bubble Tea Allow/Deny dialog on the
// controlling terminal. [AutoPrompter] answers without asking and is used for
// headless runs and tests.
package tui
