// Package http implements the admin HTTP API of the sync daemon.
//
// The API reports the build version and the state of the running sync
// session, and lets an operator forget every remembered peer credential.
// Request tracing and access logging are handled here before calls reach the
// service layer.
package http
