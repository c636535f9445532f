package server

// Server is a listener owned by the device daemon: the TCP and serial sync
// listeners, the admin HTTP server, and the group that runs them all.
type Server interface {
	// RunServer blocks until the listener stops.
	RunServer()

	// Shutdown stops accepting connections. A running sync session is
	// aborted, rolling back its open dataset transaction.
	Shutdown()
}
