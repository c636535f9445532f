// Package peer drives the desktop side of the sync protocol.
//
// A Conn speaks the line protocol served by the daemon's bridge: it logs in,
// exchanges identities and versions, and runs one dataset sync at a time.
// Driver strings these steps together for the pimsync tool and keeps the
// pulled records, pending pushes and sync anchors in a DirStore.
package peer
