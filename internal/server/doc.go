// Package server runs the sync daemon's listeners.
//
// The Bridge carries pub/sub messages of one sync session over a line
// oriented byte stream. TCP connections and an optional serial character
// device feed the same Bridge; sessions are serialized through a single
// slot. An optional admin HTTP server runs next to them.
//
// Line protocol, one frame per '\n' terminated line:
//
//	device: 220 pimsync <major.minor.patch> ready
//	peer:   USER <clientID>
//	peer:   PASS [credential]
//	device: 230 authenticated | 530 not authorized | 421 busy
//	both:   CALL <channel> <message> [arg ...]   (args base64, std encoding)
//	peer:   NOOP
//	peer:   QUIT
//	device: 221 bye
//
// Arguments are separated by exactly one space, so an empty argument is an
// empty field.
package server
