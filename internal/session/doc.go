// Package session implements the per-connection protocol state machine.
//
// States:
//
//	Unauthenticated --auth(valid token)--> Authenticated
//
// While unauthenticated only auth is accepted; every other command gets
// "Authentication required" and never reaches the device registry. Once
// authenticated, commands are routed to the printer, drawer or display they
// name. The connection's state is an explicit *Session passed to
// Dispatcher.Handle on every message.
//
// A print command is sent to the printer as one PrintRaw buffer
// (initialize, text, optional feed and cut) so the spooler or printer sees a
// single job and cannot drop the cut.
package session
