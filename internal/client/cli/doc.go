// Package cli provides the interactive passcli command-line client.
//
// It wires configuration, the local credential store, the HTTP transport and
// the session, record and user services, then runs a REPL. Typical flow:
// restore a stored session or log in, then list, add, edit, copy or delete
// password records.
//
// When the server rejects the session token, the REPL prints a notice and
// returns to the login prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
