// Package cli provides the interactive admin command-line client.
//
// App ties the session, the auth and profile services and the users list
// controller to a small REPL. Typical flow: log in, page and search through
// users, add, edit or remove them, and manage the own profile.
//
// When the API reports that the session token expired, App drops the token
// and the REPL asks for a login before running the next command.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
