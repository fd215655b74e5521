// Package session owns the locally known identity of the operator.
//
// A Store keeps the current user in memory and mirrors every change to the
// durable key/value store under two independent slots:
//
//	auth_token  raw bearer token
//	user        JSON encoded models.User
//
// Either slot may exist without the other. Reads of corrupt user data never
// fail: the broken value is erased and the store reports "no session".
// Durable write failures are logged and do not roll back the in-memory
// state, so the session stays usable for the running process.
package session
