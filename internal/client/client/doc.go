// Package client bootstraps local persistence for the admin CLI.
//
// InitDatabase opens (creating if needed) the SQLite file that holds the
// session and applies the embedded goose migrations via RunMigrations.
package client
