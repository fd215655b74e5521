// Package listview keeps one page of the remote users list on screen.
//
// Two paths change what is shown: explicit page changes, which fetch at
// once, and search input, which is debounced. Fetches run on their own
// goroutines; every fetch is numbered so that, unless configured
// otherwise, an answer older than the one already applied is dropped.
// After Close no result is applied.
package listview
