package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	mustLogin() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Users(ctx context.Context) error
	NextPage(ctx context.Context) error
	PrevPage(ctx context.Context) error
	GoToPage(ctx context.Context, arg string) error
	Search(ctx context.Context, term string) error
	AddUser(ctx context.Context) error
	EditUser(ctx context.Context, id string) error
	RemoveUser(ctx context.Context, id string) error
	WhoAmI(ctx context.Context) error
	RefreshProfile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: users, next, prev, page <n>, search [term], add, edit <id>, rm <id>, " +
		"whoami, profile, editprofile, passwd, deleteaccount, logout, exit"
)

// open commands run without a session
var openCommands = map[string]bool{
	"help": true, "register": true, "login": true, "exit": true, "quit": true,
}

// runREPL starts a simple read–eval–print loop for the admin CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// Commands other than help, register, login and exit need a session. While
// mustLogin reports true, such a command first runs the login prompt
// instead.
//
// Any errors returned by command handlers are ignored here; handlers
// report their own errors. This keeps the REPL loop resilient and focused
// on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ua %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !openCommands[cmd] {
			if !a.isLoggedIn() {
				printlnFn("Please log in first (type 'login')")
				continue
			}
			if a.mustLogin() {
				printlnFn("Your session has expired, please log in again.")
				_ = a.Login(ctx)
				continue
			}
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() && !a.mustLogin() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "users", "l", "list":
			_ = a.Users(ctx)

		case "next", "n":
			_ = a.NextPage(ctx)

		case "prev", "p":
			_ = a.PrevPage(ctx)

		case "page":
			if len(args) != 1 {
				printlnFn("Usage: page <n>")
				continue
			}
			_ = a.GoToPage(ctx, args[0])

		case "search", "s":
			_ = a.Search(ctx, strings.Join(args, " "))

		case "add":
			_ = a.AddUser(ctx)

		case "edit":
			if len(args) != 1 {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = a.EditUser(ctx, args[0])

		case "rm", "delete":
			if len(args) != 1 {
				printlnFn("Usage: rm <id>")
				continue
			}
			_ = a.RemoveUser(ctx, args[0])

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "profile":
			_ = a.RefreshProfile(ctx)

		case "editprofile":
			_ = a.EditProfile(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "deleteaccount":
			_ = a.DeleteAccount(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
