package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	takeNotice() (string, bool)
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Copy(ctx context.Context, args []string) error
	Profile(ctx context.Context) error
	Users(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, help, exit"
	helpLoggedIn  = "Available commands: (l)ist [term], show <id> [-r], add, edit <id>, delete <id>, copy <id>, whoami, profile, users, logout, help, exit"
)

// runREPL starts a simple read-eval-print loop for the passcli client.
//
// It reads a line from r, parses the first token as the command and the
// rest as arguments, and dispatches to methods on 'a'. The loop exits on EOF,
// on context cancellation, or when the user types "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  help             show available commands
//	  register         create an account
//	  login            authenticate
//	  exit | quit      leave the program
//
//	Logged in:
//	  list [term]      list records, optionally filtered by website/username
//	  show <id> [-r]   show one record; -r reveals the secret
//	  add              add a record
//	  edit <id>        change a record, empty answers keep the old value
//	  delete <id>      delete a record
//	  copy <id>        copy a record's secret to the clipboard
//	  whoami           show the current session
//	  profile          show or edit the user profile
//	  users            list users
//	  logout           log out
//
// Before each prompt a pending session notice is shown and the login prompt
// is opened. Command errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		if notice, ok := a.takeNotice(); ok {
			printlnFn(notice)
			_ = a.Login(ctx)
		}

		printlnFn(fmt.Sprintf("passcli (%s)> ", statusFn()))
		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "logout", "whoami", "l", "list", "show", "add", "edit", "delete", "rm", "copy", "profile", "users":
			if !a.isLoggedIn() {
				printlnFn("Please log in first (login or register).")
				continue
			}
			dispatch(ctx, a, cmd, args)

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "logout":
		_ = a.Logout(ctx)
	case "whoami":
		_ = a.WhoAmI(ctx)
	case "l", "list":
		_ = a.List(ctx, args)
	case "show":
		_ = a.Show(ctx, args)
	case "add":
		_ = a.Add(ctx)
	case "edit":
		_ = a.Edit(ctx, args)
	case "delete", "rm":
		_ = a.Delete(ctx, args)
	case "copy":
		_ = a.Copy(ctx, args)
	case "profile":
		_ = a.Profile(ctx)
	case "users":
		_ = a.Users(ctx)
	}
}
