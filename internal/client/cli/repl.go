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
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context) error
	AddRecord(ctx context.Context) error
	ShowRecord(ctx context.Context) error
	EditRecord(ctx context.Context) error
	DeleteRecord(ctx context.Context) error
	AttachFile(ctx context.Context) error
	SaveAttachment(ctx context.Context) error
	Friends(ctx context.Context) error
	AddFriend(ctx context.Context) error
	RemoveFriend(ctx context.Context) error
	SearchUsers(ctx context.Context) error
	SetAvatar(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the CostMate CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func(ctx context.Context) string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("costmate %s > ", statusFn(ctx)))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: (l)ist, add, show, edit, delete, attach, getfile, friends, addfriend, rmfriend, search, avatar, whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "add":
			_ = a.AddRecord(ctx)

		case "show":
			_ = a.ShowRecord(ctx)

		case "edit":
			_ = a.EditRecord(ctx)

		case "delete":
			_ = a.DeleteRecord(ctx)

		case "attach":
			_ = a.AttachFile(ctx)

		case "getfile":
			_ = a.SaveAttachment(ctx)

		case "friends":
			_ = a.Friends(ctx)

		case "addfriend":
			_ = a.AddFriend(ctx)

		case "rmfriend":
			_ = a.RemoveFriend(ctx)

		case "search":
			_ = a.SearchUsers(ctx)

		case "avatar":
			_ = a.SetAvatar(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
