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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	AddToCart(ctx context.Context) error
	RemoveFromCart(ctx context.Context, args []string) error
	SetQuantity(ctx context.Context, args []string) error
	ShowCart(ctx context.Context) error
	ClearCart(ctx context.Context) error
	SyncCart(ctx context.Context) error
}

// runREPL reads a line from the scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit". Errors returned by command handlers are ignored here;
// handlers log their own errors, which keeps the loop resilient.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("shopsync %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, add, remove <id>, qty <id> <n>, cart, clear, sync, logout, exit")
			} else {
				printlnFn("Available commands: register, login, add, remove <id>, qty <id> <n>, cart, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "add":
			_ = a.AddToCart(ctx)

		case "remove", "rm":
			_ = a.RemoveFromCart(ctx, args)

		case "qty":
			_ = a.SetQuantity(ctx, args)

		case "cart", "show":
			_ = a.ShowCart(ctx)

		case "clear":
			_ = a.ClearCart(ctx)

		case "sync":
			_ = a.SyncCart(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
