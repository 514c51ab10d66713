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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	EditProfile(ctx context.Context) error
	UploadAvatar(ctx context.Context, path string) error
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context, token string) error
	Status(ctx context.Context) error
}

// readLine returns the next input line without its line terminator. ok is
// false once input is exhausted.
func readLine(r *bufio.Reader) (line string, ok bool) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), true
		}
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

// runREPL starts a simple read–eval–print loop for the gophsocial CLI.
//
// It reads a line from r, parses the first token as the command, and
// dispatches to methods on 'a'. Command handlers read their own form input
// from the same reader. The loop exits on EOF or when the user types "exit"
// or "quit".
//
//	Not logged in:
//	  - register        — create an account
//	  - login           — authenticate
//	  - verify <token>  — confirm an e-mail address
//	  - forgot          — request a password reset
//	  - reset <token>   — set a new password
//
//	Logged in:
//	  - whoami          — show the current identity
//	  - profile         — edit full name, bio, username
//	  - avatar <path>   — upload a profile picture
//	  - logout          — log out
//
//	Always: help, status, exit | quit
//
// Errors returned by command handlers are ignored here; handlers report
// their own failures.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gs %s> ", statusFn()))
		line, ok := readLine(r)
		if !ok {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, profile, avatar <path>, verify <token>, status, logout, exit")
			} else {
				printlnFn("Available commands: register, login, verify <token>, forgot, reset <token>, status, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "profile":
			_ = a.EditProfile(ctx)

		case "avatar":
			if len(args) == 0 {
				printlnFn("Usage: avatar <path>")
				continue
			}
			_ = a.UploadAvatar(ctx, args[0])

		case "verify":
			if len(args) == 0 {
				printlnFn("Usage: verify <token>")
				continue
			}
			_ = a.VerifyEmail(ctx, args[0])

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "reset":
			if len(args) == 0 {
				printlnFn("Usage: reset <token>")
				continue
			}
			_ = a.ResetPassword(ctx, args[0])

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
