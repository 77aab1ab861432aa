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
	List(ctx context.Context) error
	Incomplete(ctx context.Context) error
	Show(ctx context.Context, id string) error
	New(ctx context.Context) error
	Resume(ctx context.Context, id string) error
	Retry(ctx context.Context) error
	Flag(ctx context.Context, id, stage string) error
	Delete(ctx context.Context, id string) error
}

const helpText = `Available commands:
  (l)ist               list all records
  incomplete           list unfinished registrations
  show <id>            show one record
  new                  register a vehicle
  resume <id>          continue an unfinished registration
  retry                re-submit the last failed submission
  flag <id> <stage>    mark a section complete (details, owner, documents, photos)
  delete <id>          delete a record
  exit | quit          leave the program`

// runREPL starts a simple read–eval–print loop for the registration CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Commands that need arguments print their
// usage when called without them. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("vr %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "l", "list":
			_ = a.List(ctx)

		case "incomplete":
			_ = a.Incomplete(ctx)

		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <id>")
				continue
			}
			_ = a.Show(ctx, args[0])

		case "new":
			_ = a.New(ctx)

		case "resume":
			if len(args) != 1 {
				printlnFn("Usage: resume <id>")
				continue
			}
			_ = a.Resume(ctx, args[0])

		case "retry":
			_ = a.Retry(ctx)

		case "flag":
			if len(args) != 2 {
				printlnFn("Usage: flag <id> <stage>")
				continue
			}
			_ = a.Flag(ctx, args[0], args[1])

		case "delete":
			if len(args) != 1 {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
