package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	if m := a.currentMode(); m != "" {
		return fmt.Sprintf("(%s) ", m)
	}
	return ""
}

// Root starts the connectivity watcher and blocks in the REPL until the
// user exits.
func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Vehicle registration client (type 'help' for commands)")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)
	}()

	runREPL(ctx, a, a.getStatus, a.reader)
}
