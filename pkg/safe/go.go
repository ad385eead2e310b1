package safe

import "log/slog"

// Go runs f on a new goroutine and turns panics into error logs so a
// crashing background task cannot take the whole TUI down with it.
// name tags the log line.
func Go(name string, f func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("[safe] goroutine panic", "name", name, "error", err)
			}
		}()

		f()
	}()
}
