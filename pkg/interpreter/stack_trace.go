package interpreter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pingf/toy-lang/pkg/runtime"
)

// uncaught reports an exception that escaped the program through the host
// and converts it into an error.
func (i *Interpreter) uncaught(t *runtime.Thrown) error {
	message, inner, err := i.stringify(t.Value, i.global)
	if err != nil || inner != nil {
		message = describe(t.Value)
	}
	i.host.Output(FormatUncaught(message, t.Frames))
	i.logger.Debug("uncaught exception", slog.String("value", message), slog.Int("frames", len(t.Frames)))
	return &UncaughtError{Thrown: t, Message: message}
}

// FormatUncaught renders the report printed for an uncaught exception.
func FormatUncaught(message string, frames []runtime.Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Uncaught exception: %s\n", message)
	for _, frame := range frames {
		fmt.Fprintf(&b, "\tat %s\n", frame)
	}
	return b.String()
}
