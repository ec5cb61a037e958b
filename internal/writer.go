package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Writer provides methods for output operations that library code needs.
// This allows callers to control where and how output is written, rather than
// forcing library code to use global state like fmt.Print or log.Fatal.
type Writer interface {
	// Print writes a message to the output stream.
	Print(v ...interface{})

	// Printf writes a formatted message to the output stream.
	Printf(format string, v ...interface{})

	// Println writes a message with a newline to the output stream.
	Println(v ...interface{})

	// Debugf writes a formatted diagnostic message. It is dropped unless
	// debug output was enabled.
	Debugf(format string, v ...interface{})

	// Warning writes a warning message to the output stream.
	Warning(v ...interface{})

	// Warningf writes a formatted warning message to the output stream.
	Warningf(format string, v ...interface{})

	// Fatal writes an error message and signals a fatal error.
	// Implementation should handle cleanup and termination appropriately.
	Fatal(v ...interface{})

	// Fatalf writes a formatted error message and signals a fatal error.
	// Implementation should handle cleanup and termination appropriately.
	Fatalf(format string, v ...interface{})

	// GetWriter returns the underlying io.Writer for direct writing. Response
	// bodies streamed from the daemon are copied here verbatim.
	GetWriter() io.Writer
}

// StandardWriter implements Writer with plain output on one stream and a
// leveled logger on the other.
type StandardWriter struct {
	out    io.Writer
	logger *log.Logger
	exit   func(int)
}

// NewStandardWriter creates a Writer that outputs to stdout and logs to stderr.
func NewStandardWriter(debug bool) *StandardWriter {
	return NewCustomWriter(os.Stdout, os.Stderr, debug)
}

// NewCustomWriter creates a Writer with custom output streams.
// The out stream is used for normal output, while err receives debug, warning
// and fatal messages.
func NewCustomWriter(out, err io.Writer, debug bool) *StandardWriter {
	return &StandardWriter{
		out:    out,
		logger: NewLogger(err, debug),
		exit:   os.Exit,
	}
}

// NewLogger returns the logger used for diagnostics on err.
func NewLogger(err io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	return log.NewWithOptions(err, log.Options{
		Prefix: "dockline",
		Level:  level,
	})
}

// Logger exposes the logger behind the diagnostic methods.
func (w *StandardWriter) Logger() *log.Logger {
	return w.logger
}

// Print writes a message to the output stream without adding a newline.
func (w *StandardWriter) Print(v ...interface{}) {
	fmt.Fprint(w.out, v...)
}

// Printf writes a formatted message to the output stream.
func (w *StandardWriter) Printf(format string, v ...interface{}) {
	fmt.Fprintf(w.out, format, v...)
}

// Println writes a message with a newline to the output stream.
func (w *StandardWriter) Println(v ...interface{}) {
	fmt.Fprintln(w.out, v...)
}

func (w *StandardWriter) Debugf(format string, v ...interface{}) {
	w.logger.Debugf(format, v...)
}

func (w *StandardWriter) Warning(v ...interface{}) {
	w.logger.Warn(fmt.Sprint(v...))
}

func (w *StandardWriter) Warningf(format string, v ...interface{}) {
	w.logger.Warnf(format, v...)
}

// Fatal logs an error message and exits the program with status 1.
func (w *StandardWriter) Fatal(v ...interface{}) {
	w.logger.Error(fmt.Sprint(v...))
	w.exit(1)
}

// Fatalf logs a formatted error message and exits the program with status 1.
func (w *StandardWriter) Fatalf(format string, v ...interface{}) {
	w.logger.Errorf(format, v...)
	w.exit(1)
}

// GetWriter returns the underlying io.Writer for direct writing to the output stream.
func (w *StandardWriter) GetWriter() io.Writer {
	return w.out
}
