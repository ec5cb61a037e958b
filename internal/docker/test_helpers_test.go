package docker_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

type mockWriter struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func newMockWriter() *mockWriter {
	return &mockWriter{buf: &bytes.Buffer{}}
}

func (m *mockWriter) write(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf.WriteString(s)
}

func (m *mockWriter) Print(v ...interface{}) { m.write(fmt.Sprint(v...)) }
func (m *mockWriter) Printf(format string, v ...interface{}) {
	m.write(fmt.Sprintf(format, v...))
}
func (m *mockWriter) Println(v ...interface{}) { m.write(fmt.Sprintln(v...)) }
func (m *mockWriter) Debugf(format string, v ...interface{}) {
	m.write("Debug: " + fmt.Sprintf(format, v...) + "\n")
}
func (m *mockWriter) Warning(v ...interface{}) { m.write("Warning: " + fmt.Sprintln(v...)) }
func (m *mockWriter) Warningf(format string, v ...interface{}) {
	m.write("Warning: " + fmt.Sprintf(format, v...) + "\n")
}
func (m *mockWriter) Fatal(v ...interface{}) { m.write("Fatal: " + fmt.Sprintln(v...)) }
func (m *mockWriter) Fatalf(format string, v ...interface{}) {
	m.write("Fatal: " + fmt.Sprintf(format, v...) + "\n")
}
func (m *mockWriter) GetWriter() io.Writer { return m.buf }

func (m *mockWriter) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.String()
}

func (m *mockWriter) Contains(s string) bool {
	return strings.Contains(m.String(), s)
}

// failingSink rejects every write.
type failingSink struct{}

func (failingSink) Write([]byte) (int, error) { return 0, errSinkClosed }

var errSinkClosed = fmt.Errorf("sink closed")
