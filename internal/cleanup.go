package internal

import (
	"sync"

	"github.com/charmbracelet/log"
)

// CleanupManager tracks resources and ensures ordered cleanup in LIFO order.
type CleanupManager struct {
	mu     sync.Mutex
	funcs  []cleanupFunc
	logger *log.Logger
}

type cleanupFunc struct {
	name string
	fn   func() error
}

// NewCleanupManager creates a new cleanup manager reporting failures to
// logger. A nil logger uses the package default.
func NewCleanupManager(logger *log.Logger) *CleanupManager {
	if logger == nil {
		logger = log.Default()
	}
	return &CleanupManager{logger: logger}
}

// Add registers a cleanup function. Functions are executed in LIFO order
// (last added, first executed) so a container is removed before the network
// it was attached to.
func (m *CleanupManager) Add(name string, fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append([]cleanupFunc{{name, fn}}, m.funcs...)
}

// Execute runs all cleanup functions in reverse order (LIFO), logging any errors.
// This method always completes all cleanup operations, even if some fail.
// Each function runs at most once.
func (m *CleanupManager) Execute() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, cleanup := range m.funcs {
		m.logger.Debug("cleaning up", "resource", cleanup.name)
		if err := cleanup.fn(); err != nil {
			m.logger.Error("cleanup failed", "resource", cleanup.name, "err", err)
		}
	}
	m.funcs = nil
}
