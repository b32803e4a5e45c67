package hostbridge

import (
	"sync"

	"github.com/sparroh/disablefloatingtext/internal/dispatcher"
)

// configStruct is the central configuration used by this library.
// The host calls plain C symbols, so it lives at package level.
type configStruct struct {
	mu sync.RWMutex

	// rvExtensionVersion is the value that will be returned when the extension is first called by the host
	rvExtensionVersion string

	// dispatcher handles event routing
	dispatcher *dispatcher.Dispatcher
}

// Config defines how calls to this extension will be handled
var Config = &configStruct{rvExtensionVersion: "No version set"}

// SetVersion sets the version string that will be returned when the extension is first called by the host
func SetVersion(version string) {
	Config.mu.Lock()
	defer Config.mu.Unlock()
	Config.rvExtensionVersion = version
}

// Version returns the version string reported to the host.
func Version() string {
	Config.mu.RLock()
	defer Config.mu.RUnlock()
	return Config.rvExtensionVersion
}

// SetDispatcher sets the event dispatcher for handling commands
func SetDispatcher(d *dispatcher.Dispatcher) {
	Config.mu.Lock()
	defer Config.mu.Unlock()
	Config.dispatcher = d
}

// GetDispatcher returns the configured dispatcher, or nil if not set
func GetDispatcher() *dispatcher.Dispatcher {
	Config.mu.RLock()
	defer Config.mu.RUnlock()
	return Config.dispatcher
}
