package hostbridge

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sparroh/disablefloatingtext/internal/dispatcher"
)

// Call routes one host call through the dispatcher and returns the reply text.
// RVExtension calls may carry arguments after a '|' in the command string.
func Call(command string, args []string) string {
	d := GetDispatcher()
	if d == nil {
		return formatDispatchResponse(command, nil, fmt.Errorf("extension not initialized"))
	}

	if !d.HasHandler(command) {
		name, rest, found := strings.Cut(command, "|")
		if !found || !d.HasHandler(name) {
			return formatDispatchResponse(command, nil, fmt.Errorf("no handler registered for %s", command))
		}
		command = name
		if args == nil {
			args = strings.Split(rest, "|")
		}
	}

	result, err := d.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	})
	return formatDispatchResponse(command, result, err)
}

// formatDispatchResponse formats the dispatcher result as a JSON array for the host.
func formatDispatchResponse(command string, result any, err error) string {
	if err != nil {
		return fmt.Sprintf(`["error", %s]`, quote(err.Error()))
	}
	if result == nil {
		return `["ok"]`
	}
	b, mErr := json.Marshal(result)
	if mErr != nil {
		return fmt.Sprintf(`["error", %s]`, quote(fmt.Sprintf("encoding %s result: %v", command, mErr)))
	}
	return fmt.Sprintf(`["ok", %s]`, b)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
