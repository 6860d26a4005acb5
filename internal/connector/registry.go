package connector

import "fmt"

// Constructor builds a fresh Connector for one run.
type Constructor func() Connector

var registry = map[string]Constructor{}

// Register makes a telemetry provider selectable by name. Providers call
// this from init(); the CLI picks one via the VITALS_CONNECTOR setting.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get looks up the constructor registered under the provider name.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown connector provider: %s", name)
	}
	return ctor, nil
}

// Providers lists every registered provider name.
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
