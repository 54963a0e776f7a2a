package e2e

import (
	"fmt"

	"github.com/marmos91/staticd/pkg/dispatch"
)

// TestConfig describes one way of running the server under test.
type TestConfig struct {
	Name         string
	Dispatcher   string
	Workers      int
	QueueSize    int
	ContainPaths bool
}

// String returns a string representation of the configuration
func (tc *TestConfig) String() string {
	mode := "uncontained"
	if tc.ContainPaths {
		mode = "contained"
	}
	if tc.QueueSize > 0 {
		return fmt.Sprintf("%s(%d)/%s", tc.Dispatcher, tc.QueueSize, mode)
	}
	return fmt.Sprintf("%s/%s", tc.Dispatcher, mode)
}

// AllConfigurations returns every dispatcher and containment combination the
// suite runs against.
func AllConfigurations() []*TestConfig {
	return []*TestConfig{
		{
			Name:       "inline",
			Dispatcher: dispatch.KindInline,
		},
		{
			Name:       "pooled",
			Dispatcher: dispatch.KindPooled,
			Workers:    4,
		},
		{
			Name:       "pooled-bounded",
			Dispatcher: dispatch.KindPooled,
			Workers:    2,
			QueueSize:  8,
		},
		{
			Name:         "pooled-contained",
			Dispatcher:   dispatch.KindPooled,
			Workers:      4,
			ContainPaths: true,
		},
	}
}

// GetConfigByName returns a specific configuration by name
func GetConfigByName(name string) *TestConfig {
	for _, config := range AllConfigurations() {
		if config.Name == name {
			return config
		}
	}
	return nil
}
