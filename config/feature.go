// Package config loads binding Options from a configuration Provider.
package config

import (
	"fmt"

	"github.com/miruken-go/reflected"
	"github.com/miruken-go/reflected/internal"
)

type (
	// Provider defines the api to allow configuration
	// providers to expose their configuration information.
	Provider interface {
		Unmarshal(path string, flat bool, output any) error
	}

	// Installer loads the binding Options.
	Installer struct {
		provider Provider
		path     string
		flat     bool
	}
)

// DefaultPath is the configuration path of the binding Options.
const DefaultPath = "reflected"

func (v *Installer) Install(setup *reflected.SetupBuilder) error {
	if setup.CanInstall(&featureTag) {
		var options reflected.Options
		if err := v.provider.Unmarshal(v.path, v.flat, &options); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if err := options.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		setup.Options(options)
	}
	return nil
}

// Path overrides the path the Options are loaded from.
// A flat path treats the keys below it as already flattened.
func Path(path string, flat bool) func(*Installer) {
	return func(installer *Installer) {
		installer.path = path
		installer.flat = flat
	}
}

// Feature creates and configures configuration support
// using the supplied configuration Provider.
func Feature(
	provider Provider,
	config   ...func(*Installer),
) reflected.Feature {
	if internal.IsNil(provider) {
		panic("provider cannot be nil")
	}
	installer := &Installer{provider: provider, path: DefaultPath}
	for _, configure := range config {
		if configure != nil {
			configure(installer)
		}
	}
	return installer
}

var featureTag byte
