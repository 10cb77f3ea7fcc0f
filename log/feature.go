// Package log wires a logr.Logger into the binding pass.
package log

import (
	"github.com/go-logr/logr"
	"github.com/miruken-go/reflected"
)

// Installer configures logging of the binding pass.
type Installer struct {
	root      logr.Logger
	verbosity int
}

func (v *Installer) SetVerbosity(verbosity int) {
	v.verbosity = verbosity
}

func (v *Installer) Install(setup *reflected.SetupBuilder) error {
	if setup.CanInstall(&featureTag) {
		setup.Logger(v.root).
			  Options(reflected.Options{Verbosity: v.verbosity})
	}
	return nil
}

// Verbosity sets the level the binding pass logs at.
// Successful bindings are logged one level higher.
func Verbosity(verbosity int) func(installer *Installer) {
	return func(installer *Installer) {
		installer.SetVerbosity(verbosity)
	}
}

// Feature creates and configures logging support.
func Feature(
	rootLogger logr.Logger,
	config     ...func(installer *Installer),
) reflected.Feature {
	installer := &Installer{root: rootLogger}
	for _, configure := range config {
		if configure != nil {
			configure(installer)
		}
	}
	return installer
}

var featureTag byte
