package reflected

import (
	"container/list"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"github.com/miruken-go/reflected/catalog"
	"github.com/miruken-go/reflected/internal"
)

type (
	// Feature encapsulates custom setup.
	Feature interface {
		Install(setup *SetupBuilder) error
	}
	InstallFeature func(setup *SetupBuilder) error

	// SetupBuilder orchestrates the setup of a Manager.
	SetupBuilder struct {
		modules   []*catalog.Module
		tables    []*Table
		features  []Feature
		logger    logr.Logger
		options   Options
		tags      map[any]struct{}
		installed bool
		err       error
	}
)

func (f InstallFeature) Install(
	setup *SetupBuilder,
) error {
	return f(setup)
}

func (s *SetupBuilder) Modules(
	modules ...*catalog.Module,
) *SetupBuilder {
	s.modules = append(s.modules, modules...)
	return s
}

func (s *SetupBuilder) Tables(
	tables ...*Table,
) *SetupBuilder {
	s.tables = append(s.tables, tables...)
	return s
}

func (s *SetupBuilder) Logger(
	logger logr.Logger,
) *SetupBuilder {
	s.logger = logger
	return s
}

// Options merges options into any already set.
// Values set first take precedence and slices are appended.
func (s *SetupBuilder) Options(
	options Options,
) *SetupBuilder {
	MergeOptions(&options, &s.options)
	return s
}

func (s *SetupBuilder) CanInstall(tag any) bool {
	if tags := s.tags; tags == nil {
		s.tags = map[any]struct{}{tag: {}}
		return true
	} else if _, found := tags[tag]; !found {
		tags[tag] = struct{}{}
		return true
	}
	return false
}

// Manager installs the features and returns a Manager that has
// discovered, but not processed, the bindings of every table.
func (s *SetupBuilder) Manager() (*Manager, error) {
	if !s.installed {
		s.installed = true
		s.err = s.installGraph(s.features)
	}
	if s.err != nil {
		return nil, s.err
	}
	if err := s.options.Validate(); err != nil {
		return nil, err
	}
	m := NewManager(s.options, s.logger, s.modules...)
	if err := m.Discover(s.tables...); err != nil {
		return nil, err
	}
	return m, nil
}

// Bind runs the binding pass. The error reports setup problems,
// malformed bindings or required bindings that failed. The Report
// is returned whenever the pass ran.
func (s *SetupBuilder) Bind() (*Manager, *Report, error) {
	m, err := s.Manager()
	if err != nil {
		return nil, nil, err
	}
	report, err := m.ProcessAll()
	if err != nil {
		return m, nil, err
	}
	return m, report, report.Fatal(m.Options().Required...)
}

func (s *SetupBuilder) installGraph(
	features []Feature,
) (err error) {
	// traverse level-order so overrides can be applied in any order
	queue := list.New()
	for _, feature := range features {
		if !internal.IsNil(feature) {
			queue.PushBack(feature)
		}
	}
	for queue.Len() > 0 {
		front := queue.Front()
		queue.Remove(front)
		feature := front.Value.(Feature)
		if dependsOn, ok := feature.(interface {
			DependsOn() []Feature
		}); ok {
			for _, dep := range dependsOn.DependsOn() {
				if !internal.IsNil(dep) {
					queue.PushBack(dep)
				}
			}
		}
		if ie := feature.Install(s); ie != nil {
			err = multierror.Append(err, ie)
		}
	}
	return err
}

// Modules supplies the host modules to bind against.
func Modules(modules ...*catalog.Module) InstallFeature {
	return func(setup *SetupBuilder) error {
		setup.Modules(modules...)
		return nil
	}
}

// Tables supplies the bindings to process.
func Tables(tables ...*Table) InstallFeature {
	return func(setup *SetupBuilder) error {
		setup.Tables(tables...)
		return nil
	}
}

func WithOptions(options Options) InstallFeature {
	return func(setup *SetupBuilder) error {
		setup.Options(options)
		return nil
	}
}

// Setup begins the setup of a Manager from features.
func Setup(features ...Feature) *SetupBuilder {
	return &SetupBuilder{features: features}
}
