package reflected

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"github.com/miruken-go/reflected/catalog"
)

type (
	// Manager owns the slots of every binding it discovers.
	// It resolves and synthesizes each binding once, recording
	// the outcome, and continues past bindings that fail.
	Manager struct {
		resolver    *Resolver
		synthesizer Synthesizer
		logger      logr.Logger
		options     Options
		lock        sync.RWMutex
		entries     map[*Descriptor]*entry
		identities  map[string]*Descriptor
		order       []*Descriptor
		categories  [shapeCount][]*Descriptor
	}

	// Outcome is the terminal result of processing a binding.
	Outcome struct {
		Status   Status
		Strategy Strategy
		Member   *catalog.Member
		Err      error
	}

	// Entry pairs a discovered binding with its outcome.
	Entry struct {
		Descriptor *Descriptor
		Processed  bool
		Outcome    Outcome
	}

	entry struct {
		processed bool
		outcome   Outcome
		callable  any
	}
)

// Bound reports whether the binding installed a callable.
func (o Outcome) Bound() bool {
	return o.Status == Resolved && o.Err == nil
}

func (o Outcome) String() string {
	if o.Bound() {
		return fmt.Sprintf("%v %v (%v)", o.Status, o.Member, o.Strategy)
	}
	return fmt.Sprintf("%v: %v", o.Status, o.Err)
}


// Manager

// NewManager creates a Manager binding to the types in modules.
func NewManager(
	options Options,
	logger  logr.Logger,
	modules ...*catalog.Module,
) *Manager {
	options = options.withDefaults()
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &Manager{
		resolver:   NewResolver(options.Overloads, modules...),
		logger:     logger.WithName("reflected").V(options.Verbosity),
		options:    options,
		entries:    make(map[*Descriptor]*entry),
		identities: make(map[string]*Descriptor),
	}
}

func (m *Manager) Options() Options {
	return m.options
}

func (m *Manager) Resolver() *Resolver {
	return m.resolver
}

// Discover registers the bindings of tables without processing them.
// Malformed bindings are programming errors and are all reported,
// leaving every binding in tables undiscovered.
func (m *Manager) Discover(tables ...*Table) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.discoverAll(tables)
}

// ProcessAll discovers the bindings of tables and processes every
// discovered binding. A failed binding does not stop the pass.
// An error is only returned for malformed bindings, in which case
// none of the bindings in tables are discovered or processed.
func (m *Manager) ProcessAll(tables ...*Table) (*Report, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if err := m.discoverAll(tables); err != nil {
		return nil, err
	}
	for _, d := range m.order {
		m.process(d, m.entries[d])
	}
	report := m.report()
	m.logger.Info("binding pass complete",
		"attempted", report.Attempted,
		"succeeded", report.Succeeded,
		"failed", report.Failed())
	return report, nil
}

// Process resolves and installs a single binding, discovering it
// first if needed. Processing is idempotent: the outcome recorded
// the first time is returned without resolving again.
// The binding must belong to a Table, otherwise it is malformed.
// Process panics if the binding is malformed.
func (m *Manager) Process(decl Declaration) bool {
	d := decl.Descriptor()
	m.lock.Lock()
	defer m.lock.Unlock()
	e, ok := m.entries[d]
	if !ok {
		if err := m.discover(d); err != nil {
			panic(err)
		}
		e = m.entries[d]
	}
	return m.process(d, e).Bound()
}

// Outcome returns the recorded outcome of a processed binding.
func (m *Manager) Outcome(decl Declaration) (Outcome, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if e := m.entries[decl.Descriptor()]; e != nil && e.processed {
		return e.outcome, true
	}
	return Outcome{}, false
}

// Bound reports whether a callable was installed for decl.
func (m *Manager) Bound(decl Declaration) bool {
	_, ok := m.callable(decl.Descriptor())
	return ok
}

// Slot returns the callable installed for decl without its type.
// Typed access is through the Slot returned when declaring it.
func (m *Manager) Slot(decl Declaration) (any, bool) {
	return m.callable(decl.Descriptor())
}

// Descriptors returns every discovered binding in discovery order.
func (m *Manager) Descriptors() []*Descriptor {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return append([]*Descriptor(nil), m.order...)
}

func (m *Manager) Getters() []Entry {
	return m.category(GetterShape)
}

func (m *Manager) Setters() []Entry {
	return m.category(SetterShape)
}

func (m *Manager) Invokers() []Entry {
	return m.category(InvokerShape)
}

func (m *Manager) MemberInfo() []Entry {
	return m.category(MemberInfoShape)
}

func (m *Manager) Events() []Entry {
	return m.category(EventShape)
}

// Report summarizes every binding processed so far.
func (m *Manager) Report() *Report {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.report()
}

func (m *Manager) category(shape Shape) []Entry {
	m.lock.RLock()
	defer m.lock.RUnlock()
	descriptors := m.categories[shape]
	entries := make([]Entry, len(descriptors))
	for i, d := range descriptors {
		e := m.entries[d]
		entries[i] = Entry{d, e.processed, e.outcome}
	}
	return entries
}

func (m *Manager) callable(d *Descriptor) (any, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if e := m.entries[d]; e != nil && e.callable != nil {
		return e.callable, true
	}
	return nil, false
}

func (m *Manager) discoverAll(tables []*Table) (err error) {
	var pending []*Descriptor
	batch := make(map[string]*Descriptor)
	for _, table := range tables {
		if table == nil {
			panic("table cannot be nil")
		}
		for _, d := range table.Descriptors() {
			if _, ok := m.entries[d]; ok || batch[d.Identity()] == d {
				continue
			}
			if de := m.check(d, batch); de != nil {
				err = multierror.Append(err, de)
				continue
			}
			batch[d.Identity()] = d
			pending = append(pending, d)
		}
	}
	if err != nil {
		return err
	}
	for _, d := range pending {
		m.register(d)
	}
	return nil
}

func (m *Manager) discover(d *Descriptor) error {
	if err := m.check(d, nil); err != nil {
		return err
	}
	m.register(d)
	return nil
}

// check validates d and rejects identities already taken by the
// manager or by another descriptor in batch.
func (m *Manager) check(d *Descriptor, batch map[string]*Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	id := d.Identity()
	if other, dup := m.identities[id]; dup && other != d {
		return &DescriptorError{d, errors.New("binding already declared")}
	}
	if other, dup := batch[id]; dup && other != d {
		return &DescriptorError{d, errors.New("binding already declared")}
	}
	return nil
}

func (m *Manager) register(d *Descriptor) {
	m.entries[d] = &entry{}
	m.identities[d.Identity()] = d
	m.order = append(m.order, d)
	m.categories[d.Shape] = append(m.categories[d.Shape], d)
}

func (m *Manager) process(d *Descriptor, e *entry) Outcome {
	if e.processed {
		return e.outcome
	}
	var outcome Outcome
	if res := m.resolver.Resolve(d); res.Status != Resolved {
		outcome = Outcome{Status: res.Status, Member: res.Member, Err: res.Err}
	} else if c, err := m.synthesizer.Synthesize(res.Member, d); err != nil {
		outcome = Outcome{Status: SynthesisFailed, Member: res.Member, Err: err}
	} else {
		outcome = Outcome{Status: Resolved, Strategy: c.Strategy, Member: c.Member}
		e.callable = c.Value
	}
	e.processed, e.outcome = true, outcome
	m.log(d, outcome)
	return outcome
}

func (m *Manager) log(d *Descriptor, outcome Outcome) {
	switch outcome.Status {
	case Resolved:
		m.logger.V(1).Info("bound",
			"binding", d.Identity(),
			"member", outcome.Member.String(),
			"strategy", outcome.Strategy.String())
	case NotFound, AmbiguousOverload:
		m.logger.Info("binding unavailable",
			"binding", d.Identity(),
			"status", outcome.Status.String(),
			"optional", d.Optional,
			"reason", outcome.Err.Error())
	default:
		m.logger.Error(outcome.Err, "binding failed",
			"binding", d.Identity(),
			"status", outcome.Status.String(),
			"optional", d.Optional)
	}
}

func (m *Manager) report() *Report {
	report := &Report{}
	for _, d := range m.order {
		if e := m.entries[d]; e.processed {
			report.record(d, e.outcome)
		}
	}
	return report
}
