package reflected

import (
	"encoding/json"
	"fmt"

	"github.com/Rican7/conjson"
	"github.com/Rican7/conjson/transform"
	"github.com/hashicorp/go-multierror"
	"github.com/miruken-go/reflected/internal/slices"
)

type (
	// Report summarizes a binding pass for the host to log.
	Report struct {
		Attempted int
		Succeeded int
		Failures  []Failure
	}

	// Failure records a binding that did not succeed.
	Failure struct {
		Binding  string
		Status   Status
		Optional bool
		Reason   string
		Err      error `json:"-"`
	}

	report Report
)

func (r *Report) Failed() int {
	return len(r.Failures)
}

// Err aggregates the failures or returns nil if there are none.
func (r *Report) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierror.Append(err, f.Err)
	}
	return err
}

// Fatal returns the failures of the required bindings.
// Optional bindings are never fatal.
func (r *Report) Fatal(required ...string) error {
	var err error
	for _, f := range r.Failures {
		if !f.Optional && slices.Contains(required, f.Binding) {
			err = multierror.Append(err, f.Err)
		}
	}
	return err
}

// Failure returns the recorded failure of binding, if any.
func (r *Report) Failure(binding string) (Failure, bool) {
	for _, f := range r.Failures {
		if f.Binding == binding {
			return f, true
		}
	}
	return Failure{}, false
}

func (r *Report) String() string {
	return fmt.Sprintf("%d of %d bindings succeeded, %d failed",
		r.Succeeded, r.Attempted, r.Failed())
}

// MarshalJSON encodes the report with camelcase keys.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(conjson.NewMarshaler((*report)(r),
		transform.OnlyForDirection(transform.Marshal, transform.CamelCaseKeys(false))))
}

func (r *Report) record(d *Descriptor, outcome Outcome) {
	r.Attempted++
	if outcome.Bound() {
		r.Succeeded++
		return
	}
	r.Failures = append(r.Failures, Failure{
		Binding:  d.Identity(),
		Status:   outcome.Status,
		Optional: d.Optional,
		Reason:   outcome.Err.Error(),
		Err:      outcome.Err,
	})
}
