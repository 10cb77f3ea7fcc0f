package reflected

import (
	"github.com/miruken-go/reflected/catalog"
	"github.com/miruken-go/reflected/internal"
	"github.com/miruken-go/reflected/internal/slices"
)

type (
	// Resolver finds the host members Descriptors refer to.
	// Resolution is side-effect free and reports missing or
	// ambiguous members as a Status rather than failing.
	Resolver struct {
		modules   []*catalog.Module
		overloads OverloadPolicy
	}

	// Resolution is the outcome of resolving a Descriptor.
	Resolution struct {
		Member     *catalog.Member
		Status     Status
		Err        error
		Candidates int
	}
)

// NewResolver creates a Resolver over the types in modules.
func NewResolver(
	overloads OverloadPolicy,
	modules   ...*catalog.Module,
) *Resolver {
	for _, m := range modules {
		if m == nil {
			panic("module cannot be nil")
		}
	}
	if overloads == "" {
		overloads = FirstMatch
	}
	return &Resolver{modules: modules, overloads: overloads}
}

func (r *Resolver) Modules() []*catalog.Module {
	return r.modules
}

// Resolve locates the member described by d.
func (r *Resolver) Resolve(d *Descriptor) Resolution {
	types := r.Types(d)
	switch len(types) {
	case 0:
		return Resolution{Status: NotFound, Err: &NotFoundError{
			Binding: d.Identity(),
			Target:  d.Target(),
		}}
	case 1:
	default:
		return Resolution{Status: AmbiguousOverload, Candidates: len(types), Err: &AmbiguousOverloadError{
			Binding:    d.Identity(),
			Target:     d.Target(),
			Candidates: slices.Map[*catalog.Type, string](types, (*catalog.Type).FullName),
		}}
	}

	typ := types[0]
	members := typ.Lookup(d.Kind, d.Member)
	if len(members) == 0 {
		return Resolution{Status: NotFound, Err: &NotFoundError{
			Binding: d.Identity(),
			Target:  typ.FullName(),
			Kind:    d.Kind,
			Member:  d.Member,
		}}
	}

	candidates := slices.Filter(members, d.Signature.Accepts)
	if len(candidates) == 0 {
		return Resolution{Status: SignatureMismatch, Candidates: len(members), Err: &SignatureMismatchError{
			Binding: d.Identity(),
			Member:  members[0],
			Reason:  "does not accept signature " + d.Signature.String(),
		}}
	}
	if len(candidates) > 1 && r.overloads == StrictOverloads {
		return Resolution{Status: AmbiguousOverload, Candidates: len(candidates), Err: &AmbiguousOverloadError{
			Binding:    d.Identity(),
			Target:     typ.FullName() + "." + d.Member,
			Candidates: slices.Map[*catalog.Member, string](candidates, (*catalog.Member).String),
		}}
	}

	member := candidates[0]
	if member.Static() != d.Static {
		reason := "is not static"
		if member.Static() {
			reason = "is static"
		}
		return Resolution{Member: member, Status: SignatureMismatch, Candidates: len(candidates), Err: &SignatureMismatchError{
			Binding: d.Identity(),
			Member:  member,
			Reason:  reason,
		}}
	}
	return Resolution{Member: member, Status: Resolved, Candidates: len(candidates)}
}

// Types returns the distinct host types matching the target of d.
func (r *Resolver) Types(d *Descriptor) []*catalog.Type {
	var found []*catalog.Type
	for _, module := range r.modules {
		for _, typ := range module.Types() {
			var match bool
			if ref := d.TypeRef; ref != nil {
				match = typ.Reflect() == internal.Indirect(ref)
			} else {
				match = typ.Matches(d.Type)
			}
			if match && !slices.ContainsFunc(found, func(t *catalog.Type) bool {
				return t.Reflect() == typ.Reflect()
			}) {
				found = append(found, typ)
			}
		}
	}
	return found
}
