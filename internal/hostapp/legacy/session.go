// Package legacy holds types superseded by hostapp but still
// loaded by older hosts.
package legacy

import "github.com/miruken-go/reflected/catalog"

// Session predates hostapp.Session.
type Session struct {
	id int
}

func (s *Session) ID() int {
	return s.id
}

// Module returns the catalog of the legacy types.
func Module() *catalog.Module {
	return catalog.NewModule("legacy", catalog.TypeOf[Session]())
}
