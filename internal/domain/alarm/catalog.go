package alarm

import (
	"errors"
	"fmt"
)

var (
	errEmptyCatalog  = errors.New("catalog has no alarms")
	errSparseCatalog = errors.New("alarm ids must equal their catalog position")
	errEmptyName     = errors.New("alarm name is empty")
	errEmptyMessage  = errors.New("alarm message is empty")
	errDuplicateName = errors.New("duplicate alarm name")
	errBadMuteLimit  = errors.New("mute limit must be non-negative or Unlimited")
)

// Catalog is the read-only, priority-ordered table of alarm definitions.
type Catalog struct {
	defs   []Definition
	byName map[string]ID
}

// NewCatalog validates defs and builds a catalog from them. The slice order
// is the priority order: defs[0] always wins over the others.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, errEmptyCatalog
	}

	c := &Catalog{
		defs:   make([]Definition, len(defs)),
		byName: make(map[string]ID, len(defs)),
	}

	for i, def := range defs {
		switch {
		case def.ID != ID(i):
			return nil, fmt.Errorf("%w: %q has id %d at position %d", errSparseCatalog, def.Name, def.ID, i)
		case def.Name == "":
			return nil, fmt.Errorf("alarm %d: %w", i, errEmptyName)
		case def.Message == "":
			return nil, fmt.Errorf("alarm %q: %w", def.Name, errEmptyMessage)
		case def.MuteLimit < Unlimited:
			return nil, fmt.Errorf("alarm %q: %w: %d", def.Name, errBadMuteLimit, def.MuteLimit)
		}

		if _, ok := c.byName[def.Name]; ok {
			return nil, fmt.Errorf("%w: %q", errDuplicateName, def.Name)
		}

		if def.Actions == nil {
			def.Actions = NoActions{}
		}

		c.defs[i] = def
		c.byName[def.Name] = def.ID
	}

	return c, nil
}

// Len returns the number of alarm kinds.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// Valid reports whether id is inside the catalog.
func (c *Catalog) Valid(id ID) bool {
	return id >= 0 && int(id) < len(c.defs)
}

// Definition returns the definition of id.
func (c *Catalog) Definition(id ID) (Definition, error) {
	if !c.Valid(id) {
		return Definition{}, InvalidIDError(id, len(c.defs))
	}

	return c.defs[id], nil
}

// Lookup resolves an alarm by its machine name.
func (c *Catalog) Lookup(name string) (Definition, bool) {
	id, ok := c.byName[name]
	if !ok {
		return Definition{}, false
	}

	return c.defs[id], true
}

// Resolve is Lookup returning an error for unknown names.
func (c *Catalog) Resolve(name string) (ID, error) {
	def, ok := c.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlarm, name)
	}

	return def.ID, nil
}

// Definitions returns a copy of all definitions in priority order.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)

	return out
}
