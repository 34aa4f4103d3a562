package alarm

// Status is the on/off state of one alarm kind.
type Status uint8

const (
	// StatusOff means the condition is not pending.
	StatusOff Status = iota
	// StatusOn means the condition was raised and not yet muted.
	StatusOn
)

// String returns a lower-case name of the status.
func (s Status) String() string {
	if s == StatusOn {
		return "on"
	}

	return "off"
}

// Runtime is the mutable state of one alarm kind.
type Runtime struct {
	Status    Status
	MuteCount int
}

// RuntimeTable stores the Runtime of every alarm of a catalog, indexed by ID.
// Callers pass ids already validated against the catalog.
type RuntimeTable struct {
	catalog *Catalog
	rows    []Runtime
}

// NewRuntimeTable allocates a zeroed table for catalog.
func NewRuntimeTable(catalog *Catalog) *RuntimeTable {
	return &RuntimeTable{
		catalog: catalog,
		rows:    make([]Runtime, catalog.Len()),
	}
}

// Len returns the number of rows.
func (t *RuntimeTable) Len() int {
	return len(t.rows)
}

// Get returns a copy of the runtime state of id.
func (t *RuntimeTable) Get(id ID) Runtime {
	return t.rows[id]
}

// SetStatus changes the status of id.
func (t *RuntimeTable) SetStatus(id ID, status Status) {
	t.rows[id].Status = status
}

// BumpMuteCount increments the mute count of id, saturating at its limit.
func (t *RuntimeTable) BumpMuteCount(id ID) {
	limit := t.catalog.defs[id].MuteLimit
	if limit != Unlimited && t.rows[id].MuteCount >= limit {
		return
	}

	t.rows[id].MuteCount++
}

// Reset turns id off and clears its mute count.
func (t *RuntimeTable) Reset(id ID) {
	t.rows[id] = Runtime{}
}
