package crprintf

import "sync"

const (
	maxVars     = 16
	maxVarName  = 31
	maxVarValue = 127
)

// variable is one {name, value, is_fmt} binding. isFmt is true iff value
// contains a printf conversion (a '%' not immediately followed by another
// '%').
type variable struct {
	name  string
	value string
	isFmt bool
}

// varTable is a bounded, append-only (per compilation) list of variable
// bindings. The process-global table is mutated only through SetVar; a
// per-compilation table is a snapshot-and-extend copy seeded from it.
type varTable struct {
	vars []variable
}

func (t *varTable) clone() varTable {
	out := varTable{vars: make([]variable, len(t.vars))}
	copy(out.vars, t.vars)
	return out
}

func (t *varTable) lookup(name string) (variable, bool) {
	for _, v := range t.vars {
		if v.name == name {
			return v, true
		}
	}
	return variable{}, false
}

// upsertGlobal adds a new binding or replaces the value of an existing
// one, enforcing the length and capacity limits. A full table drops the
// update even for an existing name, and an empty value is dropped too. ok
// is false (and the table unchanged) on any of these.
func (t *varTable) upsertGlobal(name, value string) bool {
	if len(t.vars) >= maxVars {
		return false
	}
	if len(name) == 0 || len(name) > maxVarName || len(value) == 0 || len(value) > maxVarValue {
		return false
	}
	isFmt := containsUnescapedPercent(value)
	for i := range t.vars {
		if t.vars[i].name == name {
			t.vars[i].value = value
			t.vars[i].isFmt = isFmt
			return true
		}
	}
	t.vars = append(t.vars, variable{name: name, value: value, isFmt: isFmt})
	return true
}

// appendLet appends a binding for a `let` directive without checking for
// an existing name: a repeated name in the same per-compilation table
// shadows nothing and is simply unreachable, since lookup returns the
// first match. Emptiness of value is the caller's concern (a quoted value
// may be empty, a bareword value may not); appendLet only enforces the
// length and capacity limits. ok is false on a violation.
func (t *varTable) appendLet(name, value string) bool {
	if len(name) == 0 || len(name) > maxVarName || len(value) > maxVarValue {
		return false
	}
	if len(t.vars) >= maxVars {
		return false
	}
	t.vars = append(t.vars, variable{name: name, value: value, isFmt: containsUnescapedPercent(value)})
	return true
}

func containsUnescapedPercent(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '%' {
			i++ // skip the escaped "%%" pair as a whole
			continue
		}
		return true
	}
	return false
}

// globalVars is the process-global variable table, mutated only by SetVar.
// The mutex only makes concurrent reads/writes of the table itself
// race-free; callers that compile from multiple goroutines must establish
// their own happens-before ordering around SetVar.
var (
	globalVarsMu sync.Mutex
	globalVars   varTable
)

// SetVar upserts a process-global variable referenced by {name}/<$name>
// markup in formats compiled after this call. It silently drops the update
// if name/value exceed the length limits or the table is already full.
func SetVar(name, value string) {
	globalVarsMu.Lock()
	defer globalVarsMu.Unlock()
	globalVars.upsertGlobal(name, value)
}

func snapshotGlobalVars() varTable {
	globalVarsMu.Lock()
	defer globalVarsMu.Unlock()
	return globalVars.clone()
}
