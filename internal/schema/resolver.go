package schema

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Binding is the resolved table namespace: the schema/owner prefix, the users
// table's primary-key column, and the fully-qualified table names derived from
// them. It is computed once at startup and injected into the repositories, so
// a schema change requires a process restart.
type Binding struct {
	Schema  string
	UsersPK string

	Users       string
	EmailTokens string
	Locations   string
	ProduceLogs string
}

// pkCandidates is the fallback preference list probed when no PRIMARY KEY
// constraint is found on the users table.
var pkCandidates = []string{"id", "user_id", "users_id"}

// DefaultBinding returns an unqualified binding with the conventional primary
// key. Tests inject this instead of resolving against a live catalog.
func DefaultBinding() Binding {
	return newBinding("", "id")
}

func newBinding(schemaName, pk string) Binding {
	return Binding{
		Schema:      schemaName,
		UsersPK:     pk,
		Users:       qualify(schemaName, "users"),
		EmailTokens: qualify(schemaName, "email_tokens"),
		Locations:   qualify(schemaName, "locations"),
		ProduceLogs: qualify(schemaName, "produce_logs"),
	}
}

func qualify(schemaName, table string) string {
	if schemaName == "" {
		return table
	}
	return schemaName + "." + table
}

// Resolver discovers the Binding from the store's catalog metadata. The first
// successful resolution is memoized; a failed resolution caches nothing.
type Resolver struct {
	configured string
	cached     *Binding
}

// NewResolver creates a Resolver. A non-empty configured schema name is used
// verbatim (upper-cased) and skips the session-context lookup.
func NewResolver(configuredSchema string) *Resolver {
	return &Resolver{configured: configuredSchema}
}

// Resolve determines the schema prefix and users primary-key column.
func (r *Resolver) Resolve(db *gorm.DB) (Binding, error) {
	if r.cached != nil {
		return *r.cached, nil
	}

	schemaName := strings.ToUpper(r.configured)
	if schemaName == "" {
		if err := db.Raw("SELECT current_schema()").Scan(&schemaName).Error; err != nil {
			return Binding{}, fmt.Errorf("failed to resolve current schema: %w", err)
		}
	}

	pk, err := r.resolveUsersPK(db, schemaName)
	if err != nil {
		return Binding{}, err
	}

	b := newBinding(schemaName, pk)
	r.cached = &b
	return b, nil
}

// resolveUsersPK reads the PRIMARY KEY constraint on the users table scoped to
// the resolved schema, falling back to probing for conventionally named
// columns, then to "id".
func (r *Resolver) resolveUsersPK(db *gorm.DB, schemaName string) (string, error) {
	var pk string
	err := db.Raw(`
		SELECT kcu.column_name
		  FROM information_schema.table_constraints tc
		  JOIN information_schema.key_column_usage kcu
		    ON tc.constraint_name = kcu.constraint_name
		   AND tc.table_schema = kcu.table_schema
		   AND tc.table_name = kcu.table_name
		 WHERE tc.constraint_type = 'PRIMARY KEY'
		   AND tc.table_name = 'users'
		   AND tc.table_schema = ?`, schemaName).Scan(&pk).Error
	if err != nil {
		return "", fmt.Errorf("failed to query primary key constraint: %w", err)
	}
	if pk != "" {
		return pk, nil
	}

	var cols []string
	err = db.Raw(`
		SELECT column_name
		  FROM information_schema.columns
		 WHERE table_schema = ?
		   AND table_name = 'users'
		   AND column_name IN ?`, schemaName, pkCandidates).Scan(&cols).Error
	if err != nil {
		return "", fmt.Errorf("failed to probe primary key columns: %w", err)
	}
	return pickPreferred(cols), nil
}

// pickPreferred returns the first candidate present in cols, or "id" when none
// match.
func pickPreferred(cols []string) string {
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[strings.ToLower(c)] = true
	}
	for _, candidate := range pkCandidates {
		if present[candidate] {
			return candidate
		}
	}
	return "id"
}
