package audit

const (
	tableSchema = `
		CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			event TEXT NOT NULL,
			policy TEXT,
			agent_id TEXT,
			skill_id TEXT,
			purpose TEXT,
			token_id TEXT,
			credential_name TEXT,
			scope TEXT,
			context TEXT,
			outcome TEXT,
			approval TEXT,
			details TEXT
		)`

	indexEvent = `
		CREATE INDEX IF NOT EXISTS idx_audit_event ON audit_log(event)`

	indexTimestamp = `
		CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_log(timestamp DESC)`

	indexAgentID = `
		CREATE INDEX IF NOT EXISTS idx_audit_agent_id ON audit_log(agent_id)`

	indexPolicy = `
		CREATE INDEX IF NOT EXISTS idx_audit_policy ON audit_log(policy)`
)

// audit_log is append-only by convention, not by schema constraint:
// nothing in this package ever issues UPDATE or DELETE against it.
func schemaStatements() []string {
	return []string{
		tableSchema,
		indexEvent,
		indexTimestamp,
		indexAgentID,
		indexPolicy,
	}
}
