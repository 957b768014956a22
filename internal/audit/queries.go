package audit

const (
	queryInsertEntry = `
		INSERT INTO audit_log
			(timestamp, event, policy, agent_id, skill_id, purpose, token_id, credential_name, scope, context, outcome, approval, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	querySelectColumns = `
		SELECT id, timestamp, event, policy, agent_id, skill_id, purpose, token_id, credential_name, scope, context, outcome, approval, details
		FROM audit_log`

	querySelectAmountDetails = `
		SELECT details FROM audit_log
		WHERE event = ? AND credential_name = ? AND timestamp LIKE ?`
)
