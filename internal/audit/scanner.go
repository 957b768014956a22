package audit

import (
	"database/sql"
	"fmt"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	var event string
	var policy, agentID, skillID, purpose, tokenID, credentialName, scope, ctxField, outcome, approval, details sql.NullString

	if err := rows.Scan(&e.ID, &e.Timestamp, &event, &policy, &agentID, &skillID, &purpose, &tokenID, &credentialName, &scope, &ctxField, &outcome, &approval, &details); err != nil {
		return Entry{}, fmt.Errorf("scan row: %w", err)
	}

	e.Event = Event(event)
	e.Policy = policy.String
	e.AgentID = agentID.String
	e.SkillID = skillID.String
	e.Purpose = purpose.String
	e.TokenID = tokenID.String
	e.CredentialName = credentialName.String
	e.Scope = scope.String
	e.Context = ctxField.String
	e.Outcome = outcome.String
	e.Approval = approval.String
	e.Details = details.String

	return e, nil
}
