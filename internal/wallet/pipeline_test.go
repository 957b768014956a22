package wallet

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dagbolade/checkout-wallet/internal/audit"
	"github.com/dagbolade/checkout-wallet/internal/policy"
	"github.com/dagbolade/checkout-wallet/internal/token"
	"github.com/dagbolade/checkout-wallet/internal/vault"
)

const stripeChargeDocument = `
version: "1"
policies:
  - name: stripe-charge
    credential: stripe-key
    grant_to:
      agent_id: test-agent
    actions: [charge]
    budget:
      max_per_transaction: 100
      max_per_month: 500
    approval_threshold: 75
    ttl: 60
`

func newTestPipeline(t *testing.T, policyDoc string) (*Pipeline, audit.Store) {
	t.Helper()

	v, err := vault.Open(filepath.Join(t.TempDir(), "wallet.db"))
	if err != nil {
		t.Fatalf("vault.Open: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	if err := v.Initialize("integration-test-pass"); err != nil {
		t.Fatalf("vault.Initialize: %v", err)
	}
	if _, err := v.Add("stripe-key", vault.KindAPIKey, []byte("test-credential-value-abc123"), nil); err != nil {
		t.Fatalf("vault.Add: %v", err)
	}

	doc, err := policy.LoadFromText([]byte(policyDoc))
	if err != nil {
		t.Fatalf("policy.LoadFromText: %v", err)
	}
	provider := NewStaticPolicyProvider(doc)

	auditStore, err := audit.NewSQLiteStore(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("audit.NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { auditStore.Close() })

	pipeline := New(v, provider, auditStore, token.New())
	return pipeline, auditStore
}

func floatPtr(v float64) *float64 { return &v }

func TestScenarioHappyPath(t *testing.T) {
	pipeline, _ := newTestPipeline(t, stripeChargeDocument)
	ctx := context.Background()

	resp, err := pipeline.RequestCredential(ctx, CredentialRequest{
		CredentialName: "stripe-key",
		AgentID:        "test-agent",
		Amount:         floatPtr(25),
		Action:         "charge",
		Purpose:        "charge customer",
	})
	if err != nil {
		t.Fatalf("RequestCredential: %v", err)
	}
	if resp.Status != StatusGranted {
		t.Fatalf("Status = %v, want granted (%s)", resp.Status, resp.Reason)
	}
	if resp.CredentialValue != "test-credential-value-abc123" {
		t.Fatalf("CredentialValue = %q, want the seeded value", resp.CredentialValue)
	}
	if resp.TokenID == "" {
		t.Fatal("expected a non-empty token id")
	}
}

func TestScenarioUnauthorizedAgent(t *testing.T) {
	pipeline, _ := newTestPipeline(t, stripeChargeDocument)
	ctx := context.Background()

	resp, err := pipeline.RequestCredential(ctx, CredentialRequest{
		CredentialName: "stripe-key",
		AgentID:        "unauthorized-agent",
		Amount:         floatPtr(25),
		Action:         "charge",
		Purpose:        "charge customer",
	})
	if err != nil {
		t.Fatalf("RequestCredential: %v", err)
	}
	if resp.Status != StatusDenied || !strings.Contains(resp.Reason, "not granted") {
		t.Fatalf("got %+v, want denied mentioning 'not granted'", resp)
	}
}

func TestScenarioApprovalThreshold(t *testing.T) {
	pipeline, _ := newTestPipeline(t, stripeChargeDocument)
	ctx := context.Background()

	resp, err := pipeline.RequestCredential(ctx, CredentialRequest{
		CredentialName: "stripe-key",
		AgentID:        "test-agent",
		Amount:         floatPtr(80),
		Action:         "charge",
		Purpose:        "charge customer",
	})
	if err != nil {
		t.Fatalf("RequestCredential: %v", err)
	}
	if resp.Status != StatusRequireApproval || !strings.Contains(resp.Reason, "approval threshold") {
		t.Fatalf("got %+v, want require_approval mentioning 'approval threshold'", resp)
	}
}

func TestScenarioPerTransactionCap(t *testing.T) {
	pipeline, _ := newTestPipeline(t, stripeChargeDocument)
	ctx := context.Background()

	resp, err := pipeline.RequestCredential(ctx, CredentialRequest{
		CredentialName: "stripe-key",
		AgentID:        "test-agent",
		Amount:         floatPtr(150),
		Action:         "charge",
		Purpose:        "charge customer",
	})
	if err != nil {
		t.Fatalf("RequestCredential: %v", err)
	}
	if resp.Status != StatusDenied || !strings.Contains(resp.Reason, "max per transaction") {
		t.Fatalf("got %+v, want denied mentioning 'max per transaction'", resp)
	}
}

func TestScenarioMonthlyCap(t *testing.T) {
	pipeline, auditStore := newTestPipeline(t, stripeChargeDocument)
	ctx := context.Background()

	month := time.Now().UTC().Format("2006-01")
	auditStore.Log(ctx, audit.Entry{
		Event: audit.EventCredentialUsed, CredentialName: "stripe-key",
		Timestamp: month + "-01T00:00:00.000Z", Details: `{"amount":760,"currency":"USD"}`,
	})
	auditStore.Log(ctx, audit.Entry{
		Event: audit.EventCredentialUsed, CredentialName: "stripe-key",
		Timestamp: month + "-15T00:00:00.000Z", Details: `{"amount":200,"currency":"USD"}`,
	})

	resp, err := pipeline.RequestCredential(ctx, CredentialRequest{
		CredentialName: "stripe-key",
		AgentID:        "test-agent",
		Amount:         floatPtr(50),
		Action:         "charge",
		Purpose:        "charge customer",
	})
	if err != nil {
		t.Fatalf("RequestCredential: %v", err)
	}
	if resp.Status != StatusDenied || !strings.Contains(resp.Reason, "monthly budget") {
		t.Fatalf("got %+v, want denied mentioning 'monthly budget'", resp)
	}
}

func TestScenarioCondition(t *testing.T) {
	const doc = `
version: "1"
policies:
  - name: deploy-only
    credential: stripe-key
    grant_to:
      agent_id: test-agent
    condition: 'purpose.contains("deploy")'
`
	pipeline, _ := newTestPipeline(t, doc)
	ctx := context.Background()

	allowed, err := pipeline.RequestCredential(ctx, CredentialRequest{
		CredentialName: "stripe-key",
		AgentID:        "test-agent",
		Purpose:        "deploy to production",
	})
	if err != nil {
		t.Fatalf("RequestCredential: %v", err)
	}
	if allowed.Status != StatusGranted {
		t.Fatalf("got %+v, want granted", allowed)
	}

	denied, err := pipeline.RequestCredential(ctx, CredentialRequest{
		CredentialName: "stripe-key",
		AgentID:        "test-agent",
		Purpose:        "random task",
	})
	if err != nil {
		t.Fatalf("RequestCredential: %v", err)
	}
	if denied.Status != StatusDenied {
		t.Fatalf("got %+v, want denied", denied)
	}
}

func TestScenarioTokenExpiry(t *testing.T) {
	const doc = `
version: "1"
policies:
  - name: instant-expiry
    credential: stripe-key
    grant_to:
      agent_id: test-agent
    ttl: 1
`
	pipeline, _ := newTestPipeline(t, doc)
	ctx := context.Background()

	// Issue directly through the token store with ttl=0 to exercise
	// the immediate-expiry boundary the pipeline's report_usage must
	// also honor.
	tok := pipeline.tokens.Issue(token.IssueParams{CredentialName: "stripe-key", TTLSeconds: 0})

	if _, ok := pipeline.tokens.Get(tok.TokenID); ok {
		t.Fatal("expected ttl=0 token to be unavailable immediately")
	}

	usage, err := pipeline.ReportUsage(ctx, tok.TokenID, nil, "", "", "")
	if err != nil {
		t.Fatalf("ReportUsage: %v", err)
	}
	if usage.Status != StatusError {
		t.Fatalf("got %+v, want status error for expired token", usage)
	}
}

func TestListAvailablePoliciesNeverLeaksInternalFields(t *testing.T) {
	const doc = `
version: "1"
policies:
  - name: stripe-charge
    credential: stripe-key
    grant_to:
      agent_id: test-agent
    deny: [banned]
    condition: 'purpose.contains("x")'
    scope:
      env: prod
`
	pipeline, _ := newTestPipeline(t, doc)
	summaries := pipeline.ListAvailablePolicies("test-agent", nil)
	if len(summaries) != 1 {
		t.Fatalf("len(summaries) = %d, want 1", len(summaries))
	}
	if summaries[0].Name != "stripe-charge" || summaries[0].Credential != "stripe-key" {
		t.Fatalf("unexpected summary: %+v", summaries[0])
	}
}

func TestCheckBudgetUnlimitedWhenNoMaxPerMonth(t *testing.T) {
	const doc = `
version: "1"
policies:
  - name: unlimited-policy
    credential: stripe-key
    grant_to:
      agent_id: test-agent
`
	pipeline, _ := newTestPipeline(t, doc)
	status, err := pipeline.CheckBudget(context.Background(), "stripe-key", "")
	if err != nil {
		t.Fatalf("CheckBudget: %v", err)
	}
	if status.Budget != "unlimited" {
		t.Fatalf("got %+v, want budget=unlimited", status)
	}
}

func TestCheckBudgetComputesRemaining(t *testing.T) {
	pipeline, auditStore := newTestPipeline(t, stripeChargeDocument)
	ctx := context.Background()

	auditStore.Log(ctx, audit.Entry{
		Event: audit.EventCredentialUsed, CredentialName: "stripe-key",
		Details: `{"amount":300,"currency":"USD"}`,
	})

	status, err := pipeline.CheckBudget(ctx, "stripe-key", "")
	if err != nil {
		t.Fatalf("CheckBudget: %v", err)
	}
	if status.Remaining != 200 {
		t.Fatalf("Remaining = %v, want 200", status.Remaining)
	}
}

func TestCheckBudgetMissingCredentialIsError(t *testing.T) {
	pipeline, _ := newTestPipeline(t, stripeChargeDocument)
	if _, err := pipeline.CheckBudget(context.Background(), "no-such-key", ""); err == nil {
		t.Fatal("expected an error when no policy matches the credential")
	}
}

func TestReportUsageRecordsAndMarksUsed(t *testing.T) {
	pipeline, auditStore := newTestPipeline(t, stripeChargeDocument)
	ctx := context.Background()

	resp, err := pipeline.RequestCredential(ctx, CredentialRequest{
		CredentialName: "stripe-key", AgentID: "test-agent", Amount: floatPtr(10), Action: "charge", Purpose: "x",
	})
	if err != nil {
		t.Fatalf("RequestCredential: %v", err)
	}

	usage, err := pipeline.ReportUsage(ctx, resp.TokenID, floatPtr(10), "USD", "success", "test purchase")
	if err != nil {
		t.Fatalf("ReportUsage: %v", err)
	}
	if usage.Status != "recorded" {
		t.Fatalf("Status = %v, want recorded", usage.Status)
	}

	entries, err := auditStore.Query(ctx, audit.QueryFilters{Event: audit.EventCredentialUsed})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if amount, ok := audit.ParseAmountDetails(entries[0].Details); !ok || amount != 10 {
		t.Fatalf("ParseAmountDetails = (%v, %v), want (10, true)", amount, ok)
	}
}
