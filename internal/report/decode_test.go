package report

import (
	"errors"
	"testing"
)

func TestDecodeFullPayload(t *testing.T) {
	payload := `{
  "salaryTally": {"matches": true, "payslipNetPay": 4200.5, "monthlyBreakdown": [{"month": "Jan", "amount": 4200}, {"month": "Feb", "amount": 4300}], "remarks": "consistent"},
  "hiddenLoans": [{"date": "2024-01-03", "amount": 1500, "description": "DUITNOW TRF ABC", "probableLender": "ABC Capital", "searchVerification": "Not a licensed lender"}],
  "commitments": [{"description": "Car loan", "amount": 650, "frequency": "Monthly", "category": "loan"}],
  "atmChecks": [{"date": "2024-02-01", "description": "ATM WDL", "amount": 200}],
  "riskAssessment": {"gamblingTransactions": 2, "status": "Safe", "details": ["ok"], "hasDebitCardUsage": true},
  "governmentAid": {"detected": false, "isGovServant": true, "averageMonthlyAmount": 0, "remarks": ""},
  "conclusion": {"decision": "Approve", "suggestedAmount": "RM 5,000", "interestRate": "6%", "monthlyRepayment": "RM 450.00", "riskRewardRatio": "1:3", "explanation": "Stable salary."},
  "searchInsights": [{"transaction": "ABC", "companyInfo": "Unregistered", "riskLevel": "High", "sources": ["https://example.com"]}]
}`
	r, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !r.SalaryTally.Matches || r.SalaryTally.PayslipNetPay != 4200.5 {
		t.Fatalf("unexpected salary tally %+v", r.SalaryTally)
	}
	if len(r.SalaryTally.MonthlyBreakdown) != 2 || r.SalaryTally.MonthlyBreakdown[1].Month != "Feb" {
		t.Fatalf("unexpected breakdown %+v", r.SalaryTally.MonthlyBreakdown)
	}
	if len(r.HiddenLoans) != 1 || r.HiddenLoans[0].ProbableLender != "ABC Capital" {
		t.Fatalf("unexpected hidden loans %+v", r.HiddenLoans)
	}
	if r.Commitments[0].Category != CategoryLoan {
		t.Fatalf("expected canonical category, got %q", r.Commitments[0].Category)
	}
	if !r.RiskAssessment.HasDebitCardUsage || r.RiskAssessment.Status != StatusSafe {
		t.Fatalf("unexpected risk assessment %+v", r.RiskAssessment)
	}
	if r.Conclusion.MonthlyRepayment != "RM 450.00" {
		t.Fatalf("unexpected repayment %q", r.Conclusion.MonthlyRepayment)
	}
	if len(r.SearchInsights) != 1 || r.SearchInsights[0].Sources[0] != "https://example.com" {
		t.Fatalf("unexpected insights %+v", r.SearchInsights)
	}
}

func TestDecodeMissingSectionsDefaults(t *testing.T) {
	r, err := Decode([]byte(`{"conclusion": {"decision": "Reject"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.SalaryTally.MonthlyBreakdown == nil || r.HiddenLoans == nil || r.Commitments == nil ||
		r.ATMChecks == nil || r.SearchInsights == nil || r.RiskAssessment.Details == nil {
		t.Fatalf("expected empty, non-nil collections: %+v", r)
	}
	if r.SalaryTally.PayslipNetPay != 0 || r.GovernmentAid.AverageMonthlyAmount != 0 {
		t.Fatalf("expected zero numbers")
	}
	if r.Conclusion.Decision != "Reject" {
		t.Fatalf("unexpected decision %q", r.Conclusion.Decision)
	}
}

func TestDecodeLenientValues(t *testing.T) {
	payload := "```json\n" + `{
  "salaryTally": {"matches": "yes", "payslipNetPay": "RM 3,250.75", "monthlyBreakdown": [{"month": "Mar", "amount": "1,000"}, "garbage", null, {"month": 4, "amount": null}]},
  "hiddenLoans": null,
  "commitments": [{"description": "Takaful", "amount": 120, "category": "premium"}],
  "atmChecks": {"not": "a list"},
  "riskAssessment": {"gamblingTransactions": "12", "details": "single detail", "hasDebitCardUsage": 1},
  "conclusion": "not an object",
  "searchInsights": [{"transaction": "X", "sources": null}]
}` + "\n```"
	r, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !r.SalaryTally.Matches {
		t.Fatalf("expected yes to decode as true")
	}
	if r.SalaryTally.PayslipNetPay != 3250.75 {
		t.Fatalf("unexpected net pay %v", r.SalaryTally.PayslipNetPay)
	}
	months := r.SalaryTally.MonthlyBreakdown
	if len(months) != 2 {
		t.Fatalf("expected non-object elements dropped, got %+v", months)
	}
	if months[0].Amount != 1000 || months[1].Month != "4" || months[1].Amount != 0 {
		t.Fatalf("unexpected months %+v", months)
	}
	if len(r.HiddenLoans) != 0 || len(r.ATMChecks) != 0 {
		t.Fatalf("expected empty lists")
	}
	if r.Commitments[0].Category != CategoryOther {
		t.Fatalf("expected unknown category to become Other, got %q", r.Commitments[0].Category)
	}
	if r.RiskAssessment.GamblingTransactions != 12 || !r.RiskAssessment.HasDebitCardUsage {
		t.Fatalf("unexpected risk %+v", r.RiskAssessment)
	}
	if len(r.RiskAssessment.Details) != 1 || r.RiskAssessment.Details[0] != "single detail" {
		t.Fatalf("unexpected details %+v", r.RiskAssessment.Details)
	}
	if r.Conclusion != (Conclusion{}) {
		t.Fatalf("expected empty conclusion, got %+v", r.Conclusion)
	}
	if r.SearchInsights[0].Sources == nil {
		t.Fatalf("expected non-nil sources")
	}
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		notObj  bool
	}{
		{name: "array", payload: `[1,2]`, notObj: true},
		{name: "string", payload: `"hello"`, notObj: true},
		{name: "null", payload: `null`, notObj: true},
		{name: "truncated", payload: `{"salaryTally":`},
		{name: "prose", payload: `I could not analyse these documents.`},
		{name: "empty", payload: `   `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.payload))
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.notObj && !errors.Is(err, ErrNotObject) {
				t.Fatalf("expected ErrNotObject, got %v", err)
			}
		})
	}
}

func TestNormalizeFillsCollections(t *testing.T) {
	r := Normalize(Result{Commitments: []Commitment{{Category: "FINANCING"}}})
	if r.HiddenLoans == nil || r.ATMChecks == nil || r.SalaryTally.MonthlyBreakdown == nil {
		t.Fatalf("expected non-nil collections")
	}
	if r.Commitments[0].Category != CategoryFinancing {
		t.Fatalf("unexpected category %q", r.Commitments[0].Category)
	}
}
