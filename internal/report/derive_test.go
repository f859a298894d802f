package report

import "testing"

func TestAverageInflow(t *testing.T) {
	tests := []struct {
		name   string
		months []MonthlyAmount
		want   float64
	}{
		{name: "empty", months: nil, want: 0},
		{name: "single", months: []MonthlyAmount{{Month: "Jan", Amount: 3000}}, want: 3000},
		{name: "mean", months: []MonthlyAmount{{Amount: 0.1}, {Amount: 0.2}}, want: 0.15},
		{name: "three", months: []MonthlyAmount{{Amount: 4000}, {Amount: 4500}, {Amount: 5000}}, want: 4500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Result{SalaryTally: SalaryTally{MonthlyBreakdown: tt.months}}
			if got := AverageInflow(r); got != tt.want {
				t.Fatalf("AverageInflow = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsApprove(t *testing.T) {
	tests := []struct {
		decision string
		want     bool
	}{
		{"Approve", true},
		{"approve", true},
		{" APPROVE ", true},
		{"Conditional", false},
		{"Reject", false},
		{"Approved", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsApprove(tt.decision); got != tt.want {
			t.Fatalf("IsApprove(%q) = %v, want %v", tt.decision, got, tt.want)
		}
	}
}

func TestVerdictLabel(t *testing.T) {
	if got := VerdictLabel("Conditional"); got != "CONDITIONAL" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := VerdictLabel(""); got != DefaultVerdict {
		t.Fatalf("expected fallback verdict, got %q", got)
	}
}

func TestFormatRM(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "RM 0"},
		{450, "RM 450"},
		{4500.5, "RM 4,500.5"},
		{1234567.891, "RM 1,234,567.891"},
		{12.34567, "RM 12.346"},
	}
	for _, tt := range tests {
		if got := FormatRM(tt.amount); got != tt.want {
			t.Fatalf("FormatRM(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestDerivedLabels(t *testing.T) {
	empty := Normalize(Result{})
	if DebtRisk(empty) != "LOW" || EntitiesLabel(empty) != "0 Entities" {
		t.Fatalf("unexpected empty debt labels")
	}
	if CardPresence(empty) != "NO USAGE FOUND" || CardAssessment(empty) != "Critical" || CardStatus(empty) != "Not Detected" {
		t.Fatalf("unexpected empty card labels")
	}

	r := Result{
		HiddenLoans:    []HiddenLoan{{Description: "TRF"}, {ProbableLender: "Ah Long", SearchVerification: "unlicensed"}},
		RiskAssessment: RiskAssessment{HasDebitCardUsage: true, Status: "high risk - potential gambling"},
	}
	if DebtRisk(r) != "HIGH" || EntitiesLabel(r) != "2 Entities" {
		t.Fatalf("unexpected debt labels")
	}
	if CardPresence(r) != "ACTIVE" || CardAssessment(r) != "Pass" || CardStatus(r) != "Verified" {
		t.Fatalf("unexpected card labels")
	}
	if !IsGambling(r) {
		t.Fatalf("expected gambling status")
	}
	if LenderName(r.HiddenLoans[0]) != UnknownLender || VerificationDetail(r.HiddenLoans[0]) != "TRF" {
		t.Fatalf("unexpected fallbacks for first loan")
	}
	if VerificationDetail(r.HiddenLoans[1]) != "unlicensed" || VerificationDetail(HiddenLoan{}) != NoVerificationDetail {
		t.Fatalf("unexpected verification detail")
	}
}
