package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrNotObject is returned when the payload is valid JSON but not an object.
var ErrNotObject = errors.New("report payload is not a JSON object")

// Decode parses a provider payload into a Result. Only a payload that is not a JSON object fails;
// every missing, null or mistyped field inside it degrades to its zero value.
func Decode(data []byte) (Result, error) {
	body := stripCodeFence(bytes.TrimSpace(data))
	if len(body) == 0 {
		return Result{}, fmt.Errorf("decode report: empty payload")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Result{}, ErrNotObject
		}
		return Result{}, fmt.Errorf("decode report: %w", err)
	}
	if top == nil {
		return Result{}, ErrNotObject
	}

	var w wireResult
	decodeSection(top["salaryTally"], &w.SalaryTally)
	decodeSection(top["hiddenLoans"], &w.HiddenLoans)
	decodeSection(top["commitments"], &w.Commitments)
	decodeSection(top["atmChecks"], &w.ATMChecks)
	decodeSection(top["riskAssessment"], &w.RiskAssessment)
	decodeSection(top["governmentAid"], &w.GovernmentAid)
	decodeSection(top["conclusion"], &w.Conclusion)
	decodeSection(top["searchInsights"], &w.SearchInsights)

	return w.normalize(), nil
}

// Normalize returns a copy of r with nil slices replaced by empty ones and categories canonicalised.
// Results built in code (tests, request bodies) go through it before rendering.
func Normalize(r Result) Result {
	out := r
	out.SalaryTally.MonthlyBreakdown = nonNil(r.SalaryTally.MonthlyBreakdown)
	out.HiddenLoans = nonNil(r.HiddenLoans)
	out.ATMChecks = nonNil(r.ATMChecks)
	out.RiskAssessment.Details = nonNil(r.RiskAssessment.Details)

	out.Commitments = make([]Commitment, 0, len(r.Commitments))
	for _, c := range r.Commitments {
		c.Category = canonicalCategory(c.Category)
		out.Commitments = append(out.Commitments, c)
	}
	out.SearchInsights = make([]SearchInsight, 0, len(r.SearchInsights))
	for _, s := range r.SearchInsights {
		s.Sources = nonNil(s.Sources)
		out.SearchInsights = append(out.SearchInsights, s)
	}
	return out
}

func decodeSection(raw json.RawMessage, dst any) {
	if len(raw) == 0 {
		return
	}
	// A section of the wrong shape is treated as absent.
	_ = json.Unmarshal(raw, dst)
}

func stripCodeFence(b []byte) []byte {
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	if idx := bytes.IndexByte(b, '\n'); idx >= 0 {
		b = b[idx+1:]
	} else {
		return nil
	}
	b = bytes.TrimSpace(b)
	b = bytes.TrimSuffix(b, []byte("```"))
	return bytes.TrimSpace(b)
}

type wireResult struct {
	SalaryTally    wireSalaryTally
	HiddenLoans    list[wireHiddenLoan]
	Commitments    list[wireCommitment]
	ATMChecks      list[wireATMCheck]
	RiskAssessment wireRiskAssessment
	GovernmentAid  wireGovernmentAid
	Conclusion     wireConclusion
	SearchInsights list[wireSearchInsight]
}

type wireSalaryTally struct {
	Matches          flag                     `json:"matches"`
	PayslipNetPay    num                      `json:"payslipNetPay"`
	MonthlyBreakdown list[wireMonthlyAmount] `json:"monthlyBreakdown"`
	Remarks          text                     `json:"remarks"`
}

type wireMonthlyAmount struct {
	Month  text `json:"month"`
	Amount num  `json:"amount"`
}

type wireHiddenLoan struct {
	Date               text `json:"date"`
	Amount             num  `json:"amount"`
	Description        text `json:"description"`
	ProbableLender     text `json:"probableLender"`
	SearchVerification text `json:"searchVerification"`
}

type wireCommitment struct {
	Description text `json:"description"`
	Amount      num  `json:"amount"`
	Frequency   text `json:"frequency"`
	Category    text `json:"category"`
}

type wireATMCheck struct {
	Date        text `json:"date"`
	Description text `json:"description"`
	Amount      num  `json:"amount"`
}

type wireRiskAssessment struct {
	GamblingTransactions num   `json:"gamblingTransactions"`
	Status               text  `json:"status"`
	Details              texts `json:"details"`
	HasDebitCardUsage    flag  `json:"hasDebitCardUsage"`
}

type wireGovernmentAid struct {
	Detected             flag `json:"detected"`
	IsGovServant         flag `json:"isGovServant"`
	AverageMonthlyAmount num  `json:"averageMonthlyAmount"`
	Remarks              text `json:"remarks"`
}

type wireConclusion struct {
	Decision         text `json:"decision"`
	SuggestedAmount  text `json:"suggestedAmount"`
	InterestRate     text `json:"interestRate"`
	MonthlyRepayment text `json:"monthlyRepayment"`
	RiskRewardRatio  text `json:"riskRewardRatio"`
	Explanation      text `json:"explanation"`
}

type wireSearchInsight struct {
	Transaction text  `json:"transaction"`
	CompanyInfo text  `json:"companyInfo"`
	RiskLevel   text  `json:"riskLevel"`
	Sources     texts `json:"sources"`
}

func (w wireResult) normalize() Result {
	out := Result{
		SalaryTally: SalaryTally{
			Matches:          bool(w.SalaryTally.Matches),
			PayslipNetPay:    float64(w.SalaryTally.PayslipNetPay),
			MonthlyBreakdown: make([]MonthlyAmount, 0, len(w.SalaryTally.MonthlyBreakdown)),
			Remarks:          string(w.SalaryTally.Remarks),
		},
		HiddenLoans: make([]HiddenLoan, 0, len(w.HiddenLoans)),
		Commitments: make([]Commitment, 0, len(w.Commitments)),
		ATMChecks:   make([]ATMCheck, 0, len(w.ATMChecks)),
		RiskAssessment: RiskAssessment{
			GamblingTransactions: float64(w.RiskAssessment.GamblingTransactions),
			Status:               string(w.RiskAssessment.Status),
			Details:              nonNil([]string(w.RiskAssessment.Details)),
			HasDebitCardUsage:    bool(w.RiskAssessment.HasDebitCardUsage),
		},
		GovernmentAid: GovernmentAid{
			Detected:             bool(w.GovernmentAid.Detected),
			IsGovServant:         bool(w.GovernmentAid.IsGovServant),
			AverageMonthlyAmount: float64(w.GovernmentAid.AverageMonthlyAmount),
			Remarks:              string(w.GovernmentAid.Remarks),
		},
		Conclusion: Conclusion{
			Decision:         string(w.Conclusion.Decision),
			SuggestedAmount:  string(w.Conclusion.SuggestedAmount),
			InterestRate:     string(w.Conclusion.InterestRate),
			MonthlyRepayment: string(w.Conclusion.MonthlyRepayment),
			RiskRewardRatio:  string(w.Conclusion.RiskRewardRatio),
			Explanation:      string(w.Conclusion.Explanation),
		},
		SearchInsights: make([]SearchInsight, 0, len(w.SearchInsights)),
	}
	for _, m := range w.SalaryTally.MonthlyBreakdown {
		out.SalaryTally.MonthlyBreakdown = append(out.SalaryTally.MonthlyBreakdown, MonthlyAmount{
			Month:  string(m.Month),
			Amount: float64(m.Amount),
		})
	}
	for _, l := range w.HiddenLoans {
		out.HiddenLoans = append(out.HiddenLoans, HiddenLoan{
			Date:               string(l.Date),
			Amount:             float64(l.Amount),
			Description:        string(l.Description),
			ProbableLender:     string(l.ProbableLender),
			SearchVerification: string(l.SearchVerification),
		})
	}
	for _, c := range w.Commitments {
		out.Commitments = append(out.Commitments, Commitment{
			Description: string(c.Description),
			Amount:      float64(c.Amount),
			Frequency:   string(c.Frequency),
			Category:    canonicalCategory(string(c.Category)),
		})
	}
	for _, a := range w.ATMChecks {
		out.ATMChecks = append(out.ATMChecks, ATMCheck{
			Date:        string(a.Date),
			Description: string(a.Description),
			Amount:      float64(a.Amount),
		})
	}
	for _, s := range w.SearchInsights {
		out.SearchInsights = append(out.SearchInsights, SearchInsight{
			Transaction: string(s.Transaction),
			CompanyInfo: string(s.CompanyInfo),
			RiskLevel:   string(s.RiskLevel),
			Sources:     nonNil([]string(s.Sources)),
		})
	}
	return out
}

func canonicalCategory(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "loan":
		return CategoryLoan
	case "insurance":
		return CategoryInsurance
	case "financing":
		return CategoryFinancing
	default:
		return CategoryOther
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// list decodes a JSON array, dropping elements that are null or not decodable into T.
// Anything other than an array decodes to an empty list.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var v T
		if err := json.Unmarshal(trimmed, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// num accepts JSON numbers and numeric strings such as "RM 1,200.50".
type num float64

var amountPattern = regexp.MustCompile(`-?\d[\d,]*(\.\d+)?`)

func (n *num) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*n = 0
		return nil
	}
	*n = num(toFloat(v))
	return nil
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return t
	case string:
		match := amountPattern.FindString(t)
		if match == "" {
			return 0
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// flag accepts JSON booleans, "true"/"yes" strings and non-zero numbers.
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*f = false
		return nil
	}
	switch t := v.(type) {
	case bool:
		*f = flag(t)
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			*f = true
		default:
			*f = false
		}
	case float64:
		*f = t != 0
	default:
		*f = false
	}
	return nil
}

// text accepts strings and renders numbers and booleans as their literal form.
type text string

func (s *text) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*s = ""
		return nil
	}
	*s = text(toText(v))
	return nil
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// texts accepts an array of scalars; a lone string becomes a one-element list.
type texts []string

func (s *texts) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*s = nil
		return nil
	}
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if str := strings.TrimSpace(toText(item)); str != "" {
				out = append(out, str)
			}
		}
		*s = out
	case string:
		if strings.TrimSpace(t) == "" {
			*s = nil
			return nil
		}
		*s = texts{t}
	default:
		*s = nil
	}
	return nil
}
