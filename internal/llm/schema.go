package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind is a schema node type.
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

// Schema is a provider-neutral description of the structured output. Properties keep their order.
type Schema struct {
	Kind       Kind
	Properties []Property
	Required   []string
	Items      *Schema
}

type Property struct {
	Name   string
	Schema *Schema
}

func object(required []string, props ...Property) *Schema {
	return &Schema{Kind: KindObject, Properties: props, Required: required}
}

func arrayOf(items *Schema) *Schema { return &Schema{Kind: KindArray, Items: items} }

func prop(name string, s *Schema) Property { return Property{Name: name, Schema: s} }

func str() *Schema     { return &Schema{Kind: KindString} }
func number() *Schema  { return &Schema{Kind: KindNumber} }
func boolean() *Schema { return &Schema{Kind: KindBoolean} }

// ReportSchema names every field of the audit Report Model.
func ReportSchema() *Schema {
	return object(nil,
		prop("salaryTally", object([]string{"monthlyBreakdown", "remarks"},
			prop("matches", boolean()),
			prop("payslipNetPay", number()),
			prop("monthlyBreakdown", arrayOf(object(nil,
				prop("month", str()),
				prop("amount", number()),
			))),
			prop("remarks", str()),
		)),
		prop("hiddenLoans", arrayOf(object(nil,
			prop("date", str()),
			prop("amount", number()),
			prop("description", str()),
			prop("probableLender", str()),
			prop("searchVerification", str()),
		))),
		prop("commitments", arrayOf(object(nil,
			prop("description", str()),
			prop("amount", number()),
			prop("frequency", str()),
			prop("category", str()),
		))),
		prop("atmChecks", arrayOf(object(nil,
			prop("date", str()),
			prop("description", str()),
			prop("amount", number()),
		))),
		prop("riskAssessment", object(nil,
			prop("gamblingTransactions", number()),
			prop("status", str()),
			prop("details", arrayOf(str())),
			prop("hasDebitCardUsage", boolean()),
		)),
		prop("governmentAid", object(nil,
			prop("detected", boolean()),
			prop("isGovServant", boolean()),
			prop("averageMonthlyAmount", number()),
			prop("remarks", str()),
		)),
		prop("conclusion", object([]string{"decision", "monthlyRepayment", "explanation"},
			prop("decision", str()),
			prop("suggestedAmount", str()),
			prop("interestRate", str()),
			prop("monthlyRepayment", str()),
			prop("riskRewardRatio", str()),
			prop("explanation", str()),
		)),
		prop("searchInsights", arrayOf(object(nil,
			prop("transaction", str()),
			prop("companyInfo", str()),
			prop("riskLevel", str()),
			prop("sources", arrayOf(str())),
		))),
	)
}

// JSONSchema renders the schema as a JSON Schema document.
func (s *Schema) JSONSchema() map[string]any {
	out := map[string]any{"type": string(s.Kind)}
	switch s.Kind {
	case KindObject:
		props := make(map[string]any, len(s.Properties))
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.JSONSchema()
		}
		out["properties"] = props
		if len(s.Required) > 0 {
			out["required"] = append([]string(nil), s.Required...)
		}
	case KindArray:
		if s.Items != nil {
			out["items"] = s.Items.JSONSchema()
		}
	}
	return out
}

// GeminiSchema renders the schema in the Gemini responseSchema dialect.
func (s *Schema) GeminiSchema() map[string]any {
	out := map[string]any{"type": strings.ToUpper(string(s.Kind))}
	switch s.Kind {
	case KindObject:
		props := make(map[string]any, len(s.Properties))
		order := make([]string, 0, len(s.Properties))
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.GeminiSchema()
			order = append(order, p.Name)
		}
		out["properties"] = props
		out["propertyOrdering"] = order
		if len(s.Required) > 0 {
			out["required"] = append([]string(nil), s.Required...)
		}
	case KindArray:
		if s.Items != nil {
			out["items"] = s.Items.GeminiSchema()
		}
	}
	return out
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func compiledReportSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		b, err := json.Marshal(ReportSchema().JSONSchema())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("report.json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("report.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// SchemaViolation is one failed check, located by JSON pointer.
type SchemaViolation struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// ValidationError lists every violation found in a payload.
type ValidationError struct {
	Violations []SchemaViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Location+": "+v.Message)
	}
	return "json does not match schema: " + strings.Join(parts, "; ")
}

// ValidateJSON checks a saved provider payload against the report schema. Payloads that are not
// JSON fail with a plain error; schema mismatches fail with *ValidationError.
func ValidateJSON(data []byte) error {
	schema, err := compiledReportSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("validate: %w", err)
		}
		return &ValidationError{Violations: violations(ve)}
	}
	return nil
}

func violations(ve *jsonschema.ValidationError) []SchemaViolation {
	var out []SchemaViolation
	for _, e := range ve.BasicOutput().Errors {
		// The root entry only says that validation failed.
		if e.KeywordLocation == "" {
			continue
		}
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		out = append(out, SchemaViolation{Location: loc, Message: e.Error})
	}
	if len(out) == 0 {
		out = append(out, SchemaViolation{Location: "/", Message: ve.Message})
	}
	return out
}
