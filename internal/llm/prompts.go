package llm

import (
	_ "embed"
	"log"
	"strings"
)

var (
	//go:embed prompts/audit_v1.txt
	auditPromptV1 string
)

const noContextNote = "None provided."

// PromptTemplate returns the prompt template text and whether the version was recognized.
func PromptTemplate(version string) (string, bool) {
	switch version {
	case "v1":
		return auditPromptV1, true
	default:
		return auditPromptV1, false
	}
}

// BuildInstruction renders the instruction block for one audit, substituting the context note.
func BuildInstruction(promptVersion, contextNote string) string {
	version := strings.TrimSpace(promptVersion)
	template, ok := PromptTemplate(version)
	if !ok {
		log.Printf("unknown prompt version %q, defaulting to v1", version)
	}

	note := strings.TrimSpace(contextNote)
	if note == "" {
		note = noContextNote
	}
	return strings.NewReplacer("{{CONTEXT_NOTE}}", note).Replace(template)
}
