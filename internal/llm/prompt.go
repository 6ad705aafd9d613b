package llm

import (
	"fmt"
	"strings"

	"github.com/socdash/socdash/internal/database"
	"github.com/socdash/socdash/internal/utils"
)

// BuildSQLPrompt renders the NL-to-SQL prompt for one analyst request
func BuildSQLPrompt(schema *Schema, request string) string {
	var b strings.Builder

	dialect := schema.Dialect
	if dialect == "" {
		dialect = "SQL"
	}
	fmt.Fprintf(&b, "You are a Database Expert. Convert the following natural language request into a valid %s SQL query.\n\n", dialect)
	b.WriteString(schema.Describe())
	fmt.Fprintf(&b, "\nUser Request: %q\n", strings.TrimSpace(request))

	if len(schema.Rules) > 0 {
		b.WriteString("\nRules:\n")
		for i, r := range schema.Rules {
			fmt.Fprintf(&b, "%d. %s\n", i+1, r)
		}
	}
	b.WriteString("\nSQL:\n")
	return b.String()
}

// SQLPromptFunc binds a schema so the result can be handed to sqlguard
func SQLPromptFunc(schema *Schema) func(string) string {
	return func(request string) string {
		return BuildSQLPrompt(schema, request)
	}
}

// BuildAnalysisPrompt asks the model to explain a single alert
func BuildAnalysisPrompt(e database.Event) string {
	payload := e.RawPayload
	if payload == "" {
		payload = "No payload data"
	}

	return fmt.Sprintf(`You are a Tier 3 Security Operations Center (SOC) Analyst.
Analyze the following Intrusion Detection System (IDS) alert.

Alert Data:
- Signature: %s
- Severity: %s
- Source IP: %s
- Destination IP: %s:%d
- Payload (Snippet): %s

Instructions:
1. Explain what this specific attack IS in plain English.
2. Assess if this looks like a False Positive.
3. Recommend ONE concrete remediation step.

Keep your response under 100 words. Be direct.
`, orUnknown(e.Signature), severityLabel(e.Severity), e.SourceAddress, e.DestAddress, e.DestPort, utils.TruncateText(payload, 2000))
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func severityLabel(sev int) string {
	switch sev {
	case 1:
		return "1 (Critical)"
	case 2:
		return "2 (High)"
	case 3:
		return "3 (Medium)"
	case 0:
		return "Unknown"
	default:
		return fmt.Sprintf("%d", sev)
	}
}
