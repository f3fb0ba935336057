package gemini

import (
	"fmt"
	"strings"
	"time"
)

const systemPrompt = `You are a senior smart contract security auditor.
You review Solidity code for vulnerabilities, logic errors and gas inefficiencies.
Answer in GitHub-flavored markdown. Be specific: cite contract and function names.`

// buildPrompt wraps the flattened code with the audit instructions.
func buildPrompt(code, projectName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Audit the Solidity project %q. The contracts are flattened below, ", projectName)
	b.WriteString("each file preceded by a `// File:` header.\n\n")
	b.WriteString("Structure the report with these sections:\n")
	b.WriteString("1. Executive Summary\n")
	b.WriteString("2. Critical and High Severity Issues\n")
	b.WriteString("3. Medium and Low Severity Issues\n")
	b.WriteString("4. Gas Optimizations\n")
	b.WriteString("5. Best Practice Recommendations\n\n")
	b.WriteString("For each issue give: severity, location, description, impact and a suggested fix.\n\n")
	b.WriteString("```solidity\n")
	b.WriteString(code)
	if !strings.HasSuffix(code, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	return b.String()
}

// ReportMeta describes the run that produced a report.
type ReportMeta struct {
	ProjectName string
	Model       string
	GeneratedAt time.Time
	Usage       *UsageMetadata
}

// FormatReport wraps the model's answer in a report header.
func FormatReport(meta ReportMeta, analysis string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Gemini AI Analysis: %s\n\n", meta.ProjectName)
	fmt.Fprintf(&b, "- **Model:** %s\n", meta.Model)
	fmt.Fprintf(&b, "- **Generated:** %s\n", meta.GeneratedAt.UTC().Format(time.RFC3339))
	if meta.Usage != nil {
		fmt.Fprintf(&b, "- **Tokens:** %d prompt / %d output\n",
			meta.Usage.PromptTokenCount, meta.Usage.CandidatesTokenCount)
	}
	b.WriteString("\n> AI-generated analysis. Verify every finding before acting on it.\n\n---\n\n")
	b.WriteString(analysis)
	b.WriteString("\n")
	return b.String()
}
