package ai

import (
	"fmt"
	"strings"

	"github.com/forkliftia/case-service/internal/manuals"
)

// DiagnosisSystemPrompt is the fixed persona and output contract for
// diagnosis generation.
const DiagnosisSystemPrompt = `You are a forklift diagnostic assistant for field technicians. Respond in English using clear technical language.

Structure every answer with exactly these sections:
1. Probable cause
2. Diagnostic steps (ordered, most likely first)
3. Safety note
4. Reference (brand/model/error code context used)
5. Similar cases (patterns that commonly present the same way)

Be specific to the reported machine. If information is missing, say what a technician should check first instead of guessing.`

// ChatSystemPrompt frames the free-form chat endpoint.
const ChatSystemPrompt = `You are a forklift maintenance assistant. Respond in English using clear technical language. Keep answers practical and concise.`

// DiagnosisInput carries the normalized case fields for prompt composition.
// Empty strings mean the field was not provided; placeholders exist only in
// the rendered prompt, never in stored data.
type DiagnosisInput struct {
	Brand      string
	Model      string
	Series     string
	ErrorCode  string
	Symptom    string
	ChecksDone string
}

// BuildManualContext renders the optional manual block. The prompt forbids
// verbatim reproduction of manual text; the model is asked to paraphrase.
func BuildManualContext(m *manuals.Match) string {
	if m == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Manual reference (paraphrase, do not quote verbatim):\n")
	fmt.Fprintf(&b, "- Machine: %s %s (series %s)\n", m.Brand, m.Model, m.Series)
	fmt.Fprintf(&b, "- Error code %s, system: %s\n", m.Error.Code, m.Error.System)
	fmt.Fprintf(&b, "- Documented cause: %s\n", m.Error.ManualSummary)
	fmt.Fprintf(&b, "- Recommended actions: %s\n", m.Error.ActionsSummary)
	return b.String()
}

// BuildDiagnosisPrompt composes the full single-shot prompt: persona, the
// manual context when available, then the normalized case fields.
func BuildDiagnosisPrompt(in DiagnosisInput, manualContext string) string {
	var b strings.Builder
	b.WriteString(DiagnosisSystemPrompt)
	b.WriteString("\n\n")
	if manualContext != "" {
		b.WriteString(manualContext)
		b.WriteString("\n")
	}
	b.WriteString("Case report:\n")
	fmt.Fprintf(&b, "- Brand: %s\n", in.Brand)
	fmt.Fprintf(&b, "- Model: %s\n", in.Model)
	if in.Series != "" {
		fmt.Fprintf(&b, "- Series: %s\n", in.Series)
	}
	fmt.Fprintf(&b, "- Error code: %s\n", orPlaceholder(in.ErrorCode, "none provided"))
	fmt.Fprintf(&b, "- Symptom: %s\n", in.Symptom)
	fmt.Fprintf(&b, "- Checks already done: %s\n", orPlaceholder(in.ChecksDone, "nothing specified"))
	return b.String()
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}
