package service

import (
	"fmt"
	"strings"

	"legalmitra-backend/models"
)

const defaultReferenceInstruction = "Use IPC, CrPC, Evidence Act knowledge."

var analysisLanguageDirectives = map[models.Language]string{
	models.LanguageHindi:  "Provide the analysis in Hindi (Devanagari script).",
	models.LanguageTelugu: "Provide the analysis in Telugu (Telugu script).",
	models.LanguageTamil:  "Provide the analysis in Tamil (Tamil script).",
}

var evidenceLanguageDirectives = map[models.Language]string{
	models.LanguageHindi:  "Provide update in Hindi.",
	models.LanguageTelugu: "Provide update in Telugu.",
	models.LanguageTamil:  "Provide update in Tamil.",
}

// analysisSections are requested in this order
var analysisSections = []string{
	"CASE CLASSIFICATION",
	"RELEVANT LEGAL PROVISIONS (section numbers)",
	`PUNISHMENT DETAILS:
   - Each applicable section
   - Minimum punishment
   - Maximum punishment
   - Cognizable/Non-cognizable
   - Bailable/Non-bailable`,
	"PROSECUTION ARGUMENTS (4-5 points)",
	"DEFENSE ARGUMENTS (4-5 points)",
	"KEY LEGAL FACTORS",
	"EVIDENCE REQUIREMENTS",
	"SIMILAR PRECEDENTS",
	"RISK ASSESSMENT",
}

var evidenceSections = []string{
	"IMPACT ASSESSMENT",
	"HOW IT AFFECTS PUNISHMENT",
	"EFFECT ON PROSECUTION",
	"EFFECT ON DEFENSE",
	"UPDATED RISK ASSESSMENT",
}

var precedentFields = []string{"Case name", "Year", "Court", "Key principle", "Relevance"}

func numbered(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, item)
	}
	return b.String()
}

// BuildAnalysisPrompt builds the prompt for a new case analysis
func BuildAnalysisPrompt(scenario, referenceContext string, language models.Language) string {
	reference := strings.TrimSpace(referenceContext)
	if reference == "" {
		reference = defaultReferenceInstruction
	}

	preamble := "You are an expert Indian legal analyst."
	if directive := analysisLanguageDirectives[language]; directive != "" {
		preamble += " " + directive
	}

	return fmt.Sprintf(`%s

CASE: %s

LEGAL REFERENCE: %s

Provide comprehensive analysis:

%s

Format clearly with headings.`, preamble, scenario, reference, numbered(analysisSections))
}

// BuildEvidencePrompt builds the prompt assessing new evidence against an analysis
func BuildEvidencePrompt(originalAnalysis, evidence string, language models.Language) string {
	var b strings.Builder
	if directive := evidenceLanguageDirectives[language]; directive != "" {
		b.WriteString(directive)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "ORIGINAL ANALYSIS: %s\n\nNEW EVIDENCE: %s\n\nAnalyze impact:\n%s", originalAnalysis, evidence, numbered(evidenceSections))
	return b.String()
}

// BuildPrecedentPrompt builds the prompt for a precedent search
func BuildPrecedentPrompt(scenario string) string {
	return fmt.Sprintf("Find similar Indian legal precedents for: %s\n\nList 5-7 relevant precedents with:\n%s", scenario, numbered(precedentFields))
}
