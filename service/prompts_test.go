package service

import (
	"strings"
	"testing"

	"legalmitra-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	p := BuildAnalysisPrompt("theft of vehicle", "", models.LanguageEnglish)

	assert.True(t, strings.HasPrefix(p, "You are an expert Indian legal analyst.\n"))
	assert.Contains(t, p, "CASE: theft of vehicle")
	assert.Contains(t, p, "LEGAL REFERENCE: "+defaultReferenceInstruction)
	assert.Contains(t, p, "   - Bailable/Non-bailable")
	assert.True(t, strings.HasSuffix(p, "Format clearly with headings."))

	// sections appear in order
	last := -1
	for i, section := range analysisSections {
		idx := strings.Index(p, strings.SplitN(section, "\n", 2)[0])
		assert.Greater(t, idx, last, "section %d out of order", i+1)
		last = idx
	}
	assert.Contains(t, p, "9. RISK ASSESSMENT")
}

func TestBuildAnalysisPromptLanguageAndReference(t *testing.T) {
	tests := []struct {
		lang      models.Language
		directive string
	}{
		{models.LanguageHindi, "Provide the analysis in Hindi (Devanagari script)."},
		{models.LanguageTelugu, "Provide the analysis in Telugu (Telugu script)."},
		{models.LanguageTamil, "Provide the analysis in Tamil (Tamil script)."},
	}

	for _, tt := range tests {
		p := BuildAnalysisPrompt("scenario", "IPC 379: theft", tt.lang)
		assert.Contains(t, p, "You are an expert Indian legal analyst. "+tt.directive)
		assert.Contains(t, p, "LEGAL REFERENCE: IPC 379: theft")
		assert.NotContains(t, p, defaultReferenceInstruction)
	}

	english := BuildAnalysisPrompt("scenario", "  ", models.LanguageEnglish)
	assert.NotContains(t, english, "Provide the analysis in")
	assert.Contains(t, english, defaultReferenceInstruction)
}

func TestBuildEvidencePrompt(t *testing.T) {
	p := BuildEvidencePrompt("original text", "witness recants", models.LanguageTamil)

	assert.True(t, strings.HasPrefix(p, "Provide update in Tamil.\n\n"))
	assert.Contains(t, p, "ORIGINAL ANALYSIS: original text")
	assert.Contains(t, p, "NEW EVIDENCE: witness recants")
	assert.Contains(t, p, "1. IMPACT ASSESSMENT")
	assert.True(t, strings.HasSuffix(p, "5. UPDATED RISK ASSESSMENT"))

	english := BuildEvidencePrompt("a", "b", models.LanguageEnglish)
	assert.True(t, strings.HasPrefix(english, "ORIGINAL ANALYSIS: a"))
}

func TestBuildPrecedentPrompt(t *testing.T) {
	p := BuildPrecedentPrompt("dowry harassment")

	assert.True(t, strings.HasPrefix(p, "Find similar Indian legal precedents for: dowry harassment"))
	assert.Contains(t, p, "List 5-7 relevant precedents")
	assert.Contains(t, p, "3. Court")
}
