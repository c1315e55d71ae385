package models

// CaseStages lists the procedural stages tracked by visual reports, in order
var CaseStages = []string{"Incident", "FIR Filed", "Investigation", "Arrest", "Charge Sheet", "Trial"}

// EvidenceCategories lists the evidence distribution categories, in order
var EvidenceCategories = []string{"Documentary", "Witness Testimony", "Physical Evidence", "Digital Evidence"}

// ReportConfig holds the user-configured inputs for a visual report.
// Nil fields take the defaults.
type ReportConfig struct {
	ProsecutionStrength *int           `json:"prosecution_strength"`
	DefenseStrength     *int           `json:"defense_strength"`
	Evidence            map[string]int `json:"evidence"`         // keyed by EvidenceCategories
	CompletedStages     []string       `json:"completed_stages"` // names from CaseStages
}

// ChartPoint is one labelled value of a chart series
type ChartPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// StageProgress is one row of the case progress timeline
type StageProgress struct {
	Stage    string `json:"stage"`
	Status   string `json:"status"` // "Complete" or "Pending"
	Progress int    `json:"progress"`
}

// VisualReport holds chart series and derived metrics for a case
type VisualReport struct {
	CaseID               string          `json:"case_id"`
	Strength             []ChartPoint    `json:"strength"`
	Evidence             []ChartPoint    `json:"evidence"`
	Timeline             []StageProgress `json:"timeline"`
	ProsecutionRisk      string          `json:"prosecution_risk"`
	DefenseLevel         string          `json:"defense_level"`
	Complexity           string          `json:"complexity"`
	CompletedStages      int             `json:"completed_stages"`
	TotalStages          int             `json:"total_stages"`
	ProsecutionAdvantage int             `json:"prosecution_advantage"`
	TotalEvidence        int             `json:"total_evidence"`
	StrongestEvidence    ChartPoint      `json:"strongest_evidence"`
}
