package service

import (
	"errors"
	"fmt"

	"legalmitra-backend/models"
	"legalmitra-backend/session"
)

var ErrInvalidReport = errors.New("invalid report configuration")

const (
	defaultProsecutionStrength = 70
	defaultDefenseStrength     = 30
)

var defaultEvidence = map[string]int{
	"Documentary":       40,
	"Witness Testimony": 30,
	"Physical Evidence": 20,
	"Digital Evidence":  10,
}

// defaultCompletedStages applies when the client sends no stage list
var defaultCompletedStages = []string{"Incident", "FIR Filed"}

// level buckets a 0-100 score
func level(score int) string {
	switch {
	case score > 60:
		return "High"
	case score > 30:
		return "Medium"
	default:
		return "Low"
	}
}

func complexity(completed int) string {
	switch {
	case completed > 4:
		return "High"
	case completed > 2:
		return "Medium"
	default:
		return "Low"
	}
}

func percent(name string, v int) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%w: %s must be between 0 and 100, got %d", ErrInvalidReport, name, v)
	}
	return nil
}

// ComputeVisualReport derives chart series and metrics from user inputs
func ComputeVisualReport(caseID string, cfg models.ReportConfig) (*models.VisualReport, error) {
	pros, def := defaultProsecutionStrength, defaultDefenseStrength
	if cfg.ProsecutionStrength != nil {
		pros = *cfg.ProsecutionStrength
	}
	if cfg.DefenseStrength != nil {
		def = *cfg.DefenseStrength
	}
	if err := percent("prosecution_strength", pros); err != nil {
		return nil, err
	}
	if err := percent("defense_strength", def); err != nil {
		return nil, err
	}

	for name := range cfg.Evidence {
		if _, ok := defaultEvidence[name]; !ok {
			return nil, fmt.Errorf("%w: unknown evidence category %q", ErrInvalidReport, name)
		}
	}

	rep := &models.VisualReport{
		CaseID: caseID,
		Strength: []models.ChartPoint{
			{Label: "Prosecution Strength", Value: pros},
			{Label: "Defense Strength", Value: def},
		},
		ProsecutionRisk:      level(pros),
		DefenseLevel:         level(def),
		ProsecutionAdvantage: pros - def,
		TotalStages:          len(models.CaseStages),
	}

	for _, category := range models.EvidenceCategories {
		v, ok := cfg.Evidence[category]
		if !ok {
			v = defaultEvidence[category]
		}
		if err := percent(category, v); err != nil {
			return nil, err
		}
		point := models.ChartPoint{Label: category, Value: v}
		rep.Evidence = append(rep.Evidence, point)
		rep.TotalEvidence += v
		if len(rep.Evidence) == 1 || v > rep.StrongestEvidence.Value {
			rep.StrongestEvidence = point
		}
	}

	stages := cfg.CompletedStages
	if stages == nil {
		stages = defaultCompletedStages
	}
	done := make(map[string]bool, len(stages))
	for _, st := range stages {
		done[st] = true
	}
	for st := range done {
		if !isStage(st) {
			return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidReport, st)
		}
	}

	for _, st := range models.CaseStages {
		row := models.StageProgress{Stage: st, Status: "Pending"}
		if done[st] {
			row.Status = "Complete"
			row.Progress = 100
			rep.CompletedStages++
		}
		rep.Timeline = append(rep.Timeline, row)
	}
	rep.Complexity = complexity(rep.CompletedStages)

	return rep, nil
}

func isStage(name string) bool {
	for _, st := range models.CaseStages {
		if st == name {
			return true
		}
	}
	return false
}

// BuildVisualReport computes a report for a case that exists in the session
func BuildVisualReport(sess *session.Session, caseID string, cfg models.ReportConfig) (*models.VisualReport, error) {
	if _, err := sess.Cases.Get(caseID); err != nil {
		return nil, err
	}
	return ComputeVisualReport(caseID, cfg)
}
