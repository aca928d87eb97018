package alerts

import "testing"

func TestCalculateRiskScoreEmptyIsZero(t *testing.T) {
	if got := calculateRiskScore(nil); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestCalculateRiskScoreErrorHeavyIsHighest(t *testing.T) {
	warningOnly := []Group{{AlertCount: 100, Severity: "WARNING", AvgProbability: 0.6, Pattern: "unknown"}}
	errorHeavy := []Group{{AlertCount: 100, Severity: "ERROR", AvgProbability: 0.9, Pattern: "unknown"}}

	warningScore := calculateRiskScore(warningOnly)
	errorScore := calculateRiskScore(errorHeavy)

	if errorScore <= warningScore {
		t.Fatalf("expected ERROR-heavy score > WARNING-only score, got error=%v warning=%v", errorScore, warningScore)
	}
	if warningScore < 20 || warningScore > 50 {
		t.Errorf("expected WARNING-only score in LOW-MEDIUM range, got %v", warningScore)
	}
	if errorScore < 50 {
		t.Errorf("expected ERROR-heavy score in HIGH+ range, got %v", errorScore)
	}
}

func TestCalculateRiskScoreCapsAt100(t *testing.T) {
	groups := []Group{
		{AlertCount: 100000, Severity: "ERROR", AvgProbability: 1.0, Pattern: "reconnaissance"},
		{AlertCount: 50000, Severity: "ERROR", AvgProbability: 1.0, Pattern: "brute_force"},
		{AlertCount: 50000, Severity: "ERROR", AvgProbability: 1.0, Pattern: "lateral_movement"},
	}
	if got := calculateRiskScore(groups); got != 100 {
		t.Errorf("expected capped score of 100, got %v", got)
	}
}

func TestCalculateRiskScoreEscalationBonus(t *testing.T) {
	without := []Group{{AlertCount: 10, Severity: "WARNING", AvgProbability: 0.5, Pattern: "unknown"}}
	with := []Group{
		{AlertCount: 10, Severity: "WARNING", AvgProbability: 0.5, Pattern: "reconnaissance"},
		{AlertCount: 10, Severity: "WARNING", AvgProbability: 0.5, Pattern: "brute_force"},
	}
	if calculateRiskScore(with) <= calculateRiskScore(without) {
		t.Error("expected escalation sequence to raise the risk score")
	}
}
