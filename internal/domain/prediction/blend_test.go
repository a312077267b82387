package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlendKeepsYesNoShareConstant(t *testing.T) {
	tendencies := []Tendency{
		NeutralTendency,
		{YesRate: 1, NoRate: 0},
		{YesRate: 0, NoRate: 1},
		{YesRate: 0.9, NoRate: 0.1},
		{YesRate: 0.05, NoRate: 0.95},
		{YesRate: 0, NoRate: 0},
		{YesRate: 1.4, NoRate: -0.2},
	}
	for _, tendency := range tendencies {
		for _, sameGroup := range []bool{false, true} {
			for _, loyalty := range []float64{0, 0.25, 1} {
				got := Blend(tendency, loyalty, sameGroup)
				assert.InDelta(t, 0.98, got.Yes+got.No, 1e-9, "tendency=%+v same=%v", tendency, sameGroup)
				assert.GreaterOrEqual(t, got.Yes, 0.0)
				assert.LessOrEqual(t, got.Yes, 1.0)
				assert.GreaterOrEqual(t, got.No, 0.0)
				assert.LessOrEqual(t, got.No, 1.0)
				assert.Equal(t, AbstainBaseline, got.Abstain)
			}
		}
	}
}

func TestBlendSameGroupBoost(t *testing.T) {
	plain := Blend(Tendency{YesRate: 0.5, NoRate: 0.5}, 0, false)
	boosted := Blend(Tendency{YesRate: 0.5, NoRate: 0.5}, 0, true)

	assert.InDelta(t, 0.49, plain.Yes, 1e-9)
	assert.InDelta(t, 0.65*0.98, boosted.Yes, 1e-9)
	assert.InDelta(t, 0.35*0.98, boosted.No, 1e-9)
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 0.3, Confidence(0))
	assert.InDelta(t, 0.6, Confidence(0.5), 1e-9)
	assert.InDelta(t, 0.9, Confidence(1), 1e-9)
	assert.InDelta(t, 0.9, Confidence(1.5), 1e-9)
}

func TestLoyaltySkipsTiesAndNonYesNo(t *testing.T) {
	ballots := []Ballot{
		{VoteID: 1, Decision: "Yes"},
		{VoteID: 2, Decision: "No"},
		{VoteID: 3, Decision: "Yes"},
		{VoteID: 4, Decision: "Abstention"},
		{VoteID: 5, Decision: "Yes"},
	}
	tallies := map[int64]Tally{
		1: {Yes: 10, No: 2},
		2: {Yes: 9, No: 1},
		3: {Yes: 4, No: 4},
		4: {Yes: 7, No: 0},
	}

	// vote 1 matches, vote 2 does not, 3 is a tie, 4 is an abstention, 5 has no group data
	assert.InDelta(t, 0.5, Loyalty(ballots, tallies), 1e-9)
	assert.Equal(t, 0.0, Loyalty(nil, tallies))
}

func TestTendencyFromCounts(t *testing.T) {
	assert.Equal(t, NeutralTendency, TendencyFromCounts(0, 0))
	got := TendencyFromCounts(3, 1)
	assert.InDelta(t, 0.75, got.YesRate, 1e-9)
	assert.InDelta(t, 0.25, got.NoRate, 1e-9)
}

func TestSummarizeOrdersFactionsBySize(t *testing.T) {
	members := []MemberEstimate{
		{PersonNumber: 1, GroupAbbreviation: "S", GroupName: "Sozialdemokratische Fraktion", Estimate: Estimate{Yes: 0.9, No: 0.08}},
		{PersonNumber: 2, GroupAbbreviation: "V", GroupName: "SVP-Fraktion", Estimate: Estimate{Yes: 0.1, No: 0.88}},
		{PersonNumber: 3, GroupAbbreviation: "V", Estimate: Estimate{Yes: 0.2, No: 0.78}},
		{PersonNumber: 4, Estimate: Estimate{Yes: 0.6, No: 0.38}},
	}

	summary := Summarize(members)

	require.Len(t, summary.Factions, 2)
	assert.Equal(t, "V", summary.Factions[0].GroupAbbreviation)
	assert.Equal(t, "SVP-Fraktion", summary.Factions[0].GroupName)
	assert.Equal(t, 2, summary.Factions[0].MemberCount)
	assert.InDelta(t, 0.15, summary.Factions[0].AvgYes, 1e-9)
	assert.InDelta(t, 0.45, summary.OverallYes, 1e-9)
	assert.Equal(t, OutcomeUncertain, summary.Outcome)
}

func TestLabelThresholds(t *testing.T) {
	assert.Equal(t, OutcomeLikelyAccept, Label(0.61))
	assert.Equal(t, OutcomeUncertain, Label(0.6))
	assert.Equal(t, OutcomeUncertain, Label(0.4))
	assert.Equal(t, OutcomeLikelyReject, Label(0.39))
	assert.Equal(t, OutcomeUncertain, Summarize(nil).Outcome)
}
