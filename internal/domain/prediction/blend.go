// Package prediction holds the statistical vote blend: faction tendency,
// loyalty and same-group boost combined into per-member probabilities.
package prediction

import (
	"math"
	"sort"
)

const (
	SameGroupBoost  = 0.15
	AbstainBaseline = 0.02

	acceptThreshold = 0.6
	rejectThreshold = 0.4
)

// Tendency is a parliamentary group's historical share of Yes and No ballots.
type Tendency struct {
	YesRate float64
	NoRate  float64
}

// NeutralTendency is used when a group has no recorded Yes/No ballots.
var NeutralTendency = Tendency{YesRate: 0.5, NoRate: 0.5}

// TendencyFromCounts turns raw Yes/No ballot counts into rates.
func TendencyFromCounts(yes int64, no int64) Tendency {
	total := yes + no
	if total <= 0 {
		return NeutralTendency
	}
	return Tendency{YesRate: float64(yes) / float64(total), NoRate: float64(no) / float64(total)}
}

// Tally is a group's Yes/No split on a single roll call.
type Tally struct {
	Yes int64
	No  int64
}

// Majority returns "Yes" or "No"; ok is false on a tie or an empty tally.
func (t Tally) Majority() (decision string, ok bool) {
	switch {
	case t.Yes > t.No:
		return "Yes", true
	case t.No > t.Yes:
		return "No", true
	default:
		return "", false
	}
}

// Ballot is one Yes/No decision cast by a member on a roll call.
type Ballot struct {
	VoteID   int64
	Decision string
}

// Loyalty is the share of the member's Yes/No ballots that matched their
// group's majority on the same roll call. Votes where the group had no
// majority are left out of both numerator and denominator.
func Loyalty(ballots []Ballot, groupTallies map[int64]Tally) float64 {
	var matched, total int
	for _, b := range ballots {
		if b.Decision != "Yes" && b.Decision != "No" {
			continue
		}
		majority, ok := groupTallies[b.VoteID].Majority()
		if !ok {
			continue
		}
		total++
		if majority == b.Decision {
			matched++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

// Estimate is the blended outcome for one member.
type Estimate struct {
	Yes        float64
	No         float64
	Abstain    float64
	Confidence float64
}

// Blend combines a group tendency with the member's loyalty. When sameGroup is
// set the Yes share is boosted before renormalization. Yes and No always sum
// to 1 - AbstainBaseline.
func Blend(tendency Tendency, loyalty float64, sameGroup bool) Estimate {
	yes := clamp01(tendency.YesRate)
	no := clamp01(tendency.NoRate)
	if sameGroup {
		yes = clamp01(yes + SameGroupBoost)
		no = clamp01(no - SameGroupBoost)
	}

	total := yes + no
	if total > 0 {
		yes, no = yes/total, no/total
	} else {
		yes, no = 0.5, 0.5
	}

	share := 1 - AbstainBaseline
	return Estimate{
		Yes:        yes * share,
		No:         no * share,
		Abstain:    AbstainBaseline,
		Confidence: Confidence(loyalty),
	}
}

// Confidence grows with loyalty and is capped at 0.9.
func Confidence(loyalty float64) float64 {
	if loyalty <= 0 {
		return 0.3
	}
	return math.Min(0.9, loyalty*0.6+0.3)
}

type Outcome string

const (
	OutcomeLikelyAccept Outcome = "likely-accept"
	OutcomeLikelyReject Outcome = "likely-reject"
	OutcomeUncertain    Outcome = "uncertain"
)

// Label maps the overall yes probability onto the three outcome buckets.
func Label(overallYes float64) Outcome {
	switch {
	case overallYes > acceptThreshold:
		return OutcomeLikelyAccept
	case overallYes < rejectThreshold:
		return OutcomeLikelyReject
	default:
		return OutcomeUncertain
	}
}

// MemberEstimate ties an estimate to the group it is aggregated under.
type MemberEstimate struct {
	PersonNumber      int64
	GroupAbbreviation string
	GroupName         string
	Estimate          Estimate
}

type FactionSummary struct {
	GroupAbbreviation string
	GroupName         string
	MemberCount       int
	AvgYes            float64
	AvgNo             float64
}

// Summary is the aggregate over every member with an estimate.
type Summary struct {
	OverallYes float64
	Outcome    Outcome
	Factions   []FactionSummary
}

// Summarize averages member estimates overall and per group. Members without
// a group abbreviation count toward the overall figure only. Factions are
// ordered by member count, largest first, then by abbreviation.
func Summarize(members []MemberEstimate) Summary {
	overall := 0.5
	if len(members) > 0 {
		var sum float64
		for _, m := range members {
			sum += m.Estimate.Yes
		}
		overall = sum / float64(len(members))
	}

	byGroup := make(map[string]*FactionSummary)
	for _, m := range members {
		if m.GroupAbbreviation == "" {
			continue
		}
		f, ok := byGroup[m.GroupAbbreviation]
		if !ok {
			f = &FactionSummary{GroupAbbreviation: m.GroupAbbreviation}
			byGroup[m.GroupAbbreviation] = f
		}
		f.MemberCount++
		f.AvgYes += m.Estimate.Yes
		f.AvgNo += m.Estimate.No
		if m.GroupName != "" {
			f.GroupName = m.GroupName
		}
	}

	factions := make([]FactionSummary, 0, len(byGroup))
	for _, f := range byGroup {
		f.AvgYes /= float64(f.MemberCount)
		f.AvgNo /= float64(f.MemberCount)
		if f.GroupName == "" {
			f.GroupName = f.GroupAbbreviation
		}
		factions = append(factions, *f)
	}
	sort.Slice(factions, func(i, j int) bool {
		if factions[i].MemberCount != factions[j].MemberCount {
			return factions[i].MemberCount > factions[j].MemberCount
		}
		return factions[i].GroupAbbreviation < factions[j].GroupAbbreviation
	})

	return Summary{OverallYes: overall, Outcome: Label(overall), Factions: factions}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
