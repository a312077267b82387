package parliament

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeDecision(t *testing.T) {
	cases := map[string]string{
		"Ja":                            DecisionYes,
		"Nein":                          DecisionNo,
		"Enthaltung":                    DecisionAbstention,
		"Entschuldigt":                  DecisionAbsent,
		"Hat nicht teilgenommen":        DecisionAbsent,
		"Die Präsidentin/Der Präsident": DecisionPresident,
		"Vakant":                        "Vakant",
	}
	for in, want := range cases {
		if got := NormalizeDecision(in); got != want {
			t.Fatalf("NormalizeDecision(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAlertTypeSetRoundTrip(t *testing.T) {
	set := ParseAlertTypeSet("status_change, debate_scheduled,bogus")
	if len(set) != 2 {
		t.Fatalf("set = %v", set)
	}
	if _, ok := set[AlertDebateScheduled]; !ok {
		t.Fatalf("debate_scheduled missing from %v", set)
	}
	if got := FormatAlertTypeSet(DefaultNotifyAlertTypes); got != "committee_scheduled,debate_scheduled,status_change" {
		t.Fatalf("FormatAlertTypeSet() = %q", got)
	}
	if _, err := ParseAlertType("new_document"); err != nil {
		t.Fatalf("ParseAlertType(new_document) error = %v", err)
	}
	if _, err := ParseAlertType("other"); !errors.Is(err, ErrInvalidAlertType) {
		t.Fatalf("ParseAlertType(other) error = %v", err)
	}
}

func TestDescriptions(t *testing.T) {
	pre := Preconsultation{CommitteeName: "Kommission für Wirtschaft und Abgaben", CommitteeAbbrev: "WAK-N", TreatmentCategory: "IV"}
	if got := pre.Description(); got != "Vorberatung: Kommission für Wirtschaft und Abgaben (WAK-N) – Kategorie: IV" {
		t.Fatalf("preconsultation description = %q", got)
	}
	if got := (Preconsultation{CommitteeName: "SPK-S"}).Description(); got != "Vorberatung: SPK-S" {
		t.Fatalf("bare preconsultation description = %q", got)
	}

	slot := SessionSlot{Council: "Nationalrat", SessionName: "Herbstsession 2024", MeetingOrder: "Zweite Sitzung"}
	if got := slot.Description(); got != "Traktandiert: Nationalrat, Herbstsession 2024 – Zweite Sitzung" {
		t.Fatalf("session description = %q", got)
	}

	if got := StatusChangeMessage("24.3927", "Eingereicht", "Erledigt"); got != "Geschaeft 24.3927: Status geaendert von 'Eingereicht' zu 'Erledigt'" {
		t.Fatalf("status message = %q", got)
	}
	date := time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)
	if got := ScheduledMessage("24.3927", "Vorberatung: WAK-N", &date); got != "Geschaeft 24.3927: Vorberatung: WAK-N (Datum: 10.09.2024)" {
		t.Fatalf("scheduled message = %q", got)
	}
	if got := ScheduledMessage("24.3927", "Vorberatung: WAK-N", nil); got != "Geschaeft 24.3927: Vorberatung: WAK-N (Datum: unbekannt)" {
		t.Fatalf("undated message = %q", got)
	}
}

func TestDedupKeyIsStableAndDistinct(t *testing.T) {
	a := DedupKey("24.3927", EventCommitteeScheduled, "Vorberatung: WAK-N", "WAK-N")
	b := DedupKey("24.3927", EventCommitteeScheduled, "Vorberatung: WAK-N", "WAK-N")
	c := DedupKey("24.3927", EventDebateScheduled, "Vorberatung: WAK-N", "WAK-N")
	if a != b {
		t.Fatalf("same input produced different keys")
	}
	if a == c || len(a) != 64 {
		t.Fatalf("keys a=%s c=%s", a, c)
	}
}

func TestDecideIsOneWay(t *testing.T) {
	got, err := Decide(CandidatePending, "accepted")
	if err != nil || got != CandidateAccepted {
		t.Fatalf("Decide(pending, accepted) = %q, %v", got, err)
	}
	if _, err := Decide(CandidateAccepted, "rejected"); !errors.Is(err, ErrDecisionFinal) {
		t.Fatalf("Decide(accepted, rejected) error = %v", err)
	}
	if _, err := Decide(CandidatePending, "pending"); !errors.Is(err, ErrInvalidDecision) {
		t.Fatalf("Decide(pending, pending) error = %v", err)
	}
}

func TestValidatePriority(t *testing.T) {
	for _, p := range []int{1, 2, 3} {
		p := p
		if err := ValidatePriority(&p); err != nil {
			t.Fatalf("ValidatePriority(%d) error = %v", p, err)
		}
	}
	bad := 4
	if err := ValidatePriority(&bad); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("ValidatePriority(4) error = %v", err)
	}
	if err := ValidatePriority(nil); err != nil {
		t.Fatalf("ValidatePriority(nil) error = %v", err)
	}
}
