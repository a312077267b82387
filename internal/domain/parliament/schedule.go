package parliament

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Preconsultation is one committee-stage review scheduled for a business.
type Preconsultation struct {
	CommitteeName     string
	CommitteeAbbrev   string
	Date              DateValue
	TreatmentCategory string
	BusinessType      string
}

// SessionSlot is one plenary meeting on whose agenda a business appears.
type SessionSlot struct {
	MeetingDate   DateValue
	Begin         string
	Council       string
	CouncilAbbrev string
	SessionName   string
	MeetingOrder  string
	Location      string
}

// Description is the synthesized text that, together with the committee name,
// identifies a committee_scheduled event.
func (p Preconsultation) Description() string {
	var b strings.Builder
	b.WriteString("Vorberatung: ")
	b.WriteString(p.CommitteeName)
	if p.CommitteeAbbrev != "" {
		fmt.Fprintf(&b, " (%s)", p.CommitteeAbbrev)
	}
	if p.TreatmentCategory != "" {
		fmt.Fprintf(&b, " – Kategorie: %s", p.TreatmentCategory)
	}
	return b.String()
}

func (s SessionSlot) Description() string {
	var b strings.Builder
	b.WriteString("Traktandiert: ")
	b.WriteString(s.Council)
	if s.SessionName != "" {
		fmt.Fprintf(&b, ", %s", s.SessionName)
	}
	if s.MeetingOrder != "" {
		fmt.Fprintf(&b, " – %s", s.MeetingOrder)
	}
	return b.String()
}

func StatusChangeDescription(oldStatus string, newStatus string) string {
	return fmt.Sprintf("Status: %s → %s", oldStatus, newStatus)
}

func StatusChangeMessage(businessNumber string, oldStatus string, newStatus string) string {
	return fmt.Sprintf("Geschaeft %s: Status geaendert von '%s' zu '%s'", businessNumber, oldStatus, newStatus)
}

func ScheduledMessage(businessNumber string, description string, eventDate *time.Time) string {
	date := "unbekannt"
	if eventDate != nil {
		date = eventDate.Format("02.01.2006")
	}
	return fmt.Sprintf("Geschaeft %s: %s (Datum: %s)", businessNumber, description, date)
}

// DedupKey hashes the natural key of a schedule event. It backs a unique index
// so two overlapping runs cannot both insert the same event.
func DedupKey(businessNumber string, eventType EventType, description string, committeeName string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{businessNumber, string(eventType), description, committeeName}, "\x1f")))
	return hex.EncodeToString(sum[:])
}
