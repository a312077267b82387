package parliament

// BusinessDetails is the cached business metadata carried on every tracking row.
// An empty string means the value is unknown.
type BusinessDetails struct {
	Title                  string
	Description            string
	Status                 string
	BusinessType           string
	Author                 string
	AuthorFaction          string
	SubmittedText          string
	Reasoning              string
	FederalCouncilResponse string
	FederalCouncilProposal string
	FirstCouncil           string
}

// MergeUpstream applies the periodic sync policy: for every field, upstream
// wins when it carries a non-empty value, otherwise the stored value is kept.
//
//	Title, Description, Status, BusinessType, Author, AuthorFaction,
//	SubmittedText, Reasoning, FederalCouncilResponse, FederalCouncilProposal,
//	FirstCouncil: overwrite if incoming != "".
func MergeUpstream(existing BusinessDetails, incoming BusinessDetails) BusinessDetails {
	return BusinessDetails{
		Title:                  preferNonEmpty(incoming.Title, existing.Title),
		Description:            preferNonEmpty(incoming.Description, existing.Description),
		Status:                 preferNonEmpty(incoming.Status, existing.Status),
		BusinessType:           preferNonEmpty(incoming.BusinessType, existing.BusinessType),
		Author:                 preferNonEmpty(incoming.Author, existing.Author),
		AuthorFaction:          preferNonEmpty(incoming.AuthorFaction, existing.AuthorFaction),
		SubmittedText:          preferNonEmpty(incoming.SubmittedText, existing.SubmittedText),
		Reasoning:              preferNonEmpty(incoming.Reasoning, existing.Reasoning),
		FederalCouncilResponse: preferNonEmpty(incoming.FederalCouncilResponse, existing.FederalCouncilResponse),
		FederalCouncilProposal: preferNonEmpty(incoming.FederalCouncilProposal, existing.FederalCouncilProposal),
		FirstCouncil:           preferNonEmpty(incoming.FirstCouncil, existing.FirstCouncil),
	}
}

// FillMissing applies the backfill policy used right after a business starts
// being tracked: only empty stored fields take the incoming value.
func FillMissing(existing BusinessDetails, incoming BusinessDetails) BusinessDetails {
	return MergeUpstream(incoming, existing)
}

func preferNonEmpty(preferred string, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}
