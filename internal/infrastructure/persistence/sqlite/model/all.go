package model

// All lists every model in migration order.
func All() []any {
	return []any{
		&User{},
		&TrackedBusiness{},
		&BusinessNote{},
		&BusinessEvent{},
		&Alert{},
		&MonitoringCandidate{},
		&CachedBusiness{},
		&Canton{},
		&Party{},
		&ParlGroup{},
		&Parliamentarian{},
		&Committee{},
		&CommitteeMembership{},
		&Vote{},
		&Voting{},
		&VotePrediction{},
		&JobState{},
	}
}
