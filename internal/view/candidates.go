package view

import "github.com/emiliopalmerini/runboard/internal/domain"

// Candidates lists the columns that can still be added: one metric token per
// metric key and one param token per declaration key found in experiments,
// minus the ones already selected. Order is first seen, metrics before params
// within each experiment.
func Candidates(experiments []*domain.Experiment, selected []string) []string {
	seen := make(map[string]struct{}, len(selected))
	for _, token := range selected {
		seen[token] = struct{}{}
	}

	var candidates []string
	propose := func(token string) {
		if _, ok := seen[token]; ok {
			return
		}
		seen[token] = struct{}{}
		candidates = append(candidates, token)
	}

	for _, exp := range experiments {
		if exp == nil {
			continue
		}
		for _, key := range exp.MetricNames() {
			propose(Token(KindMetric, key))
		}
		for _, key := range exp.ParamNames() {
			propose(Token(KindParam, key))
		}
	}
	return candidates
}
