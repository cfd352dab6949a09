package reconcile

import "sort"

// Match proposes local candidates for every remote record.
//
// Remote records are processed in input order. A local record consumed by an
// exact match is unavailable to every later remote record of the same run,
// so results depend on input order. Callers should pass remote records in a
// stable order (e.g. as fetched) to keep runs reproducible.
func Match[R Entry, L Entry](remotes []R, locals []L, isMapped func(R) bool, opts Options) []Result[R, L] {
	opts = opts.normalized()

	consumed := make(map[uint]struct{})
	results := make([]Result[R, L], 0, len(remotes))

	for _, remote := range remotes {
		if isMapped != nil && isMapped(remote) {
			results = append(results, Result[R, L]{
				Item:    remote,
				Matches: []Candidate[L]{},
				Status:  StatusMatched,
			})
			continue
		}

		if local, ok := findExact(remote, locals, consumed); ok {
			consumed[local.MatchID()] = struct{}{}
			results = append(results, Result[R, L]{
				Item:    remote,
				Matches: []Candidate[L]{{Item: local, Score: 1}},
				Status:  StatusExact,
			})
			continue
		}

		matches := findFuzzy(remote, locals, consumed, opts)
		status := StatusNone
		if len(matches) > 0 {
			status = StatusMultiple
		}
		results = append(results, Result[R, L]{
			Item:    remote,
			Matches: matches,
			Status:  status,
		})
	}

	return results
}

// findExact returns the first unconsumed local record of the same type that
// shares a title, an original title or an external id with the remote record.
func findExact[R Entry, L Entry](remote R, locals []L, consumed map[uint]struct{}) (L, bool) {
	var zero L
	for _, local := range locals {
		if _, used := consumed[local.MatchID()]; used {
			continue
		}
		if remote.MatchType() != local.MatchType() {
			continue
		}
		if isExact(remote, local) {
			return local, true
		}
	}
	return zero, false
}

// isExact reports whether two records are the same title.
func isExact(a, b Entry) bool {
	if a.MatchTitle() == b.MatchTitle() {
		return true
	}

	ao, bo := a.MatchOriginalTitle(), b.MatchOriginalTitle()
	if ao != "" && bo != "" && ao == bo {
		return true
	}

	aIDs, bIDs := a.MatchExternalIDs(), b.MatchExternalIDs()
	for key, id := range aIDs {
		if id == "" {
			continue
		}
		if other, ok := bIDs[key]; ok && other == id {
			return true
		}
	}
	return false
}

// findFuzzy scores every unconsumed local record regardless of type.
func findFuzzy[R Entry, L Entry](remote R, locals []L, consumed map[uint]struct{}, opts Options) []Candidate[L] {
	matches := []Candidate[L]{}
	for _, local := range locals {
		if _, used := consumed[local.MatchID()]; used {
			continue
		}
		score := Score(remote, local)
		if score >= opts.Threshold {
			matches = append(matches, Candidate[L]{Item: local, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > opts.MaxCandidates {
		matches = matches[:opts.MaxCandidates]
	}
	return matches
}

// Score is the fuzzy similarity between two records: the better of the title
// similarity and, when both sides have one, the original title similarity.
func Score(a, b Entry) float64 {
	score := Similarity(a.MatchTitle(), b.MatchTitle())

	ao, bo := a.MatchOriginalTitle(), b.MatchOriginalTitle()
	if ao != "" && bo != "" {
		score = max(score, Similarity(ao, bo))
	}
	return score
}
