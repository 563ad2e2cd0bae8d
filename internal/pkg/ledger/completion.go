package ledger

import "github.com/MarvinHoffmann/DropGate/internal/pkg/apperr"

// IsComplete reports whether the actor has at least one successful record for
// every required action type, regardless of recency. A storage failure is
// surfaced as StorageUnavailable, never as a silent true or false.
func (s *Service) IsComplete(actorID string, requiredActionTypes []string) (bool, error) {
	if actorID == "" {
		return false, apperr.InvalidInput("actor id is required")
	}

	done, err := s.records.DistinctSuccessfulActionTypes(actorID)
	if err != nil {
		return false, apperr.StorageUnavailable("completion lookup failed", err)
	}

	seen := make(map[string]struct{}, len(done))
	for _, t := range done {
		seen[t] = struct{}{}
	}
	for _, required := range requiredActionTypes {
		if _, ok := seen[required]; !ok {
			return false, nil
		}
	}
	return true, nil
}
