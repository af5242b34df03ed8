package postgres

import (
	"encoding/json"

	"github.com/mailsig/sigsync/domain"
)

func marshalStrings(values []string) []byte {
	if len(values) == 0 {
		return []byte("[]")
	}
	b, err := json.Marshal(values)
	if err != nil {
		return []byte("[]")
	}
	return b
}

func marshalFailures(failures map[string]string) []byte {
	if len(failures) == 0 {
		return []byte("{}")
	}
	b, err := json.Marshal(failures)
	if err != nil {
		return []byte("{}")
	}
	return b
}

func unmarshalOutcome(processed, skipped, failed []byte) *domain.SyncOutcome {
	outcome := domain.NewSyncOutcome()
	_ = json.Unmarshal(processed, &outcome.Processed)
	_ = json.Unmarshal(skipped, &outcome.Skipped)
	_ = json.Unmarshal(failed, &outcome.Failed)
	if outcome.Failed == nil {
		outcome.Failed = make(map[string]string)
	}
	return outcome
}
