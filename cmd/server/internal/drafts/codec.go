package drafts

import (
	"encoding/json"
	"fmt"

	"github.com/portfoliobuilder/intake/cmd/server/internal/intake"
)

func encode(draft *intake.PendingDraft) ([]byte, error) {
	return json.Marshal(draft)
}

// Anything that no longer decodes is reported as expired session state so the
// visitor is sent back to the form.
func decode(data []byte) (*intake.PendingDraft, error) {
	var draft intake.PendingDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("%w: %w", intake.ErrExpiredSessionState, err)
	}

	return &draft, nil
}
