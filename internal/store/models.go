package store

import (
	"encoding/json"
	"fmt"

	"github.com/ykvlv/sidekick-bot/internal/domain"
)

const (
	metaLastDailyReset  = "last_daily_reset"
	metaLastWeeklyReset = "last_weekly_reset"
)

// encodeUser serializes a user record into its stored document form.
func encodeUser(u *domain.User) (string, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode user %d: %w", u.ID, err)
	}
	return string(b), nil
}

// decodeUser parses a stored document. Older documents may lack the
// collections; they are normalized to empty values.
func decodeUser(id int64, doc string) (*domain.User, error) {
	var u domain.User
	if err := json.Unmarshal([]byte(doc), &u); err != nil {
		return nil, fmt.Errorf("decode user %d: %w", id, err)
	}
	u.ID = id
	if u.Custom == nil {
		u.Custom = []domain.CustomTask{}
	}
	if u.Epoch.Completed == nil {
		u.Epoch.Completed = []string{}
	}
	for i := range u.Custom {
		if u.Custom[i].State == "" {
			u.Custom[i].State = domain.TaskActive
			if u.Custom[i].DeletedAt != nil {
				u.Custom[i].State = domain.TaskDeleted
			}
		}
	}
	return &u, nil
}

func metaPairs(m domain.Meta) map[string]string {
	return map[string]string{
		metaLastDailyReset:  m.LastDailyReset,
		metaLastWeeklyReset: m.LastWeeklyReset,
	}
}

func applyMeta(m *domain.Meta, key, value string) {
	switch key {
	case metaLastDailyReset:
		m.LastDailyReset = value
	case metaLastWeeklyReset:
		m.LastWeeklyReset = value
	}
}
