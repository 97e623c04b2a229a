package ledger

import (
	"github.com/ykvlv/sidekick-bot/internal/domain"
)

// Outcome is the result of one requested completion.
type Outcome int

const (
	Awarded Outcome = iota
	AlreadyCompleted
	InvalidIndex
)

func (o Outcome) String() string {
	switch o {
	case Awarded:
		return "awarded"
	case AlreadyCompleted:
		return "already-completed"
	default:
		return "invalid-index"
	}
}

// ItemResult reports what happened to one requested index.
type ItemResult struct {
	Index       int
	Outcome     Outcome
	Description string
	Source      domain.TaskSource
	Points      int
}

// CompletionReport is the per-item outcome list plus the sum newly awarded.
type CompletionReport struct {
	Items   []ItemResult
	Awarded int
}

// CompleteTasks marks the listed 1-based positions of the combined listing
// (defaults then active custom) as done. Positions are resolved to stable
// references once, up front, so the batch is applied consistently even when
// a position repeats. Invalid positions are reported per item and never
// abort the batch.
func (l *Ledger) CompleteTasks(s *domain.Snapshot, userID int64, indices []int) (CompletionReport, error) {
	u, err := s.User(userID)
	if err != nil {
		return CompletionReport{}, err
	}
	l.RollDailyEpoch(u)
	views := listing(u)

	var rep CompletionReport
	for _, idx := range indices {
		if idx < 1 || idx > len(views) {
			rep.Items = append(rep.Items, ItemResult{Index: idx, Outcome: InvalidIndex})
			continue
		}
		item := l.completeRef(u, views[idx-1].Ref)
		item.Index = idx
		rep.Items = append(rep.Items, item)
		if item.Outcome == Awarded {
			rep.Awarded += item.Points
		}
	}
	return rep, nil
}

// completeRef applies a single completion to a stable reference.
func (l *Ledger) completeRef(u *domain.User, ref domain.TaskRef) ItemResult {
	switch ref.Source {
	case domain.SourceDefault:
		if ref.DefaultIndex < 0 || ref.DefaultIndex >= len(u.Defaults) {
			return ItemResult{Outcome: InvalidIndex}
		}
		d := u.Defaults[ref.DefaultIndex]
		res := ItemResult{Description: d.Description, Source: domain.SourceDefault}
		if u.Epoch.Has(d.Description) {
			res.Outcome = AlreadyCompleted
			return res
		}
		u.Epoch.Completed = append(u.Epoch.Completed, d.Description)
		u.Award(d.Difficulty)
		res.Outcome, res.Points = Awarded, d.Difficulty
		return res

	case domain.SourceCustom:
		t := u.FindCustom(ref.CustomID)
		if t == nil || !t.Active() {
			return ItemResult{Outcome: InvalidIndex}
		}
		res := ItemResult{Description: t.Description, Source: domain.SourceCustom}
		if t.Completed {
			res.Outcome = AlreadyCompleted
			return res
		}
		t.Completed = true
		u.Award(t.Difficulty)
		res.Outcome, res.Points = Awarded, t.Difficulty
		return res
	}
	return ItemResult{Outcome: InvalidIndex}
}

// PointsToday sums difficulties completed in the current daily epoch plus
// completed active custom tasks.
func (l *Ledger) PointsToday(u *domain.User) int {
	l.RollDailyEpoch(u)
	total := 0
	for _, d := range u.Defaults {
		if u.Epoch.Has(d.Description) {
			total += d.Difficulty
		}
	}
	for _, t := range u.ActiveCustom() {
		if t.Completed {
			total += t.Difficulty
		}
	}
	return total
}
