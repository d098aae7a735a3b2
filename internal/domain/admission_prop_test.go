package domain_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/avolkov/eventory/internal/domain"
)

func genPendingBatch() gopter.Gen {
	return gen.IntRange(0, 50).Map(func(n int) []domain.Request {
		out := make([]domain.Request, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, domain.Request{ID: int64(i + 1), EventID: 1, Status: domain.StatusPending})
		}
		return out
	})
}

func TestPlanModerationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every request gets exactly one decision", prop.ForAll(
		func(batch []domain.Request, limit, confirmed int) bool {
			res, err := domain.PlanModeration(batch, domain.StatusConfirmed, limit, confirmed)
			if err != nil {
				return false
			}
			if len(res.Confirmed)+len(res.Rejected) != len(batch) {
				return false
			}
			seen := make(map[int64]bool)
			for _, r := range append(res.Confirmed, res.Rejected...) {
				if seen[r.ID] {
					return false
				}
				seen[r.ID] = true
			}
			for _, r := range batch {
				if !seen[r.ID] {
					return false
				}
			}
			return true
		},
		genPendingBatch(),
		gen.IntRange(0, 30),
		gen.IntRange(0, 30),
	))

	properties.Property("confirmations never exceed the remaining room", prop.ForAll(
		func(batch []domain.Request, limit, confirmed int) bool {
			res, err := domain.PlanModeration(batch, domain.StatusConfirmed, limit, confirmed)
			if err != nil {
				return false
			}
			if limit == 0 {
				// Unlimited: nothing is ever rejected.
				return len(res.Rejected) == 0
			}
			remaining := limit - confirmed
			if remaining < 0 {
				remaining = 0
			}
			return len(res.Confirmed) <= remaining
		},
		genPendingBatch(),
		gen.IntRange(0, 30),
		gen.IntRange(0, 30),
	))

	properties.Property("confirmations fill in batch order", prop.ForAll(
		func(batch []domain.Request, limit, confirmed int) bool {
			res, err := domain.PlanModeration(batch, domain.StatusConfirmed, limit, confirmed)
			if err != nil {
				return false
			}
			for i, r := range res.Confirmed {
				if batch[i].ID != r.ID {
					return false
				}
			}
			return true
		},
		genPendingBatch(),
		gen.IntRange(1, 30),
		gen.IntRange(0, 30),
	))

	properties.Property("reject target rejects everything", prop.ForAll(
		func(batch []domain.Request, limit, confirmed int) bool {
			res, err := domain.PlanModeration(batch, domain.StatusRejected, limit, confirmed)
			if err != nil {
				return false
			}
			return len(res.Confirmed) == 0 && len(res.Rejected) == len(batch)
		},
		genPendingBatch(),
		gen.IntRange(0, 30),
		gen.IntRange(0, 30),
	))

	properties.TestingRun(t)
}
