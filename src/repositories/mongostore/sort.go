package mongostore

import (
	"sort"

	"papertrading/src/models"
)

func sortNewestFirst(holdings []models.Holding) {
	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].CreatedAt.After(holdings[j].CreatedAt)
	})
}
