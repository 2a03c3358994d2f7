package telegram

import (
	"slices"
)

// AdminChecker knows the operators who receive reconciliation reports.
type AdminChecker struct {
	adminIDs []int64
}

func NewAdminChecker(adminIDs []int64) *AdminChecker {
	return &AdminChecker{
		adminIDs: adminIDs,
	}
}

func (a *AdminChecker) IsAdmin(telegramID int64) bool {
	return slices.Contains(a.adminIDs, telegramID)
}

// AdminIDs returns a copy of the configured operator ids.
func (a *AdminChecker) AdminIDs() []int64 {
	return slices.Clone(a.adminIDs)
}
