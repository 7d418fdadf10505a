package pipeline

import (
	"github.com/piggymobile/piggy/internal/model"

	"github.com/shopspring/decimal"
)

var nearLimitRatio = decimal.RequireFromString("0.80")

// CheckDailyLimit compares today's spend with the suggested daily limit.
// Both flags stay false when there is no limit.
func CheckDailyLimit(suggested, spentToday decimal.Decimal) model.LimitAlert {
	if !suggested.IsPositive() {
		return model.LimitAlert{}
	}
	return model.LimitAlert{
		Near: spentToday.GreaterThanOrEqual(suggested.Mul(nearLimitRatio)),
		Over: spentToday.GreaterThan(suggested),
	}
}
