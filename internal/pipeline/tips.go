package pipeline

import (
	"fmt"
	"sort"

	"github.com/piggymobile/piggy/internal/model"

	"github.com/shopspring/decimal"
)

// MaxTips caps the number of tips GenerateTips returns.
const MaxTips = 15

// Tip category labels for rules not tied to an expense category.
const (
	TipModality = "MODALITY"
	TipBudget   = "BUDGET"
	TipGeneral  = "GENERAL"
)

func pct(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// CategoryTotals groups expenses by category, largest total first.
func CategoryTotals(expenses []model.ExpenseRecord) []model.CategoryTotal {
	byCat := make(map[model.Category]*model.CategoryTotal)
	for _, e := range expenses {
		ct, ok := byCat[e.Category]
		if !ok {
			ct = &model.CategoryTotal{Category: e.Category, Total: decimal.Zero}
			byCat[e.Category] = ct
		}
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++
	}

	out := make([]model.CategoryTotal, 0, len(byCat))
	for _, ct := range byCat {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// GenerateTips builds personalised savings tips from the month's budget and
// its per-category spend. Results are ordered by priority, then by potential
// saving, and capped at MaxTips.
func GenerateTips(b model.BudgetRecord, totals []model.CategoryTotal) []model.Tip {
	var tips []model.Tip

	balance := b.Balance()
	savingPct := percentOf(balance, b.Income)

	totalVariable := decimal.Zero
	for _, ct := range totals {
		totalVariable = totalVariable.Add(ct.Total)
	}

	tips = append(tips, categoryTips(totals, totalVariable)...)
	tips = append(tips, modalityTips(b, totalVariable, balance, savingPct)...)
	tips = append(tips, fixedBudgetTips(b)...)

	if balance.LessThan(b.Income.Mul(pct("0.10"))) {
		tips = append(tips, model.Tip{
			Title:    "Low savings alert",
			Category: TipBudget,
			Message: fmt.Sprintf("Your current savings are very low (%d%%). "+
				"Try the 50/30/20 rule: 50%% needs, 30%% wants, 20%% savings.", roundPct(savingPct)),
			PotentialSaving: decimal.Zero,
			Priority:        model.PriorityHigh,
		})
	}

	tips = append(tips, genericTips(b, totalVariable)...)

	sort.SliceStable(tips, func(i, j int) bool {
		if tips[i].Priority != tips[j].Priority {
			return tips[i].Priority < tips[j].Priority
		}
		return tips[i].PotentialSaving.GreaterThan(tips[j].PotentialSaving)
	})
	if len(tips) > MaxTips {
		tips = tips[:MaxTips]
	}
	return tips
}

func categoryTips(totals []model.CategoryTotal, totalVariable decimal.Decimal) []model.Tip {
	sorted := make([]model.CategoryTotal, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total.GreaterThan(sorted[j].Total)
	})
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}

	var tips []model.Tip
	for _, ct := range sorted {
		share := percentOf(ct.Total, totalVariable)
		amount := whole(ct.Total)
		tip := model.Tip{Category: string(ct.Category), PotentialSaving: decimal.Zero}

		switch ct.Category {
		case model.Food:
			switch {
			case share > 40:
				tip.Title = "Food is your largest expense"
				tip.Message = fmt.Sprintf("You spend %s on food (%d%% of variable spending). "+
					"Cook at home more, buy at local markets and skip daily delivery.", amount, roundPct(share))
				tip.PotentialSaving = ct.Total.Mul(pct("0.30"))
				tip.Priority = model.PriorityHigh
			case share > 25:
				tip.Title = "Food"
				tip.Message = fmt.Sprintf("Your food spend is %s. Prepare meals for the week "+
					"and bring lunch to work or class. Estimated saving: 25-30%%.", amount)
				tip.PotentialSaving = ct.Total.Mul(pct("0.25"))
				tip.Priority = model.PriorityMedium
			default:
				continue
			}
		case model.Transport:
			switch {
			case share > 30:
				tip.Title = "Transport spending is high"
				tip.Message = fmt.Sprintf("You spend %s on transport. Use public transport, "+
					"share rides or cycle short distances.", amount)
				tip.PotentialSaving = ct.Total.Mul(pct("0.40"))
				tip.Priority = model.PriorityHigh
			case share > 20:
				tip.Title = "Transport"
				tip.Message = fmt.Sprintf("Transport: %s. Plan efficient routes and group errands "+
					"into a single trip.", amount)
				tip.PotentialSaving = ct.Total.Mul(pct("0.20"))
				tip.Priority = model.PriorityMedium
			default:
				continue
			}
		case model.Entertainment:
			switch {
			case share > 25:
				tip.Title = "Entertainment spending is high"
				tip.Message = fmt.Sprintf("You spend %s on entertainment. Free options: public events, "+
					"parks, outdoor activities, game nights at home.", amount)
				tip.PotentialSaving = ct.Total.Mul(pct("0.50"))
				tip.Priority = model.PriorityHigh
			case share > 15:
				tip.Title = "Entertainment"
				tip.Message = fmt.Sprintf("Entertainment: %s. Limit outings to one or two a month "+
					"and cancel subscriptions you do not use.", amount)
				tip.PotentialSaving = ct.Total.Mul(pct("0.30"))
				tip.Priority = model.PriorityMedium
			default:
				continue
			}
		case model.Services:
			if share <= 20 {
				continue
			}
			tip.Title = "Services"
			tip.Message = fmt.Sprintf("You spend %s on extra services. Review streaming, apps and gym "+
				"and cancel what you do not use. Typical saving: 80-150 a month.", amount)
			tip.PotentialSaving = decimal.NewFromInt(115)
			tip.Priority = model.PriorityMedium
		case model.Health:
			tip.Title = "Health"
			tip.Message = fmt.Sprintf("Health spending: %s. Do not neglect it, but consider generics, "+
				"free preventive checkups and insurance.", amount)
			tip.Priority = model.PriorityLow
		case model.Other:
			if share <= 30 {
				continue
			}
			tip.Title = "Ant expenses detected"
			tip.Message = fmt.Sprintf("%s in uncategorised spending. Log everything for a week "+
				"to find where your money goes.", amount)
			tip.PotentialSaving = ct.Total.Mul(pct("0.40"))
			tip.Priority = model.PriorityHigh
		default:
			continue
		}
		tips = append(tips, tip)
	}
	return tips
}

func modalityTips(b model.BudgetRecord, totalVariable, balance decimal.Decimal, savingPct float64) []model.Tip {
	var tips []model.Tip
	switch b.Modality {
	case model.Aggressive:
		tips = append(tips, model.Tip{
			Title:    "Aggressive mode",
			Category: TipModality,
			Message: "You are in aggressive mode. Goal: save 30% or more of your income. " +
				"Challenge: 30 days without unnecessary spending.",
			PotentialSaving: decimal.Zero,
			Priority:        model.PriorityHigh,
		})
		if totalVariable.GreaterThan(b.Income.Mul(pct("0.20"))) {
			tips = append(tips, model.Tip{
				Title:    "Aggressive mode alert",
				Category: TipModality,
				Message: fmt.Sprintf("You have spent %s on variable expenses. "+
					"In aggressive mode keep them under %s.", whole(totalVariable), whole(b.Income.Mul(pct("0.15")))),
				PotentialSaving: decimal.Zero,
				Priority:        model.PriorityHigh,
			})
		}
	case model.Balanced:
		tips = append(tips, model.Tip{
			Title:    "Balanced mode",
			Category: TipModality,
			Message: "Balance between saving and quality of life. Goal: save 15% of your income. " +
				"Keep spending mindful without giving up everything.",
			PotentialSaving: decimal.Zero,
			Priority:        model.PriorityMedium,
		})
		if savingPct < 10 {
			gap := b.Income.Mul(pct("0.15")).Sub(balance)
			tips = append(tips, model.Tip{
				Title:    "Improve your savings",
				Category: TipModality,
				Message: fmt.Sprintf("You currently save %d%%. Balanced mode aims for 15%%. "+
					"Reduce spending by %s.", roundPct(savingPct), whole(gap)),
				PotentialSaving: gap,
				Priority:        model.PriorityMedium,
			})
		}
	case model.Contingency:
		fund := b.Income.Mul(pct("0.20"))
		tips = append(tips, model.Tip{
			Title:    "Emergency fund",
			Category: TipModality,
			Message: fmt.Sprintf("Goal: build up %s (20%% of your income) for emergencies. "+
				"This month try to save at least %s.", whole(fund), whole(fund.Div(decimal.NewFromInt(3)))),
			PotentialSaving: decimal.Zero,
			Priority:        model.PriorityHigh,
		})
	default:
		// no modality-specific advice
	}
	return tips
}

func fixedBudgetTips(b model.BudgetRecord) []model.Tip {
	var tips []model.Tip
	if b.Rent.GreaterThan(b.Income.Mul(pct("0.30"))) {
		tips = append(tips, model.Tip{
			Title:    "High rent",
			Category: TipBudget,
			Message: fmt.Sprintf("Rent is %d%% of your income. Ideal: 25-30%%. "+
				"Consider moving or finding a roommate.", roundPct(percentOf(b.Rent, b.Income))),
			PotentialSaving: b.Rent.Sub(b.Income.Mul(pct("0.25"))),
			Priority:        model.PriorityMedium,
		})
	}
	if b.Transport.GreaterThan(b.Income.Mul(pct("0.15"))) {
		tips = append(tips, model.Tip{
			Title:    "High fixed transport",
			Category: TipBudget,
			Message: fmt.Sprintf("Fixed transport: %s. Consider public transport, cycling "+
				"or living closer to work or school.", whole(b.Transport)),
			PotentialSaving: b.Transport.Mul(pct("0.30")),
			Priority:        model.PriorityLow,
		})
	}
	return tips
}

func genericTips(b model.BudgetRecord, totalVariable decimal.Decimal) []model.Tip {
	general := func(title, msg string, saving decimal.Decimal, p model.Priority) model.Tip {
		return model.Tip{Title: title, Category: TipGeneral, Message: msg, PotentialSaving: saving, Priority: p}
	}
	return []model.Tip{
		general("Avoid impulse purchases",
			"Wait 24 hours before buying. If you still want it a day later, buy it. "+
				"This removes most impulse purchases.",
			totalVariable.Mul(pct("0.15")), model.PriorityLow),
		general("Shopping list",
			"Always write a list before going to the store, and never shop hungry.",
			b.Other.Mul(pct("0.30")), model.PriorityMedium),
		general("Find your ant expenses",
			"A daily coffee, snacks and short rides add up to about 1,050 a month. "+
				"Which small expenses do you have?",
			decimal.NewFromInt(1050), model.PriorityMedium),
		general("Save on utilities",
			"Turn off unused lights, unplug devices and use a fan instead of AC when possible.",
			decimal.NewFromInt(75), model.PriorityLow),
		general("Cook at home",
			"Eating out costs three to four times more than cooking. "+
				"Cooking five more days a month saves 700-900.",
			decimal.NewFromInt(800), model.PriorityMedium),
		general("Review subscriptions",
			"Cancel the streaming, music, gym and app subscriptions you did not use last month.",
			decimal.NewFromInt(150), model.PriorityMedium),
		general("Use discount apps",
			"Digital coupons and promotion days save 5-15% on purchases.",
			b.Other.Mul(pct("0.10")), model.PriorityLow),
		general("One-week challenge",
			"Spend only on essentials for seven days. No cravings, outings or purchases just because.",
			decimal.NewFromInt(300), model.PriorityLow),
		general("Visualize your goal",
			"Use a picture of your savings goal as wallpaper and ask whether each purchase brings you closer.",
			decimal.Zero, model.PriorityLow),
		general("Envelope method",
			"Withdraw cash at the start of the month and split it into envelopes by category. "+
				"When an envelope is empty, that category is done.",
			decimal.Zero, model.PriorityLow),
	}
}

func whole(d decimal.Decimal) string {
	return d.Round(0).String()
}

func roundPct(p float64) int {
	return int(decimal.NewFromFloat(p).Round(0).IntPart())
}
