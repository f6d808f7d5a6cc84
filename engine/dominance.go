package engine

import "git.fiblab.net/sim/scenario/query"

// 保留不被其他行程支配的行程，保持原有顺序
func keepNonDominated(its []*query.Itinerary, dominates func(a, b *query.Itinerary) bool) []*query.Itinerary {
	result := make([]*query.Itinerary, 0, len(its))
	for i, b := range its {
		dominated := false
		for j, a := range its {
			if i != j && dominates(a, b) {
				dominated = true
				break
			}
		}
		if !dominated {
			result = append(result, b)
		}
	}
	return result
}

// 出发更晚且到达更早；时间相同时换乘更少
func fastestDominates(a, b *query.Itinerary) bool {
	if a.StartTime < b.StartTime || a.EndTime > b.EndTime {
		return false
	}
	if a.StartTime > b.StartTime || a.EndTime < b.EndTime {
		return true
	}
	return a.Transfers < b.Transfers
}

// 出发时间、到达时间、换乘次数、广义成本四个准则
// 成本比较使用放宽函数：b的成本不超过relax(a的成本)时不被a支配
func paretoDominates(relax query.RelaxFunction) func(a, b *query.Itinerary) bool {
	return func(a, b *query.Itinerary) bool {
		if a.StartTime < b.StartTime || a.EndTime > b.EndTime || a.Transfers > b.Transfers {
			return false
		}
		if !relax.IsNone() {
			return b.GeneralizedCost > relax.Relax(a.GeneralizedCost)
		}
		if a.GeneralizedCost > b.GeneralizedCost {
			return false
		}
		return a.StartTime > b.StartTime || a.EndTime < b.EndTime ||
			a.Transfers < b.Transfers || a.GeneralizedCost < b.GeneralizedCost
	}
}
