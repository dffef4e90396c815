// Package scheduler apportions a brand's weekly posting cadence across its
// content pillars. The planner is a pure function over the config snapshot;
// the same snapshot always yields the same plan.
package scheduler

import (
	"fmt"
	"sort"

	"github.com/bingitech/pressroom/internal/brand"
)

// Slot is one planned post: a platform and the pillar that should feed it.
type Slot struct {
	Platform string
	Pillar   string
}

// PlatformPlan is a platform's weekly slot allocation.
type PlatformPlan struct {
	Platform string
	Slots    []Slot
}

// WeeklyPlan apportions every platform's posts-per-week budget across the
// config's pillars.
type WeeklyPlan struct {
	ConfigVersion string
	Platforms     []PlatformPlan
}

// TotalSlots counts the posts planned for the week across all platforms.
func (p *WeeklyPlan) TotalSlots() int {
	n := 0
	for _, pp := range p.Platforms {
		n += len(pp.Slots)
	}
	return n
}

// BuildWeeklyPlan allocates each platform's weekly post count to pillars
// proportionally to pillar weight, using largest-remainder rounding so the
// allocation is exact and deterministic. Pillars with zero weight still get
// slots when every weight is zero (even split); otherwise they only receive
// leftover slots after weighted shares are honored.
func BuildWeeklyPlan(cfg *brand.Config) (*WeeklyPlan, error) {
	if cfg == nil {
		return nil, fmt.Errorf("weekly plan requires a brand config snapshot")
	}

	plan := &WeeklyPlan{ConfigVersion: cfg.Version}
	for _, platform := range cfg.Platforms {
		counts := apportion(cfg.Pillars, platform.PostsPerWeek)
		plan.Platforms = append(plan.Platforms, PlatformPlan{
			Platform: platform.Name,
			Slots:    interleave(platform.Name, cfg.Pillars, counts),
		})
	}
	return plan, nil
}

// apportion distributes n slots over pillars by weight using the largest
// remainder method. Ties resolve in declaration order, so the result is
// stable across runs.
func apportion(pillars []brand.Pillar, n int) []int {
	counts := make([]int, len(pillars))
	if n <= 0 || len(pillars) == 0 {
		return counts
	}

	totalWeight := 0.0
	for _, p := range pillars {
		totalWeight += p.Weight
	}
	if totalWeight == 0 {
		// No weights at all: spread evenly, earlier pillars first.
		for i := 0; i < n; i++ {
			counts[i%len(pillars)]++
		}
		return counts
	}

	type remainder struct {
		index int
		frac  float64
	}
	assigned := 0
	remainders := make([]remainder, 0, len(pillars))
	for i, p := range pillars {
		exact := p.Weight / totalWeight * float64(n)
		whole := int(exact)
		counts[i] = whole
		assigned += whole
		remainders = append(remainders, remainder{index: i, frac: exact - float64(whole)})
	}

	sort.SliceStable(remainders, func(a, b int) bool {
		return remainders[a].frac > remainders[b].frac
	})
	for i := 0; i < n-assigned; i++ {
		counts[remainders[i%len(remainders)].index]++
	}
	return counts
}

// interleave orders a platform's slots round-robin across pillars so the
// week alternates themes instead of posting one pillar in a block.
func interleave(platform string, pillars []brand.Pillar, counts []int) []Slot {
	remaining := make([]int, len(counts))
	copy(remaining, counts)

	var slots []Slot
	for {
		emitted := false
		for i, p := range pillars {
			if remaining[i] == 0 {
				continue
			}
			slots = append(slots, Slot{Platform: platform, Pillar: p.Name})
			remaining[i]--
			emitted = true
		}
		if !emitted {
			return slots
		}
	}
}
