package registration

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type (
	// DayPoint is one day of the registration trend series.
	DayPoint struct {
		Date          string `json:"date"` // yyyy-MM-dd, UTC
		Registrations int    `json:"registrations"`
	}

	RolePoint struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	SpecializationCount struct {
		Specialization string `json:"specialization"`
		Count          int    `json:"count"`
	}

	ExperienceCount struct {
		Years string `json:"years"`
		Count int    `json:"count"`
	}

	// Summary is the chart-ready aggregation of the whole registration list.
	Summary struct {
		Total         int `json:"total"`
		Mentors       int `json:"mentors"`
		Beneficiaries int `json:"beneficiaries"`
		Today         int `json:"today"`
		LastWeek      int `json:"last_week"`

		// GrowthRate is the week-over-week change in percent with 1 decimal;
		// "0" when the previous week had no registrations.
		GrowthRate string `json:"growth_rate"`

		Daily              []DayPoint            `json:"daily"` // last 30 days, oldest first
		RoleDistribution   []RolePoint           `json:"role_distribution"`
		TopSpecializations []SpecializationCount `json:"top_specializations"`
		ExperienceLevels   []ExperienceCount     `json:"experience_levels"`
	}
)

// Summarize aggregates regs into chart-ready summaries. Pure: identical input
// and clock yield identical output.
func Summarize(regs []Registration, now time.Time) Summary {
	now = now.UTC()
	s := Summary{Total: len(regs)}

	today := now.Format(dateLayout)
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	daily := make(map[string]int, 30)
	specs := make(map[string]int)
	levels := make(map[string]int)
	var lastWeek, prevWeek int

	for _, reg := range regs {
		created := reg.CreatedAt.UTC()
		day := created.Format(dateLayout)

		switch reg.Role {
		case RoleMentor:
			s.Mentors++
		case RoleBeneficiary:
			s.Beneficiaries++
		}
		if day == today {
			s.Today++
		}
		if !created.Before(weekAgo) {
			lastWeek++
		} else if !created.Before(twoWeeksAgo) {
			prevWeek++
		}
		daily[day]++

		if reg.IsMentor() {
			for _, spec := range strings.Split(reg.Specializations, ",") {
				if spec = strings.TrimSpace(spec); spec != "" {
					specs[spec]++
				}
			}
			if reg.YearsOfExperience != "" {
				levels[reg.YearsOfExperience]++
			}
		}
	}

	s.LastWeek = lastWeek
	s.GrowthRate = "0"
	if prevWeek > 0 {
		rate := float64(lastWeek-prevWeek) / float64(prevWeek) * 100
		s.GrowthRate = strconv.FormatFloat(rate, 'f', 1, 64)
	}

	// last 30 days, oldest first
	s.Daily = make([]DayPoint, 0, 30)
	for i := 29; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format(dateLayout)
		s.Daily = append(s.Daily, DayPoint{Date: day, Registrations: daily[day]})
	}

	s.RoleDistribution = []RolePoint{
		{Name: RoleLabel(RoleMentor), Value: s.Mentors},
		{Name: RoleLabel(RoleBeneficiary), Value: s.Beneficiaries},
	}

	s.TopSpecializations = topSpecializations(specs, 5)
	s.ExperienceLevels = experienceLevels(levels)
	return s
}

func topSpecializations(specs map[string]int, limit int) []SpecializationCount {
	top := make([]SpecializationCount, 0, len(specs))
	for spec, count := range specs {
		top = append(top, SpecializationCount{Specialization: spec, Count: count})
	}
	// highest count first; ties broken by name for a stable order
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Specialization < top[j].Specialization
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top
}

func experienceLevels(levels map[string]int) []ExperienceCount {
	out := make([]ExperienceCount, 0, len(levels))
	for years, count := range levels {
		out = append(out, ExperienceCount{Years: years, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Years < out[j].Years })
	return out
}
