// Package query implements search and aggregation over a student
// collection that has already been read from the store.
//
// Every function takes the full slice and returns a new one; the input is
// never modified and the relative order of the input is preserved unless
// a function says otherwise.
package query

import (
	"sort"
	"strings"

	"github.com/Gun2717/StudentManagement/internal/grading"
	"github.com/Gun2717/StudentManagement/internal/types"
)

// SearchByName returns students whose full name contains sub,
// ignoring case. An empty sub matches everybody.
func SearchByName(all []types.Student, sub string) []types.Student {
	return filterContains(all, sub, func(s types.Student) string { return s.FullName })
}

// SearchByMajor returns students whose major contains sub, ignoring case.
func SearchByMajor(all []types.Student, sub string) []types.Student {
	return filterContains(all, sub, func(s types.Student) string { return s.Major })
}

func filterContains(all []types.Student, sub string, field func(types.Student) string) []types.Student {
	key := strings.ToLower(sub)
	out := make([]types.Student, 0, len(all))
	for _, s := range all {
		if strings.Contains(strings.ToLower(field(s)), key) {
			out = append(out, s)
		}
	}
	return out
}

// TopByGPA returns students with GPA >= minGPA, highest GPA first.
// Students with equal GPA keep their order from all.
func TopByGPA(all []types.Student, minGPA float64) []types.Student {
	out := make([]types.Student, 0, len(all))
	for _, s := range all {
		if s.GPA >= minGPA {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GPA > out[j].GPA
	})
	return out
}

// Statistics aggregates GPA and gender counts. An empty input yields the
// zero Statistics rather than a division by zero.
func Statistics(all []types.Student) types.Statistics {
	stats := types.Statistics{Count: len(all)}
	if len(all) == 0 {
		return stats
	}

	sum := 0.0
	stats.MaxGPA = all[0].GPA
	stats.MinGPA = all[0].GPA
	for _, s := range all {
		sum += s.GPA
		if s.GPA > stats.MaxGPA {
			stats.MaxGPA = s.GPA
		}
		if s.GPA < stats.MinGPA {
			stats.MinGPA = s.GPA
		}
		switch s.Gender {
		case types.GenderMale:
			stats.MaleCount++
		case types.GenderFemale:
			stats.FemaleCount++
		}
	}
	stats.AverageGPA = sum / float64(len(all))

	return stats
}

// ClassificationCounts returns how many students fall in each GPA
// bucket, best bucket first. Every bucket is present, even when empty.
func ClassificationCounts(all []types.Student) []types.ClassificationCount {
	counts := make(map[string]int, len(grading.Classifications))
	for _, s := range all {
		counts[grading.Classify(s.GPA)]++
	}

	out := make([]types.ClassificationCount, 0, len(grading.Classifications))
	for _, c := range grading.Classifications {
		out = append(out, types.ClassificationCount{Classification: c, Count: counts[c]})
	}
	return out
}

// WeightedGPA rolls course results up into a 4.0-scale GPA: the mean of
// each passed grade's GradePoint weighted by its credits. Failed courses
// do not count. Returns 0 when there are no passed credits.
func WeightedGPA(grades []types.Grade) float64 {
	points := 0.0
	credits := 0
	for _, g := range grades {
		if !g.Passed() || g.Credits <= 0 {
			continue
		}
		points += g.GradePoint() * float64(g.Credits)
		credits += g.Credits
	}
	if credits == 0 {
		return 0.0
	}
	return points / float64(credits)
}
