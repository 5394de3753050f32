package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Gun2717/StudentManagement/internal/types"
)

func fixture() []types.Student {
	return []types.Student{
		{ID: "SV001", FullName: "Nguyen Van An", Major: "Computer Science", Gender: types.GenderMale, GPA: 3.2},
		{ID: "SV002", FullName: "Tran Thi Binh", Major: "Economics", Gender: types.GenderFemale, GPA: 3.8},
		{ID: "SV003", FullName: "Le Van Cuong", Major: "computer engineering", Gender: types.GenderMale, GPA: 1.5},
		{ID: "SV004", FullName: "Pham Thi Dung", Major: "Economics", Gender: types.GenderFemale, GPA: 3.2},
		{ID: "SV005", FullName: "Hoang An", Major: "Law", Gender: types.GenderOther, GPA: 2.6},
	}
}

func ids(students []types.Student) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.ID)
	}
	return out
}

func TestSearchByName_CaseInsensitive(t *testing.T) {
	got := SearchByName(fixture(), "VAN")
	assert.Equal(t, []string{"SV001", "SV003"}, ids(got))

	assert.Len(t, SearchByName(fixture(), ""), 5)
	assert.Empty(t, SearchByName(fixture(), "zzz"))
}

func TestSearchByMajor(t *testing.T) {
	got := SearchByMajor(fixture(), "computer")
	assert.Equal(t, []string{"SV001", "SV003"}, ids(got))
}

func TestTopByGPA_DescendingAndStable(t *testing.T) {
	got := TopByGPA(fixture(), 2.5)
	assert.Equal(t, []string{"SV002", "SV001", "SV004", "SV005"}, ids(got))

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].GPA, got[i].GPA)
	}

	assert.Empty(t, TopByGPA(fixture(), 3.9))
}

func TestTopByGPA_DoesNotMutateInput(t *testing.T) {
	in := fixture()
	_ = TopByGPA(in, 0)
	assert.Equal(t, ids(fixture()), ids(in))
}

func TestStatistics(t *testing.T) {
	stats := Statistics(fixture())

	assert.Equal(t, 5, stats.Count)
	assert.InDelta(t, (3.2+3.8+1.5+3.2+2.6)/5, stats.AverageGPA, 1e-9)
	assert.Equal(t, 3.8, stats.MaxGPA)
	assert.Equal(t, 1.5, stats.MinGPA)
	assert.Equal(t, 2, stats.MaleCount)
	assert.Equal(t, 2, stats.FemaleCount)
}

func TestStatistics_Empty(t *testing.T) {
	assert.Equal(t, types.Statistics{}, Statistics(nil))
	assert.Equal(t, types.Statistics{}, Statistics([]types.Student{}))
}

func TestClassificationCounts(t *testing.T) {
	got := ClassificationCounts(fixture())

	assert.Equal(t, []types.ClassificationCount{
		{Classification: "Excellent", Count: 1},
		{Classification: "Good", Count: 2},
		{Classification: "Fair", Count: 1},
		{Classification: "Average", Count: 0},
		{Classification: "Weak", Count: 1},
	}, got)
}

func TestWeightedGPA(t *testing.T) {
	a := types.Grade{Credits: 3}
	a.SetScores(9.5, 9.5, 9.5) // A+ → 4.0
	b := types.Grade{Credits: 1}
	b.SetScores(7.5, 7.5, 7.5) // B → 3.0
	failed := types.Grade{Credits: 4}
	failed.SetScores(1, 1, 1) // F, ignored

	assert.InDelta(t, (4.0*3+3.0*1)/4, WeightedGPA([]types.Grade{a, b, failed}), 1e-9)
	assert.Equal(t, 0.0, WeightedGPA([]types.Grade{failed}))
	assert.Equal(t, 0.0, WeightedGPA(nil))
}
