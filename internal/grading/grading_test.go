package grading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Boundaries(t *testing.T) {
	cases := []struct {
		gpa  float64
		want string
	}{
		{4.0, Excellent},
		{3.6, Excellent},
		{3.599999, Good},
		{3.2, Good},
		{3.19, Fair},
		{2.5, Fair},
		{2.49, Average},
		{2.0, Average},
		{1.999, Weak},
		{0.0, Weak},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.gpa), "gpa=%v", tc.gpa)
	}
}

func TestClassify_AlwaysKnownLabel(t *testing.T) {
	for g := 0.0; g <= 4.0; g += 0.01 {
		assert.Contains(t, Classifications, Classify(g))
	}
}

func TestComputeTotalScore(t *testing.T) {
	total := ComputeTotalScore(8, 7, 6)
	assert.InDelta(t, 7.2, total, 1e-9)
	assert.Equal(t, "B", LetterGrade(total))

	assert.InDelta(t, 10.0, ComputeTotalScore(10, 10, 10), 1e-9)
	assert.Equal(t, 0.0, ComputeTotalScore(0, 0, 0))
	// the final exam carries the most weight
	assert.InDelta(t, 6.0, ComputeTotalScore(0, 10, 0), 1e-9)
	assert.InDelta(t, 3.0, ComputeTotalScore(10, 0, 0), 1e-9)
	assert.InDelta(t, 1.0, ComputeTotalScore(0, 0, 10), 1e-9)
}

func TestLetterGrade_Table(t *testing.T) {
	cases := []struct {
		total float64
		want  string
	}{
		{10, "A+"}, {9.0, "A+"},
		{8.99, "A"}, {8.5, "A"},
		{8.49, "B+"}, {8.0, "B+"},
		{7.99, "B"}, {7.0, "B"},
		{6.99, "C+"}, {6.5, "C+"},
		{6.49, "C"}, {5.5, "C"},
		{5.49, "D+"}, {5.0, "D+"},
		{4.99, "D"}, {4.0, "D"},
		{3.99, "F"}, {0, "F"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, LetterGrade(tc.total), "total=%v", tc.total)
	}
}

func TestGradePoint_Table(t *testing.T) {
	cases := map[string]float64{
		"A+": 4.0, "A": 4.0,
		"B+": 3.5, "B": 3.0,
		"C+": 2.5, "C": 2.0,
		"D+": 1.5, "D": 1.0,
		"F": 0.0, "": 0.0, "Z": 0.0,
	}

	for letter, want := range cases {
		assert.Equal(t, want, GradePoint(letter), "letter=%q", letter)
	}
}

func TestPassed(t *testing.T) {
	assert.True(t, Passed(4.0))
	assert.False(t, Passed(3.999))
}

func TestAge_IgnoresMonthAndDay(t *testing.T) {
	dob := time.Date(2003, time.December, 31, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 23, Age(dob, today))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2003, time.May, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "15/05/2003", FormatDate(d))
}
