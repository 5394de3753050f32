// Package grading holds the derived-value rules of the student records
// domain: GPA classification, the weighted course total, the letter grade
// derived from that total and the grade point a letter contributes to a
// GPA roll-up.
//
// Everything in here is a pure function of its arguments. There is no
// I/O, no clock and no shared state, so the tables below can be pinned
// down exactly by unit tests.
//
// TWO TABLES, NOT ONE:
// ────────────────────
// LetterGrade (score → letter) and GradePoint (letter → point) look like
// halves of a single table but they are not inverses of each other. Each
// is hardcoded on its own and must stay that way.
package grading

import "time"

// Classification labels, best first.
const (
	Excellent = "Excellent"
	Good      = "Good"
	Fair      = "Fair"
	Average   = "Average"
	Weak      = "Weak"
)

// Classifications lists every label in descending order.
var Classifications = []string{Excellent, Good, Fair, Average, Weak}

// Score weights for the course total. They sum to 1.0.
const (
	MidtermWeight  = 0.3
	PracticeWeight = 0.1
	FinalWeight    = 0.6
)

// PassingScore is the lowest total that counts as a passed course.
const PassingScore = 4.0

// DateLayout is the display format for dates (dd/MM/yyyy).
const DateLayout = "02/01/2006"

// Classify buckets a GPA. Each bucket includes its lower bound:
//
//	gpa >= 3.6         → Excellent
//	3.2 <= gpa < 3.6   → Good
//	2.5 <= gpa < 3.2   → Fair
//	2.0 <= gpa < 2.5   → Average
//	otherwise          → Weak
func Classify(gpa float64) string {
	switch {
	case gpa >= 3.6:
		return Excellent
	case gpa >= 3.2:
		return Good
	case gpa >= 2.5:
		return Fair
	case gpa >= 2.0:
		return Average
	default:
		return Weak
	}
}

// ComputeTotalScore returns the weighted course total on the 0–10 scale:
//
//	midterm*0.3 + practice*0.1 + final*0.6
func ComputeTotalScore(midterm, final, practice float64) float64 {
	return midterm*MidtermWeight + practice*PracticeWeight + final*FinalWeight
}

// LetterGrade maps a course total to its letter. Thresholds are checked
// from the highest down and the first match wins.
func LetterGrade(total float64) string {
	switch {
	case total >= 9.0:
		return "A+"
	case total >= 8.5:
		return "A"
	case total >= 8.0:
		return "B+"
	case total >= 7.0:
		return "B"
	case total >= 6.5:
		return "C+"
	case total >= 5.5:
		return "C"
	case total >= 5.0:
		return "D+"
	case total >= 4.0:
		return "D"
	default:
		return "F"
	}
}

// GradePoint returns the 4.0-scale point for a letter grade. Unknown
// letters (including "F" and "") are worth 0.0.
func GradePoint(letter string) float64 {
	switch letter {
	case "A+", "A":
		return 4.0
	case "B+":
		return 3.5
	case "B":
		return 3.0
	case "C+":
		return 2.5
	case "C":
		return 2.0
	case "D+":
		return 1.5
	case "D":
		return 1.0
	default:
		return 0.0
	}
}

// Passed reports whether a course total is a pass.
func Passed(total float64) bool {
	return total >= PassingScore
}

// Age is the difference in calendar years between dob and today.
// Month and day are deliberately ignored, so someone born in December
// is already counted a year older in January.
func Age(dob, today time.Time) int {
	return today.Year() - dob.Year()
}

// FormatDate renders a date as dd/MM/yyyy.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}
