package engine

import (
	"regexp"
	"strconv"
)

var templateField = regexp.MustCompile(`\$\{([^}]+)\}`)

// EvaluateTemplate substitutes ${name} placeholders from fields. Unresolved
// placeholders are left verbatim.
func EvaluateTemplate(template string, fields map[string]string) string {
	return templateField.ReplaceAllStringFunc(template, func(match string) string {
		name := templateField.FindStringSubmatch(match)[1]
		if value, ok := fields[name]; ok {
			return value
		}
		return match
	})
}

// TemplateFields builds the substitution map for one user's weekly digest.
func TemplateFields(u *UserRecord, daysOffUsedLastWeek, daysOffLeft int) map[string]string {
	return map[string]string{
		"firstName":           u.FirstName,
		"lastName":            u.LastName,
		"username":            u.Username,
		"email":               u.Email,
		"memriseStrike":       strconv.Itoa(u.MemriseStrike),
		"audioStrike":         strconv.Itoa(u.AudioStrike),
		"quizStrike":          strconv.Itoa(u.QuizStrike),
		"totalStrikes":        strconv.Itoa(u.TotalStrikes()),
		"deductedStrikes":     strconv.Itoa(u.DeductedStrikes),
		"deductedManually":    strconv.Itoa(u.DeductedManually),
		"vacationsTaken":      strconv.Itoa(u.VacationsTaken),
		"daysOffUsedLastWeek": strconv.Itoa(daysOffUsedLastWeek),
		"daysOffLeft":         strconv.Itoa(daysOffLeft),
	}
}
