package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linguedo/strike-engine/engine"
)

func TestEvaluateTemplate_SubstitutesKnownFields(t *testing.T) {
	out := engine.EvaluateTemplate("Hello ${firstName} ${lastName}!", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
	})
	assert.Equal(t, "Hello Ada Lovelace!", out)
}

func TestEvaluateTemplate_UnresolvedPlaceholdersKeptVerbatim(t *testing.T) {
	out := engine.EvaluateTemplate("Hello ${firstName}, your ${mystery} awaits", map[string]string{
		"firstName": "Ada",
	})
	assert.Equal(t, "Hello Ada, your ${mystery} awaits", out)
}

func TestEvaluateTemplate_RepeatedPlaceholder(t *testing.T) {
	out := engine.EvaluateTemplate("${x} and ${x}", map[string]string{"x": "again"})
	assert.Equal(t, "again and again", out)
}

func TestTemplateFields_CoversDigestVocabulary(t *testing.T) {
	u := &engine.UserRecord{
		Username:         "ada",
		Email:            "ada@example.com",
		FirstName:        "Ada",
		LastName:         "Lovelace",
		MemriseStrike:    2,
		AudioStrike:      1,
		QuizStrike:       0,
		DeductedStrikes:  4,
		DeductedManually: 1,
		VacationsTaken:   3,
	}

	fields := engine.TemplateFields(u, 2, 7)

	assert.Equal(t, "ada", fields["username"])
	assert.Equal(t, "3", fields["totalStrikes"])
	assert.Equal(t, "2", fields["memriseStrike"])
	assert.Equal(t, "4", fields["deductedStrikes"])
	assert.Equal(t, "1", fields["deductedManually"])
	assert.Equal(t, "2", fields["daysOffUsedLastWeek"])
	assert.Equal(t, "7", fields["daysOffLeft"])
}
