package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/luminacrm/lumina/internal/entity"
)

func lead() entity.Lead {
	return entity.Lead{
		ID:      "1",
		Name:    "Ada Lovelace",
		Email:   "ada@analytical.example",
		Company: "Analytical Engines",
		Source:  entity.SourceReferral,
		Status:  entity.StatusContacted,
		Value:   5000,
	}
}

func rule(field string, op Operator, value string) Rule {
	return Rule{ID: "r", Field: field, Operator: op, Value: value}
}

func TestMatchesStatusEqualsIsCaseInsensitive(t *testing.T) {
	assert.True(t, rule("status", OpEquals, "contacted").Matches(lead()))
	assert.True(t, rule("status", OpEquals, "Contacted").Matches(lead()))
	assert.True(t, rule("status", OpEquals, " CONTACTED ").Matches(lead()))
	assert.False(t, rule("status", OpEquals, "new").Matches(lead()))
}

func TestMatchesContains(t *testing.T) {
	assert.True(t, rule("company", OpContains, "engines").Matches(lead()))
	assert.True(t, rule("name", OpContains, "LOVE").Matches(lead()))
	assert.False(t, rule("company", OpContains, "widgets").Matches(lead()))
}

func TestMatchesNumeric(t *testing.T) {
	assert.True(t, rule("value", OpGT, "1000").Matches(lead()))
	assert.False(t, rule("value", OpGT, "5000").Matches(lead()))
	assert.True(t, rule("value", OpLT, "10000").Matches(lead()))
	assert.True(t, rule("value", OpEquals, "5000").Matches(lead()))
	assert.True(t, rule("value", OpEquals, "5000.0").Matches(lead()))
}

func TestMatchesNonNumericValueIsNonMatch(t *testing.T) {
	assert.False(t, rule("value", OpGT, "abc").Matches(lead()))
	assert.False(t, rule("value", OpLT, "").Matches(lead()))
}

func TestMatchesUnknownFieldIsNonMatch(t *testing.T) {
	assert.False(t, rule("email", OpContains, "ada").Matches(lead()))
	assert.False(t, rule("id", OpEquals, "1").Matches(lead()))
}

func TestNewRuleDefault(t *testing.T) {
	r := NewRule()
	assert.Equal(t, "status", r.Field)
	assert.Equal(t, OpEquals, r.Operator)
	assert.Equal(t, "New", r.Value)
	assert.NotEmpty(t, r.ID)
}

func TestSetFieldResetsOperatorAndValue(t *testing.T) {
	r := NewRule()
	r.SetField("value")
	assert.Equal(t, "value", r.Field)
	assert.Equal(t, OpGT, r.Operator)
	assert.Equal(t, "", r.Value)

	r.SetField("source")
	assert.Equal(t, OpEquals, r.Operator)
	assert.Equal(t, "Website", r.Value)

	// Switching between fields of the same type still resets the value;
	// "Referral" is not a status and would match nothing.
	r.Value = "Referral"
	r.SetField("status")
	assert.Equal(t, OpEquals, r.Operator)
	assert.Equal(t, "New", r.Value)
}

func TestSetFieldUnknownIsNoop(t *testing.T) {
	r := NewRule()
	r.SetField("email")
	assert.Equal(t, "status", r.Field)
}

func TestMatchesSearch(t *testing.T) {
	assert.True(t, MatchesSearch(lead(), ""))
	assert.True(t, MatchesSearch(lead(), "   "))
	assert.True(t, MatchesSearch(lead(), "ada"))
	assert.True(t, MatchesSearch(lead(), "ANALYTICAL"))
	assert.True(t, MatchesSearch(lead(), "engines"))
	assert.False(t, MatchesSearch(lead(), "babbage"))
}

func TestMatchCombinesRulesAndSearchWithAnd(t *testing.T) {
	rules := []Rule{
		rule("status", OpEquals, "Contacted"),
		rule("value", OpGT, "1000"),
	}
	assert.True(t, Match(lead(), rules, "ada"))
	assert.False(t, Match(lead(), rules, "babbage"))
	assert.False(t, Match(lead(), append(rules, rule("source", OpEquals, "Website")), "ada"))
}

func TestApplyMonotonicity(t *testing.T) {
	leads := []entity.Lead{
		{ID: "1", Name: "A", Status: entity.StatusNew, Value: 100},
		{ID: "2", Name: "B", Status: entity.StatusNew, Value: 2000},
		{ID: "3", Name: "C", Status: entity.StatusLost, Value: 3000},
	}

	none := Apply(leads, nil, "")
	assert.Len(t, none, 3)

	one := Apply(leads, []Rule{rule("status", OpEquals, "New")}, "")
	assert.Len(t, one, 2)

	// Adding a rule can only shrink the result.
	two := Apply(leads, []Rule{rule("status", OpEquals, "New"), rule("value", OpGT, "500")}, "")
	assert.Len(t, two, 1)
	assert.Equal(t, "2", two[0].ID)

	// Order of the input is preserved.
	assert.Equal(t, "1", one[0].ID)
	assert.Equal(t, "2", one[1].ID)
}
