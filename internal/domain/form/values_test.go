package form

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rulesByField(t *FormTemplate, data SubmissionData) map[string]string {
	out := map[string]string{}
	for _, e := range t.ValidateData(data) {
		out[e.Field] = e.Rule
	}
	return out
}

func TestValidateData_RequiredFields(t *testing.T) {
	tmpl := buildTemplate(t, false, textField("a", true), textField("b", false))
	a := fieldByLabel(t, tmpl, "a")
	b := fieldByLabel(t, tmpl, "b")

	errs := tmpl.ValidateData(SubmissionData{b.Key(): "x"})

	assert.Len(t, errs, 1)
	assert.Equal(t, a.Key(), errs[0].Field)
	assert.Equal(t, RuleRequired, errs[0].Rule)

	assert.Empty(t, tmpl.ValidateData(SubmissionData{a.Key(): "y"}))
}

func TestValidateData_EmptyValues(t *testing.T) {
	tmpl := buildTemplate(t, false,
		textField("name", true),
		typedField("agree", FieldTypeCheckbox, true),
		typedField("tags", FieldTypeMultiselect, true, "x", "y"),
	)
	name := fieldByLabel(t, tmpl, "name").Key()
	agree := fieldByLabel(t, tmpl, "agree").Key()
	tags := fieldByLabel(t, tmpl, "tags").Key()

	rules := rulesByField(tmpl, SubmissionData{name: "   ", agree: false, tags: []any{}})

	assert.Equal(t, RuleRequired, rules[name])
	assert.Equal(t, RuleRequired, rules[agree])
	assert.Equal(t, RuleRequired, rules[tags])

	assert.Empty(t, tmpl.ValidateData(SubmissionData{name: "Bob", agree: true, tags: []any{"x", "y"}}))
}

func TestValidateData_Signature(t *testing.T) {
	tmpl := buildTemplate(t, true)

	tests := []struct {
		name  string
		value any
		ok    bool
	}{
		{"missing", nil, false},
		{"false", false, false},
		{"blank", " ", false},
		{"zero", json.Number("0"), false},
		{"true", true, true},
		{"drawn", "data:image/png;base64,AAAA", true},
		{"one", json.Number("1"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := SubmissionData{}
			if tt.value != nil {
				data[SignatureKey] = tt.value
			}
			rules := rulesByField(tmpl, data)
			if tt.ok {
				assert.NotContains(t, rules, SignatureKey)
			} else {
				assert.Equal(t, RuleRequired, rules[SignatureKey])
			}
		})
	}
}

func TestValidateData_FieldTypes(t *testing.T) {
	tmpl := buildTemplate(t, false,
		typedField("text", FieldTypeText, false),
		typedField("num", FieldTypeNumber, false),
		typedField("date", FieldTypeDate, false),
		typedField("time", FieldTypeTime, false),
		typedField("dt", FieldTypeDateTime, false),
		typedField("check", FieldTypeCheckbox, false),
		typedField("drop", FieldTypeDropdown, false, "red", "blue"),
		typedField("radio", FieldTypeRadio, false, "yes", "no"),
		typedField("multi", FieldTypeMultiselect, false, "a", "b"),
	)
	text := fieldByLabel(t, tmpl, "text")
	text.MinLength = intPtr(2)
	text.MaxLength = intPtr(4)
	key := func(label string) string { return fieldByLabel(t, tmpl, label).Key() }

	tests := []struct {
		name  string
		field string
		value any
		rule  string
	}{
		{"text ok", "text", "abc", ""},
		{"text counts runes", "text", "日本語", ""},
		{"text too short", "text", "a", RuleLength},
		{"text too long", "text", "abcde", RuleLength},
		{"text wrong type", "text", json.Number("5"), RuleType},
		{"number json", "num", json.Number("12.50"), ""},
		{"number string", "num", "-3", ""},
		{"number float", "num", 1.5, ""},
		{"number junk", "num", "twelve", RuleType},
		{"number bool", "num", true, RuleType},
		{"date ok", "date", "2024-02-29", ""},
		{"date bad", "date", "2023-02-29", RuleFormat},
		{"time ok", "time", "07:30", ""},
		{"time seconds", "time", "07:30:15", ""},
		{"time bad", "time", "7.30", RuleFormat},
		{"datetime rfc3339", "dt", "2024-05-01T08:00:00Z", ""},
		{"datetime local", "dt", "2024-05-01T08:00", ""},
		{"datetime bad", "dt", "yesterday", RuleFormat},
		{"checkbox ok", "check", false, ""},
		{"checkbox string", "check", "true", RuleType},
		{"dropdown ok", "drop", "red", ""},
		{"dropdown undeclared", "drop", "green", RuleOption},
		{"radio list", "radio", []any{"yes"}, RuleType},
		{"multi ok", "multi", []any{"a", "b"}, ""},
		{"multi undeclared", "multi", []any{"a", "c"}, RuleOption},
		{"multi not list", "multi", "a", RuleType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := key(tt.field)
			rules := rulesByField(tmpl, SubmissionData{k: tt.value})
			if tt.rule == "" {
				assert.NotContains(t, rules, k)
			} else {
				assert.Equal(t, tt.rule, rules[k])
			}
		})
	}
}

func TestValidateData_SingleMultiselect(t *testing.T) {
	tmpl := buildTemplate(t, false, typedField("multi", FieldTypeMultiselect, false, "a", "b"))
	f := fieldByLabel(t, tmpl, "multi")
	f.Multiple = false

	rules := rulesByField(tmpl, SubmissionData{f.Key(): []any{"a", "b"}})
	assert.Equal(t, RuleOption, rules[f.Key()])

	assert.Empty(t, tmpl.ValidateData(SubmissionData{f.Key(): []string{"b"}}))
}
