package sheetimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType represents the expected type of a cell
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
	TypeBool    FieldType = "bool"
)

// FieldRule defines validation rules for a column
type FieldRule struct {
	Column      string
	Type        FieldType
	Required    bool
	MinLength   int
	MaxLength   int
	MinValue    *decimal.Decimal
	MaxValue    *decimal.Decimal
	Pattern     *regexp.Regexp
	PatternDesc string
	DateFormats []string
	Unique      bool
	// Warn reports violations as warnings; the row still counts as imported.
	Warn       bool
	CustomFunc func(value string) error
}

// FieldRuleBuilder helps build field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field creates a new field rule builder
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{
		rule: FieldRule{
			Column:      column,
			Type:        TypeString,
			DateFormats: []string{time.DateOnly, "02/01/2006"},
		},
	}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Int sets the field type to integer
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Decimal sets the field type to decimal
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// Date sets the field type to date
func (b *FieldRuleBuilder) Date() *FieldRuleBuilder {
	b.rule.Type = TypeDate
	return b
}

// Bool sets the field type to boolean
func (b *FieldRuleBuilder) Bool() *FieldRuleBuilder {
	b.rule.Type = TypeBool
	return b
}

// Length sets min and max length; zero disables a bound
func (b *FieldRuleBuilder) Length(min, max int) *FieldRuleBuilder {
	b.rule.MinLength = min
	b.rule.MaxLength = max
	return b
}

// Min sets the minimum numeric value
func (b *FieldRuleBuilder) Min(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

// Max sets the maximum numeric value
func (b *FieldRuleBuilder) Max(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MaxValue = &v
	return b
}

// Pattern sets a regex pattern for validation
func (b *FieldRuleBuilder) Pattern(pattern, description string) *FieldRuleBuilder {
	b.rule.Pattern = regexp.MustCompile(pattern)
	b.rule.PatternDesc = description
	return b
}

// Unique marks the field as unique within the file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Warn downgrades violations of this rule to warnings
func (b *FieldRuleBuilder) Warn() *FieldRuleBuilder {
	b.rule.Warn = true
	return b
}

// Custom sets a custom validation function
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

// Build returns the built field rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator validates rows against a rule set
type FieldValidator struct {
	rules       []FieldRule
	uniqueCheck map[string]map[string]int // column -> value -> first row number
	errors      *ErrorCollection
	warnings    *ErrorCollection
}

// NewFieldValidator creates a validator. Rules are applied in the given order.
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:       rules,
		uniqueCheck: make(map[string]map[string]int),
		errors:      NewErrorCollection(maxErrors),
		warnings:    NewErrorCollection(maxErrors),
	}
}

// RowVerdict is the outcome of validating one row
type RowVerdict int

const (
	RowOK RowVerdict = iota
	RowWarning
	RowRejected
)

// ValidateRow checks every rule against a row. A row with any error-level
// violation is rejected; otherwise any warning marks it RowWarning.
func (v *FieldValidator) ValidateRow(row *Row) RowVerdict {
	rejected, warned := false, false

	for _, rule := range v.rules {
		target := v.errors
		if rule.Warn {
			target = v.warnings
		}
		if v.validateField(row, rule, target) {
			continue
		}
		if rule.Warn {
			warned = true
		} else {
			rejected = true
		}
	}

	switch {
	case rejected:
		return RowRejected
	case warned:
		return RowWarning
	default:
		return RowOK
	}
}

// validateField reports the first violation of rule into target and returns false
func (v *FieldValidator) validateField(row *Row, rule FieldRule, target *ErrorCollection) bool {
	value := row.Get(rule.Column)
	line := row.LineNumber

	if value == "" {
		if rule.Required {
			target.AddRequiredError(line, rule.Column)
			return false
		}
		return true
	}

	if err := validateType(value, rule); err != nil {
		target.AddTypeError(line, rule.Column, string(rule.Type), value)
		return false
	}

	if n := len([]rune(value)); (rule.MaxLength > 0 && n > rule.MaxLength) || (rule.MinLength > 0 && n < rule.MinLength) {
		target.AddLengthError(line, rule.Column, rule.MinLength, rule.MaxLength)
		return false
	}

	if rule.Type == TypeInt || rule.Type == TypeDecimal {
		if msg := checkRange(value, rule.MinValue, rule.MaxValue); msg != "" {
			target.AddRangeError(line, rule.Column, msg, value)
			return false
		}
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		target.AddPatternError(line, rule.Column, rule.PatternDesc, value)
		return false
	}

	if rule.Unique {
		key := strings.ToUpper(value)
		seen := v.uniqueCheck[rule.Column]
		if seen == nil {
			seen = make(map[string]int)
			v.uniqueCheck[rule.Column] = seen
		}
		if firstRow, exists := seen[key]; exists {
			target.Add(NewRowErrorWithValue(line, rule.Column, ErrCodeImportDuplicateInFile,
				fmt.Sprintf("duplicate value '%s' (first seen in row %d)", value, firstRow), value))
			return false
		}
		seen[key] = line
	}

	if rule.CustomFunc != nil {
		if err := rule.CustomFunc(value); err != nil {
			target.Add(NewRowErrorWithValue(line, rule.Column, ErrCodeImportValidation, err.Error(), value))
			return false
		}
	}
	return true
}

func validateType(value string, rule FieldRule) error {
	switch rule.Type {
	case TypeInt:
		_, err := strconv.ParseInt(value, 10, 64)
		return err
	case TypeDecimal:
		_, err := decimal.NewFromString(value)
		return err
	case TypeDate:
		for _, layout := range rule.DateFormats {
			if _, err := time.Parse(layout, value); err == nil {
				return nil
			}
		}
		return fmt.Errorf("invalid date: %s", value)
	case TypeBool:
		switch strings.ToLower(value) {
		case "true", "false", "1", "0", "yes", "no", "y", "n", "si", "sí":
			return nil
		}
		return fmt.Errorf("invalid boolean value: %s", value)
	}
	return nil
}

// checkRange returns a message when value falls outside [min, max]
func checkRange(value string, min, max *decimal.Decimal) string {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return "not a number"
	}
	if min != nil && d.LessThan(*min) {
		return fmt.Sprintf("must be at least %s", min.String())
	}
	if max != nil && d.GreaterThan(*max) {
		return fmt.Sprintf("must be at most %s", max.String())
	}
	return ""
}

// Errors returns the error-level violations
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}

// Warnings returns the warning-level violations
func (v *FieldValidator) Warnings() *ErrorCollection {
	return v.warnings
}
