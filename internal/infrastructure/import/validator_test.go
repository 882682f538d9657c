package sheetimport

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(line int, data map[string]string) *Row {
	return &Row{LineNumber: line, Data: data}
}

func TestFieldRuleBuilder(t *testing.T) {
	floor := decimal.NewFromInt(0)
	rule := Field("price").Required().Decimal().Min(floor).Unique().Warn().Build()

	assert.Equal(t, "price", rule.Column)
	assert.True(t, rule.Required)
	assert.Equal(t, TypeDecimal, rule.Type)
	assert.True(t, rule.MinValue.Equal(floor))
	assert.Nil(t, rule.MaxValue)
	assert.True(t, rule.Unique)
	assert.True(t, rule.Warn)
	assert.Equal(t, TypeString, Field("name").Build().Type)
}

func TestFieldValidator_ValidateRow(t *testing.T) {
	rules := []FieldRule{
		Field("code").Required().Length(1, 5).Unique().Build(),
		Field("qty").Required().Int().Min(decimal.NewFromInt(1)).Max(decimal.NewFromInt(100)).Build(),
		Field("date").Date().Build(),
		Field("active").Bool().Build(),
		Field("doc").Pattern(`^\d{8}$`, "8 digits").Warn().Build(),
	}

	tests := []struct {
		name     string
		data     map[string]string
		verdict  RowVerdict
		errCode  string
		warnCode string
	}{
		{"valid", map[string]string{"code": "A1", "qty": "3", "date": "2024-05-01", "active": "yes", "doc": "12345678"}, RowOK, "", ""},
		{"slash date", map[string]string{"code": "A2", "qty": "3", "date": "01/05/2024"}, RowOK, "", ""},
		{"missing code", map[string]string{"qty": "3"}, RowRejected, ErrCodeImportRequiredField, ""},
		{"not an int", map[string]string{"code": "A3", "qty": "3.5"}, RowRejected, ErrCodeImportInvalidType, ""},
		{"too long", map[string]string{"code": "ABCDEF", "qty": "3"}, RowRejected, ErrCodeImportInvalidLength, ""},
		{"out of range", map[string]string{"code": "A4", "qty": "0"}, RowRejected, ErrCodeImportInvalidRange, ""},
		{"bad date", map[string]string{"code": "A5", "qty": "1", "date": "yesterday"}, RowRejected, ErrCodeImportInvalidType, ""},
		{"bad bool", map[string]string{"code": "A6", "qty": "1", "active": "maybe"}, RowRejected, ErrCodeImportInvalidType, ""},
		{"warning only", map[string]string{"code": "A7", "qty": "1", "doc": "12"}, RowWarning, "", ErrCodeImportPatternMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := NewFieldValidator(rules, 10)
			assert.Equal(t, tc.verdict, v.ValidateRow(row(2, tc.data)))

			if tc.errCode == "" {
				assert.False(t, v.Errors().HasErrors())
			} else {
				require.Len(t, v.Errors().Errors(), 1)
				assert.Equal(t, tc.errCode, v.Errors().Errors()[0].Code)
			}
			if tc.warnCode == "" {
				assert.False(t, v.Warnings().HasErrors())
			} else {
				require.Len(t, v.Warnings().Errors(), 1)
				assert.Equal(t, tc.warnCode, v.Warnings().Errors()[0].Code)
			}
		})
	}
}

func TestFieldValidator_UniqueIgnoresCase(t *testing.T) {
	v := NewFieldValidator([]FieldRule{Field("code").Unique().Build()}, 10)

	assert.Equal(t, RowOK, v.ValidateRow(row(2, map[string]string{"code": "p-1"})))
	assert.Equal(t, RowRejected, v.ValidateRow(row(3, map[string]string{"code": "P-1"})))

	errs := v.Errors().Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeImportDuplicateInFile, errs[0].Code)
	assert.Equal(t, "Row 3, column 'code': duplicate value 'P-1' (first seen in row 2)", errs[0].Error())
}

func TestFieldValidator_Custom(t *testing.T) {
	v := NewFieldValidator([]FieldRule{
		Field("store").Custom(func(value string) error {
			if value != "T01" {
				return errors.New("unknown store")
			}
			return nil
		}).Build(),
	}, 10)

	assert.Equal(t, RowOK, v.ValidateRow(row(2, map[string]string{"store": "T01"})))
	assert.Equal(t, RowRejected, v.ValidateRow(row(3, map[string]string{"store": "X"})))
	assert.Equal(t, []string{"Row 3, column 'store': unknown store"}, v.Errors().Lines())
}

func TestErrorCollection(t *testing.T) {
	ec := NewErrorCollection(2)
	assert.Equal(t, "no errors", ec.String())
	assert.Nil(t, ec.Lines())

	ec.AddRequiredError(2, "code")
	ec.AddTypeError(3, "qty", "int", "x")
	ec.AddLengthError(4, "name", 0, 10)

	assert.Equal(t, 3, ec.TotalCount())
	assert.Len(t, ec.Errors(), 2)
	assert.True(t, ec.IsTruncated())
	assert.Equal(t, []string{
		"Row 2, column 'code': value is required",
		"Row 3, column 'qty': expected int, got 'x'",
	}, ec.Lines())
	assert.Contains(t, ec.String(), "3 error(s) found (showing first 2)")
	assert.Equal(t, "Row 7: broken", NewRowError(7, "", ErrCodeImportValidation, "broken").Error())
}
