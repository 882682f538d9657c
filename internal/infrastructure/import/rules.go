package sheetimport

import (
	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/shopspring/decimal"
)

// Schema is the set of columns a workbook of one job type must carry
type Schema struct {
	Headers []string
	Rules   []FieldRule
}

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
)

const productCodePattern = `^[A-Za-z0-9\-_.]+$`

var schemas = map[bulk.JobType]Schema{
	bulk.JobTypeProducts: {
		Headers: []string{"code", "name", "price"},
		Rules: []FieldRule{
			Field("code").Required().Length(1, 30).Pattern(productCodePattern, "a product code").Unique().Build(),
			Field("name").Required().Length(1, 200).Build(),
			Field("price").Required().Decimal().Min(zero).Build(),
			Field("minimumStock").Int().Min(zero).Build(),
			Field("active").Bool().Build(),
			Field("category").Length(0, 100).Warn().Build(),
			Field("description").Length(0, 500).Warn().Build(),
		},
	},
	bulk.JobTypeStock: {
		Headers: []string{"productCode", "quantity"},
		Rules: []FieldRule{
			Field("productCode").Required().Pattern(productCodePattern, "a product code").Unique().Build(),
			Field("quantity").Required().Decimal().Min(zero).Build(),
			Field("unitCost").Required().Decimal().Min(zero).Warn().Build(),
		},
	},
	bulk.JobTypeSales: {
		Headers: []string{"saleNumber", "saleDate", "productCode", "quantity", "unitPrice"},
		Rules: []FieldRule{
			Field("saleNumber").Required().Length(1, 30).Build(),
			Field("saleDate").Required().Date().Build(),
			Field("productCode").Required().Pattern(productCodePattern, "a product code").Build(),
			Field("quantity").Required().Decimal().Min(one).Build(),
			Field("unitPrice").Required().Decimal().Min(zero).Build(),
			Field("customerDocument").Pattern(`^\d{8}(\d{3})?$`, "an 8 or 11 digit document").Warn().Build(),
		},
	},
	bulk.JobTypeCreditNotes: {
		Headers: []string{"noteNumber", "saleNumber", "date", "amount"},
		Rules: []FieldRule{
			Field("noteNumber").Required().Length(1, 30).Unique().Build(),
			Field("saleNumber").Required().Length(1, 30).Build(),
			Field("date").Required().Date().Build(),
			Field("amount").Required().Decimal().Min(zero).Build(),
			Field("reason").Required().Length(0, 250).Warn().Build(),
		},
	},
	bulk.JobTypePurchases: {
		Headers: []string{"purchaseNumber", "date", "productCode", "quantity", "unitCost"},
		Rules: []FieldRule{
			Field("purchaseNumber").Required().Length(1, 30).Build(),
			Field("date").Required().Date().Build(),
			Field("productCode").Required().Pattern(productCodePattern, "a product code").Build(),
			Field("quantity").Required().Decimal().Min(one).Build(),
			Field("unitCost").Required().Decimal().Min(zero).Build(),
			Field("supplier").Required().Length(0, 200).Warn().Build(),
		},
	},
	bulk.JobTypeTransfers: {
		Headers: []string{"productCode", "quantity"},
		Rules: []FieldRule{
			Field("productCode").Required().Pattern(productCodePattern, "a product code").Unique().Build(),
			Field("quantity").Required().Decimal().Min(one).Build(),
			Field("notes").Length(0, 250).Warn().Build(),
		},
	},
}

// SchemaFor returns the column schema for a job type
func SchemaFor(jobType bulk.JobType) (Schema, bool) {
	s, ok := schemas[jobType]
	return s, ok
}
