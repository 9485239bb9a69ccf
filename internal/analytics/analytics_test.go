package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costlens/pkg/contracts/domain"
)

func amt(v int64) *int64 { return &v }

func testEngine() *Engine {
	patterns := []string{
		"（株）", "", "(株)", "", "株式会社", "", "有限会社", "", "(有)", "", "　", " ",
	}
	return NewEngine(patterns, "指定なし")
}

func TestEngine_Variance(t *testing.T) {
	items := []domain.Item{
		{ID: 1, Code: "B.1", Title: "外注費", BudgetAmount: amt(1000), ConfirmedAmount: amt(800)},
		{ID: 2, Code: "B.2", Title: "機材費", BudgetAmount: amt(500), ConfirmedAmount: amt(550)},
		{ID: 3, Code: "B.3", Title: "予備費", BudgetAmount: amt(300)},
	}

	rows := testEngine().Variance(items, "", false)
	require.Len(t, rows, 3)

	// Sorted by descending absolute variance: B.3 (-300), B.1 (-200), B.2 (+50).
	assert.Equal(t, "B.3", rows[0].Code)
	assert.Equal(t, int64(-300), rows[0].Variance)
	assert.Equal(t, -100, rows[0].Pct)

	assert.Equal(t, "B.1", rows[1].Code)
	assert.Equal(t, "外注費", rows[1].Title)
	assert.Equal(t, int64(1000), rows[1].Budget)
	assert.Equal(t, int64(800), rows[1].Confirmed)
	assert.Equal(t, int64(-200), rows[1].Variance)
	assert.Equal(t, -20, rows[1].Pct)

	assert.Equal(t, "B.2", rows[2].Code)
	assert.Equal(t, 10, rows[2].Pct)
}

func TestEngine_Variance_HideFullLoss(t *testing.T) {
	items := []domain.Item{
		{ID: 1, Code: "B.1", BudgetAmount: amt(1000), ConfirmedAmount: amt(800)},
		{ID: 2, Code: "B.2", BudgetAmount: amt(500)},
	}

	rows := testEngine().Variance(items, "", true)

	require.Len(t, rows, 1)
	assert.Equal(t, "B.1", rows[0].Code)
}

func TestEngine_Variance_DeepestValuesOnly(t *testing.T) {
	// The group subtotal on B.1 must not double count its children.
	items := []domain.Item{
		{ID: 1, Code: "B.1", BudgetAmount: amt(1000)},
		{ID: 2, Code: "B.1.1", BudgetAmount: amt(600), ConfirmedAmount: amt(600)},
		{ID: 3, Code: "B.1.2", BudgetAmount: amt(300)},
	}

	rows := testEngine().Variance(items, "", false)

	require.Len(t, rows, 1)
	assert.Equal(t, "B.1", rows[0].Code)
	assert.Equal(t, int64(900), rows[0].Budget)
	assert.Equal(t, int64(600), rows[0].Confirmed)
}

func TestEngine_Variance_MonthFilter(t *testing.T) {
	items := []domain.Item{
		{ID: 1, Code: "B.1", BudgetAmount: amt(100), ConfirmedAmount: amt(90), ConfirmedDate: "2023-04-10"},
		{ID: 2, Code: "B.2", BudgetAmount: amt(200), ConfirmedAmount: amt(210), ConfirmedDate: "2023-05-02"},
	}

	rows := testEngine().Variance(items, "2023-04", false)

	require.Len(t, rows, 1)
	assert.Equal(t, "B.1", rows[0].Code)
}

func TestEngine_MonthlyCashflow(t *testing.T) {
	items := []domain.Item{
		{ID: 1, Code: "A.1", ActualPlannedAmount: amt(500000), PaymentDate: "2023-04-10"},
		{ID: 2, Code: "B.1", ActualPlannedAmount: amt(200000), PaymentDate: "2023-04-20"},
		{ID: 3, Code: "B.2", ActualPlannedAmount: amt(100000), PaymentDate: "2023-05-05"},
		{ID: 4, Code: "B.3", ActualPlannedAmount: amt(999), Title: "収支"},
	}

	rows := testEngine().MonthlyCashflow(items, 1000000)
	require.Len(t, rows, 2)

	april := rows[0]
	assert.Equal(t, "2023-04", april.Month)
	assert.Equal(t, int64(500000), april.Sales)
	assert.Equal(t, int64(200000), april.Cost)
	assert.Equal(t, int64(300000), april.Net)
	assert.Equal(t, int64(1300000), april.Balance)

	may := rows[1]
	assert.Equal(t, "2023-05", may.Month)
	assert.Equal(t, int64(-100000), may.Net)
	assert.Equal(t, int64(1200000), may.Balance, "balance carries forward")
}

func TestEngine_MonthlyCashflow_VerbatimPaymentDate(t *testing.T) {
	items := []domain.Item{
		{ID: 1, Code: "A.1", ActualPlannedAmount: amt(500000), PaymentDate: "2023-04-10"},
		{ID: 2, Code: "B.1", ActualPlannedAmount: amt(200000), PaymentDate: "3月中旬"},
		{ID: 3, Code: "B.2", ActualPlannedAmount: amt(100000), PaymentDate: "4月末か5月頭に支払予定"},
	}

	rows := testEngine().MonthlyCashflow(items, 0)
	require.Len(t, rows, 1, "textual payment dates do not open month buckets")
	assert.Equal(t, "2023-04", rows[0].Month)
	assert.Equal(t, int64(500000), rows[0].Sales)
	assert.Equal(t, int64(0), rows[0].Cost)
}

func TestEngine_MonthlyCashflow_SkipsUnpaidRows(t *testing.T) {
	items := []domain.Item{
		{ID: 1, Code: "B.1", ActualPlannedAmount: amt(100)},
	}

	assert.Empty(t, testEngine().MonthlyCashflow(items, 0))
}

func TestEngine_VendorSummary(t *testing.T) {
	items := []domain.Item{
		{ID: 1, Code: "B.1", Vendor: "（株）テック", ConfirmedAmount: amt(300)},
		{ID: 2, Code: "B.2", Vendor: "株式会社テック", ConfirmedAmount: amt(200), ActualPlannedAmount: amt(150)},
		{ID: 3, Code: "B.3", Vendor: "山田工務店", ConfirmedAmount: amt(400)},
		{ID: 4, Code: "B.4", ConfirmedAmount: amt(50)},
	}

	rows := testEngine().VendorSummary(items, "")
	require.Len(t, rows, 3)

	assert.Equal(t, VendorRow{Vendor: "テック", Actual: 150, Confirmed: 500}, rows[0],
		"corporate suffixes fold into one bucket")
	assert.Equal(t, "山田工務店", rows[1].Vendor)
	assert.Equal(t, VendorRow{Vendor: "指定なし", Confirmed: 50}, rows[2])
}

func TestEngine_VendorSummary_TopTen(t *testing.T) {
	var items []domain.Item
	for i := 0; i < 12; i++ {
		items = append(items, domain.Item{
			ID:              i + 1,
			Code:            "B." + string(rune('a'+i)),
			Vendor:          "vendor" + string(rune('a'+i)),
			ConfirmedAmount: amt(int64(100 + i)),
		})
	}

	rows := testEngine().VendorSummary(items, "")

	assert.Len(t, rows, 10)
	assert.Equal(t, "vendorl", rows[0].Vendor, "highest confirmed total first")
}

func TestEngine_NormalizeVendor(t *testing.T) {
	e := testEngine()

	assert.Equal(t, "テック", e.NormalizeVendor("（株）テック"))
	assert.Equal(t, "テック", e.NormalizeVendor("株式会社 テック"))
	assert.Equal(t, "山田 太郎", e.NormalizeVendor(" 山田　太郎 "))
	assert.Equal(t, "指定なし", e.NormalizeVendor(""))
	assert.Equal(t, "指定なし", e.NormalizeVendor("  株式会社  "))
}

func TestEngine_Quality(t *testing.T) {
	items := []domain.Item{
		{ID: 1, Code: "A.1", DisplayCode: "A.1", Vendor: "X", ConfirmedAmount: amt(900), ConfirmedDate: "2023-04-01", PaymentDate: "2023-04-30", IsPaid: true},
		{ID: 2, Code: "A.1.1", DisplayCode: "A.1.1", ConfirmedAmount: amt(500), ConfirmedDate: "2023-04-02"},
		{ID: 3, Code: "A.1.1.u1", DisplayCode: "A.1.1", ActualPlannedAmount: amt(100)},
		{ID: 4, Code: "B.1", DisplayCode: "B.1", Vendor: "Y", ConfirmedAmount: amt(200)},
		{ID: 5, Code: "B.2", Title: "仕入合計", ConfirmedAmount: amt(9999)},
	}

	report := testEngine().Quality(items)

	assert.Equal(t, 2, report.MissingVendor)
	assert.Equal(t, 1, report.SummaryRowCount)
	assert.Equal(t, 1, report.ActualNoDate)
	assert.Equal(t, 1, report.ConfirmedNoDate)

	require.Len(t, report.Duplicates, 1)
	assert.Equal(t, DuplicateCode{Code: "A.1.1", Count: 2}, report.Duplicates[0])

	assert.Equal(t, 1, report.PaidCount)
	assert.Equal(t, int64(900), report.PaidTotal)
	assert.Equal(t, 2, report.UnpaidConfirmedCount)
	assert.Equal(t, int64(700), report.UnpaidConfirmedTotal)

	require.Len(t, report.TopConfirmed, 3)
	assert.Equal(t, int64(900), *report.TopConfirmed[0].ConfirmedAmount,
		"summary rows are excluded from the top list")
}
