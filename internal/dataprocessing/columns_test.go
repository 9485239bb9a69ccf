package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "costlens/internal/errors"
)

func TestBuildHeaderTokens(t *testing.T) {
	top := []string{"項目CD", "事業開始時予算", "", ""}
	sub := []string{"", "金額（円）", "日付"}

	got := BuildHeaderTokens(top, sub)

	assert.Equal(t, []string{"項目CD", "事業開始時予算__金額（円）", "日付", "col_3"}, got)
}

func TestBuildHeaderTokens_SubLongerThanTop(t *testing.T) {
	got := BuildHeaderTokens([]string{"確定金額"}, []string{"金額", "日付"})
	assert.Equal(t, []string{"確定金額__金額", "日付"}, got)
}

func TestMapColumns_ExactLabels(t *testing.T) {
	tokens := []string{
		"項目CD",
		"内容",
		"事業開始時予算__金額（円）",
		"事業開始時予算__日付",
		"確定金額__金額",
		"確定金額__日付",
		"請求書__支払日",
		"備考",
	}

	cmap, _ := MapColumns(tokens)

	assert.Equal(t, 0, cmap[RoleCode])
	assert.Equal(t, 1, cmap[RoleTitle])
	assert.Equal(t, 2, cmap[RoleBudgetAmount])
	assert.Equal(t, 3, cmap[RoleBudgetDate])
	assert.Equal(t, 4, cmap[RoleConfirmedAmount])
	assert.Equal(t, 5, cmap[RoleConfirmedDate])
	assert.Equal(t, 6, cmap[RolePaymentDate])
	assert.Equal(t, 7, cmap[RoleNote])
}

func TestMapColumns_PartialFallback(t *testing.T) {
	// Labels reworded by the report author still resolve via fragments.
	tokens := []string{
		"項目No",
		"作業内容",
		"協力会社名",
		"当初予算__金額",
		"当初予算__実施日付",
	}

	cmap, _ := MapColumns(tokens)

	assert.Equal(t, 0, cmap[RoleCode])
	assert.Equal(t, 1, cmap[RoleTitle])
	assert.Equal(t, 2, cmap[RoleVendor])
	assert.Equal(t, 3, cmap[RoleBudgetAmount])
	assert.Equal(t, 4, cmap[RoleBudgetDate])
}

func TestMapColumns_DateProximityFallback(t *testing.T) {
	// The 日付 sub-label lost its group label, so only proximity to the
	// paired amount column can place it.
	tokens := []string{
		"項目CD",
		"事業開始時予算__金額（円）",
		"日付",
		"現時点の実施済み及び予定__金額（円）",
		"日付",
	}

	cmap, _ := MapColumns(tokens)

	assert.Equal(t, 2, cmap[RoleBudgetDate])
	assert.Equal(t, 4, cmap[RoleActualDate])
}

func TestMapColumns_UnresolvedWarnings(t *testing.T) {
	cmap, warnings := MapColumns([]string{"項目CD", "内容"})

	assert.True(t, cmap.Has(RoleCode))
	assert.True(t, cmap.Has(RoleTitle))

	require.NotEmpty(t, warnings)
	subjects := make(map[string]bool)
	for _, w := range warnings {
		assert.Equal(t, apperrors.WarnUnresolvedColumn, w.Kind)
		subjects[w.Subject] = true
	}
	assert.True(t, subjects[string(RoleVendor)])
	assert.True(t, subjects[string(RoleBudgetAmount)])
	assert.False(t, subjects[string(RoleCode)])
}

func TestColumnMap_Cell(t *testing.T) {
	cmap := ColumnMap{RoleCode: 0, RoleNote: 5}
	row := []string{" A.1 ", "x"}

	assert.Equal(t, "A.1", cmap.Cell(row, RoleCode))
	assert.Empty(t, cmap.Cell(row, RoleNote), "short rows read as empty")
	assert.Empty(t, cmap.Cell(row, RoleVendor), "unmapped roles read as empty")
}
