package dataprocessing

import (
	"fmt"
	"strings"

	apperrors "costlens/internal/errors"
)

// Role identifies the canonical meaning of a mapped column.
type Role string

const (
	RoleCode            Role = "code"
	RoleTitle           Role = "title"
	RoleVendor          Role = "vendor"
	RoleBudgetAmount    Role = "budget_amount"
	RoleBudgetDate      Role = "budget_date"
	RoleActualAmount    Role = "actual_amount"
	RoleActualDate      Role = "actual_date"
	RoleConfirmedAmount Role = "confirmed_amount"
	RoleConfirmedDate   Role = "confirmed_date"
	RolePaymentDate     Role = "payment_date"
	RoleNote            Role = "note"
	RoleDeliveryDate    Role = "delivery_date"
	RolePONumber        Role = "po_number"
)

// allRoles is the resolution order; earlier roles claim columns first.
var allRoles = []Role{
	RoleCode, RoleTitle, RoleVendor,
	RoleBudgetAmount, RoleBudgetDate,
	RoleActualAmount, RoleActualDate,
	RoleConfirmedAmount, RoleConfirmedDate,
	RolePaymentDate, RoleNote, RoleDeliveryDate, RolePONumber,
}

// exactLabels maps a fully-joined header token to its role. These are the
// labels the source reports use verbatim.
var exactLabels = map[string]Role{
	"項目CD":                 RoleCode,
	"内容":                   RoleTitle,
	"事業開始時予算__金額（円）":       RoleBudgetAmount,
	"事業開始時予算__日付":          RoleBudgetDate,
	"現時点の実施済み及び予定__金額（円）":  RoleActualAmount,
	"現時点の実施済み及び予定__日付":     RoleActualDate,
	"確定金額__金額":             RoleConfirmedAmount,
	"確定金額__日付":             RoleConfirmedDate,
	"請求書__支払日":             RolePaymentDate,
	"備考":                   RoleNote,
	"納品日":                  RoleDeliveryDate,
	"発注書番号":                RolePONumber,
	"協力会社__売上げの場合：売り先\n仕入れの場合：仕入れ先": RoleVendor,
}

// partialLabels are substring fragments tried when no exact label matched.
// Each entry lists the fragments that must all appear in the token.
var partialLabels = []struct {
	role      Role
	fragments []string
}{
	{RoleCode, []string{"項目"}},
	{RoleTitle, []string{"内容"}},
	{RoleVendor, []string{"協力会社"}},
	{RoleBudgetAmount, []string{"予算", "金額"}},
	{RoleBudgetDate, []string{"予算", "日付"}},
	{RoleActualAmount, []string{"現時点", "金額"}},
	{RoleActualDate, []string{"現時点", "日付"}},
	{RoleConfirmedAmount, []string{"確定", "金額"}},
	{RoleConfirmedDate, []string{"確定", "日付"}},
	{RolePaymentDate, []string{"支払"}},
	{RoleNote, []string{"備考"}},
	{RoleDeliveryDate, []string{"納品"}},
	{RolePONumber, []string{"発注"}},
}

// dateProximity pairs each date role with its amount role for the
// proximity fallback: exports sometimes drop the 日付 sub-label but keep
// the date values immediately right of their amount column.
var dateProximity = map[Role]Role{
	RoleBudgetDate:    RoleBudgetAmount,
	RoleActualDate:    RoleActualAmount,
	RoleConfirmedDate: RoleConfirmedAmount,
}

// ColumnMap holds the resolved column index per role. A missing role means
// the corresponding item field stays nil/empty for every row.
type ColumnMap map[Role]int

// Has reports whether the role was resolved.
func (m ColumnMap) Has(role Role) bool {
	_, ok := m[role]
	return ok
}

// Cell returns the trimmed cell text for the role in the given row, or ""
// when the role is unmapped or the row is short.
func (m ColumnMap) Cell(row []string, role Role) string {
	idx, ok := m[role]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// BuildHeaderTokens joins the two header rows into one token per column:
// group label and sub label joined with "__", whichever is present when the
// other is blank, or a synthetic col_<i> placeholder when both are blank.
func BuildHeaderTokens(top, sub []string) []string {
	n := len(top)
	if len(sub) > n {
		n = len(sub)
	}
	tokens := make([]string, n)
	for i := 0; i < n; i++ {
		var topText, subText string
		if i < len(top) {
			topText = strings.TrimSpace(top[i])
		}
		if i < len(sub) {
			subText = strings.TrimSpace(sub[i])
		}
		switch {
		case topText != "" && subText != "":
			tokens[i] = topText + "__" + subText
		case topText != "":
			tokens[i] = topText
		case subText != "":
			tokens[i] = subText
		default:
			tokens[i] = fmt.Sprintf("col_%d", i)
		}
	}
	return tokens
}

// MapColumns resolves header tokens to column roles. Resolution order per
// role: exact label, then substring fragments, then (for date roles only)
// the nearest unclaimed 日付 column right of the paired amount column.
// Unresolved roles are reported as warnings, never as errors.
func MapColumns(tokens []string) (ColumnMap, []apperrors.Warning) {
	cmap := make(ColumnMap)
	claimed := make(map[int]bool)

	for i, token := range tokens {
		if role, ok := exactLabels[token]; ok && !cmap.Has(role) {
			cmap[role] = i
			claimed[i] = true
		}
	}

	for _, pl := range partialLabels {
		if cmap.Has(pl.role) {
			continue
		}
		for i, token := range tokens {
			if claimed[i] {
				continue
			}
			if containsAll(token, pl.fragments) {
				cmap[pl.role] = i
				claimed[i] = true
				break
			}
		}
	}

	for _, dateRole := range []Role{RoleBudgetDate, RoleActualDate, RoleConfirmedDate} {
		amountRole := dateProximity[dateRole]
		if cmap.Has(dateRole) || !cmap.Has(amountRole) {
			continue
		}
		for i := cmap[amountRole] + 1; i < len(tokens); i++ {
			if claimed[i] {
				continue
			}
			if strings.Contains(tokens[i], "日付") {
				cmap[dateRole] = i
				claimed[i] = true
				break
			}
		}
	}

	var warnings []apperrors.Warning
	for _, role := range allRoles {
		if !cmap.Has(role) {
			warnings = append(warnings, apperrors.Warning{
				Kind:    apperrors.WarnUnresolvedColumn,
				Subject: string(role),
			})
		}
	}

	return cmap, warnings
}

func containsAll(token string, fragments []string) bool {
	for _, f := range fragments {
		if !strings.Contains(token, f) {
			return false
		}
	}
	return true
}
