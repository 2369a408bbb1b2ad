package utils

import (
	"strings"

	"fund-portal/models"
)

const (
	// Canonical status codes mirror application_status.status_code.
	StatusCodePending         = "0" // อยู่ระหว่างการพิจารณา
	StatusCodeApproved        = "1" // อนุมัติ
	StatusCodeRejected        = "2" // ปฏิเสธ
	StatusCodeNeedsMoreInfo   = "3" // ต้องการข้อมูลเพิ่มเติม
	StatusCodeDraft           = "4" // ร่าง
	StatusCodeDeptHeadPending = "5" // อยู่ระหว่างการพิจารณาจากหัวหน้าสาขา
	StatusCodeAdminClosed     = "6" // ปิดทุน
)

var (
	statusCodeSynonyms = map[string][]string{
		StatusCodePending: {
			"0",
			"pending",
			"อยู่ระหว่างการพิจารณา",
		},
		StatusCodeApproved: {
			"1",
			"approved",
			"อนุมัติ",
		},
		StatusCodeRejected: {
			"2",
			"rejected",
			"ปฏิเสธ",
			"ไม่เห็นควรพิจารณา",
			"dept_head_rejected",
			"dept_head_not_recommended",
		},
		StatusCodeNeedsMoreInfo: {
			"3",
			"revision",
			"needs_more_info",
			"ต้องการข้อมูลเพิ่มเติม",
		},
		StatusCodeDraft: {
			"4",
			"draft",
			"ร่าง",
		},
		StatusCodeDeptHeadPending: {
			"5",
			"dept_head_pending",
			"department_pending",
			"อยู่ระหว่างการพิจารณาจากหัวหน้าสาขา",
			"เห็นควรพิจารณาจากหัวหน้าสาขา",
			"dept_head_recommended",
			"dept_head_recommend",
		},
		StatusCodeAdminClosed: {
			"6",
			"admin_closed",
			"closed",
			"ปิดทุน",
		},
	}
	statusAliasToCanonical = buildStatusAliasMap()

	// ปิดทุน has no place in the five-state taxonomy.
	canonicalKinds = map[string]models.StatusKind{
		StatusCodePending:         models.StatusKindPending,
		StatusCodeApproved:        models.StatusKindApproved,
		StatusCodeRejected:        models.StatusKindRejected,
		StatusCodeNeedsMoreInfo:   models.StatusKindRevision,
		StatusCodeDraft:           models.StatusKindDraft,
		StatusCodeDeptHeadPending: models.StatusKindPending,
	}
)

func buildStatusAliasMap() map[string]string {
	aliasMap := make(map[string]string)
	for canonical, synonyms := range statusCodeSynonyms {
		if key := NormalizeStatusCode(canonical); key != "" {
			aliasMap[key] = canonical
		}
		for _, alias := range synonyms {
			if normalized := NormalizeStatusCode(alias); normalized != "" {
				aliasMap[normalized] = canonical
			}
		}
	}
	return aliasMap
}

// NormalizeStatusCode trims and lowercases a status code or label.
func NormalizeStatusCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// CanonicalStatusCode maps any known alias (code, English key or Thai label) to the
// canonical status_code. Unknown values come back normalized with ok=false.
func CanonicalStatusCode(code string) (string, bool) {
	normalized := NormalizeStatusCode(code)
	canonical, ok := statusAliasToCanonical[normalized]
	if !ok {
		return normalized, false
	}
	return canonical, true
}

// CanonicalStatusKind resolves an alias straight to the status taxonomy.
func CanonicalStatusKind(code string) (models.StatusKind, bool) {
	canonical, ok := CanonicalStatusCode(code)
	if !ok {
		return models.StatusKindUnknown, false
	}
	kind, ok := canonicalKinds[canonical]
	if !ok {
		return models.StatusKindUnknown, false
	}
	return kind, true
}
