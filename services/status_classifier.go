package services

import (
	"strings"

	"fund-portal/models"
	"fund-portal/utils"
)

const approvedThaiLabel = "อนุมัติ"

// ClassifyApproval decides the approved / not-approved boundary that gates which list a
// submission appears in. The checks widen step by step (id, then code, then name) and
// the first match is final.
func ClassifyApproval(statusID *int, statusCode, statusName *string) bool {
	if statusID != nil && *statusID == models.ApprovedStatusID {
		return true
	}
	if statusCode != nil {
		code := strings.ToLower(strings.TrimSpace(*statusCode))
		if code == "approved" || strings.Contains(code, "approve") {
			return true
		}
	}
	if statusName != nil {
		name := strings.ToLower(strings.TrimSpace(*statusName))
		if strings.Contains(name, approvedThaiLabel) || strings.Contains(name, "approve") {
			return true
		}
	}
	return false
}

// ClassifyStatus reduces an (id, code, name) triple to the status taxonomy. Approval is
// decided by ClassifyApproval alone; the remaining states come from a direct alias match
// on the code, then on the name.
func ClassifyStatus(statusID *int, statusCode, statusName *string) models.Classification {
	kind := models.StatusKindUnknown
	if ClassifyApproval(statusID, statusCode, statusName) {
		kind = models.StatusKindApproved
	} else {
		for _, candidate := range []*string{statusCode, statusName} {
			if candidate == nil {
				continue
			}
			if k, ok := utils.CanonicalStatusKind(*candidate); ok && k != models.StatusKindApproved {
				kind = k
				break
			}
		}
	}
	return models.Classification{
		Kind:     kind,
		Approved: kind == models.StatusKindApproved,
		Style:    StatusStyle(kind),
	}
}

var statusStyles = map[models.StatusKind]models.StatusStyle{
	models.StatusKindPending:  {Label: "อยู่ระหว่างการพิจารณา", Tone: "warning"},
	models.StatusKindApproved: {Label: "อนุมัติ", Tone: "success"},
	models.StatusKindRejected: {Label: "ปฏิเสธ", Tone: "danger"},
	models.StatusKindRevision: {Label: "ต้องการข้อมูลเพิ่มเติม", Tone: "info"},
	models.StatusKindDraft:    {Label: "ร่าง", Tone: "secondary"},
}

// StatusStyle returns the display label and tone for a status kind.
func StatusStyle(kind models.StatusKind) models.StatusStyle {
	if style, ok := statusStyles[kind]; ok {
		return style
	}
	return models.StatusStyle{Label: "ไม่ทราบสถานะ", Tone: "secondary"}
}
