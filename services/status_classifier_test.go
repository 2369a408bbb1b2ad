package services

import (
	"testing"

	"fund-portal/models"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestClassifyApprovalIDWinsOverContradictions(t *testing.T) {
	id := intPtr(models.ApprovedStatusID)
	triples := []struct{ code, name *string }{
		{nil, nil},
		{strPtr("rejected"), strPtr("ปฏิเสธ")},
		{strPtr("draft"), nil},
		{nil, strPtr("ต้องการข้อมูลเพิ่มเติม")},
	}
	for _, tc := range triples {
		assert.True(t, ClassifyApproval(id, tc.code, tc.name))
		c := ClassifyStatus(id, tc.code, tc.name)
		assert.Equal(t, models.StatusKindApproved, c.Kind)
		assert.True(t, c.Approved)
	}
}

func TestClassifyApprovalFallbackChain(t *testing.T) {
	assert.True(t, ClassifyApproval(intPtr(1), strPtr(" APPROVED "), nil))
	assert.True(t, ClassifyApproval(nil, strPtr("dept_approve"), nil))
	assert.True(t, ClassifyApproval(nil, strPtr("0"), strPtr("อนุมัติแล้ว")))
	assert.True(t, ClassifyApproval(nil, nil, strPtr("Approved by admin")))

	assert.False(t, ClassifyApproval(nil, nil, nil))
	assert.False(t, ClassifyApproval(intPtr(1), strPtr("pending"), strPtr("อยู่ระหว่างการพิจารณา")))
	assert.False(t, ClassifyApproval(intPtr(3), strPtr(""), strPtr("")))
}

func TestClassifyStatusDirectMatches(t *testing.T) {
	tests := []struct {
		name       string
		code, text *string
		want       models.StatusKind
	}{
		{name: "pending code", code: strPtr("0"), want: models.StatusKindPending},
		{name: "rejected code", code: strPtr("rejected"), want: models.StatusKindRejected},
		{name: "revision by name", text: strPtr("ต้องการข้อมูลเพิ่มเติม"), want: models.StatusKindRevision},
		{name: "draft by name", code: strPtr("unknown-code"), text: strPtr("ร่าง"), want: models.StatusKindDraft},
		{name: "dept head pending", text: strPtr("อยู่ระหว่างการพิจารณาจากหัวหน้าสาขา"), want: models.StatusKindPending},
		{name: "closed is unknown", code: strPtr("admin_closed"), want: models.StatusKindUnknown},
		{name: "nothing", want: models.StatusKindUnknown},
		// "1" is the approved alias, but approval only comes from the approval chain.
		{name: "approved alias alone", code: strPtr("1"), want: models.StatusKindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyStatus(nil, tt.code, tt.text)
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, StatusStyle(tt.want), got.Style)
		})
	}
}

func TestStatusStyleUnknown(t *testing.T) {
	style := StatusStyle("something")
	assert.Equal(t, "ไม่ทราบสถานะ", style.Label)
	assert.Equal(t, "secondary", style.Tone)
	assert.Equal(t, "success", StatusStyle(models.StatusKindApproved).Tone)
}
