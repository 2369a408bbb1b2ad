package services

import (
	"testing"

	"fund-portal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSystemMergedArtifact(t *testing.T) {
	tests := []struct {
		name string
		doc  models.Attachment
		want bool
	}{
		{name: "sentinel display name", doc: models.Attachment{OriginalName: "  แบบฟอร์มคำร้องรวม (Merged PDF) "}, want: true},
		{name: "sentinel as document type", doc: models.Attachment{OriginalName: "x.pdf", DocumentTypeName: "แบบฟอร์มคำร้องรวม (merged pdf)"}, want: true},
		{name: "merged filename", doc: models.Attachment{OriginalName: "PR-2567-0001_merged_document.pdf"}, want: true},
		{name: "numbered merged filename", doc: models.Attachment{OriginalName: "FA-1_MERGED_DOCUMENT_2.PDF"}, want: true},
		{name: "merge_submissions segment", doc: models.Attachment{OriginalName: "form.pdf", StoredPath: "uploads/merge_submissions/12/form.pdf"}, want: true},
		{name: "windows path", doc: models.Attachment{StoredPath: `uploads\merge_submissions\x.pdf`}, want: true},
		{name: "merged pattern in path only", doc: models.Attachment{OriginalName: "คำร้อง.pdf", StoredPath: "uploads/users/1/abc_merged_document.pdf"}, want: true},
		{
			name: "later name candidate matches",
			doc: models.Attachment{
				OriginalName:   "คำร้อง.pdf",
				NameCandidates: []string{"คำร้อง.pdf", "FA-9_merged_document.pdf"},
			},
			want: true,
		},
		{
			name: "later path candidate matches",
			doc: models.Attachment{
				StoredPath:     "uploads/users/1/a.pdf",
				PathCandidates: []string{"uploads/users/1/a.pdf", "/files/merge_submissions/a.pdf"},
			},
			want: true,
		},
		{name: "segment must be whole", doc: models.Attachment{StoredPath: "uploads/merge_submissions_old/a.pdf"}, want: false},
		{name: "pattern must end the name", doc: models.Attachment{OriginalName: "x_merged_document.pdf.bak"}, want: false},
		{name: "ordinary attachment", doc: models.Attachment{OriginalName: "proposal.pdf", StoredPath: "uploads/users/1/proposal.pdf"}, want: false},
		{name: "empty", doc: models.Attachment{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSystemMergedArtifact(tt.doc))
		})
	}
}

func TestFilterVisibleIsIdempotentOrderedSubset(t *testing.T) {
	docs := []models.Attachment{
		{OriginalName: "a.pdf"},
		{OriginalName: "FA-1_merged_document.pdf"},
		{OriginalName: "b.docx"},
		{StoredPath: "merge_submissions/c.pdf"},
		{OriginalName: "c.pdf"},
	}

	once := FilterVisible(docs)
	twice := FilterVisible(once)

	require.Len(t, once, 3)
	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"a.pdf", "b.docx", "c.pdf"}, []string{once[0].OriginalName, once[1].OriginalName, once[2].OriginalName})

	// subset, relative order preserved
	j := 0
	for _, doc := range docs {
		if j < len(once) && doc.OriginalName == once[j].OriginalName && doc.StoredPath == once[j].StoredPath {
			j++
		}
	}
	assert.Equal(t, len(once), j)

	assert.Empty(t, FilterVisible(nil))
}

func TestParseAttachmentsEnvelopes(t *testing.T) {
	bare := `[{"file_id": 1, "original_name": "a.pdf"}, "junk"]`
	wrapped := `{"success": true, "documents": [{"file_id": 1, "original_name": "a.pdf"}]}`
	data := `{"data": [{"FileID": 1, "OriginalName": "a.pdf"}]}`

	for _, raw := range []string{bare, wrapped, data} {
		docs := ParseAttachments([]byte(raw))
		require.Len(t, docs, 1, raw)
		require.NotNil(t, docs[0].FileID, raw)
		assert.Equal(t, 1, *docs[0].FileID, raw)
		assert.Equal(t, "a.pdf", docs[0].DisplayName(), raw)
	}
	assert.Empty(t, ParseAttachments([]byte(`oops`)))
}
