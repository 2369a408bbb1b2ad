package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatThaiDate(t *testing.T) {
	d := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.Local)
	assert.Equal(t, "5 มีนาคม 2567", FormatThaiDate(d))
	assert.Equal(t, "", FormatThaiDate(time.Time{}))
	assert.Equal(t, "", FormatThaiDatePtr(nil))
}

func TestParseBackendTime(t *testing.T) {
	for _, raw := range []string{"2024-03-05T10:00:00Z", "2024-03-05 10:00:00", "2024-03-05"} {
		parsed := ParseBackendTime(raw)
		require.NotNil(t, parsed, raw)
		assert.Equal(t, 2024, parsed.Year())
	}
	assert.Nil(t, ParseBackendTime(""))
	assert.Nil(t, ParseBackendTime("yesterday"))
}

func TestFormatBaht(t *testing.T) {
	assert.Equal(t, "-", FormatBaht(nil))
	assert.Equal(t, "1,234.50 บาท", FormatBaht(ptr(1234.5)))
	assert.Equal(t, "0.00 บาท", FormatBaht(ptr(0)))
	assert.Equal(t, "1,000,000.00 บาท", FormatBaht(ptr(1000000)))
	assert.Equal(t, "999.00 บาท", FormatBaht(ptr(999)))
}

func TestMergedDocumentFilename(t *testing.T) {
	assert.Equal(t, "PR-2567-0012_merged_document.pdf", MergedDocumentFilename("PR-2567-0012", "publication_reward", 12))
	assert.Equal(t, "FUND_APPLICATION-7_merged_document.pdf", MergedDocumentFilename("", "fund_application", 7))
	assert.Equal(t, "a_b_merged_document.pdf", MergedDocumentFilename(" a/b ", "", 1))
	assert.Equal(t, "submission-0_merged_document.pdf", MergedDocumentFilename("", "", 0))
}
