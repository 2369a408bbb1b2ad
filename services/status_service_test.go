package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fund-portal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatusSource struct {
	calls    int
	statuses []models.ApplicationStatus
	err      error
}

func (f *fakeStatusSource) GetStatuses(context.Context) ([]models.ApplicationStatus, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.statuses, nil
}

func testStatuses() []models.ApplicationStatus {
	return []models.ApplicationStatus{
		{ApplicationStatusID: 1, StatusCode: "0", StatusName: "อยู่ระหว่างการพิจารณา"},
		{ApplicationStatusID: 2, StatusCode: "1", StatusName: "อนุมัติ"},
		{ApplicationStatusID: 6, StatusCode: "5", StatusName: StatusDeptHeadPendingLabel},
	}
}

func TestStatusDirectoryCachesWithinTTL(t *testing.T) {
	source := &fakeStatusSource{statuses: testStatuses()}
	dir := NewStatusDirectory(source, time.Minute)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	dir.now = func() time.Time { return now }

	byID, err := dir.ByID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "อนุมัติ", byID[2].StatusName)

	now = now.Add(30 * time.Second)
	_, err = dir.Statuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)

	now = now.Add(time.Minute)
	_, err = dir.Statuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)

	dir.Clear()
	_, err = dir.Statuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, source.calls)
}

func TestStatusDirectoryByNameRefreshesOnMiss(t *testing.T) {
	source := &fakeStatusSource{statuses: testStatuses()[:2]}
	dir := NewStatusDirectory(source, time.Hour)

	_, err := dir.Statuses(context.Background())
	require.NoError(t, err)

	source.statuses = testStatuses()
	id, err := dir.StatusIDByName(context.Background(), "  "+StatusDeptHeadPendingLabel+" ")
	require.NoError(t, err)
	assert.Equal(t, 6, id)
	assert.Equal(t, 2, source.calls)

	_, err = dir.StatusIDByName(context.Background(), "ไม่มีสถานะนี้")
	assert.Error(t, err)

	_, err = dir.StatusByName(context.Background(), " ")
	assert.Error(t, err)
}

func TestStatusDirectoryWrapsSourceError(t *testing.T) {
	source := &fakeStatusSource{err: errors.New("boom")}
	dir := NewStatusDirectory(source, 0)

	_, err := dir.Statuses(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, source.err)
	assert.Contains(t, err.Error(), "failed to load application statuses")
}
