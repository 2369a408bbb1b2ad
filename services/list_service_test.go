package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fund-portal/backend"
	"fund-portal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeListBackend struct {
	mu        sync.Mutex
	calls     int
	queries   []backend.ListQuery
	statusIDs []int
	respond   func(ctx context.Context, call int) ([]byte, error)
}

func (f *fakeListBackend) record(q backend.ListQuery, statusID int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, q)
	f.statusIDs = append(f.statusIDs, statusID)
	return f.calls
}

func (f *fakeListBackend) ListSubmissions(ctx context.Context, q backend.ListQuery) ([]byte, error) {
	return f.respond(ctx, f.record(q, 0))
}

func (f *fakeListBackend) ListDeptHeadSubmissions(ctx context.Context, statusID int, q backend.ListQuery) ([]byte, error) {
	return f.respond(ctx, f.record(q, statusID))
}

func staticList(body string) func(context.Context, int) ([]byte, error) {
	return func(context.Context, int) ([]byte, error) { return []byte(body), nil }
}

const mixedSubmissions = `{
  "submissions": [
    {"submission_id": 1, "submission_type": "fund_application", "status_id": 1, "requested_amount": 1000, "approved_amount": 900},
    {"submission_id": 2, "submission_type": "fund_application", "status_id": 2, "requested_amount": 2000, "approved_amount": 1500,
     "documents": [{"file_id": 9, "original_name": "FA-2_merged_document.pdf"}, {"file_id": 10, "original_name": "a.pdf"}]}
  ],
  "pagination": {"current_page": 2, "per_page": 2, "total_count": 5}
}`

func newListFixture(b ListBackend, statuses *StatusDirectory) (*ListService, *ScreenSession) {
	screens := NewScreenManager(NewMemoryMergedStore(0), emptyLookups(), nil)
	return NewListService(b, statuses, nil), screens.Open("17", "screen-1")
}

func TestListLoadApplications(t *testing.T) {
	fake := &fakeListBackend{respond: staticList(mixedSubmissions)}
	svc, session := newListFixture(fake, nil)

	page, err := svc.Load(context.Background(), session, ListApplications, ListFilter{Status: " Approved ", Page: 2, Limit: 5000}, false)
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Equal(t, "1", fake.queries[0].Status)
	assert.Equal(t, defaultListLimit, fake.queries[0].Limit)
	assert.Equal(t, Pagination{CurrentPage: 2, PerPage: 2, TotalCount: 5, TotalPages: 3, HasNext: true, HasPrev: true}, page.Pagination)

	// merged artifacts never reach a list row
	require.Len(t, page.Items[1].Attachments, 1)
	assert.Equal(t, "a.pdf", page.Items[1].Attachments[0].OriginalName)

	assert.Same(t, page, session.LastList(string(ListApplications)))
}

func TestListLoadReceivedFundsKeepsApprovedOnly(t *testing.T) {
	fake := &fakeListBackend{respond: staticList(mixedSubmissions)}
	svc, session := newListFixture(fake, nil)

	page, err := svc.Load(context.Background(), session, ListReceivedFunds, ListFilter{}, false)
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, 2, *page.Items[0].SubmissionID)
	assert.True(t, page.Items[0].ShowApprovedAmount)

	assert.Equal(t, "1", fake.queries[0].Status)
	assert.Equal(t, int64(1), page.Pagination.TotalCount)
	assert.Equal(t, int64(1), page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasNext)
}

func TestListLoadReceivedFundsUsesBackendTotalsWhenFiltered(t *testing.T) {
	body := `{
  "submissions": [{"submission_id": 2, "submission_type": "fund_application", "status_id": 2, "approved_amount": 1500}],
  "pagination": {"current_page": 1, "per_page": 1, "total_count": 3}
}`
	fake := &fakeListBackend{respond: staticList(body)}
	svc, session := newListFixture(fake, nil)

	page, err := svc.Load(context.Background(), session, ListReceivedFunds, ListFilter{Status: "rejected"}, false)
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "1", fake.queries[0].Status)
	assert.Equal(t, int64(3), page.Pagination.TotalCount)
	assert.Equal(t, int64(3), page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
}

func TestListLoadRedactsApprovedAmounts(t *testing.T) {
	fake := &fakeListBackend{respond: staticList(mixedSubmissions)}
	svc, session := newListFixture(fake, nil)

	page, err := svc.Load(context.Background(), session, ListApplications, ListFilter{}, true)
	require.NoError(t, err)
	for _, item := range page.Items {
		assert.Nil(t, item.ApprovedAmount)
		assert.False(t, item.ShowApprovedAmount)
		assert.Equal(t, models.Placeholder, item.ApprovedAmountText)
	}
}

func TestListLoadSupersededByLaterLoad(t *testing.T) {
	started := make(chan struct{})
	fake := &fakeListBackend{}
	fake.respond = func(ctx context.Context, call int) ([]byte, error) {
		if call == 1 {
			close(started)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return nil, errors.New("first load was never canceled")
			}
		}
		return []byte(`{"submissions": [{"submission_id": 2}]}`), nil
	}
	svc, session := newListFixture(fake, nil)

	type outcome struct {
		page *ListPage
		err  error
	}
	first := make(chan outcome, 1)
	go func() {
		page, err := svc.Load(context.Background(), session, ListApplications, ListFilter{Type: "fund_application"}, false)
		first <- outcome{page, err}
	}()
	<-started

	second, err := svc.Load(context.Background(), session, ListApplications, ListFilter{Type: "publication_reward"}, false)
	require.NoError(t, err)

	a := <-first
	assert.ErrorIs(t, a.err, ErrSuperseded)
	assert.Nil(t, a.page)
	assert.Same(t, second, session.LastList(string(ListApplications)))
}

func TestListLoadDeptHeadQueue(t *testing.T) {
	statuses := NewStatusDirectory(&fakeStatusSource{statuses: []models.ApplicationStatus{
		{ApplicationStatusID: 6, StatusCode: "5", StatusName: StatusDeptHeadPendingLabel},
		{ApplicationStatusID: 7, StatusCode: "6", StatusName: StatusDeptHeadRecommendedLabel},
	}}, time.Minute)
	fake := &fakeListBackend{respond: staticList(`{"data": []}`)}
	svc, session := newListFixture(fake, statuses)

	page, err := svc.Load(context.Background(), session, ListDeptHeadQueue, ListFilter{Status: "recommended"}, true)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, fake.statusIDs)
	require.NotNil(t, page.Status)
	assert.Equal(t, 7, *page.Status.ID)
	assert.Empty(t, page.Items)

	_, err = svc.Load(context.Background(), session, ListDeptHeadQueue, ListFilter{Status: "bogus"}, true)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestListLoadDeptHeadQueueWithoutDirectory(t *testing.T) {
	fake := &fakeListBackend{respond: staticList(`[]`)}
	svc, session := newListFixture(fake, nil)

	page, err := svc.Load(context.Background(), session, ListDeptHeadQueue, ListFilter{}, true)
	require.NoError(t, err)
	assert.Nil(t, page.Status)
	assert.Equal(t, []int{deptHeadPendingStatusID}, fake.statusIDs)

	_, err = svc.Load(context.Background(), session, ListDeptHeadQueue, ListFilter{Status: "rejected"}, true)
	assert.Error(t, err)
}

func TestListLoadBackendError(t *testing.T) {
	fake := &fakeListBackend{respond: func(context.Context, int) ([]byte, error) {
		return nil, backend.ErrNotFound
	}}
	svc, session := newListFixture(fake, nil)

	_, err := svc.Load(context.Background(), session, ListApplications, ListFilter{}, false)
	assert.ErrorIs(t, err, backend.ErrNotFound)
	assert.Nil(t, session.LastList(string(ListApplications)))
}
