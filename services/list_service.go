package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fund-portal/backend"
	"fund-portal/models"
	"fund-portal/monitor"
	"fund-portal/utils"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ListKind names one of the list screens.
type ListKind string

const (
	ListApplications  ListKind = "applications"
	ListReceivedFunds ListKind = "received-funds"
	ListDeptHeadQueue ListKind = "dept-head-review-queue"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000

	// Backend default for the dept-head queue when the status lookup is unavailable.
	deptHeadPendingStatusID = 6
)

// Dept head queue filters accepted by the review-queue screen.
const (
	DeptHeadFilterPending     = "pending"
	DeptHeadFilterRecommended = "recommended"
	DeptHeadFilterRejected    = "rejected"
)

var deptHeadFilterLabels = map[string]string{
	DeptHeadFilterPending:     StatusDeptHeadPendingLabel,
	DeptHeadFilterRecommended: StatusDeptHeadRecommendedLabel,
	DeptHeadFilterRejected:    StatusDeptHeadRejectedLabel,
}

// ListBackend is the part of the backend client the list screens use.
type ListBackend interface {
	ListSubmissions(ctx context.Context, q backend.ListQuery) ([]byte, error)
	ListDeptHeadSubmissions(ctx context.Context, statusID int, q backend.ListQuery) ([]byte, error)
}

// ListFilter holds the user-controlled filters of a list screen.
type ListFilter struct {
	Type   string `form:"type"`
	Status string `form:"status"`
	YearID string `form:"year_id"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

func (f ListFilter) normalized() ListFilter {
	f.Type = strings.TrimSpace(f.Type)
	f.Status = strings.TrimSpace(f.Status)
	f.YearID = strings.TrimSpace(f.YearID)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > maxListLimit {
		f.Limit = defaultListLimit
	}
	return f
}

// query translates the filter for the backend; status aliases (English keys, Thai labels)
// are sent as the canonical status_code.
func (f ListFilter) query() backend.ListQuery {
	status := f.Status
	if canonical, ok := utils.CanonicalStatusCode(status); ok {
		status = canonical
	}
	return backend.ListQuery{Type: f.Type, Status: status, YearID: f.YearID, Page: f.Page, Limit: f.Limit}
}

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalCount  int64 `json:"total_count"`
	TotalPages  int64 `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// ListPage is one loaded page of a list screen.
type ListPage struct {
	Kind       ListKind                `json:"kind"`
	Items      []models.SubmissionView `json:"items"`
	Pagination Pagination              `json:"pagination"`
	Status     *models.StatusView      `json:"status,omitempty"`
}

// ListService loads the list screens through each screen's request sequencer.
type ListService struct {
	backend  ListBackend
	statuses *StatusDirectory
	logger   *zap.Logger
}

func NewListService(b ListBackend, statuses *StatusDirectory, logger *zap.Logger) *ListService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListService{backend: b, statuses: statuses, logger: logger.Named("lists")}
}

// Load fetches a list page for session. When a later load for the same list is issued before
// this one finishes, its result is discarded and ErrSuperseded is returned.
func (s *ListService) Load(ctx context.Context, session *ScreenSession, kind ListKind, filter ListFilter, redactApproved bool) (*ListPage, error) {
	seq := session.Sequencer(string(kind))
	loadCtx, ticket := seq.Begin(ctx)
	defer seq.Done(ticket)

	page, err := s.fetch(loadCtx, session, kind, filter.normalized())
	if err != nil {
		if loadCtx.Err() != nil && ctx.Err() == nil {
			return nil, s.superseded(kind)
		}
		return nil, err
	}
	if redactApproved {
		for i := range page.Items {
			redactApprovedAmounts(&page.Items[i])
		}
	}

	if !seq.Commit(ticket, func() { session.setList(string(kind), page) }) {
		return nil, s.superseded(kind)
	}
	return page, nil
}

func (s *ListService) superseded(kind ListKind) error {
	monitor.SupersededLoads.WithLabelValues(string(kind)).Inc()
	s.logger.Debug("list load superseded", zap.String("list", string(kind)))
	return ErrSuperseded
}

func (s *ListService) fetch(ctx context.Context, session *ScreenSession, kind ListKind, filter ListFilter) (*ListPage, error) {
	var (
		body   []byte
		err    error
		status *models.StatusView
	)
	switch kind {
	case ListApplications:
		body, err = s.backend.ListSubmissions(ctx, filter.query())
	case ListReceivedFunds:
		q := filter.query()
		q.Status = utils.StatusCodeApproved
		body, err = s.backend.ListSubmissions(ctx, q)
	case ListDeptHeadQueue:
		var statusID int
		statusID, status, err = s.deptHeadStatus(ctx, filter.Status)
		if err != nil {
			return nil, err
		}
		body, err = s.backend.ListDeptHeadSubmissions(ctx, statusID, filter.query())
	default:
		return nil, fmt.Errorf("unknown list %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	reconciler := s.reconciler(ctx, session)
	root := gjson.ParseBytes(body)
	items := submissionItems(root)
	page := &ListPage{Kind: kind, Items: make([]models.SubmissionView, 0, len(items)), Status: status}
	dropped := 0
	for _, item := range items {
		view := reconciler.ReconcileResult(item)
		if kind == ListReceivedFunds && !view.Status.Approved {
			dropped++
			continue
		}
		view.Attachments = FilterVisible(view.Attachments)
		page.Items = append(page.Items, view)
	}
	if dropped > 0 {
		// The backend ignored the approved filter, so its totals count rows this list hides.
		page.Pagination = filteredPagination(filter, len(page.Items))
	} else {
		page.Pagination = readPagination(root, filter, len(page.Items))
	}
	return page, nil
}

// reconciler builds a Reconciler from the screen's lookups. Lookup failures degrade to
// placeholders instead of failing the list.
func (s *ListService) reconciler(ctx context.Context, session *ScreenSession) *Reconciler {
	return buildReconciler(ctx, session, s.statuses, s.logger)
}

func buildReconciler(ctx context.Context, session *ScreenSession, statuses *StatusDirectory, logger *zap.Logger) *Reconciler {
	var subcategories map[int]string
	if session != nil {
		lookups, err := session.Lookups.Get(ctx)
		if err != nil {
			logger.Warn("lookup load failed", zap.String("screen_id", session.ID), zap.Error(err))
		} else {
			subcategories = lookups.Subcategories
		}
	}
	var byID map[int]models.ApplicationStatus
	if statuses != nil {
		var err error
		if byID, err = statuses.ByID(ctx); err != nil {
			logger.Warn("status lookup failed", zap.Error(err))
		}
	}
	return NewReconciler(subcategories, byID)
}

func (s *ListService) deptHeadStatus(ctx context.Context, filter string) (int, *models.StatusView, error) {
	key := strings.ToLower(strings.TrimSpace(filter))
	if key == "" {
		key = DeptHeadFilterPending
	}
	label, ok := deptHeadFilterLabels[key]
	if !ok {
		return 0, nil, fmt.Errorf("%w: unknown dept head filter %q", ErrInvalidFilter, filter)
	}

	if s.statuses != nil {
		status, err := s.statuses.StatusByName(ctx, label)
		if err == nil {
			id := status.ApplicationStatusID
			code := status.StatusCode
			name := status.StatusName
			return id, &models.StatusView{
				ID: &id, Code: &code, Name: &name,
				Classification: ClassifyStatus(&id, &code, &name),
			}, nil
		}
		s.logger.Warn("dept head status lookup failed", zap.String("label", label), zap.Error(err))
	}
	if key == DeptHeadFilterPending {
		return deptHeadPendingStatusID, nil, nil
	}
	return 0, nil, fmt.Errorf("resolve dept head status %q: status directory unavailable", label)
}

// ErrInvalidFilter marks a list filter the gateway cannot map to the backend.
var ErrInvalidFilter = errors.New("invalid filter")

func submissionItems(root gjson.Result) []gjson.Result {
	if root.IsArray() {
		return root.Array()
	}
	for _, key := range []string{"submissions", "data", "items", "data.submissions", "data.items"} {
		if v := root.Get(key); v.IsArray() {
			return v.Array()
		}
	}
	return nil
}

// filteredPagination describes only the rows kept on this page.
func filteredPagination(filter ListFilter, count int) Pagination {
	p := Pagination{CurrentPage: filter.Page, PerPage: filter.Limit, TotalCount: int64(count)}
	if count > 0 {
		p.TotalPages = 1
	}
	p.HasPrev = p.CurrentPage > 1
	return p
}

func readPagination(root gjson.Result, filter ListFilter, count int) Pagination {
	p := Pagination{CurrentPage: filter.Page, PerPage: filter.Limit, TotalCount: int64(count)}
	if pg := root.Get("pagination"); pg.IsObject() {
		if v := pg.Get("current_page"); v.Exists() {
			p.CurrentPage = int(v.Int())
		}
		if v := pg.Get("per_page"); v.Exists() {
			p.PerPage = int(v.Int())
		}
		if v := pg.Get("total_count"); v.Exists() {
			p.TotalCount = v.Int()
		}
	} else if v := root.Get("total"); v.Exists() {
		p.TotalCount = v.Int()
	}
	if p.PerPage > 0 {
		p.TotalPages = (p.TotalCount + int64(p.PerPage) - 1) / int64(p.PerPage)
	}
	p.HasNext = int64(p.CurrentPage) < p.TotalPages
	p.HasPrev = p.CurrentPage > 1
	return p
}
