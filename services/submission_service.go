package services

import (
	"context"
	"errors"
	"fmt"

	"fund-portal/models"
	"fund-portal/utils"

	"go.uber.org/zap"
)

// SubmissionBackend is the part of the backend client the submission screens use.
type SubmissionBackend interface {
	GetSubmissionDetails(ctx context.Context, submissionID int) ([]byte, error)
	GetSubmissionDocuments(ctx context.Context, submissionID int) ([]byte, error)
}

// AttachmentEntry is an attachment as listed by the attachments screen.
type AttachmentEntry struct {
	models.Attachment
	Name   string `json:"name"`
	Hidden bool   `json:"hidden"`
}

// MergePublication describes a merged document published to a screen.
type MergePublication struct {
	Token    string   `json:"token"`
	Filename string   `json:"filename"`
	Pages    int      `json:"pages"`
	Merged   []string `json:"merged"`
	Skipped  []string `json:"skipped"`
}

// ViewOptions adjusts the view model for the caller's role.
type ViewOptions struct {
	RedactApproved bool
}

// SubmissionService serves the submission detail screens.
type SubmissionService struct {
	backend  SubmissionBackend
	statuses *StatusDirectory
	screens  *ScreenManager
	merger   *MergeAssembler
	logger   *zap.Logger
}

func NewSubmissionService(b SubmissionBackend, statuses *StatusDirectory, screens *ScreenManager, merger *MergeAssembler, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		backend:  b,
		statuses: statuses,
		screens:  screens,
		merger:   merger,
		logger:   logger.Named("submissions"),
	}
}

// View loads and reconciles one submission. Only user-facing attachments are kept.
func (s *SubmissionService) View(ctx context.Context, session *ScreenSession, submissionID int, opts ViewOptions) (*models.SubmissionView, error) {
	view, err := s.load(ctx, session, submissionID)
	if err != nil {
		return nil, err
	}
	view.Attachments = FilterVisible(view.Attachments)
	if opts.RedactApproved {
		redactApprovedAmounts(view)
	}
	return view, nil
}

func (s *SubmissionService) load(ctx context.Context, session *ScreenSession, submissionID int) (*models.SubmissionView, error) {
	body, err := s.backend.GetSubmissionDetails(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("load submission %d: %w", submissionID, err)
	}
	view := buildReconciler(ctx, session, s.statuses, s.logger).Reconcile(body)
	if view.SubmissionID == nil {
		id := submissionID
		view.SubmissionID = &id
	}

	if len(view.Attachments) == 0 {
		docs, err := s.documents(ctx, submissionID)
		if err != nil {
			s.logger.Warn("failed to load submission documents",
				zap.Int("submission_id", submissionID), zap.Error(err))
		} else {
			view.Attachments = docs
		}
	}
	return &view, nil
}

func (s *SubmissionService) documents(ctx context.Context, submissionID int) ([]models.Attachment, error) {
	body, err := s.backend.GetSubmissionDocuments(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return ParseAttachments(body), nil
}

// Attachments lists the documents of a submission. Hidden merged artifacts are included,
// flagged, only when includeHidden is set.
func (s *SubmissionService) Attachments(ctx context.Context, submissionID int, includeHidden bool) ([]AttachmentEntry, error) {
	docs, err := s.documents(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("load documents of submission %d: %w", submissionID, err)
	}

	entries := make([]AttachmentEntry, 0, len(docs))
	for _, doc := range docs {
		hidden := IsSystemMergedArtifact(doc)
		if hidden && !includeHidden {
			continue
		}
		entries = append(entries, AttachmentEntry{Attachment: doc, Name: doc.DisplayName(), Hidden: hidden})
	}
	return entries, nil
}

// Merge assembles the visible attachments of a submission into one PDF and publishes it as
// the screen's live merged document, replacing the previous one.
func (s *SubmissionService) Merge(ctx context.Context, session *ScreenSession, submissionID int) (*MergePublication, error) {
	if s.merger == nil || s.screens == nil {
		return nil, errors.New("merge is not configured")
	}

	mergeCtx, cancel := session.Bind(ctx)
	defer cancel()

	view, err := s.load(mergeCtx, session, submissionID)
	if err != nil {
		if session.Closed() {
			return nil, ErrScreenClosed
		}
		return nil, err
	}
	result, err := s.merger.Merge(mergeCtx, FilterVisible(view.Attachments))
	if err != nil {
		if session.Closed() {
			return nil, ErrScreenClosed
		}
		return nil, err
	}

	number := ""
	if view.SubmissionNumber != nil {
		number = *view.SubmissionNumber
	}
	filename := utils.MergedDocumentFilename(number, string(view.SubmissionType), submissionID)

	token, err := s.screens.PublishMerged(ctx, session, MergedDocument{Filename: filename, PDF: result.PDF})
	if err != nil {
		if session.Closed() {
			return nil, ErrScreenClosed
		}
		return nil, err
	}
	s.logger.Info("merged document published",
		zap.String("screen_id", session.ID),
		zap.Int("submission_id", submissionID),
		zap.Int("pages", result.Pages),
		zap.Strings("skipped", result.Skipped),
	)
	return &MergePublication{
		Token:    token,
		Filename: filename,
		Pages:    result.Pages,
		Merged:   result.Merged,
		Skipped:  result.Skipped,
	}, nil
}

// redactApprovedAmounts hides decision amounts from roles that review before the admin decides.
func redactApprovedAmounts(view *models.SubmissionView) {
	view.ApprovedAmount = nil
	view.ApprovedAmountText = models.Placeholder
	view.ShowApprovedAmount = false
	if view.Publication != nil {
		view.Publication.Reward.Approved = nil
		view.Publication.RevisionFee.Approved = nil
		view.Publication.PublicationFee.Approved = nil
		view.Publication.TotalApproved = nil
	}
}
