package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"fund-portal/models"
	"fund-portal/monitor"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMergeConcurrency caps concurrent attachment fetches during a merge.
const DefaultMergeConcurrency = 6

// ErrNoMergeablePages is matched by every NoMergeablePagesError.
var ErrNoMergeablePages = errors.New("no mergeable pages")

// NoMergeablePagesError reports a merge where no attachment produced a page.
type NoMergeablePagesError struct {
	Skipped []string
}

func (e *NoMergeablePagesError) Error() string {
	if len(e.Skipped) == 0 {
		return "ไม่พบไฟล์ PDF ที่สามารถรวมได้"
	}
	return fmt.Sprintf("ไม่พบไฟล์ PDF ที่สามารถรวมได้ (ข้ามไฟล์: %s)", strings.Join(e.Skipped, ", "))
}

func (e *NoMergeablePagesError) Is(target error) bool {
	return target == ErrNoMergeablePages
}

// DocumentFetcher loads attachment bytes from the backend.
type DocumentFetcher interface {
	FetchByFileID(ctx context.Context, fileID int) ([]byte, error)
	FetchByPath(ctx context.Context, storedPath string) ([]byte, error)
}

// MergeAssembler concatenates attachment PDFs into one document.
type MergeAssembler struct {
	fetcher     DocumentFetcher
	concurrency int
	logger      *zap.Logger
}

func init() {
	api.DisableConfigDir()
}

func NewMergeAssembler(fetcher DocumentFetcher, concurrency int, logger *zap.Logger) *MergeAssembler {
	if concurrency <= 0 {
		concurrency = DefaultMergeConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MergeAssembler{
		fetcher:     fetcher,
		concurrency: concurrency,
		logger:      logger.Named("merge"),
	}
}

type mergePart struct {
	name  string
	data  []byte
	pages int
	err   error
}

// Merge fetches every attachment of the working set and appends their pages in input order.
// Attachments that cannot be fetched or parsed are reported in Skipped; the call fails only
// when no page could be assembled.
func (m *MergeAssembler) Merge(ctx context.Context, attachments []models.Attachment) (*models.MergeResult, error) {
	started := time.Now()
	working := mergeWorkingSet(attachments)
	m.logger.Info("fetching attachments",
		zap.Int("attachments", len(attachments)),
		zap.Int("working_set", len(working)),
	)

	parts := make([]mergePart, len(working))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, att := range working {
		i, att := i, att
		g.Go(func() error {
			parts[i] = m.loadPart(gctx, att)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		monitor.ObserveMerge("canceled", 0, time.Since(started))
		return nil, fmt.Errorf("merge attachments: %w", err)
	}

	result := &models.MergeResult{Merged: []string{}, Skipped: []string{}}
	readers := make([]io.ReadSeeker, 0, len(parts))
	for _, part := range parts {
		if part.err != nil {
			m.logger.Warn("skipping attachment", zap.String("name", part.name), zap.Error(part.err))
			result.Skipped = append(result.Skipped, part.name)
			continue
		}
		readers = append(readers, bytes.NewReader(part.data))
		result.Merged = append(result.Merged, part.name)
		result.Pages += part.pages
	}

	if len(readers) == 0 {
		monitor.ObserveMerge("failed", len(result.Skipped), time.Since(started))
		m.logger.Warn("no mergeable pages", zap.Strings("skipped", result.Skipped))
		return nil, &NoMergeablePagesError{Skipped: result.Skipped}
	}

	m.logger.Debug("assembling", zap.Int("documents", len(readers)), zap.Int("pages", result.Pages))
	if len(readers) == 1 {
		for _, part := range parts {
			if part.err == nil {
				result.PDF = part.data
				break
			}
		}
	} else {
		var out bytes.Buffer
		if err := api.MergeRaw(readers, &out, false, pdfConfig()); err != nil {
			monitor.ObserveMerge("failed", len(result.Skipped), time.Since(started))
			return nil, fmt.Errorf("assemble merged pdf: %w", err)
		}
		result.PDF = out.Bytes()
	}

	monitor.ObserveMerge("done", len(result.Skipped), time.Since(started))
	m.logger.Info("merge done",
		zap.Int("pages", result.Pages),
		zap.Int("skipped", len(result.Skipped)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func (m *MergeAssembler) loadPart(ctx context.Context, att models.Attachment) mergePart {
	part := mergePart{name: att.DisplayName()}
	data, err := m.fetch(ctx, att)
	if err != nil {
		part.err = err
		return part
	}
	pages, err := api.PageCount(bytes.NewReader(data), pdfConfig())
	if err != nil {
		part.err = fmt.Errorf("read pdf: %w", err)
		return part
	}
	if pages <= 0 {
		part.err = errors.New("pdf has no pages")
		return part
	}
	part.data = data
	part.pages = pages
	return part
}

// fetch prefers the managed-file endpoint and falls back to the stored path.
func (m *MergeAssembler) fetch(ctx context.Context, att models.Attachment) ([]byte, error) {
	var idErr error
	if att.HasFileID() {
		data, err := m.fetcher.FetchByFileID(ctx, *att.FileID)
		if err == nil {
			return data, nil
		}
		idErr = err
		m.logger.Debug("file id fetch failed, trying path", zap.Int("file_id", *att.FileID), zap.Error(err))
	}

	storedPath := strings.TrimSpace(att.StoredPath)
	if storedPath == "" {
		if idErr != nil {
			return nil, idErr
		}
		return nil, errors.New("attachment has neither file id nor path")
	}
	data, err := m.fetcher.FetchByPath(ctx, storedPath)
	if err != nil {
		return nil, errors.Join(idErr, err)
	}
	return data, nil
}

// mergeWorkingSet keeps only attachments named *.pdf when at least one exists.
func mergeWorkingSet(attachments []models.Attachment) []models.Attachment {
	pdfs := make([]models.Attachment, 0, len(attachments))
	for _, att := range attachments {
		if hasPDFName(att) {
			pdfs = append(pdfs, att)
		}
	}
	if len(pdfs) > 0 {
		return pdfs
	}
	return attachments
}

func hasPDFName(att models.Attachment) bool {
	names := append([]string{att.OriginalName, att.StoredPath}, att.NameCandidates...)
	for _, name := range names {
		if strings.HasSuffix(strings.ToLower(strings.TrimSpace(name)), ".pdf") {
			return true
		}
	}
	return false
}

func pdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}
