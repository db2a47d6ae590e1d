package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/calendar"
	"github.com/yungbote/studypulse-backend/internal/modules/study/grades"
	"github.com/yungbote/studypulse-backend/internal/modules/study/pipeline"
	"github.com/yungbote/studypulse-backend/internal/platform/apierr"
	"github.com/yungbote/studypulse-backend/internal/platform/dbctx"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
	"github.com/yungbote/studypulse-backend/internal/platform/pdftext"
)

// MaxImportBytes bounds every uploaded import.
const MaxImportBytes = 5 << 20

type ICSImportResult struct {
	Deadlines      int                `json:"deadlines"`
	PersonalEvents int                `json:"personal_events"`
	Debug          calendar.Debug     `json:"debug"`
	Error          *study.ImportError `json:"error,omitempty"`
}

type CSVImportResult struct {
	Imported  int                   `json:"imported"`
	Mapping   *grades.ColumnMapping `json:"mapping"`
	Summaries []grades.Summary      `json:"summaries"`
	Error     *study.ImportError    `json:"error,omitempty"`
}

type PDFImportResult struct {
	Imported int                `json:"imported"`
	Rows     []grades.ParsedRow `json:"rows"`
	Warnings []string           `json:"warnings"`
	Error    *study.ImportError `json:"error,omitempty"`
}

type ImportService interface {
	ImportICS(ctx context.Context, text string) (*ICSImportResult, error)
	ImportCSV(ctx context.Context, text string) (*CSVImportResult, error)
	// ImportPDF accepts either a PDF document or its already extracted text.
	ImportPDF(ctx context.Context, document []byte, text string) (*PDFImportResult, error)
}

type importService struct {
	db       *gorm.DB
	log      *logger.Logger
	repos    Repos
	engine   *ProgressEngine
	settings Settings
}

func NewImportService(db *gorm.DB, log *logger.Logger, r Repos, engine *ProgressEngine, s Settings) ImportService {
	return &importService{
		db:       db,
		log:      log.With("service", "ImportService"),
		repos:    r,
		engine:   engine,
		settings: s,
	}
}

func ptrs[T any](rows []T) []*T {
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}

// persist writes rows and recomputes progress in one transaction.
func (s *importService) persist(ctx context.Context, userID uuid.UUID, write func(dbc dbctx.Context) error) error {
	var res pipeline.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := write(dbc); err != nil {
			return err
		}
		var err error
		res, err = s.engine.Apply(dbc, userID, 0, nil)
		return err
	})
	if err != nil {
		return err
	}
	s.engine.Publish(ctx, userID, res.Transitions)
	return nil
}

func (s *importService) ImportICS(ctx context.Context, text string) (*ICSImportResult, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	now := s.engine.Now()
	parsed := calendar.Parse(text, now)
	out := &ICSImportResult{Debug: parsed.Debug, Error: parsed.Error}
	if parsed.Error != nil {
		s.log.Info("ICS import rejected", "user_id", userID, "kind", parsed.Error.Kind, "vevents", parsed.Debug.VeventCount)
		s.settings.Metrics.IncImport("ics", string(parsed.Error.Kind))
		return out, nil
	}

	deadlines, personal := calendar.ToRecords(userID, parsed.Events, now)
	err = s.persist(ctx, userID, func(dbc dbctx.Context) error {
		if err := s.repos.Deadlines.Upsert(dbc, ptrs(deadlines)); err != nil {
			return err
		}
		return s.repos.PersonalEvents.Upsert(dbc, ptrs(personal))
	})
	if err != nil {
		return nil, fmt.Errorf("persist ics import: %w", err)
	}
	out.Deadlines = len(deadlines)
	out.PersonalEvents = len(personal)
	s.settings.Metrics.IncImport("ics", "ok")
	s.log.Info("ICS imported", "user_id", userID, "deadlines", out.Deadlines, "personal_events", out.PersonalEvents)
	return out, nil
}

func (s *importService) ImportCSV(ctx context.Context, text string) (*CSVImportResult, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	items, mapping, ierr := grades.ImportCSV(userID, text)
	out := &CSVImportResult{Mapping: mapping, Summaries: []grades.Summary{}, Error: ierr}
	if ierr != nil {
		s.settings.Metrics.IncImport("csv", string(ierr.Kind))
		if ierr.Kind == study.ImportMissingColumns {
			return out, apierr.Unprocessable("missing_columns", ierr)
		}
		return out, nil
	}

	err = s.persist(ctx, userID, func(dbc dbctx.Context) error {
		return s.repos.Assessments.Upsert(dbc, ptrs(items))
	})
	if err != nil {
		return nil, fmt.Errorf("persist csv import: %w", err)
	}
	out.Imported = len(items)
	s.settings.Metrics.IncImport("csv", "ok")
	out.Summaries = grades.CalculateGradeSummaries(items, s.settings.GradeTarget)
	s.log.Info("CSV imported", "user_id", userID, "assessments", out.Imported)
	return out, nil
}

func (s *importService) ImportPDF(ctx context.Context, document []byte, text string) (*PDFImportResult, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	if len(document) > 0 {
		extracted, err := pdftext.Extract(document)
		if err != nil {
			if errors.Is(err, pdftext.ErrEmptyDocument) {
				return &PDFImportResult{
					Rows:     []grades.ParsedRow{},
					Warnings: []string{},
					Error:    &study.ImportError{Kind: study.ImportEmptyInput},
				}, nil
			}
			return nil, apierr.New(http.StatusUnprocessableEntity, "unreadable_pdf", err)
		}
		text = extracted
	}

	parsed := grades.ParseProgressSummary(text)
	out := &PDFImportResult{Rows: parsed.Rows, Warnings: parsed.Warnings, Error: parsed.Error}
	if out.Rows == nil {
		out.Rows = []grades.ParsedRow{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	if parsed.Error != nil || len(parsed.Rows) == 0 {
		return out, nil
	}

	items := grades.ToAssessments(userID, parsed.Rows)
	err = s.persist(ctx, userID, func(dbc dbctx.Context) error {
		return s.repos.Assessments.Upsert(dbc, ptrs(items))
	})
	if err != nil {
		return nil, fmt.Errorf("persist pdf import: %w", err)
	}
	out.Imported = len(items)
	s.settings.Metrics.IncImport("pdf", "ok")
	s.log.Info("PDF imported", "user_id", userID, "rows", out.Imported, "warnings", strings.Join(out.Warnings, ","))
	return out, nil
}
