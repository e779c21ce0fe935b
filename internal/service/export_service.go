package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"weekly-planner/internal/model"
	"weekly-planner/internal/planner"
)

// ErrNoArchive is returned when a user restores without ever having exported.
var ErrNoArchive = errors.New("no exported templates yet")

// ImportMode selects how an imported document combines with existing templates.
type ImportMode int

const (
	ImportMerge ImportMode = iota
	ImportReplace
)

func (m ImportMode) String() string {
	if m == ImportReplace {
		return "replace"
	}
	return "merge"
}

// ArchiveStore persists exported documents.
type ArchiveStore interface {
	Create(ctx context.Context, archive *model.ExportArchive) error
	Latest(ctx context.Context, userID uint) (*model.ExportArchive, error)
	Prune(ctx context.Context, userID uint, keep int) error
}

// ExportService exports and imports template documents and keeps an archive of exports.
type ExportService struct {
	archive ArchiveStore
	keep    int
}

func NewExportService(archive ArchiveStore, keep int) *ExportService {
	return &ExportService{archive: archive, keep: keep}
}

// Export serializes the session's templates and archives the document for the user.
func (s *ExportService) Export(ctx context.Context, user *model.User, session *planner.Session, now time.Time) (string, []byte, error) {
	data, err := session.Templates.Export(now)
	if err != nil {
		return "", nil, err
	}
	name := fmt.Sprintf("weekly-templates-%s.json", now.Format("20060102-150405"))

	archive := &model.ExportArchive{
		UserID:        user.ID,
		FileName:      name,
		TemplateCount: session.Templates.Len(),
		Document:      data,
		CreatedAt:     now,
	}
	if err := s.archive.Create(ctx, archive); err != nil {
		return "", nil, err
	}
	if err := s.archive.Prune(ctx, user.ID, s.keep); err != nil {
		return "", nil, err
	}
	return name, data, nil
}

// Import reads a template document into the session.
func (s *ExportService) Import(session *planner.Session, data []byte, mode ImportMode) (int, error) {
	if mode == ImportReplace {
		return session.Templates.ImportReplace(data)
	}
	return session.Templates.ImportMerge(data)
}

// Restore imports the user's most recent archived export.
func (s *ExportService) Restore(ctx context.Context, user *model.User, session *planner.Session, mode ImportMode) (*model.ExportArchive, int, error) {
	latest, err := s.archive.Latest(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrNoArchive
		}
		return nil, 0, fmt.Errorf("find export: %w", err)
	}
	n, err := s.Import(session, latest.Document, mode)
	if err != nil {
		return nil, 0, err
	}
	return latest, n, nil
}
