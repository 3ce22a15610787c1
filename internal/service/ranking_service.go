package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tutorhub/selection-api/internal/dto"
	"github.com/tutorhub/selection-api/internal/models"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
	"github.com/tutorhub/selection-api/pkg/export"
)

// Export formats accepted by ExportRanking.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type rankingSelectionRepo interface {
	ListByLecturer(ctx context.Context, lecturerID string) ([]models.TutorSelection, error)
}

type rankingOrderRepo interface {
	GetByUser(ctx context.Context, userID string) (*models.TutorOrder, error)
	Upsert(ctx context.Context, order *models.TutorOrder) error
}

type rankingUserRepo interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// RankingService maintains each lecturer's display order over their chosen
// tutors. The persisted order may drift from the selection as tutors are
// added or removed, so every read reconciles it: stale ids are dropped and
// tutors never ranked before are appended at the tail in selection order.
type RankingService struct {
	selections rankingSelectionRepo
	orders     rankingOrderRepo
	users      rankingUserRepo
	pdf        *export.PDFExporter
	csv        *export.CSVExporter
	logger     *zap.Logger
}

// NewRankingService constructs a RankingService.
func NewRankingService(selections rankingSelectionRepo, orders rankingOrderRepo, users rankingUserRepo, pdf *export.PDFExporter, csv *export.CSVExporter, logger *zap.Logger) *RankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{
		selections: selections,
		orders:     orders,
		users:      users,
		pdf:        pdf,
		csv:        csv,
		logger:     logger,
	}
}

// EffectiveOrder returns the lecturer's reconciled ranking, enriched with
// tutor identity. The reconciliation is read-only; the persisted row is not
// rewritten until the next commit.
func (s *RankingService) EffectiveOrder(ctx context.Context, lecturerID string) ([]dto.RankedTutor, error) {
	if _, err := s.lecturer(ctx, lecturerID); err != nil {
		return nil, err
	}

	ordered, err := s.effectiveIDs(ctx, lecturerID)
	if err != nil {
		return nil, err
	}
	if len(ordered) == 0 {
		return []dto.RankedTutor{}, nil
	}

	tutors, err := s.users.ListByIDs(ctx, ordered)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutors")
	}
	byID := make(map[string]models.User, len(tutors))
	for _, tutor := range tutors {
		byID[tutor.ID] = tutor
	}

	ranking := make([]dto.RankedTutor, 0, len(ordered))
	for i, tutorID := range ordered {
		tutor := byID[tutorID]
		ranking = append(ranking, dto.RankedTutor{
			Position:  i + 1,
			ID:        tutorID,
			FirstName: tutor.FirstName,
			LastName:  tutor.LastName,
			Email:     tutor.Email,
		})
	}
	return ranking, nil
}

// CommitOrder persists a new ranking. The submitted ids must be an exact
// permutation of the current effective order; anything else is rejected
// without touching the stored row.
func (s *RankingService) CommitOrder(ctx context.Context, lecturerID string, tutorIDs []string) error {
	if _, err := s.lecturer(ctx, lecturerID); err != nil {
		return err
	}

	current, err := s.effectiveIDs(ctx, lecturerID)
	if err != nil {
		return err
	}

	if !isPermutation(current, tutorIDs) {
		return appErrors.ErrInvalidPermutation
	}

	order := &models.TutorOrder{UserID: lecturerID, TutorIDs: append([]string{}, tutorIDs...)}
	if err := s.orders.Upsert(ctx, order); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist tutor order")
	}
	s.logger.Info("tutor order committed",
		zap.String("lecturer_id", lecturerID),
		zap.Int("tutor_count", len(tutorIDs)))
	return nil
}

// ExportRanking renders the lecturer's effective order as a CSV or PDF
// document and returns the payload with its content type.
func (s *RankingService) ExportRanking(ctx context.Context, lecturerID, format string) ([]byte, string, error) {
	ranking, err := s.EffectiveOrder(ctx, lecturerID)
	if err != nil {
		return nil, "", err
	}

	data := export.Dataset{
		Headers: []string{"Position", "First Name", "Last Name", "Email"},
		Rows:    make([]map[string]string, 0, len(ranking)),
	}
	for _, ranked := range ranking {
		data.Rows = append(data.Rows, map[string]string{
			"Position":   strconv.Itoa(ranked.Position),
			"First Name": ranked.FirstName,
			"Last Name":  ranked.LastName,
			"Email":      ranked.Email,
		})
	}

	switch strings.ToLower(format) {
	case ExportFormatCSV:
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(data, "Tutor Ranking")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format: %s", format))
	}
}

// effectiveIDs reconciles the persisted order against the live selection
// pool: keep persisted ids still in the pool, in persisted order, then append
// pool members absent from the persisted order, in pool order.
func (s *RankingService) effectiveIDs(ctx context.Context, lecturerID string) ([]string, error) {
	selections, err := s.selections.ListByLecturer(ctx, lecturerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor selections")
	}
	pool := make([]string, 0)
	inPool := make(map[string]struct{})
	for _, selection := range selections {
		for _, tutorID := range selection.TutorIDs {
			if _, dup := inPool[tutorID]; dup {
				continue
			}
			inPool[tutorID] = struct{}{}
			pool = append(pool, tutorID)
		}
	}

	persisted := []string{}
	order, err := s.orders.GetByUser(ctx, lecturerID)
	switch {
	case err == nil:
		persisted = order.TutorIDs
	case errors.Is(err, sql.ErrNoRows):
		// No commit yet; the pool order stands as-is.
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor order")
	}

	ordered := make([]string, 0, len(pool))
	placed := make(map[string]struct{}, len(pool))
	for _, tutorID := range persisted {
		if _, ok := inPool[tutorID]; !ok {
			continue
		}
		if _, dup := placed[tutorID]; dup {
			continue
		}
		placed[tutorID] = struct{}{}
		ordered = append(ordered, tutorID)
	}
	for _, tutorID := range pool {
		if _, dup := placed[tutorID]; dup {
			continue
		}
		placed[tutorID] = struct{}{}
		ordered = append(ordered, tutorID)
	}
	return ordered, nil
}

func (s *RankingService) lecturer(ctx context.Context, lecturerID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, lecturerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecturer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturer")
	}
	return user, nil
}

// isPermutation reports whether candidate is a reordering of base, duplicates
// included.
func isPermutation(base, candidate []string) bool {
	if len(base) != len(candidate) {
		return false
	}
	counts := make(map[string]int, len(base))
	for _, id := range base {
		counts[id]++
	}
	for _, id := range candidate {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}
