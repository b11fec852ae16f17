package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"reeldesk/internal/domain/review"
	"reeldesk/internal/errs"
	"reeldesk/internal/infrastructure/persistence/sqlite/model"
	"reeldesk/internal/ports"
)

type SubmissionRepository struct {
	db *gorm.DB
}

var _ ports.SubmissionRepository = (*SubmissionRepository)(nil)

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *SubmissionRepository) CreateSubmission(ctx context.Context, submission ports.Submission) (ports.Submission, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Submission{}, err
	}

	row := model.Submission{
		SubmissionID:    submission.SubmissionID,
		CampaignID:      submission.CampaignID,
		CreatorID:       submission.CreatorID,
		ContentKind:     string(submission.Content.Kind),
		ContentRef:      submission.Content.Ref,
		DurationSeconds: submission.DurationSeconds,
		State:           string(submission.State),
		Version:         submission.Version,
		CreatedAt:       submission.CreatedAt,
		UpdatedAt:       submission.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Submission{}, errs.Wrap(err, "insert submission")
	}

	return mapSubmission(row)
}

func (r *SubmissionRepository) GetSubmission(ctx context.Context, submissionID string) (ports.Submission, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Submission{}, err
	}

	var row model.Submission
	if err := db.Where("submission_id = ?", submissionID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Submission{}, ports.ErrSubmissionNotFound
		}
		return ports.Submission{}, errs.Wrap(err, "query submission")
	}

	return mapSubmission(row)
}

func (r *SubmissionRepository) ListSubmissions(ctx context.Context, filter ports.SubmissionFilter) ([]ports.Submission, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Submission{})
	if len(filter.States) > 0 {
		states := make([]string, 0, len(filter.States))
		for _, state := range filter.States {
			states = append(states, string(state))
		}
		query = query.Where("state IN ?", states)
	}
	if campaignID := strings.TrimSpace(filter.CampaignID); campaignID != "" {
		query = query.Where("campaign_id = ?", campaignID)
	}
	if creatorID := strings.TrimSpace(filter.CreatorID); creatorID != "" {
		query = query.Where("creator_id = ?", creatorID)
	}

	var rows []model.Submission
	if err := query.Order("created_at asc, submission_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query submissions")
	}

	items := make([]ports.Submission, 0, len(rows))
	for _, row := range rows {
		item, err := mapSubmission(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *SubmissionRepository) ListTransitions(ctx context.Context, submissionID string) ([]ports.TransitionRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Transition
	if err := db.
		Where("submission_id = ?", submissionID).
		Order("transition_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query transitions")
	}

	records := make([]ports.TransitionRecord, 0, len(rows))
	for _, row := range rows {
		record, err := mapTransition(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *SubmissionRepository) CountTransitions(ctx context.Context, submissionID string) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Transition{}).
		Where("submission_id = ?", submissionID).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count transitions")
	}
	return count, nil
}

func (r *SubmissionRepository) CommitTransition(ctx context.Context, expectedVersion int64, record ports.TransitionRecord) error {
	if ports.TxFromContext(ctx) != nil {
		db, err := r.dbFromContext(ctx)
		if err != nil {
			return err
		}
		return commitTransition(db, expectedVersion, record)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return commitTransition(tx, expectedVersion, record)
	})
}

// commitTransition is the guarded write: the state/version update only lands
// when version still equals expectedVersion, and the history row rides in the
// same transaction.
func commitTransition(db *gorm.DB, expectedVersion int64, record ports.TransitionRecord) error {
	result := db.Model(&model.Submission{}).
		Where("submission_id = ? AND version = ?", record.SubmissionID, expectedVersion).
		Updates(map[string]any{
			"state":      string(record.ToState),
			"version":    expectedVersion + 1,
			"updated_at": record.CreatedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update submission state")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&model.Submission{}).
			Where("submission_id = ?", record.SubmissionID).
			Count(&count).Error; err != nil {
			return errs.Wrap(err, "check submission existence")
		}
		if count == 0 {
			return ports.ErrSubmissionNotFound
		}
		return fmt.Errorf("%w: submission=%s expected_version=%d", review.ErrVersionConflict, record.SubmissionID, expectedVersion)
	}

	row, err := transitionRow(record)
	if err != nil {
		return err
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert transition record")
	}
	return nil
}

type annotationJSON struct {
	OffsetSeconds int    `json:"offset_seconds"`
	Comment       string `json:"comment"`
}

func transitionRow(record ports.TransitionRecord) (model.Transition, error) {
	annotations := make([]annotationJSON, 0, len(record.Feedback.Annotations))
	for _, ann := range record.Feedback.Annotations {
		annotations = append(annotations, annotationJSON{
			OffsetSeconds: ann.OffsetSeconds,
			Comment:       ann.Comment,
		})
	}
	encoded, err := json.Marshal(annotations)
	if err != nil {
		return model.Transition{}, errs.Wrap(err, "encode annotations")
	}

	row := model.Transition{
		SubmissionID:    record.SubmissionID,
		FromState:       string(record.FromState),
		ToState:         string(record.ToState),
		Action:          string(record.Action),
		ActorID:         record.ActorID,
		ActorRole:       string(record.ActorRole),
		GeneralText:     record.Feedback.GeneralText,
		AnnotationsJSON: string(encoded),
		CreatedAt:       record.CreatedAt,
	}
	if record.Feedback.DueDate != "" {
		dueDate := record.Feedback.DueDate
		row.DueDate = &dueDate
	}
	if record.SchedulingHint != "" {
		hint := record.SchedulingHint
		row.SchedulingHint = &hint
	}
	return row, nil
}

func mapSubmission(row model.Submission) (ports.Submission, error) {
	state, err := review.ParseState(row.State)
	if err != nil {
		return ports.Submission{}, errs.Wrapf(err, "submission %s", row.SubmissionID)
	}

	return ports.Submission{
		SubmissionID: row.SubmissionID,
		CampaignID:   row.CampaignID,
		CreatorID:    row.CreatorID,
		Content: ports.ContentRef{
			Kind: ports.ContentKind(row.ContentKind),
			Ref:  row.ContentRef,
		},
		DurationSeconds: row.DurationSeconds,
		State:           state,
		Version:         row.Version,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func mapTransition(row model.Transition) (ports.TransitionRecord, error) {
	var annotations []annotationJSON
	if row.AnnotationsJSON != "" {
		if err := json.Unmarshal([]byte(row.AnnotationsJSON), &annotations); err != nil {
			return ports.TransitionRecord{}, errs.Wrapf(err, "decode annotations for transition %d", row.TransitionID)
		}
	}

	feedback := review.Feedback{
		GeneralText: row.GeneralText,
	}
	for _, ann := range annotations {
		feedback.Annotations = append(feedback.Annotations, review.Annotation{
			OffsetSeconds: ann.OffsetSeconds,
			Comment:       ann.Comment,
		})
	}
	if row.DueDate != nil {
		feedback.DueDate = *row.DueDate
	}

	record := ports.TransitionRecord{
		TransitionID: row.TransitionID,
		SubmissionID: row.SubmissionID,
		FromState:    review.State(row.FromState),
		ToState:      review.State(row.ToState),
		Action:       review.Action(row.Action),
		ActorID:      row.ActorID,
		ActorRole:    review.Role(row.ActorRole),
		Feedback:     feedback,
		CreatedAt:    row.CreatedAt,
	}
	if row.SchedulingHint != nil {
		record.SchedulingHint = *row.SchedulingHint
	}
	return record, nil
}
