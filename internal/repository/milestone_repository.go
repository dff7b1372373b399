package repository

import (
	"context"

	"translation-market/internal/models"

	"github.com/google/uuid"
)

// CreateMilestone creates a milestone at the next ordinal position
func (r *Repository) CreateMilestone(ctx context.Context, milestone *models.Milestone) error {
	return r.mapErr(r.db.WithContext(ctx).Create(milestone).Error)
}

// GetMilestoneByID retrieves a milestone by ID
func (r *Repository) GetMilestoneByID(ctx context.Context, milestoneID uuid.UUID) (*models.Milestone, error) {
	var milestone models.Milestone
	if err := r.db.WithContext(ctx).Where("id = ?", milestoneID).First(&milestone).Error; err != nil {
		return nil, r.mapErr(err)
	}
	return &milestone, nil
}

// GetMilestoneByOrdinal retrieves the milestone at a given ordinal within
// a contract. Returns ErrNotFound when no milestone holds that position.
func (r *Repository) GetMilestoneByOrdinal(ctx context.Context, contractID uuid.UUID, ordinal int) (*models.Milestone, error) {
	var milestone models.Milestone
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND ordinal = ?", contractID, ordinal).
		First(&milestone).Error
	if err != nil {
		return nil, r.mapErr(err)
	}
	return &milestone, nil
}

// NextMilestoneOrdinal returns the ordinal the next milestone of a
// contract should take (1-based).
func (r *Repository) NextMilestoneOrdinal(ctx context.Context, contractID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.Milestone{}).
		Where("contract_id = ?", contractID).
		Select("COALESCE(MAX(ordinal), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, r.mapErr(err)
	}
	return max + 1, nil
}

// UpdateMilestone writes a milestone back under a version check
func (r *Repository) UpdateMilestone(ctx context.Context, milestone *models.Milestone) error {
	prev := milestone.Version
	milestone.Version = prev + 1
	res := r.db.WithContext(ctx).Model(milestone).
		Where("version = ?", prev).
		Select("*").Omit("id", "created_at").
		Updates(milestone)
	if res.Error != nil {
		milestone.Version = prev
		return r.mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		milestone.Version = prev
		return ErrConflict
	}
	return nil
}

// ListMilestonesByContract retrieves a contract's milestones in ordinal order
func (r *Repository) ListMilestonesByContract(ctx context.Context, contractID uuid.UUID) ([]*models.Milestone, error) {
	var milestones []*models.Milestone
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("ordinal ASC").
		Find(&milestones).Error
	if err != nil {
		return nil, r.mapErr(err)
	}
	return milestones, nil
}

// CountUnpaidMilestones counts milestones of a contract not yet paid
func (r *Repository) CountUnpaidMilestones(ctx context.Context, contractID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Milestone{}).
		Where("contract_id = ? AND status != ?", contractID, models.MilestoneStatusPaid).
		Count(&count).Error
	if err != nil {
		return 0, r.mapErr(err)
	}
	return count, nil
}

// AppendEvent appends a domain event to the log
func (r *Repository) AppendEvent(ctx context.Context, event *models.DomainEvent) error {
	return r.mapErr(r.db.WithContext(ctx).Create(event).Error)
}

// ListEventsByRequest retrieves the event log scoped to one request, in
// production order.
func (r *Repository) ListEventsByRequest(ctx context.Context, requestID uuid.UUID, afterSeq int64, limit int) ([]*models.DomainEvent, error) {
	var events []*models.DomainEvent
	q := r.db.WithContext(ctx).
		Where("request_id = ? AND seq > ?", requestID, afterSeq).
		Order("seq ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, r.mapErr(err)
	}
	return events, nil
}
