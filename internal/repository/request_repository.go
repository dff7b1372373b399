package repository

import (
	"context"

	"translation-market/internal/models"

	"github.com/google/uuid"
)

// CreateRequest creates a translation request. At most one non-cancelled
// request may exist per (requester, book); the pre-check runs inside the
// caller's transaction so concurrent creates cannot both pass.
func (r *Repository) CreateRequest(ctx context.Context, req *models.Request) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Request{}).
		Where("requester_id = ? AND book_id = ? AND status != ?",
			req.RequesterID, req.BookID, models.RequestStatusCancelled).
		Count(&count).Error
	if err != nil {
		return r.mapErr(err)
	}
	if count > 0 {
		return ErrDuplicate
	}
	return r.mapErr(r.db.WithContext(ctx).Create(req).Error)
}

// GetRequestByID retrieves a request by ID
func (r *Repository) GetRequestByID(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	var req models.Request
	if err := r.db.WithContext(ctx).Where("id = ?", requestID).First(&req).Error; err != nil {
		return nil, r.mapErr(err)
	}
	return &req, nil
}

// GetRequestByReference retrieves a request by its shareable reference code
func (r *Repository) GetRequestByReference(ctx context.Context, code string) (*models.Request, error) {
	var req models.Request
	if err := r.db.WithContext(ctx).Where("reference_code = ?", code).First(&req).Error; err != nil {
		return nil, r.mapErr(err)
	}
	return &req, nil
}

// UpdateRequest writes a request back under an optimistic version check.
// ErrConflict means another writer got there first.
func (r *Repository) UpdateRequest(ctx context.Context, req *models.Request) error {
	prev := req.Version
	req.Version = prev + 1
	res := r.db.WithContext(ctx).Model(req).
		Where("version = ?", prev).
		Select("*").Omit("id", "created_at").
		Updates(req)
	if res.Error != nil {
		req.Version = prev
		return r.mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		req.Version = prev
		return ErrConflict
	}
	return nil
}

// ListRequestsByRequester retrieves all requests owned by a requester
func (r *Repository) ListRequestsByRequester(ctx context.Context, requesterID uint, limit, offset int) ([]*models.Request, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Request{}).
		Where("requester_id = ?", requesterID).
		Count(&total).Error
	if err != nil {
		return nil, 0, r.mapErr(err)
	}

	var requests []*models.Request
	err = r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	if err != nil {
		return nil, 0, r.mapErr(err)
	}
	return requests, total, nil
}

// ListOpenRequests retrieves requests translators can currently bid on
func (r *Repository) ListOpenRequests(ctx context.Context, limit, offset int) ([]*models.Request, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Request{}).
		Where("status IN ?", []models.RequestStatus{
			models.RequestStatusOpen,
			models.RequestStatusReviewing,
		}).
		Count(&total).Error
	if err != nil {
		return nil, 0, r.mapErr(err)
	}

	var requests []*models.Request
	err = r.db.WithContext(ctx).
		Where("status IN ?", []models.RequestStatus{
			models.RequestStatusOpen,
			models.RequestStatusReviewing,
		}).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	if err != nil {
		return nil, 0, r.mapErr(err)
	}
	return requests, total, nil
}

// CreateApplication creates a translator's bid. A translator may hold at
// most one non-withdrawn application per request.
func (r *Repository) CreateApplication(ctx context.Context, app *models.Application) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("request_id = ? AND translator_id = ? AND status != ?",
			app.RequestID, app.TranslatorID, models.ApplicationStatusWithdrawn).
		Count(&count).Error
	if err != nil {
		return r.mapErr(err)
	}
	if count > 0 {
		return ErrDuplicate
	}
	return r.mapErr(r.db.WithContext(ctx).Create(app).Error)
}

// GetApplicationByID retrieves an application by ID
func (r *Repository) GetApplicationByID(ctx context.Context, appID uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).Where("id = ?", appID).First(&app).Error; err != nil {
		return nil, r.mapErr(err)
	}
	return &app, nil
}

// UpdateApplication writes an application back under a version check
func (r *Repository) UpdateApplication(ctx context.Context, app *models.Application) error {
	prev := app.Version
	app.Version = prev + 1
	res := r.db.WithContext(ctx).Model(app).
		Where("version = ?", prev).
		Select("*").Omit("id", "created_at").
		Updates(app)
	if res.Error != nil {
		app.Version = prev
		return r.mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		app.Version = prev
		return ErrConflict
	}
	return nil
}

// ListApplicationsByRequest retrieves all applications against a request
func (r *Repository) ListApplicationsByRequest(ctx context.Context, requestID uuid.UUID) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&apps).Error
	if err != nil {
		return nil, r.mapErr(err)
	}
	return apps, nil
}

// ListApplicationsByTranslator retrieves all applications a translator has filed
func (r *Repository) ListApplicationsByTranslator(ctx context.Context, translatorID uint) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.WithContext(ctx).
		Where("translator_id = ?", translatorID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, r.mapErr(err)
	}
	return apps, nil
}
