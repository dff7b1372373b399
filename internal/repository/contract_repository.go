package repository

import (
	"context"

	"translation-market/internal/models"

	"github.com/google/uuid"
)

// CreateContract creates a contract from an accepted application. The
// unique index on application_id guarantees one contract per application.
func (r *Repository) CreateContract(ctx context.Context, contract *models.Contract) error {
	return r.mapErr(r.db.WithContext(ctx).Create(contract).Error)
}

// GetContractByID retrieves a contract by ID
func (r *Repository) GetContractByID(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).Where("id = ?", contractID).First(&contract).Error; err != nil {
		return nil, r.mapErr(err)
	}
	return &contract, nil
}

// GetContractByApplication retrieves the contract created from an application
func (r *Repository) GetContractByApplication(ctx context.Context, applicationID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&contract).Error; err != nil {
		return nil, r.mapErr(err)
	}
	return &contract, nil
}

// UpdateContract writes a contract back under a version check
func (r *Repository) UpdateContract(ctx context.Context, contract *models.Contract) error {
	prev := contract.Version
	contract.Version = prev + 1
	res := r.db.WithContext(ctx).Model(contract).
		Where("version = ?", prev).
		Select("*").Omit("id", "created_at").
		Updates(contract)
	if res.Error != nil {
		contract.Version = prev
		return r.mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		contract.Version = prev
		return ErrConflict
	}
	return nil
}

// ListContractsByRequest retrieves all contracts under a request
func (r *Repository) ListContractsByRequest(ctx context.Context, requestID uuid.UUID) ([]*models.Contract, error) {
	var contracts []*models.Contract
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&contracts).Error
	if err != nil {
		return nil, r.mapErr(err)
	}
	return contracts, nil
}

// ListContractsByUser retrieves contracts where the user is either party
func (r *Repository) ListContractsByUser(ctx context.Context, userID uint) ([]*models.Contract, error) {
	var contracts []*models.Contract
	err := r.db.WithContext(ctx).
		Where("requester_id = ? OR translator_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&contracts).Error
	if err != nil {
		return nil, r.mapErr(err)
	}
	return contracts, nil
}

// CreateEscrow creates an escrow account
func (r *Repository) CreateEscrow(ctx context.Context, escrow *models.Escrow) error {
	return r.mapErr(r.db.WithContext(ctx).Create(escrow).Error)
}

// GetEscrowByID retrieves an escrow by ID
func (r *Repository) GetEscrowByID(ctx context.Context, escrowID uuid.UUID) (*models.Escrow, error) {
	var escrow models.Escrow
	if err := r.db.WithContext(ctx).Where("id = ?", escrowID).First(&escrow).Error; err != nil {
		return nil, r.mapErr(err)
	}
	return &escrow, nil
}

// GetEscrowByContract retrieves the escrow securing a contract
func (r *Repository) GetEscrowByContract(ctx context.Context, contractID uuid.UUID) (*models.Escrow, error) {
	var escrow models.Escrow
	if err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).First(&escrow).Error; err != nil {
		return nil, r.mapErr(err)
	}
	return &escrow, nil
}

// UpdateEscrow writes an escrow back under a version check
func (r *Repository) UpdateEscrow(ctx context.Context, escrow *models.Escrow) error {
	prev := escrow.Version
	escrow.Version = prev + 1
	res := r.db.WithContext(ctx).Model(escrow).
		Where("version = ?", prev).
		Select("*").Omit("id", "created_at").
		Updates(escrow)
	if res.Error != nil {
		escrow.Version = prev
		return r.mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		escrow.Version = prev
		return ErrConflict
	}
	return nil
}
