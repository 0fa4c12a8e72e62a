package inmemdb

import (
	"context"

	"github.com/rawadhq/rawad/core/admin"
)

type adminRepository struct {
	db *adminTable
}

var _ admin.Repository = (*adminRepository)(nil) // interface compliance check

func NewAdminRepository(db *DB) *adminRepository {
	return &adminRepository{db: db.admin}
}

func (repo *adminRepository) GetCredential(ctx context.Context) (admin.Credential, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.db.cred == nil {
		return admin.Credential{}, admin.ErrNotFound
	}
	return *repo.db.cred, nil
}

func (repo *adminRepository) SaveCredential(ctx context.Context, cred admin.Credential) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.cred = &cred
	return nil
}
