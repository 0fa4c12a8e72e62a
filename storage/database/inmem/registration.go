package inmemdb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rawadhq/rawad/core/registration"
)

type registrationRepository struct {
	db *registrationTable

	subMutex sync.Mutex
	nextSub  int
	subs     map[int]func([]registration.Registration)
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *DB) *registrationRepository {
	return &registrationRepository{db: db.registration}
}

// query returns all registrations newest first. Callers hold the lock.
func (repo *registrationRepository) query() []registration.Registration {
	regs := make([]registration.Registration, 0, len(repo.db.table))
	for _, reg := range repo.db.table {
		regs = append(regs, *reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].CreatedAt.After(regs[j].CreatedAt) })
	return regs
}

func (repo *registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	repo.db.mutex.Lock()
	reg.ID = uuid.New().String()
	reg.CreatedAt = time.Now().UTC()
	repo.db.table[reg.ID] = &reg
	repo.db.mutex.Unlock()

	repo.notify()
	return reg, nil
}

func (repo *registrationRepository) QueryRegistrations(ctx context.Context, filter registration.QueryFilter) ([]registration.Registration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var regs []registration.Registration
	for _, reg := range repo.query() {
		if filter.Match(reg) {
			regs = append(regs, reg)
		}
	}
	return regs, nil
}

func (repo *registrationRepository) GetRegistration(ctx context.Context, id string) (registration.Registration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if reg, ok := repo.db.table[id]; ok {
		return *reg, nil
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) DeleteRegistrations(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	repo.db.mutex.Unlock()

	repo.notify()
	return nil
}

func (repo *registrationRepository) SubscribeRegistrations(cb func([]registration.Registration)) func() {
	repo.subMutex.Lock()
	defer repo.subMutex.Unlock()

	if repo.subs == nil {
		repo.subs = make(map[int]func([]registration.Registration))
	}
	id := repo.nextSub
	repo.nextSub++
	repo.subs[id] = cb

	return func() {
		repo.subMutex.Lock()
		defer repo.subMutex.Unlock()
		delete(repo.subs, id)
	}
}

func (repo *registrationRepository) notify() {
	repo.subMutex.Lock()
	subs := make([]func([]registration.Registration), 0, len(repo.subs))
	for _, cb := range repo.subs {
		subs = append(subs, cb)
	}
	repo.subMutex.Unlock()

	if len(subs) == 0 {
		return
	}

	repo.db.mutex.RLock()
	regs := repo.query()
	repo.db.mutex.RUnlock()

	for _, cb := range subs {
		cb(regs)
	}
}
