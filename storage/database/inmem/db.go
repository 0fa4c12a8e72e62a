package inmemdb

import (
	"sync"

	"github.com/rawadhq/rawad/core/admin"
	"github.com/rawadhq/rawad/core/registration"
)

type (
	DB struct {
		registration *registrationTable
		admin        *adminTable
	}

	registrationTable struct {
		table map[string]*registration.Registration
		mutex sync.RWMutex
	}

	adminTable struct {
		cred  *admin.Credential
		mutex sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		registration: &registrationTable{table: make(map[string]*registration.Registration)},
		admin:        &adminTable{},
	}
	return db, nil
}
