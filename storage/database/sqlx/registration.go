package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/rawadhq/rawad/core"
	"github.com/rawadhq/rawad/core/registration"
)

// newest first, everywhere registrations are listed
var defaultOrdering = core.DBOrdering{Field: "created_at"}

type registrationRow struct {
	ID                string      `db:"id"`
	FullName          string      `db:"full_name"`
	Email             string      `db:"email"`
	Phone             string      `db:"phone"`
	Role              string      `db:"role"`
	CVLink            string      `db:"cv_link"`
	Bio               null.String `db:"bio"`
	AdditionalNotes   null.String `db:"additional_notes"`
	YearsOfExperience null.String `db:"years_of_experience"`
	Specializations   null.String `db:"specializations"`
	HRExperience      null.Bool   `db:"hr_experience"`
	CurrentField      null.String `db:"current_field"`
	Reason            null.String `db:"reason"`
	Status            string      `db:"status"`
	CreatedAt         time.Time   `db:"created_at"`
}

type registrationRepository struct {
	db  *sqlx.DB
	hub subscriberHub
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *sql.DB) *registrationRepository {
	return &registrationRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *registrationRepository) pack(reg registration.Registration) registrationRow {
	return registrationRow{
		ID:                reg.ID,
		FullName:          reg.FullName,
		Email:             reg.Email,
		Phone:             reg.Phone,
		Role:              reg.Role,
		CVLink:            reg.CVLink,
		Bio:               null.NewString(reg.Bio, reg.Bio != ""),
		AdditionalNotes:   null.NewString(reg.AdditionalNotes, reg.AdditionalNotes != ""),
		YearsOfExperience: null.NewString(reg.YearsOfExperience, reg.YearsOfExperience != ""),
		Specializations:   null.NewString(reg.Specializations, reg.Specializations != ""),
		HRExperience:      null.NewBool(reg.HRExperience, reg.IsMentor()),
		CurrentField:      null.NewString(reg.CurrentField, reg.CurrentField != ""),
		Reason:            null.NewString(reg.Reason, reg.Reason != ""),
		Status:            reg.Status,
		CreatedAt:         reg.CreatedAt.UTC(),
	}
}

func (repo *registrationRepository) unpack(row registrationRow) registration.Registration {
	return registration.Registration{
		ID:                row.ID,
		FullName:          row.FullName,
		Email:             row.Email,
		Phone:             row.Phone,
		Role:              row.Role,
		CVLink:            row.CVLink,
		Bio:               row.Bio.String,
		AdditionalNotes:   row.AdditionalNotes.String,
		YearsOfExperience: row.YearsOfExperience.String,
		Specializations:   row.Specializations.String,
		HRExperience:      row.HRExperience.Bool,
		CurrentField:      row.CurrentField.String,
		Reason:            row.Reason.String,
		Status:            row.Status,
		CreatedAt:         row.CreatedAt.UTC(),
	}
}

func (repo *registrationRepository) unpackSlice(rows []registrationRow) []registration.Registration {
	regs := make([]registration.Registration, 0, len(rows))
	for _, row := range rows {
		regs = append(regs, repo.unpack(row))
	}
	return regs
}

// trapNoRowsErr maps psql "no rows" err to registration.ErrNotFound
func (repo *registrationRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return registration.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	reg.ID = uuid.New().String()
	reg.CreatedAt = time.Now().UTC()

	query := `
	INSERT INTO registration (
		id, full_name, email, phone, role, cv_link, bio, additional_notes,
		years_of_experience, specializations, hr_experience, current_field, reason,
		status, created_at
	) VALUES (
		:id, :full_name, :email, :phone, :role, :cv_link, :bio, :additional_notes,
		:years_of_experience, :specializations, :hr_experience, :current_field, :reason,
		:status, :created_at
	)`
	if _, err := repo.db.NamedExecContext(ctx, query, repo.pack(reg)); err != nil {
		return registration.Registration{}, errors.Wrap(err, "inserting registration")
	}

	repo.hub.broadcast(repo.queryAll)
	return reg, nil
}

func (repo *registrationRepository) QueryRegistrations(ctx context.Context, filter registration.QueryFilter) ([]registration.Registration, error) {
	query := `SELECT * FROM registration`
	var conds []string
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return pqPlaceholder(len(args))
	}

	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		ph := arg(val)
		conds = append(conds, "(full_name ILIKE "+ph+" OR email ILIKE "+ph+")")
	}
	if filter.Role != "" {
		conds = append(conds, "role = "+arg(filter.Role))
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.CreatedFrom.UTC()))
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, "created_at <= "+arg(filter.CreatedTo.UTC()))
	}

	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY " + defaultOrdering.String()

	var rows []registrationRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}
	return repo.unpackSlice(rows), nil
}

func (repo *registrationRepository) GetRegistration(ctx context.Context, id string) (registration.Registration, error) {
	if _, err := uuid.Parse(id); err != nil {
		return registration.Registration{}, registration.ErrNotFound
	}

	var row registrationRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM registration WHERE id = $1`, id)
	if err != nil {
		return registration.Registration{}, repo.trapNoRowsErr(err, "finding registration by ID")
	}
	return repo.unpack(row), nil
}

func (repo *registrationRepository) DeleteRegistrations(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM registration WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting registrations")
	}

	repo.hub.broadcast(repo.queryAll)
	return nil
}

func (repo *registrationRepository) SubscribeRegistrations(cb func([]registration.Registration)) func() {
	return repo.hub.subscribe(cb)
}

func (repo *registrationRepository) queryAll() ([]registration.Registration, error) {
	return repo.QueryRegistrations(context.Background(), registration.QueryFilter{})
}

func pqPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// subscriberHub fans the full newest-first list out to live listeners after
// every mutation.
type subscriberHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func([]registration.Registration)
}

func (h *subscriberHub) subscribe(cb func([]registration.Registration)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[int]func([]registration.Registration))
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = cb

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

func (h *subscriberHub) broadcast(query func() ([]registration.Registration, error)) {
	h.mu.Lock()
	subs := make([]func([]registration.Registration), 0, len(h.subs))
	for _, cb := range h.subs {
		subs = append(subs, cb)
	}
	h.mu.Unlock()

	if len(subs) == 0 {
		return
	}
	go func() {
		regs, err := query()
		if err != nil {
			return
		}
		for _, cb := range subs {
			cb(regs)
		}
	}()
}
