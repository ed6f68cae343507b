package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cpfregistry/internal/core/domain"
	"cpfregistry/internal/core/port"
)

type userRecord struct {
	user      domain.User
	createdAt int
	deletedAt *time.Time
}

func (r *userRecord) active() bool {
	return r.deletedAt == nil
}

// UserStore keeps users in a map owned by a single instance. Deleted users stay in the map.
type UserStore struct {
	mu      sync.RWMutex
	users   map[string]*userRecord
	counter int
	now     func() time.Time
}

var _ port.UserStore = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]*userRecord),
		now:   time.Now,
	}
}

func (s *UserStore) Create(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	s.users[user.ID()] = &userRecord{user: user, createdAt: s.counter}

	return nil
}

func (s *UserStore) IsCpfAlreadyCreated(ctx context.Context, cpf string, exceptID string) (bool, error) {
	return s.anyActive(func(u domain.User) bool {
		return u.Cpf() == cpf && u.ID() != exceptID
	}), nil
}

func (s *UserStore) IsEmailAlreadyCreated(ctx context.Context, email string, exceptID string) (bool, error) {
	return s.anyActive(func(u domain.User) bool {
		return u.Email() == email && u.ID() != exceptID
	}), nil
}

// FindAll returns active users in insertion order.
func (s *UserStore) FindAll(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*userRecord, 0, len(s.users))
	for _, record := range s.users {
		if record.active() {
			records = append(records, record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].createdAt < records[j].createdAt
	})

	users := make([]domain.User, len(records))
	for i, record := range records {
		users[i] = record.user
	}

	return users, nil
}

func (s *UserStore) IsExistentID(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.users[id]

	return ok && record.active(), nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (domain.UserDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.users[id]

	if !ok || !record.active() {
		return domain.UserDetails{}, &domain.NotFoundError{ID: id}
	}

	return domain.UserDetails{
		User:             record.user,
		IsCreditEligible: domain.IsCreditEligible(record.user.DateCreation(), s.now()),
	}, nil
}

func (s *UserStore) EditName(ctx context.Context, edit domain.FieldEdit) error {
	return s.edit(edit, func(params *domain.UserParams) {
		params.Name = edit.Value
	})
}

func (s *UserStore) EditCpf(ctx context.Context, edit domain.FieldEdit) error {
	return s.edit(edit, func(params *domain.UserParams) {
		params.Cpf = edit.Value
	})
}

func (s *UserStore) EditEmail(ctx context.Context, edit domain.FieldEdit) error {
	return s.edit(edit, func(params *domain.UserParams) {
		params.Email = edit.Value
	})
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[id]

	if !ok || !record.active() {
		return &domain.NotFoundError{ID: id}
	}

	deletedAt := s.now()
	record.deletedAt = &deletedAt

	return nil
}

// IsSoftDeleted reports whether id is still held but marked as deleted.
func (s *UserStore) IsSoftDeleted(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.users[id]

	return ok && !record.active()
}

func (s *UserStore) edit(edit domain.FieldEdit, apply func(*domain.UserParams)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[edit.ID]

	if !ok || !record.active() {
		return &domain.NotFoundError{ID: edit.ID}
	}

	params := record.user.Params()
	apply(&params)
	params.DateEdition = domain.FormatDateTime(edit.DateEdition)

	user, err := domain.NewUser(params)

	if err != nil {
		return err
	}

	record.user = user

	return nil
}

func (s *UserStore) anyActive(match func(domain.User) bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.users {
		if record.active() && match(record.user) {
			return true
		}
	}

	return false
}
