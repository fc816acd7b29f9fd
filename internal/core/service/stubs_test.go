package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/payrollhq/payroll-system/internal/core/domain"
	"github.com/payrollhq/payroll-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory store shared by the repository stubs. memTx snapshots it so a
// failed transaction leaves nothing behind, like the Postgres store does.
// ---------------------------------------------------------------------------

type memStore struct {
	mu          sync.Mutex
	users       map[string]*domain.User
	employees   map[int64]*domain.Employee
	departments map[int64]*domain.Department
	nextID      int64

	// raceUsername makes the next user create for that name fail as if a
	// concurrent request had just committed it.
	raceUsername  string
	raceAlways    bool
	afterRollback []func()

	findErr   error
	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]*domain.User),
		employees:   make(map[int64]*domain.Employee),
		departments: make(map[int64]*domain.Department),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addDepartment(name string) *domain.Department {
	s.mu.Lock()
	defer s.mu.Unlock()
	dep := &domain.Department{ID: s.id(), Name: name}
	s.departments[dep.ID] = dep
	return cloneDepartment(dep)
}

func (s *memStore) addUser(username, role string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &domain.User{ID: s.id(), Username: username, PasswordHash: "x", Role: role}
	s.users[username] = u
	return cloneUser(u)
}

func (s *memStore) addEmployee(name, email string, depID int64, owner *domain.User) *domain.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &domain.Employee{ID: s.id(), Name: name, Email: email, DepartmentID: depID}
	if owner != nil {
		uid := owner.ID
		e.UserID = &uid
		e.Username = owner.Username
	}
	s.employees[e.ID] = e
	return cloneEmployee(e)
}

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *memStore) employeeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.employees)
}

type snapshot struct {
	users       map[string]*domain.User
	employees   map[int64]*domain.Employee
	departments map[int64]*domain.Department
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		users:       make(map[string]*domain.User, len(s.users)),
		employees:   make(map[int64]*domain.Employee, len(s.employees)),
		departments: make(map[int64]*domain.Department, len(s.departments)),
	}
	for k, v := range s.users {
		snap.users[k] = cloneUser(v)
	}
	for k, v := range s.employees {
		snap.employees[k] = cloneEmployee(v)
	}
	for k, v := range s.departments {
		snap.departments[k] = cloneDepartment(v)
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	s.users = snap.users
	s.employees = snap.employees
	s.departments = snap.departments
	hooks := s.afterRollback
	s.afterRollback = nil
	s.rollbacks++
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func cloneEmployee(e *domain.Employee) *domain.Employee {
	if e == nil {
		return nil
	}
	c := *e
	if e.UserID != nil {
		uid := *e.UserID
		c.UserID = &uid
	}
	return &c
}

func cloneDepartment(d *domain.Department) *domain.Department {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

// ---------------------------------------------------------------------------
// TxManager
// ---------------------------------------------------------------------------

type memTx struct{ store *memStore }

func (t memTx) WithinReadWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	t.store.mu.Lock()
	t.store.commits++
	t.store.mu.Unlock()
	return nil
}

// ---------------------------------------------------------------------------
// UserRepository
// ---------------------------------------------------------------------------

type memUsers struct{ store *memStore }

func (r memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.findErr != nil {
		return nil, r.store.findErr
	}
	u, ok := r.store.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r memUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.raceUsername != "" && r.store.raceUsername == user.Username {
		if r.store.raceAlways {
			return nil, domain.ErrUserExists
		}
		r.store.raceUsername = ""
		winner := &domain.User{ID: r.store.id(), Username: user.Username, PasswordHash: "winner", Role: "ROLE_EMPLOYEE"}
		r.store.afterRollback = append(r.store.afterRollback, func() {
			r.store.mu.Lock()
			r.store.users[winner.Username] = winner
			r.store.mu.Unlock()
		})
		return nil, domain.ErrUserExists
	}

	if _, exists := r.store.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	c := cloneUser(user)
	c.ID = r.store.id()
	r.store.users[c.Username] = c
	return cloneUser(c), nil
}

func (r memUsers) List(_ context.Context) ([]*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*domain.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---------------------------------------------------------------------------
// EmployeeRepository
// ---------------------------------------------------------------------------

type memEmployees struct{ store *memStore }

func (r memEmployees) Create(_ context.Context, e *domain.Employee) (*domain.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.checkUnique(e, 0); err != nil {
		return nil, err
	}
	if _, ok := r.store.departments[e.DepartmentID]; !ok {
		return nil, domain.ErrDepartmentNotFound
	}
	c := cloneEmployee(e)
	c.ID = r.store.id()
	c.Username = r.usernameOf(c.UserID)
	r.store.employees[c.ID] = c
	return cloneEmployee(c), nil
}

// usernameOf mirrors the join the SQL repository does on reads.
func (r memEmployees) usernameOf(userID *int64) string {
	if userID == nil {
		return ""
	}
	for _, u := range r.store.users {
		if u.ID == *userID {
			return u.Username
		}
	}
	return ""
}

func (r memEmployees) Update(_ context.Context, e *domain.Employee) (*domain.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.employees[e.ID]; !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	if err := r.checkUnique(e, e.ID); err != nil {
		return nil, err
	}
	c := cloneEmployee(e)
	r.store.employees[c.ID] = c
	return cloneEmployee(c), nil
}

func (r memEmployees) checkUnique(e *domain.Employee, self int64) error {
	for id, other := range r.store.employees {
		if id == self {
			continue
		}
		if other.Email == e.Email {
			return domain.ErrEmailTaken
		}
		if e.UserID != nil && other.UserID != nil && *other.UserID == *e.UserID {
			return domain.ErrUserAlreadyLinked
		}
	}
	return nil
}

func (r memEmployees) FindByID(_ context.Context, id int64) (*domain.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.employees[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	return cloneEmployee(e), nil
}

func (r memEmployees) FindByEmail(_ context.Context, email string) (*domain.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range r.store.employees {
		if e.Email == email {
			return cloneEmployee(e), nil
		}
	}
	return nil, domain.ErrEmployeeNotFound
}

func (r memEmployees) FindByUserID(_ context.Context, userID int64) (*domain.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range r.store.employees {
		if e.OwnedBy(userID) {
			return cloneEmployee(e), nil
		}
	}
	return nil, domain.ErrEmployeeNotFound
}

func (r memEmployees) List(_ context.Context) ([]*domain.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*domain.Employee, 0, len(r.store.employees))
	for _, e := range r.store.employees {
		out = append(out, cloneEmployee(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memEmployees) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.employees[id]; !ok {
		return domain.ErrEmployeeNotFound
	}
	delete(r.store.employees, id)
	return nil
}

// ---------------------------------------------------------------------------
// DepartmentRepository
// ---------------------------------------------------------------------------

type memDepartments struct{ store *memStore }

func (r memDepartments) Create(_ context.Context, name string) (*domain.Department, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, d := range r.store.departments {
		if d.Name == name {
			return nil, domain.ErrDepartmentExists
		}
	}
	d := &domain.Department{ID: r.store.id(), Name: name}
	r.store.departments[d.ID] = d
	return cloneDepartment(d), nil
}

func (r memDepartments) Rename(_ context.Context, id int64, name string) (*domain.Department, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, ok := r.store.departments[id]
	if !ok {
		return nil, domain.ErrDepartmentNotFound
	}
	for _, other := range r.store.departments {
		if other.ID != id && other.Name == name {
			return nil, domain.ErrDepartmentExists
		}
	}
	d.Name = name
	return cloneDepartment(d), nil
}

func (r memDepartments) FindByID(_ context.Context, id int64) (*domain.Department, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, ok := r.store.departments[id]
	if !ok {
		return nil, domain.ErrDepartmentNotFound
	}
	return cloneDepartment(d), nil
}

func (r memDepartments) FindByName(_ context.Context, name string) (*domain.Department, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, d := range r.store.departments {
		if d.Name == name {
			return cloneDepartment(d), nil
		}
	}
	return nil, domain.ErrDepartmentNotFound
}

func (r memDepartments) List(_ context.Context) ([]*domain.Department, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*domain.Department, 0, len(r.store.departments))
	for _, d := range r.store.departments {
		out = append(out, cloneDepartment(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memDepartments) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.departments[id]; !ok {
		return domain.ErrDepartmentNotFound
	}
	for _, e := range r.store.employees {
		if e.DepartmentID == id {
			return domain.ErrDepartmentInUse
		}
	}
	delete(r.store.departments, id)
	return nil
}

// ---------------------------------------------------------------------------
// Recorder, idempotency store and token issuer
// ---------------------------------------------------------------------------

type stubRecorder struct {
	mu     sync.Mutex
	events []domain.AccessEvent
}

func (r *stubRecorder) Record(e domain.AccessEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *stubRecorder) last() domain.AccessEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return domain.AccessEvent{}
	}
	return r.events[len(r.events)-1]
}

type stubIdempotency struct {
	keys      map[string]ports.IdempotencyRecord
	lookupErr error
	saveErr   error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]ports.IdempotencyRecord)}
}

func (s *stubIdempotency) Lookup(_ context.Context, key string) (ports.IdempotencyRecord, bool, error) {
	if s.lookupErr != nil {
		return ports.IdempotencyRecord{}, false, s.lookupErr
	}
	rec, ok := s.keys[key]
	return rec, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, key string, rec ports.IdempotencyRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if _, exists := s.keys[key]; !exists {
		s.keys[key] = rec
	}
	return nil
}

type stubIssuer struct {
	err      error
	subjects []string
	roles    []string
}

func (s *stubIssuer) Issue(subject, role string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.subjects = append(s.subjects, subject)
	s.roles = append(s.roles, role)
	return "token-for-" + subject, nil
}

var errStorage = errors.New("storage unavailable")
