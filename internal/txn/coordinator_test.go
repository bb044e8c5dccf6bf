package txn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wouldcart/Triplexa2-sub009/internal/errorlog"
	"github.com/wouldcart/Triplexa2-sub009/internal/model"
	"github.com/wouldcart/Triplexa2-sub009/internal/validation"
)

// fakeStore is an in-memory RouteStore that counts calls and can be
// told to fail specific operations.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[uint64]*model.Route
	nextID  uint64
	calls   map[string]int
	failOn  map[string]error
	catalog []model.CatalogEntry
	catErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:   make(map[uint64]*model.Route),
		nextID: 1,
		calls:  make(map[string]int),
		failOn: make(map[string]error),
	}
}

func (s *fakeStore) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *fakeStore) fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[op] = err
}

func (s *fakeStore) check(op string) error {
	s.calls[op]++
	return s.failOn[op]
}

func (s *fakeStore) SelectByID(_ context.Context, id uint64) (*model.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("select"); err != nil {
		return nil, err
	}
	row, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("route %d not found", id)
	}
	return row.Clone(), nil
}

func (s *fakeStore) Insert(_ context.Context, route *model.Route) (*model.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("insert"); err != nil {
		return nil, err
	}
	cp := route.Clone()
	cp.ID = s.nextID
	s.nextID++
	s.rows[cp.ID] = cp
	return cp.Clone(), nil
}

func (s *fakeStore) Update(_ context.Context, id uint64, route *model.Route) (*model.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("update"); err != nil {
		return nil, err
	}
	if _, ok := s.rows[id]; !ok {
		return nil, fmt.Errorf("route %d not found", id)
	}
	cp := route.Clone()
	cp.ID = id
	s.rows[id] = cp
	return cp.Clone(), nil
}

func (s *fakeStore) DeleteByID(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete"); err != nil {
		return err
	}
	delete(s.rows, id)
	return nil
}

func (s *fakeStore) InsertWithID(_ context.Context, route *model.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("insert_with_id"); err != nil {
		return err
	}
	s.rows[route.ID] = route.Clone()
	return nil
}

func (s *fakeStore) LoadCatalog(_ context.Context) ([]model.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["load_catalog"]++
	return s.catalog, s.catErr
}

func (s *fakeStore) row(id uint64) *model.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok {
		return r.Clone()
	}
	return nil
}

func newTestCoordinator(store *fakeStore) (*Coordinator, *errorlog.Log) {
	log := errorlog.New(errorlog.Options{})
	engine := &validation.Engine{
		Now:        func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) },
		StaleAfter: validation.DefaultStaleAfter,
	}
	return NewCoordinator(store, store, engine, log), log
}

func TestExecuteTransaction_AllStepsSucceed(t *testing.T) {
	store := newFakeStore()
	c, _ := newTestCoordinator(store)

	var executed []int
	steps := []Step{
		func(ctx context.Context, st *State) (any, error) {
			executed = append(executed, 1)
			st.PushRollback(RollbackOperation{Operation: "undo-1", Table: routesTable,
				Execute: func(context.Context) error { return nil }})
			return "one", nil
		},
		func(ctx context.Context, st *State) (any, error) {
			executed = append(executed, 2)
			st.PushRollback(RollbackOperation{Operation: "undo-2", Table: routesTable,
				Execute: func(context.Context) error { return nil }})
			return "two", nil
		},
	}

	res := c.ExecuteTransaction(context.Background(), "test_op", steps, TxContext{})

	assert.True(t, res.Success)
	assert.False(t, res.RollbackPerformed)
	assert.Equal(t, 2, res.OperationsCompleted)
	assert.Equal(t, 2, res.TotalOperations)
	assert.Equal(t, []int{1, 2}, executed)
	assert.Equal(t, []any{"one", "two"}, res.Data)
	assert.Equal(t, 0, c.activeCount(), "registry drains after success")
}

func TestExecuteTransaction_MidStepFailureRollsBackInReverse(t *testing.T) {
	store := newFakeStore()
	c, _ := newTestCoordinator(store)

	var rolledBack []string
	mkStep := func(name string, fail bool) Step {
		return func(ctx context.Context, st *State) (any, error) {
			if fail {
				return nil, errors.New(name + " exploded")
			}
			st.PushRollback(RollbackOperation{Operation: "undo-" + name, Table: routesTable,
				Execute: func(context.Context) error {
					rolledBack = append(rolledBack, name)
					return nil
				}})
			return name, nil
		}
	}
	thirdRan := false
	steps := []Step{
		mkStep("step1", false),
		mkStep("step2", true),
		func(ctx context.Context, st *State) (any, error) {
			thirdRan = true
			return nil, nil
		},
	}

	res := c.ExecuteTransaction(context.Background(), "test_op", steps, TxContext{})

	assert.False(t, res.Success)
	assert.True(t, res.RollbackPerformed)
	assert.Equal(t, 1, res.OperationsCompleted)
	assert.Equal(t, 3, res.TotalOperations)
	assert.EqualError(t, res.Err, "step2 exploded")
	assert.False(t, thirdRan, "steps after the failure never run")
	assert.Equal(t, []string{"step1"}, rolledBack)
	assert.Equal(t, 0, c.activeCount(), "registry drains after failure")
}

func TestExecuteTransaction_RollbackRunsInStrictReverseOrder(t *testing.T) {
	store := newFakeStore()
	c, _ := newTestCoordinator(store)

	var rolledBack []int
	steps := make([]Step, 0, 4)
	for i := 1; i <= 3; i++ {
		i := i
		steps = append(steps, func(ctx context.Context, st *State) (any, error) {
			st.PushRollback(RollbackOperation{Operation: fmt.Sprintf("undo-%d", i), Table: routesTable,
				Execute: func(context.Context) error {
					rolledBack = append(rolledBack, i)
					return nil
				}})
			return i, nil
		})
	}
	steps = append(steps, func(ctx context.Context, st *State) (any, error) {
		return nil, errors.New("last step fails")
	})

	res := c.ExecuteTransaction(context.Background(), "test_op", steps, TxContext{})

	assert.False(t, res.Success)
	assert.Equal(t, 3, res.OperationsCompleted)
	assert.Equal(t, []int{3, 2, 1}, rolledBack)
}

func TestExecuteTransaction_RollbackFailureContinuesSweep(t *testing.T) {
	store := newFakeStore()
	c, log := newTestCoordinator(store)

	var rolledBack []string
	steps := []Step{
		func(ctx context.Context, st *State) (any, error) {
			st.PushRollback(RollbackOperation{Operation: "undo-first", Table: routesTable,
				Execute: func(context.Context) error {
					rolledBack = append(rolledBack, "first")
					return nil
				}})
			return nil, nil
		},
		func(ctx context.Context, st *State) (any, error) {
			st.PushRollback(RollbackOperation{Operation: "undo-second", Table: routesTable,
				Execute: func(context.Context) error {
					return errors.New("compensation rejected")
				}})
			return nil, nil
		},
		func(ctx context.Context, st *State) (any, error) {
			return nil, errors.New("step three fails")
		},
	}

	res := c.ExecuteTransaction(context.Background(), "test_op", steps, TxContext{})

	assert.False(t, res.Success)
	assert.True(t, res.RollbackPerformed, "outcome is still rolled-back despite the bad compensation")
	assert.Equal(t, []string{"first"}, rolledBack, "sweep continues past the failed compensation")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "manual intervention")

	found := false
	for _, e := range log.Entries() {
		if e.Code == "ROLLBACK_FAILED" {
			found = true
			assert.Equal(t, errorlog.CategoryDataIntegrity, e.Category)
		}
	}
	assert.True(t, found, "failed compensation is logged")
}

func TestExecuteTransaction_StepPanicIsCriticalAndRollsBack(t *testing.T) {
	store := newFakeStore()
	c, log := newTestCoordinator(store)

	var rolledBack bool
	steps := []Step{
		func(ctx context.Context, st *State) (any, error) {
			st.PushRollback(RollbackOperation{Operation: "undo", Table: routesTable,
				Execute: func(context.Context) error {
					rolledBack = true
					return nil
				}})
			return nil, nil
		},
		func(ctx context.Context, st *State) (any, error) {
			panic("unexpected orchestration bug")
		},
	}

	var res Result
	assert.NotPanics(t, func() {
		res = c.ExecuteTransaction(context.Background(), "test_op", steps, TxContext{})
	})

	assert.False(t, res.Success)
	assert.True(t, res.RollbackPerformed)
	assert.True(t, rolledBack)
	assert.Equal(t, 0, c.activeCount())

	var critical *errorlog.Entry
	for _, e := range log.Entries() {
		if e.Severity == errorlog.SeverityCritical {
			ec := e
			critical = &ec
		}
	}
	require.NotNil(t, critical, "a recovered panic is logged at critical severity")
	assert.Equal(t, "TRANSACTION_PANIC", critical.Code)
}

func TestExecuteTransaction_ConcurrentInvocationsAreIsolated(t *testing.T) {
	store := newFakeStore()
	c, _ := newTestCoordinator(store)

	const n = 8
	var wg sync.WaitGroup
	results := make([]Result, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			step := func(ctx context.Context, st *State) (any, error) {
				st.PushRollback(RollbackOperation{Operation: "undo", Table: routesTable,
					Execute: func(context.Context) error { return nil }})
				return i, nil
			}
			results[i] = c.ExecuteTransaction(context.Background(), "concurrent", []Step{step}, TxContext{})
		}()
	}
	wg.Wait()

	for i, res := range results {
		assert.True(t, res.Success, "transaction %d", i)
		assert.Equal(t, i, res.Data)
	}
	assert.Equal(t, 0, c.activeCount())
}

func TestActiveTransactionsAndForceRollback(t *testing.T) {
	store := newFakeStore()
	c, _ := newTestCoordinator(store)

	entered := make(chan struct{})
	release := make(chan struct{})
	var rolledBack bool

	go func() {
		steps := []Step{
			func(ctx context.Context, st *State) (any, error) {
				st.PushRollback(RollbackOperation{Operation: "undo", Table: routesTable,
					Execute: func(context.Context) error {
						rolledBack = true
						return nil
					}})
				return nil, nil
			},
			func(ctx context.Context, st *State) (any, error) {
				close(entered)
				<-release
				return nil, nil
			},
		}
		c.ExecuteTransaction(context.Background(), "long_op", steps, TxContext{})
	}()

	<-entered
	active := c.ActiveTransactions()
	require.Len(t, active, 1)
	assert.Equal(t, "long_op", active[0].Type)
	assert.Equal(t, 1, active[0].StepsCompleted)

	warnings, err := c.ForceRollback(context.Background(), active[0].ID)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, rolledBack)

	close(release)

	_, err = c.ForceRollback(context.Background(), "missing-id")
	assert.Error(t, err)
}

func TestForceRollback_OwningCallReportsRolledBack(t *testing.T) {
	store := newFakeStore()
	c, _ := newTestCoordinator(store)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan Result, 1)
	var firstUndone, secondUndone bool

	go func() {
		steps := []Step{
			func(ctx context.Context, st *State) (any, error) {
				st.PushRollback(RollbackOperation{Operation: "undo-first", Table: routesTable,
					Execute: func(context.Context) error {
						firstUndone = true
						return nil
					}})
				return nil, nil
			},
			func(ctx context.Context, st *State) (any, error) {
				close(entered)
				<-release
				st.PushRollback(RollbackOperation{Operation: "undo-second", Table: routesTable,
					Execute: func(context.Context) error {
						secondUndone = true
						return nil
					}})
				return nil, nil
			},
		}
		done <- c.ExecuteTransaction(context.Background(), "long_op", steps, TxContext{})
	}()

	<-entered
	active := c.ActiveTransactions()
	require.Len(t, active, 1)

	warnings, err := c.ForceRollback(context.Background(), active[0].ID)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, firstUndone, "completed step is compensated by the forced rollback")

	close(release)
	res := <-done

	assert.False(t, res.Success, "a force-rolled-back transaction never reports a commit")
	assert.True(t, res.RollbackPerformed)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "rolled back")
	assert.True(t, secondUndone, "step finishing after the forced sweep is compensated too")
	assert.Equal(t, 0, c.activeCount())
}
