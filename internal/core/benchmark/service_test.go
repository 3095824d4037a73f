package benchmark

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeRepo struct {
	benchmarks map[string]*compensation.Benchmark
	order      []string
	seq        int
	listAllErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{benchmarks: make(map[string]*compensation.Benchmark)}
}

func (r *fakeRepo) Create(_ context.Context, b *compensation.Benchmark) (*compensation.Benchmark, error) {
	clone := compensation.CloneBenchmark(b)
	r.seq++
	id := fmt.Sprintf("bm-%d", r.seq)
	clone.ID = id
	r.benchmarks[id] = clone
	r.order = append(r.order, id)
	return compensation.CloneBenchmark(clone), nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.benchmarks[id]; !ok {
		return ErrBenchmarkNotFound
	}
	delete(r.benchmarks, id)
	for i, existingID := range r.order {
		if existingID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*compensation.Benchmark, error) {
	b, ok := r.benchmarks[id]
	if !ok {
		return nil, ErrBenchmarkNotFound
	}
	return compensation.CloneBenchmark(b), nil
}

func (r *fakeRepo) FindByKey(_ context.Context, key Key) (*compensation.Benchmark, error) {
	for _, id := range r.order {
		b := r.benchmarks[id]
		if strings.EqualFold(b.Role.Name, key.RoleName) && b.Role.Level == key.Level && b.ReferenceDate.Equal(key.ReferenceDate) {
			return compensation.CloneBenchmark(b), nil
		}
	}
	return nil, ErrBenchmarkNotFound
}

func (r *fakeRepo) List(_ context.Context, filter ListBenchmarksFilter) ([]*compensation.Benchmark, string, error) {
	var filtered []*compensation.Benchmark
	for _, id := range r.order {
		b := r.benchmarks[id]
		if filter.RoleName != nil && !strings.EqualFold(b.Role.Name, *filter.RoleName) {
			continue
		}
		if filter.Level != nil && b.Role.Level != *filter.Level {
			continue
		}
		filtered = append(filtered, compensation.CloneBenchmark(b))
	}

	if filter.Offset > len(filtered) {
		return []*compensation.Benchmark{}, "", nil
	}
	end := filter.Offset + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	next := ""
	if end < len(filtered) {
		next = strconv.Itoa(end)
	}
	return filtered[filter.Offset:end], next, nil
}

func (r *fakeRepo) ListAll(context.Context) ([]*compensation.Benchmark, error) {
	if r.listAllErr != nil {
		return nil, r.listAllErr
	}
	result := make([]*compensation.Benchmark, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, compensation.CloneBenchmark(r.benchmarks[id]))
	}
	return result, nil
}

type countingNotifier struct {
	calls int
}

func (n *countingNotifier) BenchmarksChanged(context.Context) error {
	n.calls++
	return errors.New("cache unavailable")
}

func validCreateInput() CreateBenchmarkInput {
	return CreateBenchmarkInput{
		RoleName:      "Backend Developer",
		RoleLevel:     compensation.LevelPleno,
		FloorSalary:   decimal.NewFromInt(7000),
		AverageSalary: decimal.NewFromInt(9000),
		CeilingSalary: decimal.NewFromInt(12000),
		ReferenceDate: time.Date(2025, 1, 15, 13, 0, 0, 0, time.UTC),
		Region:        "Southeast",
	}
}

func TestService_CreateBenchmark_Success(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	notifier := &countingNotifier{}
	svc := NewService(newFakeRepo(), &stubClock{now: now}, nil, WithNotifier(notifier))

	in := validCreateInput()
	in.RoleName = "  backend   developer "
	in.RoleLevel = "pleno"

	created, err := svc.CreateBenchmark(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateBenchmark returned error: %v", err)
	}

	if created.ID == "" {
		t.Fatal("expected id to be assigned")
	}
	if created.Role.Name != "backend developer" || created.Role.Level != compensation.LevelPleno {
		t.Fatalf("unexpected role %+v", created.Role)
	}
	if !created.ReferenceDate.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected reference date truncated to day, got %v", created.ReferenceDate)
	}
	if !created.CreatedAt.Equal(now) {
		t.Fatalf("expected created at %v, got %v", now, created.CreatedAt)
	}
	if notifier.calls != 1 {
		t.Fatalf("expected 1 notification, got %d", notifier.calls)
	}
}

func TestService_CreateBenchmark_Duplicate(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)

	if _, err := svc.CreateBenchmark(context.Background(), validCreateInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := validCreateInput()
	dup.RoleName = "BACKEND DEVELOPER"
	if _, err := svc.CreateBenchmark(context.Background(), dup); !errors.Is(err, ErrBenchmarkAlreadyExists) {
		t.Fatalf("expected ErrBenchmarkAlreadyExists, got %v", err)
	}

	other := validCreateInput()
	other.ReferenceDate = other.ReferenceDate.AddDate(1, 0, 0)
	if _, err := svc.CreateBenchmark(context.Background(), other); err != nil {
		t.Fatalf("expected a later reference date to be accepted, got %v", err)
	}
}

func TestService_CreateBenchmark_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)

	cases := []struct {
		name   string
		mutate func(*CreateBenchmarkInput)
		want   error
	}{
		{"missing role", func(in *CreateBenchmarkInput) { in.RoleName = " " }, ErrInvalidRole},
		{"unknown level", func(in *CreateBenchmarkInput) { in.RoleLevel = "LEAD" }, ErrInvalidRole},
		{"floor above average", func(in *CreateBenchmarkInput) { in.FloorSalary = decimal.NewFromInt(9500) }, ErrInvalidRange},
		{"average above ceiling", func(in *CreateBenchmarkInput) { in.CeilingSalary = decimal.NewFromInt(8000) }, ErrInvalidRange},
		{"negative floor", func(in *CreateBenchmarkInput) { in.FloorSalary = decimal.NewFromInt(-1) }, ErrInvalidRange},
		{"missing reference date", func(in *CreateBenchmarkInput) { in.ReferenceDate = time.Time{} }, ErrInvalidReferenceDate},
	}

	for _, tc := range cases {
		in := validCreateInput()
		tc.mutate(&in)
		if _, err := svc.CreateBenchmark(context.Background(), in); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestService_ListBenchmarks_Filter(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)

	levels := []compensation.Level{compensation.LevelJunior, compensation.LevelPleno, compensation.LevelSenior}
	for _, level := range levels {
		in := validCreateInput()
		in.RoleLevel = level
		if _, err := svc.CreateBenchmark(context.Background(), in); err != nil {
			t.Fatalf("unexpected seed error: %v", err)
		}
	}

	senior := compensation.Level("senior")
	result, err := svc.ListBenchmarks(context.Background(), ListBenchmarksInput{RoleLevel: &senior})
	if err != nil {
		t.Fatalf("ListBenchmarks returned error: %v", err)
	}
	if len(result.Benchmarks) != 1 || result.Benchmarks[0].Role.Level != compensation.LevelSenior {
		t.Fatalf("expected only the senior benchmark, got %+v", result.Benchmarks)
	}

	name := "backend developer"
	page, err := svc.ListBenchmarks(context.Background(), ListBenchmarksInput{RoleName: &name, PageSize: 2})
	if err != nil {
		t.Fatalf("ListBenchmarks returned error: %v", err)
	}
	if len(page.Benchmarks) != 2 || page.NextPageToken != "2" {
		t.Fatalf("unexpected page %d %q", len(page.Benchmarks), page.NextPageToken)
	}

	bad := compensation.Level("LEAD")
	if _, err := svc.ListBenchmarks(context.Background(), ListBenchmarksInput{RoleLevel: &bad}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := svc.ListBenchmarks(context.Background(), ListBenchmarksInput{PageToken: "-1"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}

func TestService_ListAllAndDelete(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	notifier := &countingNotifier{}
	svc := NewService(repo, nil, nil, WithNotifier(notifier))

	created, err := svc.CreateBenchmark(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := svc.ListAll(context.Background())
	if err != nil || len(all) != 1 {
		t.Fatalf("expected 1 benchmark, got %d (%v)", len(all), err)
	}

	if err := svc.DeleteBenchmark(context.Background(), DeleteBenchmarkInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteBenchmark returned error: %v", err)
	}
	if notifier.calls != 2 {
		t.Fatalf("expected notifications for create and delete, got %d", notifier.calls)
	}

	if _, err := svc.GetBenchmark(context.Background(), GetBenchmarkInput{ID: created.ID}); !errors.Is(err, ErrBenchmarkNotFound) {
		t.Fatalf("expected ErrBenchmarkNotFound, got %v", err)
	}
	if err := svc.DeleteBenchmark(context.Background(), DeleteBenchmarkInput{ID: created.ID}); !errors.Is(err, ErrBenchmarkNotFound) {
		t.Fatalf("expected ErrBenchmarkNotFound on second delete, got %v", err)
	}
	if notifier.calls != 2 {
		t.Fatalf("failed delete must not notify, got %d", notifier.calls)
	}

	repo.listAllErr = errors.New("db down")
	if _, err := svc.ListAll(context.Background()); err == nil {
		t.Fatal("expected repository error to propagate")
	}
}

type fakeCatalog struct {
	roles map[string]compensation.Role
	err   error
}

func (c *fakeCatalog) Lookup(_ context.Context, role compensation.Role) (compensation.Role, bool, error) {
	if c.err != nil {
		return compensation.Role{}, false, c.err
	}
	found, ok := c.roles[strings.ToLower(role.Name)+"/"+string(role.Level)]
	return found, ok, nil
}

func TestService_CreateBenchmark_RoleCatalog(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{roles: map[string]compensation.Role{
		"backend developer/PLENO": {Name: "Backend Developer", Level: compensation.LevelPleno},
	}}
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, WithRoleCatalog(catalog))

	in := validCreateInput()
	in.RoleName = "backend developer"
	created, err := svc.CreateBenchmark(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateBenchmark returned error: %v", err)
	}
	if created.Role.Name != "Backend Developer" {
		t.Fatalf("expected catalogue spelling, got %q", created.Role.Name)
	}

	typo := validCreateInput()
	typo.RoleName = "Backend Develloper"
	if _, err := svc.CreateBenchmark(context.Background(), typo); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}

	otherLevel := validCreateInput()
	otherLevel.RoleLevel = compensation.LevelSenior
	if _, err := svc.CreateBenchmark(context.Background(), otherLevel); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole for unregistered level, got %v", err)
	}
	if len(repo.benchmarks) != 1 {
		t.Fatalf("rejected benchmarks must not be stored, got %d", len(repo.benchmarks))
	}

	catalog.err = errors.New("db down")
	if _, err := svc.CreateBenchmark(context.Background(), typo); err == nil || errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected catalogue error to propagate, got %v", err)
	}
}

func TestService_CreateBenchmark_AmountAboveStorableMaximum(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)

	in := validCreateInput()
	in.CeilingSalary = compensation.MaxAmount.Add(decimal.NewFromInt(1))
	if _, err := svc.CreateBenchmark(context.Background(), in); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	in.CeilingSalary = compensation.MaxAmount
	if _, err := svc.CreateBenchmark(context.Background(), in); err != nil {
		t.Fatalf("expected the maximum amount to be accepted, got %v", err)
	}
}

func TestService_NotificationFailureIsLogged(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	notifier := &countingNotifier{}
	svc := NewService(newFakeRepo(), nil, nil, WithNotifier(notifier), WithLogger(zap.New(core)))

	if _, err := svc.CreateBenchmark(context.Background(), validCreateInput()); err != nil {
		t.Fatalf("notification failure must not fail the write, got %v", err)
	}

	entries := logs.FilterMessageSnippet("notification failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 logged notification failure, got %d", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %s", entries[0].Level)
	}
}
