package service

import (
	"context"
	"sort"
	"time"

	"github.com/LDanielOchoa/Programacion-Areas/internal/model"
	"github.com/LDanielOchoa/Programacion-Areas/internal/repository"
)

// ── Mock ScheduleRecordRepository ──

type mockScheduleRecordRepo struct {
	records []model.ScheduleRecord
	nextID  int64
	err     error
}

func newMockScheduleRecordRepo() *mockScheduleRecordRepo {
	return &mockScheduleRecordRepo{nextID: 1}
}

func (m *mockScheduleRecordRepo) BatchCreate(_ context.Context, records []model.ScheduleRecord) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		r.ID = m.nextID
		m.nextID++
		m.records = append(m.records, r)
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (m *mockScheduleRecordRepo) ExistingDates(_ context.Context, area string, dates []string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	want := make(map[string]bool, len(dates))
	for _, d := range dates {
		want[d] = true
	}
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range m.records {
		d := r.FechaProgramacion.Format(model.DateLayout)
		if r.Area == area && want[d] && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *mockScheduleRecordRepo) ListByAreaAndRange(_ context.Context, area string, from, to time.Time) ([]model.ScheduleRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.ScheduleRecord
	for _, r := range m.records {
		if r.Area == area && !r.FechaProgramacion.Before(from) && !r.FechaProgramacion.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ── Mock NovedadRepository ──

type mockNovedadRepo struct {
	novedades []model.Novedad
	err       error
}

func (m *mockNovedadRepo) BatchCreate(_ context.Context, novedades []model.Novedad) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.novedades = append(m.novedades, novedades...)
	return int64(len(novedades)), nil
}

// ── Mock EmployeeRegistryRepository ──

type mockRegistryRepo struct {
	known map[string]bool
	calls int
	err   error
}

func newMockRegistryRepo(cedulas ...string) *mockRegistryRepo {
	m := &mockRegistryRepo{known: make(map[string]bool)}
	for _, c := range cedulas {
		m.known[c] = true
	}
	return m
}

func (m *mockRegistryRepo) FindExisting(_ context.Context, cedulas []string) ([]string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []string
	for _, c := range cedulas {
		if m.known[c] {
			out = append(out, c)
		}
	}
	return out, nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	tokens map[string]time.Duration
	err    error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{tokens: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.tokens[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.tokens[jti]
	return ok, nil
}

// ── 测试辅助 ──

type mockRepos struct {
	schedule *mockScheduleRecordRepo
	novedad  *mockNovedadRepo
	registry *mockRegistryRepo
}

func newMockRepository(known ...string) (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		schedule: newMockScheduleRecordRepo(),
		novedad:  &mockNovedadRepo{},
		registry: newMockRegistryRepo(known...),
	}
	return &repository.Repository{
		ScheduleRecord:   m.schedule,
		Novedad:          m.novedad,
		EmployeeRegistry: m.registry,
	}, m
}
