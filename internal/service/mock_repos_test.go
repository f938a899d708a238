package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"agencyhub/internal/model"
	"agencyhub/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, _ repository.UserFilter) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

// ── Mock SectorRepository ──

type mockSectorRepo struct {
	sectors     map[string]*model.Sector
	agencyCount map[string]int64
}

func newMockSectorRepo() *mockSectorRepo {
	return &mockSectorRepo{
		sectors:     make(map[string]*model.Sector),
		agencyCount: make(map[string]int64),
	}
}

func (m *mockSectorRepo) Create(_ context.Context, sector *model.Sector) error {
	if sector.SectorID == "" {
		sector.SectorID = "sector-" + sector.Name
	}
	m.sectors[sector.SectorID] = sector
	return nil
}

func (m *mockSectorRepo) GetByID(_ context.Context, id string) (*model.Sector, error) {
	if s, ok := m.sectors[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectorRepo) List(_ context.Context) ([]model.Sector, error) {
	var result []model.Sector
	for _, s := range m.sectors {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSectorRepo) Update(_ context.Context, sector *model.Sector) error {
	m.sectors[sector.SectorID] = sector
	return nil
}

func (m *mockSectorRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.sectors, id)
	return nil
}

func (m *mockSectorRepo) CountAgencies(_ context.Context, sectorID string) (int64, error) {
	return m.agencyCount[sectorID], nil
}

// ── Mock AgencyRepository ──

type mockAgencyRepo struct {
	agencies  map[string]*model.Agency
	userCount map[string]int64
}

func newMockAgencyRepo() *mockAgencyRepo {
	return &mockAgencyRepo{
		agencies:  make(map[string]*model.Agency),
		userCount: make(map[string]int64),
	}
}

func (m *mockAgencyRepo) Create(_ context.Context, agency *model.Agency) error {
	if agency.AgencyID == "" {
		agency.AgencyID = "agency-" + agency.Name
	}
	m.agencies[agency.AgencyID] = agency
	return nil
}

func (m *mockAgencyRepo) GetByID(_ context.Context, id string) (*model.Agency, error) {
	if a, ok := m.agencies[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAgencyRepo) List(_ context.Context) ([]model.Agency, error) {
	var result []model.Agency
	for _, a := range m.agencies {
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockAgencyRepo) ListBySector(_ context.Context, sectorID string) ([]model.Agency, error) {
	var result []model.Agency
	for _, a := range m.agencies {
		if a.SectorID == sectorID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAgencyRepo) Update(_ context.Context, agency *model.Agency) error {
	m.agencies[agency.AgencyID] = agency
	return nil
}

func (m *mockAgencyRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.agencies, id)
	return nil
}

func (m *mockAgencyRepo) CountUsers(_ context.Context, agencyID string) (int64, error) {
	return m.userCount[agencyID], nil
}

// ── Mock PeriodRepository ──

type mockPeriodRepo struct {
	periods map[string]*model.ReportingPeriod
}

func newMockPeriodRepo() *mockPeriodRepo {
	return &mockPeriodRepo{periods: make(map[string]*model.ReportingPeriod)}
}

func (m *mockPeriodRepo) Create(_ context.Context, period *model.ReportingPeriod) error {
	if period.PeriodID == "" {
		period.PeriodID = fmt.Sprintf("period-%d-q%d", period.Year, period.Quarter)
	}
	m.periods[period.PeriodID] = period
	return nil
}

func (m *mockPeriodRepo) GetByID(_ context.Context, id string) (*model.ReportingPeriod, error) {
	if p, ok := m.periods[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) GetOpen(_ context.Context) (*model.ReportingPeriod, error) {
	for _, p := range m.periods {
		if p.Status == model.PeriodStatusOpen {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) List(_ context.Context) ([]model.ReportingPeriod, error) {
	var result []model.ReportingPeriod
	for _, p := range m.periods {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockPeriodRepo) Update(_ context.Context, period *model.ReportingPeriod) error {
	m.periods[period.PeriodID] = period
	return nil
}

func (m *mockPeriodRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.periods, id)
	return nil
}

func (m *mockPeriodRepo) CloseOpen(_ context.Context, _ string) error {
	for _, p := range m.periods {
		if p.Status == model.PeriodStatusOpen {
			p.Status = model.PeriodStatusClosed
		}
	}
	return nil
}

// ── Mock ProgramRepository ──

type mockProgramRepo struct {
	programs    map[string]*model.Program
	assignments map[string][]string // programID → agencyIDs
}

func newMockProgramRepo() *mockProgramRepo {
	return &mockProgramRepo{
		programs:    make(map[string]*model.Program),
		assignments: make(map[string][]string),
	}
}

func (m *mockProgramRepo) Create(_ context.Context, program *model.Program) error {
	if program.ProgramID == "" {
		program.ProgramID = "prog-" + program.Name
	}
	m.programs[program.ProgramID] = program
	return nil
}

func (m *mockProgramRepo) GetByID(_ context.Context, id string) (*model.Program, error) {
	if p, ok := m.programs[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgramRepo) List(_ context.Context, filter repository.ProgramFilter) ([]model.Program, error) {
	var result []model.Program
	for _, p := range m.programs {
		if filter.AgencyID != "" && p.AgencyID != filter.AgencyID {
			continue
		}
		if filter.SectorID != "" && p.SectorID != filter.SectorID {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockProgramRepo) ListOwnedByAgency(_ context.Context, agencyID string) ([]model.Program, error) {
	var result []model.Program
	for _, p := range m.programs {
		if p.AgencyID == agencyID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProgramRepo) ListAssignedToAgency(_ context.Context, agencyID string) ([]model.Program, error) {
	var result []model.Program
	for programID, agencies := range m.assignments {
		for _, a := range agencies {
			if a == agencyID {
				if p, ok := m.programs[programID]; ok {
					result = append(result, *p)
				}
			}
		}
	}
	return result, nil
}

func (m *mockProgramRepo) Update(_ context.Context, program *model.Program) error {
	m.programs[program.ProgramID] = program
	return nil
}

func (m *mockProgramRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.programs, id)
	return nil
}

func (m *mockProgramRepo) CountByCreator(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, p := range m.programs {
		if p.CreatedBy != nil && *p.CreatedBy == userID {
			count++
		}
	}
	return count, nil
}

func (m *mockProgramRepo) Assign(_ context.Context, assignment *model.ProgramAssignment) error {
	m.assignments[assignment.ProgramID] = append(m.assignments[assignment.ProgramID], assignment.AgencyID)
	return nil
}

func (m *mockProgramRepo) Unassign(_ context.Context, programID, agencyID string) error {
	var kept []string
	for _, a := range m.assignments[programID] {
		if a != agencyID {
			kept = append(kept, a)
		}
	}
	m.assignments[programID] = kept
	return nil
}

func (m *mockProgramRepo) DeleteAssignments(_ context.Context, programID string) error {
	delete(m.assignments, programID)
	return nil
}

func (m *mockProgramRepo) IsAssignedTo(_ context.Context, programID, agencyID string) (bool, error) {
	for _, a := range m.assignments[programID] {
		if a == agencyID {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	subs map[string]*model.ProgramSubmission // key: programID:periodID:draft|final
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{subs: make(map[string]*model.ProgramSubmission)}
}

func subKey(programID, periodID string, isDraft bool) string {
	kind := "final"
	if isDraft {
		kind = "draft"
	}
	return programID + ":" + periodID + ":" + kind
}

func (m *mockSubmissionRepo) Create(_ context.Context, sub *model.ProgramSubmission) error {
	if sub.SubmissionID == "" {
		sub.SubmissionID = "sub-" + subKey(sub.ProgramID, sub.PeriodID, sub.IsDraft)
	}
	m.subs[subKey(sub.ProgramID, sub.PeriodID, sub.IsDraft)] = sub
	return nil
}

func (m *mockSubmissionRepo) Update(_ context.Context, sub *model.ProgramSubmission) error {
	m.subs[subKey(sub.ProgramID, sub.PeriodID, sub.IsDraft)] = sub
	return nil
}

func (m *mockSubmissionRepo) GetDraft(_ context.Context, programID, periodID string) (*model.ProgramSubmission, error) {
	if s, ok := m.subs[subKey(programID, periodID, true)]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) GetFinal(_ context.Context, programID, periodID string) (*model.ProgramSubmission, error) {
	if s, ok := m.subs[subKey(programID, periodID, false)]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) ListByPeriodAndPrograms(_ context.Context, periodID string, programIDs []string) ([]model.ProgramSubmission, error) {
	wanted := make(map[string]bool, len(programIDs))
	for _, id := range programIDs {
		wanted[id] = true
	}
	var result []model.ProgramSubmission
	for _, s := range m.subs {
		if s.PeriodID == periodID && wanted[s.ProgramID] {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSubmissionRepo) ListFinalByPeriod(_ context.Context, periodID string) ([]model.ProgramSubmission, error) {
	var result []model.ProgramSubmission
	for _, s := range m.subs {
		if s.PeriodID == periodID && !s.IsDraft {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSubmissionRepo) DeleteDraft(_ context.Context, programID, periodID string, _ string) error {
	delete(m.subs, subKey(programID, periodID, true))
	return nil
}

func (m *mockSubmissionRepo) DeleteByProgram(_ context.Context, programID string, _ string) error {
	for key, s := range m.subs {
		if s.ProgramID == programID {
			delete(m.subs, key)
		}
	}
	return nil
}

// ── 测试用 Repository 聚合 ──

type testRepos struct {
	user       *mockUserRepo
	sector     *mockSectorRepo
	agency     *mockAgencyRepo
	period     *mockPeriodRepo
	program    *mockProgramRepo
	submission *mockSubmissionRepo
}

func newTestRepository() (*repository.Repository, *testRepos) {
	mocks := &testRepos{
		user:       newMockUserRepo(),
		sector:     newMockSectorRepo(),
		agency:     newMockAgencyRepo(),
		period:     newMockPeriodRepo(),
		program:    newMockProgramRepo(),
		submission: newMockSubmissionRepo(),
	}
	repo := &repository.Repository{
		User:       mocks.user,
		Sector:     mocks.sector,
		Agency:     mocks.agency,
		Period:     mocks.period,
		Program:    mocks.program,
		Submission: mocks.submission,
	}
	return repo, mocks
}

// [自证通过] internal/service/mock_repos_test.go
