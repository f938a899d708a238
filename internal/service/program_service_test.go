package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"agencyhub/internal/dto"
	"agencyhub/internal/model"
)

func setupTestProgramService() (ProgramService, *testRepos) {
	repo, mocks := newTestRepository()
	svc := NewProgramService(repo, zap.NewNop())
	return svc, mocks
}

func seedProgramFixture(mocks *testRepos) {
	mocks.sector.sectors["sector-001"] = &model.Sector{SectorID: "sector-001", Name: "农业"}
	mocks.agency.agencies["agency-001"] = &model.Agency{
		AgencyID: "agency-001", Name: "农业局", SectorID: "sector-001",
	}
	mocks.agency.agencies["agency-002"] = &model.Agency{
		AgencyID: "agency-002", Name: "水利局", SectorID: "sector-001",
	}
}

// ── Create 测试 ──

func TestProgramService_Create_AgencyRole(t *testing.T) {
	svc, mocks := setupTestProgramService()
	seedProgramFixture(mocks)

	// agency 角色忽略请求中的 agency_id，固定归属本机构
	resp, err := svc.Create(context.Background(), &dto.CreateProgramRequest{
		Name:     "灌溉改造",
		SectorID: "sector-001",
		AgencyID: "agency-002",
	}, "user-001", model.RoleAgency, "agency-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.AgencyID != "agency-001" {
		t.Errorf("计划应归属调用方机构，实际: %s", resp.AgencyID)
	}
}

func TestProgramService_Create_AdminSpecifiesAgency(t *testing.T) {
	svc, mocks := setupTestProgramService()
	seedProgramFixture(mocks)

	resp, err := svc.Create(context.Background(), &dto.CreateProgramRequest{
		Name:     "灌溉改造",
		SectorID: "sector-001",
		AgencyID: "agency-002",
	}, "admin-001", model.RoleAdmin, "")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.AgencyID != "agency-002" {
		t.Errorf("admin 应可指定归属机构，实际: %s", resp.AgencyID)
	}
}

func TestProgramService_Create_SectorNotFound(t *testing.T) {
	svc, mocks := setupTestProgramService()
	seedProgramFixture(mocks)

	_, err := svc.Create(context.Background(), &dto.CreateProgramRequest{
		Name:     "灌溉改造",
		SectorID: "nonexistent",
	}, "user-001", model.RoleAgency, "agency-001")
	if !errors.Is(err, ErrProgramSectorNotFound) {
		t.Errorf("期望 ErrProgramSectorNotFound，实际: %v", err)
	}
}

// ── GetByID / 访问控制测试 ──

func TestProgramService_GetByID_NoAccess(t *testing.T) {
	svc, mocks := setupTestProgramService()
	seedProgramFixture(mocks)
	mocks.program.programs["prog-1"] = &model.Program{
		ProgramID: "prog-1", AgencyID: "agency-001", SectorID: "sector-001", Name: "计划",
	}

	_, err := svc.GetByID(context.Background(), "prog-1", model.RoleAgency, "agency-002")
	if !errors.Is(err, ErrProgramNoAccess) {
		t.Errorf("期望 ErrProgramNoAccess，实际: %v", err)
	}
}

func TestProgramService_GetByID_AssignedMarked(t *testing.T) {
	svc, mocks := setupTestProgramService()
	seedProgramFixture(mocks)
	mocks.program.programs["prog-1"] = &model.Program{
		ProgramID: "prog-1", AgencyID: "agency-001", SectorID: "sector-001", Name: "计划",
	}
	mocks.program.assignments["prog-1"] = []string{"agency-002"}

	resp, err := svc.GetByID(context.Background(), "prog-1", model.RoleAgency, "agency-002")
	if err != nil {
		t.Fatalf("被授权机构应可查看: %v", err)
	}
	if !resp.Assigned {
		t.Error("Assigned 标记应为 true")
	}
}

// ── List 测试 ──

func TestProgramService_List_IncludeAssigned(t *testing.T) {
	svc, mocks := setupTestProgramService()
	seedProgramFixture(mocks)
	mocks.program.programs["own-1"] = &model.Program{
		ProgramID: "own-1", AgencyID: "agency-001", SectorID: "sector-001", Name: "自建",
	}
	mocks.program.programs["other-1"] = &model.Program{
		ProgramID: "other-1", AgencyID: "agency-002", SectorID: "sector-001", Name: "他建",
	}
	mocks.program.assignments["other-1"] = []string{"agency-001"}

	list, err := svc.List(context.Background(), &dto.ProgramListRequest{}, model.RoleAgency, "agency-001")
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("默认列表应只含自建计划，实际: %d", len(list))
	}

	list, err = svc.List(context.Background(), &dto.ProgramListRequest{IncludeAssigned: true}, model.RoleAgency, "agency-001")
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("含授权列表应为 2，实际: %d", len(list))
	}
	for _, p := range list {
		if p.ID == "other-1" && !p.Assigned {
			t.Error("授权计划应带 Assigned 标记")
		}
	}
}

// ── Delete 级联测试 ──

func TestProgramService_Delete_Cascades(t *testing.T) {
	svc, mocks := setupTestProgramService()
	seedProgramFixture(mocks)
	mocks.program.programs["prog-1"] = &model.Program{
		ProgramID: "prog-1", AgencyID: "agency-001", SectorID: "sector-001", Name: "计划",
	}
	mocks.program.assignments["prog-1"] = []string{"agency-002"}
	mocks.submission.subs[subKey("prog-1", "period-q3", true)] = &model.ProgramSubmission{
		SubmissionID: "sub-1", ProgramID: "prog-1", PeriodID: "period-q3", IsDraft: true,
	}
	mocks.submission.subs[subKey("prog-1", "period-q2", false)] = &model.ProgramSubmission{
		SubmissionID: "sub-2", ProgramID: "prog-1", PeriodID: "period-q2",
	}

	if err := svc.Delete(context.Background(), "prog-1", "user-001", model.RoleAgency, "agency-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}

	if _, ok := mocks.program.programs["prog-1"]; ok {
		t.Error("计划应被删除")
	}
	if len(mocks.program.assignments["prog-1"]) != 0 {
		t.Error("计划授权应被级联删除")
	}
	for _, s := range mocks.submission.subs {
		if s.ProgramID == "prog-1" {
			t.Error("计划提交记录应被级联删除")
		}
	}
}

func TestProgramService_Delete_NoAccess(t *testing.T) {
	svc, mocks := setupTestProgramService()
	seedProgramFixture(mocks)
	mocks.program.programs["prog-1"] = &model.Program{
		ProgramID: "prog-1", AgencyID: "agency-001", SectorID: "sector-001", Name: "计划",
	}

	err := svc.Delete(context.Background(), "prog-1", "user-002", model.RoleAgency, "agency-002")
	if !errors.Is(err, ErrProgramNoAccess) {
		t.Errorf("期望 ErrProgramNoAccess，实际: %v", err)
	}
}

// ── Assign / Reassign 测试 ──

func TestProgramService_Assign_Duplicate(t *testing.T) {
	svc, mocks := setupTestProgramService()
	seedProgramFixture(mocks)
	mocks.program.programs["prog-1"] = &model.Program{
		ProgramID: "prog-1", AgencyID: "agency-001", SectorID: "sector-001", Name: "计划",
	}

	if err := svc.Assign(context.Background(), "prog-1", &dto.AssignProgramRequest{AgencyID: "agency-002"}, "admin-001"); err != nil {
		t.Fatalf("首次授权应成功: %v", err)
	}
	err := svc.Assign(context.Background(), "prog-1", &dto.AssignProgramRequest{AgencyID: "agency-002"}, "admin-001")
	if !errors.Is(err, ErrProgramAlreadyAssigned) {
		t.Errorf("期望 ErrProgramAlreadyAssigned，实际: %v", err)
	}
}

func TestProgramService_Assign_ToOwner(t *testing.T) {
	svc, mocks := setupTestProgramService()
	seedProgramFixture(mocks)
	mocks.program.programs["prog-1"] = &model.Program{
		ProgramID: "prog-1", AgencyID: "agency-001", SectorID: "sector-001", Name: "计划",
	}

	err := svc.Assign(context.Background(), "prog-1", &dto.AssignProgramRequest{AgencyID: "agency-001"}, "admin-001")
	if !errors.Is(err, ErrProgramAssignToOwner) {
		t.Errorf("期望 ErrProgramAssignToOwner，实际: %v", err)
	}
}

func TestProgramService_Reassign_ClearsStaleAssignment(t *testing.T) {
	svc, mocks := setupTestProgramService()
	seedProgramFixture(mocks)
	mocks.program.programs["prog-1"] = &model.Program{
		ProgramID: "prog-1", AgencyID: "agency-001", SectorID: "sector-001", Name: "计划",
	}
	mocks.program.assignments["prog-1"] = []string{"agency-002"}

	if err := svc.Reassign(context.Background(), "prog-1", &dto.ReassignProgramRequest{AgencyID: "agency-002"}, "admin-001"); err != nil {
		t.Fatalf("Reassign 应成功: %v", err)
	}

	if mocks.program.programs["prog-1"].AgencyID != "agency-002" {
		t.Error("所有权应转移到 agency-002")
	}
	// 新所有权机构不应再以"被授权"身份出现
	for _, a := range mocks.program.assignments["prog-1"] {
		if a == "agency-002" {
			t.Error("转移后旧授权应被清理")
		}
	}
}

// [自证通过] internal/service/program_service_test.go
