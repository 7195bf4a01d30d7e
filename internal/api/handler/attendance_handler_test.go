package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Nischal456/my-attendance-system-sub000/internal/dto"
	"github.com/Nischal456/my-attendance-system-sub000/internal/service"
	pkgerrors "github.com/Nischal456/my-attendance-system-sub000/pkg/errors"
	"github.com/Nischal456/my-attendance-system-sub000/pkg/response"
)

// stubAttendanceService 可注入行为的 AttendanceService 测试替身
type stubAttendanceService struct {
	checkInFn  func(ctx context.Context, ownerID string, req *dto.CheckInRequest) (*dto.AttendanceResponse, error)
	checkOutFn func(ctx context.Context, ownerID string, req *dto.CheckOutRequest) (*dto.AttendanceResponse, error)
	breakInFn  func(ctx context.Context, ownerID string) (*dto.AttendanceResponse, error)
	breakOutFn func(ctx context.Context, ownerID string) (*dto.AttendanceResponse, error)
	correctFn  func(ctx context.Context, entryID string, req *dto.AdjustCheckoutRequest, adminID string) (*dto.AttendanceResponse, error)
	deleteFn   func(ctx context.Context, entryID string) error
}

func (s *stubAttendanceService) CheckIn(ctx context.Context, ownerID string, req *dto.CheckInRequest) (*dto.AttendanceResponse, error) {
	return s.checkInFn(ctx, ownerID, req)
}

func (s *stubAttendanceService) BreakIn(ctx context.Context, ownerID string) (*dto.AttendanceResponse, error) {
	return s.breakInFn(ctx, ownerID)
}

func (s *stubAttendanceService) BreakOut(ctx context.Context, ownerID string) (*dto.AttendanceResponse, error) {
	return s.breakOutFn(ctx, ownerID)
}

func (s *stubAttendanceService) CheckOut(ctx context.Context, ownerID string, req *dto.CheckOutRequest) (*dto.AttendanceResponse, error) {
	return s.checkOutFn(ctx, ownerID, req)
}

func (s *stubAttendanceService) GetCurrent(context.Context, string) (*dto.CurrentStatusResponse, error) {
	return &dto.CurrentStatusResponse{}, nil
}

func (s *stubAttendanceService) ListMine(context.Context, string, *dto.AttendanceListRequest) ([]dto.AttendanceResponse, int64, error) {
	return nil, 0, nil
}

func (s *stubAttendanceService) WorkHours(context.Context, string, string, *dto.WorkHoursRequest) (*dto.WorkHoursResponse, error) {
	return &dto.WorkHoursResponse{}, nil
}

func (s *stubAttendanceService) AdminCorrectCheckout(ctx context.Context, entryID string, req *dto.AdjustCheckoutRequest, adminID string) (*dto.AttendanceResponse, error) {
	return s.correctFn(ctx, entryID, req, adminID)
}

func (s *stubAttendanceService) AdminDelete(ctx context.Context, entryID string) error {
	return s.deleteFn(ctx, entryID)
}

// injectIdentity 模拟 JWT 中间件注入的身份信息
func injectIdentity(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

func newAttendanceTestRouter(svc service.AttendanceService, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAttendanceHandler(svc)

	g := r.Group("/attendance", injectIdentity(userID, role))
	g.POST("/check-in", h.CheckIn)
	g.POST("/break-in", h.BreakIn)
	g.POST("/check-out", h.CheckOut)
	g.GET("/work-hours", h.WorkHours)
	g.PUT("/:id/checkout-time", h.AdjustCheckout)
	g.DELETE("/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, *response.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("序列化请求体失败: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v, body=%s", err, w.Body.String())
	}
	return w, &resp
}

func TestCheckInHandler_Created(t *testing.T) {
	svc := &stubAttendanceService{
		checkInFn: func(_ context.Context, ownerID string, req *dto.CheckInRequest) (*dto.AttendanceResponse, error) {
			if ownerID != "user-0001" {
				t.Errorf("期望ownerID=user-0001，实际=%s", ownerID)
			}
			if req.WorkLocation != "Office" {
				t.Errorf("期望WorkLocation=Office，实际=%s", req.WorkLocation)
			}
			return &dto.AttendanceResponse{ID: "att-0001", OwnerID: ownerID, WorkLocation: req.WorkLocation}, nil
		},
	}
	r := newAttendanceTestRouter(svc, "user-0001", "employee")

	w, resp := doJSON(t, r, http.MethodPost, "/attendance/check-in", dto.CheckInRequest{WorkLocation: "Office"})
	if w.Code != http.StatusCreated {
		t.Errorf("期望HTTP 201，实际=%d", w.Code)
	}
	if resp.Code != 0 {
		t.Errorf("期望code=0，实际=%d", resp.Code)
	}
}

func TestCheckInHandler_MissingIdentity(t *testing.T) {
	svc := &stubAttendanceService{}
	r := newAttendanceTestRouter(svc, "", "")

	w, resp := doJSON(t, r, http.MethodPost, "/attendance/check-in", dto.CheckInRequest{WorkLocation: "Office"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望HTTP 401，实际=%d", w.Code)
	}
	if resp.Code != 10002 {
		t.Errorf("期望code=10002，实际=%d", resp.Code)
	}
}

func TestCheckInHandler_InvalidBody(t *testing.T) {
	svc := &stubAttendanceService{}
	r := newAttendanceTestRouter(svc, "user-0001", "employee")

	// work_location 必填
	w, resp := doJSON(t, r, http.MethodPost, "/attendance/check-in", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望HTTP 400，实际=%d", w.Code)
	}
	if resp.Code != 10001 {
		t.Errorf("期望code=10001，实际=%d", resp.Code)
	}
}

func TestAttendanceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"重复签到", service.ErrAlreadyCheckedIn, http.StatusBadRequest, 20001},
		{"无进行中会话", service.ErrNoActiveSession, http.StatusBadRequest, 20002},
		{"已在休息中", service.ErrAlreadyOnBreak, http.StatusBadRequest, 20003},
		{"休息未结束", service.ErrMustEndBreak, http.StatusBadRequest, 20005},
		{"非法地点", service.ErrInvalidWorkLocation, http.StatusBadRequest, 20009},
		{"乐观锁冲突", pkgerrors.ErrOptimisticLock, http.StatusConflict, 20010},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubAttendanceService{
				checkInFn: func(context.Context, string, *dto.CheckInRequest) (*dto.AttendanceResponse, error) {
					return nil, tt.err
				},
			}
			r := newAttendanceTestRouter(svc, "user-0001", "employee")

			w, resp := doJSON(t, r, http.MethodPost, "/attendance/check-in", dto.CheckInRequest{WorkLocation: "Office"})
			if w.Code != tt.wantStatus {
				t.Errorf("期望HTTP %d，实际=%d", tt.wantStatus, w.Code)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("期望code=%d，实际=%d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAdjustCheckoutHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"记录不存在", service.ErrEntryNotFound, http.StatusNotFound, 20006},
		{"非法修正时间", service.ErrInvalidCorrection, http.StatusBadRequest, 20007},
		{"记录未签退", service.ErrEntryNotClosed, http.StatusBadRequest, 20008},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubAttendanceService{
				correctFn: func(context.Context, string, *dto.AdjustCheckoutRequest, string) (*dto.AttendanceResponse, error) {
					return nil, tt.err
				},
			}
			r := newAttendanceTestRouter(svc, "admin-0001", "admin")

			w, resp := doJSON(t, r, http.MethodPut, "/attendance/att-0001/checkout-time",
				map[string]string{"new_checkout_time": "2025-03-10T18:00:00Z"})
			if w.Code != tt.wantStatus {
				t.Errorf("期望HTTP %d，实际=%d", tt.wantStatus, w.Code)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("期望code=%d，实际=%d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestWorkHoursHandler_InvalidQuery(t *testing.T) {
	svc := &stubAttendanceService{}
	r := newAttendanceTestRouter(svc, "user-0001", "employee")

	// 缺少必填的 year/month
	req := httptest.NewRequest(http.MethodGet, "/attendance/work-hours", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望HTTP 400，实际=%d", w.Code)
	}
}

func TestDeleteHandler(t *testing.T) {
	var gotID string
	svc := &stubAttendanceService{
		deleteFn: func(_ context.Context, entryID string) error {
			gotID = entryID
			return nil
		},
	}
	r := newAttendanceTestRouter(svc, "admin-0001", "admin")

	req := httptest.NewRequest(http.MethodDelete, "/attendance/att-0042", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("期望HTTP 200，实际=%d", w.Code)
	}
	if gotID != "att-0042" {
		t.Errorf("期望删除att-0042，实际=%s", gotID)
	}
}
