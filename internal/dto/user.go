package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建员工请求（仅管理员）
type CreateUserRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=50"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Role     string `json:"role"     binding:"omitempty,oneof=admin employee"`
}

// UserListRequest 员工列表请求
type UserListRequest struct {
	PaginationRequest
}
