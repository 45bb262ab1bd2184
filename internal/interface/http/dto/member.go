package dto

// RegisterRequest HTTP注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=100" example:"reader@example.com"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"passw0rd123"` // bcrypt上限72字节
	Name     string `json:"name" binding:"required,max=50" example:"张三"`
}

// RegisterResponse HTTP注册响应
type RegisterResponse struct {
	ID    uint   `json:"id" example:"42"`
	Email string `json:"email" example:"reader@example.com"`
	Name  string `json:"name" example:"张三"`
	Role  string `json:"role" example:"member"`
}

// LoginRequest HTTP登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"reader@example.com"`
	Password string `json:"password" binding:"required" example:"passw0rd123"`
}

// LoginResponse HTTP登录响应
type LoginResponse struct {
	Member       MemberInfo `json:"member"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in" example:"7200"` // Access Token过期时间(秒)
}

// MemberInfo HTTP读者信息
type MemberInfo struct {
	ID    uint   `json:"id" example:"42"`
	Email string `json:"email" example:"reader@example.com"`
	Name  string `json:"name" example:"张三"`
	Role  string `json:"role" example:"member"`
}
