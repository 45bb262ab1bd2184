package handler

import (
	"github.com/gin-gonic/gin"

	appmember "github.com/xiebiao/library/internal/application/member"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// MemberHandler 读者HTTP处理器
type MemberHandler struct {
	registerUseCase *appmember.RegisterUseCase
	loginUseCase    *appmember.LoginUseCase
	logoutUseCase   *appmember.LogoutUseCase
}

// NewMemberHandler 创建读者处理器
func NewMemberHandler(
	registerUseCase *appmember.RegisterUseCase,
	loginUseCase *appmember.LoginUseCase,
	logoutUseCase *appmember.LogoutUseCase,
) *MemberHandler {
	return &MemberHandler{
		registerUseCase: registerUseCase,
		loginUseCase:    loginUseCase,
		logoutUseCase:   logoutUseCase,
	}
}

// Register 读者注册
// @Summary      注册
// @Tags         读者
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      200 {object} response.Response{data=dto.RegisterResponse}
// @Failure      400 {object} response.Response "参数错误/密码强度不足"
// @Failure      409 {object} response.Response "邮箱已注册"
// @Router       /api/v1/members/register [post]
func (h *MemberHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), appmember.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.RegisterResponse{
		ID:    result.ID,
		Email: result.Email,
		Name:  result.Name,
		Role:  result.Role,
	})
}

// Login 读者登录
// @Summary      登录
// @Tags         读者
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录凭证"
// @Success      200 {object} response.Response{data=dto.LoginResponse}
// @Failure      401 {object} response.Response "邮箱或密码错误"
// @Router       /api/v1/members/login [post]
func (h *MemberHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appmember.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.LoginResponse{
		Member: dto.MemberInfo{
			ID:    result.Member.ID,
			Email: result.Member.Email,
			Name:  result.Member.Name,
			Role:  result.Member.Role,
		},
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	})
}

// Logout 读者登出
// @Summary      登出
// @Description  删除会话并将当前Token加入黑名单
// @Tags         读者
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/members/logout [post]
func (h *MemberHandler) Logout(c *gin.Context) {
	memberID := middleware.MustGetMemberID(c)
	accessToken := middleware.GetAccessToken(c)

	if err := h.logoutUseCase.Execute(c.Request.Context(), memberID, accessToken); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
