package dto

// ── 区域会话 DTO ──

// AreaLoginRequest 区域密码登录请求
type AreaLoginRequest struct {
	Password   string `json:"password"    binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// AreaSessionResponse 区域会话
type AreaSessionResponse struct {
	Area        AreaInfo `json:"area"`
	AccessToken string   `json:"access_token,omitempty"`
	ExpiresIn   int      `json:"expires_in"` // 有效期（秒）
	ExpiresAt   string   `json:"expires_at"`
}
