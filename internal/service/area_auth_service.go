package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/LDanielOchoa/Programacion-Areas/config"
	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/pkg/jwt"
)

// ── 区域会话业务错误 ──

var (
	ErrUnknownArea         = errors.New("区域不存在")
	ErrAreaNotProtected    = errors.New("该区域未设置密码")
	ErrInvalidAreaPassword = errors.New("区域密码错误")
	ErrSessionInvalid      = errors.New("会话无效或已过期")
	ErrSessionRevoked      = errors.New("会话已注销")
	ErrSessionAreaMismatch = errors.New("会话不属于该区域")
)

// TokenBlacklist 令牌黑名单（Redis 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AreaAuthService 区域密码会话业务接口
type AreaAuthService interface {
	Login(ctx context.Context, area dto.AreaType, req *dto.AreaLoginRequest) (*dto.AreaSessionResponse, error)
	// Authenticate 校验令牌有效且未被注销，不限定区域
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
	// Verify 校验令牌属于该区域且未被注销
	Verify(ctx context.Context, area dto.AreaType, token string) (*jwt.Claims, error)
	Logout(ctx context.Context, area dto.AreaType, token string) error
}

type areaAuthService struct {
	cfg       *config.Config
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAreaAuthService 创建 AreaAuthService 实例；blacklist 可为 nil（Redis 不可用时降级）
func NewAreaAuthService(cfg *config.Config, jwtMgr *jwt.Manager, blacklist TokenBlacklist, logger *zap.Logger) AreaAuthService {
	return &areaAuthService{cfg: cfg, jwtMgr: jwtMgr, blacklist: blacklist, logger: logger}
}

func (s *areaAuthService) passwordHash(area dto.AreaType) (string, bool) {
	for k, v := range s.cfg.Auth.AreaPasswords {
		if strings.EqualFold(k, string(area)) && v != "" {
			return v, true
		}
	}
	return "", false
}

func (s *areaAuthService) Login(ctx context.Context, area dto.AreaType, req *dto.AreaLoginRequest) (*dto.AreaSessionResponse, error) {
	if !area.Valid() {
		return nil, ErrUnknownArea
	}
	hash, ok := s.passwordHash(area)
	if !ok {
		return nil, ErrAreaNotProtected
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		s.logger.Warn("区域密码错误", zap.String("area", string(area)))
		return nil, ErrInvalidAreaPassword
	}

	token, expires, err := s.jwtMgr.GenerateAreaToken(string(area), req.RememberMe)
	if err != nil {
		s.logger.Error("生成区域令牌失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("区域会话已建立", zap.String("area", string(area)), zap.Bool("remember_me", req.RememberMe))
	return &dto.AreaSessionResponse{
		Area:        area.Info(),
		AccessToken: token,
		ExpiresIn:   int(time.Until(expires).Seconds()),
		ExpiresAt:   expires.Format(time.RFC3339),
	}, nil
}

func (s *areaAuthService) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			// Redis 出错时降级放行
			s.logger.Warn("查询令牌黑名单失败", zap.Error(err))
		} else if revoked {
			return nil, ErrSessionRevoked
		}
	}
	return claims, nil
}

func (s *areaAuthService) Verify(ctx context.Context, area dto.AreaType, token string) (*jwt.Claims, error) {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(claims.Area, string(area)) {
		return nil, ErrSessionAreaMismatch
	}
	return claims, nil
}

func (s *areaAuthService) Logout(ctx context.Context, area dto.AreaType, token string) error {
	claims, err := s.Verify(ctx, area, token)
	if err != nil {
		return err
	}
	if s.blacklist == nil {
		s.logger.Warn("Redis 不可用，令牌无法加入黑名单", zap.String("area", claims.Area))
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.Remaining(time.Now())); err != nil {
		s.logger.Error("令牌加入黑名单失败", zap.Error(err))
		return err
	}
	s.logger.Info("区域会话已注销", zap.String("area", claims.Area))
	return nil
}
