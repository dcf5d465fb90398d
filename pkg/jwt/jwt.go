package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/LDanielOchoa/Programacion-Areas/config"
)

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
)

const issuer = "programacion-areas"

// Claims 区域会话令牌声明
type Claims struct {
	Area       string `json:"area"`
	RememberMe bool   `json:"remember_me,omitempty"`
	jwtv5.RegisteredClaims
}

// Remaining 令牌剩余有效期
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

// Manager JWT 管理器
type Manager struct {
	secret      []byte
	ttl         time.Duration
	ttlRemember time.Duration
}

// NewManager 创建 JWT 管理器
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret:      []byte(cfg.JWTSecret),
		ttl:         cfg.SessionTTL,
		ttlRemember: cfg.SessionTTLRemember,
	}
}

// TTL 按"记住我"选择有效期
func (m *Manager) TTL(rememberMe bool) time.Duration {
	if rememberMe && m.ttlRemember > 0 {
		return m.ttlRemember
	}
	return m.ttl
}

// GenerateAreaToken 为区域签发会话令牌，返回令牌与过期时间
func (m *Manager) GenerateAreaToken(area string, rememberMe bool) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(m.TTL(rememberMe))
	claims := Claims{
		Area:       area,
		RememberMe: rememberMe,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   area,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(expires),
			Issuer:    issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseToken 解析并验证令牌
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Area == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
