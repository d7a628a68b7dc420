package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed 令牌无法解码。
	ErrMalformed = errors.New("token: malformed token")
	// ErrInvalidSignature 令牌签名校验失败。
	ErrInvalidSignature = errors.New("token: invalid signature")
)

// Claims 是签名令牌中携带的身份与用途信息。
type Claims struct {
	SubjectID string // 用户 ID
	Access    string // 令牌用途，如 "auth"
}

type jwtClaims struct {
	jwt.RegisteredClaims
	Access string `json:"access"`
}

// Codec 使用进程级共享密钥对 Claims 做 HS256 签名与验证。
//
// 密钥在启动时注入，之后只读；Codec 本身无状态。
type Codec struct {
	secret []byte
}

// NewCodec 创建 Codec。
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Sign 对 claims 签名并返回紧凑的令牌字符串。
//
// 附带 iat 声明，降低同一用户重复签发时令牌碰撞的概率；
// 单用途单令牌的替换语义由凭证存储层保证，与此无关。
func (c *Codec) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  claims.SubjectID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		Access: claims.Access,
	})
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify 校验令牌签名并返回解码后的 claims。
//
// 签名不匹配返回 ErrInvalidSignature，无法解码返回 ErrMalformed；
// 签名不通过时绝不返回其中的 claims。
func (c *Codec) Verify(tokenStr string) (Claims, error) {
	claims := &jwtClaims{}
	t, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return Claims{}, ErrInvalidSignature
		}
		return Claims{}, ErrMalformed
	}
	if !t.Valid {
		return Claims{}, ErrInvalidSignature
	}
	return Claims{
		SubjectID: claims.Subject,
		Access:    claims.Access,
	}, nil
}
