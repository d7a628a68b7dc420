package password

import "golang.org/x/crypto/bcrypt"

// Hasher 封装 bcrypt 单向加盐哈希。
//
// 同一明文每次哈希得到不同摘要（盐随机），cost 越高越抗暴力破解。
type Hasher struct {
	cost int
}

// NewHasher 创建 Hasher。cost 超出 bcrypt 合法范围时使用默认值。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash 对明文密码做加盐哈希。
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify 校验明文与摘要是否匹配。
//
// 摘要格式非法时返回 false，而不是向调用方抛出致命错误。
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
