package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// TokenPurposeAuth 登录会话令牌的用途标签。
const TokenPurposeAuth = "auth"

// UserToken 表示用户持有的一个已签发令牌。
//
// 同一用途（access）同时只保留一个令牌，签发新令牌会替换旧的。
type UserToken struct {
	Access string `bson:"access" json:"-"` // 令牌用途，如 "auth"
	Token  string `bson:"token" json:"-"`  // 签名后的令牌原文
}

// User 表示系统用户。
//
// Tokens 内嵌在用户文档中：令牌只有在签名有效且仍存在于该列表时才被接受，
// 因此从列表中移除即立刻失效（登出）。
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"` // 用户 ID
	Email    string             `bson:"email"`         // 邮箱（唯一，已小写化）
	Password string             `bson:"password"`      // bcrypt 哈希
	Tokens   []UserToken        `bson:"tokens"`        // 当前有效令牌列表
}

// UserView 是对外暴露的用户表示，绝不包含密码哈希或令牌。
type UserView struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// View 返回脱敏后的用户表示。
func (u User) View() UserView {
	return UserView{
		ID:    u.ID.Hex(),
		Email: u.Email,
	}
}
