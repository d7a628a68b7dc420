package store

import (
	"context"
	"fmt"
	"strings"

	"todoapp/internal/model"
	"todoapp/internal/pkg/password"
	"todoapp/internal/pkg/token"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserStore 是凭证存储：用户记录、密码校验与令牌生命周期。
type UserStore struct {
	users  *mongo.Collection
	hasher *password.Hasher
	codec  *token.Codec
}

// NewUserStore 创建 UserStore。
func NewUserStore(db *mongo.Database, hasher *password.Hasher, codec *token.Codec) *UserStore {
	return &UserStore{
		users:  db.Collection(usersCollection),
		hasher: hasher,
		codec:  codec,
	}
}

// normalizeEmail 去除首尾空白并小写化。
//
// 唯一性因此是大小写不敏感的（源实现大小写敏感，这里有意收紧）。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create 哈希密码后写入新用户，邮箱重复时返回 ErrDuplicateEmail。
func (s *UserStore) Create(ctx context.Context, email, plaintext string) (model.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return model.User{}, fmt.Errorf("create user: empty email")
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		ID:       primitive.NewObjectID(),
		Email:    email,
		Password: hash,
		Tokens:   []model.UserToken{},
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// FindByCredentials 按邮箱查找并校验密码。
//
// 邮箱不存在与密码错误统一返回 ErrInvalidCredentials。
func (s *UserStore) FindByCredentials(ctx context.Context, email, plaintext string) (model.User, error) {
	var user model.User
	err := s.users.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	if !s.hasher.Verify(plaintext, user.Password) {
		return model.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken 为用户签发指定用途的令牌并持久化。
//
// 先原子移除同用途的旧令牌再追加新令牌（$pull/$push 各为单文档原子更新），
// 保证同一用途同时最多一个有效令牌；两次更新之间的跨请求竞争是已接受的限制。
func (s *UserStore) IssueToken(ctx context.Context, user model.User, purpose string) (string, error) {
	signed, err := s.codec.Sign(token.Claims{
		SubjectID: user.ID.Hex(),
		Access:    purpose,
	})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	if _, err := s.users.UpdateByID(ctx, user.ID, bson.M{
		"$pull": bson.M{"tokens": bson.M{"access": purpose}},
	}); err != nil {
		return "", fmt.Errorf("evict old token: %w", err)
	}
	if _, err := s.users.UpdateByID(ctx, user.ID, bson.M{
		"$push": bson.M{"tokens": model.UserToken{Access: purpose, Token: signed}},
	}); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return signed, nil
}

// ResolveToken 将令牌解析为用户。
//
// 双重校验：签名必须有效，且该令牌原文仍存在于用户的令牌列表中并且用途匹配。
// 后者使登出立刻生效——密码学上仍有效但已被移除的令牌会被拒绝。
func (s *UserStore) ResolveToken(ctx context.Context, tokenStr string) (model.User, error) {
	claims, err := s.codec.Verify(tokenStr)
	if err != nil {
		return model.User{}, ErrUnauthorized
	}
	if claims.Access != model.TokenPurposeAuth {
		return model.User{}, ErrUnauthorized
	}

	oid, err := primitive.ObjectIDFromHex(claims.SubjectID)
	if err != nil {
		return model.User{}, ErrUnauthorized
	}

	var user model.User
	err = s.users.FindOne(ctx, bson.M{
		"_id": oid,
		"tokens": bson.M{"$elemMatch": bson.M{
			"token":  tokenStr,
			"access": claims.Access,
		}},
	}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return model.User{}, ErrUnauthorized
	}
	if err != nil {
		return model.User{}, fmt.Errorf("resolve token: %w", err)
	}
	return user, nil
}

// RevokeToken 从用户令牌列表中移除指定令牌。
//
// 令牌已不在列表中时不视为错误；列表为空则直接跳过更新。
func (s *UserStore) RevokeToken(ctx context.Context, user model.User, tokenStr string) error {
	if len(user.Tokens) == 0 {
		return nil
	}
	if _, err := s.users.UpdateByID(ctx, user.ID, bson.M{
		"$pull": bson.M{"tokens": bson.M{"token": tokenStr}},
	}); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
