package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateEmail 邮箱已被注册。
	ErrDuplicateEmail = errors.New("store: email already taken")
	// ErrInvalidCredentials 登录凭证无效（邮箱不存在或密码错误，统一返回，避免泄露哪部分出错）。
	ErrInvalidCredentials = errors.New("store: invalid credentials")
	// ErrUnauthorized 令牌无法解析为有效用户（签名非法、已吊销或用户不存在）。
	ErrUnauthorized = errors.New("store: unauthorized")
	// ErrNotFound 资源不存在，或属于其他用户。
	ErrNotFound = errors.New("store: not found")
)

const (
	usersCollection = "users"
	todosCollection = "todos"
)

// Connect 建立 MongoDB 连接并确认可达。
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes 创建运行所需的索引（email 唯一索引）。
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}
