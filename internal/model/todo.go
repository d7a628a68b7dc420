package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Todo 表示一条待办事项。
//
// CreatorID 在创建时由认证身份盖章，之后不可变更；
// 所有读写操作都以 CreatorID 为强制过滤条件（见 api 包）。
type Todo struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Text        string             `bson:"text" json:"text"`                     // 内容（去除首尾空白后非空）
	Completed   bool               `bson:"completed" json:"completed"`           // 是否已完成
	CompletedAt *int64             `bson:"completedAt" json:"completedAt"`       // 完成时间（epoch 毫秒，未完成为 null）
	CreatorID   primitive.ObjectID `bson:"creatorId,omitempty" json:"creatorId"` // 所属用户 ID
}

// TodoUpdate 是更新操作允许修改的字段集合（显式白名单，nil 表示不修改）。
type TodoUpdate struct {
	Text      *string
	Completed *bool
}
