package store

import (
	"context"
	"fmt"
	"time"

	"todoapp/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TodoStore 持久化待办事项，除 DeleteAll 外所有操作都按所属用户过滤。
type TodoStore struct {
	todos *mongo.Collection
}

// NewTodoStore 创建 TodoStore。
func NewTodoStore(db *mongo.Database) *TodoStore {
	return &TodoStore{todos: db.Collection(todosCollection)}
}

// Create 插入一条待办事项（CreatorID 须已由调用方盖章）。
func (s *TodoStore) Create(ctx context.Context, todo *model.Todo) error {
	if todo.ID.IsZero() {
		todo.ID = primitive.NewObjectID()
	}
	if _, err := s.todos.InsertOne(ctx, todo); err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

// ListByCreator 返回指定用户的全部待办事项。
func (s *TodoStore) ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]model.Todo, error) {
	cursor, err := s.todos.Find(ctx, bson.M{"creatorId": creatorID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer cursor.Close(ctx)

	todos := []model.Todo{}
	if err := cursor.All(ctx, &todos); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}
	return todos, nil
}

// GetByID 返回指定用户名下的一条待办事项。
//
// 记录存在但属于其他用户时同样返回 ErrNotFound，对外不可区分。
func (s *TodoStore) GetByID(ctx context.Context, id, creatorID primitive.ObjectID) (model.Todo, error) {
	var todo model.Todo
	err := s.todos.FindOne(ctx, bson.M{"_id": id, "creatorId": creatorID}).Decode(&todo)
	if err == mongo.ErrNoDocuments {
		return model.Todo{}, ErrNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("find todo: %w", err)
	}
	return todo, nil
}

// Update 更新指定用户名下的一条待办事项并返回更新后的文档。
//
// completed 置为 true 时盖上完成时间（epoch 毫秒），置为 false 时清空。
func (s *TodoStore) Update(ctx context.Context, id, creatorID primitive.ObjectID, upd model.TodoUpdate) (model.Todo, error) {
	set := bson.M{}
	if upd.Text != nil {
		set["text"] = *upd.Text
	}
	if upd.Completed != nil {
		set["completed"] = *upd.Completed
		if *upd.Completed {
			set["completedAt"] = time.Now().UnixMilli()
		} else {
			set["completedAt"] = nil
		}
	}

	var todo model.Todo
	err := s.todos.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "creatorId": creatorID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&todo)
	if err == mongo.ErrNoDocuments {
		return model.Todo{}, ErrNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return todo, nil
}

// DeleteByID 删除指定用户名下的一条待办事项并返回被删除的文档。
func (s *TodoStore) DeleteByID(ctx context.Context, id, creatorID primitive.ObjectID) (model.Todo, error) {
	var todo model.Todo
	err := s.todos.FindOneAndDelete(ctx, bson.M{"_id": id, "creatorId": creatorID}).Decode(&todo)
	if err == mongo.ErrNoDocuments {
		return model.Todo{}, ErrNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("delete todo: %w", err)
	}
	return todo, nil
}

// DeleteAll 清空整个集合，不做所属用户过滤（管理操作，见路由注释）。
func (s *TodoStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.todos.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete todos: %w", err)
	}
	return res.DeletedCount, nil
}
