package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/todo-api/internal/models"
)

// todoDoc is the MongoDB representation of a todo.
type todoDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Title     string             `bson:"title"`
	Completed bool               `bson:"completed"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d todoDoc) model() models.Todo {
	return models.Todo{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Title:     d.Title,
		Completed: d.Completed,
	}
}

// MongoStore handles todo CRUD in MongoDB.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("todos")}
}

// EnsureIndexes creates the owner index used by every query.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return classify("mongo create index", err)
}

// ownedFilter matches id only within ownerID's todos. ok is false when id
// cannot be a stored id, which callers treat as no match.
func ownedFilter(ownerID, id string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "user_id": ownerID}, true
}

func (s *MongoStore) Insert(ctx context.Context, todo models.Todo) (*models.Todo, error) {
	doc := todoDoc{
		UserID:    todo.UserID,
		Title:     todo.Title,
		Completed: todo.Completed,
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, classify("mongo insert", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	out := doc.model()
	return &out, nil
}

func (s *MongoStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.col.Find(ctx, bson.M{"user_id": ownerID}, opts)
	if err != nil {
		return nil, classify("mongo find", err)
	}
	defer cur.Close(ctx)

	var docs []todoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify("mongo decode", err)
	}
	todos := make([]models.Todo, 0, len(docs))
	for _, d := range docs {
		todos = append(todos, d.model())
	}
	return todos, nil
}

func (s *MongoStore) GetByOwner(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return nil, nil
	}
	var doc todoDoc
	err := s.col.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("mongo find one", err)
	}
	out := doc.model()
	return &out, nil
}

// Update applies patch in a single FindOneAndUpdate, so the owner check and
// the write are one atomic step.
func (s *MongoStore) Update(ctx context.Context, ownerID, id string, patch models.TodoPatch) (*models.Todo, error) {
	if patch.Empty() {
		return s.GetByOwner(ctx, ownerID, id)
	}
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return nil, nil
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc todoDoc
	err := s.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("mongo update", err)
	}
	out := doc.model()
	return &out, nil
}

func (s *MongoStore) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return false, nil
	}
	res, err := s.col.DeleteOne(ctx, filter)
	if err != nil {
		return false, classify("mongo delete", err)
	}
	return res.DeletedCount > 0, nil
}
