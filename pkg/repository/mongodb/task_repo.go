package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	store "github.com/artem13815/tasktracker/pkg/storage/mongodb"
	"github.com/artem13815/tasktracker/pkg/task"
)

type taskDoc struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	AssignedTo  string    `bson:"assignedTo"`
	DueDate     time.Time `bson:"dueDate"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func toTaskDoc(t task.Task) taskDoc {
	return taskDoc{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		AssignedTo:  t.AssignedTo.String(),
		DueDate:     t.DueDate,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d taskDoc) task() (task.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return task.Task{}, err
	}
	assignee, err := uuid.Parse(d.AssignedTo)
	if err != nil {
		return task.Task{}, err
	}
	return task.Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		AssignedTo:  assignee,
		DueDate:     task.TruncateDate(d.DueDate),
		Status:      task.Status(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}

// TaskRepository implements task.Repository over a MongoDB collection.
type TaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{coll: db.Collection(store.TasksCollection)}
}

func (r *TaskRepository) Create(ctx context.Context, t task.Task) error {
	_, err := r.coll.InsertOne(ctx, toTaskDoc(t))
	return err
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (task.Task, error) {
	var doc taskDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}
	return doc.task()
}

func (r *TaskRepository) List(ctx context.Context, f task.Filter, limit, offset int) ([]task.Task, int64, error) {
	filter := filterDoc(f)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	res := make([]task.Task, 0, len(docs))
	for _, d := range docs {
		t, err := d.task()
		if err != nil {
			return nil, 0, err
		}
		res = append(res, t)
	}
	return res, total, nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, f task.Filter) (map[task.Status]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filterDoc(f)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var groups []struct {
		Status string `bson:"_id"`
		N      int64  `bson:"n"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	out := make(map[task.Status]int64, len(groups))
	for _, g := range groups {
		out[task.Status(g.Status)] = g.N
	}
	return out, nil
}

func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, p task.Patch, updatedAt time.Time) (task.Task, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id.String()}},
		bson.D{{Key: "$set", Value: setDoc(p, updatedAt)}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}
	return doc.task()
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return task.ErrNotFound
	}
	return nil
}

// Reset removes every task; used by the seed command.
func (r *TaskRepository) Reset(ctx context.Context) error {
	_, err := r.coll.DeleteMany(ctx, bson.D{})
	return err
}

func filterDoc(f task.Filter) bson.D {
	filter := bson.D{}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}
	if f.AssignedTo != uuid.Nil {
		filter = append(filter, bson.E{Key: "assignedTo", Value: f.AssignedTo.String()})
	}
	return filter
}

// setDoc lists only the fields present in the patch.
func setDoc(p task.Patch, updatedAt time.Time) bson.D {
	set := bson.D{}
	if p.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *p.Title})
	}
	if p.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *p.Description})
	}
	if p.DueDate != nil {
		set = append(set, bson.E{Key: "dueDate", Value: *p.DueDate})
	}
	if p.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*p.Status)})
	}
	return append(set, bson.E{Key: "updatedAt", Value: updatedAt})
}
