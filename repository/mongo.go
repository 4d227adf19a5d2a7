package repository

import (
	"context"
	"log"
	"time"

	"improve-my-city-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoIssueRepository stores issues in a MongoDB collection keyed by the
// generated report ID.
type MongoIssueRepository struct {
	col *mongo.Collection
}

func NewMongoIssueRepository(col *mongo.Collection) *MongoIssueRepository {
	return &MongoIssueRepository{col: col}
}

func (r *MongoIssueRepository) Create(ctx context.Context, issue models.Issue) (models.Issue, error) {
	if _, err := r.col.InsertOne(ctx, issue); err != nil {
		return models.Issue{}, err
	}
	return issue, nil
}

func (r *MongoIssueRepository) ListAll(ctx context.Context) ([]models.Issue, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.col.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *MongoIssueRepository) GetByID(ctx context.Context, id string) (models.Issue, error) {
	var issue models.Issue
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return models.Issue{}, ErrNotFound
	}
	if err != nil {
		return models.Issue{}, err
	}
	return issue, nil
}

func (r *MongoIssueRepository) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error {
	return r.setFields(ctx, id, bson.M{"status": status})
}

func (r *MongoIssueRepository) UpdatePriority(ctx context.Context, id string, priority models.Priority) error {
	return r.setFields(ctx, id, bson.M{"priority": priority})
}

func (r *MongoIssueRepository) AttachActionPlan(ctx context.Context, id string, plan models.ActionPlan) error {
	return r.setFields(ctx, id, bson.M{"actionPlan": plan})
}

func (r *MongoIssueRepository) setFields(ctx context.Context, id string, fields bson.M) error {
	fields["updatedAt"] = time.Now()

	result, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Watch tails the collection's change stream and forwards full-document
// snapshots of inserts and updates.
func (r *MongoIssueRepository) Watch(ctx context.Context) (<-chan models.Issue, error) {
	streamOptions := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := r.col.Watch(ctx, mongo.Pipeline{}, streamOptions)
	if err != nil {
		return nil, err
	}

	ch := make(chan models.Issue, 16)
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var event struct {
				FullDocument models.Issue `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				log.Println("Error decoding change stream event:", err)
				continue
			}
			if event.FullDocument.ID == "" {
				continue
			}
			select {
			case ch <- event.FullDocument:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// MongoUserRepository stores user profiles in a MongoDB collection.
type MongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		return models.User{}, err
	}
	if count > 0 {
		return models.User{}, ErrEmailTaken
	}

	user.ID = primitive.NewObjectID().Hex()
	if _, err := r.col.InsertOne(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
