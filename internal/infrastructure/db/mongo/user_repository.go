package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jobportal/jobboard-api/internal/core/domain"
)

const usersCollection = "users"

// UserRepository implements ports.UserRepository on the users collection.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoCV struct {
	FileName   string    `bson:"fileName"`
	FileURL    string    `bson:"fileUrl"`
	UploadDate time.Time `bson:"uploadDate"`
	FileSize   int64     `bson:"fileSize"`
	FileType   string    `bson:"fileType"`
}

type mongoUser struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Name                string             `bson:"name"`
	Email               string             `bson:"email"`
	Password            string             `bson:"password"`
	IsTemporaryPassword bool               `bson:"isTemporaryPassword"`
	Role                string             `bson:"role"`
	CV                  *mongoCV           `bson:"cv,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt"`
}

// EnsureIndexes creates the unique email index the duplicate check relies on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := toMongoUser(user)
	doc.ID = primitive.NewObjectID()
	doc.Email = domain.NormalizeEmail(doc.Email)

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) UpdateCredential(ctx context.Context, id, passwordHash string, state domain.CredentialState) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"password":            passwordHash,
		"isTemporaryPassword": state == domain.CredentialTemporary,
		"updatedAt":           time.Now().UTC(),
	}})
}

func (r *UserRepository) SetCV(ctx context.Context, id string, cv *domain.CV) error {
	now := time.Now().UTC()
	if cv == nil {
		return r.updateByID(ctx, id, bson.M{
			"$unset": bson.M{"cv": ""},
			"$set":   bson.M{"updatedAt": now},
		})
	}
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"cv":        toMongoCV(cv),
		"updatedAt": now,
	}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func toMongoUser(u *domain.User) mongoUser {
	role := u.Role
	if role == "" {
		role = domain.RoleUser
	}
	doc := mongoUser{
		Name:                u.Name,
		Email:               u.Email,
		Password:            u.PasswordHash,
		IsTemporaryPassword: u.IsTemporaryPassword(),
		Role:                role,
		CreatedAt:           u.CreatedAt.UTC(),
		UpdatedAt:           u.UpdatedAt.UTC(),
	}
	if u.CV != nil {
		doc.CV = toMongoCV(u.CV)
	}
	return doc
}

func toMongoCV(cv *domain.CV) *mongoCV {
	return &mongoCV{
		FileName:   cv.FileName,
		FileURL:    cv.StorageLocation,
		UploadDate: cv.UploadDate.UTC(),
		FileSize:   cv.SizeBytes,
		FileType:   cv.MIMEType,
	}
}

func (mu mongoUser) toDomain() *domain.User {
	u := &domain.User{
		ID:           mu.ID.Hex(),
		Name:         mu.Name,
		Email:        mu.Email,
		PasswordHash: mu.Password,
		Credential:   domain.CredentialStateFromFlag(mu.IsTemporaryPassword),
		Role:         mu.Role,
		CreatedAt:    mu.CreatedAt,
		UpdatedAt:    mu.UpdatedAt,
	}
	// A cleared CV may survive as a sub-document with null fields.
	if mu.CV != nil && mu.CV.FileName != "" {
		u.CV = &domain.CV{
			FileName:        mu.CV.FileName,
			StorageLocation: mu.CV.FileURL,
			UploadDate:      mu.CV.UploadDate,
			SizeBytes:       mu.CV.FileSize,
			MIMEType:        mu.CV.FileType,
		}
	}
	return u
}
