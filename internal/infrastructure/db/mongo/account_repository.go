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

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

const collectionAccounts = "accounts"

type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

type mongoAccount struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	Email                 string             `bson:"email"`
	PasswordHash          string             `bson:"password_hash"`
	FirstName             string             `bson:"first_name"`
	LastName              string             `bson:"last_name"`
	Phone                 string             `bson:"phone,omitempty"`
	Role                  string             `bson:"role"`
	Active                bool               `bson:"active"`
	Verified              bool               `bson:"verified"`
	ResetTokenHash        string             `bson:"reset_token_hash,omitempty"`
	ResetExpiresAt        *time.Time         `bson:"reset_expires_at,omitempty"`
	VerificationTokenHash string             `bson:"verification_token_hash,omitempty"`
	VerificationExpiresAt *time.Time         `bson:"verification_expires_at,omitempty"`
	LastLoginAt           *time.Time         `bson:"last_login_at,omitempty"`
	CreatedAt             time.Time          `bson:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at"`
}

func toMongoAccount(a *domain.Account) mongoAccount {
	return mongoAccount{
		Email:                 a.Email,
		PasswordHash:          a.PasswordHash,
		FirstName:             a.FirstName,
		LastName:              a.LastName,
		Phone:                 a.Phone,
		Role:                  string(a.Role),
		Active:                a.Active,
		Verified:              a.Verified,
		ResetTokenHash:        a.ResetTokenHash,
		ResetExpiresAt:        a.ResetExpiresAt,
		VerificationTokenHash: a.VerificationTokenHash,
		VerificationExpiresAt: a.VerificationExpiresAt,
		LastLoginAt:           a.LastLoginAt,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

func (m mongoAccount) toDomain() *domain.Account {
	return &domain.Account{
		ID:                    m.ID.Hex(),
		Email:                 m.Email,
		PasswordHash:          m.PasswordHash,
		FirstName:             m.FirstName,
		LastName:              m.LastName,
		Phone:                 m.Phone,
		Role:                  domain.Role(m.Role),
		Active:                m.Active,
		Verified:              m.Verified,
		ResetTokenHash:        m.ResetTokenHash,
		ResetExpiresAt:        m.ResetExpiresAt,
		VerificationTokenHash: m.VerificationTokenHash,
		VerificationExpiresAt: m.VerificationExpiresAt,
		LastLoginAt:           m.LastLoginAt,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoAccount(a)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAccountExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	a.ID = doc.ID.Hex()
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := objectID(id, domain.ErrAccountNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByEmail expects email already lower-cased; emails are stored that way.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAccount
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// RecordLogin stamps the login time, provided the account is still active
// and still holds passwordHash.
func (r *AccountRepository) RecordLogin(ctx context.Context, id, passwordHash string, at time.Time) (*domain.Account, error) {
	oid, err := objectID(id, domain.ErrAccountNotFound)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"_id": oid, "active": true, "password_hash": passwordHash}
	return r.modify(ctx, filter, bson.M{"$set": bson.M{"last_login_at": at}})
}

func (r *AccountRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt, at time.Time) error {
	_, err := r.modifyByID(ctx, id, bson.M{"$set": bson.M{
		"reset_token_hash": tokenHash,
		"reset_expires_at": expiresAt,
		"updated_at":       at,
	}})
	return err
}

func (r *AccountRepository) SetVerificationToken(ctx context.Context, id, tokenHash string, expiresAt, at time.Time) error {
	_, err := r.modifyByID(ctx, id, bson.M{"$set": bson.M{
		"verification_token_hash": tokenHash,
		"verification_expires_at": expiresAt,
		"updated_at":              at,
	}})
	return err
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id string, in ports.ProfileUpdate, at time.Time) (*domain.Account, error) {
	set := bson.M{"updated_at": at}
	if in.FirstName != nil {
		set["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		set["last_name"] = *in.LastName
	}
	update := bson.M{"$set": set}
	if in.Phone != nil {
		if *in.Phone == "" {
			update["$unset"] = bson.M{"phone": ""}
		} else {
			set["phone"] = *in.Phone
		}
	}
	return r.modifyByID(ctx, id, update)
}

// ReplacePasswordHash swaps the hash only while the stored one is still
// oldHash. A miss yields domain.ErrAccountNotFound.
func (r *AccountRepository) ReplacePasswordHash(ctx context.Context, id, oldHash, newHash string, at time.Time) error {
	oid, err := objectID(id, domain.ErrAccountNotFound)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": oid, "password_hash": oldHash}
	_, err = r.modify(ctx, filter, bson.M{"$set": bson.M{"password_hash": newHash, "updated_at": at}})
	return err
}

func (r *AccountRepository) SetRole(ctx context.Context, id string, role domain.Role, at time.Time) (*domain.Account, error) {
	return r.modifyByID(ctx, id, bson.M{"$set": bson.M{"role": string(role), "updated_at": at}})
}

func (r *AccountRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) (*domain.Account, error) {
	return r.modifyByID(ctx, id, bson.M{"$set": bson.M{"active": active, "updated_at": at}})
}

func (r *AccountRepository) GrantAdmin(ctx context.Context, id string, at time.Time) (*domain.Account, error) {
	return r.modifyByID(ctx, id, bson.M{"$set": bson.M{
		"role":       string(domain.RoleAdmin),
		"active":     true,
		"updated_at": at,
	}})
}

func (r *AccountRepository) List(ctx context.Context, page ports.Page) ([]*domain.Account, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs, total, err := findPage[mongoAccount](ctx, r.col, bson.M{}, page)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Account, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

func (r *AccountRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*domain.Account, error) {
	filter := bson.M{
		"reset_token_hash": tokenHash,
		"reset_expires_at": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"password_hash": passwordHash, "updated_at": now},
		"$unset": bson.M{"reset_token_hash": "", "reset_expires_at": ""},
	}
	return r.modify(ctx, filter, update)
}

func (r *AccountRepository) ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*domain.Account, error) {
	filter := bson.M{
		"verification_token_hash": tokenHash,
		"verification_expires_at": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"verified": true, "updated_at": now},
		"$unset": bson.M{"verification_token_hash": "", "verification_expires_at": ""},
	}
	return r.modify(ctx, filter, update)
}

func (r *AccountRepository) modifyByID(ctx context.Context, id string, update bson.M) (*domain.Account, error) {
	oid, err := objectID(id, domain.ErrAccountNotFound)
	if err != nil {
		return nil, err
	}
	return r.modify(ctx, bson.M{"_id": oid}, update)
}

// modify applies update to the single account matching filter in one
// atomic step and returns the result. Tokens are redeemed through it so
// each can be used only once.
func (r *AccountRepository) modify(ctx context.Context, filter, update bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoAccount
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("modify account: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates necessary indexes on the accounts collection.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "reset_token_hash", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "verification_token_hash", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
