package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
	"github.com/ArowuTest/mawadha-giveaway-backend/internal/repositories"
)

const (
	// CollectionName is the collection holding participant documents
	CollectionName = "participants"

	phoneIndexName   = "uniq_country_code_whatsapp"
	couponIndexName  = "uniq_coupon_code"
	listingIndexName = "created_at_desc"
)

// listingSort is shared by List and FindAt so offsets agree
var listingSort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// Compile-time check to ensure ParticipantRepository implements the interface
var _ repositories.ParticipantRepository = (*ParticipantRepository)(nil)

// participantDocument is the persisted form of a participant.
// Field names follow the underscore-separated table schema.
type participantDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	Whatsapp         string             `bson:"whatsapp"`
	CountryCode      string             `bson:"country_code"`
	Age              int                `bson:"age"`
	MaritalStatus    string             `bson:"marital_status"`
	AttractionReason string             `bson:"attraction_reason"`
	CouponCode       string             `bson:"coupon_code"`
	CreatedAt        time.Time          `bson:"created_at"`
}

func toDocument(p *models.Participant) participantDocument {
	return participantDocument{
		Name:             p.Name,
		Whatsapp:         p.Phone,
		CountryCode:      p.CountryCode,
		Age:              p.Age,
		MaritalStatus:    string(p.MaritalStatus),
		AttractionReason: p.AttractionReason,
		CouponCode:       p.CouponCode,
		CreatedAt:        p.CreatedAt,
	}
}

func (d participantDocument) toModel() *models.Participant {
	return &models.Participant{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		CountryCode:      d.CountryCode,
		Phone:            d.Whatsapp,
		Age:              d.Age,
		MaritalStatus:    models.MaritalStatus(d.MaritalStatus),
		AttractionReason: d.AttractionReason,
		CouponCode:       d.CouponCode,
		CreatedAt:        d.CreatedAt.UTC(),
	}
}

// ParticipantRepository handles MongoDB operations for Participant
type ParticipantRepository struct {
	collection *mongo.Collection
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *mongo.Database) *ParticipantRepository {
	return &ParticipantRepository{
		collection: db.Collection(CollectionName),
	}
}

// EnsureIndexes creates the unique and listing indexes the registry relies on
func (r *ParticipantRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "country_code", Value: 1}, {Key: "whatsapp", Value: 1}},
			Options: options.Index().SetName(phoneIndexName).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "coupon_code", Value: 1}},
			Options: options.Index().SetName(couponIndexName).SetUnique(true),
		},
		{
			Keys:    listingSort,
			Options: options.Index().SetName(listingIndexName),
		},
	})
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// Insert inserts a new participant
func (r *ParticipantRepository) Insert(ctx context.Context, participant *models.Participant) (*models.Participant, error) {
	doc := toDocument(participant)
	doc.ID = primitive.NewObjectID()
	// Mongo stores milliseconds; truncate so the returned value matches what is read back
	doc.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), couponIndexName) {
				return nil, models.ErrDuplicateCoupon
			}
			return nil, models.ErrDuplicatePhone
		}
		return nil, unavailable(err)
	}
	return doc.toModel(), nil
}

// FindByPhone finds a participant by country code and phone
func (r *ParticipantRepository) FindByPhone(ctx context.Context, countryCode, phone string) (*models.Participant, error) {
	return r.findOne(ctx, bson.M{"country_code": countryCode, "whatsapp": phone})
}

// FindByCouponCode finds a participant by coupon code
func (r *ParticipantRepository) FindByCouponCode(ctx context.Context, code string) (*models.Participant, error) {
	return r.findOne(ctx, bson.M{"coupon_code": code})
}

func (r *ParticipantRepository) findOne(ctx context.Context, filter bson.M) (*models.Participant, error) {
	var doc participantDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, unavailable(err)
	}
	return doc.toModel(), nil
}

// Count counts all participants
func (r *ParticipantRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, unavailable(err)
	}
	return count, nil
}

// List retrieves participants newest first with skip/limit pagination
func (r *ParticipantRepository) List(ctx context.Context, offset, limit int64) ([]*models.Participant, error) {
	if offset < 0 || limit <= 0 {
		return []*models.Participant{}, nil
	}
	opts := options.Find().
		SetSort(listingSort).
		SetSkip(offset).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, unavailable(err)
	}
	defer cursor.Close(ctx)

	var docs []participantDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable(err)
	}
	participants := make([]*models.Participant, 0, len(docs))
	for _, doc := range docs {
		participants = append(participants, doc.toModel())
	}
	return participants, nil
}

// FindAt fetches the single participant at offset
func (r *ParticipantRepository) FindAt(ctx context.Context, offset int64) (*models.Participant, error) {
	if offset < 0 {
		return nil, models.ErrNotFound
	}
	opts := options.FindOne().
		SetSort(listingSort).
		SetSkip(offset)
	var doc participantDocument
	if err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, unavailable(err)
	}
	return doc.toModel(), nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
}
