package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"productapi/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// productDocument is the BSON shape of a product.
type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Category    string             `bson:"category"`
	InStock     bool               `bson:"inStock"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d productDocument) model() models.Product {
	return models.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		InStock:     d.InStock,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoProductRepository wraps an existing collection. client may be nil,
// in which case Close does nothing.
func NewMongoProductRepository(client *mongo.Client, coll *mongo.Collection) *MongoProductRepository {
	return &MongoProductRepository{client: client, coll: coll}
}

// OpenMongoProductRepository connects to uri and pings the server.
func OpenMongoProductRepository(ctx context.Context, uri, database, collection string) (*MongoProductRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return NewMongoProductRepository(client, client.Database(database).Collection(collection)), nil
}

// mongoFilter translates a ProductFilter into a query document.
func mongoFilter(filter ProductFilter) bson.M {
	q := bson.M{}
	if filter.Category != "" {
		q["category"] = filter.Category
	}
	if filter.NameContains != "" {
		q["name"] = bson.M{"$regex": regexp.QuoteMeta(filter.NameContains), "$options": "i"}
	}
	return q
}

// Migrate creates the secondary indexes used by filtering and search.
func (r *MongoProductRepository) Migrate(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

// Find returns matching products in natural order.
func (r *MongoProductRepository) Find(ctx context.Context, filter ProductFilter, page Page) ([]models.Product, error) {
	opts := options.Find()
	if page.Offset > 0 {
		opts.SetSkip(int64(page.Offset))
	}
	if page.Limit > 0 {
		opts.SetLimit(int64(page.Limit))
	}

	cursor, err := r.coll.Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.model())
	}
	return products, nil
}

// Count returns the number of documents matching filter.
func (r *MongoProductRepository) Count(ctx context.Context, filter ProductFilter) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, mongoFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// objectID parses id. A malformed id can never match, so it reports not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return oid, nil
}

func (r *MongoProductRepository) decodeOne(res *mongo.SingleResult, id string) (*models.Product, error) {
	var doc productDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	product := doc.model()
	return &product, nil
}

// GetByID retrieves a single product by its ObjectID hex string.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.decodeOne(r.coll.FindOne(ctx, bson.M{"_id": oid}), id)
}

// Create inserts a product. The store always assigns a fresh ObjectID.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	doc := productDocument{
		ID:          primitive.NewObjectID(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		InStock:     product.InStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	*product = doc.model()
	return nil
}

// patchDocument builds the $set document for a patch.
func patchDocument(patch models.ProductPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.InStock != nil {
		set["inStock"] = *patch.InStock
	}
	return set
}

// UpdateByID applies patch atomically and returns the updated document.
func (r *MongoProductRepository) UpdateByID(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	res := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": patchDocument(patch, time.Now().UTC())},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	return r.decodeOne(res, id)
}

// DeleteByID removes a product atomically and returns the removed document.
func (r *MongoProductRepository) DeleteByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.decodeOne(r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}), id)
}

// CountByCategory runs a $group aggregation over category.
func (r *MongoProductRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate products by category: %w", err)
	}
	var groups []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode category counts: %w", err)
	}

	rows := make([]models.CategoryCount, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, models.CategoryCount{Category: g.Category, Count: g.Count})
	}
	return rows, nil
}

// Close disconnects the client if this repository owns one.
func (r *MongoProductRepository) Close() error {
	if r.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
