package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kirillkom/sales-assistant/internal/core/domain"
)

// clientDocument mirrors the CRM export schema: contact details and the
// research scraped about the company live in nested documents.
type clientDocument struct {
	ID             any    `bson:"_id"`
	CompanyName    string `bson:"company_name"`
	CompanyDetails struct {
		Name  string `bson:"name"`
		Email string `bson:"email"`
		Phone string `bson:"phone"`
	} `bson:"company_details"`
	AIExtractedData struct {
		StructuredData struct {
			Industry    string `bson:"Industry"`
			Description string `bson:"Description/tagline"`
		} `bson:"structured_data"`
	} `bson:"ai_extracted_data"`
}

func (d clientDocument) profile() domain.ClientProfile {
	return domain.ClientProfile{
		RecordID: recordID(d.ID),
		Name:     d.CompanyDetails.Name,
		Company:  d.CompanyName,
		Email:    d.CompanyDetails.Email,
		Phone:    d.CompanyDetails.Phone,
		Industry: d.AIExtractedData.StructuredData.Industry,
		Summary:  d.AIExtractedData.StructuredData.Description,
	}
}

type ClientRepository struct {
	client     *mongodriver.Client
	collection *mongodriver.Collection
}

func Connect(ctx context.Context, uri, database, collection string) (*ClientRepository, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongodriver.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &ClientRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (r *ClientRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *ClientRepository) FindClient(ctx context.Context, name, company string) (*domain.ClientProfile, error) {
	filter, ok := buildClientFilter(name, company)
	if !ok {
		return nil, domain.WrapError(domain.ErrClientNotFound, "find client", errors.New("no search terms"))
	}

	var doc clientDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return nil, domain.WrapError(domain.ErrClientNotFound, "find client", err)
	}
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	profile := doc.profile()
	return &profile, nil
}

// buildClientFilter ORs a case-insensitive substring match on the company
// name with one on the contact name. Terms are quoted so user input is
// never interpreted as a pattern.
func buildClientFilter(name, company string) (bson.M, bool) {
	clauses := bson.A{}
	if company = strings.TrimSpace(company); company != "" {
		clauses = append(clauses, bson.M{"company_name": bson.M{"$regex": regexp.QuoteMeta(company), "$options": "i"}})
	}
	if name = strings.TrimSpace(name); name != "" {
		clauses = append(clauses, bson.M{"company_details.name": bson.M{"$regex": regexp.QuoteMeta(name), "$options": "i"}})
	}
	if len(clauses) == 0 {
		return nil, false
	}
	return bson.M{"$or": clauses}, true
}

func recordID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}
