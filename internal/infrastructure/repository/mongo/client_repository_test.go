package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildClientFilterQuotesAndSkipsBlankTerms(t *testing.T) {
	filter, ok := buildClientFilter("Ann (Lee)", "Acme.io")
	if !ok {
		t.Fatalf("expected filter")
	}
	clauses := filter["$or"].(bson.A)
	if len(clauses) != 2 {
		t.Fatalf("expected two clauses, got %v", clauses)
	}
	company := clauses[0].(bson.M)["company_name"].(bson.M)
	if company["$regex"] != `Acme\.io` || company["$options"] != "i" {
		t.Fatalf("unexpected company clause %v", company)
	}
	name := clauses[1].(bson.M)["company_details.name"].(bson.M)
	if name["$regex"] != `Ann \(Lee\)` {
		t.Fatalf("unexpected name clause %v", name)
	}

	filter, ok = buildClientFilter("", "Globex")
	if !ok || len(filter["$or"].(bson.A)) != 1 {
		t.Fatalf("expected company-only filter, got %v", filter)
	}
	if _, ok := buildClientFilter(" ", ""); ok {
		t.Fatalf("blank terms must not produce a match-all filter")
	}
}

func TestClientDocumentDecodesNestedSchema(t *testing.T) {
	oid := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.M{
		"_id":          oid,
		"company_name": "Globex",
		"company_details": bson.M{
			"name":  "Dana",
			"email": "dana@globex.test",
			"phone": "+1-555",
		},
		"ai_extracted_data": bson.M{
			"structured_data": bson.M{
				"Industry":            "Logistics",
				"Description/tagline": "Moving goods worldwide.",
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc clientDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p := doc.profile()
	if p.RecordID != oid.Hex() || p.Name != "Dana" || p.Company != "Globex" || p.Industry != "Logistics" || p.Summary != "Moving goods worldwide." {
		t.Fatalf("unexpected profile %+v", p)
	}
}
