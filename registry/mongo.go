package registry

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"evotemfc/coreerr"
)

// MongoRegistry backs Registry with MongoDB collections, grounded on the
// teacher's storage/mongo.go connection/collection shape. It is the
// stand-in for the out-of-scope voter-registry/election/candidate CRUD
// systems — a genuinely different storage technology from the core's own
// Postgres tables, matching spec §1's framing of these as external.
type MongoRegistry struct {
	client     *mongo.Client
	voters     *mongo.Collection
	elections  *mongo.Collection
	candidates *mongo.Collection
	casts      *mongo.Collection
}

type voterDoc struct {
	ElectionID  string `bson:"election_id"`
	Fingerprint string `bson:"fingerprint"`
	VoterID     int64  `bson:"voter_id"`
}

type electionDoc struct {
	ID     string     `bson:"_id"`
	Status string     `bson:"status"`
	Start  *time.Time `bson:"start,omitempty"`
	End    *time.Time `bson:"end,omitempty"`
}

type candidateDoc struct {
	ID         string `bson:"_id"`
	ElectionID string `bson:"election_id"`
	Active     bool   `bson:"active"`
}

type castDoc struct {
	ElectionID string    `bson:"election_id"`
	VoterID    int64     `bson:"voter_id"`
	At         time.Time `bson:"at"`
}

// OpenMongoRegistry connects to uri and binds the fixed collection set
// this registry reads from.
func OpenMongoRegistry(ctx context.Context, uri string) (*MongoRegistry, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("registry: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("registry: ping: %w", err)
	}
	db := client.Database("evote")
	return &MongoRegistry{
		client:     client,
		voters:     db.Collection("voters"),
		elections:  db.Collection("elections"),
		candidates: db.Collection("candidates"),
		casts:      db.Collection("casts"),
	}, nil
}

func (m *MongoRegistry) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoRegistry) ResolveVoter(ctx context.Context, electionID, fingerprint string) (int64, error) {
	var doc voterDoc
	err := m.voters.FindOne(ctx, bson.M{"election_id": electionID, "fingerprint": fingerprint}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, errNotFound("voter")
	}
	if err != nil {
		return 0, coreerr.Wrap(coreerr.Internal, "registry: resolve voter", err)
	}
	return doc.VoterID, nil
}

func (m *MongoRegistry) Election(ctx context.Context, electionID string) (*Election, error) {
	var doc electionDoc
	err := m.elections.FindOne(ctx, bson.M{"_id": electionID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errNotFound("election")
	}
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "registry: fetch election", err)
	}
	return &Election{
		ID:     doc.ID,
		Status: ElectionStatus(doc.Status),
		Start:  doc.Start,
		End:    doc.End,
	}, nil
}

func (m *MongoRegistry) ActiveCandidate(ctx context.Context, electionID, candidateID string) (*Candidate, error) {
	var doc candidateDoc
	err := m.candidates.FindOne(ctx, bson.M{"_id": candidateID, "election_id": electionID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errNotFound("candidate")
	}
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "registry: fetch candidate", err)
	}
	if !doc.Active {
		return nil, errNotFound("candidate")
	}
	return &Candidate{ID: doc.ID, ElectionID: doc.ElectionID, Active: doc.Active}, nil
}

func (m *MongoRegistry) RecordCast(ctx context.Context, electionID string, voterID int64) error {
	_, err := m.casts.InsertOne(ctx, castDoc{ElectionID: electionID, VoterID: voterID, At: time.Now()})
	if err != nil {
		return coreerr.Wrap(coreerr.Internal, "registry: record cast", err)
	}
	return nil
}
