package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/deskgrid/pkg/layout"
)

// Collection and document names used by MongoStore.
const (
	mongoRowsCollection = "layout_info"
	mongoMetaCollection = "layout_meta"
	mongoSequenceID     = "layout_info_seq"
	mongoDescriptorID   = "layout_description"
)

// MongoStore keeps layout rows in a MongoDB collection. Row ids come from a
// counter document so they stay integers like SQLite rowids.
type MongoStore struct {
	client *mongo.Client
	rows   *mongo.Collection
	meta   *mongo.Collection
}

var _ RowStore = (*MongoStore)(nil)

type sequenceDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

type descriptorDoc struct {
	ID        string `bson:"_id"`
	PageCount int    `bson:"page_count"`
	Rows      int    `bson:"row_count"`
	Columns   int    `bson:"column_count"`
}

// OpenMongo connects to uri and uses the given database.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("store: mongo ping: %w", err)
	}
	db := client.Database(database)
	s := &MongoStore{
		client: client,
		rows:   db.Collection(mongoRowsCollection),
		meta:   db.Collection(mongoMetaCollection),
	}
	if _, err := s.rows.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "container", Value: 1}}}); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("store: mongo index: %w", err)
	}
	return s, nil
}

func (s *MongoStore) DeleteAll(ctx context.Context) error {
	if _, err := s.rows.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("delete layout rows: %w", err)
	}
	if _, err := s.meta.DeleteOne(ctx, bson.D{{Key: "_id", Value: mongoSequenceID}}); err != nil {
		return fmt.Errorf("reset layout sequence: %w", err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, r Row) (int64, error) {
	var seq sequenceDoc
	err := s.meta.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: mongoSequenceID}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&seq)
	if err != nil {
		return InvalidID, fmt.Errorf("insert %s: next id: %w", r.KeyName, err)
	}
	r.ID = seq.Seq
	if _, err := s.rows.InsertOne(ctx, r); err != nil {
		return InvalidID, fmt.Errorf("insert %s: %w", r.KeyName, err)
	}
	return r.ID, nil
}

func (s *MongoStore) QueryByContainer(ctx context.Context, container int64) ([]Row, error) {
	cur, err := s.rows.Find(ctx, containerFilter(container), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("query container %d: %w", container, err)
	}
	var out []Row
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode container %d: %w", container, err)
	}
	return out, nil
}

func (s *MongoStore) SaveDescriptor(ctx context.Context, d layout.Descriptor) error {
	_, err := s.meta.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: mongoDescriptorID}},
		toDescriptorDoc(d),
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save descriptor: %w", err)
	}
	return nil
}

func (s *MongoStore) LoadDescriptor(ctx context.Context) (layout.Descriptor, bool, error) {
	var doc descriptorDoc
	err := s.meta.FindOne(ctx, bson.D{{Key: "_id", Value: mongoDescriptorID}}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return layout.Descriptor{}, false, nil
	}
	if err != nil {
		return layout.Descriptor{}, false, fmt.Errorf("load descriptor: %w", err)
	}
	return layout.Descriptor{PageCount: doc.PageCount, Rows: doc.Rows, Columns: doc.Columns}, true, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func containerFilter(container int64) bson.D {
	return bson.D{{Key: "container", Value: container}}
}

func toDescriptorDoc(d layout.Descriptor) descriptorDoc {
	return descriptorDoc{ID: mongoDescriptorID, PageCount: d.PageCount, Rows: d.Rows, Columns: d.Columns}
}
