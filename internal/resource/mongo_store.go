package resource

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a MongoDB collection. List queries
// assume the collection carries a (sort field, _id) index for every
// allow-listed sort field.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

// EnsureIndexes creates the compound (sort field, _id) indexes that
// keep list ordering stable and efficient for every allow-listed sort
// field.
func (m *MongoStore) EnsureIndexes(ctx context.Context, sortFields []string) error {
	models := make([]mongo.IndexModel, 0, len(sortFields))
	for _, f := range sortFields {
		models = append(models, mongo.IndexModel{
			Keys: bson.D{{Key: f, Value: 1}, {Key: "_id", Value: 1}},
		})
	}
	if len(models) == 0 {
		return nil
	}
	_, err := m.col.Indexes().CreateMany(ctx, models)
	return err
}

func (m *MongoStore) Create(ctx context.Context, doc Document) (string, error) {
	res, err := m.col.InsertOne(ctx, bson.M(doc))
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (m *MongoStore) Get(ctx context.Context, id string) (Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// a malformed id cannot match any stored document
		return nil, nil
	}
	var raw bson.M
	if err := m.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return normalizeDocument(raw), nil
}

func (m *MongoStore) Update(ctx context.Context, id string, fields Document) (Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var raw bson.M
	err = m.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(fields)}, opts).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return normalizeDocument(raw), nil
}

func (m *MongoStore) List(ctx context.Context, q *ListQuery) (*Page, error) {
	filter, err := m.listFilter(ctx, q)
	if err != nil {
		return nil, err
	}
	dir := 1
	if q.Descending {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: q.SortBy, Value: dir}, {Key: "_id", Value: dir}}).
		SetLimit(int64(q.Limit + 1))
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	docs := []Document{}
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, normalizeDocument(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return NewPage(docs, q.Limit), nil
}

func (m *MongoStore) listFilter(ctx context.Context, q *ListQuery) (bson.M, error) {
	conds := []bson.M{}
	if q.Name != "" {
		conds = append(conds, bson.M{"name": bson.M{
			"$regex":   regexp.QuoteMeta(q.Name),
			"$options": "i",
		}})
	}
	if q.AfterID != "" {
		cont, err := m.continuation(ctx, q)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cont)
	}
	switch len(conds) {
	case 0:
		return bson.M{}, nil
	case 1:
		return conds[0], nil
	}
	return bson.M{"$and": conds}, nil
}

// continuation builds the page-boundary predicate from the cursor
// document's (sort value, _id) pair with _id as tie-breaker. The
// cursor only carries the identifier, so one lookup recovers the sort
// value; a deleted cursor document fails the page request rather than
// silently restarting the scan.
func (m *MongoStore) continuation(ctx context.Context, q *ListQuery) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(q.AfterID)
	if err != nil {
		return nil, Validationf("invalid after_id cursor: %q", q.AfterID)
	}
	var cursorDoc bson.M
	opts := options.FindOne().SetProjection(bson.M{q.SortBy: 1})
	if err := m.col.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&cursorDoc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, Validationf("after_id %s no longer exists", q.AfterID)
		}
		return nil, err
	}
	sortVal := fieldValue(cursorDoc, q.SortBy)
	cmp := "$gt"
	if q.Descending {
		cmp = "$lt"
	}
	return bson.M{"$or": []bson.M{
		{q.SortBy: bson.M{cmp: sortVal}},
		{q.SortBy: sortVal, "_id": bson.M{cmp: oid}},
	}}, nil
}

// normalizeDocument converts a decoded BSON document into the wire
// shape: _id as hex string, nested documents as plain maps, BSON
// datetimes as time.Time.
func normalizeDocument(raw bson.M) Document {
	out := Document{}
	for k, v := range raw {
		out[k] = normalizeValue(v)
	}
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		out["_id"] = oid.Hex()
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time()
	case bson.M:
		m := map[string]interface{}{}
		for k, e := range t {
			m[k] = normalizeValue(e)
		}
		return m
	case primitive.D:
		m := map[string]interface{}{}
		for _, e := range t {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case primitive.A:
		a := make([]interface{}, len(t))
		for i, e := range t {
			a[i] = normalizeValue(e)
		}
		return a
	}
	return v
}
