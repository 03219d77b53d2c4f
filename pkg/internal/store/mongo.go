package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/types"
)

// 集合名.
const (
	CollectionFiles    = "files"
	CollectionActivity = "activity_logs"
	CollectionUsers    = "users"
)

// fileDoc 一个文件一个文档，行数据内嵌，写入天然原子.
type fileDoc struct {
	ID          string               `bson:"_id"`
	Owner       string               `bson:"owner"`
	OwnerName   string               `bson:"ownerName"`
	FileName    string               `bson:"fileName"`
	SizeBytes   int64                `bson:"sizeBytes"`
	ContentType string               `bson:"contentType"`
	SheetName   string               `bson:"sheetName"`
	Columns     []string             `bson:"columns"`
	RowCount    int                  `bson:"rowCount"`
	Checksum    string               `bson:"checksum"`
	BlobKey     string               `bson:"blobKey,omitempty"`
	UploadedAt  time.Time            `bson:"uploadedAt"`
	Rows        [][]types.TaggedCell `bson:"rows,omitempty"`
}

type activityDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Username  string             `bson:"username"`
	Action    string             `bson:"action"`
	Status    string             `bson:"status"`
	Timestamp time.Time          `bson:"timestamp"`
	Metadata  map[string]string  `bson:"metadata,omitempty"`
}

type userDoc struct {
	ID         string    `bson:"_id"`
	Username   string    `bson:"username"`
	Role       string    `bson:"role"`
	CreatedAt  time.Time `bson:"createdAt"`
	LastSeenAt time.Time `bson:"lastSeenAt"`
}

// MongoStore 基于 MongoDB 的存储.
type MongoStore struct {
	client   *mongo.Client
	files    *mongo.Collection
	activity *mongo.Collection
	users    *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore 使用已连接的客户端创建存储.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)

	return &MongoStore{
		client:   client,
		files:    db.Collection(CollectionFiles),
		activity: db.Collection(CollectionActivity),
		users:    db.Collection(CollectionUsers),
	}
}

// metaOnly 列表查询不取行数据.
var metaOnly = bson.D{{Key: "rows", Value: 0}}

// Migrate 创建索引.
func (s *MongoStore) Migrate(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.files: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "uploadedAt", Value: -1}}},
			{Keys: bson.D{{Key: "uploadedAt", Value: -1}}},
			{Keys: bson.D{{Key: "blobKey", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		s.activity: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return errs.Store(err, "create indexes on "+coll.Name())
		}
	}

	return nil
}

// Ping 检查连接.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close 断开连接.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Create 插入一个包含全部行的文档.
func (s *MongoStore) Create(ctx context.Context, in types.NewFileRecord) (*types.FileRecord, error) {
	var owner userDoc
	if err := s.users.FindOne(ctx, bson.M{"_id": in.Owner}).Decode(&owner); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ownerMissing(in.Owner)
		}

		return nil, storeErr(err, "lookup owner")
	}

	columns := orEmpty(in.Table.Columns)
	rows := orEmpty(in.Table.Rows)

	doc := fileDoc{
		ID:          NewID(),
		Owner:       in.Owner,
		OwnerName:   owner.Username,
		FileName:    in.FileName,
		SizeBytes:   in.SizeBytes,
		ContentType: in.ContentType,
		SheetName:   in.Table.Sheet,
		Columns:     columns,
		RowCount:    len(rows),
		Checksum:    in.Checksum,
		BlobKey:     in.BlobKey,
		UploadedAt:  now(),
		Rows:        types.Matrix(columns, rows),
	}

	if _, err := s.files.InsertOne(ctx, doc); err != nil {
		return nil, storeErr(err, "create file record")
	}

	out := doc.record()
	out.Rows = rows

	return &out, nil
}

// Get 按 ID 读取完整记录.
func (s *MongoStore) Get(ctx context.Context, id string) (*types.FileRecord, error) {
	var doc fileDoc
	if err := s.files.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("file %s not found", id)
		}

		return nil, storeErr(err, "get file record")
	}

	out := doc.record()
	out.Rows = types.RowsFromMatrix(out.Columns, doc.Rows)

	return &out, nil
}

// ListByOwner 按上传时间倒序返回元数据.
func (s *MongoStore) ListByOwner(ctx context.Context, owner string) ([]types.FileRecord, error) {
	opts := options.Find().
		SetProjection(metaOnly).
		SetSort(bson.D{{Key: "uploadedAt", Value: -1}, {Key: "_id", Value: -1}})

	return s.findFiles(ctx, bson.M{"owner": owner}, opts)
}

// ListAll 文件名、所有者 ID 或用户名的大小写不敏感子串检索.
func (s *MongoStore) ListAll(ctx context.Context, q types.FileQuery) ([]types.FileRecord, int64, error) {
	q = q.Normalize()

	filter := bson.M{}
	if q.Q != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Q), Options: "i"}
		filter = bson.M{"$or": bson.A{
			bson.M{"fileName": re},
			bson.M{"owner": re},
			bson.M{"ownerName": re},
		}}
	}

	total, err := s.files.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, storeErr(err, "count files")
	}

	opts := options.Find().
		SetProjection(metaOnly).
		SetSort(bson.D{{Key: "uploadedAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.PageSize))

	files, err := s.findFiles(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	return files, total, nil
}

func (s *MongoStore) findFiles(ctx context.Context, filter any, opts *options.FindOptions) ([]types.FileRecord, error) {
	cur, err := s.files.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr(err, "list files")
	}

	var docs []fileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr(err, "read files")
	}

	out := make([]types.FileRecord, len(docs))
	for i := range docs {
		out[i] = docs[i].record()
	}

	return out, nil
}

// Delete 检查权限后删除；DeletedCount 为 0 说明已被并发删除.
func (s *MongoStore) Delete(ctx context.Context, id string, requester types.Principal) (*types.FileRecord, error) {
	var doc fileDoc

	err := s.files.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(metaOnly)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("file %s not found", id)
		}

		return nil, storeErr(err, "get file record")
	}

	if !requester.CanAccess(doc.Owner) {
		return nil, errs.Forbidden("not allowed to delete file %s", id)
	}

	res, err := s.files.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, storeErr(err, "delete file record")
	}

	if res.DeletedCount == 0 {
		return nil, errs.NotFound("file %s not found", id)
	}

	out := doc.record()

	return &out, nil
}

// ReferencedBlobKeys 查询仍被引用的对象键.
func (s *MongoStore) ReferencedBlobKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	found := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return found, nil
	}

	refs, err := s.files.Distinct(ctx, "blobKey", bson.M{"blobKey": bson.M{"$in": keys}})
	if err != nil {
		return nil, storeErr(err, "lookup blob keys")
	}

	for _, r := range refs {
		if k, ok := r.(string); ok {
			found[k] = true
		}
	}

	return found, nil
}

// Append 写入一条活动日志.
func (s *MongoStore) Append(ctx context.Context, entry types.ActivityLogEntry) error {
	_, err := s.activity.InsertOne(ctx, activityDoc{
		UserID:    entry.UserID,
		Username:  entry.Username,
		Action:    entry.Action,
		Status:    string(entry.Status),
		Timestamp: entry.Timestamp.UTC(),
		Metadata:  entry.Metadata,
	})
	if err != nil {
		return storeErr(err, "append activity")
	}

	return nil
}

// Recent 最新的 limit 条活动日志.
func (s *MongoStore) Recent(ctx context.Context, userID string, limit int) ([]types.ActivityLogEntry, error) {
	filter := bson.M{}
	if userID != "" {
		filter["userId"] = userID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.activity.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr(err, "list activity")
	}

	var docs []activityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr(err, "read activity")
	}

	out := make([]types.ActivityLogEntry, len(docs))
	for i, d := range docs {
		out[i] = types.ActivityLogEntry{
			ID:        d.ID.Hex(),
			UserID:    d.UserID,
			Username:  d.Username,
			Action:    d.Action,
			Status:    types.ActivityStatus(d.Status),
			Timestamp: d.Timestamp.UTC(),
			Metadata:  d.Metadata,
		}
	}

	return out, nil
}

// Touch 插入或更新用户.
func (s *MongoStore) Touch(ctx context.Context, p types.Principal) error {
	ts := now()
	update := bson.M{
		"$set": bson.M{
			"username":   p.DisplayName(),
			"role":       p.Role.String(),
			"lastSeenAt": ts,
		},
		"$setOnInsert": bson.M{"createdAt": ts},
	}

	if _, err := s.users.UpdateByID(ctx, p.UserID, update, options.Update().SetUpsert(true)); err != nil {
		return storeErr(err, "upsert user")
	}

	return nil
}

// List 用户列表，附带各自的文件数.
func (s *MongoStore) List(ctx context.Context) ([]types.User, error) {
	cur, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storeErr(err, "list users")
	}

	var users []userDoc
	if err := cur.All(ctx, &users); err != nil {
		return nil, storeErr(err, "read users")
	}

	agg, err := s.files.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$owner"}, {Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	})
	if err != nil {
		return nil, storeErr(err, "count files per user")
	}

	var counts []struct {
		Owner string `bson:"_id"`
		N     int64  `bson:"n"`
	}
	if err := agg.All(ctx, &counts); err != nil {
		return nil, storeErr(err, "read file counts")
	}

	byOwner := make(map[string]int64, len(counts))
	for _, c := range counts {
		byOwner[c.Owner] = c.N
	}

	out := make([]types.User, len(users))
	for i, u := range users {
		out[i] = types.User{
			ID:         u.ID,
			Username:   u.Username,
			Role:       u.Role,
			CreatedAt:  u.CreatedAt.UTC(),
			LastSeenAt: u.LastSeenAt.UTC(),
			FileCount:  byOwner[u.ID],
		}
	}

	return out, nil
}

func (d *fileDoc) record() types.FileRecord {
	return types.FileRecord{
		ID:          d.ID,
		FileName:    d.FileName,
		Owner:       d.Owner,
		OwnerName:   d.OwnerName,
		UploadedAt:  d.UploadedAt.UTC(),
		SizeBytes:   d.SizeBytes,
		ContentType: d.ContentType,
		SheetName:   d.SheetName,
		Columns:     orEmpty(d.Columns),
		RowCount:    d.RowCount,
		Checksum:    d.Checksum,
		BlobKey:     d.BlobKey,
	}
}
