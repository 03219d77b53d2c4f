package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/model"
	"github.com/yeisme/exceleasy/pkg/internal/types"
)

// SQLStore 基于 gorm 的存储，支持 PostgreSQL、MySQL 与 SQLite.
type SQLStore struct {
	db *gorm.DB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore 使用已建立的连接创建存储.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate 同步表结构.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return errs.Store(err, "migrate schema")
	}

	return nil
}

// Ping 检查连接.
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Close 关闭连接.
func (s *SQLStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Create 在一个事务里写入记录与行数据.
func (s *SQLStore) Create(ctx context.Context, in types.NewFileRecord) (*types.FileRecord, error) {
	columns := orEmpty(in.Table.Columns)
	rows := orEmpty(in.Table.Rows)

	payload, err := sonic.Marshal(types.Matrix(columns, rows))
	if err != nil {
		return nil, errs.Store(err, "encode rows")
	}

	rec := model.FileRecord{
		ID:          NewID(),
		Owner:       in.Owner,
		FileName:    in.FileName,
		SizeBytes:   in.SizeBytes,
		ContentType: in.ContentType,
		SheetName:   in.Table.Sheet,
		Columns:     datatypes.JSONSlice[string](columns),
		RowCount:    len(rows),
		Checksum:    in.Checksum,
		BlobKey:     in.BlobKey,
		UploadedAt:  now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "username").Where("id = ?", in.Owner).Take(&rec.OwnerUser).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ownerMissing(in.Owner)
			}

			return err
		}

		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return err
		}

		return tx.Create(&model.FilePayload{FileID: rec.ID, Rows: datatypes.JSON(payload)}).Error
	})
	if err != nil {
		return nil, storeErr(err, "create file record")
	}

	out := toFileRecord(&rec)
	out.Rows = rows

	return &out, nil
}

// Get 按 ID 读取完整记录.
func (s *SQLStore) Get(ctx context.Context, id string) (*types.FileRecord, error) {
	var rec model.FileRecord

	err := s.db.WithContext(ctx).
		Preload("Payload").
		Preload("OwnerUser").
		Where("id = ?", id).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("file %s not found", id)
		}

		return nil, errs.Store(err, "get file record")
	}

	out := toFileRecord(&rec)
	out.Rows = []types.Row{}

	if rec.Payload != nil && len(rec.Payload.Rows) > 0 {
		var matrix [][]types.TaggedCell
		if err := sonic.Unmarshal(rec.Payload.Rows, &matrix); err != nil {
			return nil, errs.Store(err, "decode rows")
		}

		out.Rows = types.RowsFromMatrix(out.Columns, matrix)
	}

	return &out, nil
}

// ListByOwner 按上传时间倒序返回元数据.
func (s *SQLStore) ListByOwner(ctx context.Context, owner string) ([]types.FileRecord, error) {
	var recs []model.FileRecord

	err := s.db.WithContext(ctx).
		Preload("OwnerUser").
		Where("owner = ?", owner).
		Order("uploaded_at DESC, id DESC").
		Find(&recs).Error
	if err != nil {
		return nil, errs.Store(err, "list files by owner")
	}

	return toFileRecords(recs), nil
}

// ListAll 管理员视图：文件名、所有者 ID 或用户名的子串检索.
func (s *SQLStore) ListAll(ctx context.Context, q types.FileQuery) ([]types.FileRecord, int64, error) {
	q = q.Normalize()

	filtered := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&model.FileRecord{})
		if q.Q == "" {
			return tx
		}

		p := likePattern(q.Q)

		return tx.Joins("LEFT JOIN users ON users.id = file_records.owner").
			Where("LOWER(file_records.file_name) LIKE ? ESCAPE '!' OR LOWER(file_records.owner) LIKE ? ESCAPE '!' OR LOWER(users.username) LIKE ? ESCAPE '!'", p, p, p)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, errs.Store(err, "count files")
	}

	var recs []model.FileRecord

	err := filtered().
		Preload("OwnerUser").
		Order("file_records.uploaded_at DESC, file_records.id DESC").
		Offset(q.Offset()).
		Limit(q.PageSize).
		Find(&recs).Error
	if err != nil {
		return nil, 0, errs.Store(err, "list files")
	}

	return toFileRecords(recs), total, nil
}

// Delete 删除记录与行数据，返回被删除记录的元数据.
func (s *SQLStore) Delete(ctx context.Context, id string, requester types.Principal) (*types.FileRecord, error) {
	var rec model.FileRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("OwnerUser").Where("id = ?", id).Take(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("file %s not found", id)
			}

			return err
		}

		if !requester.CanAccess(rec.Owner) {
			return errs.Forbidden("not allowed to delete file %s", id)
		}

		if err := tx.Where("file_id = ?", id).Delete(&model.FilePayload{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.FileRecord{})
		if res.Error != nil {
			return res.Error
		}

		// 另一个事务已经删除
		if res.RowsAffected == 0 {
			return errs.NotFound("file %s not found", id)
		}

		return nil
	})
	if err != nil {
		return nil, storeErr(err, "delete file record")
	}

	out := toFileRecord(&rec)

	return &out, nil
}

// ReferencedBlobKeys 查询仍被引用的对象键.
func (s *SQLStore) ReferencedBlobKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	found := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return found, nil
	}

	var refs []string

	err := s.db.WithContext(ctx).
		Model(&model.FileRecord{}).
		Where("blob_key IN ?", keys).
		Pluck("blob_key", &refs).Error
	if err != nil {
		return nil, errs.Store(err, "lookup blob keys")
	}

	for _, k := range refs {
		found[k] = true
	}

	return found, nil
}

// Append 写入一条活动日志.
func (s *SQLStore) Append(ctx context.Context, entry types.ActivityLogEntry) error {
	row := model.Activity{
		UserID:    entry.UserID,
		Username:  entry.Username,
		Action:    entry.Action,
		Status:    string(entry.Status),
		Timestamp: entry.Timestamp.UTC(),
	}

	if len(entry.Metadata) > 0 {
		row.Metadata = make(datatypes.JSONMap, len(entry.Metadata))
		for k, v := range entry.Metadata {
			row.Metadata[k] = v
		}
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errs.Store(err, "append activity")
	}

	return nil
}

// Recent 最新的 limit 条活动日志.
func (s *SQLStore) Recent(ctx context.Context, userID string, limit int) ([]types.ActivityLogEntry, error) {
	tx := s.db.WithContext(ctx).Model(&model.Activity{})
	if userID != "" {
		tx = tx.Where("user_id = ?", userID)
	}

	var rows []model.Activity
	// timestamp 在部分方言中是关键字，交给 gorm 加引号
	newestFirst := clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "timestamp"}, Desc: true},
		{Column: clause.Column{Name: "id"}, Desc: true},
	}}

	if err := tx.Order(newestFirst).Limit(limit).Find(&rows).Error; err != nil {
		return nil, errs.Store(err, "list activity")
	}

	out := make([]types.ActivityLogEntry, len(rows))
	for i, r := range rows {
		out[i] = types.ActivityLogEntry{
			ID:        fmt.Sprint(r.ID),
			UserID:    r.UserID,
			Username:  r.Username,
			Action:    r.Action,
			Status:    types.ActivityStatus(r.Status),
			Timestamp: r.Timestamp.UTC(),
			Metadata:  stringMap(r.Metadata),
		}
	}

	return out, nil
}

// Touch 插入或更新用户.
func (s *SQLStore) Touch(ctx context.Context, p types.Principal) error {
	ts := now()
	u := model.User{
		ID:         p.UserID,
		Username:   p.DisplayName(),
		Role:       p.Role.String(),
		CreatedAt:  ts,
		LastSeenAt: ts,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "role", "last_seen_at"}),
	}).Create(&u).Error
	if err != nil {
		return errs.Store(err, "upsert user")
	}

	return nil
}

// List 用户列表，附带各自的文件数.
func (s *SQLStore) List(ctx context.Context) ([]types.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&users).Error; err != nil {
		return nil, errs.Store(err, "list users")
	}

	type ownerCount struct {
		Owner string
		N     int64
	}

	var counts []ownerCount

	err := s.db.WithContext(ctx).
		Model(&model.FileRecord{}).
		Select("owner, COUNT(*) AS n").
		Group("owner").
		Scan(&counts).Error
	if err != nil {
		return nil, errs.Store(err, "count files per user")
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

func toFileRecord(m *model.FileRecord) types.FileRecord {
	return types.FileRecord{
		ID:          m.ID,
		FileName:    m.FileName,
		Owner:       m.Owner,
		OwnerName:   m.OwnerUser.Username,
		UploadedAt:  m.UploadedAt.UTC(),
		SizeBytes:   m.SizeBytes,
		ContentType: m.ContentType,
		SheetName:   m.SheetName,
		Columns:     orEmpty([]string(m.Columns)),
		RowCount:    m.RowCount,
		Checksum:    m.Checksum,
		BlobKey:     m.BlobKey,
	}
}

func toFileRecords(recs []model.FileRecord) []types.FileRecord {
	out := make([]types.FileRecord, len(recs))
	for i := range recs {
		out[i] = toFileRecord(&recs[i])
	}

	return out
}

func stringMap(m datatypes.JSONMap) map[string]string {
	if len(m) == 0 {
		return nil
	}

	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}

	return out
}

// storeErr 保留已分类的领域错误和上下文取消，其余归为存储错误.
func storeErr(err error, op string) error {
	var e *errs.Error
	if errors.As(err, &e) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return errs.Store(err, op)
}
