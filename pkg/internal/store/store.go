// Package store 持久化文件记录、活动日志与用户目录.
//
// 两种后端：SQLStore（gorm，默认）与 MongoStore.二者满足相同接口，
// 领域服务只依赖接口，由启动代码显式构造后注入.
package store

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"

	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/types"
)

// FileStore 文件记录存储.记录一经创建不可修改.
type FileStore interface {
	// Create 原子地写入元数据与全部行；owner 不存在时返回 NotFound.
	Create(ctx context.Context, in types.NewFileRecord) (*types.FileRecord, error)
	// Get 返回包含行数据的完整记录.
	Get(ctx context.Context, id string) (*types.FileRecord, error)
	// ListByOwner 返回 owner 的全部记录元数据，最新的在前.
	ListByOwner(ctx context.Context, owner string) ([]types.FileRecord, error)
	// ListAll 按文件名或上传者检索，分页返回元数据和总数.
	ListAll(ctx context.Context, q types.FileQuery) ([]types.FileRecord, int64, error)
	// Delete 仅所有者或管理员可删除；并发删除同一记录时只有一个成功，其余返回 NotFound.
	Delete(ctx context.Context, id string, requester types.Principal) (*types.FileRecord, error)
	// ReferencedBlobKeys 返回 keys 中仍被记录引用的对象键.
	ReferencedBlobKeys(ctx context.Context, keys []string) (map[string]bool, error)
}

// ActivityStore 活动日志存储，只追加.
type ActivityStore interface {
	Append(ctx context.Context, entry types.ActivityLogEntry) error
	// Recent 最新的在前；userID 为空表示所有用户.
	Recent(ctx context.Context, userID string, limit int) ([]types.ActivityLogEntry, error)
}

// UserStore 用户目录.
type UserStore interface {
	// Touch 登记用户并刷新最近访问时间，角色以最新一次为准.
	Touch(ctx context.Context, p types.Principal) error
	// List 全部用户及其文件数.
	List(ctx context.Context) ([]types.User, error)
}

// Store 一个后端提供的全部存储.
type Store interface {
	FileStore
	ActivityStore
	UserStore

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ErrOwnerNotRegistered 文件所属用户尚未登记.认证时的登记失败只记日志，
// 所以这是可重试的存储错误而不是 not_found.
var ErrOwnerNotRegistered = errors.New("owner not registered")

// ownerMissing 所属用户缺失时 Create 返回的错误.
func ownerMissing(owner string) error {
	return errs.Store(fmt.Errorf("%w: %q", ErrOwnerNotRegistered, owner), "create file record")
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(crand.Reader, 0)
)

// NewID 生成按时间排序的记录 ID，同一毫秒内单调递增.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), idEntropy).String()
}

// now 统一的时间源，持久化层只保存毫秒精度的 UTC 时间.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// likePattern 转义后的大小写不敏感子串匹配模式，转义字符为 '!'.
func likePattern(q string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

// orEmpty 保证列表响应序列化为 [] 而不是 null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
