package store_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/store"
	"github.com/yeisme/exceleasy/pkg/internal/types"
)

var (
	alice = types.Principal{UserID: "alice@example.com", Username: "Alice", Role: types.RoleUser}
	bob   = types.Principal{UserID: "bob@example.com", Username: "Bob", Role: types.RoleUser}
	root  = types.Principal{UserID: "root@example.com", Username: "root", Role: types.RoleAdmin}
)

func newSQLStore(t *testing.T) store.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 单连接让并发事务串行执行
	sqlDB.SetMaxOpenConns(1)

	s := store.NewSQLStore(db)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	return s
}

// Optional: enable with ENABLE_MONGO_TEST=1 and MONGO_URI set (default mongodb://127.0.0.1:27017).
func newMongoStore(t *testing.T) store.Store {
	t.Helper()

	if os.Getenv("ENABLE_MONGO_TEST") == "" {
		t.Skip("set ENABLE_MONGO_TEST=1 to enable")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://127.0.0.1:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("mongo not available: %v", err)
	}

	dbName := fmt.Sprintf("exceleasy_test_%d", time.Now().UnixNano())
	s := store.NewMongoStore(client, dbName)
	require.NoError(t, s.Migrate(ctx))

	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = s.Close(context.Background())
	})

	return s
}

func forEachStore(t *testing.T, fn func(t *testing.T, s store.Store)) {
	t.Run("sql", func(t *testing.T) { fn(t, newSQLStore(t)) })
	t.Run("mongo", func(t *testing.T) { fn(t, newMongoStore(t)) })
}

func touch(t *testing.T, s store.Store, ps ...types.Principal) {
	t.Helper()

	for _, p := range ps {
		require.NoError(t, s.Touch(context.Background(), p))
	}
}

func salesTable() types.Table {
	return types.Table{
		Sheet:   "Sheet1",
		Columns: []string{"Region", "Total"},
		Rows:    []types.Row{{"Region": types.StringCell("East"), "Total": types.NumberCell(100)}},
	}
}

func create(t *testing.T, s store.Store, owner types.Principal, name string, table types.Table) *types.FileRecord {
	t.Helper()

	rec, err := s.Create(context.Background(), types.NewFileRecord{
		Owner:       owner.UserID,
		FileName:    name,
		SizeBytes:   1024,
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Checksum:    "abc",
		Table:       table,
	})
	require.NoError(t, err)

	return rec
}

func TestCreateRequiresOwner(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		_, err := s.Create(context.Background(), types.NewFileRecord{Owner: "ghost", FileName: "x.xlsx"})
		require.ErrorIs(t, err, store.ErrOwnerNotRegistered)
		assert.ErrorIs(t, err, errs.ErrStore)
		assert.True(t, errs.IsRetryable(err))

		files, total, err := s.ListAll(context.Background(), types.FileQuery{})
		require.NoError(t, err)
		assert.Empty(t, files)
		assert.Zero(t, total)
	})
}

func TestRoundTripPreservesRows(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		touch(t, s, alice)

		day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
		table := types.Table{
			Sheet:   "Data",
			Columns: []string{"Code", "Qty", "When", "__EMPTY"},
			Rows: []types.Row{
				{"Code": types.StringCell("00042"), "Qty": types.NumberCell(1.5), "When": types.DateCell(day), "__EMPTY": types.StringCell("")},
				{"Code": types.StringCell("TRUE"), "Qty": types.NumberCell(-7), "When": types.StringCell("n/a"), "__EMPTY": types.StringCell("x")},
			},
		}

		created := create(t, s, alice, "data.xlsx", table)
		assert.Len(t, created.ID, 26)
		assert.Equal(t, 2, created.RowCount)
		assert.Equal(t, "Alice", created.OwnerName)

		got, err := s.Get(context.Background(), created.ID)
		require.NoError(t, err)

		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "data.xlsx", got.FileName)
		assert.Equal(t, alice.UserID, got.Owner)
		assert.Equal(t, "Data", got.SheetName)
		assert.Equal(t, table.Columns, got.Columns)
		assert.True(t, created.UploadedAt.Equal(got.UploadedAt))
		require.Len(t, got.Rows, 2)

		for i := range table.Rows {
			for _, col := range table.Columns {
				want, have := table.Rows[i][col], got.Rows[i][col]
				assert.Equal(t, want.Kind, have.Kind, "row %d col %s", i, col)
				assert.Equal(t, want.Text(), have.Text(), "row %d col %s", i, col)
			}
		}
	})
}

func TestEmptyTableStoresZeroRows(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		touch(t, s, alice)

		rec := create(t, s, alice, "empty.xlsx", types.Table{Sheet: "Sheet1"})

		got, err := s.Get(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.NotNil(t, got.Rows)
		assert.Empty(t, got.Rows)
		assert.Empty(t, got.Columns)
		assert.Zero(t, got.RowCount)
	})
}

func TestListByOwner(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		touch(t, s, alice, bob)

		first := create(t, s, alice, "a1.xlsx", salesTable())
		second := create(t, s, alice, "a2.xlsx", salesTable())
		create(t, s, bob, "b1.xlsx", salesTable())

		files, err := s.ListByOwner(context.Background(), alice.UserID)
		require.NoError(t, err)
		require.Len(t, files, 2)

		assert.Equal(t, second.ID, files[0].ID, "newest first")
		assert.Equal(t, first.ID, files[1].ID)

		for _, f := range files {
			assert.Equal(t, alice.UserID, f.Owner)
			assert.Nil(t, f.Rows, "listing carries metadata only")
		}

		none, err := s.ListByOwner(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestListAllSearchAndPaging(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		touch(t, s, alice, bob)

		create(t, s, alice, "Sales_2024.xlsx", salesTable())
		create(t, s, alice, "budget.xls", salesTable())
		create(t, s, bob, "inventory.xlsx", salesTable())
		create(t, s, bob, "100%.xlsx", salesTable())

		ctx := context.Background()

		all, total, err := s.ListAll(ctx, types.FileQuery{})
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		assert.Len(t, all, 4)

		byName, total, err := s.ListAll(ctx, types.FileQuery{Q: "sales"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, byName, 1)
		assert.Equal(t, "Sales_2024.xlsx", byName[0].FileName)

		byUser, total, err := s.ListAll(ctx, types.FileQuery{Q: "BOB"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, byUser, 2)

		literal, _, err := s.ListAll(ctx, types.FileQuery{Q: "0%"})
		require.NoError(t, err)
		require.Len(t, literal, 1, "wildcards in the query are literal")
		assert.Equal(t, "100%.xlsx", literal[0].FileName)

		underscore, _, err := s.ListAll(ctx, types.FileQuery{Q: "s_2"})
		require.NoError(t, err)
		assert.Len(t, underscore, 1)

		page2, total, err := s.ListAll(ctx, types.FileQuery{Page: 2, PageSize: 3})
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		assert.Len(t, page2, 1)
	})
}

func TestDeleteOwnership(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		touch(t, s, alice, bob, root)
		ctx := context.Background()

		rec := create(t, s, alice, "sales.xlsx", salesTable())

		_, err := s.Delete(ctx, rec.ID, bob)
		require.ErrorIs(t, err, errs.ErrForbidden)

		_, err = s.Get(ctx, rec.ID)
		require.NoError(t, err, "forbidden delete leaves the record intact")

		deleted, err := s.Delete(ctx, rec.ID, alice)
		require.NoError(t, err)
		assert.Equal(t, "sales.xlsx", deleted.FileName)

		_, err = s.Delete(ctx, rec.ID, alice)
		require.ErrorIs(t, err, errs.ErrNotFound)

		_, err = s.Get(ctx, rec.ID)
		require.ErrorIs(t, err, errs.ErrNotFound)

		other := create(t, s, bob, "b.xlsx", salesTable())
		_, err = s.Delete(ctx, other.ID, root)
		require.NoError(t, err, "admin deletes any record")
	})
}

func TestConcurrentDeleteExactlyOneSucceeds(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		touch(t, s, alice)
		rec := create(t, s, alice, "race.xlsx", salesTable())

		const n = 4

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			ok       int
			notFound int
		)

		for range n {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := s.Delete(context.Background(), rec.ID, alice)

				mu.Lock()
				defer mu.Unlock()

				switch {
				case err == nil:
					ok++
				case errs.KindOf(err) == errs.KindNotFound:
					notFound++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, 1, ok)
		assert.Equal(t, n-1, notFound)
	})
}

func TestActivityNewestFirst(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		touch(t, s, alice)
		ctx := context.Background()
		base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

		entries := []types.ActivityLogEntry{
			{UserID: "other@example.com", Username: "Alice", Action: "uploaded file theirs.xlsx", Status: types.StatusSuccess, Timestamp: base.Add(-time.Second)},
			{UserID: alice.UserID, Username: "Alice", Action: "uploaded file a.xlsx", Status: types.StatusSuccess, Timestamp: base},
			{UserID: bob.UserID, Username: "Bob", Action: "Please upload a valid Excel file (.xls or .xlsx)", Status: types.StatusError, Timestamp: base.Add(time.Second)},
			{UserID: alice.UserID, Username: "Alice", Action: "deleted file a.xlsx", Status: types.StatusSuccess, Timestamp: base.Add(2 * time.Second), Metadata: map[string]string{"fileId": "01X"}},
		}
		for _, e := range entries {
			require.NoError(t, s.Append(ctx, e))
		}

		all, err := s.Recent(ctx, "", 10)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "deleted file a.xlsx", all[0].Action)
		assert.Equal(t, alice.UserID, all[0].UserID)
		assert.Equal(t, "01X", all[0].Metadata["fileId"])
		assert.Equal(t, "uploaded file a.xlsx", all[2].Action)

		limited, err := s.Recent(ctx, "", 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		// 同名的另一个用户不在 alice 的日志里
		mine, err := s.Recent(ctx, alice.UserID, 10)
		require.NoError(t, err)
		require.Len(t, mine, 2)

		for _, e := range mine {
			assert.Equal(t, alice.UserID, e.UserID)
		}

		// 删除文件不影响已有日志
		rec := create(t, s, alice, "a.xlsx", salesTable())
		_, err = s.Delete(ctx, rec.ID, alice)
		require.NoError(t, err)

		after, err := s.Recent(ctx, "", 10)
		require.NoError(t, err)
		assert.Equal(t, all, after)
	})
}

func TestUsersDirectory(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		touch(t, s, alice, bob)

		create(t, s, alice, "a.xlsx", salesTable())
		create(t, s, alice, "b.xlsx", salesTable())

		promoted := alice
		promoted.Role = types.RoleAdmin
		touch(t, s, promoted)

		users, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)

		byID := map[string]types.User{}
		for _, u := range users {
			byID[u.ID] = u
		}

		assert.Equal(t, "admin", byID[alice.UserID].Role)
		assert.EqualValues(t, 2, byID[alice.UserID].FileCount)
		assert.EqualValues(t, 0, byID[bob.UserID].FileCount)
		assert.False(t, byID[alice.UserID].LastSeenAt.Before(byID[alice.UserID].CreatedAt))
	})
}

func TestReferencedBlobKeys(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		touch(t, s, alice)
		ctx := context.Background()

		_, err := s.Create(ctx, types.NewFileRecord{
			Owner: alice.UserID, FileName: "kept.xlsx", BlobKey: "uploads/kept", Table: salesTable(),
		})
		require.NoError(t, err)

		found, err := s.ReferencedBlobKeys(ctx, []string{"uploads/kept", "uploads/orphan"})
		require.NoError(t, err)
		assert.True(t, found["uploads/kept"])
		assert.False(t, found["uploads/orphan"])

		empty, err := s.ReferencedBlobKeys(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}
