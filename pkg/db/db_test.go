package db_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matt-steen/attendance-tracker/pkg/db"
	"github.com/matt-steen/attendance-tracker/pkg/ledger"
	"github.com/stretchr/testify/assert"
)

func getDB(t *testing.T, assert *assert.Assertions) *db.Database {
	t.Helper()

	database, err := db.NewDatabase(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"))
	assert.NotNil(database)
	assert.Nil(err)

	t.Cleanup(func() {
		database.Close()
	})

	return database
}

func TestNewDatabaseBadFile(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	database, err := db.NewDatabase(context.Background(), "/alwfkjasfd/asdflkjdsal.sqlite")
	assert.Nil(database)
	assert.NotNil(err)
	assert.Contains(err.Error(), "error running base sql: unable to open database file")
}

func TestNewDatabaseIdempotent(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	filename := filepath.Join(t.TempDir(), "test.sqlite")

	database, err := db.NewDatabase(ctx, filename)
	assert.NotNil(database)
	assert.Nil(err)

	err = database.Set(ctx, "k", []byte("v"))
	assert.Nil(err)

	err = database.Close()
	assert.Nil(err)

	database2, err := db.NewDatabase(ctx, filename)
	assert.NotNil(database2)
	assert.Nil(err)

	defer database2.Close()

	value, err := database2.Get(ctx, "k")
	assert.Nil(err)
	assert.Equal([]byte("v"), value)
}

func TestGetMissingKey(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	database := getDB(t, assert)

	value, err := database.Get(context.Background(), "nope")
	assert.Nil(value)
	assert.ErrorIs(err, ledger.ErrKeyNotFound)
	assert.Equal("error loading key nope: key not found", err.Error())
}

func TestSetOverwrites(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	database := getDB(t, assert)

	assert.Nil(database.Set(ctx, "k", []byte("first")))
	assert.Nil(database.Set(ctx, "k", []byte("second")))

	value, err := database.Get(ctx, "k")
	assert.Nil(err)
	assert.Equal("second", string(value))

	keys, err := database.Keys(ctx)
	assert.Nil(err)
	assert.Equal([]string{"k"}, keys)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	database := getDB(t, assert)

	assert.Nil(database.Set(ctx, "a", []byte("1")))
	assert.Nil(database.Set(ctx, "b", []byte("2")))
	assert.Nil(database.Delete(ctx, "a"))
	assert.Nil(database.Delete(ctx, "never-set"))

	keys, err := database.Keys(ctx)
	assert.Nil(err)
	assert.Equal([]string{"b"}, keys)
}

// build some state, close everything, and reopen it from the same file.
func TestLedgerRoundTrip(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	filename := filepath.Join(t.TempDir(), "ledger.sqlite")

	database, err := db.NewDatabase(ctx, filename)
	assert.Nil(err)

	store, err := ledger.Open(ctx, database)
	assert.Nil(err)

	store.AddRegister(0, "Semester 1")
	store.AddCard(0, ledger.NewCard(store.NextCardID(0), "Maths", 75, "red"))
	store.AddCard(0, ledger.NewCard(store.NextCardID(0), "Physics", 80, "blue"))
	store.MarkPresent(0, 0)
	store.MarkAbsent(0, 0)
	store.MarkPresent(0, 1)
	store.SetRegisterCardSize(0, ledger.CardSizeMini)

	assert.Nil(store.Close(ctx))
	assert.Nil(database.Close())

	database, err = db.NewDatabase(ctx, filename)
	assert.Nil(err)

	defer database.Close()

	reopened, err := ledger.Open(ctx, database)
	assert.Nil(err)

	reg, ok := reopened.Register(0)
	assert.True(ok)
	assert.Equal("Semester 1", reg.Name)
	assert.Equal(ledger.CardSizeMini, reg.CardSize)
	assert.Len(reg.Cards, 2)
	assert.Equal(1, reg.Cards[0].Present)
	assert.Equal(2, reg.Cards[0].Total)
	assert.Len(reg.Cards[0].Markings, 2)
	assert.Equal(2, reg.Cards[0].Markings[1].ID)
	assert.False(reg.Cards[0].Markings[1].IsPresent)
	assert.Equal("Physics", reg.Cards[1].Title)
	assert.NotNil(reopened.UpdatedAt())
}

func TestMemory(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()

	mem := db.NewMemory()

	_, err := mem.Get(ctx, "k")
	assert.ErrorIs(err, ledger.ErrKeyNotFound)

	value := []byte("abc")
	assert.Nil(mem.Set(ctx, "k", value))

	// the stored value must not alias the caller's slice
	value[0] = 'z'

	got, err := mem.Get(ctx, "k")
	assert.Nil(err)
	assert.Equal("abc", string(got))

	assert.Nil(mem.Delete(ctx, "k"))

	_, err = mem.Get(ctx, "k")
	assert.ErrorIs(err, ledger.ErrKeyNotFound)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("ATTENDANCE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ATTENDANCE_TEST_REDIS_ADDR not set")
	}

	assert := assert.New(t)
	ctx := context.Background()

	r := db.NewRedis(addr, "attendance-test:")
	defer r.Close()

	assert.Nil(r.Ping(ctx))
	assert.Nil(r.Delete(ctx, "k"))

	_, err := r.Get(ctx, "k")
	assert.ErrorIs(err, ledger.ErrKeyNotFound)

	assert.Nil(r.Set(ctx, "k", []byte("v")))

	value, err := r.Get(ctx, "k")
	assert.Nil(err)
	assert.Equal("v", string(value))

	assert.Nil(r.Delete(ctx, "k"))
}
