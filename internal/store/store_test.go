package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	s := openTestStore(t)
	if s == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestSchemaVersion(t *testing.T) {
	s := openTestStore(t)
	var version int
	err := s.db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil {
		t.Fatalf("querying schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("expected schema version %d, got %d", currentSchemaVersion, version)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := t.TempDir() + "/mindcare.db"
	ctx := context.Background()

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if err := s.Write(ctx, KeyJournals, []byte("[]")); err != nil {
		t.Fatalf("writing: %v", err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer s.Close()

	if s.Path() != path {
		t.Errorf("Path() = %s, want %s", s.Path(), path)
	}

	got, ok, err := s.Read(ctx, KeyJournals)
	if err != nil || !ok {
		t.Fatalf("reading after reopen: ok=%v err=%v", ok, err)
	}
	if string(got) != "[]" {
		t.Errorf("expected [] after reopen, got %q", got)
	}
}

// runKVContract exercises the behaviour every backend must share.
func runKVContract(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	// Missing key is absent, not an error.
	v, ok, err := kv.Read(ctx, "missing")
	if err != nil {
		t.Fatalf("reading missing key: %v", err)
	}
	if ok || v != nil {
		t.Errorf("expected absent key, got ok=%v value=%q", ok, v)
	}

	// Write then read.
	if err := kv.Write(ctx, KeyUser, []byte(`{"id":"u1"}`)); err != nil {
		t.Fatalf("writing: %v", err)
	}
	v, ok, err = kv.Read(ctx, KeyUser)
	if err != nil || !ok {
		t.Fatalf("reading written key: ok=%v err=%v", ok, err)
	}
	if string(v) != `{"id":"u1"}` {
		t.Errorf("unexpected value %q", v)
	}

	// Overwrite replaces the whole value.
	if err := kv.Write(ctx, KeyUser, []byte(`{}`)); err != nil {
		t.Fatalf("overwriting: %v", err)
	}
	v, _, _ = kv.Read(ctx, KeyUser)
	if string(v) != `{}` {
		t.Errorf("expected overwritten value, got %q", v)
	}

	// Remove is idempotent.
	if err := kv.Remove(ctx, KeyUser); err != nil {
		t.Fatalf("removing: %v", err)
	}
	if err := kv.Remove(ctx, KeyUser); err != nil {
		t.Fatalf("removing twice: %v", err)
	}
	if _, ok, _ := kv.Read(ctx, KeyUser); ok {
		t.Error("expected key to be gone after remove")
	}
}

func TestSQLiteContract(t *testing.T) {
	runKVContract(t, openTestStore(t))
}

func TestMemoryContract(t *testing.T) {
	runKVContract(t, NewMemory(0))
}

func TestMemoryQuota(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)

	if err := m.Write(ctx, "a", []byte("12345")); err != nil {
		t.Fatalf("writing under quota: %v", err)
	}
	err := m.Write(ctx, "b", []byte("123456"))
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure over quota, got %v", err)
	}
	if _, ok, _ := m.Read(ctx, "b"); ok {
		t.Error("rejected write must not be visible")
	}

	// Replacing an existing key only counts the new size.
	if err := m.Write(ctx, "a", []byte("1234567890")); err != nil {
		t.Errorf("replacing within quota: %v", err)
	}
}

func TestMemoryReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	m.Write(ctx, "k", []byte("abc"))

	v, _, _ := m.Read(ctx, "k")
	v[0] = 'x'

	again, _, _ := m.Read(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated through read: %q", again)
	}
}

func TestRedisContract(t *testing.T) {
	url := os.Getenv("MINDCARE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MINDCARE_TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, err := OpenRedis(ctx, url, "mindcare-test:")
	if err != nil {
		t.Fatalf("opening redis: %v", err)
	}
	defer r.Close()
	runKVContract(t, r)
}

func TestRedisUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	r := NewRedis(client, "")
	defer r.Close()

	if r.prefix != defaultRedisPrefix {
		t.Errorf("expected default prefix, got %q", r.prefix)
	}

	ctx := context.Background()
	if _, _, err := r.Read(ctx, KeyJournals); !errors.Is(err, ErrStorageFailure) {
		t.Errorf("Read: expected ErrStorageFailure, got %v", err)
	}
	if err := r.Write(ctx, KeyJournals, []byte("[]")); !errors.Is(err, ErrStorageFailure) {
		t.Errorf("Write: expected ErrStorageFailure, got %v", err)
	}
}

func TestMongoContract(t *testing.T) {
	uri := os.Getenv("MINDCARE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MINDCARE_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	m, err := OpenMongo(ctx, uri, "mindcare-ai-test")
	if err != nil {
		t.Fatalf("opening mongo: %v", err)
	}
	defer m.Close()
	runKVContract(t, m)
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), Options{Backend: "floppy"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestOpenMemoryBackend(t *testing.T) {
	kv, err := Open(context.Background(), Options{Backend: "Memory"})
	if err != nil {
		t.Fatalf("opening memory backend: %v", err)
	}
	if _, ok := kv.(*Memory); !ok {
		t.Errorf("expected *Memory, got %T", kv)
	}
}

func TestOpenRedisRequiresURL(t *testing.T) {
	if _, err := OpenRedis(context.Background(), "", ""); err == nil {
		t.Error("expected error for empty redis url")
	}
}

type record struct {
	ID        string    `json:"id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

func TestCodecs(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 30, 0, 123, time.UTC)

	for _, name := range []string{"json", "msgpack"} {
		t.Run(name, func(t *testing.T) {
			codec, err := NewCodec(name)
			if err != nil {
				t.Fatalf("NewCodec(%s): %v", name, err)
			}
			if codec.Name() != name {
				t.Errorf("expected codec name %s, got %s", name, codec.Name())
			}

			ctx := context.Background()
			kv := NewMemory(0)
			in := []record{{ID: "a", Score: 7, CreatedAt: created}}
			if err := Put(ctx, kv, codec, KeyJournals, in); err != nil {
				t.Fatalf("Put: %v", err)
			}

			var out []record
			ok, err := Load(ctx, kv, codec, KeyJournals, &out)
			if err != nil || !ok {
				t.Fatalf("Load: ok=%v err=%v", ok, err)
			}
			if len(out) != 1 || out[0].ID != "a" || out[0].Score != 7 || !out[0].CreatedAt.Equal(created) {
				t.Errorf("unexpected decoded records: %+v", out)
			}
		})
	}
}

func TestMsgpackUsesJSONTags(t *testing.T) {
	data, err := MsgpackCodec{}.Marshal(map[string]any{"k": record{ID: "x"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string]map[string]any
	if err := (MsgpackCodec{}).Unmarshal(data, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := generic["k"]["createdAt"]; !ok {
		t.Errorf("expected json tag names in msgpack payload, got %v", generic["k"])
	}
}

func TestLoadCorruptData(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory(0)
	kv.Write(ctx, KeyJournals, []byte("{not json"))

	var out []record
	_, err := Load(ctx, kv, JSONCodec{}, KeyJournals, &out)
	if !errors.Is(err, ErrStorageFailure) {
		t.Errorf("expected ErrStorageFailure for corrupt data, got %v", err)
	}
}

func TestLoadAbsent(t *testing.T) {
	var out []record
	ok, err := Load(context.Background(), NewMemory(0), JSONCodec{}, KeyJournals, &out)
	if err != nil || ok {
		t.Errorf("expected absent without error, got ok=%v err=%v", ok, err)
	}
}

func TestUnknownCodec(t *testing.T) {
	if _, err := NewCodec("xml"); err == nil {
		t.Error("expected error for unknown codec")
	}
}
