package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/deskgrid/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestKeyers(t *testing.T) {
	long := strings.Repeat("x", maxPlainKey+1)
	tests := []struct {
		name  string
		keyer Keyer
		item  string
		label string
	}{
		{"default", NewDefaultKeyer(), "com.example.mailMainAbilityentry", "label:com.example.mailMainAbilityentry"},
		{"scoped", NewScopedKeyer(NewDefaultKeyer(), "user:42:"), "17", "user:42:label:17"},
		{"scoped nil inner", NewScopedKeyer(nil, "p:"), "folder", "p:label:folder"},
		{"long key hashed", NewDefaultKeyer(), long, hashKey("label", long)},
		{"scoped long key", NewScopedKeyer(nil, "tablet:"), long, "tablet:" + hashKey("label", long)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.keyer.LabelKey(tt.item); got != tt.label {
				t.Errorf("LabelKey = %q, want %q", got, tt.label)
			}
		})
	}
}

// cacheContract checks the behavior every backend shares.
func cacheContract(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "label:a", []byte("Mail"), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "label:a")
	if err != nil || !hit || string(data) != "Mail" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Set(ctx, "label:a", []byte("Post"), 0); err != nil {
		t.Fatal(err)
	}
	if data, _, _ := c.Get(ctx, "label:a"); string(data) != "Post" {
		t.Errorf("overwrite = %q", data)
	}
	if err := c.Delete(ctx, "label:a"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "label:a"); hit {
		t.Error("hit after Delete")
	}
	if err := c.Delete(ctx, "label:a"); err != nil {
		t.Errorf("second Delete = %v", err)
	}

	if cl, ok := c.(Clearer); ok {
		_ = c.Set(ctx, "x", []byte("1"), 0)
		_ = c.Set(ctx, "y", []byte("2"), 0)
		if err := cl.Clear(ctx); err != nil {
			t.Fatal(err)
		}
		if _, hit, _ := c.Get(ctx, "x"); hit {
			t.Error("hit after Clear")
		}
	}
}

func TestMemoryCache(t *testing.T) {
	cacheContract(t, NewMemoryCache(8))
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_, _, _ = c.Get(ctx, "a") // b becomes least recent
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, hit, _ := c.Get(ctx, k); !hit {
			t.Errorf("%s missing", k)
		}
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	now = now.Add(30 * time.Second)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Error("entry expired early")
	}
	now = now.Add(time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not dropped, Len = %d", c.Len())
	}
}

func TestMemoryCacheCopiesData(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(1)
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	if data, _, _ := c.Get(ctx, "k"); string(data) != "abc" {
		t.Errorf("stored data aliased caller buffer: %q", data)
	}
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewMemoryCache(1)
	c.Close()
	if _, _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close = %v", err)
	}
	if err := c.Set(context.Background(), "k", nil, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after Close = %v", err)
	}
}

func TestMemoryCacheConcurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				k := fmt.Sprintf("k%d", (g*i)%32)
				_ = c.Set(ctx, k, []byte(k), 0)
				_, _, _ = c.Get(ctx, k)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Errorf("Len = %d exceeds bound", c.Len())
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cacheContract(t, c)
}

func TestFileCacheExpiredAndCorrupt(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_ = c.Set(ctx, "old", []byte("v"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry returned")
	}

	if err := os.MkdirAll(filepath.Dir(c.path("bad")), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("bad"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry = %v, %v", hit, err)
	}
	if _, err := os.Stat(c.path("bad")); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestTiered(t *testing.T) {
	cacheContract(t, NewTiered(
		Tier{Name: "memory", Cache: NewMemoryCache(4)},
		Tier{Name: "null", Cache: NewNullCache()},
	))
}

type recordingHooks struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) add(s string) {
	h.mu.Lock()
	h.events = append(h.events, s)
	h.mu.Unlock()
}

func (h *recordingHooks) OnCacheHit(_ context.Context, tier string)  { h.add("hit:" + tier) }
func (h *recordingHooks) OnCacheMiss(_ context.Context, tier string) { h.add("miss:" + tier) }
func (h *recordingHooks) OnCacheSet(_ context.Context, tier string, _ int) {
	h.add("set:" + tier)
}

func TestTieredBackfill(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fast := NewMemoryCache(4)
	slow, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = slow.Set(ctx, "k", []byte("v"), 0)

	tc := NewTiered(Tier{Name: "memory", Cache: fast}, Tier{Name: "file", Cache: slow}, Tier{Name: "skipped"})
	if got := tc.Tiers(); len(got) != 2 {
		t.Errorf("Tiers = %v", got)
	}
	data, hit, err := tc.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if _, hit, _ := fast.Get(ctx, "k"); !hit {
		t.Error("fast tier not backfilled")
	}
	want := "miss:memory hit:file set:memory"
	if got := strings.Join(hooks.events, " "); got != want {
		t.Errorf("hook events = %q, want %q", got, want)
	}
}

type failingCache struct{ NullCache }

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, ErrNetwork
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error { return ErrNetwork }

func TestTieredFailingTier(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryCache(4)
	tc := NewTiered(Tier{Name: "remote", Cache: &failingCache{}}, Tier{Name: "memory", Cache: mem})

	err := tc.Set(ctx, "k", []byte("v"), 0)
	if !errors.Is(err, ErrNetwork) || !strings.Contains(err.Error(), "remote:") {
		t.Errorf("Set = %v", err)
	}
	if data, hit, err := tc.Get(ctx, "k"); !hit || err != nil || string(data) != "v" {
		t.Errorf("Get past failing tier = %q, %v, %v", data, hit, err)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrClosed) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond

	tests := []struct {
		name      string
		fail      int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, false, 1, false},
		{"permanent error", 5, false, 1, true},
		{"retry once", 1, true, 2, false},
		{"exhausted", 5, true, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.fail {
					if tt.retryable {
						return Retryable(ErrNetwork)
					}
					return ErrClosed
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"miss", redis.Nil, false},
		{"eof", io.EOF, true},
		{"server reply", errors.New("WRONGTYPE Operation against a key"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if IsRetryable(got) != tt.retryable {
				t.Errorf("classify(%v) retryable = %v", tt.err, IsRetryable(got))
			}
			if tt.retryable && !errors.Is(got, ErrNetwork) {
				t.Errorf("classify(%v) = %v, want ErrNetwork", tt.err, got)
			}
		})
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	c := NewRedisCacheFromClient(client, "deskgrid:")
	defer c.Close()

	if _, _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrNetwork) {
		t.Errorf("Get = %v, want network error", err)
	}

	bare := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "")
	defer bare.Close()
	if err := bare.Clear(context.Background()); err == nil {
		t.Error("Clear without prefix should refuse")
	}
}
