package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"daylog/internal/domain"
	"daylog/internal/storage"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) PutObject(_ context.Context, bucket, key, _ string, body io.Reader) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = data
	return nil
}

func (m *memoryStore) ListObjects(_ context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ObjectInfo
	for full, data := range m.objects {
		key, ok := strings.CutPrefix(full, bucket+"/")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryStore) DeletePrefix(_ context.Context, bucket, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for full := range m.objects {
		if strings.HasPrefix(full, bucket+"/"+prefix) {
			delete(m.objects, full)
		}
	}
	return nil
}

func (m *memoryStore) GetObjectURL(_ context.Context, bucket, key string, expires time.Duration) (string, error) {
	return "https://" + bucket + ".example/" + key + "?ttl=" + expires.String(), nil
}

func (m *memoryStore) object(t *testing.T, bucket, key string) []byte {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+key]
	require.True(t, ok, "object %s not stored", key)
	return data
}

func TestExportWritesOwnersActivities(t *testing.T) {
	env := newTestEnv(t, UserOptions{})
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	lat, lng := 35.0, 139.0
	_, err := env.activities.Create(ctx, alice, domain.CreateActivityInput{
		Title: "Temple", Mood: "happy", Category: "personal", Privacy: "private",
		Latitude: &lat, Longitude: &lng,
	})
	require.NoError(t, err)
	env.post(t, alice, "Notes", "public")
	env.post(t, bob, "Not mine", "public")

	store := newMemoryStore()
	exports := NewExportService(env.activities, store, ExportOptions{Bucket: "bucket", KeyPrefix: "/archive/"})
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exports.(*exportService).now = func() time.Time { return fixed }

	export, err := exports.Export(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, 2, export.Count)
	require.Equal(t, fixed, export.CreatedAt)
	require.True(t, strings.HasPrefix(export.Key, "archive/"+strconv.FormatInt(alice.UserID, 10)+"/"), export.Key)
	require.True(t, strings.HasSuffix(export.Key, ".json"))
	require.Contains(t, export.URL, export.Key)
	require.Contains(t, export.URL, "ttl=15m0s")

	var doc exportDocument
	require.NoError(t, json.Unmarshal(store.object(t, "bucket", export.Key), &doc))
	require.Equal(t, alice.UserID, doc.UserID)
	require.Len(t, doc.Activities, 2)
	require.Equal(t, "Notes", doc.Activities[0].Title)
	require.Nil(t, doc.Activities[0].Latitude)
	require.Equal(t, "Temple", doc.Activities[1].Title)
	require.Equal(t, "private", doc.Activities[1].Privacy)
	require.NotNil(t, doc.Activities[1].Latitude)
	require.Equal(t, lat, *doc.Activities[1].Latitude)
	require.Equal(t, lng, *doc.Activities[1].Longitude)
}

func TestExportListAndPurgeAreScopedToViewer(t *testing.T) {
	env := newTestEnv(t, UserOptions{})
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	store := newMemoryStore()
	exports := NewExportService(env.activities, store, ExportOptions{Bucket: "bucket"})

	first, err := exports.Export(ctx, alice)
	require.NoError(t, err)
	require.Zero(t, first.Count)
	_, err = exports.Export(ctx, alice)
	require.NoError(t, err)
	bobExport, err := exports.Export(ctx, bob)
	require.NoError(t, err)

	aliceObjects, err := exports.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceObjects, 2)
	for _, obj := range aliceObjects {
		require.True(t, strings.HasPrefix(obj.Key, "exports/"+strconv.FormatInt(alice.UserID, 10)+"/"), obj.Key)
	}

	require.NoError(t, exports.Purge(ctx, alice))
	aliceObjects, err = exports.List(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, aliceObjects)

	bobObjects, err := exports.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobObjects, 1)
	require.Equal(t, bobExport.Key, bobObjects[0].Key)
}

func TestExportDisabledAndForbidden(t *testing.T) {
	env := newTestEnv(t, UserOptions{})
	ctx := context.Background()
	alice := env.register(t, "alice")

	disabled := NewExportService(env.activities, nil, ExportOptions{Bucket: "bucket"})
	_, err := disabled.Export(ctx, alice)
	require.ErrorIs(t, err, domain.ErrExportDisabled)
	_, err = disabled.List(ctx, alice)
	require.ErrorIs(t, err, domain.ErrExportDisabled)

	noBucket := NewExportService(env.activities, newMemoryStore(), ExportOptions{})
	require.ErrorIs(t, noBucket.Purge(ctx, alice), domain.ErrExportDisabled)

	enabled := NewExportService(env.activities, newMemoryStore(), ExportOptions{Bucket: "bucket"})
	_, err = enabled.Export(ctx, domain.Anonymous())
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestExportPropagatesStoreErrors(t *testing.T) {
	env := newTestEnv(t, UserOptions{})
	alice := env.register(t, "alice")

	store := newMemoryStore()
	store.putErr = errors.New("bucket gone")
	exports := NewExportService(env.activities, store, ExportOptions{Bucket: "bucket"})

	_, err := exports.Export(context.Background(), alice)
	require.ErrorIs(t, err, store.putErr)
}
