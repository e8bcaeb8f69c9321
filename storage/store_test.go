package storage

import (
	"context"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"github.com/baldhumanity/evonet/neat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(t *testing.T, weight float64) neat.Snapshot {
	t.Helper()
	g, err := neat.NewGenome(neat.DefaultGenomeOptions(2, 1), neat.NewTracker())
	require.NoError(t, err)
	require.NoError(t, g.AddConnection(0, 2, weight))
	require.NoError(t, g.AddNode(0, 2))
	return g.Snapshot()
}

func newStores(t *testing.T) map[string]Store {
	dir := t.TempDir()
	badgerStore := NewBadgerStore(filepath.Join(dir, "badger"))
	badgerStore.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	inMemoryBadger := NewBadgerStore("")
	inMemoryBadger.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return map[string]Store{
		"memory":        NewMemoryStore(),
		"sqlite":        NewSQLiteStore(filepath.Join(dir, "runs.db")),
		"badger":        badgerStore,
		"badger-memory": inMemoryBadger,
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Init(ctx))
			defer func() { assert.NoError(t, store.Close()) }()

			_, ok, err := store.GetBest(ctx, "run-a", 1)
			require.NoError(t, err)
			assert.False(t, ok)

			for gen := 12; gen >= 1; gen -= 11 {
				require.NoError(t, store.SaveBest(ctx, BestRecord{
					RunID:      "run-a",
					Generation: gen,
					Error:      float64(gen) / 100,
					Genome:     testSnapshot(t, float64(gen)/20),
				}))
			}
			require.NoError(t, store.SaveBest(ctx, BestRecord{RunID: "run-b", Generation: 1, Error: math.Inf(1), Genome: testSnapshot(t, 0.1)}))

			got, ok, err := store.GetBest(ctx, "run-a", 12)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, 0.12, got.Error)
			assert.True(t, testSnapshot(t, 0.6).Equal(got.Genome))

			list, err := store.ListBest(ctx, "run-a")
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, 1, list[0].Generation)
			assert.Equal(t, 12, list[1].Generation)

			list, err = store.ListBest(ctx, "run-b")
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.True(t, math.IsInf(list[0].Error, 1))

			list, err = store.ListBest(ctx, "missing")
			require.NoError(t, err)
			assert.Empty(t, list)

			_, ok, err = store.GetHistory(ctx, "run-a")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.SaveHistory(ctx, "run-a", []float64{0.5, 0.25}))
			require.NoError(t, store.SaveHistory(ctx, "run-a", []float64{0.5, 0.25, 0.125, math.Inf(1)}))
			history, ok, err := store.GetHistory(ctx, "run-a")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []float64{0.5, 0.25, 0.125, math.Inf(1)}, history)
		})
	}
}

func TestStoresRequireInit(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.SaveBest(ctx, BestRecord{RunID: "r"})
			assert.ErrorIs(t, err, ErrNotInitialized)
			_, _, err = store.GetHistory(ctx, "r")
			assert.ErrorIs(t, err, ErrNotInitialized)
			assert.NoError(t, store.Close())
		})
	}
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	assert.Error(t, NewSQLiteStore("").Init(context.Background()))
}

func TestBadgerStorePersists(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "badger")
	open := func() *BadgerStore {
		s := NewBadgerStore(dir)
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		require.NoError(t, s.Init(ctx))
		return s
	}

	s := open()
	require.NoError(t, s.SaveHistory(ctx, "run", []float64{1, 0.5}))
	require.NoError(t, s.Close())

	s = open()
	defer s.Close()
	history, ok, err := s.GetHistory(ctx, "run")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0.5}, history)
}

func TestNewStore(t *testing.T) {
	for kind, want := range map[string]Store{
		"":       &MemoryStore{},
		"memory": &MemoryStore{},
		"sqlite": &SQLiteStore{},
		"badger": &BadgerStore{},
	} {
		store, err := NewStore(kind, "")
		require.NoError(t, err)
		assert.IsType(t, want, store)
	}
	_, err := NewStore("postgres", "")
	assert.Error(t, err)
}

func TestCodecVersionMismatch(t *testing.T) {
	_, err := DecodeBest([]byte(`{"schema_version":2,"codec_version":1}`))
	assert.ErrorIs(t, err, ErrVersionMismatch)
	_, err = DecodeHistory([]byte(`{"schema_version":1,"codec_version":9}`))
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestBestFromPopulation(t *testing.T) {
	cfg := neat.DefaultConfig()
	cfg.Population.Size = 10
	cfg.Genome.NumInputs = 1
	cfg.Genome.NumOutputs = 1
	p, err := neat.NewPopulation(cfg)
	require.NoError(t, err)
	p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := p.Evolve([][]float64{{0}, {1}}, [][]float64{{1}, {0}})
	require.NoError(t, err)

	r := BestFromPopulation(p)
	assert.Equal(t, p.ID, r.RunID)
	assert.Equal(t, 1, r.Generation)
	assert.Equal(t, e, r.Error)
	assert.True(t, p.Best.Snapshot().Equal(r.Genome))
}
