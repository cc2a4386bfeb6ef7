package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/interfaces"
	"github.com/ternarybob/lexia/internal/models"
)

type memKV struct {
	values map[string]string
}

func newMemKV() *memKV {
	return &memKV{values: make(map[string]string)}
}

func (s *memKV) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", interfaces.ErrKeyNotFound
	}
	return v, nil
}

func (s *memKV) Set(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func (s *memKV) Delete(_ context.Context, key string) error {
	if _, ok := s.values[key]; !ok {
		return interfaces.ErrKeyNotFound
	}
	delete(s.values, key)
	return nil
}

func (s *memKV) List(context.Context) ([]interfaces.KeyValuePair, error) {
	var pairs []interfaces.KeyValuePair
	for k, v := range s.values {
		pairs = append(pairs, interfaces.KeyValuePair{Key: k, Value: v, CreatedAt: time.Now(), UpdatedAt: time.Now()})
	}
	return pairs, nil
}

func TestGetReturnsDefaultsWhenUnset(t *testing.T) {
	s := NewService(newMemKV(), arbor.NewLogger())

	got, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), got)
}

func TestUpdateRoundTrip(t *testing.T) {
	s := NewService(newMemKV(), arbor.NewLogger())
	ctx := context.Background()

	color := "#fde68a"
	want := &models.Settings{
		ExplainerEnabled: true,
		BionicEnabled:    true,
		OverlayColor:     &color,
		OverlayIntensity: 40,
		Typography: models.Typography{
			Font:          "OpenDyslexic",
			LetterSpacing: 1.5,
			WordSpacing:   3,
			LineHeight:    "1.8",
		},
	}

	require.NoError(t, s.Update(ctx, want))

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUpdateRejectsInvalidIntensity(t *testing.T) {
	s := NewService(newMemKV(), arbor.NewLogger())

	bad := models.DefaultSettings()
	bad.OverlayIntensity = 150
	assert.Error(t, s.Update(context.Background(), bad))

	bad.OverlayIntensity = -1
	assert.Error(t, s.Update(context.Background(), bad))
}

func TestCorruptSnapshotFallsBackToDefaults(t *testing.T) {
	kv := newMemKV()
	require.NoError(t, kv.Set(context.Background(), "settings", "{not json"))

	s := NewService(kv, arbor.NewLogger())
	got, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), got)
}

func TestSubscribersNotifiedOnUpdate(t *testing.T) {
	s := NewService(newMemKV(), arbor.NewLogger())

	var seen []*models.Settings
	s.Subscribe(func(settings *models.Settings) {
		seen = append(seen, settings)
	})

	updated := models.DefaultSettings()
	updated.BionicEnabled = true
	require.NoError(t, s.Update(context.Background(), updated))

	require.Len(t, seen, 1)
	assert.True(t, seen[0].BionicEnabled)
}
