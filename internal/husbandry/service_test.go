package husbandry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/herptrack/herptrack/internal/model"
	"github.com/herptrack/herptrack/internal/schedule"
)

type fakeRecordStore struct {
	enclosures map[string]*model.Enclosure
	animals    map[string]*model.Animal
	weights    []model.WeightEntry
	lengths    []model.LengthEntry
	sheds      []model.ShedRecord
	visits     []model.VetVisit
	brumations map[string]*model.BrumationCycle
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{
		enclosures: make(map[string]*model.Enclosure),
		animals:    make(map[string]*model.Animal),
		brumations: make(map[string]*model.BrumationCycle),
	}
}

func (f *fakeRecordStore) CreateEnclosure(ctx context.Context, e *model.Enclosure) error {
	f.enclosures[e.ID] = e
	return nil
}

func (f *fakeRecordStore) GetEnclosure(ctx context.Context, id string) (*model.Enclosure, error) {
	return f.enclosures[id], nil
}

func (f *fakeRecordStore) CreateAnimal(ctx context.Context, a *model.Animal) error {
	f.animals[a.ID] = a
	return nil
}

func (f *fakeRecordStore) GetAnimal(ctx context.Context, id string) (*model.Animal, error) {
	return f.animals[id], nil
}

func (f *fakeRecordStore) ListAnimals(ctx context.Context, enclosureID string) ([]model.Animal, error) {
	var out []model.Animal
	for _, a := range f.animals {
		if enclosureID == "" || a.EnclosureID == enclosureID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeRecordStore) AppendWeight(ctx context.Context, w *model.WeightEntry) error {
	f.weights = append(f.weights, *w)
	return nil
}

func (f *fakeRecordStore) ListWeights(ctx context.Context, animalID string) ([]model.WeightEntry, error) {
	var out []model.WeightEntry
	for _, w := range f.weights {
		if w.AnimalID == animalID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeRecordStore) AppendLength(ctx context.Context, l *model.LengthEntry) error {
	f.lengths = append(f.lengths, *l)
	return nil
}

func (f *fakeRecordStore) AppendShed(ctx context.Context, r *model.ShedRecord) error {
	f.sheds = append(f.sheds, *r)
	return nil
}

func (f *fakeRecordStore) AppendVetVisit(ctx context.Context, v *model.VetVisit) error {
	f.visits = append(f.visits, *v)
	return nil
}

func (f *fakeRecordStore) StartBrumation(ctx context.Context, b *model.BrumationCycle) error {
	f.brumations[b.ID] = b
	return nil
}

func (f *fakeRecordStore) EndBrumation(ctx context.Context, id string, endedAt time.Time) error {
	cycle, ok := f.brumations[id]
	if !ok || cycle.EndedAt != nil {
		return fmt.Errorf("open brumation cycle not found: %s", id)
	}
	cycle.EndedAt = &endedAt
	return nil
}

func (f *fakeRecordStore) ListBrumations(ctx context.Context, animalID string) ([]model.BrumationCycle, error) {
	var out []model.BrumationCycle
	for _, b := range f.brumations {
		if b.AnimalID == animalID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *fakeRecordStore) {
	store := newFakeRecordStore()
	clock := schedule.FixedClock{Instant: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)}
	return NewService(store, clock, zaptest.NewLogger(t)), store
}

func registerAnimal(t *testing.T, svc *Service) *model.Animal {
	animal, err := svc.RegisterAnimal(context.Background(), &model.Animal{
		Name:    "Nagini",
		Species: "Ball Python",
	})
	require.NoError(t, err)
	return animal
}

func TestRegisterEnclosure(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("Valid", func(t *testing.T) {
		enclosure, err := svc.RegisterEnclosure(ctx, "40 gallon", "planted")
		require.NoError(t, err)
		assert.NotEmpty(t, enclosure.ID)
		assert.Equal(t, "40 gallon", enclosure.Name)
		assert.False(t, enclosure.CreatedAt.IsZero())
	})

	t.Run("Missing Name", func(t *testing.T) {
		_, err := svc.RegisterEnclosure(ctx, "", "")
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})
}

func TestRegisterAnimal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("Without Enclosure", func(t *testing.T) {
		animal := registerAnimal(t, svc)
		assert.NotEmpty(t, animal.ID)
	})

	t.Run("With Enclosure", func(t *testing.T) {
		enclosure, err := svc.RegisterEnclosure(ctx, "20 gallon", "")
		require.NoError(t, err)

		animal, err := svc.RegisterAnimal(ctx, &model.Animal{
			Name:        "Rex",
			EnclosureID: enclosure.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, enclosure.ID, animal.EnclosureID)
	})

	t.Run("Unknown Enclosure", func(t *testing.T) {
		_, err := svc.RegisterAnimal(ctx, &model.Animal{
			Name:        "Ghost",
			EnclosureID: "missing",
		})
		assert.ErrorIs(t, err, ErrEnclosureNotFound)
	})

	t.Run("Missing Name", func(t *testing.T) {
		_, err := svc.RegisterAnimal(ctx, &model.Animal{})
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})
}

func TestRecordWeight(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	animal := registerAnimal(t, svc)
	measuredAt := time.Date(2025, time.March, 9, 18, 0, 0, 0, time.UTC)

	t.Run("Valid", func(t *testing.T) {
		entry, err := svc.RecordWeight(ctx, animal.ID, 152.5, measuredAt, "post-feed")
		require.NoError(t, err)
		assert.Equal(t, 152.5, entry.Grams)
		assert.Len(t, store.weights, 1)
	})

	t.Run("Non Positive Weight", func(t *testing.T) {
		_, err := svc.RecordWeight(ctx, animal.ID, 0, measuredAt, "")
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("Unknown Animal", func(t *testing.T) {
		_, err := svc.RecordWeight(ctx, "missing", 100, measuredAt, "")
		assert.ErrorIs(t, err, ErrAnimalNotFound)
	})

	t.Run("History", func(t *testing.T) {
		entries, err := svc.WeightHistory(ctx, animal.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestRecordObservations(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	animal := registerAnimal(t, svc)
	when := time.Date(2025, time.March, 8, 9, 0, 0, 0, time.UTC)

	t.Run("Length", func(t *testing.T) {
		entry, err := svc.RecordLength(ctx, animal.ID, 92.0, when, "")
		require.NoError(t, err)
		assert.Equal(t, 92.0, entry.Centimeters)

		_, err = svc.RecordLength(ctx, animal.ID, -1, when, "")
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("Shed", func(t *testing.T) {
		record, err := svc.RecordShed(ctx, animal.ID, when, true, "clean shed")
		require.NoError(t, err)
		assert.True(t, record.Complete)
		assert.Len(t, store.sheds, 1)
	})

	t.Run("Vet Visit", func(t *testing.T) {
		visit, err := svc.RecordVetVisit(ctx, animal.ID, when, "checkup", "healthy")
		require.NoError(t, err)
		assert.Equal(t, "checkup", visit.Reason)
	})
}

func TestBrumationCycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	animal := registerAnimal(t, svc)

	cycle, err := svc.StartBrumation(ctx, animal.ID, time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC), "cooling")
	require.NoError(t, err)
	assert.Nil(t, cycle.EndedAt)

	require.NoError(t, svc.EndBrumation(ctx, cycle.ID))

	history, err := svc.BrumationHistory(ctx, animal.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].EndedAt)

	assert.Error(t, svc.EndBrumation(ctx, cycle.ID))
}
