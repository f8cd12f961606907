package husbandry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/herptrack/herptrack/internal/model"
	"github.com/herptrack/herptrack/internal/schedule"
)

var (
	// ErrEnclosureNotFound is returned when an enclosure ID does not exist
	ErrEnclosureNotFound = errors.New("enclosure not found")
	// ErrAnimalNotFound is returned when an animal ID does not exist
	ErrAnimalNotFound = errors.New("animal not found")
	// ErrInvalidRecord is returned when a record fails validation
	ErrInvalidRecord = errors.New("invalid record")
)

// RecordStore is the persistence surface the husbandry service needs
type RecordStore interface {
	CreateEnclosure(ctx context.Context, e *model.Enclosure) error
	GetEnclosure(ctx context.Context, id string) (*model.Enclosure, error)
	CreateAnimal(ctx context.Context, a *model.Animal) error
	GetAnimal(ctx context.Context, id string) (*model.Animal, error)
	ListAnimals(ctx context.Context, enclosureID string) ([]model.Animal, error)
	AppendWeight(ctx context.Context, w *model.WeightEntry) error
	ListWeights(ctx context.Context, animalID string) ([]model.WeightEntry, error)
	AppendLength(ctx context.Context, l *model.LengthEntry) error
	AppendShed(ctx context.Context, r *model.ShedRecord) error
	AppendVetVisit(ctx context.Context, v *model.VetVisit) error
	StartBrumation(ctx context.Context, b *model.BrumationCycle) error
	EndBrumation(ctx context.Context, id string, endedAt time.Time) error
	ListBrumations(ctx context.Context, animalID string) ([]model.BrumationCycle, error)
}

// Service keeps the husbandry records around the care schedule: animals,
// enclosures and the append-only measurement history
type Service struct {
	logger *zap.Logger
	store  RecordStore
	clock  schedule.Clock
}

// NewService creates a new husbandry service
func NewService(store RecordStore, clock schedule.Clock, logger *zap.Logger) *Service {
	return &Service{
		logger: logger.Named("husbandry"),
		store:  store,
		clock:  clock,
	}
}

// RegisterEnclosure creates a new enclosure
func (s *Service) RegisterEnclosure(ctx context.Context, name, description string) (*model.Enclosure, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: enclosure name is required", ErrInvalidRecord)
	}

	now := s.clock.Now()
	enclosure := &model.Enclosure{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateEnclosure(ctx, enclosure); err != nil {
		return nil, fmt.Errorf("failed to create enclosure: %w", err)
	}

	s.logger.Info("Enclosure registered",
		zap.String("id", enclosure.ID),
		zap.String("name", enclosure.Name))
	return enclosure, nil
}

// RegisterAnimal creates a new animal, optionally housed in an enclosure
func (s *Service) RegisterAnimal(ctx context.Context, animal *model.Animal) (*model.Animal, error) {
	if animal.Name == "" {
		return nil, fmt.Errorf("%w: animal name is required", ErrInvalidRecord)
	}
	if animal.EnclosureID != "" {
		enclosure, err := s.store.GetEnclosure(ctx, animal.EnclosureID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up enclosure: %w", err)
		}
		if enclosure == nil {
			return nil, ErrEnclosureNotFound
		}
	}

	now := s.clock.Now()
	animal.ID = uuid.New().String()
	animal.CreatedAt = now
	animal.UpdatedAt = now
	if err := s.store.CreateAnimal(ctx, animal); err != nil {
		return nil, fmt.Errorf("failed to create animal: %w", err)
	}

	s.logger.Info("Animal registered",
		zap.String("id", animal.ID),
		zap.String("name", animal.Name),
		zap.String("species", animal.Species))
	return animal, nil
}

// ListAnimals returns all animals, or those in one enclosure when
// enclosureID is non-empty
func (s *Service) ListAnimals(ctx context.Context, enclosureID string) ([]model.Animal, error) {
	return s.store.ListAnimals(ctx, enclosureID)
}

// RecordWeight appends a weight measurement
func (s *Service) RecordWeight(ctx context.Context, animalID string, grams float64, measuredAt time.Time, notes string) (*model.WeightEntry, error) {
	if grams <= 0 {
		return nil, fmt.Errorf("%w: weight must be positive", ErrInvalidRecord)
	}
	if err := s.requireAnimal(ctx, animalID); err != nil {
		return nil, err
	}

	entry := &model.WeightEntry{
		ID:         uuid.New().String(),
		AnimalID:   animalID,
		Grams:      grams,
		MeasuredAt: measuredAt,
		Notes:      notes,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.store.AppendWeight(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record weight: %w", err)
	}

	s.logger.Info("Weight recorded",
		zap.String("animal_id", animalID),
		zap.Float64("grams", grams))
	return entry, nil
}

// WeightHistory returns all weight entries for an animal, most recent
// first
func (s *Service) WeightHistory(ctx context.Context, animalID string) ([]model.WeightEntry, error) {
	if err := s.requireAnimal(ctx, animalID); err != nil {
		return nil, err
	}
	return s.store.ListWeights(ctx, animalID)
}

// RecordLength appends a length measurement
func (s *Service) RecordLength(ctx context.Context, animalID string, centimeters float64, measuredAt time.Time, notes string) (*model.LengthEntry, error) {
	if centimeters <= 0 {
		return nil, fmt.Errorf("%w: length must be positive", ErrInvalidRecord)
	}
	if err := s.requireAnimal(ctx, animalID); err != nil {
		return nil, err
	}

	entry := &model.LengthEntry{
		ID:          uuid.New().String(),
		AnimalID:    animalID,
		Centimeters: centimeters,
		MeasuredAt:  measuredAt,
		Notes:       notes,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.store.AppendLength(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record length: %w", err)
	}

	s.logger.Info("Length recorded",
		zap.String("animal_id", animalID),
		zap.Float64("centimeters", centimeters))
	return entry, nil
}

// RecordShed appends a shed observation
func (s *Service) RecordShed(ctx context.Context, animalID string, shedAt time.Time, complete bool, notes string) (*model.ShedRecord, error) {
	if err := s.requireAnimal(ctx, animalID); err != nil {
		return nil, err
	}

	record := &model.ShedRecord{
		ID:        uuid.New().String(),
		AnimalID:  animalID,
		ShedAt:    shedAt,
		Complete:  complete,
		Notes:     notes,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.AppendShed(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record shed: %w", err)
	}

	s.logger.Info("Shed recorded",
		zap.String("animal_id", animalID),
		zap.Bool("complete", complete))
	return record, nil
}

// RecordVetVisit appends a veterinary visit
func (s *Service) RecordVetVisit(ctx context.Context, animalID string, visitedAt time.Time, reason, outcome string) (*model.VetVisit, error) {
	if err := s.requireAnimal(ctx, animalID); err != nil {
		return nil, err
	}

	visit := &model.VetVisit{
		ID:        uuid.New().String(),
		AnimalID:  animalID,
		VisitedAt: visitedAt,
		Reason:    reason,
		Outcome:   outcome,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.AppendVetVisit(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to record vet visit: %w", err)
	}

	s.logger.Info("Vet visit recorded",
		zap.String("animal_id", animalID),
		zap.String("reason", reason))
	return visit, nil
}

// StartBrumation opens a brumation cycle for an animal
func (s *Service) StartBrumation(ctx context.Context, animalID string, startedAt time.Time, notes string) (*model.BrumationCycle, error) {
	if err := s.requireAnimal(ctx, animalID); err != nil {
		return nil, err
	}

	cycle := &model.BrumationCycle{
		ID:        uuid.New().String(),
		AnimalID:  animalID,
		StartedAt: startedAt,
		Notes:     notes,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.StartBrumation(ctx, cycle); err != nil {
		return nil, fmt.Errorf("failed to start brumation cycle: %w", err)
	}

	s.logger.Info("Brumation started", zap.String("animal_id", animalID))
	return cycle, nil
}

// EndBrumation closes an open brumation cycle
func (s *Service) EndBrumation(ctx context.Context, cycleID string) error {
	if err := s.store.EndBrumation(ctx, cycleID, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to end brumation cycle: %w", err)
	}

	s.logger.Info("Brumation ended", zap.String("cycle_id", cycleID))
	return nil
}

// BrumationHistory returns all brumation cycles for an animal
func (s *Service) BrumationHistory(ctx context.Context, animalID string) ([]model.BrumationCycle, error) {
	if err := s.requireAnimal(ctx, animalID); err != nil {
		return nil, err
	}
	return s.store.ListBrumations(ctx, animalID)
}

func (s *Service) requireAnimal(ctx context.Context, animalID string) error {
	animal, err := s.store.GetAnimal(ctx, animalID)
	if err != nil {
		return fmt.Errorf("failed to look up animal: %w", err)
	}
	if animal == nil {
		return ErrAnimalNotFound
	}
	return nil
}
