package recognition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"greenia/internal/detection"
	"greenia/internal/interfaces"
	"greenia/internal/metrics"
	"greenia/internal/models"
	"greenia/internal/repository"
)

var (
	ErrNoResult        = errors.New("detection returned no result")
	ErrNotPersisted    = errors.New("recognition could not be saved")
	ErrNotAllowed      = errors.New("only users can submit recognitions")
	ErrAccountInactive = errors.New("account is inactive")
)

// TypeLookup resolves plastic type codes to catalog rows.
type TypeLookup interface {
	GetByCode(ctx context.Context, code string) (*models.PlasticType, error)
}

// BatchStore persists the rows of one recognition atomically.
type BatchStore interface {
	SaveBatch(ctx context.Context, rows []models.Recognition) error
	AttachImage(ctx context.Context, batchID string, imageKey string) error
}

// AccountLookup loads the submitting user so deactivated accounts are refused
// while their token is still valid.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type Options struct {
	UnitWeightKg float64
	Images       interfaces.ImageStore // optional
}

type Service struct {
	detector     detection.Detector
	types        TypeLookup
	store        BatchStore
	accounts     AccountLookup
	images       interfaces.ImageStore
	unitWeightKg float64
	newID        func() string
	now          func() time.Time
}

func NewService(detector detection.Detector, types TypeLookup, store BatchStore, accounts AccountLookup, opts Options) *Service {
	if opts.UnitWeightKg <= 0 {
		opts.UnitWeightKg = DefaultUnitWeightKg
	}
	return &Service{
		detector:     detector,
		types:        types,
		store:        store,
		accounts:     accounts,
		images:       opts.Images,
		unitWeightKg: opts.UnitWeightKg,
		newID:        uuid.NewString,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Item is the persisted outcome for one plastic type.
type Item struct {
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	Quantity   int        `json:"quantity"`
	WeightKg   float64    `json:"weight_kg"`
	CO2SavedKg float64    `json:"co2_saved_kg"`
	Info       BottleInfo `json:"info"`
}

// Batch is one image's worth of per-code quantities.
type Batch struct {
	ID       string
	ImageKey string
	Counts   map[string]int
}

type Outcome struct {
	BatchID         string                 `json:"batch_id"`
	ImageKey        string                 `json:"image_key,omitempty"`
	Aggregation     Aggregation            `json:"aggregation"`
	Items           []Item                 `json:"items"`
	Skipped         []string               `json:"skipped,omitempty"`
	TotalWeightKg   float64                `json:"total_weight_kg"`
	TotalCO2SavedKg float64                `json:"total_co2_saved_kg"`
	Saved           bool                   `json:"saved"`
	Predictions     []detection.Prediction `json:"predictions"`
}

// Recognize runs one uploaded image through detection, aggregation and persistence.
// On a persistence failure the returned outcome has Saved=false and the error wraps
// ErrNotPersisted. The photo is archived only once its rows are committed.
func (s *Service) Recognize(ctx context.Context, sess models.Session, image []byte) (*Outcome, error) {
	if sess.Role != models.RoleUser {
		return nil, ErrNotAllowed
	}
	logger := log.With().Str("user_id", sess.ID).Logger()

	user, err := s.accounts.GetByID(ctx, sess.ID)
	if errors.Is(err, repository.ErrUserNotFound) || (err == nil && !user.Active) {
		logger.Warn().Msg("Recognition refused for inactive or removed account")
		return nil, ErrAccountInactive
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	batchID := s.newID()
	res, err := s.detector.Detect(ctx, image)
	if err != nil {
		logger.Error().Err(err).Str("batch_id", batchID).Msg("Recognition produced no result")
		return nil, fmt.Errorf("%w: %w", ErrNoResult, err)
	}

	agg := Aggregate(res.Predictions)
	for code, n := range agg.CountByCode {
		metrics.ItemsDetectedTotal.WithLabelValues(code).Add(float64(n))
	}

	out := &Outcome{
		BatchID:     batchID,
		Aggregation: agg,
		Items:       []Item{},
		Predictions: res.Predictions,
	}
	if agg.Total == 0 {
		logger.Info().Str("batch_id", batchID).Msg("No containers detected")
		return out, nil
	}

	items, skipped, err := s.Save(ctx, sess, Batch{ID: batchID, Counts: agg.CountByCode})
	out.Skipped = skipped
	if err != nil {
		return out, err
	}
	out.Items = items
	out.Saved = len(items) > 0
	for _, it := range items {
		out.TotalWeightKg += it.WeightKg
		out.TotalCO2SavedKg += it.CO2SavedKg
	}
	out.TotalWeightKg = round(out.TotalWeightKg, 4)
	out.TotalCO2SavedKg = round(out.TotalCO2SavedKg, 4)

	if out.Saved {
		out.ImageKey = s.archive(ctx, sess, batchID, archivable(res, image))
	}
	return out, nil
}

// Save resolves each code against the catalog, computes weight and CO2, and stores
// one row per code in a single transaction. Codes missing from the catalog are
// skipped and reported.
func (s *Service) Save(ctx context.Context, sess models.Session, b Batch) ([]Item, []string, error) {
	var (
		rows    []models.Recognition
		items   []Item
		skipped []string
	)

	var adminID *string
	if sess.AdminID != "" {
		id := sess.AdminID
		adminID = &id
	}
	var imageKey *string
	if b.ImageKey != "" {
		key := b.ImageKey
		imageKey = &key
	}

	codes := Aggregation{CountByCode: b.Counts}.Codes()
	for _, code := range codes {
		qty := b.Counts[code]
		if qty <= 0 {
			continue
		}
		pt, err := s.types.GetByCode(ctx, code)
		if errors.Is(err, repository.ErrPlasticTypeNotFound) {
			log.Warn().Str("code", code).Str("batch_id", b.ID).Msg("Plastic type not found in catalog, skipping")
			skipped = append(skipped, code)
			continue
		}
		if err != nil {
			metrics.RecognitionBatchesTotal.WithLabelValues("failed").Inc()
			return nil, skipped, fmt.Errorf("%w: lookup %s: %v", ErrNotPersisted, code, err)
		}

		weight, co2 := Impact(qty, s.unitWeightKg, pt.CO2PerUnitKg)
		rows = append(rows, models.Recognition{
			ID:            s.newID(),
			BatchID:       b.ID,
			PlasticTypeID: pt.ID,
			PlasticCode:   pt.Code,
			PlasticName:   pt.Name,
			Quantity:      qty,
			WeightKg:      weight,
			CO2SavedKg:    co2,
			ImageKey:      imageKey,
			UserID:        sess.ID,
			AdminID:       adminID,
		})
		items = append(items, Item{
			Code:       pt.Code,
			Name:       pt.Name,
			Quantity:   qty,
			WeightKg:   weight,
			CO2SavedKg: co2,
			Info:       InfoFor(pt.Code),
		})
	}

	if len(rows) == 0 {
		metrics.RecognitionBatchesTotal.WithLabelValues("empty").Inc()
		return []Item{}, skipped, nil
	}

	if err := s.store.SaveBatch(ctx, rows); err != nil {
		metrics.RecognitionBatchesTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("batch_id", b.ID).Str("user_id", sess.ID).Msg("Failed to save recognition batch")
		return nil, skipped, fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}

	metrics.RecognitionBatchesTotal.WithLabelValues("saved").Inc()
	var total float64
	for _, r := range rows {
		total += r.CO2SavedKg
	}
	metrics.CO2SavedKgTotal.Add(total)
	log.Info().Str("batch_id", b.ID).Str("user_id", sess.ID).Int("rows", len(rows)).Float64("co2_saved_kg", total).Msg("Recognition saved")
	return items, skipped, nil
}

// archive uploads the normalized JPEG of a saved batch and links it to the rows.
// Failures are logged; the recognition itself stays saved.
func (s *Service) archive(ctx context.Context, sess models.Session, batchID string, jpegData []byte) string {
	if s.images == nil || len(jpegData) == 0 {
		return ""
	}
	key := fmt.Sprintf("%s/%s/%s.jpg", sess.ID, s.now().Format("2006/01/02"), batchID)
	stored, err := s.images.Put(ctx, key, "image/jpeg", jpegData)
	if err != nil {
		log.Warn().Err(err).Str("batch_id", batchID).Msg("Failed to archive recognition image")
		return ""
	}
	if err := s.store.AttachImage(ctx, batchID, stored); err != nil {
		log.Warn().Err(err).Str("batch_id", batchID).Str("image_key", stored).Msg("Archived image could not be linked to its batch")
		return ""
	}
	return stored
}

// archivable returns the JPEG that was sent to the model, re-encoding the upload
// when the detector did not hand it back. Undecodable uploads are never archived.
func archivable(res *detection.Result, upload []byte) []byte {
	if len(res.Prepared) > 0 {
		return res.Prepared
	}
	data, err := detection.PrepareImage(upload, 0)
	if err != nil {
		return nil
	}
	return data
}
