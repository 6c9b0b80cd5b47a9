package offerrepo

import (
	"context"
	"errors"
	"time"

	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"
	"relocation/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOfferRepository implements ports.OfferRepository using GORM.
type GormOfferRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormOfferRepository(db *gorm.DB, tracker aggregateTracker) *GormOfferRepository {
	return &GormOfferRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts with ON CONFLICT (job_id, driver_id) DO NOTHING and reports whether the
// row is new.
func (r *GormOfferRepository) Add(ctx context.Context, o *offer.Offer) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}

	dto := fromDomain(o)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}, {Name: "driver_id"}},
			DoNothing: true,
		}).
		Create(&dto)
	if result.Error != nil {
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	r.tracker.TrackAggregate(o.ID(), o)
	return true, nil
}

func (r *GormOfferRepository) Update(ctx context.Context, offers ...*offer.Offer) error {
	for _, o := range offers {
		if err := o.Validate(); err != nil {
			return err
		}

		dto := fromDomain(o)
		result := r.db.WithContext(ctx).
			Model(&OfferDTO{}).
			Where("id = ?", dto.ID).
			Updates(map[string]any{
				"status":       dto.Status,
				"responded_at": dto.RespondedAt,
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return errs.NewObjectNotFoundError("offer", o.ID().String())
		}

		r.tracker.TrackAggregate(o.ID(), o)
	}
	return nil
}

func (r *GormOfferRepository) Find(ctx context.Context, jobID, driverID kernel.UUID) (*offer.Offer, error) {
	if err := errors.Join(jobID.Validate(), driverID.Validate()); err != nil {
		return nil, err
	}

	var dto OfferDTO
	err := r.db.WithContext(ctx).
		First(&dto, "job_id = ? AND driver_id = ?", jobID.Bytes(), driverID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("offer", jobID.String()+"/"+driverID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormOfferRepository) ListByJob(ctx context.Context, jobID kernel.UUID) ([]*offer.Offer, error) {
	return r.list(r.db.WithContext(ctx).Where("job_id = ?", jobID.Bytes()))
}

func (r *GormOfferRepository) ListPendingByJob(ctx context.Context, jobID kernel.UUID) ([]*offer.Offer, error) {
	return r.list(r.db.WithContext(ctx).
		Where("job_id = ? AND status = ?", jobID.Bytes(), offer.Pending.String()))
}

func (r *GormOfferRepository) JobsWithPendingOffersBefore(ctx context.Context, cutoff time.Time) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&OfferDTO{}).
		Distinct().
		Where("status = ? AND offered_at <= ?", offer.Pending.String(), cutoff).
		Pluck("job_id", &raw).Error
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, u := range raw {
		id, idErr := kernel.UUIDFromBytes(u[:])
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *GormOfferRepository) list(query *gorm.DB) ([]*offer.Offer, error) {
	var dtos []OfferDTO
	if err := query.Order("offered_at, id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	offers := make([]*offer.Offer, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, nil
}
