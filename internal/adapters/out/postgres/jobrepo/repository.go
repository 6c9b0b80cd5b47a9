package jobrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"relocation/internal/adapters/out/postgres/pgerr"
	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormJobRepository implements ports.JobRepository using GORM.
type GormJobRepository struct {
	db          *gorm.DB
	tracker     aggregateTracker
	lockTimeout time.Duration
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormJobRepository creates a repository on db, which must be a transaction for
// GetForUpdate to hold its lock.
func NewGormJobRepository(db *gorm.DB, tracker aggregateTracker, lockTimeout time.Duration) *GormJobRepository {
	return &GormJobRepository{
		db:          db,
		tracker:     tracker,
		lockTimeout: lockTimeout,
	}
}

func (r *GormJobRepository) Add(ctx context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err) {
			return errs.NewValueIsInvalidErrorWithCause("job id", err)
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update rewrites every column of the job row, so cleared fields become NULL, and
// inserts reschedule records that are not stored yet.
func (r *GormJobRepository) Update(ctx context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&JobDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at", "Reschedules").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("job", aggregate.ID().String())
	}

	if len(dto.Reschedules) > 0 {
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&dto.Reschedules).Error
		if err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormJobRepository) Get(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	return r.load(ctx, r.db.WithContext(ctx), id)
}

// GetForUpdate bounds the lock wait with a transaction-local lock_timeout and reads the
// row with SELECT ... FOR UPDATE.
func (r *GormJobRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	if r.lockTimeout > 0 {
		timeout := fmt.Sprintf("%dms", r.lockTimeout.Milliseconds())
		if err := r.db.WithContext(ctx).Exec("SELECT set_config('lock_timeout', ?, true)", timeout).Error; err != nil {
			return nil, err
		}
	}

	j, err := r.load(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
	if err != nil && pgerr.IsLockNotAvailable(err) {
		return nil, errs.NewLockTimeoutErrorWithCause("job", id.String(), err)
	}
	return j, err
}

func (r *GormJobRepository) load(ctx context.Context, query *gorm.DB, id kernel.UUID) (*job.Job, error) {
	var dto JobDTO
	if err := query.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("job", id.String())
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("job_id = ?", dto.ID).
		Order("seq").
		Find(&dto.Reschedules).Error; err != nil {
		return nil, err
	}

	return toDomain(dto)
}
