package queries

import (
	"context"

	"relocation/internal/core/ports"
)

// GetJobQueryHandler reads a job and its offers inside one read transaction, so both
// come from the same committed state.
type GetJobQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetJobQueryHandler(uowFactory ports.UnitOfWorkFactory) GetJobQueryHandler {
	return GetJobQueryHandler{uowFactory: uowFactory}
}

// Handle returns an ObjectNotFoundError for an unknown job.
func (h GetJobQueryHandler) Handle(ctx context.Context, query GetJobQuery) (GetJobQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetJobQueryResponse{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return GetJobQueryResponse{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	j, err := uow.JobRepository().Get(ctx, query.JobID())
	if err != nil {
		return GetJobQueryResponse{}, err
	}

	offers, err := uow.OfferRepository().ListByJob(ctx, query.JobID())
	if err != nil {
		return GetJobQueryResponse{}, err
	}

	views := make([]OfferView, 0, len(offers))
	for _, o := range offers {
		views = append(views, OfferView{
			ID:          o.ID(),
			DriverID:    o.DriverID(),
			Status:      o.Status(),
			OfferedAt:   o.OfferedAt(),
			RespondedAt: o.RespondedAt(),
		})
	}

	return GetJobQueryResponse{Job: j.Snapshot(), Offers: views}, nil
}
