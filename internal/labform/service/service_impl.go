package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/labform/internal/clock"
	"github.com/smallbiznis/labform/internal/labform/domain"
	obslogger "github.com/smallbiznis/labform/internal/observability/logger"
	"github.com/smallbiznis/labform/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	metrics *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("labform.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	form := req.LabForm()

	// Stored precision is milliseconds on every backend.
	now := s.clock.Now().UTC().Truncate(time.Millisecond)
	form.ID = s.genID.Generate()
	form.CreatedAt = now
	form.UpdatedAt = now

	start := time.Now()
	err := s.repo.Insert(ctx, &form)
	s.metrics.ObserveStorage(ctx, "create", start, err)
	if err != nil {
		s.metrics.StorageError("create")
		obslogger.WithContext(ctx, s.log).Error("failed to save lab form",
			zap.String("car_no", form.CarNo),
			zap.Error(err),
		)
		return nil, err
	}
	s.metrics.RecordCreated()

	resp := form.ToResponse()
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	start := time.Now()
	items, err := s.repo.List(ctx, domain.ListFilter{CarNo: req.CarNo})
	s.metrics.ObserveStorage(ctx, "list", start, err)
	if err != nil {
		s.metrics.StorageError("list")
		obslogger.WithContext(ctx, s.log).Error("failed to fetch lab forms",
			zap.String("car_no", req.CarNo),
			zap.Error(err),
		)
		return nil, err
	}

	out := make([]domain.Response, 0, len(items))
	for i := range items {
		out = append(out, items[i].ToResponse())
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	start := time.Now()
	deleted, err := s.repo.Delete(ctx, id)
	s.metrics.ObserveStorage(ctx, "delete", start, err)
	if err != nil {
		s.metrics.StorageError("delete")
		obslogger.WithContext(ctx, s.log).Error("failed to delete lab form",
			zap.String("id", rawID),
			zap.Error(err),
		)
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	s.metrics.RecordDeleted()
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
