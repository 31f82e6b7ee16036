package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/qbitmaster/qbitmaster-api/internal/dto"
)

type healthTorrentClient interface {
	Version(ctx context.Context) (string, error)
}

type healthIndexerClient interface {
	Configured() bool
	Ping(ctx context.Context) error
}

// HealthService probes the API's collaborators.
type HealthService struct {
	db      *sqlx.DB
	redis   *redis.Client
	qbit    healthTorrentClient
	jackett healthIndexerClient
	logger  *zap.Logger
}

// NewHealthService constructs a HealthService.
func NewHealthService(db *sqlx.DB, redisClient *redis.Client, qbit healthTorrentClient, jackettClient healthIndexerClient, logger *zap.Logger) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{db: db, redis: redisClient, qbit: qbit, jackett: jackettClient, logger: logger}
}

// Check probes each dependency with a short timeout per probe.
func (s *HealthService) Check(ctx context.Context) *dto.HealthStatus {
	status := &dto.HealthStatus{
		API:         dto.HealthOK,
		Database:    dto.HealthError,
		Redis:       dto.HealthError,
		QBittorrent: dto.HealthError,
		Jackett:     dto.HealthNotConfigured,
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.PingContext(probeCtx); err != nil {
			s.logger.Warn("database health probe failed", zap.Error(err))
		} else {
			status.Database = dto.HealthOK
		}
	}

	if s.redis != nil {
		if err := s.redis.Ping(probeCtx).Err(); err != nil {
			s.logger.Warn("redis health probe failed", zap.Error(err))
		} else {
			status.Redis = dto.HealthOK
		}
	}

	if s.qbit != nil {
		if _, err := s.qbit.Version(probeCtx); err != nil {
			s.logger.Warn("qbittorrent health probe failed", zap.Error(err))
		} else {
			status.QBittorrent = dto.HealthOK
		}
	}

	if s.jackett != nil && s.jackett.Configured() {
		if err := s.jackett.Ping(probeCtx); err != nil {
			s.logger.Warn("jackett health probe failed", zap.Error(err))
			status.Jackett = dto.HealthError
		} else {
			status.Jackett = dto.HealthOK
		}
	}

	return status
}
