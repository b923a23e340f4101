package service

import (
	"context"
	"errors"

	"lms-be/internal/dto"
	"lms-be/internal/pkg/logger"
	"lms-be/internal/pkg/serverutils"
)

const defaultLogPageSize = 50

type IAdminService interface {
	GetSystemLogs(ctx context.Context, query *dto.LogQuery) ([]dto.LogListResponse, error)
	GetLogDetail(ctx context.Context, id string) (*dto.LogDetailResponse, error)
}

type adminService struct {
	logger logger.ILogger
}

func NewAdminService(log logger.ILogger) IAdminService {
	return &adminService{logger: log}
}

func (s *adminService) GetSystemLogs(ctx context.Context, query *dto.LogQuery) ([]dto.LogListResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLogPageSize
	}
	entries, err := s.logger.GetLogs(query.Level, limit, query.Offset)
	if err != nil {
		return nil, err
	}
	res := make([]dto.LogListResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, toLogListResponse(e))
	}
	return res, nil
}

func (s *adminService) GetLogDetail(ctx context.Context, id string) (*dto.LogDetailResponse, error) {
	entry, err := s.logger.GetLogById(id)
	if err != nil {
		if errors.Is(err, logger.ErrLogNotFound) {
			return nil, serverutils.ErrNotFound("log entry not found")
		}
		return nil, err
	}
	return &dto.LogDetailResponse{
		LogListResponse: toLogListResponse(*entry),
		Details:         entry.Details,
	}, nil
}

func toLogListResponse(e logger.LogEntry) dto.LogListResponse {
	return dto.LogListResponse{
		Id:        e.Id,
		Level:     e.Level,
		Module:    e.Module,
		Message:   e.Message,
		Timestamp: e.Timestamp,
	}
}
