package mcp

import (
	"context"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
)

// mockScanService is a mock implementation of driving.ScanService.
type mockScanService struct {
	result  *domain.ScanResult
	err     error
	events  []domain.ScanEvent
	request domain.ScanRequest
}

func (m *mockScanService) Scan(
	_ context.Context,
	req domain.ScanRequest,
	sink domain.EventSink,
) (*domain.ScanResult, error) {
	m.request = req
	for _, e := range m.events {
		sink.Emit(e)
	}
	return m.result, m.err
}

func (m *mockScanService) Start(_ context.Context, _ domain.ScanRequest) (driving.Run, error) {
	return nil, domain.ErrScanInProgress
}

func (m *mockScanService) Cancel() {}

func (m *mockScanService) State() domain.RunState {
	return domain.RunStateIdle
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	records   []domain.ScanRecord
	err       error
	lastLimit int
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.ScanRecord, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && len(m.records) > limit {
		return m.records[:limit], nil
	}
	return m.records, nil
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.ScanRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.records {
		if m.records[i].ID == id {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockHistoryService) Prune(_ context.Context, _ int) (int, error) {
	return 0, m.err
}
