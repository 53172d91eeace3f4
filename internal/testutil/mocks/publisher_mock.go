package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
)

// MockDonorEventPublisher implements ports.DonorEventPublisher without RabbitMQ.
type MockDonorEventPublisher struct {
	mu sync.RWMutex

	PublishedEvents  []ports.DonorTriagedEvent
	PublishError     error
	PublishCallCount int
}

var _ ports.DonorEventPublisher = (*MockDonorEventPublisher)(nil)

func NewMockDonorEventPublisher() *MockDonorEventPublisher {
	return &MockDonorEventPublisher{}
}

func (m *MockDonorEventPublisher) PublishDonorTriaged(ctx context.Context, evt ports.DonorTriagedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishCallCount++

	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// GetPublishedEvents returns a copy of the published events.
func (m *MockDonorEventPublisher) GetPublishedEvents() []ports.DonorTriagedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := make([]ports.DonorTriagedEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}

// MockDonorExporter implements ports.DonorExporter by recording its input.
type MockDonorExporter struct {
	mu sync.Mutex

	Exported    [][]domain.DonorView
	GeneratedOn []domain.Date
	Output      string
	ExportError error
}

var _ ports.DonorExporter = (*MockDonorExporter)(nil)

func NewMockDonorExporter() *MockDonorExporter {
	return &MockDonorExporter{Output: "export"}
}

func (m *MockDonorExporter) ExportDonors(w io.Writer, donors []domain.DonorView, generatedOn domain.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Exported = append(m.Exported, donors)
	m.GeneratedOn = append(m.GeneratedOn, generatedOn)

	if m.ExportError != nil {
		return m.ExportError
	}
	_, err := io.WriteString(w, m.Output)
	return err
}
