package cmd

import (
	"context"

	"github.com/anicoll/obis-integration/internal/pkg/model"
)

// MockReaderService is a test double for readerService.
type MockReaderService struct {
	StatusFunc  func() model.Status
	CodesFunc   func() []model.Descriptor
	AddCodeFunc func(d model.Descriptor) error
	ReadFunc    func(ctx context.Context) model.ReadingSet
}

func (m *MockReaderService) Status() model.Status {
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	return model.Status{Health: model.Healthy}
}

func (m *MockReaderService) Codes() []model.Descriptor {
	if m.CodesFunc != nil {
		return m.CodesFunc()
	}
	return nil
}

func (m *MockReaderService) AddCode(d model.Descriptor) error {
	if m.AddCodeFunc != nil {
		return m.AddCodeFunc(d)
	}
	return nil
}

func (m *MockReaderService) Read(ctx context.Context) model.ReadingSet {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx)
	}
	return model.ReadingSet{}
}
