package cmd

import (
	"context"

	"github.com/anicoll/obis-integration/internal/pkg/model"
)

type readerService interface {
	Status() model.Status
	Codes() []model.Descriptor
	AddCode(d model.Descriptor) error
	Read(ctx context.Context) model.ReadingSet
}
