package contracts

import (
	"context"

	"github.com/aitests/aitests/code_analyzer/models"
)

type IContextAssembler interface {
	AssembleContext(ctx context.Context) models.AssembledContext
}

type IConfigFileGatherer interface {
	GatherProjectConfigFiles(ctx context.Context) []models.FileObject
}
