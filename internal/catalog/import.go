package catalog

import (
	"context"

	"github.com/lepinkainen/shelf/internal/importer"
)

// ImportFile normalizes raw input and commits it. With onlyValid set, rows
// that fail validation are dropped before the commit.
func (s *Service) ImportFile(ctx context.Context, raw []byte, fileNameHint string, onlyValid bool) (ImportResult, error) {
	outcomes, err := importer.Preview(raw, fileNameHint)
	if err != nil {
		return ImportResult{}, err
	}
	return s.CommitImport(ctx, importer.Patches(outcomes, onlyValid))
}
