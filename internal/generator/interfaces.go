package generator

import "github.com/toyz/buildergen/internal/models"

// CodeGenerator renders the builders of one package into a single file
type CodeGenerator interface {
	GenerateFile(packageName, dir string, records []*models.RecordDescriptor) (*models.GeneratedFile, error)
	OutputName() string
}
