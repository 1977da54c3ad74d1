package models

// PackageDeclarations holds the candidate declarations found in one package directory
type PackageDeclarations struct {
	Dir          string        // package directory
	Name         string        // package name
	Files        []string      // parsed source files
	Declarations []Declaration // marked declarations in file then source order
}

// GeneratedFile represents one generated builder file
type GeneratedFile struct {
	PackageName string   // name of the package
	FilePath    string   // path where the file should be written
	Content     []byte   // formatted Go source
	Records     []string // records that received a builder
}
