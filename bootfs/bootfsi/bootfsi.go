// Package bootfsi defines an interface for the filesystem operations the
// boot-initialization helpers perform against procfs, sysfs and ramdisk paths.
package bootfsi

// Client abstracts the filesystem operations the boot helpers depend on.
// Implementations decide how strict the security semantics are; linuxboot
// provides the init-grade behavior.
type Client interface {
	// ReadFile reads the named file and returns the contents. Implementations
	// must reject files that are writable by group or other.
	ReadFile(name string) ([]byte, error)
	// WriteFile writes data to the named file, creating or truncating it.
	// Created files must be readable and writable by the owner only.
	WriteFile(name string, contents []byte) error
	// MkdirAll creates the named directory along with any necessary parents.
	// An already existing directory is not an error.
	MkdirAll(name string) error
	// IsDir reports whether the named path exists and is a directory.
	IsDir(name string) bool
}

// Labeler applies a platform security label around the creation of a file or
// directory. Platforms without the feature use NopLabeler.
type Labeler interface {
	// Label attaches the platform's label for path to whatever the
	// implementation creates next. A nil error with no effect is a valid
	// implementation.
	Label(path string) error
}

// NopLabeler is the Labeler for platforms without security labeling.
type NopLabeler struct{}

// Label implements Labeler as a no-op.
func (NopLabeler) Label(string) error { return nil }
