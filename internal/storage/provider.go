// Package storage defines the content-directory file abstraction used by the
// emitter.
package storage

// Provider is the interface for content-root file operations. All paths are
// relative to the root.
type Provider interface {
	// List returns the relative paths of every .md file under dir.
	List(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating directories as needed.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
