// Package cleaner defines the interface shared by HTML cleaners.
// Implementations live in subpackages; see scrub for the invoice cleaner.
package cleaner

// Cleaner transforms an HTML document into a cleaned serialization.
type Cleaner interface {
	// Clean removes unwanted nodes from html and returns the serialized result.
	// Implementations must return either the complete output or an error,
	// never a partial document.
	Clean(html string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
