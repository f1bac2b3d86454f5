package config

const (
	// MaxBatchSize is the hard cap on candidates in one batch submission.
	// The intra-batch conflict check is O(n²) in batch size; the cap keeps
	// that quadratic pass trivially cheap. Raising it would require a
	// sort-and-sweep check instead.
	MaxBatchSize = 100

	// MaxNameLength is the maximum length for client, project and task
	// names. Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxNameLength = 255

	// MaxDescriptionLength is the maximum length for time entry
	// descriptions.
	MaxDescriptionLength = 1000

	// DefaultPageSize is the page size used when the caller supplies none.
	DefaultPageSize = 50

	// MaxPageSize caps caller-supplied page sizes.
	MaxPageSize = 200

	// MaxEntryDurationHours bounds a single interval. Entries longer than
	// this are almost certainly input errors (a forgotten timer).
	MaxEntryDurationHours = 24
)
