package easel

// PictureOption configures a Picture during creation.
// Use functional options to customize Picture behavior.
//
// Example:
//
//	// Default software rendering
//	pic, err := easel.NewPicture(800, 600)
//
//	// Custom backend (dependency injection)
//	pic, err := easel.NewPicture(800, 600, easel.WithBackend(gpuBackend))
type PictureOption func(*pictureOptions)

// pictureOptions holds optional configuration for Picture creation.
type pictureOptions struct {
	backend          Backend
	checkpointBudget int
	authorID         int
}

// defaultPictureOptions returns the default picture options.
func defaultPictureOptions() pictureOptions {
	return pictureOptions{
		backend:          SoftwareBackend{},
		checkpointBudget: DefaultCheckpointBudget,
		authorID:         1,
	}
}

// WithBackend sets the pixel backend for the Picture and all its
// buffers. Use this for dependency injection of GPU or custom backends.
//
// Example:
//
//	b, _ := backend.Default()
//	pic, err := easel.NewPicture(800, 600, easel.WithBackend(b))
func WithBackend(b Backend) PictureOption {
	return func(o *pictureOptions) {
		o.backend = b
	}
}

// WithCheckpointBudget sets how many checkpoint snapshots each buffer
// may hold. Zero disables checkpoints entirely; every change then pays a
// full clipped replay. The bitmaps still come out identical, only
// slower.
func WithCheckpointBudget(n int) PictureOption {
	return func(o *pictureOptions) {
		if n < 0 {
			n = 0
		}
		o.checkpointBudget = n
	}
}

// WithAuthor sets the author id of the picture's active session. Events
// arriving from other participants keep their own ids and are routed
// through InsertEvent instead.
func WithAuthor(id int) PictureOption {
	return func(o *pictureOptions) {
		o.authorID = id
	}
}
