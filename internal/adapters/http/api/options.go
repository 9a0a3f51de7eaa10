package api

const defaultMaxBodyBytes = 4 << 20

type options struct {
	maxBodyBytes int64
}

func defaultOptions() options {
	return options{maxBodyBytes: defaultMaxBodyBytes}
}

// Option configures the API server.
type Option func(*options)

// WithMaxBodyBytes caps request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}
