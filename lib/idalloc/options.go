package idalloc

// PrefixFunc derives the prefix of a lazily created namespace.
type PrefixFunc func(namespace string) string

type options struct {
	prefixFunc PrefixFunc
}

// Option configures an Allocator.
type Option func(*options)

// WithPrefixFunc sets the prefix used when Allocate, Reset or Peek meet a
// namespace nobody called Ensure for. Defaults to InitialsFromName.
func WithPrefixFunc(f PrefixFunc) Option {
	return func(o *options) {
		if f != nil {
			o.prefixFunc = f
		}
	}
}

func defaultOptions() options {
	return options{prefixFunc: InitialsFromName}
}
