package capture

import (
	"github.com/dshills/keychord/internal/logging"
	"github.com/dshills/keychord/internal/notify"
)

// options holds settings shared by Machine and Recorder.
type options struct {
	logger   *logging.Logger
	notifier *notify.Notifier
	id       string

	// ownsNotifier is set when no notifier was supplied and one was created.
	ownsNotifier bool
}

// Option configures a Machine or Recorder.
type Option func(*options)

// WithLogger sets the logger. Defaults to the process-wide logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithNotifier publishes changes through n instead of a private notifier.
// Several machines may share a notifier; Change.Source tells them apart.
func WithNotifier(n *notify.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithID sets the instance id used as Change.Source and in log fields.
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.notifier == nil {
		o.notifier = notify.New()
		o.ownsNotifier = true
	}
	o.logger = logging.OrDefault(o.logger)
	return o
}
