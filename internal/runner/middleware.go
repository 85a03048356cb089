package runner

// FailureLogger logs failed tasks.
type FailureLogger interface {
	LogFailure(err error)
}

// WithLogging wraps an Observer so that every failed sample is reported to
// logger before being passed on. Either argument may be nil.
func WithLogging(next Observer, logger FailureLogger) Observer {
	if logger == nil {
		return next
	}
	return func(s Sample) {
		if s.Err != nil && !s.Skipped {
			logger.LogFailure(&TaskError{Task: s.Task, Err: s.Err})
		}
		if next != nil {
			next(s)
		}
	}
}

// Chain fans one sample out to several observers in order. Nil entries are
// ignored.
func Chain(observers ...Observer) Observer {
	var active []Observer
	for _, o := range observers {
		if o != nil {
			active = append(active, o)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}
	return func(s Sample) {
		for _, o := range active {
			o(s)
		}
	}
}
