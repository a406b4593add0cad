package serving

import "context"

// LoadMode selects whether the load hook runs on the caller or a background
// goroutine.
type LoadMode string

const (
	LoadSync  LoadMode = "sync"
	LoadAsync LoadMode = "async"
)

// RunLoad initializes the model. Repeated calls are no-ops: at most one load
// runs per process. In sync mode a load failure is returned as a LoadError;
// in async mode the call returns immediately and the outcome is observed
// once by the completion callback, which also rejects pending readiness
// waiters on failure. After a successful load the endpoint record is
// reconciled and the telemetry pusher initialized, both exactly once.
func (s *ModelServer) RunLoad(ctx context.Context, mode LoadMode) error {
	if s.gate.Ready() {
		s.postLoadInit(ctx)
		return nil
	}
	var err error
	s.loadOnce.Do(func() {
		if !s.gate.setLoading() {
			return
		}
		if mode == LoadAsync {
			s.log.Info().Msg("started async model loading")
			go s.loadAndUpdateState(ctx)
			return
		}
		err = s.loadAndUpdateState(ctx)
	})
	return err
}

// loadAndUpdateState runs the load hook and performs the single
// Loading -> Ready|Failed transition, then post-load initialization.
func (s *ModelServer) loadAndUpdateState(ctx context.Context) error {
	if err := s.model.Load(); err != nil {
		wrapped := ErrLoad(s.identity.Name, err)
		s.gate.setFailed(wrapped.Error())
		modelLoadsTotal.WithLabelValues("failed").Inc()
		s.log.Error().Err(err).Msg("model load failed")
		return wrapped
	}
	s.gate.setReady()
	modelLoadsTotal.WithLabelValues("ready").Inc()
	s.log.Info().Msg("model was loaded")
	s.postLoadInit(ctx)
	return nil
}

// postLoadInit reconciles the endpoint record and initializes the telemetry
// pusher. Skipped entirely in mock mode unless monitoring is forced on.
func (s *ModelServer) postLoadInit(ctx context.Context) {
	s.postInitOnce.Do(func() {
		if !s.cfg.Host.monitoring() {
			return
		}
		// Resolve version/labels from the model spec before they are
		// consumed by the endpoint record and telemetry headers.
		s.identity.VersionedName()
		uid := s.registrar.reconcile(ctx, s.identity, modelClass(s.cfg))
		s.mu.Lock()
		s.endpointUID = uid
		s.mu.Unlock()
		if s.cfg.Host.StreamEnabled && s.cfg.Sink != nil {
			p := newTelemetryPusher(s.cfg, s.identity, s.customMetrics, s.log)
			s.mu.Lock()
			s.pusher = p
			s.mu.Unlock()
		}
	})
}
