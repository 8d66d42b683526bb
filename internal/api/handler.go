package api

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/terraincognita07/dailyglow/internal/services"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Handler struct {
	sessions  *services.SessionRegistry
	secretKey []byte
	limiter   *userLimiter
	metrics   *httpMetrics
	gatherer  prometheus.Gatherer
	logger    *zap.Logger
	now       func() time.Time
}

type Options struct {
	SecretKey []byte
	// RateLimit applies per user to mutating endpoints. Zero disables it.
	RateLimit  rate.Limit
	RateBurst  int
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Logger     *zap.Logger
}

func NewHandler(sessions *services.SessionRegistry, options Options) (*Handler, error) {
	if sessions == nil {
		return nil, errors.New("session registry is required")
	}
	if len(options.SecretKey) == 0 {
		return nil, errors.New("secret key is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := &Handler{
		sessions:  sessions,
		secretKey: options.SecretKey,
		gatherer:  options.Gatherer,
		logger:    logger,
		now:       time.Now,
	}
	if options.RateLimit > 0 {
		handler.limiter = newUserLimiter(options.RateLimit, options.RateBurst)
	}
	if options.Registerer != nil {
		metrics, err := newHTTPMetrics(options.Registerer)
		if err != nil {
			return nil, err
		}
		handler.metrics = metrics
	}
	return handler, nil
}
