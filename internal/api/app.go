package api

import (
	"go.uber.org/zap"

	"circadian/internal/session"
)

type App interface {
	Logger() *zap.Logger
	Session() *session.Service
	MaxRequestsPerMin() int
	TrustedProxies() []string
	Version() string
}
