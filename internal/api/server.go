package api

import (
	"context"
	"time"

	"github.com/vytor/flashdeck/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	DeckService  services.DeckService
	StudyService services.StudyService
	DB           Pinger
	// RequestTimeout bounds each API request; zero disables the limit.
	RequestTimeout time.Duration
}
