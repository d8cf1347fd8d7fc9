package services

import (
	"log/slog"

	"github.com/proplanet/ecoledger/core"
)

// Options carries the ambient dependencies shared by every service.
// Zero values are replaced by slog.Default() and a no-op recorder.
type Options struct {
	Logger   *slog.Logger
	Recorder core.Recorder
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o Options) recorder() core.Recorder {
	if o.Recorder == nil {
		return nopRecorder{}
	}
	return o.Recorder
}

type nopRecorder struct{}

func (nopRecorder) SignUp() {}
func (nopRecorder) TaskCompleted(core.Category, int64) {}
func (nopRecorder) RedemptionCreated(core.PayoutMethod, int64) {}
func (nopRecorder) RedemptionRejected(error) {}
