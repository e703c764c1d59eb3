package audit

import (
	"go.uber.org/zap"

	"custodyvault/internal/model"
)

// Sink receives engine audit events. Emission is fire-and-forget: sinks
// must not fail the operation that produced the event.
type Sink interface {
	DepositRecorded(event model.DepositEvent)
	WithdrawRecorded(event model.WithdrawEvent)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) DepositRecorded(model.DepositEvent)   {}
func (NopSink) WithdrawRecorded(model.WithdrawEvent) {}

// ZapSink writes audit events to a structured logger.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

func (s *ZapSink) DepositRecorded(event model.DepositEvent) {
	s.logger.Info("deposit",
		zap.String("vault_key", event.VaultKey.Hex()),
		zap.String("depositor", event.Depositor.Hex()),
		zap.Uint64("amount", event.Amount),
		zap.Uint64("shares", event.Shares),
		zap.Int64("timestamp", event.Timestamp),
	)
}

func (s *ZapSink) WithdrawRecorded(event model.WithdrawEvent) {
	s.logger.Info("withdraw",
		zap.String("vault_key", event.VaultKey.Hex()),
		zap.String("depositor", event.Depositor.Hex()),
		zap.Uint64("assets", event.Assets),
		zap.Uint64("shares", event.Shares),
		zap.Int64("timestamp", event.Timestamp),
	)
}

// MultiSink fans events out to several sinks.
type MultiSink []Sink

func (m MultiSink) DepositRecorded(event model.DepositEvent) {
	for _, sink := range m {
		sink.DepositRecorded(event)
	}
}

func (m MultiSink) WithdrawRecorded(event model.WithdrawEvent) {
	for _, sink := range m {
		sink.WithdrawRecorded(event)
	}
}
