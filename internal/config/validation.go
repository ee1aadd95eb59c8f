package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/robfig/cron/v3"

	"github.com/LeJamon/goMIXR/internal/core/basket"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
	"github.com/LeJamon/goMIXR/internal/storage"
	"github.com/LeJamon/goMIXR/internal/storage/compression"
)

var (
	ErrFeeRange       = errors.New("fee must be in [0, 1]")
	ErrCeilingRange   = errors.New("deviation ceiling must be in (0, 1]")
	ErrRewardCeiling  = errors.New("reward ceiling must be positive")
	ErrDecimals       = errors.New("decimals out of range")
	ErrStorageBackend = errors.New("unknown storage backend")
	ErrKeepSnapshots  = errors.New("keep_snapshots must be positive")
	ErrListenAddress  = errors.New("server listen address is required")
	ErrPayoutSchedule = errors.New("invalid payout schedule")
	ErrPayoutOperator = errors.New("payout operator is required when a schedule is set")
)

// cronParser accepts standard five-field expressions and descriptors such
// as @daily.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateConfig performs comprehensive validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := validateLedger(config); err != nil {
		return fmt.Errorf("ledger parameters: %w", err)
	}
	if _, err := config.Whitelist(); err != nil {
		return err
	}
	if err := validatePayout(&config.Payout); err != nil {
		return fmt.Errorf("payout: %w", err)
	}
	if err := validateStorage(&config.Storage); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if config.Journal.Enabled {
		jc := config.JournalConfig()
		if err := jc.Validate(); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}
	if config.Server.Listen == "" {
		return ErrListenAddress
	}
	return nil
}

func validateLedger(config *Config) error {
	p, err := config.LedgerParams()
	if err != nil {
		return err
	}
	if p.Decimals > basket.MaxDecimals {
		return fmt.Errorf("%w: basket.decimals %d", ErrDecimals, p.Decimals)
	}
	if p.MinimumFee.Sign() < 0 || p.MinimumFee.GreaterThan(fixed.One()) {
		return fmt.Errorf("%w: fees.minimum %s", ErrFeeRange, p.MinimumFee)
	}
	if p.DeviationCeiling.Sign() <= 0 || p.DeviationCeiling.GreaterThan(fixed.One()) {
		return fmt.Errorf("%w: %s", ErrCeilingRange, p.DeviationCeiling)
	}
	if p.RewardCeiling <= 0 {
		return ErrRewardCeiling
	}
	return nil
}

func validatePayout(p *PayoutConfig) error {
	if p.Schedule == "" {
		return nil
	}
	if _, err := cronParser.Parse(p.Schedule); err != nil {
		return fmt.Errorf("%w: %v", ErrPayoutSchedule, err)
	}
	if p.Operator == "" {
		return ErrPayoutOperator
	}
	return nil
}

func validateStorage(s *StorageConfig) error {
	if !slices.Contains(storage.Backends, s.Backend) {
		return fmt.Errorf("%w: %q", ErrStorageBackend, s.Backend)
	}
	if _, err := compression.Get(s.Compression); err != nil {
		return err
	}
	if s.KeepSnapshots <= 0 {
		return ErrKeepSnapshots
	}
	return nil
}

// ParseSchedule parses a payout schedule the way ValidateConfig does.
func ParseSchedule(spec string) (cron.Schedule, error) {
	return cronParser.Parse(spec)
}
