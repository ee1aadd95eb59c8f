package node

import (
	"errors"

	"github.com/robfig/cron/v3"

	"github.com/LeJamon/goMIXR/internal/config"
	"github.com/LeJamon/goMIXR/internal/core/failure"
	"github.com/LeJamon/goMIXR/internal/core/ledger"
	"github.com/LeJamon/goMIXR/internal/core/payout"
)

// schedulePayouts registers the periodic payout cycle when one is
// configured. The scheduler starts with Run.
func (n *Node) schedulePayouts() error {
	spec := n.cfg.Payout.Schedule
	if spec == "" {
		return nil
	}
	schedule, err := config.ParseSchedule(spec)
	if err != nil {
		return err
	}
	n.scheduler = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	n.scheduler.Schedule(schedule, cron.FuncJob(n.runPayout))
	n.log.Info("payouts scheduled", "schedule", spec, "operator", n.operator)
	return nil
}

var errNothingToPay = errors.New("empty fee pool or no ranked agents")

// runPayout runs one payout cycle as the configured operator. A cycle with
// nothing to distribute is skipped instead of committing an empty payout.
func (n *Node) runPayout() {
	var report payout.Report
	err := n.Exec(func(e *ledger.Engine) error {
		if e.FeePool().IsZero() || len(e.Ranking()) == 0 {
			return errNothingToPay
		}
		var err error
		report, err = e.PayoutFees(n.operator)
		return err
	})
	switch {
	case err == nil:
		n.log.Info("payout cycle complete", "paid", report.Paid, "agents", len(report.Agents), "residue", report.Residue)
	case errors.Is(err, errNothingToPay):
		n.log.Debug("payout cycle skipped", "reason", err)
	default:
		n.log.Error("payout cycle failed", "error", err, "kind", failure.KindOf(err))
	}
}
