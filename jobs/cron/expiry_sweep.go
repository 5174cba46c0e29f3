package cron

import (
	log "github.com/sirupsen/logrus"

	"github.com/zsmartex/rampx/ledger"
)

// ExpirySweepJob refunds orders that blew past a deadline without anyone
// touching them. The mutating calls settle expiry on their own, so the
// sweep only shortens how long a refund waits.
type ExpirySweepJob struct {
	Ledger *ledger.Ledger
}

func (j *ExpirySweepJob) Process() {
	ids, err := j.Ledger.DueOrders()
	if err != nil {
		log.Errorf("expiry sweep scan: %v", err)
		return
	}

	for _, id := range ids {
		refunded, err := j.Ledger.SettleExpired(id)
		if err != nil {
			log.WithError(err).Errorf("expiry sweep for order %d", id)
			continue
		}

		if refunded {
			log.Infof("order %d refunded by sweep", id)
		}
	}
}
