package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentTransaction_Terminal(t *testing.T) {
	cases := []struct {
		status   string
		terminal bool
	}{
		{TransactionStatusPending, false},
		{TransactionStatusProcessing, false},
		{TransactionStatusCompleted, true},
		{TransactionStatusFailed, true},
		{TransactionStatusCancelled, true},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			tx := &PaymentTransaction{Status: tc.status}
			assert.Equal(t, tc.terminal, tx.Terminal())
		})
	}
}
