package confirmation

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock notifier ---

type mockNotifier struct {
	customerSends int
	adminSends    int
	lastOrder     Order
	customerErr   error
	adminErr      error
}

func (m *mockNotifier) OrderConfirmation(_ context.Context, o Order) error {
	m.customerSends++
	m.lastOrder = o
	return m.customerErr
}

func (m *mockNotifier) AdminAlert(_ context.Context, o Order) error {
	m.adminSends++
	return m.adminErr
}

func completedEvent(session SessionData) Event {
	return Event{Type: EventCheckoutCompleted, Session: session}
}

// --- Tests ---

func TestProcess_UnsupportedEventType(t *testing.T) {
	n := &mockNotifier{}
	svc := NewService(n)

	_, err := svc.Process(context.Background(), Event{Type: "payment_intent.created"})

	require.ErrorIs(t, err, ErrUnsupportedEvent)
	assert.Zero(t, n.customerSends)
	assert.Zero(t, n.adminSends)
}

func TestProcess_MissingEmail(t *testing.T) {
	n := &mockNotifier{}
	svc := NewService(n)

	_, err := svc.Process(context.Background(), completedEvent(SessionData{
		AmountTotal: 1050,
		Metadata:    map[string]string{"orderDetails": "2x Crêpe Nutella (Sans composants)"},
	}))

	require.ErrorIs(t, err, ErrMissingEmail)
	assert.Zero(t, n.customerSends, "rejected event must send nothing")
	assert.Zero(t, n.adminSends)
}

func TestProcess_EmailFallbackToCustomerDetails(t *testing.T) {
	n := &mockNotifier{}
	svc := NewService(n)

	order, err := svc.Process(context.Background(), completedEvent(SessionData{
		DetailsEmail: "typed@example.com",
		AmountTotal:  450,
	}))

	require.NoError(t, err)
	assert.Equal(t, "typed@example.com", order.CustomerEmail)
}

func TestProcess_ExtractsOrder(t *testing.T) {
	n := &mockNotifier{}
	svc := NewService(n)

	order, err := svc.Process(context.Background(), completedEvent(SessionData{
		CustomerEmail: "client@example.com",
		AmountTotal:   1050,
		Metadata:      map[string]string{"orderDetails": "2x Crêpe Nutella (Sans composants)"},
	}))

	require.NoError(t, err)
	assert.Equal(t, "client@example.com", order.CustomerEmail)
	assert.Equal(t, "10.50", order.Amount)
	assert.Equal(t, "2x Crêpe Nutella (Sans composants)", order.Summary)

	assert.Equal(t, 1, n.customerSends)
	assert.Equal(t, 1, n.adminSends)
	assert.Equal(t, *order, n.lastOrder)
}

func TestProcess_SummaryFallback(t *testing.T) {
	n := &mockNotifier{}
	svc := NewService(n)

	order, err := svc.Process(context.Background(), completedEvent(SessionData{
		CustomerEmail: "client@example.com",
		AmountTotal:   1050,
	}))

	require.NoError(t, err)
	assert.Equal(t, "10.50", order.Amount)
	assert.Equal(t, UnknownOrder, order.Summary)
}

func TestProcess_SendFailuresAreSwallowed(t *testing.T) {
	tests := []struct {
		name        string
		customerErr error
		adminErr    error
	}{
		{"customer send fails", errors.New("mailbox full"), nil},
		{"admin send fails", nil, errors.New("smtp down")},
		{"both fail", errors.New("mailbox full"), errors.New("smtp down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &mockNotifier{customerErr: tt.customerErr, adminErr: tt.adminErr}
			svc := NewService(n)

			_, err := svc.Process(context.Background(), completedEvent(SessionData{
				CustomerEmail: "client@example.com",
				AmountTotal:   450,
			}))

			require.NoError(t, err, "accepted events succeed regardless of send outcome")
			assert.Equal(t, 1, n.customerSends, "both sends must be attempted")
			assert.Equal(t, 1, n.adminSends, "both sends must be attempted")
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "10.50", FormatAmount(1050))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "123.00", FormatAmount(12300))
}
