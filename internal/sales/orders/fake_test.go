package orders

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/ar"
	"github.com/odyssey-erp/backoffice/internal/customers"
	"github.com/odyssey-erp/backoffice/internal/delivery"
	"github.com/odyssey-erp/backoffice/internal/inventory"
	"github.com/odyssey-erp/backoffice/internal/sequence"
)

type memCustomer struct {
	summary     CustomerSummary
	balance     decimal.Decimal
	outstanding decimal.Decimal
}

type memState struct {
	orders     map[int64]SalesOrder
	stock      map[int64]int64
	customers  map[int64]memCustomer
	quotes     map[int64]QuoteRef
	deliveries []delivery.SalesDelivery
	invoices   []ar.Invoice
	numbers    map[sequence.Family][]string
	nextID     int64
}

func (s memState) clone() memState {
	c := memState{
		orders:     make(map[int64]SalesOrder, len(s.orders)),
		stock:      make(map[int64]int64, len(s.stock)),
		customers:  make(map[int64]memCustomer, len(s.customers)),
		quotes:     make(map[int64]QuoteRef, len(s.quotes)),
		deliveries: append([]delivery.SalesDelivery(nil), s.deliveries...),
		invoices:   append([]ar.Invoice(nil), s.invoices...),
		numbers:    make(map[sequence.Family][]string, len(s.numbers)),
		nextID:     s.nextID,
	}
	for k, v := range s.orders {
		v.Items = append([]SalesOrderItem(nil), v.Items...)
		c.orders[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.quotes {
		c.quotes[k] = v
	}
	for k, v := range s.numbers {
		c.numbers[k] = append([]string(nil), v...)
	}
	return c
}

// memRepo is an in-memory Repository whose transactions roll back on error.
// With replays > 0 every transaction body first runs that many times against a
// scratch copy that is thrown away, the way a serialization retry discards work.
type memRepo struct {
	state   memState
	txCount int
	failTx  error
	replays int
}

func newMemRepo() *memRepo {
	return &memRepo{state: memState{
		orders:    map[int64]SalesOrder{},
		stock:     map[int64]int64{},
		customers: map[int64]memCustomer{},
		quotes:    map[int64]QuoteRef{},
		numbers:   map[sequence.Family][]string{},
	}}
}

func (r *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.txCount++
	if r.failTx != nil {
		return r.failTx
	}
	for i := 0; i < r.replays; i++ {
		scratch := r.state.clone()
		if err := fn(ctx, &memTx{state: &scratch}); err != nil {
			return err
		}
	}
	working := r.state.clone()
	if err := fn(ctx, &memTx{state: &working}); err != nil {
		return err
	}
	r.state = working
	return nil
}

func (r *memRepo) Get(_ context.Context, id int64) (*SalesOrder, error) {
	o, ok := r.state.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o.Items = append([]SalesOrderItem(nil), o.Items...)
	return &o, nil
}

func (r *memRepo) order(id int64) SalesOrder {
	return r.state.orders[id]
}

type memTx struct {
	state *memState
}

func (t *memTx) id() int64 {
	t.state.nextID++
	return t.state.nextID
}

func (t *memTx) GetForUpdate(_ context.Context, id int64) (*SalesOrder, error) {
	o, ok := t.state.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o.Items = append([]SalesOrderItem(nil), o.Items...)
	return &o, nil
}

func (t *memTx) Insert(_ context.Context, o *SalesOrder) error {
	o.ID = t.id()
	for i := range o.Items {
		o.Items[i].ID = t.id()
	}
	t.state.numbers[sequence.SalesOrder] = append(t.state.numbers[sequence.SalesOrder], o.OrderNumber)
	stored := *o
	stored.Items = append([]SalesOrderItem(nil), o.Items...)
	t.state.orders[o.ID] = stored
	return nil
}

func (t *memTx) UpdateTransition(_ context.Context, o *SalesOrder) error {
	if _, ok := t.state.orders[o.ID]; !ok {
		return ErrOrderNotFound
	}
	t.state.orders[o.ID] = *o
	return nil
}

func (t *memTx) MissingProducts(_ context.Context, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if _, ok := t.state.stock[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing, nil
}

func (t *memTx) Quote(_ context.Context, id int64) (QuoteRef, bool, error) {
	q, ok := t.state.quotes[id]
	return q, ok, nil
}

func (t *memTx) Customer(_ context.Context, id int64) (*CustomerSummary, bool, error) {
	c, ok := t.state.customers[id]
	if !ok {
		return nil, false, nil
	}
	summary := c.summary
	return &summary, true, nil
}

func (t *memTx) Sequences() sequence.Store { return memSequences{state: t.state} }

func (t *memTx) Stock() inventory.Store { return memStock{state: t.state} }

func (t *memTx) Balances() customers.Store { return memBalances{state: t.state} }

func (t *memTx) CreateDelivery(_ context.Context, d *delivery.SalesDelivery) error {
	for _, existing := range t.state.deliveries {
		if existing.SalesOrderID == d.SalesOrderID {
			return delivery.ErrAlreadyDelivered
		}
	}
	d.ID = t.id()
	t.state.deliveries = append(t.state.deliveries, *d)
	t.state.numbers[sequence.Delivery] = append(t.state.numbers[sequence.Delivery], d.DeliveryNumber)
	return nil
}

func (t *memTx) CreateInvoice(_ context.Context, inv *ar.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	for _, existing := range t.state.invoices {
		if existing.SalesOrderID == inv.SalesOrderID {
			return errors.New("invoice already exists for order")
		}
	}
	inv.ID = t.id()
	t.state.invoices = append(t.state.invoices, *inv)
	t.state.numbers[sequence.Invoice] = append(t.state.numbers[sequence.Invoice], inv.InvoiceNumber)
	return nil
}

type memSequences struct{ state *memState }

func (m memSequences) LastNumber(_ context.Context, f sequence.Family) (string, bool, error) {
	list := m.state.numbers[f]
	if len(list) == 0 {
		return "", false, nil
	}
	return list[len(list)-1], true, nil
}

func (m memSequences) Count(_ context.Context, f sequence.Family) (int64, error) {
	return int64(len(m.state.numbers[f])), nil
}

type memStock struct{ state *memState }

func (m memStock) OnHand(_ context.Context, ids []int64) (map[int64]int64, error) {
	out := map[int64]int64{}
	for _, id := range ids {
		if q, ok := m.state.stock[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (m memStock) Decrement(_ context.Context, id, qty int64) error {
	if m.state.stock[id] < qty {
		return inventory.ErrInsufficientStock
	}
	m.state.stock[id] -= qty
	return nil
}

type memBalances struct{ state *memState }

func (m memBalances) AddToBalance(_ context.Context, id int64, delta decimal.Decimal) (bool, error) {
	c, ok := m.state.customers[id]
	if !ok {
		return false, nil
	}
	c.balance = c.balance.Add(delta)
	c.outstanding = c.outstanding.Add(delta)
	m.state.customers[id] = c
	return true, nil
}
