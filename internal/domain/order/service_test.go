package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamfit/storefront/internal/domain/apperr"
	"github.com/teamfit/storefront/internal/domain/cart"
	"github.com/teamfit/storefront/internal/domain/coupon"
	"github.com/teamfit/storefront/internal/domain/member"
)

// --- Fake transactional store ---
//
// fakeStore mimics the all-or-nothing semantics of the real pgx store: the
// callback works against a copy of the state and the copy only replaces the
// live state when the callback returns nil. Tests assert rollback by
// checking the live state after a failed Create.

type fakeState struct {
	lines       map[int64][]cart.ProductLine // member id -> cart lines
	grants      map[int64]*coupon.Grant
	orders      []*Order
	nextOrderID int64
}

func (s *fakeState) clone() *fakeState {
	cp := &fakeState{
		lines:       make(map[int64][]cart.ProductLine, len(s.lines)),
		grants:      make(map[int64]*coupon.Grant, len(s.grants)),
		nextOrderID: s.nextOrderID,
	}
	for id, ls := range s.lines {
		cp.lines[id] = append([]cart.ProductLine(nil), ls...)
	}
	for id, g := range s.grants {
		gc := *g
		cp.grants[id] = &gc
	}
	for _, o := range s.orders {
		oc := *o
		cp.orders = append(cp.orders, &oc)
	}
	return cp
}

type fakeStore struct {
	state *fakeState
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: &fakeState{
		lines:       map[int64][]cart.ProductLine{},
		grants:      map[int64]*coupon.Grant{},
		nextOrderID: 1,
	}}
}

func (f *fakeStore) WithinTx(_ context.Context, fn func(tx Tx) error) error {
	work := f.state.clone()
	if err := fn(&fakeTx{state: work}); err != nil {
		return err
	}
	f.state = work
	return nil
}

type fakeTx struct {
	state *fakeState
}

func (t *fakeTx) CartLines(_ context.Context, memberID int64) ([]cart.ProductLine, error) {
	return append([]cart.ProductLine(nil), t.state.lines[memberID]...), nil
}

func (t *fakeTx) CouponByID(_ context.Context, id int64) (*coupon.Grant, error) {
	g, ok := t.state.grants[id]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	gc := *g
	return &gc, nil
}

func (t *fakeTx) RedeemCoupon(_ context.Context, id int64) error {
	g, ok := t.state.grants[id]
	if !ok {
		return coupon.ErrNotFound
	}
	if g.Used {
		return coupon.ErrAlreadyUsed
	}
	g.Used = true
	return nil
}

func (t *fakeTx) DeleteCart(_ context.Context, cartID int64) error {
	for memberID, lines := range t.state.lines {
		for i, l := range lines {
			if l.CartID == cartID {
				t.state.lines[memberID] = append(lines[:i:i], lines[i+1:]...)
				return nil
			}
		}
	}
	return cart.ErrNotFound
}

func (t *fakeTx) InsertOrder(_ context.Context, o *Order) error {
	o.ID = t.state.nextOrderID
	o.CreatedAt = time.Now()
	t.state.nextOrderID++
	oc := *o
	t.state.orders = append(t.state.orders, &oc)
	return nil
}

// --- Mock repositories ---

type mockMemberRepo struct {
	ids map[int64]struct{}
}

func (m *mockMemberRepo) FindByID(_ context.Context, id int64) (*member.Member, error) {
	if _, ok := m.ids[id]; !ok {
		return nil, apperr.New(apperr.CodeUserNotFound, "member not found")
	}
	return &member.Member{ID: id}, nil
}

func (m *mockMemberRepo) FindByEmail(_ context.Context, _ string) (*member.Member, error) {
	return nil, apperr.New(apperr.CodeUserNotFound, "member not found")
}

type mockOrderRepo struct {
	byID map[int64]*Order

	lastDelivery *DeliveryInfo
	lastStatus   Status
	listPage     int
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) ListByMember(_ context.Context, memberID int64, page int) ([]Order, int, error) {
	m.listPage = page
	var out []Order
	for _, o := range m.byID {
		if o.MemberID == memberID && !o.IsDeleted {
			out = append(out, *o)
		}
	}
	return out, 1, nil
}

func (m *mockOrderRepo) UpdateDelivery(_ context.Context, id int64, info DeliveryInfo) error {
	o := m.byID[id]
	if o.Status != StatusOrdered {
		return ErrModificationBlocked
	}
	m.lastDelivery = &info
	o.DeliveryAddress = info.Address
	return nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	o := m.byID[id]
	if o.Status != StatusOrdered {
		return ErrModificationBlocked
	}
	m.lastStatus = status
	o.Status = status
	return nil
}

// staleReadOrderRepo reports every order as still ORDERED on reads while the
// stored state says otherwise, mimicking a status flip between the service's
// read and its write.
type staleReadOrderRepo struct {
	mockOrderRepo
}

func (m *staleReadOrderRepo) GetByID(_ context.Context, id int64) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	cp.Status = StatusOrdered
	return &cp, nil
}

// --- Helpers ---

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(cartID, productID int64, name string, p string, stock, quantity int) cart.ProductLine {
	return cart.ProductLine{
		CartID:       cartID,
		ProductID:    productID,
		ProductName:  name,
		ProductPrice: price(p),
		Stock:        stock,
		Quantity:     quantity,
	}
}

func newTestService(store *fakeStore, orders Repository) *Service {
	return NewService(&mockMemberRepo{ids: map[int64]struct{}{1: {}, 2: {}}}, orders, store)
}

func deliveryReq(items ...ItemRequest) CreateRequest {
	return CreateRequest{
		Delivery: DeliveryInfo{
			Address:  "12 Teheran-ro, Seoul",
			Receiver: "Kim Jiwoo",
			Phone:    "010-1234-5678",
			Fee:      price("3000"),
		},
		Items: items,
	}
}

// --- Create ---

func TestCreate_SingleLine(t *testing.T) {
	store := newFakeStore()
	store.state.lines[1] = []cart.ProductLine{line(100, 10, "Yoga Mat", "25000", 5, 2)}
	svc := newTestService(store, &mockOrderRepo{})

	o, err := svc.Create(context.Background(), 1, deliveryReq(
		ItemRequest{ProductID: 10, DiscountedPrice: price("50000")},
	))
	require.NoError(t, err)

	require.Len(t, o.Products, 1)
	p := o.Products[0]
	assert.Equal(t, "Yoga Mat", p.ProductName)
	assert.True(t, price("25000").Equal(p.ProductPrice))
	assert.Equal(t, 2, p.Quantity)
	assert.Nil(t, p.CouponGrantID)
	assert.True(t, price("50000").Equal(o.TotalPrice))
	assert.Equal(t, StatusOrdered, o.Status)

	// Cart emptied, order persisted.
	assert.Empty(t, store.state.lines[1])
	require.Len(t, store.state.orders, 1)
}

func TestCreate_WithCoupon(t *testing.T) {
	store := newFakeStore()
	store.state.lines[1] = []cart.ProductLine{line(100, 10, "Yoga Mat", "25000", 5, 2)}
	store.state.grants[7] = &coupon.Grant{ID: 7, MemberID: 1, Name: "WELCOME10"}
	svc := newTestService(store, &mockOrderRepo{})

	grantID := int64(7)
	o, err := svc.Create(context.Background(), 1, deliveryReq(
		ItemRequest{ProductID: 10, DiscountedPrice: price("45000"), CouponGrantID: &grantID},
	))
	require.NoError(t, err)

	require.NotNil(t, o.Products[0].CouponGrantID)
	assert.Equal(t, int64(7), *o.Products[0].CouponGrantID)
	assert.True(t, price("45000").Equal(o.TotalPrice))
	assert.True(t, store.state.grants[7].Used)
}

func TestCreate_TotalAccumulatesLines(t *testing.T) {
	store := newFakeStore()
	store.state.lines[1] = []cart.ProductLine{
		line(100, 10, "Yoga Mat", "25000", 5, 2),
		line(101, 11, "Kettlebell", "40000", 3, 1),
	}
	svc := newTestService(store, &mockOrderRepo{})

	o, err := svc.Create(context.Background(), 1, deliveryReq(
		ItemRequest{ProductID: 10, DiscountedPrice: price("50000")},
		ItemRequest{ProductID: 11, DiscountedPrice: price("40000")},
	))
	require.NoError(t, err)

	require.Len(t, o.Products, 2)
	assert.True(t, price("90000").Equal(o.TotalPrice))
}

func TestCreate_EmptyCart(t *testing.T) {
	svc := newTestService(newFakeStore(), &mockOrderRepo{})

	_, err := svc.Create(context.Background(), 1, deliveryReq())
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCreate_UnknownMember(t *testing.T) {
	svc := newTestService(newFakeStore(), &mockOrderRepo{})

	_, err := svc.Create(context.Background(), 404, deliveryReq())
	assert.True(t, apperr.IsCode(err, apperr.CodeUserNotAuthorized))
}

func TestCreate_OutOfStock_NothingPersists(t *testing.T) {
	store := newFakeStore()
	store.state.lines[1] = []cart.ProductLine{line(100, 10, "Yoga Mat", "25000", 5, 10)}
	svc := newTestService(store, &mockOrderRepo{})

	_, err := svc.Create(context.Background(), 1, deliveryReq(
		ItemRequest{ProductID: 10, DiscountedPrice: price("250000")},
	))
	assert.True(t, apperr.IsCode(err, apperr.CodeOutOfStock))

	// Cart unchanged, no order created.
	assert.Len(t, store.state.lines[1], 1)
	assert.Empty(t, store.state.orders)
}

func TestCreate_SecondLineFails_RollsBackFirst(t *testing.T) {
	// First line redeems a coupon and deletes its cart row; the second line
	// is out of stock. The whole call must leave no trace.
	store := newFakeStore()
	store.state.lines[1] = []cart.ProductLine{
		line(100, 10, "Yoga Mat", "25000", 5, 2),
		line(101, 11, "Kettlebell", "40000", 1, 3),
	}
	store.state.grants[7] = &coupon.Grant{ID: 7, MemberID: 1, Name: "WELCOME10"}
	svc := newTestService(store, &mockOrderRepo{})

	grantID := int64(7)
	_, err := svc.Create(context.Background(), 1, deliveryReq(
		ItemRequest{ProductID: 10, DiscountedPrice: price("45000"), CouponGrantID: &grantID},
		ItemRequest{ProductID: 11, DiscountedPrice: price("120000")},
	))
	assert.True(t, apperr.IsCode(err, apperr.CodeOutOfStock))

	assert.Len(t, store.state.lines[1], 2, "cart rows must survive the rollback")
	assert.False(t, store.state.grants[7].Used, "coupon redemption must roll back")
	assert.Empty(t, store.state.orders)
}

func TestCreate_MissingRequestItem(t *testing.T) {
	store := newFakeStore()
	store.state.lines[1] = []cart.ProductLine{line(100, 10, "Yoga Mat", "25000", 5, 2)}
	svc := newTestService(store, &mockOrderRepo{})

	_, err := svc.Create(context.Background(), 1, deliveryReq(
		ItemRequest{ProductID: 999, DiscountedPrice: price("1")},
	))
	assert.True(t, apperr.IsCode(err, apperr.CodeOrderProductNotFound))
	assert.Len(t, store.state.lines[1], 1)
}

func TestCreate_CouponMissing(t *testing.T) {
	store := newFakeStore()
	store.state.lines[1] = []cart.ProductLine{line(100, 10, "Yoga Mat", "25000", 5, 2)}
	svc := newTestService(store, &mockOrderRepo{})

	grantID := int64(404)
	_, err := svc.Create(context.Background(), 1, deliveryReq(
		ItemRequest{ProductID: 10, DiscountedPrice: price("45000"), CouponGrantID: &grantID},
	))
	assert.True(t, apperr.IsCode(err, apperr.CodeCouponNotFound))
	assert.Len(t, store.state.lines[1], 1)
}

func TestCreate_CouponAlreadyUsed(t *testing.T) {
	store := newFakeStore()
	store.state.lines[1] = []cart.ProductLine{line(100, 10, "Yoga Mat", "25000", 5, 2)}
	store.state.grants[7] = &coupon.Grant{ID: 7, MemberID: 1, Name: "WELCOME10", Used: true}
	svc := newTestService(store, &mockOrderRepo{})

	grantID := int64(7)
	_, err := svc.Create(context.Background(), 1, deliveryReq(
		ItemRequest{ProductID: 10, DiscountedPrice: price("45000"), CouponGrantID: &grantID},
	))
	assert.True(t, apperr.IsCode(err, apperr.CodeCouponAlreadyUsed))
	assert.Len(t, store.state.lines[1], 1)
	assert.Empty(t, store.state.orders)
}

// --- Get / List ---

func TestGet_OwnerOnly(t *testing.T) {
	orders := &mockOrderRepo{byID: map[int64]*Order{
		5: {ID: 5, MemberID: 1, Status: StatusOrdered},
	}}
	svc := newTestService(newFakeStore(), orders)

	_, err := svc.Get(context.Background(), 2, 5)
	assert.True(t, apperr.IsCode(err, apperr.CodeUserNotAuthorized))

	o, err := svc.Get(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), o.ID)
}

func TestGet_Missing(t *testing.T) {
	svc := newTestService(newFakeStore(), &mockOrderRepo{byID: map[int64]*Order{}})

	_, err := svc.Get(context.Background(), 1, 99)
	assert.True(t, apperr.IsCode(err, apperr.CodeOrderNotFound))
}

func TestList_ClampsPage(t *testing.T) {
	orders := &mockOrderRepo{byID: map[int64]*Order{}}
	svc := newTestService(newFakeStore(), orders)

	_, err := svc.List(context.Background(), 1, -4)
	require.NoError(t, err)
	assert.Equal(t, 1, orders.listPage)
}

// --- Update / Cancel ---

func TestUpdateDelivery(t *testing.T) {
	orders := &mockOrderRepo{byID: map[int64]*Order{
		5: {ID: 5, MemberID: 1, Status: StatusOrdered},
	}}
	svc := newTestService(newFakeStore(), orders)

	o, err := svc.UpdateDelivery(context.Background(), 1, 5, DeliveryInfo{
		Address:  "77 Haeundae-ro, Busan",
		Receiver: "Lee Haneul",
		Phone:    "010-9999-0000",
		Fee:      price("0"),
	})
	require.NoError(t, err)
	assert.Equal(t, "77 Haeundae-ro, Busan", o.DeliveryAddress)
	require.NotNil(t, orders.lastDelivery)
}

func TestUpdateDelivery_NotOwner(t *testing.T) {
	orders := &mockOrderRepo{byID: map[int64]*Order{
		5: {ID: 5, MemberID: 1, Status: StatusOrdered},
	}}
	svc := newTestService(newFakeStore(), orders)

	_, err := svc.UpdateDelivery(context.Background(), 2, 5, DeliveryInfo{})
	assert.True(t, apperr.IsCode(err, apperr.CodeUserNotAuthorized))
	assert.Nil(t, orders.lastDelivery)
}

func TestUpdateDelivery_CancelledOrder_BlockedForOwner(t *testing.T) {
	orders := &mockOrderRepo{byID: map[int64]*Order{
		5: {ID: 5, MemberID: 1, Status: StatusCancelled},
	}}
	svc := newTestService(newFakeStore(), orders)

	_, err := svc.UpdateDelivery(context.Background(), 1, 5, DeliveryInfo{})
	assert.True(t, apperr.IsCode(err, apperr.CodeOrderModificationBlocked))
}

func TestCancel(t *testing.T) {
	orders := &mockOrderRepo{byID: map[int64]*Order{
		5: {ID: 5, MemberID: 1, Status: StatusOrdered},
	}}
	svc := newTestService(newFakeStore(), orders)

	require.NoError(t, svc.Cancel(context.Background(), 1, 5))
	assert.Equal(t, StatusCancelled, orders.lastStatus)

	// Cancel is terminal: a second attempt is blocked, owner or not.
	err := svc.Cancel(context.Background(), 1, 5)
	assert.True(t, apperr.IsCode(err, apperr.CodeOrderModificationBlocked))
}

func TestCancel_StatusFlipsAfterRead(t *testing.T) {
	orders := &staleReadOrderRepo{mockOrderRepo{byID: map[int64]*Order{
		5: {ID: 5, MemberID: 1, Status: StatusCancelled},
	}}}
	svc := newTestService(newFakeStore(), orders)

	err := svc.Cancel(context.Background(), 1, 5)
	assert.True(t, apperr.IsCode(err, apperr.CodeOrderModificationBlocked))
	assert.Equal(t, StatusCancelled, orders.byID[5].Status)
}

func TestUpdateDelivery_StatusFlipsAfterRead(t *testing.T) {
	orders := &staleReadOrderRepo{mockOrderRepo{byID: map[int64]*Order{
		5: {ID: 5, MemberID: 1, Status: StatusCancelled},
	}}}
	svc := newTestService(newFakeStore(), orders)

	_, err := svc.UpdateDelivery(context.Background(), 1, 5, DeliveryInfo{Address: "x"})
	assert.True(t, apperr.IsCode(err, apperr.CodeOrderModificationBlocked))
	assert.Nil(t, orders.lastDelivery)
}

func TestCancel_NotOwner(t *testing.T) {
	orders := &mockOrderRepo{byID: map[int64]*Order{
		5: {ID: 5, MemberID: 1, Status: StatusOrdered},
	}}
	svc := newTestService(newFakeStore(), orders)

	err := svc.Cancel(context.Background(), 2, 5)
	assert.True(t, apperr.IsCode(err, apperr.CodeUserNotAuthorized))
	assert.Equal(t, StatusOrdered, orders.byID[5].Status)
}
