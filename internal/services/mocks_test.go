package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They reproduce the conditional-update semantics
// the Mongo implementations rely on (guarded debits, pending-only transitions,
// stock decrements) so the services can be tested without a database.

type memTenantRepo struct {
	mu      sync.Mutex
	tenants map[primitive.ObjectID]*models.Tenant
}

func newMemTenantRepo() *memTenantRepo {
	return &memTenantRepo{tenants: make(map[primitive.ObjectID]*models.Tenant)}
}

func (r *memTenantRepo) Create(_ context.Context, tenant *models.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.VendorCode == tenant.VendorCode {
			return repositories.ErrDuplicateKey
		}
	}
	if tenant.ID.IsZero() {
		tenant.ID = primitive.NewObjectID()
	}
	tenant.CreatedAt = time.Now()
	r.tenants[tenant.ID] = tenant
	return nil
}

func (r *memTenantRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tenant, ok := r.tenants[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return tenant, nil
}

func (r *memTenantRepo) FindByVendorCode(_ context.Context, vendorCode string) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.VendorCode == vendorCode {
			return t, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memTenantRepo) Update(_ context.Context, tenant *models.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[tenant.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.tenants[tenant.ID] = tenant
	return nil
}

type memVendorUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.VendorUser
}

func newMemVendorUserRepo() *memVendorUserRepo {
	return &memVendorUserRepo{users: make(map[primitive.ObjectID]*models.VendorUser)}
}

func (r *memVendorUserRepo) Create(_ context.Context, user *models.VendorUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicateKey
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return nil
}

func (r *memVendorUserRepo) FindByEmail(_ context.Context, email string) (*models.VendorUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memVendorUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.VendorUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

type memCustomerRepo struct {
	mu        sync.Mutex
	customers map[primitive.ObjectID]*models.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: make(map[primitive.ObjectID]*models.Customer)}
}

func (r *memCustomerRepo) Create(_ context.Context, customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.TenantID == customer.TenantID && c.Phone == customer.Phone {
			return repositories.ErrDuplicateKey
		}
	}
	if customer.ID.IsZero() {
		customer.ID = primitive.NewObjectID()
	}
	customer.CreatedAt = time.Now()
	r.customers[customer.ID] = customer
	return nil
}

func (r *memCustomerRepo) FindByID(_ context.Context, tenantID, id primitive.ObjectID) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	customer, ok := r.customers[id]
	if !ok || customer.TenantID != tenantID {
		return nil, repositories.ErrNotFound
	}
	return customer, nil
}

func (r *memCustomerRepo) FindByPhone(_ context.Context, tenantID primitive.ObjectID, phone string) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.TenantID == tenantID && c.Phone == phone {
			return c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memCustomerRepo) FindByTenant(_ context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Customer
	for _, c := range r.customers {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return paginate(out, page, limit), nil
}

func (r *memCustomerRepo) Count(_ context.Context, tenantID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.customers {
		if c.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *memCustomerRepo) Update(_ context.Context, customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[customer.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *memCustomerRepo) SetBlocked(_ context.Context, tenantID, id primitive.ObjectID, blocked bool, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	customer, ok := r.customers[id]
	if !ok || customer.TenantID != tenantID {
		return repositories.ErrNotFound
	}
	if blocked {
		customer.Status = models.LoyaltyStatusBlocked
		customer.BlockReason = reason
	} else {
		customer.Status = models.LoyaltyStatusActive
		customer.BlockReason = ""
	}
	return nil
}

type balanceKey struct {
	tenantID   primitive.ObjectID
	customerID primitive.ObjectID
}

type memBalanceRepo struct {
	mu       sync.Mutex
	balances map[balanceKey]*models.PointsBalance
}

func newMemBalanceRepo() *memBalanceRepo {
	return &memBalanceRepo{balances: make(map[balanceKey]*models.PointsBalance)}
}

func (r *memBalanceRepo) Create(_ context.Context, balance *models.PointsBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey{balance.TenantID, balance.CustomerID}
	if _, ok := r.balances[key]; ok {
		return repositories.ErrDuplicateKey
	}
	if balance.ID.IsZero() {
		balance.ID = primitive.NewObjectID()
	}
	r.balances[key] = balance
	return nil
}

func (r *memBalanceRepo) FindByCustomer(_ context.Context, tenantID, customerID primitive.ObjectID) (*models.PointsBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance, ok := r.balances[balanceKey{tenantID, customerID}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return balance, nil
}

func (r *memBalanceRepo) ApplyDelta(_ context.Context, tenantID, customerID primitive.ObjectID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance, ok := r.balances[balanceKey{tenantID, customerID}]
	if !ok {
		return repositories.ErrNotFound
	}
	if delta < 0 && balance.CurrentBalance < -delta {
		return repositories.ErrInsufficientBalance
	}
	balance.CurrentBalance += delta
	if delta >= 0 {
		balance.TotalEarned += delta
	} else {
		balance.TotalRedeemed += -delta
	}
	balance.UpdatedAt = time.Now()
	return nil
}

func (r *memBalanceRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[balanceKey]*models.PointsBalance, len(r.balances))
	for key, balance := range r.balances {
		copied := *balance
		saved[key] = &copied
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.balances = saved
	}
}

type memTransactionRepo struct {
	mu           sync.Mutex
	transactions []*models.PointsTransaction
	failNext     bool
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{}
}

func (r *memTransactionRepo) Create(_ context.Context, transaction *models.PointsTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return errInjected
	}
	transaction.ID = primitive.NewObjectID()
	transaction.CreatedAt = time.Now()
	r.transactions = append(r.transactions, transaction)
	return nil
}

func (r *memTransactionRepo) FindByCustomer(_ context.Context, tenantID, customerID primitive.ObjectID, page, limit int) ([]*models.PointsTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PointsTransaction
	for _, txn := range r.transactions {
		if txn.TenantID == tenantID && txn.CustomerID == customerID {
			out = append(out, txn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page, limit), nil
}

func (r *memTransactionRepo) CountByCustomer(_ context.Context, tenantID, customerID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, txn := range r.transactions {
		if txn.TenantID == tenantID && txn.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (r *memTransactionRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make([]*models.PointsTransaction, len(r.transactions))
	copy(saved, r.transactions)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.transactions = saved
	}
}

type memPurchaseRepo struct {
	mu        sync.Mutex
	purchases map[primitive.ObjectID]*models.Purchase
	failNext  bool
}

func newMemPurchaseRepo() *memPurchaseRepo {
	return &memPurchaseRepo{purchases: make(map[primitive.ObjectID]*models.Purchase)}
}

func (r *memPurchaseRepo) Create(_ context.Context, purchase *models.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return errInjected
	}
	if purchase.ID.IsZero() {
		purchase.ID = primitive.NewObjectID()
	}
	purchase.CreatedAt = time.Now()
	r.purchases[purchase.ID] = purchase
	return nil
}

func (r *memPurchaseRepo) FindByID(_ context.Context, tenantID, id primitive.ObjectID) (*models.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	purchase, ok := r.purchases[id]
	if !ok || purchase.TenantID != tenantID {
		return nil, repositories.ErrNotFound
	}
	return purchase, nil
}

func (r *memPurchaseRepo) FindByTenant(_ context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Purchase
	for _, p := range r.purchases {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return paginate(out, page, limit), nil
}

func (r *memPurchaseRepo) Count(_ context.Context, tenantID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.purchases {
		if p.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *memPurchaseRepo) AverageAmountByCustomer(_ context.Context, tenantID, customerID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum, count int64
	for _, p := range r.purchases {
		if p.TenantID == tenantID && p.CustomerID == customerID {
			sum += p.AmountMinor
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return sum / count, nil
}

func (r *memPurchaseRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[primitive.ObjectID]*models.Purchase, len(r.purchases))
	for id, purchase := range r.purchases {
		copied := *purchase
		saved[id] = &copied
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.purchases = saved
	}
}

type memClaimRepo struct {
	mu     sync.Mutex
	claims map[primitive.ObjectID]*models.PurchaseClaim
}

func newMemClaimRepo() *memClaimRepo {
	return &memClaimRepo{claims: make(map[primitive.ObjectID]*models.PurchaseClaim)}
}

func (r *memClaimRepo) Create(_ context.Context, claim *models.PurchaseClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	claim.ID = primitive.NewObjectID()
	claim.CreatedAt = time.Now()
	r.claims[claim.ID] = claim
	return nil
}

func (r *memClaimRepo) FindByID(_ context.Context, tenantID, id primitive.ObjectID) (*models.PurchaseClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	claim, ok := r.claims[id]
	if !ok || claim.TenantID != tenantID {
		return nil, repositories.ErrNotFound
	}
	copied := *claim
	return &copied, nil
}

func (r *memClaimRepo) FindByTenantAndStatus(_ context.Context, tenantID primitive.ObjectID, status models.ClaimStatus, page, limit int) ([]*models.PurchaseClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PurchaseClaim
	for _, c := range r.claims {
		if c.TenantID == tenantID && c.Status == status {
			out = append(out, c)
		}
	}
	return paginate(out, page, limit), nil
}

func (r *memClaimRepo) CountByTenantAndStatus(_ context.Context, tenantID primitive.ObjectID, status models.ClaimStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.claims {
		if c.TenantID == tenantID && c.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memClaimRepo) MarkReviewed(_ context.Context, id primitive.ObjectID, status models.ClaimStatus, rejectionReason string, purchaseID primitive.ObjectID, reviewedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	claim, ok := r.claims[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if claim.Status != models.ClaimStatusPending {
		return repositories.ErrStateConflict
	}
	claim.Status = status
	claim.RejectionReason = rejectionReason
	claim.PurchaseID = purchaseID
	claim.ReviewedAt = &reviewedAt
	return nil
}

func (r *memClaimRepo) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.claims {
		if c.Status == models.ClaimStatusPending && c.ExpiresAt.Before(now) {
			c.Status = models.ClaimStatusExpired
			n++
		}
	}
	return n, nil
}

func (r *memClaimRepo) CountReviewedByCustomer(_ context.Context, tenantID, customerID primitive.ObjectID) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reviewed, rejected int64
	for _, c := range r.claims {
		if c.TenantID != tenantID || c.CustomerID != customerID {
			continue
		}
		switch c.Status {
		case models.ClaimStatusApproved:
			reviewed++
		case models.ClaimStatusRejected:
			reviewed++
			rejected++
		}
	}
	return reviewed, rejected, nil
}

func (r *memClaimRepo) FindByCustomerSince(_ context.Context, tenantID, customerID primitive.ObjectID, since time.Time) ([]*models.PurchaseClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PurchaseClaim
	for _, c := range r.claims {
		if c.TenantID == tenantID && c.CustomerID == customerID && !c.CreatedAt.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memClaimRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[primitive.ObjectID]*models.PurchaseClaim, len(r.claims))
	for id, claim := range r.claims {
		copied := *claim
		saved[id] = &copied
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.claims = saved
	}
}

type memRewardRepo struct {
	mu      sync.Mutex
	rewards map[primitive.ObjectID]*models.Reward
}

func newMemRewardRepo() *memRewardRepo {
	return &memRewardRepo{rewards: make(map[primitive.ObjectID]*models.Reward)}
}

func (r *memRewardRepo) Create(_ context.Context, reward *models.Reward) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reward.ID.IsZero() {
		reward.ID = primitive.NewObjectID()
	}
	r.rewards[reward.ID] = reward
	return nil
}

func (r *memRewardRepo) FindByID(_ context.Context, tenantID, id primitive.ObjectID) (*models.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reward, ok := r.rewards[id]
	if !ok || reward.TenantID != tenantID || reward.DeletedAt != nil {
		return nil, repositories.ErrNotFound
	}
	copied := *reward
	return &copied, nil
}

func (r *memRewardRepo) FindByTenant(_ context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Reward
	for _, rw := range r.rewards {
		if rw.TenantID == tenantID && rw.DeletedAt == nil {
			out = append(out, rw)
		}
	}
	return paginate(out, page, limit), nil
}

func (r *memRewardRepo) Count(_ context.Context, tenantID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rw := range r.rewards {
		if rw.TenantID == tenantID && rw.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (r *memRewardRepo) Update(_ context.Context, reward *models.Reward) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rewards[reward.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.rewards[reward.ID] = reward
	return nil
}

func (r *memRewardRepo) SoftDelete(_ context.Context, tenantID, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reward, ok := r.rewards[id]
	if !ok || reward.TenantID != tenantID || reward.DeletedAt != nil {
		return repositories.ErrNotFound
	}
	now := time.Now()
	reward.DeletedAt = &now
	return nil
}

func (r *memRewardRepo) DecrementStock(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reward, ok := r.rewards[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if reward.StockQuantity == nil || *reward.StockQuantity <= 0 {
		return repositories.ErrStockDepleted
	}
	*reward.StockQuantity--
	return nil
}

func (r *memRewardRepo) IncrementStock(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reward, ok := r.rewards[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if reward.StockQuantity != nil {
		*reward.StockQuantity++
	}
	return nil
}

type memRedemptionRepo struct {
	mu          sync.Mutex
	redemptions map[primitive.ObjectID]*models.Redemption
}

func newMemRedemptionRepo() *memRedemptionRepo {
	return &memRedemptionRepo{redemptions: make(map[primitive.ObjectID]*models.Redemption)}
}

func (r *memRedemptionRepo) Create(_ context.Context, redemption *models.Redemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rd := range r.redemptions {
		if rd.TenantID == redemption.TenantID && rd.Code == redemption.Code {
			return repositories.ErrDuplicateKey
		}
	}
	redemption.ID = primitive.NewObjectID()
	redemption.CreatedAt = time.Now()
	r.redemptions[redemption.ID] = redemption
	return nil
}

func (r *memRedemptionRepo) FindByID(_ context.Context, tenantID, id primitive.ObjectID) (*models.Redemption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	redemption, ok := r.redemptions[id]
	if !ok || redemption.TenantID != tenantID {
		return nil, repositories.ErrNotFound
	}
	copied := *redemption
	return &copied, nil
}

func (r *memRedemptionRepo) FindByCode(_ context.Context, tenantID primitive.ObjectID, code string) (*models.Redemption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rd := range r.redemptions {
		if rd.TenantID == tenantID && rd.Code == code {
			copied := *rd
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memRedemptionRepo) FindByTenantAndStatus(_ context.Context, tenantID primitive.ObjectID, status models.RedemptionStatus, page, limit int) ([]*models.Redemption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Redemption
	for _, rd := range r.redemptions {
		if rd.TenantID == tenantID && rd.Status == status {
			out = append(out, rd)
		}
	}
	return paginate(out, page, limit), nil
}

func (r *memRedemptionRepo) CountByTenantAndStatus(_ context.Context, tenantID primitive.ObjectID, status models.RedemptionStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rd := range r.redemptions {
		if rd.TenantID == tenantID && rd.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memRedemptionRepo) CountByCustomerAndReward(_ context.Context, customerID, rewardID primitive.ObjectID, statuses []models.RedemptionStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rd := range r.redemptions {
		if rd.CustomerID != customerID || rd.RewardID != rewardID {
			continue
		}
		for _, status := range statuses {
			if rd.Status == status {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *memRedemptionRepo) MarkFulfilled(_ context.Context, id primitive.ObjectID, notes string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	redemption, ok := r.redemptions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if redemption.Status != models.RedemptionStatusPending {
		return repositories.ErrStateConflict
	}
	redemption.Status = models.RedemptionStatusFulfilled
	redemption.Notes = notes
	redemption.FulfilledAt = &at
	return nil
}

func (r *memRedemptionRepo) MarkClosed(_ context.Context, id primitive.ObjectID, status models.RedemptionStatus, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	redemption, ok := r.redemptions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if redemption.Status != models.RedemptionStatusPending {
		return repositories.ErrStateConflict
	}
	redemption.Status = status
	redemption.CancelReason = reason
	redemption.CancelledAt = &at
	return nil
}

func (r *memRedemptionRepo) FindDueForExpiry(_ context.Context, now time.Time, limit int) ([]*models.Redemption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Redemption
	for _, rd := range r.redemptions {
		if rd.Status == models.RedemptionStatusPending && rd.ExpiresAt.Before(now) {
			copied := *rd
			out = append(out, &copied)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

type memNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{}
}

func (r *memNotificationRepo) Create(_ context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = primitive.NewObjectID()
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *memNotificationRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.NotificationStatus, messageID, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			n.Status = status
			n.MessageID = messageID
			n.Error = errorMessage
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *memNotificationRepo) FindByStatus(_ context.Context, status models.NotificationStatus, page, limit int) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.Status == status {
			out = append(out, n)
		}
	}
	return paginate(out, page, limit), nil
}

// mockNotifier records customer messages instead of sending them.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockNotifier) Notify(_ context.Context, _ primitive.ObjectID, customer *models.Customer, body string) {
	if customer == nil || !customer.OptedIn {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, body)
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// memTxRunner mirrors the session-transaction semantics for the fakes: it
// snapshots the participating stores, runs fn, and restores the snapshots
// when fn fails. Transactions run one at a time; a call nested inside an open
// transaction joins it through the context.
type memTxRunner struct {
	mu     sync.Mutex
	stores []interface{ snapshot() func() }
}

type txKey struct{}

func newMemTxRunner(stores ...interface{ snapshot() func() }) *memTxRunner {
	return &memTxRunner{stores: stores}
}

func (r *memTxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	restores := make([]func(), 0, len(r.stores))
	for _, store := range r.stores {
		restores = append(restores, store.snapshot())
	}

	err := fn(context.WithValue(ctx, txKey{}, true))
	if err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}
	return err
}

var errInjected = &injectedError{}

type injectedError struct{}

func (*injectedError) Error() string { return "injected failure" }

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
