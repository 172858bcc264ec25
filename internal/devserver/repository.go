package devserver

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ordersync/ordersync/pkg/cache"
	"github.com/ordersync/ordersync/pkg/orders"
	"github.com/ordersync/ordersync/pkg/orm"
	"github.com/ordersync/ordersync/pkg/response"
)

const listGenKey = "orders:list:gen"

// ListQuery is the filter and window for a list call.
type ListQuery struct {
	Page     int
	Limit    int
	Search   string
	DateFrom string
	DateTo   string
}

// OrderRepository reads and writes order rows. List results are cached in
// redis under a generation counter; every write bumps the generation so
// stale pages simply stop being addressed.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type cachedPage struct {
	Data       []orders.Order      `json:"data"`
	Pagination response.Pagination `json:"pagination"`
}

func (r *OrderRepository) listCacheKey(q ListQuery) string {
	gen := cache.GetInt64(listGenKey)
	return fmt.Sprintf("orders:list:%d:%d:%d:%s:%s:%s", gen, q.Page, q.Limit, q.Search, q.DateFrom, q.DateTo)
}

func (r *OrderRepository) invalidateList() {
	// Bumping the generation abandons every cached page at once. A cache
	// error just means lists fall through to the database.
	_, _ = cache.Incr(listGenKey)
}

// List returns one page of orders, newest first, with pagination metadata.
func (r *OrderRepository) List(q ListQuery) ([]orders.Order, response.Pagination, error) {
	key := r.listCacheKey(q)
	var hit cachedPage
	if cache.Get(key, &hit) {
		return hit.Data, hit.Pagination, nil
	}

	query := orm.New(r.db.Model(&OrderRecord{}))
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query.Where("customer_name LIKE ? OR email LIKE ? OR product_name LIKE ?", like, like, like)
	}
	if q.DateFrom != "" {
		if from, err := time.Parse("2006-01-02", q.DateFrom); err == nil {
			query.Where("created_at >= ?", from)
		}
	}
	if q.DateTo != "" {
		if to, err := time.Parse("2006-01-02", q.DateTo); err == nil {
			query.Where("created_at < ?", to.AddDate(0, 0, 1))
		}
	}

	var rows []OrderRecord
	pagination, err := query.Order("created_at DESC").Paginate(q.Page, q.Limit).GetWithPagination(&rows)
	if err != nil {
		return nil, response.Pagination{}, fmt.Errorf("devserver: list orders: %w", err)
	}

	out := make([]orders.Order, len(rows))
	for i := range rows {
		out[i] = rows[i].API()
	}

	_ = cache.Set(key, cachedPage{Data: out, Pagination: pagination}, 5*time.Minute)
	return out, pagination, nil
}

// Find returns a single order by id.
func (r *OrderRepository) Find(id string) (*OrderRecord, error) {
	var row OrderRecord
	if err := r.db.First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts the order and invalidates cached lists.
func (r *OrderRepository) Create(row *OrderRecord) error {
	if err := r.db.Create(row).Error; err != nil {
		return fmt.Errorf("devserver: create order: %w", err)
	}
	r.invalidateList()
	return nil
}

// UpdateQuantity sets the quantity of one order.
func (r *OrderRepository) UpdateQuantity(id string, quantity int) (*OrderRecord, error) {
	row, err := r.Find(id)
	if err != nil {
		return nil, err
	}
	row.Quantity = quantity
	if err := r.db.Save(row).Error; err != nil {
		return nil, fmt.Errorf("devserver: update quantity: %w", err)
	}
	r.invalidateList()
	return row, nil
}

// Delete removes the order. Missing rows report gorm.ErrRecordNotFound.
func (r *OrderRepository) Delete(id string) error {
	res := r.db.Delete(&OrderRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("devserver: delete order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidateList()
	return nil
}

// UserRepository looks up operator accounts.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns the user with the given email.
func (r *UserRepository) FindByEmail(email string) (*User, error) {
	var u User
	if err := r.db.First(&u, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(u *User) error {
	if err := r.db.Create(u).Error; err != nil {
		return fmt.Errorf("devserver: create user: %w", err)
	}
	return nil
}
