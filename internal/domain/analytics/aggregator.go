package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
)

const (
	DefaultTopProductsLimit = 5

	// UncategorizedLabel groups sales of products that carry no category.
	UncategorizedLabel = "Uncategorized"
)

// KPI keys, in the order Stats returns them.
const (
	KeyTotalRevenue      = "total_revenue"
	KeyTotalOrders       = "total_orders"
	KeyNewCustomers      = "new_customers"
	KeyAverageOrderValue = "average_order_value"
)

type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// KPI is a summary metric compared against the preceding window.
type KPI struct {
	Key           string          `json:"key"`
	Name          string          `json:"name"`
	Value         decimal.Decimal `json:"value"`
	PercentChange float64         `json:"percent_change"`
	Trend         Trend           `json:"trend"`
}

type TrendPoint struct {
	Label  string          `json:"label"`
	Start  time.Time       `json:"start"`
	Sales  decimal.Decimal `json:"sales"`
	Orders int             `json:"orders"`
}

type CategorySales struct {
	Category string          `json:"category"`
	Sales    decimal.Decimal `json:"sales"`
}

type ProductSales struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   int             `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// Aggregator computes dashboard reports from order, user and product
// snapshots. It holds no state besides its clock and location and never
// mutates its inputs.
type Aggregator struct {
	now func() time.Time
	loc *time.Location
}

type Option func(*Aggregator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLocation sets the zone used to cut hour, day and month buckets.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) clock() time.Time {
	return a.now().In(a.loc)
}

// Since returns the earliest creation time any report for r reads, so that
// callers only need to load orders and users from that point on.
func (a *Aggregator) Since(r TimeRange) time.Time {
	now := a.clock()
	since := r.WindowStart(r.WindowStart(now))
	g, n := r.buckets()
	if first := g.step(g.truncate(now), -(n - 1)); first.Before(since) {
		since = first
	}
	return since
}

// Stats returns Total Revenue, Total Orders, New Customers and Average Order
// Value for the window ending now, in that order.
func (a *Aggregator) Stats(orders []entity.Order, users []entity.User, r TimeRange) []KPI {
	now := a.clock()
	start := r.WindowStart(now)
	prevStart := r.WindowStart(start)

	var cur, prev periodTotals
	for i := range orders {
		o := &orders[i]
		switch {
		case !o.CreatedAt.Before(start):
			cur.addOrder(o)
		case !o.CreatedAt.Before(prevStart):
			prev.addOrder(o)
		}
	}
	for i := range users {
		u := &users[i]
		if u.Role != enum.UserRoleCustomer {
			continue
		}
		switch {
		case !u.CreatedAt.Before(start):
			cur.customers++
		case !u.CreatedAt.Before(prevStart):
			prev.customers++
		}
	}

	curOrders := decimal.NewFromInt(int64(cur.orders))
	prevOrders := decimal.NewFromInt(int64(prev.orders))
	curCustomers := decimal.NewFromInt(int64(cur.customers))
	prevCustomers := decimal.NewFromInt(int64(prev.customers))
	curAOV := cur.averageOrderValue()
	prevAOV := prev.averageOrderValue()

	return []KPI{
		newKPI(KeyTotalRevenue, "Total Revenue", cur.revenue, prev.revenue),
		newKPI(KeyTotalOrders, "Total Orders", curOrders, prevOrders),
		newKPI(KeyNewCustomers, "New Customers", curCustomers, prevCustomers),
		newKPI(KeyAverageOrderValue, "Average Order Value", curAOV, prevAOV),
	}
}

type periodTotals struct {
	revenue   decimal.Decimal
	orders    int
	customers int
}

func (p *periodTotals) addOrder(o *entity.Order) {
	p.revenue = p.revenue.Add(o.Total)
	p.orders++
}

func (p *periodTotals) averageOrderValue() decimal.Decimal {
	if p.orders == 0 {
		return decimal.Zero
	}
	return p.revenue.Div(decimal.NewFromInt(int64(p.orders))).Round(2)
}

func newKPI(key, name string, current, previous decimal.Decimal) KPI {
	change := PercentChange(current, previous)
	trend := TrendUp
	if change < 0 {
		trend = TrendDown
	}
	return KPI{
		Key:           key,
		Name:          name,
		Value:         current,
		PercentChange: change,
		Trend:         trend,
	}
}

// PercentChange is the relative change from previous to current in percent,
// rounded to one decimal. A zero baseline reports 100.
func PercentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 100
	}
	change := current.Sub(previous).Div(previous.Abs()).Mul(decimal.NewFromInt(100))
	f, _ := change.Round(1).Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// SalesTrend buckets order totals into 24 hours, 7 days, 30 days or 12 months
// ending with the bucket that contains now. Every bucket is present, sorted
// ascending. Orders outside the buckets are ignored.
func (a *Aggregator) SalesTrend(orders []entity.Order, r TimeRange) []TrendPoint {
	g, n := r.buckets()
	current := g.truncate(a.clock())

	points := make([]TrendPoint, n)
	index := make(map[int64]int, n)
	for i := 0; i < n; i++ {
		start := g.step(current, i-(n-1))
		points[i] = TrendPoint{Label: g.label(start), Start: start, Sales: decimal.Zero}
		index[start.Unix()] = i
	}

	for i := range orders {
		key := g.truncate(orders[i].CreatedAt.In(a.loc)).Unix()
		if idx, ok := index[key]; ok {
			points[idx].Sales = points[idx].Sales.Add(orders[i].Total)
			points[idx].Orders++
		}
	}
	return points
}

// CategoryDistribution sums quantity × unit price of every line item in the
// window under its product's category label. Line items whose product is not
// in products are skipped. Results are sorted by sales, largest first.
func (a *Aggregator) CategoryDistribution(orders []entity.Order, products []entity.Product, r TimeRange) []CategorySales {
	catalog := indexProducts(products)
	start := r.WindowStart(a.clock())

	totals := make(map[string]decimal.Decimal)
	for i := range orders {
		if orders[i].CreatedAt.Before(start) {
			continue
		}
		for _, item := range orders[i].Items {
			p, ok := catalog[item.ProductID]
			if !ok {
				continue
			}
			label := p.CategoryLabel()
			if label == "" {
				label = UncategorizedLabel
			}
			totals[label] = totals[label].Add(item.LineTotal())
		}
	}

	out := make([]CategorySales, 0, len(totals))
	for label, sales := range totals {
		out = append(out, CategorySales{Category: label, Sales: sales})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Sales.Cmp(out[j].Sales); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopProducts ranks products by units sold in the window. When fewer than
// limit products sold anything, the list is padded with unsold catalog
// products in catalog order. Line items whose product is not in products
// are skipped. A limit below 1 uses DefaultTopProductsLimit.
func (a *Aggregator) TopProducts(orders []entity.Order, products []entity.Product, r TimeRange, limit int) []ProductSales {
	if limit < 1 {
		limit = DefaultTopProductsLimit
	}
	catalog := indexProducts(products)
	start := r.WindowStart(a.clock())

	sales := make(map[uuid.UUID]*ProductSales)
	for i := range orders {
		if orders[i].CreatedAt.Before(start) {
			continue
		}
		for _, item := range orders[i].Items {
			p, ok := catalog[item.ProductID]
			if !ok {
				continue
			}
			s, ok := sales[p.ID]
			if !ok {
				s = &ProductSales{ProductID: p.ID, ProductName: p.Name, Revenue: decimal.Zero}
				sales[p.ID] = s
			}
			s.UnitsSold += item.Quantity
			s.Revenue = s.Revenue.Add(item.LineTotal())
		}
	}

	ranked := make([]ProductSales, 0, len(sales))
	for _, s := range sales {
		ranked = append(ranked, *s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].UnitsSold != ranked[j].UnitsSold {
			return ranked[i].UnitsSold > ranked[j].UnitsSold
		}
		if c := ranked[i].Revenue.Cmp(ranked[j].Revenue); c != 0 {
			return c > 0
		}
		if ranked[i].ProductName != ranked[j].ProductName {
			return ranked[i].ProductName < ranked[j].ProductName
		}
		return ranked[i].ProductID.String() < ranked[j].ProductID.String()
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	for i := 0; i < len(products) && len(ranked) < limit; i++ {
		p := &products[i]
		if _, sold := sales[p.ID]; sold {
			continue
		}
		ranked = append(ranked, ProductSales{ProductID: p.ID, ProductName: p.Name, Revenue: decimal.Zero})
		sales[p.ID] = nil
	}
	return ranked
}

func indexProducts(products []entity.Product) map[uuid.UUID]*entity.Product {
	m := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		m[products[i].ID] = &products[i]
	}
	return m
}
