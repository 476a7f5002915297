package seed

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	"github.com/stylehub/stylehub-api/internal/domain/pricing"
	"github.com/stylehub/stylehub-api/pkg/utils"
)

// Data is an initial dataset handed to a store when it is constructed.
type Data struct {
	Categories []entity.Category
	Products   []entity.Product
	Users      []entity.User
	Orders     []entity.Order
}

// Merge appends other's records to d.
func (d Data) Merge(other Data) Data {
	d.Categories = append(d.Categories, other.Categories...)
	d.Products = append(d.Products, other.Products...)
	d.Users = append(d.Users, other.Users...)
	d.Orders = append(d.Orders, other.Orders...)
	return d
}

var namespace = uuid.MustParse("5d0f3f7e-8a43-4c1e-9a55-2b8f4f7c1d01")

// ID derives a stable UUID for a demo record so that reseeding is idempotent.
func ID(name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(name))
}

// Admin builds the administrator account configured for the deployment.
func Admin(name, email, passwordHash string, createdAt time.Time) entity.User {
	return entity.User{
		ID:        ID("user:" + email),
		Name:      name,
		Email:     email,
		Password:  passwordHash,
		Role:      enum.UserRoleAdmin,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// Demo returns the storefront demo catalog, two customers and three recent
// orders placed relative to now. Customers share passwordHash.
func Demo(now time.Time, passwordHash string) Data {
	established := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	categories := []entity.Category{
		demoCategory("T-Shirts", "Comfortable t-shirts for everyday wear", enum.SectionMen, established),
		demoCategory("Jeans", "Stylish jeans for all occasions", enum.SectionMen, established),
		demoCategory("Dresses", "Beautiful dresses for special occasions", enum.SectionWomen, established),
		demoCategory("Accessories", "Complete your look with our accessories", enum.SectionAccessories, established),
		demoCategory("Footwear", "Comfortable and stylish footwear", enum.SectionNone, established),
	}
	byName := make(map[string]entity.Category, len(categories))
	for _, c := range categories {
		byName[c.Name] = c
	}

	products := []entity.Product{
		{
			Name:             "Classic White T-Shirt",
			Description:      "A comfortable, classic white t-shirt made from premium cotton. Perfect for everyday wear.",
			ShortDescription: "Premium cotton classic white tee",
			Price:            decimal.RequireFromString("24.99"),
			CompareAtPrice:   money("29.99"),
			Section:          enum.SectionMen,
			Featured:         true,
			IsNew:            true,
			BestSeller:       true,
			Inventory:        100,
			Details:          demoDetails("https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=800&auto=format&fit=crop", "cotton", "basics"),
			CreatedAt:        time.Date(2023, time.April, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			Name:             "Slim Fit Jeans",
			Description:      "Modern slim fit jeans in a versatile dark wash. These jeans offer the perfect balance of style and comfort.",
			ShortDescription: "Modern slim fit jeans in dark wash",
			Price:            decimal.RequireFromString("59.99"),
			Section:          enum.SectionMen,
			Featured:         true,
			BestSeller:       true,
			Inventory:        50,
			Details:          demoDetails("https://images.unsplash.com/photo-1542272604-787c3835535d?w=800&auto=format&fit=crop", "denim"),
			CreatedAt:        time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			Name:             "Floral Summer Dress",
			Description:      "A beautiful floral dress perfect for summer days. Made from lightweight fabric with a flattering silhouette.",
			ShortDescription: "Lightweight floral print summer dress",
			Price:            decimal.RequireFromString("49.99"),
			CompareAtPrice:   money("65.99"),
			Section:          enum.SectionWomen,
			Featured:         true,
			IsNew:            true,
			Inventory:        30,
			Details:          demoDetails("https://images.unsplash.com/photo-1612336307429-8a898d10e223?w=800&auto=format&fit=crop", "summer"),
			CreatedAt:        time.Date(2023, time.April, 22, 0, 0, 0, 0, time.UTC),
		},
		{
			Name:             "Leather Watch",
			Description:      "Elegant leather watch with a classic design that complements any outfit.",
			ShortDescription: "Classic leather wristwatch",
			Price:            decimal.RequireFromString("129.99"),
			Section:          enum.SectionAccessories,
			Featured:         true,
			BestSeller:       true,
			Inventory:        25,
			Details:          demoDetails("https://images.unsplash.com/photo-1524592094714-0f0654e20314?w=800&auto=format&fit=crop", "leather"),
			CreatedAt:        time.Date(2023, time.February, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			Name:             "Running Shoes",
			Description:      "Performance running shoes designed for comfort and speed.",
			ShortDescription: "High-performance running shoes",
			Price:            decimal.RequireFromString("89.99"),
			CompareAtPrice:   money("110.99"),
			Featured:         true,
			IsNew:            true,
			Inventory:        40,
			Details:          demoDetails("https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=800&auto=format&fit=crop", "sport"),
			CreatedAt:        time.Date(2023, time.March, 20, 0, 0, 0, 0, time.UTC),
		},
	}
	categoryOf := []string{"T-Shirts", "Jeans", "Dresses", "Accessories", "Footwear"}
	for i := range products {
		p := &products[i]
		cat := byName[categoryOf[i]]
		p.ID = ID("product:" + p.Name)
		p.Slug = utils.Slugify(p.Name)
		p.CategoryID = &cat.ID
		p.CategoryName = cat.Name
		p.UpdatedAt = p.CreatedAt
	}

	users := []entity.User{
		demoCustomer("Regular User", "user@example.com", passwordHash, time.Date(2023, time.February, 15, 0, 0, 0, 0, time.UTC)),
		demoCustomer("Jane Smith", "jane@example.com", passwordHash, time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC)),
	}
	regular, jane := users[0].ID, users[1].ID

	day := 24 * time.Hour
	orders := []entity.Order{
		demoOrder("ord1", regular, enum.OrderStatusCompleted, now.Add(-2*day), products, map[int]int{0: 2, 3: 1}),
		demoOrder("ord2", jane, enum.OrderStatusPending, now.Add(-day), products, map[int]int{1: 1, 4: 1}),
		demoOrder("ord3", regular, enum.OrderStatusProcessing, now.Add(-2*day), products, map[int]int{2: 2, 3: 1, 4: 1}),
	}

	return Data{Categories: categories, Products: products, Users: users, Orders: orders}
}

func demoCategory(name, description string, section enum.Section, createdAt time.Time) entity.Category {
	return entity.Category{
		ID:          ID("category:" + name),
		Name:        name,
		Slug:        utils.Slugify(name),
		Description: description,
		Section:     section,
		Featured:    true,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func demoCustomer(name, email, hash string, createdAt time.Time) entity.User {
	return entity.User{
		ID:        ID("user:" + email),
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      enum.UserRoleCustomer,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func demoDetails(image string, tags ...string) entity.ProductDetails {
	return entity.ProductDetails{
		Images: []entity.ProductImage{{URL: image, IsPrimary: true}},
		Variants: []entity.ProductVariant{{
			Name: "Size",
			Options: []entity.VariantOption{
				{Name: "S", Stock: 10},
				{Name: "M", Stock: 10},
				{Name: "L", Stock: 10},
			},
		}},
		Tags: tags,
	}
}

// demoOrder prices the order with the checkout rules.
func demoOrder(ref string, customer uuid.UUID, status enum.OrderStatus, createdAt time.Time, products []entity.Product, qty map[int]int) entity.Order {
	id := ID("order:" + ref)
	order := entity.Order{
		ID:          id,
		OrderNumber: "SH-" + ref,
		CustomerID:  customer,
		Status:      status,
		CreatedAt:   createdAt,
	}

	subtotal := decimal.Zero
	for i := range products {
		n, ok := qty[i]
		if !ok {
			continue
		}
		item := entity.OrderItem{
			ID:          ID("order-item:" + ref + ":" + products[i].Name),
			OrderID:     id,
			ProductID:   products[i].ID,
			ProductName: products[i].Name,
			Quantity:    n,
			UnitPrice:   products[i].Price,
		}
		order.Items = append(order.Items, item)
		subtotal = subtotal.Add(item.LineTotal())
	}

	totals := pricing.Compute(subtotal)
	order.Subtotal = totals.Subtotal
	order.Shipping = totals.Shipping
	order.Tax = totals.Tax
	order.Total = totals.Total
	return order
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
