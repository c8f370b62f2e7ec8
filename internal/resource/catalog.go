package resource

import (
	"time"

	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

var activeField = Field{Name: "isActive", Label: "Status", Type: Bool, Default: "true"}

// Users can be edited and toggled but never created or deleted here.
var Users = &Definition{
	Slug:     "users",
	Title:    "Users",
	Singular: "User",
	Path:     "/users",
	ListKey:  "users",
	Columns: []Column{
		{Label: "Name", Path: "fullName"},
		{Label: "Username", Path: "username"},
		{Label: "Telegram ID", Path: "telegramId"},
		{Label: "Phone", Path: "phone"},
		{Label: "Subscription", Path: "subscriptionStatus", Kind: CellBadge},
		{Label: "Status", Kind: CellStatus},
	},
	Fields: []Field{
		{Name: "fullName", Label: "Full Name", Type: Text, Required: true},
		{Name: "phone", Label: "Phone", Type: Text, Required: true},
		{Name: "subscriptionStatus", Label: "Subscription Status", Type: Select, Options: []Option{
			{Value: "pending", Label: "Pending"},
			{Value: "active", Label: "Active"},
			{Value: "expired", Label: "Expired"},
		}},
	},
	Search:      []string{"fullName", "telegramId", "phone"},
	CanUpdate:   true,
	ToggleField: "isActive",
}

var Products = &Definition{
	Slug:     "products",
	Title:    "Products",
	Singular: "Product",
	Path:     "/products",
	ListKey:  "products",
	Columns: []Column{
		{Label: "Name", Path: "name"},
		{Label: "Category", Path: "category"},
		{Label: "Price", Path: "price", Kind: CellMoney},
		{Label: "Stock", Path: "stock"},
		{Label: "Featured", Path: "featured", Kind: CellBool},
		{Label: "Status", Kind: CellStatus},
	},
	Fields: []Field{
		{Name: "name", Label: "Product Name", Type: Text, Required: true},
		{Name: "category", Label: "Category", Type: Text, Required: true},
		{Name: "price", Label: "Price", Type: Number, Required: true},
		{Name: "originalPrice", Label: "Original Price", Type: Number, Required: true},
		{Name: "stock", Label: "Stock", Type: Integer, Required: true},
		activeField,
		{Name: "featured", Label: "Featured", Type: Bool, Default: "false", Options: []Option{
			{Value: "false", Label: "No"},
			{Value: "true", Label: "Yes"},
		}},
		{Name: "description", Label: "Description", Type: Textarea, Required: true},
	},
	Search:      []string{"name", "category"},
	CanCreate:   true,
	CanUpdate:   true,
	CanDelete:   true,
	ToggleField: "isActive",
}

var orderStatuses = []Option{
	{Value: "pending", Label: "Pending"},
	{Value: "confirmed", Label: "Confirmed"},
	{Value: "processing", Label: "Processing"},
	{Value: "shipped", Label: "Shipped"},
	{Value: "delivered", Label: "Delivered"},
	{Value: "cancelled", Label: "Cancelled"},
}

var paymentStatuses = []Option{
	{Value: "pending", Label: "Pending"},
	{Value: "processing", Label: "Processing"},
	{Value: "completed", Label: "Completed"},
	{Value: "failed", Label: "Failed"},
	{Value: "cancelled", Label: "Cancelled"},
}

// Orders are read-only apart from their two status actions.
var Orders = &Definition{
	Slug:     "orders",
	Title:    "Orders",
	Singular: "Order",
	Path:     "/orders",
	ListKey:  "orders",
	Columns: []Column{
		{Label: "Order", Path: "orderNumber"},
		{Label: "Customer", Path: "user.fullName"},
		{Label: "Total", Path: "total", Kind: CellMoney},
		{Label: "Status", Path: "status", Kind: CellBadge},
		{Label: "Payment", Path: "paymentStatus", Kind: CellBadge},
		{Label: "Date", Path: "createdAt", Kind: CellDate},
	},
	Search: []string{"orderNumber", "user.fullName"},
	Actions: []Action{
		{Name: "status", Label: "Order Status", Field: "status", Options: orderStatuses},
		{Name: "payment-status", Label: "Payment Status", Field: "paymentStatus", Suffix: "/payment-status", Options: paymentStatuses},
	},
}

var Subscriptions = &Definition{
	Slug:     "subscriptions",
	Title:    "Subscriptions",
	Singular: "Subscription",
	Path:     "/subscriptions",
	ListKey:  "subscriptions",
	Columns: []Column{
		{Label: "Name", Path: "name"},
		{Label: "Price", Path: "price", Kind: CellMoney},
		{Label: "Duration (days)", Path: "duration"},
		{Label: "Status", Kind: CellStatus},
	},
	Fields: []Field{
		{Name: "name", Label: "Plan Name", Type: Text, Required: true},
		{Name: "description", Label: "Description", Type: Textarea, Required: true},
		{Name: "price", Label: "Price", Type: Number, Required: true},
		{Name: "duration", Label: "Duration (days)", Type: Integer, Required: true},
		activeField,
	},
	Search:    []string{"name"},
	CanCreate: true,
	CanUpdate: true,
	CanDelete: true,
}

var Levels = &Definition{
	Slug:     "levels",
	Title:    "Levels",
	Singular: "Level",
	Path:     "/levels",
	ListKey:  "levels",
	Columns: []Column{
		{Label: "Level", Path: "level"},
		{Label: "Name", Path: "name"},
		{Label: "Requirements", Path: "requirements"},
		{Label: "Status", Kind: CellStatus},
	},
	Fields: []Field{
		{Name: "name", Label: "Level Name", Type: Text, Required: true},
		{Name: "description", Label: "Description", Type: Textarea, Required: true},
		{Name: "level", Label: "Level Number", Type: Integer, Required: true},
		{Name: "requirements", Label: "Requirements", Type: Textarea},
		activeField,
	},
	Search:    []string{"name"},
	CanCreate: true,
	CanUpdate: true,
	CanDelete: true,
}

var PaymentMethods = &Definition{
	Slug:     "payment-methods",
	Title:    "Payment Methods",
	Singular: "Payment method",
	Path:     "/payment-methods",
	ListKey:  "paymentMethods",
	Columns: []Column{
		{Label: "Name", Path: "name"},
		{Label: "Type", Path: "type", Kind: CellBadge},
		{Label: "Account Info", Path: "accountInfo"},
		{Label: "Status", Kind: CellStatus},
	},
	Fields: []Field{
		{Name: "name", Label: "Method Name", Type: Text, Required: true},
		{Name: "description", Label: "Description", Type: Textarea, Required: true},
		{Name: "type", Label: "Type", Type: Select, Required: true, Options: []Option{
			{Value: "bank", Label: "Bank Transfer"},
			{Value: "mobile_money", Label: "Mobile Money"},
			{Value: "crypto", Label: "Cryptocurrency"},
			{Value: "card", Label: "Credit/Debit Card"},
			{Value: "other", Label: "Other"},
		}},
		{Name: "accountInfo", Label: "Account Info", Type: Textarea, Placeholder: "Account number, phone number, etc."},
		activeField,
	},
	Search:    []string{"name", "type"},
	CanCreate: true,
	CanUpdate: true,
	CanDelete: true,
}

var Gallery = &Definition{
	Slug:     "gallery",
	Title:    "Gallery",
	Singular: "Gallery item",
	Path:     "/gallery",
	ListKey:  "galleryItems",
	Columns: []Column{
		{Label: "Image", Path: "imageUrl", Kind: CellImage},
		{Label: "Title", Path: "title"},
		{Label: "Category", Path: "category"},
		{Label: "Status", Kind: CellStatus},
	},
	Fields: []Field{
		{Name: "title", Label: "Title", Type: Text, Required: true},
		{Name: "description", Label: "Description", Type: Textarea},
		{Name: "imageUrl", Label: "Image URL", Type: URL, Placeholder: "https://example.com/image.jpg"},
		{Name: "category", Label: "Category", Type: Text},
		activeField,
	},
	Search:      []string{"title", "category"},
	CanCreate:   true,
	CanUpdate:   true,
	CanDelete:   true,
	UploadField: "imageUrl",
}

var Coupons = &Definition{
	Slug:     "coupons",
	Title:    "Coupons",
	Singular: "Coupon",
	Path:     "/coupons",
	ListKey:  "coupons",
	Columns: []Column{
		{Label: "Code", Path: "code"},
		{Label: "Type", Path: "discountType", Kind: CellBadge},
		{Label: "Value", Path: "discountValue"},
		{Label: "Min. Order", Path: "minimumOrderAmount", Kind: CellMoney},
		{Label: "Used", Path: "usedCount"},
		{Label: "Max Uses", Path: "maxUses"},
		{Label: "Expires", Path: "expiryDate", Kind: CellDate},
		{Label: "Status", Kind: CellStatus},
	},
	Fields: []Field{
		{Name: "code", Label: "Coupon Code", Type: Text, Required: true},
		{Name: "description", Label: "Description", Type: Textarea},
		{Name: "discountType", Label: "Discount Type", Type: Select, Required: true, Options: []Option{
			{Value: "percentage", Label: "Percentage"},
			{Value: "fixed", Label: "Fixed Amount"},
		}},
		{Name: "discountValue", Label: "Discount Value", Type: Number, Required: true},
		{Name: "minimumOrderAmount", Label: "Minimum Order Amount", Type: Number},
		{Name: "maxUses", Label: "Max Uses", Type: Integer, Nullable: true, Placeholder: "Leave empty for unlimited"},
		{Name: "expiryDate", Label: "Expiry Date", Type: Date, Nullable: true},
		activeField,
	},
	Search:     []string{"code", "description"},
	CanCreate:  true,
	CanUpdate:  true,
	CanDelete:  true,
	StatusFunc: couponStatus,
}

var Agents = &Definition{
	Slug:     "agents",
	Title:    "Agents",
	Singular: "Agent",
	Path:     "/agents",
	ListKey:  "agents",
	Columns: []Column{
		{Label: "Name", Path: "fullName"},
		{Label: "Email", Path: "email"},
		{Label: "Phone", Path: "phone"},
		{Label: "Commission (%)", Path: "commission"},
		{Label: "Permissions", Path: "permissions"},
		{Label: "Status", Kind: CellStatus},
	},
	Fields: []Field{
		{Name: "fullName", Label: "Full Name", Type: Text, Required: true},
		{Name: "email", Label: "Email", Type: Email, Required: true},
		{Name: "phone", Label: "Phone", Type: Text, Required: true},
		{Name: "password", Label: "Password", Type: Password, Required: true, CreateOnly: true},
		{Name: "commission", Label: "Commission (%)", Type: Number},
		{Name: "permissions", Label: "Permissions", Type: List, Placeholder: "view_orders, manage_products, etc."},
		activeField,
	},
	Search:      []string{"fullName", "email", "phone"},
	CanCreate:   true,
	CanUpdate:   true,
	CanDelete:   true,
	ToggleField: "isActive",
}

// Catalog lists the screens in navigation order.
var Catalog = []*Definition{Users, Products, Orders, Subscriptions, Levels, PaymentMethods, Gallery, Coupons, Agents}

// BySlug returns the definition served under slug.
func BySlug(slug string) (*Definition, bool) {
	for _, d := range Catalog {
		if d.Slug == slug {
			return d, true
		}
	}
	return nil, false
}

// Expired reports whether a coupon's expiry date lies before now. Coupons
// without an expiry date never expire.
func Expired(rec fetanapi.Record, now time.Time) bool {
	t, ok := ParseTime(rec["expiryDate"])
	return ok && t.Before(now)
}

func couponStatus(rec fetanapi.Record, now time.Time) Status {
	if Expired(rec, now) {
		return Status{Label: "Expired", Tone: "danger"}
	}
	return activeStatus(rec)
}

// Tone picks a badge colour for well known status values.
func Tone(value string) string {
	switch value {
	case "active", "completed", "delivered":
		return "success"
	case "pending":
		return "warning"
	case "confirmed", "processing", "shipped":
		return "info"
	case "failed", "cancelled", "expired":
		return "danger"
	default:
		return "muted"
	}
}
