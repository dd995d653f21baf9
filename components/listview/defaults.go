package listview

import "time"

// Default list codes.
const (
	ListInventory = "admin.list.inventory"
	ListProducts  = "admin.list.products"
	ListUsers     = "admin.list.users"
	ListTickets   = "admin.list.tickets"
	ListChat      = "admin.list.chat"
)

var sessionStatuses = []string{"open", "waiting", "active", "resolved", "closed"}

func exportOperation() BulkOperation {
	return BulkOperation{Code: "export", Label: "Export", Effect: EffectExport}
}

func deleteOperation() BulkOperation {
	return BulkOperation{Code: "delete", Label: "Delete", Effect: EffectDelete, Destructive: true}
}

func enumSchema(key string, values []string) map[string]any {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return map[string]any{
		"type":     "object",
		"required": []any{key},
		"properties": map[string]any{
			key: map[string]any{"type": "string", "enum": enum},
		},
	}
}

// DefaultDefinitions returns the built-in back-office lists.
func DefaultDefinitions() []Definition {
	return []Definition{
		inventoryDefinition(),
		productsDefinition(),
		usersDefinition(),
		ticketsDefinition(),
		chatDefinition(),
	}
}

func inventoryDefinition() Definition {
	statuses := []string{"in-stock", "low-stock", "out-of-stock"}
	return Definition{
		Code:          ListInventory,
		Name:          "Inventory",
		Description:   "Stock levels across artisan products",
		NameLocalized: map[string]string{"sw": "Hesabu ya Bidhaa"},
		Schema: Schema{Fields: []FieldDef{
			{Name: "search", Label: "Search", SearchFields: []string{"name", "sku", "artisan"}},
			{Name: "name", Label: "Product", Kind: KindText},
			{Name: "sku", Label: "SKU", Kind: KindText},
			{Name: "artisan", Label: "Artisan", Kind: KindText, Filterable: true},
			{Name: "category", Label: "Category", Kind: KindEnum, Values: []string{"Jewelry", "Fashion", "Home Decor", "Art"}, Filterable: true},
			{Name: "status", Label: "Status", Kind: KindEnum, Values: statuses, Filterable: true},
			{Name: "stock", Label: "Stock", Kind: KindNumber},
			{Name: "price", Label: "Price", Kind: KindNumber},
			{Name: "updatedAt", Label: "Updated", Kind: KindTime},
		}},
		SortKeys: []SortKey{
			{Code: "name", Label: "Name", Field: "name", Direction: SortAsc},
			{Code: "stock", Label: "Stock (high to low)", Field: "stock", Direction: SortDesc},
			{Code: "stock_asc", Label: "Stock (low to high)", Field: "stock", Direction: SortAsc},
			{Code: "price", Label: "Price", Field: "price", Direction: SortAsc},
			{Code: "updated", Label: "Recently updated", Field: "updatedAt", Direction: SortDesc},
		},
		Operations: []BulkOperation{
			exportOperation(),
			{
				Code: "change_status", Label: "Change status", Effect: EffectSetField,
				Field: "status", DataKey: "status", DataSchema: enumSchema("status", statuses),
			},
			deleteOperation(),
		},
		Stats: StatsConfig{
			StatusField:   "status",
			PriceField:    "price",
			QuantityField: "stock",
			Buckets: []StatsBucket{
				{Key: "lowStockItems", Label: "Low stock", Statuses: []string{"low-stock", "out-of-stock"}, Variant: CardWarning, Icon: IconAlert},
				{Key: "inStockItems", Label: "In stock", Statuses: []string{"in-stock"}, Variant: CardSuccess, Icon: IconCheck},
			},
		},
		RecordSchema: map[string]any{
			"type":     "object",
			"required": []any{"name", "stock"},
			"properties": map[string]any{
				"name":  map[string]any{"type": "string", "minLength": 1},
				"stock": map[string]any{"type": "number", "minimum": 0},
				"price": map[string]any{"type": "number", "minimum": 0},
			},
		},
		Report: ReportConfig{Kind: "inventory", Type: "stock", Format: FormatCSV},
	}
}

func productsDefinition() Definition {
	statuses := []string{"active", "draft", "archived"}
	return Definition{
		Code:        ListProducts,
		Name:        "Products",
		Description: "Marketplace catalog",
		Schema: Schema{Fields: []FieldDef{
			{Name: "search", Label: "Search", SearchFields: []string{"name", "artisan"}, Match: MatchFuzzy},
			{Name: "name", Label: "Product", Kind: KindText},
			{Name: "artisan", Label: "Artisan", Kind: KindText, Filterable: true},
			{Name: "category", Label: "Category", Kind: KindEnum, Values: []string{"Jewelry", "Fashion", "Home Decor", "Art"}, Filterable: true},
			{Name: "status", Label: "Status", Kind: KindEnum, Values: statuses, Filterable: true},
			{Name: "price", Label: "Price", Kind: KindNumber},
			{Name: "rating", Label: "Rating", Kind: KindNumber},
			{Name: "tags", Label: "Tags", Kind: KindTags, Filterable: true},
		}},
		SortKeys: []SortKey{
			{Code: "name", Label: "Name", Field: "name"},
			{Code: "price_asc", Label: "Price (low to high)", Field: "price", Direction: SortAsc},
			{Code: "price_desc", Label: "Price (high to low)", Field: "price", Direction: SortDesc},
			{Code: "rating", Label: "Top rated", Field: "rating", Direction: SortDesc},
		},
		DefaultSort: "name",
		Operations: []BulkOperation{
			exportOperation(),
			{Code: "activate", Label: "Publish", Effect: EffectSetField, Field: "status", Value: "active"},
			{Code: "archive", Label: "Archive", Effect: EffectSetField, Field: "status", Value: "archived", Confirm: true},
			deleteOperation(),
		},
		Stats: StatsConfig{
			StatusField: "status",
			Buckets: []StatsBucket{
				{Key: "activeProducts", Label: "Active", Statuses: []string{"active"}, Variant: CardSuccess, Icon: IconCheck},
				{Key: "draftProducts", Label: "Drafts", Statuses: []string{"draft"}, Variant: CardInfo, Icon: IconClock},
			},
		},
		Report: ReportConfig{Kind: "products", Type: "catalog", Format: FormatJSON},
	}
}

func usersDefinition() Definition {
	roles := []string{"admin", "artisan", "customer", "support"}
	return Definition{
		Code:        ListUsers,
		Name:        "Users",
		Description: "Admins, artisans and customers",
		Schema: Schema{Fields: []FieldDef{
			{Name: "search", Label: "Search", SearchFields: []string{"name", "email"}},
			{Name: "name", Label: "Name", Kind: KindText},
			{Name: "email", Label: "Email", Kind: KindText},
			{Name: "role", Label: "Role", Kind: KindEnum, Values: roles, Filterable: true},
			{Name: "status", Label: "Status", Kind: KindEnum, Values: []string{"active", "suspended", "pending"}, Filterable: true},
			{Name: "joinedAt", Label: "Joined", Kind: KindTime},
		}},
		SortKeys: []SortKey{
			{Code: "name", Label: "Name", Field: "name"},
			{Code: "joined", Label: "Newest", Field: "joinedAt", Direction: SortDesc},
			{Code: "role", Label: "Role", Field: "role"},
		},
		Operations: []BulkOperation{
			exportOperation(),
			{Code: "send_email", Label: "Send email", Effect: EffectDispatch, Required: []string{"subject", "body"}},
			{
				Code: "change_role", Label: "Change role", Effect: EffectSetField,
				Field: "role", DataKey: "role", DataSchema: enumSchema("role", roles),
			},
			{Code: "activate", Label: "Activate", Effect: EffectSetField, Field: "status", Value: "active"},
			{Code: "suspend", Label: "Suspend", Effect: EffectSetField, Field: "status", Value: "suspended", Destructive: true},
			deleteOperation(),
		},
		Stats: StatsConfig{
			StatusField: "status",
			Buckets: []StatsBucket{
				{Key: "activeUsers", Label: "Active", Statuses: []string{"active"}, Variant: CardSuccess, Icon: IconUsers},
				{Key: "suspendedUsers", Label: "Suspended", Statuses: []string{"suspended"}, Variant: CardDanger, Icon: IconAlert},
				{Key: "pendingUsers", Label: "Pending", Statuses: []string{"pending"}, Variant: CardWarning, Icon: IconClock},
			},
		},
		RecipientField: "email",
		Report:         ReportConfig{Kind: "users", Type: "directory", Format: FormatCSV},
	}
}

func ticketsDefinition() Definition {
	return Definition{
		Code:        ListTickets,
		Name:        "Support tickets",
		Description: "Customer and artisan support requests",
		Schema: Schema{Fields: []FieldDef{
			{Name: "search", Label: "Search", SearchFields: []string{"subject", "customer"}},
			{Name: "subject", Label: "Subject", Kind: KindText},
			{Name: "customer", Label: "Customer", Kind: KindText},
			{Name: "priority", Label: "Priority", Kind: KindEnum, Values: []string{"low", "medium", "high", "urgent"}, Filterable: true},
			{Name: "status", Label: "Status", Kind: KindEnum, Values: sessionStatuses, Filterable: true},
			{Name: "unreadCount", Label: "Unread", Kind: KindNumber},
			{Name: "updatedAt", Label: "Updated", Kind: KindTime},
			{Name: "tags", Label: "Tags", Kind: KindTags, Filterable: true},
		}},
		SortKeys: []SortKey{
			{Code: "updated", Label: "Recently updated", Field: "updatedAt", Direction: SortDesc},
			{Code: "unread", Label: "Most unread", Field: "unreadCount", Direction: SortDesc},
			{Code: "subject", Label: "Subject", Field: "subject"},
		},
		DefaultSort: "updated",
		Operations: []BulkOperation{
			exportOperation(),
			{
				Code: "change_status", Label: "Change status", Effect: EffectSetField,
				Field: "status", DataKey: "status", DataSchema: enumSchema("status", sessionStatuses),
			},
			{Code: "close", Label: "Close", Effect: EffectSetField, Field: "status", Value: "closed", Confirm: true},
			deleteOperation(),
		},
		Stats: StatsConfig{
			StatusField: "status",
			SumField:    "unreadCount",
			Buckets: []StatsBucket{
				{Key: "openTickets", Label: "Open", Statuses: []string{"open", "waiting", "active"}, Variant: CardWarning, Icon: IconTicket},
				{Key: "resolvedTickets", Label: "Resolved", Statuses: []string{"resolved", "closed"}, Variant: CardSuccess, Icon: IconCheck},
			},
		},
		SelectHook: "mark_read:unreadCount",
		Report:     ReportConfig{Kind: "tickets", Type: "support"},
	}
}

func chatDefinition() Definition {
	return Definition{
		Code:        ListChat,
		Name:        "Live chat",
		Description: "Active conversations with buyers and artisans",
		Schema: Schema{Fields: []FieldDef{
			{Name: "search", Label: "Search", SearchFields: []string{"customer", "lastMessage"}},
			{Name: "customer", Label: "Customer", Kind: KindText},
			{Name: "lastMessage", Label: "Last message", Kind: KindText},
			{Name: "channel", Label: "Channel", Kind: KindEnum, Values: []string{"web", "whatsapp", "email"}, Filterable: true},
			{Name: "status", Label: "Status", Kind: KindEnum, Values: sessionStatuses, Filterable: true},
			{Name: "unreadCount", Label: "Unread", Kind: KindNumber},
			{Name: "updatedAt", Label: "Updated", Kind: KindTime},
		}},
		SortKeys: []SortKey{
			{Code: "updated", Label: "Recent", Field: "updatedAt", Direction: SortDesc},
			{Code: "unread", Label: "Most unread", Field: "unreadCount", Direction: SortDesc},
		},
		DefaultSort: "updated",
		Operations: []BulkOperation{
			exportOperation(),
			{Code: "resolve", Label: "Resolve", Effect: EffectSetField, Field: "status", Value: "resolved"},
			{Code: "close", Label: "Close", Effect: EffectSetField, Field: "status", Value: "closed", Confirm: true},
		},
		Stats: StatsConfig{
			StatusField: "status",
			SumField:    "unreadCount",
			Buckets: []StatsBucket{
				{Key: "activeChats", Label: "Active", Statuses: []string{"open", "waiting", "active"}, Variant: CardPrimary, Icon: IconMessage},
				{Key: "closedChats", Label: "Closed", Statuses: []string{"resolved", "closed"}, Variant: CardNeutral, Icon: IconCheck},
			},
		},
		SelectHook: "mark_read:unreadCount",
		Report:     ReportConfig{Kind: "chat", Type: "sessions", Format: FormatJSON},
	}
}

func record(id string, fields map[string]any, tags ...string) Record {
	return Record{ID: id, Fields: fields, Tags: tags}
}

func fixtureDate(day int) time.Time {
	return time.Date(2024, time.March, day, 9, 30, 0, 0, time.UTC)
}

var defaultRecords = map[string]func() []Record{
	ListInventory: DefaultInventory,
	ListProducts:  DefaultProducts,
	ListUsers:     DefaultUsers,
	ListTickets:   DefaultTickets,
	ListChat:      DefaultChatSessions,
}

// DefaultInventory returns the five-item inventory fixture.
func DefaultInventory() []Record {
	return []Record{
		record("inv-1", map[string]any{"name": "Maasai Beaded Necklace", "sku": "JW-001", "artisan": "Naserian Ole Sankale", "category": "Jewelry", "status": "in-stock", "stock": 15, "price": 2500, "updatedAt": fixtureDate(12)}),
		record("inv-2", map[string]any{"name": "Kitenge Fabric Handbag", "sku": "FS-014", "artisan": "Amina Wanjiru", "category": "Fashion", "status": "in-stock", "stock": 8, "price": 3200, "updatedAt": fixtureDate(10)}),
		record("inv-3", map[string]any{"name": "Carved Soapstone Bowl", "sku": "HD-203", "artisan": "Joseph Omondi", "category": "Home Decor", "status": "in-stock", "stock": 12, "price": 1800, "updatedAt": fixtureDate(8)}),
		record("inv-4", map[string]any{"name": "Kisii Stone Sculpture", "sku": "AR-077", "artisan": "Joseph Omondi", "category": "Art", "status": "low-stock", "stock": 3, "price": 6500, "updatedAt": fixtureDate(14)}),
		record("inv-5", map[string]any{"name": "Sisal Woven Basket", "sku": "HD-118", "artisan": "Mary Akinyi", "category": "Home Decor", "status": "out-of-stock", "stock": 0, "price": 1500, "updatedAt": fixtureDate(5)}),
	}
}

// DefaultProducts returns the catalog fixture.
func DefaultProducts() []Record {
	return []Record{
		record("prd-1", map[string]any{"name": "Maasai Beaded Necklace", "artisan": "Naserian Ole Sankale", "category": "Jewelry", "status": "active", "price": 2500, "rating": 4.8}, "bestseller", "beads"),
		record("prd-2", map[string]any{"name": "Kitenge Fabric Handbag", "artisan": "Amina Wanjiru", "category": "Fashion", "status": "active", "price": 3200, "rating": 4.6}, "textile"),
		record("prd-3", map[string]any{"name": "Carved Soapstone Bowl", "artisan": "Joseph Omondi", "category": "Home Decor", "status": "draft", "price": 1800, "rating": 4.2}, "stone"),
		record("prd-4", map[string]any{"name": "Kisii Stone Sculpture", "artisan": "Joseph Omondi", "category": "Art", "status": "active", "price": 6500, "rating": 4.9}, "stone", "bestseller"),
		record("prd-5", map[string]any{"name": "Sisal Woven Basket", "artisan": "Mary Akinyi", "category": "Home Decor", "status": "archived", "price": 1500, "rating": 4.4}, "woven"),
		record("prd-6", map[string]any{"name": "Brass Cuff Bracelet", "artisan": "Naserian Ole Sankale", "category": "Jewelry", "status": "draft", "price": 2100, "rating": 4.1}, "brass"),
	}
}

// DefaultUsers returns the user directory fixture.
func DefaultUsers() []Record {
	return []Record{
		record("usr-1", map[string]any{"name": "Grace Muthoni", "email": "grace@craftmarket.co.ke", "role": "admin", "status": "active", "joinedAt": fixtureDate(1)}),
		record("usr-2", map[string]any{"name": "Amina Wanjiru", "email": "amina@craftmarket.co.ke", "role": "artisan", "status": "active", "joinedAt": fixtureDate(3)}),
		record("usr-3", map[string]any{"name": "Joseph Omondi", "email": "joseph@craftmarket.co.ke", "role": "artisan", "status": "pending", "joinedAt": fixtureDate(9)}),
		record("usr-4", map[string]any{"name": "Peter Kamau", "email": "peter@example.com", "role": "customer", "status": "active", "joinedAt": fixtureDate(11)}),
		record("usr-5", map[string]any{"name": "Lucy Njeri", "email": "lucy@example.com", "role": "customer", "status": "suspended", "joinedAt": fixtureDate(6)}),
		record("usr-6", map[string]any{"name": "David Otieno", "email": "david@craftmarket.co.ke", "role": "support", "status": "active", "joinedAt": fixtureDate(2)}),
	}
}

// DefaultTickets returns the support ticket fixture.
func DefaultTickets() []Record {
	return []Record{
		record("tkt-1", map[string]any{"subject": "Order not delivered", "customer": "Peter Kamau", "priority": "high", "status": "open", "unreadCount": 2, "updatedAt": fixtureDate(14)}, "delivery"),
		record("tkt-2", map[string]any{"subject": "Payout delayed", "customer": "Amina Wanjiru", "priority": "urgent", "status": "waiting", "unreadCount": 1, "updatedAt": fixtureDate(13)}, "payments"),
		record("tkt-3", map[string]any{"subject": "Wrong basket size", "customer": "Lucy Njeri", "priority": "medium", "status": "active", "unreadCount": 0, "updatedAt": fixtureDate(12)}, "returns"),
		record("tkt-4", map[string]any{"subject": "Update shop banner", "customer": "Joseph Omondi", "priority": "low", "status": "resolved", "unreadCount": 0, "updatedAt": fixtureDate(9)}, "storefront"),
		record("tkt-5", map[string]any{"subject": "Refund request", "customer": "Peter Kamau", "priority": "medium", "status": "closed", "unreadCount": 0, "updatedAt": fixtureDate(4)}, "payments", "returns"),
	}
}

// DefaultChatSessions returns the live chat fixture.
func DefaultChatSessions() []Record {
	return []Record{
		record("chat-1", map[string]any{"customer": "Peter Kamau", "lastMessage": "Is the necklace available in blue?", "channel": "web", "status": "active", "unreadCount": 2, "updatedAt": fixtureDate(14)}),
		record("chat-2", map[string]any{"customer": "Wanjiku Mwangi", "lastMessage": "Can you ship to Mombasa?", "channel": "whatsapp", "status": "waiting", "unreadCount": 1, "updatedAt": fixtureDate(13)}),
		record("chat-3", map[string]any{"customer": "Lucy Njeri", "lastMessage": "Thanks, received!", "channel": "web", "status": "resolved", "unreadCount": 0, "updatedAt": fixtureDate(11)}),
		record("chat-4", map[string]any{"customer": "Brian Kiptoo", "lastMessage": "Do you do custom carvings?", "channel": "email", "status": "open", "unreadCount": 3, "updatedAt": fixtureDate(10)}),
	}
}
