package models

// MasterTables are the long-lived reference tables a selective reset must
// leave untouched.
func MasterTables() []string {
	return []string{"users", "categories", "products"}
}

// TransactionalTables returns the tables a selective reset empties, in strict
// leaf-to-root dependency order. Deletion must follow this order even when
// referential-integrity enforcement is suspended.
func TransactionalTables() []string {
	return []string{
		"refund_items",
		"sale_items",
		"promotion_products",
		"promotions",
		"refunds",
		"sales",
		"guests",
		"customers",
	}
}

// All returns every model registered for schema migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&Customer{},
		&Guest{},
		&Sale{},
		&SaleItem{},
		&Refund{},
		&RefundItem{},
		&Promotion{},
		&PromotionProduct{},
		&OperationEvent{},
	}
}
