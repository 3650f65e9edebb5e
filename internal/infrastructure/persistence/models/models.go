package models

// All returns every model in dependency order, for AutoMigrate in tests
func All() []interface{} {
	return []interface{}{
		&ProductModel{},
		&StockBatchModel{},
		&SupplierModel{},
		&TechnicianModel{},
		&ProductPurchaseModel{},
		&ProductLineModel{},
		&ServicePurchaseModel{},
		&ServiceLineModel{},
		&SupplierPurchaseModel{},
		&SupplierLineModel{},
		&IncomeRecordModel{},
		&ExpenseRecordModel{},
	}
}
