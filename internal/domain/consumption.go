package domain

// BatchConsumption joins a ledger transaction to a batch it drew from.
// CostPerUnit is copied from the batch at consumption time so that later
// corrections to the batch's cost never drift historical cost-of-goods
// figures. The existence of these rows is what makes a transaction
// reversible.
type BatchConsumption struct {
	ID               int64
	BatchID          int64
	TransactionID    int64
	QuantityConsumed int
	CostPerUnit      int64
	TotalCost        int64
}
