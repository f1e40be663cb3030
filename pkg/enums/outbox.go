package enums

// OutboxEventType names the domain events queued for publication.
type OutboxEventType string

const (
	OutboxEventSaleCreated  OutboxEventType = "sale.created"
	OutboxEventSaleRefunded OutboxEventType = "sale.refunded"
	OutboxEventFiadoSettled OutboxEventType = "sale.fiado_settled"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregateSale OutboxAggregateType = "sale"
)
