package event

type Type string

const (
	AssetsMintedEvent        Type = "AssetsMintedEvent"
	SaleActivatedEvent       Type = "SaleActivatedEvent"
	OfferListedEvent         Type = "OfferListedEvent"
	OfferWithdrawnEvent      Type = "OfferWithdrawnEvent"
	TradeSettledEvent        Type = "TradeSettledEvent"
	CommissionWithdrawnEvent Type = "CommissionWithdrawnEvent"
	SettlementFailedEvent    Type = "SettlementFailedEvent"
)
