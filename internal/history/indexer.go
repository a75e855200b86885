package history

import (
	"github.com/CrossPunks/marketplace-engine/internal/dev"
	"github.com/CrossPunks/marketplace-engine/internal/entity"
	"github.com/CrossPunks/marketplace-engine/internal/event"
	"go.uber.org/zap"
)

// Indexer mirrors settlement events into the trade-history index.
type Indexer interface {
	TriggerIndex(msg interface{})
	TriggerErrorIndex(msg interface{})
}

type indexer struct {
	elastic Index
}

func NewIndexer(elastic Index) Indexer {
	i := indexer{elastic}

	event.AddEventListener(event.AssetsMintedEvent, i.TriggerIndex)
	event.AddEventListener(event.OfferListedEvent, i.TriggerIndex)
	event.AddEventListener(event.OfferWithdrawnEvent, i.TriggerIndex)
	event.AddEventListener(event.TradeSettledEvent, i.TriggerIndex)
	event.AddEventListener(event.CommissionWithdrawnEvent, i.TriggerIndex)
	event.AddEventListener(event.SettlementFailedEvent, i.TriggerErrorIndex)

	return i
}

func (i indexer) TriggerIndex(msg interface{}) {
	action, ok := msg.(entity.MarketAction)
	if !ok {
		zap.L().Warn("History: Unexpected event payload")
		return
	}

	i.elastic.AddIndexRequest(MarketActionIndex.Get(), action)
	i.elastic.BatchPersist()
}

func (i indexer) TriggerErrorIndex(msg interface{}) {
	report, ok := msg.(dev.Error)
	if !ok {
		zap.L().Warn("History: Unexpected error payload")
		return
	}

	i.elastic.AddIndexRequest(ErrorIndex.Get(), report)
	i.elastic.Persist()
}
