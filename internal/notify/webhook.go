package notify

import (
	"bytes"
	"encoding/json"
	"github.com/CrossPunks/marketplace-engine/internal/entity"
	"github.com/CrossPunks/marketplace-engine/internal/event"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// Service posts settled trades and primary mints to an operator webhook.
// Delivery is best-effort with retries; failures never affect settlement.
type Service interface {
	TriggerNotify(msg interface{})
	Notify(action entity.MarketAction) error
}

type service struct {
	webhookUrl string
	client     *retryablehttp.Client
}

func NewService(webhookUrl string, client *retryablehttp.Client) Service {
	s := service{webhookUrl, client}

	event.AddEventListener(event.TradeSettledEvent, s.TriggerNotify)
	event.AddEventListener(event.AssetsMintedEvent, s.TriggerNotify)

	return s
}

func (s service) TriggerNotify(msg interface{}) {
	action, ok := msg.(entity.MarketAction)
	if !ok {
		zap.L().Warn("Notify: Unexpected event payload")
		return
	}

	if err := s.Notify(action); err != nil {
		zap.L().With(zap.Error(err)).Warn("Notify: Webhook delivery failed")
	}
}

func (s service) Notify(action entity.MarketAction) error {
	body, err := json.Marshal(action)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequest("POST", s.webhookUrl, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	zap.L().With(
		zap.String("action", string(action.Action)),
		zap.Int("status", resp.StatusCode),
	).Debug("Notify: Webhook delivered")

	return nil
}
