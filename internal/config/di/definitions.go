package di

import (
	"github.com/CrossPunks/marketplace-engine/internal/api"
	"github.com/CrossPunks/marketplace-engine/internal/chain"
	"github.com/CrossPunks/marketplace-engine/internal/config"
	"github.com/CrossPunks/marketplace-engine/internal/history"
	"github.com/CrossPunks/marketplace-engine/internal/market"
	"github.com/CrossPunks/marketplace-engine/internal/notify"
	"github.com/CrossPunks/marketplace-engine/internal/referral"
	"github.com/CrossPunks/marketplace-engine/internal/repository"
	"github.com/CrossPunks/marketplace-engine/internal/sale"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
	"time"
)

var Definitions = []di.Def{
	{
		Name: "bolt",
		Build: func(ctn di.Container) (interface{}, error) {
			bolt, err := repository.NewBolt(config.Get().StorePath)
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to open store")
			}
			return bolt, nil
		},
		Close: func(obj interface{}) error {
			return obj.(*repository.Bolt).Close()
		},
	},
	{
		Name: "assets",
		Build: func(ctn di.Container) (interface{}, error) {
			return chain.NewMemoryAssetRegistry(), nil
		},
	},
	{
		Name: "tokens",
		Build: func(ctn di.Container) (interface{}, error) {
			return chain.NewMemoryTokenLedger(config.Get().Sale.PaymentToken), nil
		},
	},
	{
		Name: "referrals",
		Build: func(ctn di.Container) (interface{}, error) {
			bolt := ctn.Get("bolt").(*repository.Bolt)
			return referral.NewRegistry(bolt.Referrals()), nil
		},
	},
	{
		Name: "market",
		Build: func(ctn di.Container) (interface{}, error) {
			bolt := ctn.Get("bolt").(*repository.Bolt)
			return market.NewMarketplace(
				config.Get().Market.Owner,
				config.Get().Market.Custody,
				ctn.Get("assets").(chain.AssetRegistry),
				ctn.Get("tokens").(chain.TokenLedger),
				bolt.Offers(),
				bolt.Whitelist(),
				bolt.Commission(),
			), nil
		},
	},
	{
		Name: "sale",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := config.Get().Sale
			return sale.NewController(sale.ControllerParams{
				Admin:         cfg.Admin,
				Beneficiary:   cfg.Beneficiary,
				Collection:    cfg.Collection,
				Treasury:      cfg.Treasury,
				UnitPrice:     cfg.UnitPrice,
				Assets:        ctn.Get("assets").(chain.AssetRegistry),
				Tokens:        ctn.Get("tokens").(chain.TokenLedger),
				Referrals:     ctn.Get("referrals").(referral.Registry),
				PaymentToken:  cfg.PaymentToken,
				PlatformToken: cfg.PlatformToken,
			}), nil
		},
	},
	{
		Name: "elastic",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, err := history.New()
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
			}
			return elastic, nil
		},
	},
	{
		Name: "history.indexer",
		Build: func(ctn di.Container) (interface{}, error) {
			return history.NewIndexer(ctn.Get("elastic").(history.Index)), nil
		},
	},
	{
		Name: "notifier",
		Build: func(ctn di.Container) (interface{}, error) {
			client := retryablehttp.NewClient()
			client.RetryMax = config.Get().Webhook.Retries
			client.HTTPClient.Timeout = time.Duration(config.Get().Webhook.Timeout) * time.Second
			client.Logger = nil

			return notify.NewService(config.Get().Webhook.Url, client), nil
		},
	},
	{
		Name: "api",
		Build: func(ctn di.Container) (interface{}, error) {
			return api.NewServer(ctn.Get("market").(market.Marketplace)), nil
		},
	},
}

func NewContainer() (di.Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}

	return builder.Build(), nil
}
