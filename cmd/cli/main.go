package main

import (
	"fmt"
	"github.com/CrossPunks/marketplace-engine/internal/config"
	configdi "github.com/CrossPunks/marketplace-engine/internal/config/di"
	"github.com/CrossPunks/marketplace-engine/internal/entity"
	"github.com/CrossPunks/marketplace-engine/internal/market"
	"github.com/CrossPunks/marketplace-engine/internal/referral"
	"github.com/CrossPunks/marketplace-engine/internal/sale"
	"github.com/sarulabs/di/v2"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"os"
)

var (
	container   di.Container
	marketplace market.Marketplace
	controller  sale.Controller
	referrals   referral.Registry
)

func main() {
	config.Init("cli")

	var err error
	container, err = configdi.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}
	marketplace = container.Get("market").(market.Marketplace)
	controller = container.Get("sale").(sale.Controller)
	referrals = container.Get("referrals").(referral.Registry)

	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:   "whitelist",
				Usage:  "allow or forbid a collection on the marketplace",
				Action: setWhitelist,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "remove", Value: false, Usage: "clear the listable flag instead of setting it"},
				},
			},
			{
				Name:   "activate",
				Usage:  "open the primary sale for public minting (one-way)",
				Action: activateSale,
			},
			{
				Name:   "register-referrer",
				Usage:  "register a referrer identity and print its id",
				Action: registerReferrer,
			},
			{
				Name:   "offers",
				Usage:  "list the offer book, optionally for one collection",
				Action: listOffers,
			},
			{
				Name:   "whitelisted",
				Usage:  "list the collections approved for listing",
				Action: listWhitelisted,
			},
			{
				Name:   "withdraw-commission",
				Usage:  "drain the commission balance to the marketplace owner",
				Action: withdrawCommission,
			},
		},
	}

	err = app.Run(os.Args)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start CLI")
	}
}

func setWhitelist(c *cli.Context) error {
	collection := c.Args().First()
	if collection == "" {
		zap.L().Error("No collection provided")
		return nil
	}

	listable := !c.Bool("remove")

	if err := marketplace.SetListable(config.Get().Market.Owner, collection, listable); err != nil {
		zap.L().With(zap.Error(err), zap.String("collection", collection)).Error("Failed to update whitelist")
		return err
	}

	zap.S().Infof("Whitelist updated: %s listable=%t", collection, listable)

	return nil
}

func activateSale(c *cli.Context) error {
	if err := controller.Activate(config.Get().Sale.Admin); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to activate sale")
		return err
	}

	zap.L().Info("Sale is active")

	return nil
}

func registerReferrer(c *cli.Context) error {
	identity := c.Args().First()
	if identity == "" {
		zap.L().Error("No identity provided")
		return nil
	}

	id, err := referrals.Register(identity)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to register referrer")
		return err
	}

	fmt.Printf("%d\n", id)

	return nil
}

func listOffers(c *cli.Context) error {
	var offers []entity.Offer
	var err error

	if collection := c.Args().First(); collection != "" {
		offers, err = marketplace.GetOffersByCollection(collection)
	} else {
		offers, err = marketplace.GetOffers()
	}
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to get offers")
		return err
	}

	for _, offer := range offers {
		fmt.Printf("%s #%d seller=%s price=%s active=%t\n", offer.Collection, offer.TokenId, offer.Seller, offer.Price, offer.Active)
	}

	return nil
}

func listWhitelisted(c *cli.Context) error {
	collections, err := marketplace.ListableCollections()
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to get whitelist")
		return err
	}

	for _, collection := range collections {
		fmt.Println(collection)
	}

	return nil
}

func withdrawCommission(c *cli.Context) error {
	amount, err := marketplace.WithdrawCommission(config.Get().Market.Owner)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to withdraw commission")
		return err
	}

	zap.S().Infof("Commission withdrawn: %s", amount)

	return nil
}
