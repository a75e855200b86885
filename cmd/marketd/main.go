package main

import (
	"fmt"
	"github.com/CrossPunks/marketplace-engine/internal/api"
	"github.com/CrossPunks/marketplace-engine/internal/config"
	configdi "github.com/CrossPunks/marketplace-engine/internal/config/di"
	"github.com/CrossPunks/marketplace-engine/internal/history"
	"github.com/gorilla/mux"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
	"net/http"
)

var container di.Container

func main() {
	config.Init("marketd")

	var err error
	container, err = configdi.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	if config.Get().History {
		container.Get("elastic").(history.Index).InstallIndices()
		container.Get("history.indexer")
	}

	if config.Get().Webhook.Url != "" {
		container.Get("notifier")
	}

	go health()

	zap.L().With(zap.String("port", config.Get().ApiPort)).Info("Marketplace started")

	server := container.Get("api").(api.Server)
	if err := http.ListenAndServe(":"+config.Get().ApiPort, server.Router()); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start api server")
	}
}

func health() {
	if err := http.ListenAndServe(":"+config.Get().HealthPort, router()); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to start health server")
	}
}

func router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK")
	}).Methods("GET")

	return r
}
