package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/CrossPunks/marketplace-engine/internal/market"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"net/http"
	"strconv"
)

// Server exposes a read-only view of the marketplace: the offer book, the
// whitelist and the commission balance. All mutation goes through the
// settlement engine itself.
type Server struct {
	marketplace market.Marketplace
}

func NewServer(marketplace market.Marketplace) Server {
	return Server{marketplace}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHomepage).Methods("GET")
	r.HandleFunc("/offers", s.handleGetOffers).Methods("GET")
	r.HandleFunc("/offers/{collection}", s.handleGetCollectionOffers).Methods("GET")
	r.HandleFunc("/offers/{collection}/{tokenId}", s.handleGetOffer).Methods("GET")
	r.HandleFunc("/whitelist", s.handleGetWhitelist).Methods("GET")
	r.HandleFunc("/commission", s.handleGetCommission).Methods("GET")
	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "CrossPunks Marketplace")
}

func (s Server) handleGetOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := s.marketplace.GetOffers()
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Offers not available")
		http.Error(w, "Offers not available", http.StatusInternalServerError)
		return
	}

	writeJson(w, offers)
}

func (s Server) handleGetCollectionOffers(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]

	offers, err := s.marketplace.GetOffersByCollection(collection)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("collection", collection)).Warn("Offers not available")
		http.Error(w, "Offers not available", http.StatusInternalServerError)
		return
	}

	writeJson(w, offers)
}

func (s Server) handleGetWhitelist(w http.ResponseWriter, r *http.Request) {
	collections, err := s.marketplace.ListableCollections()
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Whitelist not available")
		http.Error(w, "Whitelist not available", http.StatusInternalServerError)
		return
	}

	writeJson(w, collections)
}

func (s Server) handleGetOffer(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	tokenId, err := getTokenId(r)
	if err != nil {
		http.Error(w, "Invalid token id", http.StatusBadRequest)
		return
	}

	offer, err := s.marketplace.GetOffer(collection, tokenId)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("collection", collection), zap.Uint64("tokenId", tokenId)).Warn("Offer not available")
		http.Error(w, "Offer not available", http.StatusNotFound)
		return
	}

	writeJson(w, offer)
}

func (s Server) handleGetCommission(w http.ResponseWriter, r *http.Request) {
	balance, err := s.marketplace.CommissionBalance()
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Commission not available")
		http.Error(w, "Commission not available", http.StatusInternalServerError)
		return
	}

	writeJson(w, map[string]string{"commission": balance.String()})
}

func getTokenId(r *http.Request) (uint64, error) {
	tokenId, ok := mux.Vars(r)["tokenId"]
	if !ok {
		return 0, errors.New("invalid parameters")
	}

	return strconv.ParseUint(tokenId, 10, 64)
}

func writeJson(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to encode response")
	}
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})
}
