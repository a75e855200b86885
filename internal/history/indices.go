package history

import (
	"fmt"
	"github.com/CrossPunks/marketplace-engine/internal/config"
)

type Indices string

var (
	MarketActionIndex Indices = "marketaction"
	ErrorIndex        Indices = "error"
)

// Get prefixes the index with the network and instance name.
func (i *Indices) Get() string {
	return fmt.Sprintf("%s.%s.%s", config.Get().Network, config.Get().Index, string(*i))
}
