package webservices

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/staticmap-app/staticmapdal"
)

func NewInfoService(logger *logpkg.Logger, providerSet *staticmapdal.TileProviderSet) *InfoService {
	ws := &InfoService{logger, providerSet, chi.NewRouter()}
	ws.Get("/", ws.handleGet)

	return ws
}

type InfoService struct {
	logger      *logpkg.Logger
	providerSet *staticmapdal.TileProviderSet
	chi.Router
}

type providersType struct {
	DefaultProviderID string                       `json:"defaultProviderId"`
	Providers         []*staticmapdal.TileProvider `json:"providers"`
}

func (ws *InfoService) handleGet(w http.ResponseWriter, r *http.Request) {
	providers := []*staticmapdal.TileProvider{}

	for _, id := range ws.providerSet.GetAllProviderIDs() {
		providers = append(providers, ws.providerSet.GetProviderByID(id))
	}

	// make deterministic
	sort.Slice(providers, func(a, b int) bool {
		return providers[a].ID < providers[b].ID
	})

	render.JSON(w, r, providersType{
		ws.providerSet.GetDefaultProvider().ID,
		providers,
	})
}
