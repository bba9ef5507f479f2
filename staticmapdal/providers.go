package staticmapdal

import (
	"github.com/jamesrr39/goutil/errorsx"
)

const DefaultProviderID = "osm"

// TileProvider describes a named tile server a map can be rendered from.
type TileProvider struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URLTemplate string `json:"urlTemplate"`
	Attribution string `json:"attribution"`
	MaxZoom     uint   `json:"maxZoom"`
}

// BuiltinProviders returns the providers compiled into the application.
func BuiltinProviders() []*TileProvider {
	return []*TileProvider{
		{
			ID:          "osm",
			Name:        "OpenStreetMap",
			URLTemplate: "https://a.tile.osm.org/{z}/{x}/{y}.png",
			Attribution: "© OpenStreetMap contributors",
			MaxZoom:     19,
		}, {
			ID:          "osm-de",
			Name:        "OpenStreetMap (German style)",
			URLTemplate: "https://a.tile.openstreetmap.de/{z}/{x}/{y}.png",
			Attribution: "© OpenStreetMap contributors",
			MaxZoom:     18,
		}, {
			ID:          "carto-light",
			Name:        "Carto Light",
			URLTemplate: "https://a.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
			Attribution: "© OpenStreetMap contributors © CARTO",
			MaxZoom:     20,
		}, {
			ID:          "carto-dark",
			Name:        "Carto Dark",
			URLTemplate: "https://a.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png",
			Attribution: "© OpenStreetMap contributors © CARTO",
			MaxZoom:     20,
		},
	}
}

type TileProviderSet struct {
	providersMap      map[string]*TileProvider // map[Provider ID]Provider
	defaultProviderID string
}

func NewTileProviderSet(providers []*TileProvider, defaultProviderID string) (*TileProviderSet, errorsx.Error) {
	providerSet := &TileProviderSet{
		providersMap:      make(map[string]*TileProvider),
		defaultProviderID: defaultProviderID,
	}

	defaultIDFound := false

	for _, provider := range providers {
		_, ok := providerSet.providersMap[provider.ID]
		if ok {
			return nil, errorsx.Errorf("duplicate provider ID found: %q", provider.ID)
		}

		providerSet.providersMap[provider.ID] = provider

		if defaultProviderID == provider.ID {
			defaultIDFound = true
		}
	}

	if !defaultIDFound {
		return nil, errorsx.Errorf("default ID %q not found in any supplied providers", defaultProviderID)
	}

	return providerSet, nil
}

func (s *TileProviderSet) GetProviderByID(id string) *TileProvider {
	return s.providersMap[id]
}

func (s *TileProviderSet) GetDefaultProvider() *TileProvider {
	return s.providersMap[s.defaultProviderID]
}

func (s *TileProviderSet) GetAllProviderIDs() []string {
	var providerIDs []string

	for id := range s.providersMap {
		providerIDs = append(providerIDs, id)
	}

	return providerIDs
}
