package feed

import (
	"context"
	"fmt"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
)

// Mux routes each source to the fetcher for its transport kind.
type Mux struct {
	RSS    Fetcher
	API    Fetcher
	Scrape Fetcher
}

// NewMux wires the default transports around one shared client.
func NewMux(client *Client) *Mux {
	return &Mux{
		RSS:    NewRSSFetcher(client),
		API:    NewAPIFetcher(client),
		Scrape: NewScrapeFetcher(client),
	}
}

func (m *Mux) Fetch(ctx context.Context, src source.Source) ([]Item, error) {
	var f Fetcher
	switch src.Kind {
	case source.KindFeed:
		f = m.RSS
	case source.KindAPI:
		f = m.API
	case source.KindScrape, source.KindCurated:
		f = m.Scrape
	}
	if f == nil {
		return nil, fmt.Errorf("source %q: no fetcher for kind %q", src.Name, src.Kind)
	}
	return f.Fetch(ctx, src)
}
