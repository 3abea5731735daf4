package handlers

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"imagemarket/internal/http/respond"
	"imagemarket/internal/models"
	"imagemarket/internal/store"
)

const marketplacePageSize = 12

type MarketplaceHandler struct {
	store    store.Store
	provider ImageProvider
}

func NewMarketplaceHandler(s store.Store, p ImageProvider) *MarketplaceHandler {
	return &MarketplaceHandler{store: s, provider: p}
}

// Browse combines provider photos with matching uploads. A search term wins
// over a category; with neither, a random selection is shown.
func (h *MarketplaceHandler) Browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, category := q.Get("q"), q.Get("category")
	page, err := positiveInt(q.Get("page"), 1)
	if err != nil {
		respond.Error(w, err, "Failed to load marketplace")
		return
	}

	var (
		photos   models.SearchResult
		degraded bool
		uploads  []models.Upload
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		photos, err = h.providerPage(ctx, query, category, page)
		degraded = err != nil
		return nil
	})
	g.Go(func() error {
		var err error
		uploads, err = h.store.ListUploads(ctx, models.UploadFilter{Category: category, Query: query})
		return err
	})
	if err := g.Wait(); err != nil {
		respond.Error(w, err, "Failed to load marketplace")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"provider": photos,
		"uploads":  uploads,
		"degraded": degraded,
	})
}

func (h *MarketplaceHandler) providerPage(ctx context.Context, query, category string, page int) (models.SearchResult, error) {
	switch {
	case query != "":
		return h.provider.Search(ctx, query, page, marketplacePageSize)
	case category != "" && category != models.CategoryAll:
		return h.provider.Search(ctx, category, page, marketplacePageSize)
	}
	images, err := h.provider.Random(ctx, marketplacePageSize)
	result := models.SearchResult{Results: images, Total: len(images)}
	if len(images) > 0 {
		result.TotalPages = 1
	}
	return result, err
}
