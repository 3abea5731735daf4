// Package storetest holds behaviour checks every store.Store must pass.
package storetest

import (
	"context"
	stderrors "errors"
	"regexp"
	"testing"

	apperrors "imagemarket/internal/errors"
	"imagemarket/internal/models"
	"imagemarket/internal/store"
)

var uploadIDPattern = regexp.MustCompile(`^upload_\d+$`)

// Factory opens a fresh store holding the demo uploads.
type Factory func(t *testing.T) store.Store

// Run exercises the repository contract against newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("list filters", func(t *testing.T) { testListFilters(t, newStore(t)) })
	t.Run("create then get", func(t *testing.T) { testCreateThenGet(t, newStore(t)) })
	t.Run("ids are unique", func(t *testing.T) { testUniqueIDs(t, newStore(t)) })
	t.Run("duplicate id", func(t *testing.T) { testDuplicateID(t, newStore(t)) })
	t.Run("update merges", func(t *testing.T) { testUpdateMerges(t, newStore(t)) })
	t.Run("delete removes", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("unknown ids", func(t *testing.T) { testUnknownIDs(t, newStore(t)) })
	t.Run("entitlements", func(t *testing.T) { testEntitlements(t, newStore(t)) })
}

func ids(uploads []models.Upload) []string {
	out := make([]string, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, u.ID)
	}
	return out
}

func testListFilters(t *testing.T, s store.Store) {
	ctx := context.Background()

	all, err := s.ListUploads(ctx, models.UploadFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if got := ids(all); len(got) != 2 || got[0] != "upload_1" || got[1] != "upload_2" {
		t.Fatalf("list all = %v, want [upload_1 upload_2]", got)
	}

	sun, err := s.ListUploads(ctx, models.UploadFilter{Query: "sun"})
	if err != nil {
		t.Fatalf("list q=sun: %v", err)
	}
	if got := ids(sun); len(got) != 1 || got[0] != "upload_1" {
		t.Fatalf("list q=sun = %v, want [upload_1]", got)
	}

	none, err := s.ListUploads(ctx, models.UploadFilter{Query: "zzz"})
	if err != nil {
		t.Fatalf("list q=zzz: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("list q=zzz = %v, want empty", ids(none))
	}

	nature, err := s.ListUploads(ctx, models.UploadFilter{Category: "nature"})
	if err != nil {
		t.Fatalf("list category: %v", err)
	}
	for _, u := range nature {
		if u.Category != "nature" {
			t.Fatalf("category filter returned %q", u.Category)
		}
	}
	if len(nature) != 1 {
		t.Fatalf("list category=nature = %v", ids(nature))
	}

	upper, err := s.ListUploads(ctx, models.UploadFilter{Category: "NATURE"})
	if err != nil {
		t.Fatalf("list category upper: %v", err)
	}
	if len(upper) != 0 {
		t.Fatalf("category match must be case-sensitive, got %v", ids(upper))
	}

	byUser, err := s.ListUploads(ctx, models.UploadFilter{UserID: "user_999"})
	if err != nil {
		t.Fatalf("list user: %v", err)
	}
	if len(byUser) != 0 {
		t.Fatalf("list user_999 = %v", ids(byUser))
	}
}

func testCreateThenGet(t *testing.T, s store.Store) {
	ctx := context.Background()

	created, err := s.CreateUpload(ctx, models.Upload{
		Title:        "Test",
		Description:  "desc",
		URL:          "/images/placeholder.jpg",
		Thumbnail:    "/images/placeholder_thumb.jpg",
		IsUserUpload: true,
		UserID:       models.DemoUserID,
		Price:        1000,
		Category:     "nature",
		Filename:     "placeholder.jpg",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !uploadIDPattern.MatchString(created.ID) {
		t.Fatalf("id = %q, want upload_<digits>", created.ID)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("CreatedAt not set")
	}

	got, err := s.GetUpload(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Test" || got.Description != "desc" || got.Price != 1000 ||
		got.Category != "nature" || got.UserID != models.DemoUserID || !got.IsUserUpload ||
		got.Filename != "placeholder.jpg" || got.Thumbnail != "/images/placeholder_thumb.jpg" {
		t.Fatalf("get = %+v", got)
	}

	all, err := s.ListUploads(ctx, models.UploadFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if last := all[len(all)-1]; last.ID != created.ID {
		t.Fatalf("new upload not last in insertion order: %v", ids(all))
	}
}

func testUniqueIDs(t *testing.T, s store.Store) {
	ctx := context.Background()
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		u, err := s.CreateUpload(ctx, models.Upload{Title: "burst", UserID: models.DemoUserID})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[u.ID] {
			t.Fatalf("duplicate id %q", u.ID)
		}
		seen[u.ID] = true
	}
}

func testDuplicateID(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.CreateUpload(ctx, models.Upload{ID: "upload_1", Title: "impostor", UserID: "user_x"})
	if !stderrors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	got, err := s.GetUpload(ctx, "upload_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Beach Sunset" {
		t.Fatalf("existing upload overwritten: %+v", got)
	}
}

func testUpdateMerges(t *testing.T, s store.Store) {
	ctx := context.Background()

	title := "Beach Sunset (edited)"
	price := models.Price(1750)
	updated, err := s.UpdateUpload(ctx, "upload_1", models.UploadPatch{Title: &title, Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || updated.Price != price {
		t.Fatalf("update = %+v", updated)
	}
	if updated.Description != "A beautiful sunset at the beach" || updated.Category != "nature" {
		t.Fatalf("update clobbered fields: %+v", updated)
	}

	got, err := s.GetUpload(ctx, "upload_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != title {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()

	if err := s.DeleteUpload(ctx, "upload_2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := s.GetUpload(ctx, "upload_2")
	if !stderrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want not found", err)
	}
	all, err := s.ListUploads(ctx, models.UploadFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := ids(all); len(got) != 1 || got[0] != "upload_1" {
		t.Fatalf("list after delete = %v", got)
	}
}

func testUnknownIDs(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.GetUpload(ctx, "upload_404"); !stderrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("get err = %v, want not found", err)
	}
	title := "x"
	if _, err := s.UpdateUpload(ctx, "upload_404", models.UploadPatch{Title: &title}); !stderrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("update err = %v, want not found", err)
	}
	if err := s.DeleteUpload(ctx, "upload_404"); !stderrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("delete err = %v, want not found", err)
	}
}

func testEntitlements(t *testing.T, s store.Store) {
	ctx := context.Background()

	first, err := s.RecordEntitlement(ctx, models.Entitlement{
		UserID: "user_a", ImageID: "upload_1", Kind: models.KindPurchase,
		Source: models.SourceUpload, Title: "Beach Sunset", Price: 1500,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	again, err := s.RecordEntitlement(ctx, models.Entitlement{
		UserID: "user_a", ImageID: "upload_1", Kind: models.KindPurchase,
		Source: models.SourceUpload, Title: "changed", Price: 1,
	})
	if err != nil {
		t.Fatalf("record again: %v", err)
	}
	if again.Title != first.Title || again.Price != first.Price {
		t.Fatalf("second record replaced first: %+v", again)
	}

	if _, err := s.RecordEntitlement(ctx, models.Entitlement{
		UserID: "user_a", ImageID: "abc", Kind: models.KindDownload, Source: models.SourceProvider,
	}); err != nil {
		t.Fatalf("record download: %v", err)
	}

	purchases, err := s.ListEntitlements(ctx, "user_a", models.KindPurchase)
	if err != nil {
		t.Fatalf("list purchases: %v", err)
	}
	if len(purchases) != 1 || purchases[0].ImageID != "upload_1" {
		t.Fatalf("purchases = %+v", purchases)
	}

	ok, err := s.HasEntitlement(ctx, "user_a", "upload_1", models.KindPurchase)
	if err != nil || !ok {
		t.Fatalf("HasEntitlement = %v, %v", ok, err)
	}
	ok, err = s.HasEntitlement(ctx, "user_b", "upload_1", models.KindPurchase)
	if err != nil || ok {
		t.Fatalf("HasEntitlement other user = %v, %v", ok, err)
	}

	empty, err := s.ListEntitlements(ctx, "user_b", models.KindDownload)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("empty list = %#v, want non-nil empty slice", empty)
	}
}
