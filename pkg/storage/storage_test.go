package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crimson/pkg/schema"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testDocument(id string, created time.Time) *schema.Document {
	return &schema.Document{
		ID:    id,
		Title: "Title " + id,
		Sections: []schema.Section{
			{Heading: "One", Body: "first body", Directive: "a quiet cafe"},
			{Heading: "Two", Body: "second body"},
		},
		SEOTitle:       "seo " + id,
		SEODescription: "desc " + id,
		HeroPrompt:     "boulevard at dusk",
		Appearance:     "a 42-year-old architect",
		Face:           "sharp features",
		Quote:          "q",
		City:           "Porto",
		Intensity:      7,
		StoryType:      schema.StoryRomance,
		CreatedAt:      created,
	}
}

func TestDocumentRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := testDocument("doc1", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, s.CreateDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Sections, got.Sections)
	assert.Equal(t, doc.HeroPrompt, got.HeroPrompt)
	assert.Equal(t, doc.Intensity, got.Intensity)
	assert.Equal(t, doc.StoryType, got.StoryType)
	assert.True(t, doc.CreatedAt.Equal(got.CreatedAt))
}

func TestGetDocumentNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetDocument(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDocumentsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.CreateDocument(ctx, testDocument("old", base.Add(-time.Hour))))
	require.NoError(t, s.CreateDocument(ctx, testDocument("new", base)))

	docs, err := s.ListDocuments(ctx, 0)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "old", docs[1].ID)

	docs, err = s.ListDocuments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "new", docs[0].ID)
}

func TestUpsertAssetOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := &schema.Asset{DocumentID: "doc1", Role: "0", Prompt: "p1", Error: "backend down"}
	require.NoError(t, s.UpsertAsset(ctx, first))

	second := &schema.Asset{DocumentID: "doc1", Role: "0", Prompt: "p1", Path: "/images/doc1/0.webp"}
	require.NoError(t, s.UpsertAsset(ctx, second))

	assets, err := s.ListAssets(ctx, "doc1")
	require.NoError(t, err)
	require.Len(t, assets, 1, "same (document, role) replaces the row")
	assert.Equal(t, "/images/doc1/0.webp", assets[0].Path)
	assert.Empty(t, assets[0].Error, "regeneration clears the recorded failure")
}

func TestListAssetsOrdered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, role := range []string{"2", "10", schema.RolePortrait, "0", schema.RoleHero} {
		require.NoError(t, s.UpsertAsset(ctx, &schema.Asset{DocumentID: "doc1", Role: role, Prompt: "p"}))
	}

	assets, err := s.ListAssets(ctx, "doc1")
	require.NoError(t, err)
	roles := make([]string, len(assets))
	for i, a := range assets {
		roles[i] = a.Role
	}
	assert.Equal(t, []string{"hero", "portrait", "0", "2", "10"}, roles)
}

func TestDeleteDocumentRemovesAssets(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateDocument(ctx, testDocument("doc1", time.Now().UTC())))
	require.NoError(t, s.UpsertAsset(ctx, &schema.Asset{DocumentID: "doc1", Role: schema.RoleHero, Prompt: "p"}))

	require.NoError(t, s.DeleteDocument(ctx, "doc1"))

	_, err := s.GetDocument(ctx, "doc1")
	assert.ErrorIs(t, err, ErrNotFound)

	assets, err := s.ListAssets(ctx, "doc1")
	require.NoError(t, err)
	assert.Empty(t, assets)
}
