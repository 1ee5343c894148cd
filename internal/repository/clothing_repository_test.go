package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobe/internal/domain"
	"wardrobe/internal/imaging"
	"wardrobe/internal/storage"
)

func ptr(s string) *string { return &s }

func newItem(name, category, mainColor string, secondary *string, location domain.Location) *domain.ClothingItem {
	return &domain.ClothingItem{
		Name:           name,
		Category:       category,
		MainColor:      mainColor,
		SecondaryColor: secondary,
		Location:       location,
		Count:          domain.DefaultCount,
	}
}

func TestCreateFillsIDAndCreatedOn(t *testing.T) {
	truncate(t)
	repo := NewClothingRepository(testDB)
	ctx := context.Background()

	item := newItem("Red T-Shirt", "Tops", "Red", nil, domain.LocationLondon)
	require.NoError(t, repo.Create(ctx, item))

	assert.NotZero(t, item.ID)
	assert.False(t, item.CreatedOn.IsZero())

	found, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Red T-Shirt", found.Name)
	assert.Nil(t, found.SecondaryColor)
	assert.Nil(t, found.ImageURL)
	assert.Equal(t, domain.LocationLondon, found.Location)
	assert.Equal(t, 1, found.Count)
	assert.True(t, item.CreatedOn.Equal(found.CreatedOn))
}

func TestCreateRejectsUnknownLocation(t *testing.T) {
	truncate(t)
	repo := NewClothingRepository(testDB)

	err := repo.Create(context.Background(), newItem("Coat", "Outerwear", "Black", nil, "Paris"))
	require.Error(t, err)

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFindByIDNotFound(t *testing.T) {
	truncate(t)
	repo := NewClothingRepository(testDB)

	_, err := repo.FindByID(context.Background(), 4242)
	assert.ErrorIs(t, err, ErrClothingItemNotFound)
}

func TestListIsOrderedByID(t *testing.T) {
	truncate(t)
	repo := NewClothingRepository(testDB)
	ctx := context.Background()

	for _, name := range []string{"Blue Jeans", "Green Jacket", "Black Sneakers"} {
		require.NoError(t, repo.Create(ctx, newItem(name, "Misc", "Blue", nil, domain.LocationStockholm)))
	}

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Blue Jeans", items[0].Name)
	assert.Equal(t, "Black Sneakers", items[2].Name)
	assert.Less(t, items[0].ID, items[1].ID)
	assert.Less(t, items[1].ID, items[2].ID)
}

func TestSearchEscapesWildcards(t *testing.T) {
	truncate(t)
	repo := NewClothingRepository(testDB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newItem("50% Wool Scarf", "Accessories", "Grey", nil, domain.LocationLondon)))
	require.NoError(t, repo.Create(ctx, newItem("Wool Hat", "Accessories", "Grey", nil, domain.LocationLondon)))
	require.NoError(t, repo.Create(ctx, newItem("snake_case tee", "Tops", "White", nil, domain.LocationLondon)))
	require.NoError(t, repo.Create(ctx, newItem(`back\slash`, "Tops", "White", nil, domain.LocationLondon)))

	cases := map[string][]string{
		"%":      {"50% Wool Scarf"},
		"_":      {"snake_case tee"},
		`\`:      {`back\slash`},
		"WOOL":   {"50% Wool Scarf", "Wool Hat"},
		"grey":   {"50% Wool Scarf", "Wool Hat"},
		"purple": {},
	}

	for query, want := range cases {
		items, err := repo.Search(ctx, query)
		require.NoError(t, err, query)

		got := []string{}
		for _, item := range items {
			got = append(got, item.Name)
		}
		assert.ElementsMatch(t, want, got, "query %q", query)
	}
}

func TestUpdateLocationChangesOnlyLocation(t *testing.T) {
	truncate(t)
	repo := NewClothingRepository(testDB)
	ctx := context.Background()

	item := newItem("Green Jacket", "Outerwear", "Green", ptr("Gray"), domain.LocationLondon)
	item.ImageURL = ptr("https://wardrobe.s3.amazonaws.com/Green_Jacket.jpg")
	item.Count = 2
	require.NoError(t, repo.Create(ctx, item))

	require.NoError(t, repo.UpdateLocation(ctx, item.ID, domain.LocationStockholm))

	moved, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)

	expected := *item
	expected.Location = domain.LocationStockholm
	expected.CreatedOn = moved.CreatedOn
	assert.Equal(t, &expected, moved)
	assert.True(t, item.CreatedOn.Equal(moved.CreatedOn))

	assert.ErrorIs(t, repo.UpdateLocation(ctx, item.ID+100, domain.LocationLondon), ErrClothingItemNotFound)
}

func TestUpdateMissingItem(t *testing.T) {
	truncate(t)
	repo := NewClothingRepository(testDB)

	item := newItem("Ghost", "Tops", "White", nil, domain.LocationLondon)
	item.ID = 999
	assert.ErrorIs(t, repo.Update(context.Background(), item), ErrClothingItemNotFound)
}

func TestProperty_CreateThenFindPreservesFields(t *testing.T) {
	truncate(t)
	repo := NewClothingRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("a created item reads back with the same fields", prop.ForAll(
		func(name, category, mainColor, secondaryColor string, location string, count int) bool {
			ctx := context.Background()

			var secondary *string
			if secondaryColor != "" {
				secondary = &secondaryColor
			}

			item := newItem(name, category, mainColor, secondary, domain.Location(location))
			item.Count = count
			if err := repo.Create(ctx, item); err != nil {
				t.Logf("FAIL: Failed to create item: %v", err)
				return false
			}

			found, err := repo.FindByID(ctx, item.ID)
			if err != nil {
				t.Logf("FAIL: Failed to find item: %v", err)
				return false
			}

			if found.Name != name || found.Category != category || found.MainColor != mainColor {
				t.Logf("FAIL: Field mismatch. Expected %+v, got %+v", item, found)
				return false
			}
			if (found.SecondaryColor == nil) != (secondary == nil) {
				t.Logf("FAIL: Secondary colour nullness mismatch")
				return false
			}
			if secondary != nil && *found.SecondaryColor != *secondary {
				t.Logf("FAIL: Secondary colour mismatch. Expected %s, got %s", *secondary, *found.SecondaryColor)
				return false
			}

			return string(found.Location) == location && found.Count == count && found.ImageURL == nil
		},
		gen.RegexMatch(`[A-Za-z0-9 -]{1,100}`),
		gen.RegexMatch(`[A-Za-z]{1,50}`),
		gen.RegexMatch(`[A-Za-z]{1,30}`),
		gen.RegexMatch(`[A-Za-z]{0,30}`),
		gen.OneConstOf("London", "Stockholm"),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

func TestProperty_SearchMatchesSubstringIgnoringCase(t *testing.T) {
	repo := NewClothingRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("search returns exactly the items with a field containing the query", prop.ForAll(
		func(name1, category1, secondary1, name2, category2, secondary2, query string) bool {
			ctx := context.Background()
			truncate(t)

			candidates := []*domain.ClothingItem{
				newItem(name1, category1, "Teal", nil, domain.LocationLondon),
				newItem(name2, category2, "Plum", nil, domain.LocationStockholm),
			}
			for i, secondary := range []string{secondary1, secondary2} {
				if secondary != "" {
					candidates[i].SecondaryColor = &secondary
				}
			}

			var want []int64
			for _, item := range candidates {
				if err := repo.Create(ctx, item); err != nil {
					t.Logf("FAIL: Failed to create item: %v", err)
					return false
				}
				if matches(item, query) {
					want = append(want, item.ID)
				}
			}

			results, err := repo.Search(ctx, query)
			if err != nil {
				t.Logf("FAIL: Search failed: %v", err)
				return false
			}

			got := []int64{}
			for _, item := range results {
				got = append(got, item.ID)
			}
			sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

			if len(got) != len(want) {
				t.Logf("FAIL: query %q expected ids %v, got %v", query, want, got)
				return false
			}
			for i := range got {
				if got[i] != want[i] {
					t.Logf("FAIL: query %q expected ids %v, got %v", query, want, got)
					return false
				}
			}
			return true
		},
		gen.RegexMatch(`[abAB%_ ]{1,6}`),
		gen.RegexMatch(`[abAB%_]{1,6}`),
		gen.RegexMatch(`[abAB%_]{0,6}`),
		gen.RegexMatch(`[abAB%_ ]{1,6}`),
		gen.RegexMatch(`[abAB%_]{1,6}`),
		gen.RegexMatch(`[abAB%_]{0,6}`),
		gen.RegexMatch(`[abAB%_]{0,2}`),
	))

	properties.TestingRun(t)
}

func matches(item *domain.ClothingItem, query string) bool {
	q := strings.ToLower(query)
	fields := []string{item.Name, item.Category, item.MainColor}
	if item.SecondaryColor != nil {
		fields = append(fields, *item.SecondaryColor)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func TestProperty_UpdateKeepsIDAndCreatedOn(t *testing.T) {
	truncate(t)
	repo := NewClothingRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("update replaces fields but never id or created_on", prop.ForAll(
		func(name1, name2, color1, color2 string, count int) bool {
			ctx := context.Background()

			item := newItem(name1, "Tops", color1, nil, domain.LocationLondon)
			if err := repo.Create(ctx, item); err != nil {
				t.Logf("FAIL: Failed to create item: %v", err)
				return false
			}
			id, createdOn := item.ID, item.CreatedOn

			item.Name = name2
			item.MainColor = color2
			item.SecondaryColor = &color1
			item.Location = domain.LocationStockholm
			item.Count = count
			item.ImageURL = ptr("https://bucket.s3.amazonaws.com/" + strings.ReplaceAll(name2, " ", "_") + ".jpg")
			if err := repo.Update(ctx, item); err != nil {
				t.Logf("FAIL: Failed to update item: %v", err)
				return false
			}

			found, err := repo.FindByID(ctx, id)
			if err != nil {
				t.Logf("FAIL: Failed to find item: %v", err)
				return false
			}

			return found.ID == id &&
				found.CreatedOn.Equal(createdOn) &&
				found.Name == name2 &&
				found.MainColor == color2 &&
				found.SecondaryColor != nil && *found.SecondaryColor == color1 &&
				found.Location == domain.LocationStockholm &&
				found.Count == count &&
				found.ImageURL != nil && *found.ImageURL == *item.ImageURL
		},
		gen.RegexMatch(`[A-Za-z ]{1,40}`),
		gen.RegexMatch(`[A-Za-z ]{1,40}`),
		gen.RegexMatch(`[A-Za-z]{1,30}`),
		gen.RegexMatch(`[A-Za-z]{1,30}`),
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}

func TestProperty_DeleteTwiceReportsNotFound(t *testing.T) {
	truncate(t)
	repo := NewClothingRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("deleted items are gone and a second delete is not found", prop.ForAll(
		func(name string) bool {
			ctx := context.Background()

			item := newItem(name, "Footwear", "Black", ptr("White"), domain.LocationStockholm)
			if err := repo.Create(ctx, item); err != nil {
				t.Logf("FAIL: Failed to create item: %v", err)
				return false
			}

			if err := repo.Delete(ctx, item.ID); err != nil {
				t.Logf("FAIL: First delete failed: %v", err)
				return false
			}

			if _, err := repo.FindByID(ctx, item.ID); !errors.Is(err, ErrClothingItemNotFound) {
				t.Logf("FAIL: Expected not found after delete, got %v", err)
				return false
			}

			return errors.Is(repo.Delete(ctx, item.ID), ErrClothingItemNotFound)
		},
		gen.RegexMatch(`[A-Za-z ]{1,60}`),
	))

	properties.TestingRun(t)
}

func TestLongNonASCIIImageURLIsStored(t *testing.T) {
	truncate(t)
	repo := NewClothingRepository(testDB)
	ctx := context.Background()

	name := strings.Repeat("é", 100)
	url := storage.PublicURL("wardrobe-images", storage.DefaultPublicDomain, imaging.ObjectKey(name))
	require.Greater(t, len(url), 255)

	item := newItem(name, "Tops", "White", nil, domain.LocationLondon)
	item.ImageURL = &url
	require.NoError(t, repo.Create(ctx, item))

	found, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ImageURL)
	assert.Equal(t, url, *found.ImageURL)

	found.ImageURL = &url
	require.NoError(t, repo.Update(ctx, found))
}
