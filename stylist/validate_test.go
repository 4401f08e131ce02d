package stylist

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(items ...WardrobeItem) []OutfitItemRef {
	out := make([]OutfitItemRef, len(items))
	for i, it := range items {
		out[i] = refFor(it)
	}
	return out
}

func ids(c OutfitCandidate) []string {
	var out []string
	for _, r := range c.OutfitItems {
		out = append(out, string(r.ID))
	}
	return out
}

func newValidator() *OutfitValidator {
	return NewOutfitValidator(DefaultRuleTable(), MaxColors, MaxPatterns)
}

func TestValidateLeavesValidOutfitUnchanged(t *testing.T) {
	wardrobe := sampleWardrobe()
	in := OutfitCandidate{
		Occasion:    CasualOuting,
		OutfitItems: refs(wardrobe[0], wardrobe[1], wardrobe[2]),
		Description: "Easy.",
	}

	out, res := newValidator().Validate(in, wardrobe, CasualOuting)

	assert.True(t, res.OK)
	assert.Equal(t, in.OutfitItems, out.OutfitItems)
	assert.Empty(t, out.Warnings)
	assert.Equal(t, "Easy.", out.Description)
}

func TestValidateCleanOutfitHasEmptyLists(t *testing.T) {
	wardrobe := sampleWardrobe()
	in := OutfitCandidate{OutfitItems: refs(wardrobe[0], wardrobe[1], wardrobe[2])}

	out, _ := newValidator().Validate(in, wardrobe, CasualOuting)
	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"warnings":[]`)

	out, res := newValidator().Validate(OutfitCandidate{}, nil, CasualOuting)
	assert.False(t, res.OK)
	assert.Empty(t, out.OutfitItems)
	raw, err = json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "null")
}

func TestValidateDropsHallucinatedIDs(t *testing.T) {
	wardrobe := sampleWardrobe()
	in := OutfitCandidate{OutfitItems: []OutfitItemRef{
		{ID: "a", ItemType: Top},
		{ID: "zz", ItemType: Top},
		{ID: "b", ItemType: Bottom},
		{ID: "c", ItemType: Shoes},
	}}

	out, res := newValidator().Validate(in, wardrobe, CasualOuting)

	assert.True(t, res.OK)
	assert.Equal(t, []string{"a", "b", "c"}, ids(out))
	require.NotEmpty(t, out.Warnings)
	assert.Contains(t, out.Warnings[0], `"zz"`)
}

func TestValidateSuppressesDuplicateShoes(t *testing.T) {
	wardrobe := sampleWardrobe()
	in := OutfitCandidate{OutfitItems: []OutfitItemRef{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
	}}

	out, res := newValidator().Validate(in, wardrobe, CasualOuting)

	assert.True(t, res.OK)
	assert.Equal(t, []string{"a", "b", "c"}, ids(out))
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "shoes")
}

func TestValidateReconcilesTypesFromWardrobe(t *testing.T) {
	wardrobe := sampleWardrobe()
	in := OutfitCandidate{OutfitItems: []OutfitItemRef{
		{ID: "a", ItemType: Shoes},
		{ID: "b", ItemType: Top},
		{ID: "c", ItemType: Bottom},
	}}

	out, res := newValidator().Validate(in, wardrobe, CasualOuting)

	assert.True(t, res.OK)
	assert.Equal(t, Top, out.OutfitItems[0].ItemType)
	assert.Equal(t, Bottom, out.OutfitItems[1].ItemType)
	assert.Equal(t, Shoes, out.OutfitItems[2].ItemType)
	assert.Equal(t, "white", out.OutfitItems[0].Color)
}

func TestValidateRepairsMissingShoes(t *testing.T) {
	wardrobe := sampleWardrobe()
	in := OutfitCandidate{OutfitItems: refs(wardrobe[0], wardrobe[1])}

	out, res := newValidator().Validate(in, wardrobe, CasualOuting)

	assert.True(t, res.OK)
	assert.Equal(t, []string{"a", "b", "c"}, ids(out))
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "shoes")
}

func TestValidateReportsUnrepairableOutfit(t *testing.T) {
	wardrobe := []WardrobeItem{item("a", Top, "white"), item("b", Bottom, "navy")}
	in := OutfitCandidate{OutfitItems: refs(wardrobe...)}

	out, res := newValidator().Validate(in, wardrobe, CasualOuting)

	assert.False(t, res.OK)
	assert.True(t, res.Critical)
	assert.Equal(t, "outfit has no shoes", res.Reason)
	assert.Len(t, out.Warnings, 2)
}

func TestValidateDressReplacesBottom(t *testing.T) {
	wardrobe := []WardrobeItem{item("dress", Dress, "red"), item("heels", Shoes, "black"), item("bag", Accessory, "black"), item("skirt", Bottom, "black")}
	in := OutfitCandidate{OutfitItems: refs(wardrobe[0], wardrobe[1], wardrobe[2], wardrobe[3])}

	out, res := newValidator().Validate(in, wardrobe, DateNight)

	assert.True(t, res.OK)
	assert.Equal(t, []string{"dress", "heels", "bag"}, ids(out))
	assert.Contains(t, strings.Join(out.Warnings, "\n"), "Removed extra bottom")
}

func TestValidateFormalAssurance(t *testing.T) {
	wardrobe := sampleWardrobe()
	in := OutfitCandidate{OutfitItems: refs(wardrobe[0], wardrobe[1], wardrobe[2]), Description: "Sharp."}

	out, _ := newValidator().Validate(in, wardrobe, BlackTieEvent)

	assert.Contains(t, out.Description, formalSuitNote)
	assert.Contains(t, out.Description, formalShoesNote)
	assert.True(t, strings.HasPrefix(out.Description, "Sharp. "))
}

func TestValidateFormalAssuranceSatisfied(t *testing.T) {
	tux := item("tux", Suit, "black")
	tux.SubType = "Tuxedo"
	tux.Formality = "black tie"
	shoes := item("oxfords", Shoes, "black")
	shoes.SubType = "Oxford shoes"
	shirt := item("shirt", Top, "white")
	shirt.Formality = "formal"
	wardrobe := []WardrobeItem{tux, shoes, shirt}

	out, res := newValidator().Validate(OutfitCandidate{OutfitItems: refs(tux, shirt, shoes), Description: "Classic."}, wardrobe, BlackTieEvent)

	assert.True(t, res.OK)
	assert.Equal(t, "Classic.", out.Description)
	assert.Empty(t, out.Warnings)
}

func TestValidateFormalAssuranceAcceptsEveningGown(t *testing.T) {
	gown := item("gown", Dress, "black")
	gown.SubType = "Evening gown"
	gown.Formality = "black tie"
	heels := item("heels", Shoes, "black")
	heels.SubType = "Heels"
	wardrobe := []WardrobeItem{gown, heels, item("clutch", Accessory, "black")}

	out, res := newValidator().Validate(OutfitCandidate{OutfitItems: refs(wardrobe...), Description: "Elegant."}, wardrobe, WhiteTieEvent)

	assert.True(t, res.OK)
	assert.Equal(t, "Elegant.", out.Description)
}

func TestValidateAdvisories(t *testing.T) {
	colors := []string{"red", "green", "blue", "yellow", "purple"}
	var wardrobe []WardrobeItem
	for i, tp := range []ItemType{Top, Bottom, Shoes, Outerwear, Accessory} {
		it := item(string(rune('a'+i)), tp, colors[i])
		it.Pattern = "striped"
		wardrobe = append(wardrobe, it)
	}
	wardrobe[0].Formality = "formal"

	out, res := newValidator().Validate(OutfitCandidate{OutfitItems: refs(wardrobe...)}, wardrobe, Party)

	assert.True(t, res.OK)
	joined := strings.Join(out.Warnings, "\n")
	assert.Contains(t, joined, "mixes formal and casual")
	assert.Contains(t, joined, "5 patterned items")
	assert.Contains(t, joined, "5 colors")
}

func TestValidateComposition(t *testing.T) {
	top, bottom, shoes := Top, Bottom, Shoes
	mk := func(types ...ItemType) []OutfitItemRef {
		var out []OutfitItemRef
		for i, tp := range types {
			out = append(out, OutfitItemRef{ID: ItemID(rune('a' + i)), ItemType: tp})
		}
		return out
	}
	tests := []struct {
		name     string
		items    []OutfitItemRef
		ok       bool
		critical bool
	}{
		{"classic", mk(top, bottom, shoes), true, false},
		{"dress", mk(Dress, shoes, Accessory), true, false},
		{"no shoes", mk(top, bottom, Outerwear), false, true},
		{"two shoes", mk(top, bottom, shoes, shoes), false, true},
		{"no bottom", mk(top, shoes, Outerwear), false, true},
		{"two bottoms", mk(top, bottom, bottom, shoes), false, false},
		{"suit plus bottom", mk(Suit, bottom, shoes), false, false},
		{"no top", mk(bottom, shoes, Accessory), false, false},
		{"three tops", mk(top, top, top, bottom, shoes), false, false},
		{"too few", mk(Dress, shoes), false, false},
		{"too many", mk(top, top, bottom, shoes, Outerwear, Outerwear, Accessory, Accessory), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateComposition(tt.items)
			assert.Equal(t, tt.ok, res.OK)
			assert.Equal(t, tt.critical, res.Critical)
			if !tt.ok {
				assert.NotEmpty(t, res.Reason)
			}
		})
	}
}
