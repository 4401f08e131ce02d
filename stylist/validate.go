package stylist

import (
	"fmt"
	"slices"
	"strings"
)

const (
	MaxColors   = 4
	MaxPatterns = 2

	minOutfitItems = 3
	maxOutfitItems = 7
)

var perTypeCaps = map[ItemType]int{
	Shoes:  1,
	Bottom: 1,
	Top:    2,
}

var solidPatterns = []string{"", "solid", "plain", "none", "n/a", "-"}

const (
	formalSuitNote  = "Formal occasions require a tuxedo, tailcoat, or equivalent formal suit. Consider renting one if necessary."
	formalShoesNote = "Ensure you have appropriate dress shoes."
)

// CompositionResult describes whether an outfit forms a wearable whole.
// Critical marks failures worth a second completion: shoes or bottom missing
// and extra shoes.
type CompositionResult struct {
	OK       bool
	Reason   string
	Counts   map[ItemType]int
	Critical bool
}

func countTypes(items []OutfitItemRef) map[ItemType]int {
	counts := make(map[ItemType]int, len(ItemTypes))
	for _, it := range items {
		counts[it.ItemType]++
	}
	return counts
}

// ValidateComposition checks the slot rules on an already reconciled item list.
func ValidateComposition(items []OutfitItemRef) CompositionResult {
	counts := countTypes(items)
	res := CompositionResult{Counts: counts}
	onePiece := counts[Dress] + counts[Suit]

	fail := func(critical bool, format string, args ...any) CompositionResult {
		res.Reason = fmt.Sprintf(format, args...)
		res.Critical = critical
		return res
	}

	switch {
	case counts[Shoes] == 0:
		return fail(true, "outfit has no shoes")
	case counts[Shoes] > 1:
		return fail(true, "outfit has %d pairs of shoes, exactly one is required", counts[Shoes])
	case onePiece == 0 && counts[Bottom] == 0:
		return fail(true, "outfit has no bottom and no dress or suit")
	case onePiece == 0 && counts[Bottom] > 1:
		return fail(false, "outfit has %d bottoms, exactly one is required", counts[Bottom])
	case onePiece > 0 && counts[Bottom] > 0:
		return fail(false, "outfit combines a bottom with a dress or suit")
	case onePiece == 0 && counts[Top] == 0:
		return fail(false, "outfit has no top")
	case counts[Top] > 2:
		return fail(false, "outfit has %d tops, at most two are allowed", counts[Top])
	case counts[Outerwear] > 2:
		return fail(false, "outfit has %d outerwear items, at most two are allowed", counts[Outerwear])
	case counts[Accessory] > 3:
		return fail(false, "outfit has %d accessories, at most three are allowed", counts[Accessory])
	case len(items) < minOutfitItems:
		return fail(false, "outfit has only %d items, at least %d are required", len(items), minOutfitItems)
	case len(items) > maxOutfitItems:
		return fail(false, "outfit has %d items, at most %d are allowed", len(items), maxOutfitItems)
	}
	res.OK = true
	return res
}

type OutfitValidator struct {
	rules       *RuleTable
	maxColors   int
	maxPatterns int
}

func NewOutfitValidator(rules *RuleTable, maxColors, maxPatterns int) *OutfitValidator {
	if maxColors <= 0 {
		maxColors = MaxColors
	}
	if maxPatterns <= 0 {
		maxPatterns = MaxPatterns
	}
	return &OutfitValidator{rules: rules, maxColors: maxColors, maxPatterns: maxPatterns}
}

// Validate runs membership, reconciliation, suppression, composition,
// repair, formal assurance and advisory checks in that order. The candidate
// is returned modified, warnings are only ever appended.
func (v *OutfitValidator) Validate(c OutfitCandidate, wardrobe []WardrobeItem, occasion Occasion) (OutfitCandidate, CompositionResult) {
	idx := indexWardrobe(wardrobe)
	c.OutfitItems = slices.Clone(c.OutfitItems)

	c = filterMembership(c, idx)
	c = reconcileTypes(c, idx)
	c = suppressDuplicates(c)

	res := ValidateComposition(c.OutfitItems)
	if !res.OK {
		c = repair(c, wardrobe, res)
		res = ValidateComposition(c.OutfitItems)
		if !res.OK {
			c.warn("Outfit composition issue: %s", res.Reason)
		}
	}

	if v.rules.IsFormalTier(occasion) {
		c = v.assureFormal(c, idx)
	}
	c = v.advise(c, idx)
	if c.OutfitItems == nil {
		c.OutfitItems = []OutfitItemRef{}
	}
	if c.Warnings == nil {
		c.Warnings = []string{}
	}
	return c, res
}

// stage 1
func filterMembership(c OutfitCandidate, idx wardrobeIndex) OutfitCandidate {
	kept := c.OutfitItems[:0]
	for _, ref := range c.OutfitItems {
		if _, ok := idx[string(ref.ID)]; !ok {
			c.warn("Removed item %q because it is not in your wardrobe", ref.ID)
			continue
		}
		kept = append(kept, ref)
	}
	c.OutfitItems = kept
	return c
}

// stage 2
func reconcileTypes(c OutfitCandidate, idx wardrobeIndex) OutfitCandidate {
	for i, ref := range c.OutfitItems {
		item := idx[string(ref.ID)]
		ref.ItemType = item.ItemType
		if strings.TrimSpace(ref.SubType) == "" {
			ref.SubType = item.SubType
		}
		if strings.TrimSpace(ref.Color) == "" {
			ref.Color = item.Color
		}
		c.OutfitItems[i] = ref
	}
	return c
}

// stage 3
func suppressDuplicates(c OutfitCandidate) OutfitCandidate {
	seen := map[ItemID]bool{}
	counts := map[ItemType]int{}
	kept := c.OutfitItems[:0]
	for _, ref := range c.OutfitItems {
		if seen[ref.ID] {
			c.warn("Removed duplicate item %q (%s)", ref.ID, ref.ItemType)
			continue
		}
		if limit, ok := perTypeCaps[ref.ItemType]; ok && counts[ref.ItemType] >= limit {
			c.warn("Removed %s item %q, only %d %s allowed", ref.ItemType, ref.ID, limit, ref.ItemType)
			continue
		}
		seen[ref.ID] = true
		counts[ref.ItemType]++
		kept = append(kept, ref)
	}
	c.OutfitItems = kept
	return c
}

func refFor(it WardrobeItem) OutfitItemRef {
	return OutfitItemRef{ID: ItemID(it.ID), SubType: it.SubType, Color: it.Color, ItemType: it.ItemType}
}

func firstOfType(wardrobe []WardrobeItem, t ItemType, used map[ItemID]bool) (WardrobeItem, bool) {
	for _, it := range wardrobe {
		if it.ItemType == t && !used[ItemID(it.ID)] {
			return it, true
		}
	}
	return WardrobeItem{}, false
}

// stage 5: greedy, first matching wardrobe item wins
func repair(c OutfitCandidate, wardrobe []WardrobeItem, res CompositionResult) OutfitCandidate {
	used := map[ItemID]bool{}
	for _, ref := range c.OutfitItems {
		used[ref.ID] = true
	}
	counts := res.Counts
	onePiece := counts[Dress]+counts[Suit] > 0

	add := func(t ItemType) {
		it, ok := firstOfType(wardrobe, t, used)
		if !ok {
			c.warn("Could not find %s in your wardrobe to complete the outfit", t)
			return
		}
		used[ItemID(it.ID)] = true
		c.OutfitItems = append(c.OutfitItems, refFor(it))
		c.warn("Added %s %q to complete the outfit", t, it.ID)
	}

	if counts[Shoes] == 0 {
		add(Shoes)
	}
	if !onePiece && counts[Top] == 0 {
		add(Top)
	}
	if !onePiece && counts[Bottom] == 0 {
		add(Bottom)
	}
	if counts[Bottom] > 1 || (onePiece && counts[Bottom] > 0) {
		keep := 1
		if onePiece {
			keep = 0
		}
		kept := c.OutfitItems[:0]
		seen := 0
		for _, ref := range c.OutfitItems {
			if ref.ItemType == Bottom {
				seen++
				if seen > keep {
					c.warn("Removed extra bottom %q", ref.ID)
					continue
				}
			}
			kept = append(kept, ref)
		}
		c.OutfitItems = kept
	}
	return c
}

// stage 6
func (v *OutfitValidator) assureFormal(c OutfitCandidate, idx wardrobeIndex) OutfitCandidate {
	hasFormalWear, hasDressShoes := false, false
	for _, ref := range c.OutfitItems {
		it := idx[string(ref.ID)]
		sub := strings.ToLower(it.SubType)
		switch {
		case it.ItemType == Suit || it.ItemType == Dress:
			hasFormalWear = true
		case mentionsAny(sub, []string{"tuxedo", "tailcoat", "suit", "dinner jacket", "gown"}):
			hasFormalWear = true
		}
		if it.ItemType == Shoes && (ParseFormality(it.Formality).dressy() || mentionsAny(sub, []string{"dress shoe", "oxford", "derby", "patent", "pumps", "heels"})) {
			hasDressShoes = true
		}
	}
	if !hasFormalWear {
		c.Description = appendSentence(c.Description, formalSuitNote)
	}
	if !hasDressShoes {
		c.Description = appendSentence(c.Description, formalShoesNote)
	}
	return c
}

func appendSentence(text, sentence string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return sentence
	}
	if strings.Contains(text, sentence) {
		return text
	}
	return text + " " + sentence
}

func isPatterned(pattern string) bool {
	return !slices.Contains(solidPatterns, strings.ToLower(strings.TrimSpace(pattern)))
}

// stage 7, advisory only
func (v *OutfitValidator) advise(c OutfitCandidate, idx wardrobeIndex) OutfitCandidate {
	var dressy, relaxed bool
	patterned := 0
	colors := map[string]bool{}
	seen := map[ItemID]bool{}
	for _, ref := range c.OutfitItems {
		if seen[ref.ID] {
			c.warn("Item %q appears more than once", ref.ID)
		}
		seen[ref.ID] = true

		it := idx[string(ref.ID)]
		level := ParseFormality(it.Formality)
		dressy = dressy || level.dressy()
		// accessories and shoes do not make an outfit casual
		if it.ItemType != Accessory && it.ItemType != Shoes {
			relaxed = relaxed || level.relaxed()
		}
		if isPatterned(it.Pattern) {
			patterned++
		}
		color := strings.ToLower(strings.TrimSpace(it.Color))
		if color == "" {
			color = strings.ToLower(strings.TrimSpace(ref.Color))
		}
		if color != "" {
			colors[color] = true
		}
	}
	if dressy && relaxed {
		c.warn("This outfit mixes formal and casual pieces")
	}
	if patterned > v.maxPatterns {
		c.warn("This outfit has %d patterned items, consider keeping it to %d", patterned, v.maxPatterns)
	}
	if len(colors) > v.maxColors {
		c.warn("This outfit uses %d colors, consider keeping it to %d", len(colors), v.maxColors)
	}
	return c
}
