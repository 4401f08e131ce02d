package languageutil

import (
	"fmt"
	"math/rand"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var TitleCaser = cases.Title(language.English)
var LowerCaser = cases.Lower(language.English)

var Adjs []string = []string{
	"bold",
	"breezy",
	"classic",
	"cozy",
	"crisp",
	"dapper",
	"easy",
	"elegant",
	"layered",
	"linen",
	"minimal",
	"neat",
	"polished",
	"relaxed",
	"sharp",
	"sleek",
	"smart",
	"sunny",
	"tailored",
	"vintage",
}

var Nouns []string = []string{
	"blazer",
	"boot",
	"cardigan",
	"chino",
	"denim",
	"fedora",
	"loafer",
	"parka",
	"scarf",
	"sneaker",
	"sweater",
	"trench",
	"tweed",
	"velvet",
}

func RandomAdjective() string {
	return Adjs[rand.Intn(len(Adjs))]
}

func RandomNounlike() string {
	return Nouns[rand.Intn(len(Nouns))]
}

// RandomUsername builds names like "dapper-loafer-481".
func RandomUsername() string {
	return fmt.Sprintf("%s-%s-%d", RandomAdjective(), RandomNounlike(), rand.Intn(900)+100)
}

func TitleCase(s string) string {
	return TitleCaser.String(LowerCaser.String(strings.TrimSpace(s)))
}
