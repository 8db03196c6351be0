package export

import (
	"testing"
	"time"

	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Location:     "Vista, CA",
		PostalCode:   "92083",
		Policies:     DefaultPolicies(),
		ImageBaseURL: "https://cdn.example.com/scans/",
		Now:          func() time.Time { return now },
	}
}

func charizard() *card.Listing {
	return &card.Listing{
		Name:            "Charizard",
		SetName:         "Base",
		Number:          "4/102",
		Rarity:          "Rare Holo",
		Game:            card.GamePokemon,
		Language:        "English",
		Confidence:      0.91234,
		Finish:          card.FinishHolo,
		Characteristics: []string{"Shadowless"},
		FinalPrice:      455.65,
		PriceSource:     "Pokemon TCG API (holofoil) - Near Mint",
		TCGPlayerLink:   "https://prices.pokemontcg.io/tcgplayer/base1-4",
		ReviewFlag:      card.ReviewOK,
		ImagePaths:      []string{"/scans/Card 001.jpg", "/scans/Card 002.jpg"},
		HP:              "120",
		Types:           []string{"Fire"},
		Subtypes:        []string{"Stage 2"},
		Artist:          "Mitsuhiro Arita",
		ReleaseDate:     "1999/01/09",
	}
}

func TestFormatRow(t *testing.T) {
	row := FormatRow(charizard(), "Pokémon Charizard 4/102 Base Rare Holo NM/LP", 3, testOptions())

	assert.Equal(t, "Add", row[ActionColumn])
	assert.Equal(t, "TCG_1748779200_3", row["CustomLabel"])
	assert.Equal(t, "183454", row["*Category"])
	assert.Equal(t, "Pokémon Charizard 4/102 Base Rare Holo NM/LP", row["*Title"])
	assert.Equal(t, "Pokemon TCG", row["*C:Game"])
	assert.Equal(t, "Charizard", row["C:Character"])
	assert.Equal(t, "Nintendo", row["C:Manufacturer"])
	assert.Equal(t, "Holo", row["C:Finish"])
	assert.Equal(t, "Shadowless", row["C:Features"])
	assert.Equal(t, "Standard", row["C:Card Size"])
	assert.Equal(t, "1999", row["C:Year Manufactured"])
	assert.Equal(t, "Yes", row["C:Vintage"])
	assert.Equal(t, "United States", row["C:Country/Region of Manufacture"])
	assert.Equal(t, "", row["C:Defense/Toughness"])
	assert.Equal(t, "Stage 2", row["C:Card Type"])
	assert.Equal(t, "Fire", row["C:Attribute/MTG:Color"])
	assert.Equal(t,
		"https://cdn.example.com/scans/Card%20001.jpg?cache-bust=0|https://cdn.example.com/scans/Card%20002.jpg?cache-bust=1",
		row["PicURL"])
	assert.Equal(t, 455.65, row["*StartPrice"])
	assert.Equal(t, "Free Shipping US GA", row["ShippingProfileName"])
	assert.Equal(t, "0.912", row["ConfidenceScore"])
	assert.Equal(t, 2, row["ImageCount"])

	for _, col := range Columns {
		assert.Contains(t, row, col)
	}
	assert.Len(t, row, len(Columns))
}

func TestShippingPolicy(t *testing.T) {
	p := DefaultPolicies()
	assert.Equal(t, p.ShippingUnder20, ShippingPolicy(p, 19.99))
	assert.Equal(t, p.ShippingOver20, ShippingPolicy(p, 20.00))
	assert.Equal(t, p.ShippingOver20, ShippingPolicy(p, 150))
}

func TestFinishValue(t *testing.T) {
	tests := []struct {
		name    string
		listing card.Listing
		want    string
	}{
		{"holo", card.Listing{Finish: card.FinishHolo, Game: card.GamePokemon}, "Holo"},
		{"reverse holo", card.Listing{Finish: card.FinishReverseHolo, Game: card.GamePokemon}, "Reverse Holo"},
		{"mtg foil", card.Listing{Finish: "Foil", Game: card.GameMTG}, "Holo"},
		{"non-foil", card.Listing{Finish: "Non-Foil", Game: card.GameMTG}, "Non-Holo"},
		{"pokemon rare without finish", card.Listing{Finish: card.FinishFullArt, Rarity: "Ultra Rare", Game: card.GamePokemon}, "Holo"},
		{"pokemon common without finish", card.Listing{Rarity: "Common", Game: card.GamePokemon}, "Non-Holo"},
		{"mtg showcase", card.Listing{Finish: "Showcase", Game: card.GameMTG}, "Non-Foil"},
		{"other game", card.Listing{Game: "Yu-Gi-Oh!"}, "Non-Holo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FinishValue(&tt.listing))
		})
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		name    string
		listing card.Listing
		want    string
	}{
		{"slash date", card.Listing{ReleaseDate: "1999/01/09"}, "1999"},
		{"dash date", card.Listing{ReleaseDate: "2009-07-17"}, "2009"},
		{"implausible date falls back to set", card.Listing{ReleaseDate: "1066/10/14", SetName: "Jungle"}, "1999"},
		{"year in set name", card.Listing{SetName: "McDonald's Collection 2021"}, "2021"},
		{"known set", card.Listing{SetName: "Neo Discovery"}, "2001"},
		{"longest known set wins", card.Listing{SetName: "Base Set 2"}, "2000"},
		{"longer mtg set wins", card.Listing{SetName: "Zendikar Rising"}, "2020"},
		{"unknown", card.Listing{SetName: "Surging Sparks"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractYear(&tt.listing, now))
		})
	}
}

func TestIsVintage(t *testing.T) {
	assert.True(t, IsVintage("1999", now))
	assert.True(t, IsVintage("2005", now))
	assert.False(t, IsVintage("2006", now))
	assert.False(t, IsVintage("", now))
}

func TestCardSize(t *testing.T) {
	assert.Equal(t, "Standard", CardSize(&card.Listing{Name: "Pikachu", SetName: "Base"}))
	assert.Equal(t, "Oversized", CardSize(&card.Listing{Name: "Pikachu", SetName: "Jumbo Promos"}))
	assert.Equal(t, "Oversized", CardSize(&card.Listing{Name: "Pikachu", Characteristics: []string{"Trophy"}}))
}

func TestCountryOfManufacture(t *testing.T) {
	assert.Equal(t, "Japan", CountryOfManufacture(&card.Listing{Language: "Japanese", Game: card.GamePokemon}, ""))
	assert.Equal(t, "Belgium", CountryOfManufacture(&card.Listing{Language: "German", Game: card.GamePokemon}, ""))
	assert.Equal(t, "Belgium", CountryOfManufacture(&card.Listing{Language: "English", Game: card.GameMTG}, "1994"))
	assert.Equal(t, "United States", CountryOfManufacture(&card.Listing{Language: "English", Game: card.GameMTG}, "2010"))
	assert.Equal(t, "United States", CountryOfManufacture(&card.Listing{Language: "English", Game: card.GamePokemon}, "1999"))
}

func TestManufacturer(t *testing.T) {
	assert.Equal(t, "Nintendo", Manufacturer(card.GamePokemon))
	assert.Equal(t, "Wizards of the Coast", Manufacturer("MTG"))
	assert.Equal(t, "Konami", Manufacturer("Yu-Gi-Oh!"))
	assert.Equal(t, "Nintendo", Manufacturer(""))
}

func TestDescription(t *testing.T) {
	l := charizard()
	l.Name = "Farfetch'd <Promo>"

	html := Description(l, "1999")
	assert.Contains(t, html, "<li><strong>Game:</strong> Pokémon TCG</li>")
	assert.Contains(t, html, "<li><strong>Year:</strong> 1999</li>")
	assert.Contains(t, html, "<li><strong>Features:</strong> Shadowless</li>")
	assert.Contains(t, html, "<li><strong>Artist:</strong> Mitsuhiro Arita</li>")
	assert.Contains(t, html, "Farfetch&#39;d &lt;Promo&gt;")

	l.Characteristics = nil
	l.Artist = ""
	html = Description(l, "")
	assert.NotContains(t, html, "Features:")
	assert.NotContains(t, html, "Year:")
	assert.Contains(t, html, "<li><strong>Artist:</strong> Not Listed</li>")
}

func TestPictureURLs(t *testing.T) {
	assert.Equal(t, "", pictureURLs("", []string{"a.jpg"}))
	assert.Equal(t, "", pictureURLs("https://cdn.example.com", nil))
	assert.Equal(t, "https://cdn.example.com/a.jpg?cache-bust=0", pictureURLs("https://cdn.example.com", []string{"dir/a.jpg"}))
}
