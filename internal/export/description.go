package export

import (
	"html/template"
	"strings"

	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/rs/zerolog/log"
)

var descriptionTemplate = template.Must(template.New("description").Parse(
	`<div style="font-family: Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
  <h2 style="color:#2e8b57;">📸 Real Photos. Real Cards. Zero Guesswork.</h2>
  <p>Every card you see is photographed using our <strong>high resolution scanner</strong>. No stock images or edits. <span style="color:#cc0000;"><strong>What you see is what ships!</strong></span></p>
  <p><strong>✅ You'll receive this exact copy:</strong> Front and back are clearly shown.</p>
  <p style="color:#555;"><em>NM/LP cards only. Every card is inspected by hand.</em></p>
  <hr style="border-top:1px solid #ccc;">
  <h2 style="color:#2e8b57;">🧠 Card Details</h2>
  <ul style="margin-left: -20px;">
    <li><strong>Card Name:</strong> {{.Name}}</li>
    <li><strong>Game:</strong> {{.Game}}</li>
    <li><strong>Set:</strong> {{.Set}}</li>
    <li><strong>Card Number:</strong> {{.Number}}</li>
    <li><strong>Rarity:</strong> {{.Rarity}}</li>
    <li><strong>Condition:</strong> Near Mint / Lightly Played</li>
    <li><strong>Finish:</strong> {{.Finish}}</li>
{{- if .Features}}
    <li><strong>Features:</strong> {{.Features}}</li>
{{- end}}
{{- if .Year}}
    <li><strong>Year:</strong> {{.Year}}</li>
{{- end}}
    <li><strong>Artist:</strong> {{.Artist}}</li>
  </ul>
  <hr style="border-top:1px solid #ccc;">
  <h2 style="color:#2e8b57;">💎 What NM/LP Means</h2>
  <p>Clean, tournament-ready cards with only light signs of handling. No creases. No ink.</p>
  <hr style="border-top:1px solid #ccc;">
  <h2 style="color:#2e8b57;">🚚 Shipping &amp; Bundle Discounts</h2>
  <p><strong>FREE fast shipping!</strong> Orders ship same day or next business day.</p>
  <p>📬 <strong>Under $20:</strong> Ships via eBay Standard Envelope with tracking.</p>
  <p>📦 <strong>$20 and over:</strong> Ships via USPS Ground Advantage with full tracking.</p>
</div>`))

type descriptionData struct {
	Name     string
	Game     string
	Set      string
	Number   string
	Rarity   string
	Finish   string
	Features string
	Year     string
	Artist   string
}

// Description renders the HTML item description. Card fields are escaped.
func Description(l *card.Listing, year string) string {
	game := l.Game
	switch {
	case l.IsPokemon():
		game = "Pokémon TCG"
	case l.IsMTG():
		game = card.GameMTG
	}

	artist := l.Artist
	if artist == "" {
		artist = "Not Listed"
	}

	data := descriptionData{
		Name:     l.Name,
		Game:     game,
		Set:      l.SetName,
		Number:   l.Number,
		Rarity:   l.Rarity,
		Finish:   FinishValue(l),
		Features: strings.Join(l.Characteristics, ", "),
		Year:     year,
		Artist:   artist,
	}

	var b strings.Builder
	if err := descriptionTemplate.Execute(&b, data); err != nil {
		log.Error().Err(err).Str("name", l.Name).Msg("failed to render description")
		return ""
	}
	return b.String()
}
