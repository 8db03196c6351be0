// Package export formats listings as eBay File Exchange rows and writes them
// to a spreadsheet.
package export

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/raine/tcg-card-lister/internal/card"
)

const (
	CategoryCCGSingles = "183454"
	ConditionNearMint  = "4000"
	CardConditionNMLP  = "400010"

	// Listings priced below this use the envelope shipping policy.
	ShippingPriceThreshold = 20.00
	VintageAge             = 20
)

const ActionColumn = "*Action(SiteID=US|Country=US|Currency=USD|Version=1193)"

// Columns is the order columns are written in.
var Columns = []string{
	ActionColumn,
	"CustomLabel",
	"*Category",
	"StoreCategory",
	"*Title",
	"Subtitle",
	"*ConditionID",
	"CD:Card Condition - (ID: 40001)",
	"*C:Game",
	"C:Card Name",
	"C:Character",
	"C:Set",
	"C:Rarity",
	"C:Card Number",
	"C:Graded",
	"C:Manufacturer",
	"C:Autographed",
	"C:Language",
	"C:Finish",
	"C:Features",
	"C:Card Size",
	"C:Year Manufactured",
	"C:Vintage",
	"C:Country/Region of Manufacture",
	"C:Defense/Toughness",
	"C:HP",
	"C:Card Type",
	"C:Attribute/MTG:Color",
	"PicURL",
	"*Description",
	"*Format",
	"*Duration",
	"*StartPrice",
	"*Quantity",
	"BestOfferEnabled",
	"*Location",
	"PostalCode",
	"*DispatchTimeMax",
	"PaymentProfileName",
	"ShippingProfileName",
	"ReturnProfileName",
	"ConfidenceScore",
	"ReviewFlag",
	"PriceSource",
	"TCGPlayerLink",
	"ProcessingNotes",
	"ImageCount",
}

// Row is one spreadsheet row keyed by column name.
type Row map[string]any

// Policies are the names of the seller's eBay business policies.
type Policies struct {
	Payment         string
	ShippingUnder20 string
	ShippingOver20  string
	Return          string
}

func DefaultPolicies() Policies {
	return Policies{
		Payment:         "Immediate Payment (BIN)",
		ShippingUnder20: "Standard Envelope 1oz (Free)",
		ShippingOver20:  "Free Shipping US GA",
		Return:          "Returns Accepted",
	}
}

type Options struct {
	Location   string
	PostalCode string
	Policies   Policies

	// ImageBaseURL is where the scans are hosted. Without it PicURL is
	// left empty.
	ImageBaseURL string

	// Now is used for custom labels and the vintage cut-off.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// FormatRow builds the eBay row for l. index keeps custom labels unique
// within a run.
func FormatRow(l *card.Listing, title string, index int, opts Options) Row {
	now := opts.now()
	year := ExtractYear(l, now)

	return Row{
		ActionColumn:                      "Add",
		"CustomLabel":                     fmt.Sprintf("TCG_%d_%d", now.Unix(), index),
		"*Category":                       CategoryCCGSingles,
		"StoreCategory":                   "",
		"*Title":                          title,
		"Subtitle":                        "",
		"*ConditionID":                    ConditionNearMint,
		"CD:Card Condition - (ID: 40001)": CardConditionNMLP,
		"*C:Game":                         l.Game + " TCG",
		"C:Card Name":                     l.Name,
		"C:Character":                     firstWord(l.Name),
		"C:Set":                           l.SetName,
		"C:Rarity":                        l.Rarity,
		"C:Card Number":                   l.Number,
		"C:Graded":                        "No",
		"C:Manufacturer":                  Manufacturer(l.Game),
		"C:Autographed":                   "No",
		"C:Language":                      l.Language,
		"C:Finish":                        FinishValue(l),
		"C:Features":                      strings.Join(l.Characteristics, ", "),
		"C:Card Size":                     CardSize(l),
		"C:Year Manufactured":             year,
		"C:Vintage":                       yesNo(IsVintage(year, now)),
		"C:Country/Region of Manufacture": CountryOfManufacture(l, year),
		"C:Defense/Toughness":             defenseToughness(l),
		"C:HP":                            l.HP,
		"C:Card Type":                     strings.Join(l.Subtypes, ", "),
		"C:Attribute/MTG:Color":           strings.Join(l.Types, ", "),
		"PicURL":                          pictureURLs(opts.ImageBaseURL, l.ImagePaths),
		"*Description":                    Description(l, year),
		"*Format":                         "FixedPrice",
		"*Duration":                       "GTC",
		"*StartPrice":                     l.FinalPrice,
		"*Quantity":                       1,
		"BestOfferEnabled":                "0",
		"*Location":                       opts.Location,
		"PostalCode":                      opts.PostalCode,
		"*DispatchTimeMax":                "2",
		"PaymentProfileName":              opts.Policies.Payment,
		"ShippingProfileName":             ShippingPolicy(opts.Policies, l.FinalPrice),
		"ReturnProfileName":               opts.Policies.Return,
		"ConfidenceScore":                 fmt.Sprintf("%.3f", l.Confidence),
		"ReviewFlag":                      l.ReviewFlag,
		"PriceSource":                     l.PriceSource,
		"TCGPlayerLink":                   l.TCGPlayerLink,
		"ProcessingNotes":                 l.ProcessingNotes,
		"ImageCount":                      len(l.ImagePaths),
	}
}

// ShippingPolicy picks the shipping policy by listing price.
func ShippingPolicy(p Policies, price float64) string {
	if price < ShippingPriceThreshold {
		return p.ShippingUnder20
	}
	return p.ShippingOver20
}

var finishValues = map[string]string{
	"reverse holo": "Reverse Holo",
	"holo":         "Holo",
	"holofoil":     "Holo",
	"normal":       "Non-Holo",
	"non-holo":     "Non-Holo",
	"no holo":      "Non-Holo",
	"foil":         "Holo",
	"non-foil":     "Non-Holo",
}

// FinishValue maps a listing finish to one of eBay's finish values. Finishes
// eBay has no value for are guessed from the game and rarity.
func FinishValue(l *card.Listing) string {
	if v, ok := finishValues[strings.ToLower(string(l.Finish))]; ok {
		return v
	}

	switch {
	case l.IsPokemon():
		rarity := strings.ToLower(l.Rarity)
		for _, term := range []string{"holo", "rare", "ultra", "secret", "rainbow"} {
			if strings.Contains(rarity, term) {
				return "Holo"
			}
		}
		return "Non-Holo"
	case l.IsMTG():
		return "Non-Foil"
	default:
		return "Non-Holo"
	}
}

func Manufacturer(game string) string {
	switch {
	case card.IsMTGGame(game):
		return "Wizards of the Coast"
	case strings.Contains(strings.ToLower(game), "yu-gi-oh"):
		return "Konami"
	default:
		return "Nintendo"
	}
}

var yearInSetName = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

// Release years of well known sets, matched as set name fragments. The
// longest matching fragment wins so "Base Set 2" is not read as "Base Set".
var setYears = map[string]string{
	"base set":                 "1999",
	"jungle":                   "1999",
	"fossil":                   "1999",
	"base set 2":               "2000",
	"team rocket":              "2000",
	"gym heroes":               "2000",
	"gym challenge":            "2000",
	"neo genesis":              "2000",
	"neo discovery":            "2001",
	"neo revelation":           "2001",
	"neo destiny":              "2001",
	"legendary collection":     "2002",
	"expedition":               "2002",
	"aquapolis":                "2003",
	"skyridge":                 "2003",
	"dragon vault":             "2012",
	"alpha":                    "1993",
	"beta":                     "1993",
	"unlimited":                "1993",
	"revised":                  "1994",
	"fourth edition":           "1995",
	"4th edition":              "1995",
	"ice age":                  "1995",
	"mirage":                   "1996",
	"tempest":                  "1997",
	"urza":                     "1998",
	"mercadian":                "1999",
	"invasion":                 "2000",
	"odyssey":                  "2001",
	"onslaught":                "2002",
	"mirrodin":                 "2003",
	"kamigawa":                 "2004",
	"ravnica":                  "2005",
	"time spiral":              "2006",
	"lorwyn":                   "2007",
	"shadowmoor":               "2008",
	"shards of alara":          "2008",
	"zendikar":                 "2009",
	"scars of mirrodin":        "2010",
	"innistrad":                "2011",
	"return to ravnica":        "2012",
	"theros":                   "2013",
	"khans of tarkir":          "2014",
	"battle for zendikar":      "2015",
	"shadows over innistrad":   "2016",
	"kaladesh":                 "2016",
	"amonkhet":                 "2017",
	"ixalan":                   "2017",
	"dominaria":                "2018",
	"guilds of ravnica":        "2018",
	"war of the spark":         "2019",
	"throne of eldraine":       "2019",
	"theros beyond death":      "2020",
	"ikoria":                   "2020",
	"zendikar rising":          "2020",
	"kaldheim":                 "2021",
	"strixhaven":               "2021",
	"innistrad midnight hunt":  "2021",
	"innistrad crimson vow":    "2021",
	"kamigawa neon dynasty":    "2022",
	"streets of new capenna":   "2022",
	"dominaria united":         "2022",
	"brothers war":             "2022",
	"phyrexia all will be one": "2023",
	"march of the machine":     "2023",
	"wilds of eldraine":        "2023",
	"lost caverns of ixalan":   "2023",
}

// ExtractYear returns the year the card was printed from its release date,
// a year in the set name or the known set table. It returns "" if none of
// those give a plausible year.
func ExtractYear(l *card.Listing, now time.Time) string {
	if l.ReleaseDate != "" {
		year := l.ReleaseDate
		if i := strings.IndexAny(year, "/-"); i >= 0 {
			year = year[:i]
		} else if len(year) > 4 {
			year = year[:4]
		}
		if y, err := strconv.Atoi(year); err == nil && y >= 1993 && y <= now.Year()+1 {
			return year
		}
	}

	if m := yearInSetName.FindStringSubmatch(l.SetName); m != nil {
		return m[1]
	}

	setName := strings.ToLower(l.SetName)
	best, year := "", ""
	for known, y := range setYears {
		if len(known) > len(best) && strings.Contains(setName, known) {
			best, year = known, y
		}
	}
	return year
}

// IsVintage reports whether a card printed in year is at least VintageAge
// years old.
func IsVintage(year string, now time.Time) bool {
	y, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	return now.Year()-y >= VintageAge
}

var oversizedIndicators = []string{
	"oversized",
	"jumbo",
	"box topper",
	"promo card",
	"world championship",
	"celebration",
	"trophy",
}

func CardSize(l *card.Listing) string {
	setName := strings.ToLower(l.SetName)
	name := strings.ToLower(l.Name)
	for _, ind := range oversizedIndicators {
		if strings.Contains(setName, ind) || strings.Contains(name, ind) {
			return "Oversized"
		}
	}
	for _, c := range l.Characteristics {
		c = strings.ToLower(c)
		if strings.Contains(c, "trophy") || strings.Contains(c, "championship") || strings.Contains(c, "winner") {
			return "Oversized"
		}
	}
	return "Standard"
}

var languageCountries = map[string]string{
	"japanese":   "Japan",
	"jp":         "Japan",
	"german":     "Belgium",
	"french":     "Belgium",
	"italian":    "Belgium",
	"spanish":    "Belgium",
	"portuguese": "Belgium",
	"dutch":      "Belgium",
	"russian":    "Belgium",
	"korean":     "Korea",
	"chinese":    "China",
}

// CountryOfManufacture guesses where a card was printed from its language,
// and for early Magic sets from the year.
func CountryOfManufacture(l *card.Listing, year string) string {
	if c, ok := languageCountries[strings.ToLower(l.Language)]; ok {
		return c
	}
	if l.IsMTG() {
		if y, err := strconv.Atoi(year); err == nil && y <= 1995 {
			return "Belgium"
		}
	}
	return "United States"
}

func defenseToughness(l *card.Listing) string {
	if !l.IsMTG() {
		return ""
	}
	return l.Toughness
}

// pictureURLs joins the hosted image URLs with "|". Each URL gets a
// cache-bust parameter so eBay refetches replaced images.
func pictureURLs(baseURL string, paths []string) string {
	if baseURL == "" || len(paths) == 0 {
		return ""
	}
	base := strings.TrimRight(baseURL, "/")
	urls := make([]string, len(paths))
	for i, p := range paths {
		urls[i] = fmt.Sprintf("%s/%s?cache-bust=%d", base, url.PathEscape(filepath.Base(p)), i)
	}
	return strings.Join(urls, "|")
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
