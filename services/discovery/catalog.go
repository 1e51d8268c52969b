package discovery

import (
	"fmt"

	"cinelog/services/metadata"
)

// Kind distinguishes descriptor families.
type Kind string

const (
	KindDirector   Kind = "director"
	KindEraCountry Kind = "era_country"
	KindGenre      Kind = "genre"
	KindCountry    Kind = "country"
	KindMood       Kind = "mood"
)

// Descriptor is a static, parameterized description of a content category.
// Tables are defined at build time and never mutated.
type Descriptor struct {
	ID    string
	Kind  Kind
	Label string

	// Filter parameters; which fields apply depends on Kind.
	PersonID        int
	Country         string
	DecadeStart     int // first year of the decade, e.g. 1990
	GenreIDs        []int
	ExcludeGenreIDs []int
	MinVoteAverage  float64
}

// Filter converts the descriptor into a metadata query.
func (d Descriptor) Filter() metadata.Filter {
	f := metadata.Filter{
		GenreIDs:        d.GenreIDs,
		ExcludeGenreIDs: d.ExcludeGenreIDs,
		Country:         d.Country,
		PersonID:        d.PersonID,
		MinVoteAverage:  d.MinVoteAverage,
		MinVoteCount:    50,
	}
	if d.DecadeStart > 0 {
		f.YearFrom = d.DecadeStart
		f.YearTo = d.DecadeStart + 9
	}
	return f
}

// Rotation offsets per family. Distinct values keep the visible sections
// from all changing on the same day.
const (
	OffsetDirector   = 0
	OffsetEraCountry = 3
	OffsetGenre      = 5
	OffsetCountry    = 7
)

// DirectorTable rotates a featured director each day.
var DirectorTable = []Descriptor{
	{ID: "director-kurosawa", Kind: KindDirector, Label: "黒澤明", PersonID: 5026},
	{ID: "director-ozu", Kind: KindDirector, Label: "小津安二郎", PersonID: 5152},
	{ID: "director-miyazaki", Kind: KindDirector, Label: "宮崎駿", PersonID: 608},
	{ID: "director-koreeda", Kind: KindDirector, Label: "是枝裕和", PersonID: 82721},
	{ID: "director-hitchcock", Kind: KindDirector, Label: "ヒッチコック", PersonID: 2636},
	{ID: "director-kubrick", Kind: KindDirector, Label: "キューブリック", PersonID: 240},
	{ID: "director-nolan", Kind: KindDirector, Label: "ノーラン", PersonID: 525},
	{ID: "director-villeneuve", Kind: KindDirector, Label: "ヴィルヌーヴ", PersonID: 137427},
}

// EraCountryTable rotates a decade-and-country focus.
var EraCountryTable = []Descriptor{
	{ID: "era-1950s-jp", Kind: KindEraCountry, Label: "1950年代の日本映画", Country: "JP", DecadeStart: 1950},
	{ID: "era-1970s-us", Kind: KindEraCountry, Label: "1970年代のアメリカ映画", Country: "US", DecadeStart: 1970},
	{ID: "era-1960s-fr", Kind: KindEraCountry, Label: "1960年代のフランス映画", Country: "FR", DecadeStart: 1960},
	{ID: "era-1990s-jp", Kind: KindEraCountry, Label: "1990年代の日本映画", Country: "JP", DecadeStart: 1990},
	{ID: "era-2000s-kr", Kind: KindEraCountry, Label: "2000年代の韓国映画", Country: "KR", DecadeStart: 2000},
	{ID: "era-1980s-us", Kind: KindEraCountry, Label: "1980年代のアメリカ映画", Country: "US", DecadeStart: 1980},
	{ID: "era-2010s-jp", Kind: KindEraCountry, Label: "2010年代の日本映画", Country: "JP", DecadeStart: 2010},
}

// TMDb genre ids used by the genre and mood tables.
const (
	genreAction    = 28
	genreAnimation = 16
	genreComedy    = 35
	genreDrama     = 18
	genreFantasy   = 14
	genreHorror    = 27
	genreMusic     = 10402
	genreMystery   = 9648
	genreRomance   = 10749
	genreSciFi     = 878
	genreThriller  = 53
	genreFamily    = 10751
)

// GenreTable rotates a featured genre with a quality floor.
var GenreTable = []Descriptor{
	{ID: "genre-mystery", Kind: KindGenre, Label: "ミステリー", GenreIDs: []int{genreMystery}, MinVoteAverage: 6.5},
	{ID: "genre-scifi", Kind: KindGenre, Label: "SF", GenreIDs: []int{genreSciFi}, MinVoteAverage: 6.5},
	{ID: "genre-animation", Kind: KindGenre, Label: "アニメーション", GenreIDs: []int{genreAnimation}, MinVoteAverage: 7.0},
	{ID: "genre-romance", Kind: KindGenre, Label: "恋愛", GenreIDs: []int{genreRomance}, ExcludeGenreIDs: []int{genreHorror}, MinVoteAverage: 6.5},
	{ID: "genre-thriller", Kind: KindGenre, Label: "スリラー", GenreIDs: []int{genreThriller}, MinVoteAverage: 6.5},
	{ID: "genre-comedy", Kind: KindGenre, Label: "コメディ", GenreIDs: []int{genreComedy}, MinVoteAverage: 6.5},
}

// CountryTable rotates a featured country of origin.
var CountryTable = []Descriptor{
	{ID: "country-jp", Kind: KindCountry, Label: "日本", Country: "JP", MinVoteAverage: 6.5},
	{ID: "country-kr", Kind: KindCountry, Label: "韓国", Country: "KR", MinVoteAverage: 6.5},
	{ID: "country-fr", Kind: KindCountry, Label: "フランス", Country: "FR", MinVoteAverage: 6.5},
	{ID: "country-in", Kind: KindCountry, Label: "インド", Country: "IN", MinVoteAverage: 6.5},
	{ID: "country-us", Kind: KindCountry, Label: "アメリカ", Country: "US", MinVoteAverage: 6.5},
}

// MoodTable holds every mood descriptor. Moods are not rotated as a
// family; each mood varies per day through MoodSeed.
var MoodTable = []Descriptor{
	{ID: "mood-cry", Kind: KindMood, Label: "泣きたい", GenreIDs: []int{genreDrama}, ExcludeGenreIDs: []int{genreHorror}, MinVoteAverage: 7.0},
	{ID: "mood-laugh", Kind: KindMood, Label: "笑いたい", GenreIDs: []int{genreComedy}, MinVoteAverage: 6.5},
	{ID: "mood-thrill", Kind: KindMood, Label: "ドキドキしたい", GenreIDs: []int{genreThriller, genreMystery}, MinVoteAverage: 6.5},
	{ID: "mood-heal", Kind: KindMood, Label: "癒されたい", GenreIDs: []int{genreFamily, genreAnimation}, ExcludeGenreIDs: []int{genreHorror, genreThriller}, MinVoteAverage: 6.5},
	{ID: "mood-escape", Kind: KindMood, Label: "現実逃避したい", GenreIDs: []int{genreFantasy, genreSciFi}, MinVoteAverage: 6.5},
	{ID: "mood-energize", Kind: KindMood, Label: "元気を出したい", GenreIDs: []int{genreAction, genreMusic}, MinVoteAverage: 6.5},
}

// ValidateCatalog checks the static tables once at startup. A failure here
// is a build-time data mistake, not a runtime condition.
func ValidateCatalog() error {
	families := map[string][]Descriptor{
		"director":    DirectorTable,
		"era_country": EraCountryTable,
		"genre":       GenreTable,
		"country":     CountryTable,
		"mood":        MoodTable,
	}
	for name, table := range families {
		if len(table) == 0 {
			return fmt.Errorf("catalog table %s: %w", name, ErrEmptyTable)
		}
		for _, d := range table {
			if d.ID == "" || d.Label == "" {
				return fmt.Errorf("catalog table %s: descriptor missing id or label", name)
			}
			switch d.Kind {
			case KindDirector:
				if d.PersonID == 0 {
					return fmt.Errorf("catalog descriptor %s: missing person id", d.ID)
				}
			case KindEraCountry:
				if d.Country == "" || d.DecadeStart == 0 {
					return fmt.Errorf("catalog descriptor %s: missing country or decade", d.ID)
				}
			case KindGenre, KindMood:
				if len(d.GenreIDs) == 0 {
					return fmt.Errorf("catalog descriptor %s: missing genre ids", d.ID)
				}
			case KindCountry:
				if d.Country == "" {
					return fmt.Errorf("catalog descriptor %s: missing country", d.ID)
				}
			default:
				return fmt.Errorf("catalog descriptor %s: unknown kind %q", d.ID, d.Kind)
			}
		}
	}
	return nil
}
